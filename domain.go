// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import "fmt"

// Domain identifies a traced surface: a closed, small enumeration.
//
// Each domain has a fixed operation count returned by [Domain.OpCount];
// every traced function maps to exactly one (domain, op) pair.
type Domain uint32

const (
	// DomainHSA traces the host HSA runtime API.
	DomainHSA Domain = iota
	// DomainHIPAPI traces the host HIP runtime API.
	DomainHIPAPI
	// DomainHIPOps traces device-side kernel-dispatch and memory-copy operations.
	DomainHIPOps
	// DomainKFD traces the kernel fusion driver ioctl surface.
	DomainKFD
	// DomainROCTX traces application-supplied annotation ranges (push/pop/mark).
	DomainROCTX
	// DomainExtAPI carries library-internal markers, such as external
	// correlation id records; it is never instrumented by the dispatcher.
	DomainExtAPI

	domainCount
)

// String implements [fmt.Stringer].
func (d Domain) String() string {
	switch d {
	case DomainHSA:
		return "HSA_API"
	case DomainHIPAPI:
		return "HIP_API"
	case DomainHIPOps:
		return "HIP_OPS"
	case DomainKFD:
		return "KFD_API"
	case DomainROCTX:
		return "ROCTX_API"
	case DomainExtAPI:
		return "EXT_API"
	default:
		return fmt.Sprintf("Domain(%d)", uint32(d))
	}
}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	return d < domainCount
}

// OpCount returns N_d, the number of dense operation codes for d.
//
// Counts are placeholders sized for a handful of representative ops per
// domain; a production binding would set these from the generated table
// that also emits the per-API shims (out of scope, see spec §1).
func (d Domain) OpCount() int {
	switch d {
	case DomainHSA:
		return 128
	case DomainHIPAPI:
		return 256
	case DomainHIPOps:
		return 8
	case DomainKFD:
		return 32
	case DomainROCTX:
		return 8
	case DomainExtAPI:
		return 1
	default:
		return 0
	}
}

// Op is an operation code in [0, Domain.OpCount()), dense per domain.
type Op uint32

// OpExternID is the sole op on [DomainExtAPI]: an external-correlation marker.
const OpExternID Op = 0

// Kind further distinguishes records of the same (domain, op), e.g. a HIP
// op kind that separates a kernel dispatch from a memory copy. Most
// domains use Kind 0 uniformly.
type Kind uint32

// Phase marks whether an ApiData snapshot was captured before or after the
// real call.
type Phase uint32

const (
	// PhaseEnter is captured at pre-hook time.
	PhaseEnter Phase = iota
	// PhaseExit is captured at post-hook time.
	PhaseExit
)

// String implements [fmt.Stringer].
func (p Phase) String() string {
	if p == PhaseEnter {
		return "enter"
	}
	return "exit"
}

// key identifies one (domain, op) slot across the callback table and the
// subscription journal.
type key struct {
	domain Domain
	op     Op
}
