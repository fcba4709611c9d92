// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import "time"

// processStart anchors [Now]'s monotonic reading. [time.Now] already
// carries a monotonic component on every supported platform; reading it
// once at package init and diffing against it keeps the numbers small and
// close to an uptime-style counter without giving up monotonicity.
var processStart = time.Now()

// Now returns nanoseconds from a monotonic clock (C1), wait-free and safe
// to call from any goroutine, including from inside a dispatcher hook.
//
// Guarantee: non-decreasing across any single goroutine (time.Since uses
// the monotonic reading embedded in processStart and in the current
// [time.Now], never the wall-clock component, so it is immune to NTP
// adjustments per the time package's documentation).
func Now() int64 {
	return time.Since(processStart).Nanoseconds()
}
