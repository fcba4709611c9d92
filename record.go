// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/inc/roctracer_trace_entries.h (the wire
// record layout) and roctracer_ext.h (the EXTERN_ID marker record).
//

package roctrace

// ActivityRecord is the wire-level entry written into a [Pool] (spec §3).
// Records are plain data; KernelName, when present, is copied into the
// pool's inline-blob region and this field is the already-resolved copy
// (the pool never hands the consumer a dangling pointer, per I3).
type ActivityRecord struct {
	Domain        Domain
	Op            Op
	Kind          Kind
	ProcessID     uint32
	ThreadID      uint64
	CorrelationID uint64
	BeginNS       int64
	EndNS         int64

	// DeviceID and QueueID are set for device-operation records
	// (DomainHIPOps / DomainKFD); deviceSet distinguishes "0" from "absent".
	DeviceID  uint32
	QueueID   uint32
	deviceSet bool

	// ExternalID is set on the auxiliary EXT_API/EXTERN_ID marker record
	// that precedes an activity record when an external correlation id is
	// pushed; externIDSet distinguishes "0" from "absent".
	ExternalID  uint64
	externIDSet bool

	// KernelName is set for HIP_OP_ID_DISPATCH records when the runtime
	// supplied one; older runtimes may leave it empty (original_source:
	// HIP_AsyncActivityCallback's null-check).
	KernelName string
}

// HasDeviceInfo reports whether DeviceID/QueueID were set by the producer.
func (r *ActivityRecord) HasDeviceInfo() bool { return r.deviceSet }

// HasExternalID reports whether ExternalID was set by the producer.
func (r *ActivityRecord) HasExternalID() bool { return r.externIDSet }
