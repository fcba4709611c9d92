// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp's HIP_ApiCallback
// / HIP_AsyncActivityCallback (the 8-step pre/real/post protocol and the
// external-correlation weave); generic Args-per-op shape per spec §9
// ("one small type per domain, tagged by op").
//

package roctrace

// ApiData is the per-call snapshot the dispatcher hands to subscribed
// callbacks (spec §3's "trace entry" head plus the args union). Args is a
// discriminated-by-(domain,op) payload: the generator that emits the
// per-API shims (out of scope, spec §1) is responsible for populating it
// with the concrete input/output argument struct for this op; the core
// only threads the pointer through.
type ApiData struct {
	Domain        Domain
	Op            Op
	Kind          Kind
	Phase         Phase
	CorrelationID uint64
	Args          any
}

// opEnabledMask tracks, per op, whether a callback and/or an activity
// subscription is live, so the dispatcher can skip both map/table lookups
// with a single load on the common "nothing subscribed" path. Supplemented
// from original_source's HIPActivityCallbackTracker (roctracer.cpp), which
// keeps the same bitmask idea per HIP op.
type opEnabledMask struct {
	callback atomicBoolSlice
	activity atomicBoolSlice
}

// DomainState bundles the per-domain C3 callback table and activity
// routing needed by the dispatcher: one instance per [Domain], held by the
// [Controller].
type DomainState struct {
	domain    Domain
	callbacks *CallTable
	mask      opEnabledMask
	// activityPools maps an op to the pool bound to its activity
	// subscription, mirroring the journal's activity map but optimized
	// for the dispatcher's hot-path read.
	activityPools []atomicPoolPtr
}

// NewDomainState allocates per-op state sized to domain's op count.
func NewDomainState(domain Domain) *DomainState {
	n := domain.OpCount()
	return &DomainState{
		domain:        domain,
		callbacks:     NewCallTable(n),
		mask:          newOpEnabledMask(n),
		activityPools: make([]atomicPoolPtr, n),
	}
}

func newOpEnabledMask(n int) opEnabledMask {
	return opEnabledMask{callback: newAtomicBoolSlice(n), activity: newAtomicBoolSlice(n)}
}

// activityPool returns the pool bound to op's activity subscription, or
// nil if activity is not enabled on op.
func (d *DomainState) activityPool(op Op) *Pool {
	return d.activityPools[op].Load()
}

// dispatchPre implements spec §4.8 steps 1-3: lookup, correlation push,
// and the ENTER callback invocation. It returns the per-call [ApiData]
// (carrying the assigned correlation id), the begin timestamp, and
// active=true; if neither a callback nor an activity subscription is
// live it returns (nil, 0, false), in which case the caller must still
// invoke the real runtime call and dispatchPost does nothing for the nil
// data.
func dispatchPre(ds *DomainState, op Op, args any) (data *ApiData, beginNS int64, active bool) {
	if !ds.mask.callback.Load(int(op)) && !ds.mask.activity.Load(int(op)) {
		return nil, 0, false
	}

	beginNS = Now()
	data = &ApiData{
		Domain:        ds.domain,
		Op:            op,
		Phase:         PhaseEnter,
		CorrelationID: pushInternalCorrelation(),
		Args:          args,
	}
	ds.callbacks.Invoke(op, data)
	return data, beginNS, true
}

// dispatchPost implements spec §4.8 steps 5-8: the EXIT callback
// invocation, activity emission (with the external-correlation weave),
// and the correlation pop. outArgs replaces data.Args with the
// post-call argument snapshot (output arguments copied in by the
// generated shim, out of scope here).
func dispatchPost(ds *DomainState, data *ApiData, outArgs any, beginNS int64) {
	if data == nil {
		return
	}
	data.Phase = PhaseExit
	data.Args = outArgs
	ds.callbacks.Invoke(data.Op, data)

	if pool := ds.activityPool(data.Op); pool != nil {
		endNS := Now()
		rec := ActivityRecord{
			Domain:        ds.domain,
			Op:            data.Op,
			Kind:          data.Kind,
			ProcessID:     processID(),
			ThreadID:      goroutineID(),
			CorrelationID: data.CorrelationID,
			BeginNS:       beginNS,
			EndNS:         endNS,
		}
		emitActivity(pool, rec)
	}

	popInternalCorrelation()
}

// emitActivity writes rec to pool, preceding it with an external-id
// marker record when an external correlation id is currently pushed
// (spec §4.8's "external-correlation weave"): the source only emits this
// on the EXIT phase, which dispatchPost always is — see spec §9's Open
// Question log ("exit-only emission" is preserved, not a limitation).
func emitActivity(pool *Pool, rec ActivityRecord) {
	if extID, ok := currentExternalCorrelation(); ok {
		extRec := ActivityRecord{
			Domain:        DomainExtAPI,
			Op:            OpExternID,
			CorrelationID: rec.CorrelationID,
			ExternalID:    extID,
			externIDSet:   true,
		}
		pool.WritePair(extRec, rec)
		return
	}
	pool.Write(rec)
}

// emitAsyncActivity implements spec §4.8's asynchronous completion path:
// the traced runtime delivers (correlationID, beginNS, endNS, op,
// deviceID, queueID, kernelName) directly, with no phase-enter/exit. If
// kernelName is non-empty it is copied into the pool's inline-blob region
// and the record's reference fixed up to the copy (original_source:
// HIP_AsyncActivityCallback's kernel_name handling).
func emitAsyncActivity(pool *Pool, domain Domain, op Op, correlationID uint64,
	beginNS, endNS int64, deviceID, queueID uint32, kernelName string) {
	rec := ActivityRecord{
		Domain:        domain,
		Op:            op,
		CorrelationID: correlationID,
		BeginNS:       beginNS,
		EndNS:         endNS,
		DeviceID:      deviceID,
		QueueID:       queueID,
		deviceSet:     true,
	}
	if kernelName == "" {
		pool.Write(rec)
		return
	}
	pool.WriteBlob(rec, []byte(kernelName), func(r *ActivityRecord, blob []byte) {
		r.KernelName = string(blob)
	})
}
