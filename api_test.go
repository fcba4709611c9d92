// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpStringUnregisteredIsNotImplemented(t *testing.T) {
	defer resetForTest()

	_, status := OpString(DomainHIPAPI, 0)
	assert.Equal(t, StatusErrorNotImplemented, status)

	_, status = OpString(DomainHIPAPI, Op(DomainHIPAPI.OpCount()))
	assert.Equal(t, StatusErrorInvalidDomainID, status)
}

func TestOpCodeUnregisteredIsNotImplemented(t *testing.T) {
	defer resetForTest()

	_, status := OpCode(DomainHIPAPI, "hipMalloc")
	assert.Equal(t, StatusErrorNotImplemented, status)

	_, status = OpCode(Domain(999), "hipMalloc")
	assert.Equal(t, StatusErrorInvalidDomainID, status)
}

// TestOpStringOpCodeRoundTrip exercises R1 (spec.md §8):
// op_code(D, op_string(D, o)) == o, once a binding has registered names.
func TestOpStringOpCodeRoundTrip(t *testing.T) {
	defer resetForTest()

	RegisterOpNames(DomainHIPAPI, []string{"hipMalloc", "hipFree", "hipMemcpy"})

	name, status := OpString(DomainHIPAPI, 1)
	require.Equal(t, StatusSuccess, status)
	assert.Equal(t, "hipFree", name)

	op, status := OpCode(DomainHIPAPI, name)
	require.Equal(t, StatusSuccess, status)
	assert.Equal(t, Op(1), op)
}

func TestEnableDisableOpCallbackViaPackageAPI(t *testing.T) {
	defer resetForTest()

	var invoked int
	status := EnableOpCallback(DomainHIPAPI, 0, func(Domain, Op, *ApiData, any) {
		invoked++
	}, nil)
	require.Equal(t, StatusSuccess, status)

	ds := DefaultController.domainState(DomainHIPAPI)
	ds.callbacks.Invoke(0, &ApiData{Domain: DomainHIPAPI, Op: 0})
	assert.Equal(t, 1, invoked)

	require.Equal(t, StatusSuccess, DisableOpCallback(DomainHIPAPI, 0))
}

func TestOpenCloseFlushActivityViaPackageAPI(t *testing.T) {
	defer resetForTest()

	var mu sync.Mutex
	var got []ActivityRecord
	pool, status := OpenTracePool(PoolProperties{
		Size: 8,
		Callback: func(records []ActivityRecord) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, records...)
		},
	}, true)
	require.Equal(t, StatusSuccess, status)
	assert.Same(t, pool, DefaultPool())

	require.Equal(t, StatusSuccess, EnableOpActivity(DomainHIPAPI, 0, nil))
	pool.Write(ActivityRecord{Domain: DomainHIPAPI, Op: 0})

	require.Equal(t, StatusSuccess, FlushActivity(nil))

	mu.Lock()
	n := len(got)
	mu.Unlock()
	assert.Equal(t, 1, n)

	require.Equal(t, StatusSuccess, ClosePool(nil))
}

func TestPushPopExternalCorrelationIDViaPackageAPI(t *testing.T) {
	PushExternalCorrelationID(55)
	id, status := PopExternalCorrelationID()
	require.Equal(t, StatusSuccess, status)
	assert.Equal(t, uint64(55), id)
}

func TestPopExternalCorrelationIDUnderflow(t *testing.T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, status := PopExternalCorrelationID()
		assert.Equal(t, StatusErrorMismatchedExternalCorrelationID, status)
	}()
	<-done
}

func TestNextRecord(t *testing.T) {
	batch := []ActivityRecord{{CorrelationID: 1}, {CorrelationID: 2}, {CorrelationID: 3}}

	next, ok := NextRecord(batch, &batch[0])
	require.True(t, ok)
	assert.Equal(t, uint64(2), next.CorrelationID)

	_, ok = NextRecord(batch, &batch[2])
	assert.False(t, ok)

	var notInBatch ActivityRecord
	_, ok = NextRecord(batch, &notInBatch)
	assert.False(t, ok)
}

func TestGetTimestampAndVersion(t *testing.T) {
	assert.GreaterOrEqual(t, GetTimestamp(), int64(0))
	assert.Equal(t, 4, VersionMajor)
	assert.Equal(t, 1, VersionMinor)
}

func TestStartStopViaPackageAPI(t *testing.T) {
	defer resetForTest()
	Stop()
	Start()
	Start() // idempotent
}

func TestGetErrorStringReflectsLastFailure(t *testing.T) {
	defer resetForTest()
	status := EnableOpCallback(Domain(999), 0, func(Domain, Op, *ApiData, any) {}, nil)
	assert.Equal(t, StatusErrorInvalidDomainID, status)
	assert.Contains(t, GetErrorString(), "ERROR_INVALID_DOMAIN_ID")
}
