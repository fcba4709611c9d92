// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallTableSetInvokeClear(t *testing.T) {
	table := NewCallTable(4)
	assert.False(t, table.IsEnabled(2))

	var gotDomain Domain
	var gotOp Op
	var gotArg any
	table.Set(2, func(domain Domain, op Op, data *ApiData, userArg any) {
		gotDomain, gotOp, gotArg = domain, op, userArg
	}, "user-arg")

	require.True(t, table.IsEnabled(2))
	table.Invoke(2, &ApiData{Domain: DomainHIPAPI, Op: 2})
	assert.Equal(t, DomainHIPAPI, gotDomain)
	assert.Equal(t, Op(2), gotOp)
	assert.Equal(t, "user-arg", gotArg)

	table.Clear(2)
	assert.False(t, table.IsEnabled(2))
}

func TestCallTableInvokeWithoutSubscriptionIsNoop(t *testing.T) {
	table := NewCallTable(4)
	assert.NotPanics(t, func() {
		table.Invoke(0, &ApiData{Domain: DomainHSA, Op: 0})
	})
}

func TestCallTableInvokePanicIsRecoveredAndRecorded(t *testing.T) {
	defer resetForTest()

	table := NewCallTable(1)
	table.Set(0, func(Domain, Op, *ApiData, any) {
		panic("boom")
	}, nil)

	assert.NotPanics(t, func() {
		table.Invoke(0, &ApiData{Domain: DomainHIPAPI, Op: 0})
	})
	assert.Contains(t, ErrorString(), "boom")
}

func TestCallTableOverwriteSubscription(t *testing.T) {
	table := NewCallTable(1)
	table.Set(0, func(Domain, Op, *ApiData, any) {}, "first")
	table.Set(0, func(Domain, Op, *ApiData, any) {}, "second")

	var gotArg any
	table.Set(0, func(domain Domain, op Op, data *ApiData, userArg any) {
		gotArg = userArg
	}, "third")
	table.Invoke(0, &ApiData{})
	assert.Equal(t, "third", gotArg)
}
