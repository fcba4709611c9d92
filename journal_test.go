// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalCallbackRoundtrip(t *testing.T) {
	j := NewJournal()
	fn := func(Domain, Op, *ApiData, any) {}
	j.InsertCallback(DomainHIPAPI, 1, fn, "arg")

	var got []Op
	j.ForEachCallback(func(domain Domain, op Op, gotFn Callback, arg any) {
		got = append(got, op)
		assert.Equal(t, "arg", arg)
	})
	assert.Equal(t, []Op{1}, got)
	assert.Equal(t, 1, j.Len())

	j.RemoveCallback(DomainHIPAPI, 1)
	assert.Equal(t, 0, j.Len())
}

func TestJournalActivityRoundtrip(t *testing.T) {
	j := NewJournal()
	pool := &Pool{}
	j.InsertActivity(DomainHIPOps, 2, pool)

	var gotPools []*Pool
	j.ForEachActivity(func(domain Domain, op Op, p *Pool) {
		gotPools = append(gotPools, p)
	})
	require.Len(t, gotPools, 1)
	assert.Same(t, pool, gotPools[0])

	j.RemoveActivity(DomainHIPOps, 2)
	assert.Equal(t, 0, j.Len())
}

func TestJournalRemoveActivitiesForPool(t *testing.T) {
	j := NewJournal()
	poolA, poolB := &Pool{}, &Pool{}
	j.InsertActivity(DomainHIPAPI, 0, poolA)
	j.InsertActivity(DomainHIPAPI, 1, poolB)
	j.InsertActivity(DomainHIPOps, 0, poolA)

	removed := j.RemoveActivitiesForPool(poolA)
	assert.Len(t, removed, 2)
	assert.Equal(t, 1, j.Len()) // only the poolB subscription remains
}

func TestJournalLenCountsBothKinds(t *testing.T) {
	j := NewJournal()
	j.InsertCallback(DomainHSA, 0, func(Domain, Op, *ApiData, any) {}, nil)
	j.InsertActivity(DomainHSA, 0, &Pool{})
	assert.Equal(t, 2, j.Len())
}
