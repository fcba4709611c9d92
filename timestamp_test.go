// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNowNonDecreasing(t *testing.T) {
	prev := Now()
	for range 1000 {
		cur := Now()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestNowPositive(t *testing.T) {
	assert.GreaterOrEqual(t, Now(), int64(0))
}
