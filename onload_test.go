// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnLoadSuccess(t *testing.T) {
	defer resetForTest()

	tool, ok := OnLoad(VersionMajor, 0, nil)
	require.True(t, ok)
	require.NotNil(t, tool)
	assert.NotEmpty(t, tool.SessionID)
	assert.Same(t, DefaultController, tool.Table)
}

func TestOnLoadVersionMismatch(t *testing.T) {
	tool, ok := OnLoad(VersionMajor+1, 0, nil)
	assert.False(t, ok)
	assert.Nil(t, tool)
}

func TestOnLoadSessionIDsAreUnique(t *testing.T) {
	defer resetForTest()

	toolA, ok := OnLoad(VersionMajor, 0, nil)
	require.True(t, ok)
	toolB, ok := OnLoad(VersionMajor, 0, nil)
	require.True(t, ok)

	assert.NotEqual(t, toolA.SessionID, toolB.SessionID)
}

func TestOnUnloadStopsTheGate(t *testing.T) {
	defer resetForTest()

	Start()
	OnUnload()

	// Re-create a controller for any subsequent test relying on a running
	// gate; OnUnload intentionally leaves the gate stopped.
	assert.False(t, DefaultController.running.Load())
}
