// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderForUnregisteredBindingIsDisabled(t *testing.T) {
	defer resetLoadersForTest()
	l := LoaderFor("no-such-runtime")
	assert.False(t, l.IsEnabled())

	_, ok := Symbol[func()](l, "anything")
	assert.False(t, ok)
}

func TestLoaderForResolvesSymbols(t *testing.T) {
	defer resetLoadersForTest()
	var called bool
	RegisterBinding("hsa", Binding{
		AutoLoad: true,
		Open: func() (map[string]any, bool, error) {
			return map[string]any{
				"hsa_init": func() { called = true },
			}, true, nil
		},
	})

	l := LoaderFor("hsa")
	require.True(t, l.IsEnabled())

	fn, ok := Symbol[func()](l, "hsa_init")
	require.True(t, ok)
	fn()
	assert.True(t, called)

	_, ok = Symbol[func()](l, "missing_symbol")
	assert.False(t, ok)
}

func TestLoaderForIsASingleton(t *testing.T) {
	defer resetLoadersForTest()
	RegisterBinding("hip", Binding{
		Open: func() (map[string]any, bool, error) {
			return map[string]any{}, true, nil
		},
	})

	a := LoaderFor("hip")
	b := LoaderFor("hip")
	assert.Same(t, a, b)
}

func TestLoaderForConcurrentFirstAccessCollapses(t *testing.T) {
	defer resetLoadersForTest()
	var opens int
	var mu sync.Mutex
	RegisterBinding("kfd", Binding{
		Open: func() (map[string]any, bool, error) {
			mu.Lock()
			opens++
			mu.Unlock()
			return map[string]any{}, true, nil
		},
	})

	var wg sync.WaitGroup
	loaders := make([]*Loader, 50)
	for i := range loaders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loaders[i] = LoaderFor("kfd")
		}(i)
	}
	wg.Wait()

	for _, l := range loaders[1:] {
		assert.Same(t, loaders[0], l)
	}
	assert.Equal(t, 1, opens)
}

func TestLoaderForRequiredSymbolMissFatals(t *testing.T) {
	defer resetLoadersForTest()
	RegisterBinding("roctx", Binding{
		RequireSymbols: []string{"roctx_mark"},
		Open: func() (map[string]any, bool, error) {
			return map[string]any{}, true, nil
		},
	})

	assert.Panics(t, func() { LoaderFor("roctx") })
}

func TestLoaderForOpenErrorFatals(t *testing.T) {
	defer resetLoadersForTest()
	RegisterBinding("broken", Binding{
		Open: func() (map[string]any, bool, error) {
			return nil, false, errors.New("dlopen failed")
		},
	})

	assert.Panics(t, func() { LoaderFor("broken") })
}
