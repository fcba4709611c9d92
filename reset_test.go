// SPDX-License-Identifier: GPL-3.0-or-later

package roctrace

// resetForTest reconstructs [DefaultController], clears the correlation
// counter and per-goroutine state, and clears the loader registry. Living
// in a _test.go file keeps it out of any production build without
// needing a dedicated build tag — the Go toolchain already excludes
// _test.go files from `go build`/non-test imports, which is the
// idiomatic substitute for the ad hoc "reset hook" a C++ test harness
// would need a #ifdef for.
func resetForTest() {
	DefaultController.Shutdown()
	DefaultController = NewController(NewConfig())
	nextCorrelationID.Store(0)
	goroutineStates.Range(func(k, _ any) bool {
		goroutineStates.Delete(k)
		return true
	})
	resetLoadersForTest()
	resetOpNamesForTest()
}
