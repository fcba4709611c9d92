//go:build unix

// SPDX-License-Identifier: GPL-3.0-or-later
//
// Adapted from: github.com/bassosimone/nop errclass/unix.go's build-tag split.
//

package roctrace

// platformLibrarySuffix is this platform's dynamic-library file suffix.
// Nothing in the package reads it: [LoaderFor] with no pre-registered
// [Binding] does not resolve a runtime name to a file name.
const platformLibrarySuffix = ".so"
