// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/src/roctracer/roctracer.cpp's OnLoad/
// OnUnload tool-registration contract (the embedding runtime calls OnLoad
// once per registered tool at priority-ordered startup, OnUnload once at
// shutdown).
//

package roctrace

// ToolPriority is where a tool's OnLoad runs relative to others
// registered with the embedding runtime; lower runs earlier.
type ToolPriority int

// DefaultToolPriority is the priority a tool should request absent any
// other ordering requirement.
const DefaultToolPriority ToolPriority = 0

// Tool is what an embedding runtime hands to a registered tracing tool at
// load time: a stable handle plus a per-load session identifier that
// tells this OnLoad call apart from others in a process that may load and
// unload tools more than once. The identifier is not written into
// activity records or log lines (original_source has no equivalent of
// this field; it is a supplemented addition, see DESIGN.md).
type Tool struct {
	// SessionID uniquely identifies this OnLoad invocation.
	SessionID string
	// Table is the callback/activity control surface this tool should use
	// (spec §6); in this package that is simply the package-level
	// functions, operating on [DefaultController].
	Table *Controller
}

// OnLoad is called once by the embedding runtime when this tool is
// activated. failedToolNames lists tools that failed to load before this
// one (original_source's OnLoad signature preserves this even though the
// core never acts on it — a generated binding might log it).
//
// version is the expected wire-protocol version; a mismatch against
// [VersionMajor] is reported via the returned bool rather than a panic,
// since a version mismatch is an ordinary startup-time condition a tool
// should handle gracefully.
func OnLoad(version int, failedToolCount int, failedToolNames []string) (*Tool, bool) {
	if version != VersionMajor {
		return nil, false
	}
	return &Tool{
		SessionID: NewSessionID(),
		Table:     DefaultController,
	}, true
}

// OnUnload is called once by the embedding runtime when this tool is
// deactivated. It stops the tracing gate and shuts down the background
// flusher; it does not close any pool the tool opened, since pool
// lifetime is the tool's own responsibility (spec §4.6: close_pool is an
// explicit call).
func OnUnload() {
	DefaultController.Stop()
	DefaultController.Shutdown()
}
