// Package target defines the narrow view of a loaded plugin that the
// cross-plugin dispatcher and stream machinery need, and the way they look
// one up by name. It exists as its own leaf package so that hostctx,
// dispatch, and stream can all depend on it without any of them depending
// on the concrete plugin registry (which in turn depends on hostctx) —
// that would be an import cycle.
package target

import "github.com/streamspace/ringhost/vtable"

// Plugin is what the dispatcher needs from a loaded plugin: its name (for
// error messages) and its entry-point table.
type Plugin interface {
	Name() string
	VTable() *vtable.PluginVTable
}

// Resolver looks up a loaded plugin by name. The host context holds a
// Resolver, not a concrete registry, so that dropping the context doesn't
// need to know how plugins are owned.
type Resolver interface {
	Resolve(name string) (Plugin, bool)
}
