// Package loader abstracts dynamic shared-library loading behind a small
// interface, with a concrete implementation backed by the standard
// library's plugin package. The indirection exists so a future cgo/dlopen
// loader could be substituted for platforms or .so formats plugin doesn't
// support, without touching anything above it.
package loader

import (
	"fmt"
	goplugin "plugin"
)

// EntrySymbol is the exported identifier every ring-ABI plugin must
// provide: a niladic function returning *vtable.PluginInfo. It is typed as
// any at the Lookup boundary because Go's plugin package returns Symbol as
// interface{}; callers type-assert it to the expected func signature.
const EntrySymbol = "RingGetPluginV1"

// Library is an opened shared library a caller can resolve symbols from.
type Library interface {
	Lookup(symbol string) (any, error)
}

// Loader opens a shared library at path.
type Loader interface {
	Open(path string) (Library, error)
}

// GoPluginLoader is the production Loader, backed by the standard library's
// plugin package. It only supports platforms and build configurations that
// package plugin supports (ELF, cgo-enabled, same Go toolchain version used
// to build both host and plugin) — the same constraints the teacher's own
// dynamic-plugin discovery already lives with.
type GoPluginLoader struct{}

type goPluginLibrary struct {
	p *goplugin.Plugin
}

func (l goPluginLibrary) Lookup(symbol string) (any, error) {
	sym, err := l.p.Lookup(symbol)
	if err != nil {
		return nil, err
	}
	return sym, nil
}

// Open loads the shared library at path via plugin.Open. A library already
// opened at this path is returned from the runtime's cache rather than
// reloaded, matching package plugin's own semantics.
func (GoPluginLoader) Open(path string) (Library, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	return goPluginLibrary{p: p}, nil
}
