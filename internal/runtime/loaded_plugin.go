// Package runtime owns the lifecycle of loaded plugins: opening their
// shared library, validating their ABI, holding their vtable pointer, and
// registering them by name so the cross-plugin dispatcher can find them. It
// is the layer the public ringhost package is a thin façade over.
package runtime

import (
	"github.com/google/uuid"

	"github.com/streamspace/ringhost/internal/hosterr"
	"github.com/streamspace/ringhost/internal/loader"
	"github.com/streamspace/ringhost/internal/logging"
	"github.com/streamspace/ringhost/vtable"
)

// LoadedPlugin is one shared library the host has validated and
// initialized. It satisfies target.Plugin so the dispatcher can reach it by
// name without this package needing to depend on package target directly
// beyond that.
type LoadedPlugin struct {
	name   string
	path   string
	loadID uuid.UUID
	vt     *vtable.PluginVTable
	info   *vtable.PluginInfo
	lib    loader.Library
}

// Name returns the plugin's declared name (not necessarily the path it was
// loaded from — two plugins loaded from different paths could declare the
// same name, which Load rejects as a duplicate).
func (p *LoadedPlugin) Name() string { return p.name }

// LoadID is a correlation id for this specific load instance, distinct from
// the sid space: it identifies "this .so, loaded at this moment" for log
// correlation across Load/Reload/Unload, not a call or session.
func (p *LoadedPlugin) LoadID() uuid.UUID { return p.loadID }

// VTable returns the plugin's entry-point table.
func (p *LoadedPlugin) VTable() *vtable.PluginVTable { return p.vt }

// Path returns the shared-library path this plugin was loaded from.
func (p *LoadedPlugin) Path() string { return p.path }

// Version returns the plugin's self-reported version string.
func (p *LoadedPlugin) Version() string { return p.info.Version.String() }

// open resolves the entry symbol from lib, validates ABI compatibility and
// vtable readiness, and returns a LoadedPlugin that has not yet been
// initialized (Init is the caller's responsibility, since it needs the
// host's vtable and context, which this package doesn't own).
func open(path string, lib loader.Library) (*LoadedPlugin, error) {
	sym, err := lib.Lookup(loader.EntrySymbol)
	if err != nil {
		return nil, hosterr.Wrap(hosterr.MissingSymbol, err)
	}
	entry, ok := sym.(func() *vtable.PluginInfo)
	if !ok {
		return nil, hosterr.New(hosterr.MissingSymbol)
	}

	info := entry()
	if info == nil {
		return nil, hosterr.New(hosterr.NullInfo)
	}
	if !info.Compatible(vtable.ExpectedABIVersion) {
		return nil, hosterr.AbiMismatch(vtable.ExpectedABIVersion, info.ABIVersion)
	}
	if info.VTable == nil {
		return nil, hosterr.New(hosterr.NullVTable)
	}
	if !info.VTable.Ready() {
		return nil, hosterr.New(hosterr.MissingRequiredEntries)
	}

	name := info.Name.String()
	id := uuid.New()
	logging.Component("runtime").Debug().
		Str("plugin", name).
		Str("path", path).
		Str("version", info.Version.String()).
		Str("load_id", id.String()).
		Msg("plugin validated")

	return &LoadedPlugin{
		name:   name,
		path:   path,
		loadID: id,
		vt:     info.VTable,
		info:   info,
		lib:    lib,
	}, nil
}
