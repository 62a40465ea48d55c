package runtime

import (
	"github.com/streamspace/ringhost/internal/callback"
	"github.com/streamspace/ringhost/internal/dispatch"
	"github.com/streamspace/ringhost/internal/hostctx"
	"github.com/streamspace/ringhost/internal/hosterr"
	"github.com/streamspace/ringhost/internal/loader"
	"github.com/streamspace/ringhost/internal/logging"
	"github.com/streamspace/ringhost/internal/safecall"
	"github.com/streamspace/ringhost/status"
	"github.com/streamspace/ringhost/vtable"
)

// Host owns one host context, one plugin registry, and the single host
// vtable every plugin it loads is initialized with. A process can run
// several independent Hosts; nothing here is global except the sid
// allocator's process-wide counter, which is deliberately shared (sids only
// need to be unique, not host-scoped).
type Host struct {
	loader loader.Loader
	reg    *Registry
	ctx    *hostctx.Context
	hostVT *vtable.HostVTable
}

// New creates a Host using the production Go-plugin loader.
func New() *Host {
	return NewWithLoader(loader.GoPluginLoader{})
}

// NewWithLoader creates a Host using the supplied Loader, letting tests
// inject a fake loader instead of opening real shared libraries.
func NewWithLoader(l loader.Loader) *Host {
	reg := NewRegistry()
	ctx := hostctx.New(reg)
	h := &Host{loader: l, reg: reg, ctx: ctx}
	h.hostVT = &vtable.HostVTable{
		SendResult:     callback.SendResult,
		DispatchSync:   dispatch.Sync,
		DispatchFast:   dispatch.Fast,
		DispatchAsync:  dispatch.Async,
		DispatchStream: dispatch.Stream,
		StreamRead:     dispatch.Read,
		StreamWrite:    dispatch.Write,
		StreamClose:    dispatch.Close,
		SetState:       ctx.Ext.SetState,
		GetState:       ctx.Ext.GetState,
	}
	return h
}

// Load opens, validates, and initializes the plugin at path, registering it
// under its self-reported name. Returns hosterr.Error on any failure; the
// plugin is never registered unless Init returns status.Ok.
func (h *Host) Load(path string) (*LoadedPlugin, error) {
	lib, err := h.loader.Open(path)
	if err != nil {
		return nil, hosterr.Wrap(hosterr.LibraryOpenFailed, err)
	}

	p, err := open(path, lib)
	if err != nil {
		return nil, err
	}

	if p.vt.Init != nil {
		st := safecall.Status("runtime", p.name, func() status.Status {
			return p.vt.Init(h.ctx.Ptr(), h.hostVT)
		})
		if st != status.Ok {
			return nil, hosterr.FromPluginStatus(hosterr.PluginInitFailed, st)
		}
	}

	if !h.reg.Put(p) {
		if p.vt.Shutdown != nil {
			safecall.Void("runtime", p.name, p.vt.Shutdown)
		}
		return nil, &hosterr.Error{Kind: hosterr.MissingRequiredEntries, Plugin: p.name,
			Details: errAlreadyLoaded(p.name)}
	}

	logging.Component("runtime").Info().Str("plugin", p.name).Str("path", path).Msg("plugin loaded")
	return p, nil
}

// Unload shuts down and removes the plugin registered under name.
func (h *Host) Unload(name string) error {
	p, ok := h.reg.Remove(name)
	if !ok {
		return hosterr.NoSuchPlugin(name)
	}
	if p.vt.Shutdown != nil {
		safecall.Void("runtime", name, p.vt.Shutdown)
	}
	logging.Component("runtime").Info().Str("plugin", name).Msg("plugin unloaded")
	return nil
}

// Reload loads the plugin at path and atomically swaps it in under name,
// shutting down whatever was previously registered there only after the
// new plugin has initialized successfully — so a bad reload never leaves
// the host without a working plugin under that name.
func (h *Host) Reload(name, path string) (*LoadedPlugin, error) {
	lib, err := h.loader.Open(path)
	if err != nil {
		return nil, hosterr.Wrap(hosterr.LibraryOpenFailed, err)
	}
	p, err := open(path, lib)
	if err != nil {
		return nil, err
	}
	if p.name != name {
		return nil, &hosterr.Error{Kind: hosterr.MissingRequiredEntries, Plugin: p.name,
			Details: errNameMismatch(name, p.name)}
	}
	if p.vt.Init != nil {
		st := safecall.Status("runtime", p.name, func() status.Status {
			return p.vt.Init(h.ctx.Ptr(), h.hostVT)
		})
		if st != status.Ok {
			return nil, hosterr.FromPluginStatus(hosterr.PluginInitFailed, st)
		}
	}

	prev, _ := h.reg.Replace(name, p)
	if prev != nil && prev.vt.Shutdown != nil {
		safecall.Void("runtime", prev.name, prev.vt.Shutdown)
	}
	logging.Component("runtime").Info().Str("plugin", name).Str("path", path).Msg("plugin reloaded")
	return p, nil
}

// Names returns every currently loaded plugin's name.
func (h *Host) Names() []string { return h.reg.Names() }
