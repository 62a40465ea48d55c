// Package ringhost is an in-process host for native plugins built against
// the ring ABI: a stable C-level contract exposing four call disciplines
// (fire-and-forget, request/response, ultra-fast synchronous
// request/response, and bidirectional streaming), cross-plugin dispatch,
// and per-call scratch state. A Host loads shared libraries that export a
// single well-known entry symbol and, once loaded, dispatches calls into
// them concurrently from any number of goroutines.
package ringhost

import (
	"github.com/streamspace/ringhost/internal/loader"
	"github.com/streamspace/ringhost/internal/logging"
	"github.com/streamspace/ringhost/internal/runtime"
	"github.com/streamspace/ringhost/status"
)

// Host is the public entry point: load plugins into it, then call into
// them through the methods below. The zero value is not usable; construct
// one with New.
type Host struct {
	rt *runtime.Host
}

// Option configures a Host at construction time.
type Option func(*options)

type options struct {
	loader     loader.Loader
	logLevel   string
	logPretty  bool
}

// WithLoader overrides the Loader used to open shared libraries. The
// default is the standard library's plugin package; tests and embedders
// that need a different dynamic-loading strategy can supply their own.
func WithLoader(l loader.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithLogLevel sets the global logger's level ("debug", "info", "warn",
// "error"). Applied once, at New; later Hosts in the same process share the
// same global logger, matching Initialize's own process-wide scope.
func WithLogLevel(level string) Option {
	return func(o *options) { o.logLevel = level }
}

// WithPrettyLogging switches the global logger to a human-readable console
// writer instead of JSON, intended for local development.
func WithPrettyLogging() Option {
	return func(o *options) { o.logPretty = true }
}

// New constructs a Host. Plugins are loaded with Load after construction.
func New(opts ...Option) *Host {
	o := &options{loader: loader.GoPluginLoader{}, logLevel: "info"}
	for _, opt := range opts {
		opt(o)
	}
	logging.Initialize(o.logLevel, o.logPretty)

	return &Host{rt: runtime.NewWithLoader(o.loader)}
}

// Plugin is the read-only view of a loaded plugin returned by Load/Reload.
type Plugin struct {
	Name    string
	Path    string
	Version string
}

func wrap(p *runtime.LoadedPlugin) *Plugin {
	if p == nil {
		return nil
	}
	return &Plugin{Name: p.Name(), Path: p.Path(), Version: p.Version()}
}

// Load opens the shared library at path, validates its ABI, initializes
// it, and registers it under its self-reported name. Returns a *hosterr.Error
// (via the error interface) describing exactly which validation step
// failed.
func (h *Host) Load(path string) (*Plugin, error) {
	p, err := h.rt.Load(path)
	if err != nil {
		return nil, err
	}
	return wrap(p), nil
}

// Unload shuts down and removes the plugin registered under name.
func (h *Host) Unload(name string) error {
	return h.rt.Unload(name)
}

// Reload loads the shared library at path and swaps it in under name,
// failing without disturbing the previously loaded plugin if the new one
// cannot be validated or initialized.
func (h *Host) Reload(name, path string) (*Plugin, error) {
	p, err := h.rt.Reload(name, path)
	if err != nil {
		return nil, err
	}
	return wrap(p), nil
}

// Plugins lists the names of every currently loaded plugin.
func (h *Host) Plugins() []string {
	return h.rt.Names()
}

// CallResponse invokes entry on plugin and blocks until the plugin reports
// a result via send_result, which may happen from any goroutine (the
// async-safe request/response discipline).
func (h *Host) CallResponse(plugin, entry string, payload []byte) (status.Status, []byte, error) {
	return h.rt.CallResponse(plugin, entry, payload)
}

// CallResponseFast invokes entry on plugin and blocks for a result that the
// plugin is expected to deliver via send_result before Handle returns, on
// the calling goroutine (the ultra-fast synchronous discipline). Using this
// with a plugin that delivers its result asynchronously is a protocol
// violation and returns an error.
func (h *Host) CallResponseFast(plugin, entry string, payload []byte) (status.Status, []byte, error) {
	return h.rt.CallResponseFast(plugin, entry, payload)
}

// Call invokes entry on plugin and returns as soon as Handle does, without
// waiting for any result (the fire-and-forget discipline). A later
// send_result for this call, if the plugin sends one, is dropped silently.
func (h *Host) Call(plugin, entry string, payload []byte) (status.Status, error) {
	return h.rt.Call(plugin, entry, payload)
}

// Stream is a handle to an open bidirectional stream returned by
// CallStream.
type Stream struct {
	h *runtime.StreamHandle
}

// SID returns the stream's session id, for logging/correlation.
func (s *Stream) SID() uint64 { return s.h.SID() }

// Read blocks for the next frame the plugin sends on this stream. ok is
// false once the stream has reached a terminal state and every buffered
// frame has been drained.
func (s *Stream) Read() (st status.Status, payload []byte, ok bool) {
	return s.h.Read()
}

// Write sends data to the plugin side of the stream.
func (s *Stream) Write(data []byte) error {
	return s.h.SendStreamData(data)
}

// Close notifies the plugin the caller is done with the stream and
// releases the host's bookkeeping for it.
func (s *Stream) Close() error {
	return s.h.CloseStream()
}

// CallStream opens a bidirectional stream against plugin and returns a
// handle to read from and write to independently of this call.
func (h *Host) CallStream(plugin, entry string, payload []byte) (*Stream, error) {
	sh, err := h.rt.CallStream(plugin, entry, payload)
	if err != nil {
		return nil, err
	}
	return &Stream{h: sh}, nil
}
