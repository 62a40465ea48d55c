// Package hostctx defines the Host Context: the single piece of state every
// vtable callback function receives as its opaque first argument. It bundles
// the pending-call registry (C4), the scratch-state store (C5), the host
// extension table (set_state/get_state), the open-stream registries (C10),
// and a handle (Resolver) back to whatever owns the plugin registry. The
// Resolver is an ordinary interface value, not a weak reference: the context
// keeps the registry it was built with reachable.
package hostctx

import (
	"unsafe"

	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/internal/pending"
	"github.com/streamspace/ringhost/internal/state"
	"github.com/streamspace/ringhost/internal/stream"
	"github.com/streamspace/ringhost/internal/target"
	"github.com/streamspace/ringhost/vtable"
)

// Context is the host-owned state every plugin entry point and every host
// callback function can reach through its opaque hostCtx pointer. One
// Context is constructed per Host and lives exactly as long as it does.
type Context struct {
	Pending  *pending.Registry
	State    *state.Store
	Streams  *stream.Registry
	Resolver target.Resolver
	Ext      vtable.HostExt
}

// New builds a Context wired to resolver, which the dispatcher uses to find
// a plugin by name for cross-plugin calls. The host extension table's
// SetState/GetState entries are bound here, closing over nothing but the
// Context's own State store via the hostCtx pointer each call carries.
func New(resolver target.Resolver) *Context {
	c := &Context{
		Pending:  pending.New(),
		State:    state.New(),
		Streams:  stream.New(),
		Resolver: resolver,
	}
	c.Ext = vtable.HostExt{
		SetState: setStateCallback,
		GetState: getStateCallback,
	}
	return c
}

// Ptr returns the Context as the opaque pointer handed to plugin entry
// points and stashed as their host_ctx argument.
func (c *Context) Ptr() unsafe.Pointer { return unsafe.Pointer(c) }

// FromPtr recovers a Context from the opaque pointer a callback receives.
// Every host-callback and dispatch function funnels through this instead of
// a raw type assertion so a nil hostCtx is handled in one place.
func FromPtr(p unsafe.Pointer) *Context {
	if p == nil {
		return nil
	}
	return (*Context)(p)
}

func setStateCallback(hostCtx unsafe.Pointer, sid uint64, key abi.Str, value abi.Bytes) abi.Bytes {
	ctx := FromPtr(hostCtx)
	if ctx == nil {
		return abi.Bytes{}
	}
	ctx.State.Set(sid, key.String(), value.Slice())
	return abi.Bytes{}
}

func getStateCallback(hostCtx unsafe.Pointer, sid uint64, key abi.Str) abi.Bytes {
	ctx := FromPtr(hostCtx)
	if ctx == nil {
		return abi.Bytes{}
	}
	v := ctx.State.Get(sid, key.String())
	if v == nil {
		return abi.Bytes{}
	}
	return abi.BytesFromSlice(v)
}
