package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/internal/fastpath"
	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/internal/hostctx"
	"github.com/streamspace/ringhost/internal/target"
	"github.com/streamspace/ringhost/status"
	"github.com/streamspace/ringhost/vtable"
)

type fakePlugin struct {
	name string
	vt   *vtable.PluginVTable
}

func (f fakePlugin) Name() string                 { return f.name }
func (f fakePlugin) VTable() *vtable.PluginVTable { return f.vt }

type mapResolver map[string]target.Plugin

func (m mapResolver) Resolve(name string) (target.Plugin, bool) {
	p, ok := m[name]
	return p, ok
}

// deliverUnary replicates just enough of send_result's unary-delivery
// behavior to drive fixture plugins in this package's tests, without
// importing package callback (which imports package dispatch's sibling
// packages but, to avoid a cycle, never this one).
func deliverUnary(ctx *hostctx.Context, sid uint64, st status.Status, payload []byte) {
	entry, ok := ctx.Pending.Take(sid)
	if !ok {
		return
	}
	entry.Unary().Send(frame.Frame{Status: st, Payload: payload})
}

func TestSyncRoundTrip(t *testing.T) {
	echo := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			return status.Ok
		},
	}
	ctx := hostctx.New(mapResolver{"echo": fakePlugin{name: "echo", vt: echo}})

	// Sync registers the pending entry itself and then blocks on it, so the
	// fixture's Handle must deliver from a separate goroutine while Sync
	// waits — exactly like a real plugin's async completion would.
	echo.Handle = func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
		go deliverUnary(ctx, hostSID, status.Ok, payload.Slice())
		return status.Ok
	}

	res := Sync(ctx.Ptr(), abi.StrFromString("echo"), abi.StrFromString("ping"), abi.BytesFromSlice([]byte("hello")))
	assert.Equal(t, status.Ok, res.A)
	assert.Equal(t, "hello", string(res.B.IntoBytes()))
	assert.Equal(t, 0, ctx.Pending.Len())
}

func TestSyncUnknownTarget(t *testing.T) {
	ctx := hostctx.New(mapResolver{})
	res := Sync(ctx.Ptr(), abi.StrFromString("missing"), abi.StrFromString("op"), abi.BytesFromSlice(nil))
	assert.Equal(t, status.Err, res.A)
}

func TestSyncHandleFailureLeavesNoPendingEntry(t *testing.T) {
	vt := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			return status.Invalid
		},
	}
	ctx := hostctx.New(mapResolver{"bad": fakePlugin{name: "bad", vt: vt}})

	res := Sync(ctx.Ptr(), abi.StrFromString("bad"), abi.StrFromString("op"), abi.BytesFromSlice(nil))
	assert.Equal(t, status.Invalid, res.A)
	assert.Equal(t, 0, ctx.Pending.Len())
}

func TestFastRoundTrip(t *testing.T) {
	echo := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			fastpath.PublishResult(frame.Frame{Status: status.Ok, Payload: payload.Slice()})
			return status.Ok
		},
	}
	ctx := hostctx.New(mapResolver{"echo": fakePlugin{name: "echo", vt: echo}})

	res := Fast(ctx.Ptr(), abi.StrFromString("echo"), abi.StrFromString("ping"), abi.BytesFromSlice([]byte("zap")))
	assert.Equal(t, status.Ok, res.A)
	assert.Equal(t, "zap", string(res.B.IntoBytes()))
}

func TestFastProtocolViolationWithoutPublish(t *testing.T) {
	vt := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			return status.Ok
		},
	}
	ctx := hostctx.New(mapResolver{"echo": fakePlugin{name: "echo", vt: vt}})

	res := Fast(ctx.Ptr(), abi.StrFromString("echo"), abi.StrFromString("ping"), abi.BytesFromSlice([]byte("x")))
	assert.Equal(t, status.Err, res.A)
}

func TestFastReentrantNesting(t *testing.T) {
	var inner *vtable.PluginVTable
	outer := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			ctx := hostctx.New(mapResolver{"inner": fakePlugin{name: "inner", vt: inner}})
			res := Fast(ctx.Ptr(), abi.StrFromString("inner"), entry, payload)
			fastpath.PublishResult(frame.Frame{Status: res.A, Payload: res.B.IntoBytes()})
			return status.Ok
		},
	}
	inner = &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			fastpath.PublishResult(frame.Frame{Status: status.Ok, Payload: payload.Slice()})
			return status.Ok
		},
	}
	ctx := hostctx.New(mapResolver{"outer": fakePlugin{name: "outer", vt: outer}})

	res := Fast(ctx.Ptr(), abi.StrFromString("outer"), abi.StrFromString("op"), abi.BytesFromSlice([]byte("nested")))
	assert.Equal(t, status.Ok, res.A)
	assert.Equal(t, "nested", string(res.B.IntoBytes()))
}

func TestAsyncUnknownTarget(t *testing.T) {
	ctx := hostctx.New(mapResolver{})
	st := Async(ctx.Ptr(), abi.StrFromString("missing"), abi.StrFromString("op"), abi.BytesFromSlice(nil))
	assert.Equal(t, status.Err, st)
}

func TestStreamOpenWriteClose(t *testing.T) {
	var written []byte
	vt := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status {
			return status.Ok
		},
		StreamData: func(streamSID uint64, data abi.Bytes) status.Status {
			written = data.Slice()
			return status.Ok
		},
		StreamClose: func(streamSID uint64) status.Status {
			return status.Ok
		},
	}
	ctx := hostctx.New(mapResolver{"burst": fakePlugin{name: "burst", vt: vt}})

	res := Stream(ctx.Ptr(), abi.StrFromString("burst"), abi.StrFromString("go"), abi.BytesFromSlice(nil))
	require.Equal(t, status.Ok, res.A)
	streamSID := res.B

	st := Write(ctx.Ptr(), streamSID, abi.BytesFromSlice([]byte("data")))
	assert.Equal(t, status.Ok, st)
	assert.Equal(t, "data", string(written))

	st = Close(ctx.Ptr(), streamSID)
	assert.Equal(t, status.Ok, st)

	_, ok := ctx.Streams.Target(streamSID)
	assert.False(t, ok)
}

func TestWriteUnsupportedWithoutStreamData(t *testing.T) {
	vt := &vtable.PluginVTable{
		Handle: func(entry abi.Str, hostSID uint64, payload abi.Bytes) status.Status { return status.Ok },
	}
	ctx := hostctx.New(mapResolver{"burst": fakePlugin{name: "burst", vt: vt}})

	res := Stream(ctx.Ptr(), abi.StrFromString("burst"), abi.StrFromString("go"), abi.BytesFromSlice(nil))
	require.Equal(t, status.Ok, res.A)

	st := Write(ctx.Ptr(), res.B, abi.BytesFromSlice([]byte("x")))
	assert.Equal(t, status.Unsupported, st)
}

func TestReadUnknownStream(t *testing.T) {
	ctx := hostctx.New(mapResolver{})
	res := Read(ctx.Ptr(), 12345)
	assert.Equal(t, status.Invalid, res.A)
}
