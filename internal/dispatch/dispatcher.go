// Package dispatch implements the four cross-plugin dispatch disciplines
// (sync, fast, async, stream) and the three stream operations
// (read/write/close) that a plugin reaches through its host vtable. These
// are the same four disciplines a caller of the public Host façade invokes
// from outside; the façade and this package share the same mechanics, one
// layered in terms of a *hostctx.Context and the other in terms of a
// *target.Resolver directly reachable only from inside the vtable.
package dispatch

import (
	"unsafe"

	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/internal/fastpath"
	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/internal/hostctx"
	"github.com/streamspace/ringhost/internal/pending"
	"github.com/streamspace/ringhost/internal/safecall"
	"github.com/streamspace/ringhost/internal/sid"
	"github.com/streamspace/ringhost/status"
)

var allocator = sid.New()

func errResult(st status.Status) abi.Tuple[status.Status, abi.Vec[byte]] {
	return abi.Tuple[status.Status, abi.Vec[byte]]{A: st}
}

func okResult(st status.Status, payload []byte) abi.Tuple[status.Status, abi.Vec[byte]] {
	return abi.Tuple[status.Status, abi.Vec[byte]]{A: st, B: abi.VecFromBytes(payload)}
}

// Sync implements dispatch_sync: looks up target by name, registers a
// one-shot pending entry, invokes its Handle, and blocks the calling
// goroutine on the result. Unlike the original thread-per-call model this
// was translated from, a blocked goroutine costs nothing extra to park, so
// no dedicated executor handoff is needed here.
func Sync(hostCtx unsafe.Pointer, targetName, entry abi.Str, payload abi.Bytes) abi.Tuple[status.Status, abi.Vec[byte]] {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return errResult(status.Err)
	}
	plug, ok := ctx.Resolver.Resolve(targetName.String())
	if !ok {
		return errResult(status.Err)
	}
	vt := plug.VTable()
	if vt == nil || vt.Handle == nil {
		return errResult(status.Err)
	}

	id := allocator.Next()
	oneshot := frame.NewOneshot()
	ctx.Pending.Register(id, pending.NewUnary(oneshot))

	st := safecall.Status("dispatch", plug.Name(), func() status.Status {
		return vt.Handle(entry, id, payload)
	})
	if st != status.Ok {
		ctx.Pending.Take(id)
		ctx.State.Clear(id)
		return errResult(st)
	}

	f, ok := oneshot.Recv()
	if !ok {
		return errResult(status.Err)
	}
	return okResult(f.Status, f.Payload)
}

// Fast implements dispatch_fast: same resolution as Sync, but the result is
// collected through the goroutine-local direct-result cell instead of the
// pending registry, avoiding both the registry round-trip and the channel
// handoff. Because this call may itself be issued from inside an
// already-bound direct-result cell (A calls B calls C, all fast), it must
// save and restore the calling goroutine's prior cell rather than assume
// none is bound.
func Fast(hostCtx unsafe.Pointer, targetName, entry abi.Str, payload abi.Bytes) abi.Tuple[status.Status, abi.Vec[byte]] {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return errResult(status.Err)
	}
	plug, ok := ctx.Resolver.Resolve(targetName.String())
	if !ok {
		return errResult(status.Err)
	}
	vt := plug.VTable()
	if vt == nil || vt.Handle == nil {
		return errResult(status.Err)
	}

	id := allocator.Next()
	slot := &fastpath.ResultSlot{}
	prev := fastpath.SwapResult(slot)
	st := safecall.Status("dispatch", plug.Name(), func() status.Status {
		return vt.Handle(entry, id, payload)
	})
	fastpath.RestoreResult(prev)
	// This call is itself the terminal event for id on the fast path — the
	// pending registry never sees id, so nothing else clears its scratch
	// state the way callback.SendResult does for the registry path.
	ctx.State.Clear(id)

	if st != status.Ok {
		return errResult(st)
	}
	if !slot.Filled {
		// The plugin returned Ok without ever calling send_result on this
		// goroutine — treat as a protocol violation, not a hang.
		return errResult(status.Err)
	}
	return okResult(slot.Frame.Status, slot.Frame.Payload)
}

// Async implements dispatch_async: fire-and-forget, no pending entry, no
// blocking. The plugin's own Handle status is the only signal the caller
// gets; any later send_result for this sid finds nothing registered and is
// dropped.
func Async(hostCtx unsafe.Pointer, targetName, entry abi.Str, payload abi.Bytes) status.Status {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return status.Err
	}
	plug, ok := ctx.Resolver.Resolve(targetName.String())
	if !ok {
		return status.Err
	}
	vt := plug.VTable()
	if vt == nil || vt.Handle == nil {
		return status.Err
	}
	id := allocator.Next()
	return safecall.Status("dispatch", plug.Name(), func() status.Status {
		return vt.Handle(entry, id, payload)
	})
}

// Stream implements dispatch_stream: opens a new sid, registers both the
// receiver queue (C4, for the caller to read from) and the target plugin
// (C10, so StreamWrite/StreamClose know who to call), then invokes Handle
// to kick the stream off.
func Stream(hostCtx unsafe.Pointer, targetName, entry abi.Str, payload abi.Bytes) abi.Tuple[status.Status, uint64] {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return abi.Tuple[status.Status, uint64]{A: status.Err}
	}
	plug, ok := ctx.Resolver.Resolve(targetName.String())
	if !ok {
		return abi.Tuple[status.Status, uint64]{A: status.Err}
	}
	vt := plug.VTable()
	if vt == nil || vt.Handle == nil {
		return abi.Tuple[status.Status, uint64]{A: status.Err}
	}

	id := allocator.Next()
	q := frame.NewQueue()
	ctx.Pending.Register(id, pending.NewStream(q))
	ctx.Streams.PutReceiver(id, q)
	ctx.Streams.PutTarget(id, plug)

	st := safecall.Status("dispatch", plug.Name(), func() status.Status {
		return vt.Handle(entry, id, payload)
	})
	if st != status.Ok {
		ctx.Pending.Take(id)
		ctx.Streams.Close(id)
		return abi.Tuple[status.Status, uint64]{A: st}
	}
	return abi.Tuple[status.Status, uint64]{A: status.Ok, B: id}
}

// Read implements stream_read: blocks the caller on the next frame from an
// open stream's receiver queue.
func Read(hostCtx unsafe.Pointer, streamSID uint64) abi.Tuple[status.Status, abi.Vec[byte]] {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return errResult(status.Invalid)
	}
	q, ok := ctx.Streams.Receiver(streamSID)
	if !ok {
		return errResult(status.Invalid)
	}
	f, ok := q.Recv()
	if !ok {
		return errResult(status.StreamEnd)
	}
	return okResult(f.Status, f.Payload)
}

// Write implements stream_write: forwards data into the stream's target
// plugin via its optional StreamData entry point. A target that never
// declared one cannot receive writes.
func Write(hostCtx unsafe.Pointer, streamSID uint64, data abi.Bytes) status.Status {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return status.Invalid
	}
	plug, ok := ctx.Streams.Target(streamSID)
	if !ok {
		return status.Invalid
	}
	vt := plug.VTable()
	if vt == nil || vt.StreamData == nil {
		return status.Unsupported
	}
	return safecall.Status("dispatch", plug.Name(), func() status.Status {
		return vt.StreamData(streamSID, data)
	})
}

// Close implements stream_close: notifies the target plugin (if it declared
// StreamClose) and releases both registry entries for the sid.
func Close(hostCtx unsafe.Pointer, streamSID uint64) status.Status {
	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return status.Invalid
	}
	plug, ok := ctx.Streams.Target(streamSID)

	var st status.Status = status.Ok
	if ok {
		if vt := plug.VTable(); vt != nil && vt.StreamClose != nil {
			st = safecall.Status("dispatch", plug.Name(), func() status.Status {
				return vt.StreamClose(streamSID)
			})
		} else if vt == nil || vt.StreamClose == nil {
			st = status.Unsupported
		}
	}

	ctx.Pending.Take(streamSID)
	ctx.State.Clear(streamSID)
	ctx.Streams.Close(streamSID)
	return st
}
