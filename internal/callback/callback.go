// Package callback implements send_result, the single inbound function a
// plugin calls to report a call's outcome. It encodes the result-delivery
// resolution order: direct-result cell, then direct-oneshot cell, then the
// pending registry, then silent drop.
package callback

import (
	"unsafe"

	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/internal/fastpath"
	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/internal/hostctx"
	"github.com/streamspace/ringhost/internal/logging"
	"github.com/streamspace/ringhost/internal/pending"
	"github.com/streamspace/ringhost/status"
)

// SendResult is bound to vtable.HostVTable.SendResult. It is the only path
// by which a plugin's asynchronous work reaches back into the host. A panic
// here crosses straight back into the plugin's own call stack on the other
// side of the FFI boundary, so it is trapped and suppressed rather than
// surfaced — there is no caller-side status to fail, unlike a panicking
// Handle/Init/StreamData/StreamClose.
func SendResult(hostCtx unsafe.Pointer, sid uint64, st status.Status, payload abi.Vec[byte]) {
	defer func() {
		if r := recover(); r != nil {
			logging.Component("callback").Error().
				Uint64("sid", sid).
				Interface("panic", r).
				Msg("send_result panicked, suppressed at ffi boundary")
		}
	}()

	ctx := hostctx.FromPtr(hostCtx)
	if ctx == nil {
		return
	}

	f := frame.Frame{Status: st, Payload: payload.IntoBytes()}

	// 1. The calling goroutine is waiting on its own stack via the fast
	//    direct-result cell — this is the common case for dispatch_fast.
	//    That caller's own sid is never registered in the pending registry,
	//    so it clears scratch state for sid itself once Handle returns;
	//    nothing to clear here.
	if fastpath.PublishResult(f) {
		return
	}

	// 2. The legacy direct-oneshot extension point, preserved for parity
	//    with the cell the original host also checks here.
	if fastpath.PublishOneshot(f) {
		return
	}

	// 3. Fall through to the pending registry: this is the path every
	//    dispatch_sync, dispatch_stream, or cross-goroutine call uses.
	entry, ok := ctx.Pending.Take(sid)
	if !ok {
		// No one is waiting — fire-and-forget result, or a result that
		// arrived after its caller already gave up. Drop it silently.
		return
	}

	switch entry.Kind {
	case pending.Unary:
		entry.Unary().Send(f)
		ctx.State.Clear(sid)

	case pending.Stream:
		entry.Stream().Send(f)
		if st.Terminal() {
			// The pending entry is already gone (Take removed it above),
			// scratch state is cleared, and the queue is closed so the
			// reader sees the end of the stream once it has drained. The
			// stream registry (receiver queue + target plugin) stays until
			// the caller explicitly closes the stream, so a terminal frame
			// already in the queue is still readable.
			entry.Stream().Close()
			ctx.State.Clear(sid)
		} else {
			ctx.Pending.Reinsert(sid, entry)
		}
	}
}
