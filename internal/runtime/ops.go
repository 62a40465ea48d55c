package runtime

import (
	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/internal/fastpath"
	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/internal/hosterr"
	"github.com/streamspace/ringhost/internal/pending"
	"github.com/streamspace/ringhost/internal/safecall"
	"github.com/streamspace/ringhost/internal/sid"
	"github.com/streamspace/ringhost/status"
)

var callerSIDs = sid.New()

func (h *Host) resolve(name string) (*LoadedPlugin, error) {
	p, ok := h.reg.Get(name)
	if !ok {
		return nil, hosterr.NoSuchPlugin(name)
	}
	return p, nil
}

// CallResponse is the request/response, async-safe call discipline (C8):
// it blocks the calling goroutine on the pending registry the same way
// dispatch_sync does for a plugin-to-plugin call, but from outside.
func (h *Host) CallResponse(plugin, entry string, payload []byte) (status.Status, []byte, error) {
	p, err := h.resolve(plugin)
	if err != nil {
		return status.Err, nil, err
	}
	if p.vt.Handle == nil {
		return status.Err, nil, hosterr.New(hosterr.MissingRequiredEntries)
	}

	id := callerSIDs.Next()
	oneshot := frame.NewOneshot()
	h.ctx.Pending.Register(id, pending.NewUnary(oneshot))

	st := safecall.Status("runtime", plugin, func() status.Status {
		return p.vt.Handle(abi.StrFromString(entry), id, abi.BytesFromSlice(payload))
	})
	if st != status.Ok {
		h.ctx.Pending.Take(id)
		h.ctx.State.Clear(id)
		return st, nil, hosterr.FromPluginStatus(hosterr.PluginHandleFailed, st)
	}

	f, ok := oneshot.Recv()
	if !ok {
		return status.Err, nil, hosterr.New(hosterr.SenderDropped)
	}
	return f.Status, f.Payload, nil
}

// CallResponseFast is the ultra-fast, same-goroutine synchronous call
// discipline (C6): the plugin is expected to call send_result before
// Handle returns, on the same goroutine, so the result is collected
// through the direct-result cell instead of the pending registry.
func (h *Host) CallResponseFast(plugin, entry string, payload []byte) (status.Status, []byte, error) {
	p, err := h.resolve(plugin)
	if err != nil {
		return status.Err, nil, err
	}
	if p.vt.Handle == nil {
		return status.Err, nil, hosterr.New(hosterr.MissingRequiredEntries)
	}

	id := callerSIDs.Next()
	slot := &fastpath.ResultSlot{}
	release := fastpath.BindResult(slot)
	defer release()

	st := safecall.Status("runtime", plugin, func() status.Status {
		return p.vt.Handle(abi.StrFromString(entry), id, abi.BytesFromSlice(payload))
	})
	// The fast path never touches the pending registry, so nothing clears
	// scratch state for id on its behalf the way the registry path does in
	// callback.SendResult — this call is itself the terminal event for id,
	// so it must clear state here whether Handle succeeded or not.
	defer h.ctx.State.Clear(id)

	if st != status.Ok {
		return st, nil, hosterr.FromPluginStatus(hosterr.PluginHandleFailed, st)
	}
	if !slot.Filled {
		return status.Err, nil, hosterr.New(hosterr.SenderDropped)
	}
	return slot.Frame.Status, slot.Frame.Payload, nil
}

// Call is the fire-and-forget discipline (C8): it never registers a pending
// entry and returns as soon as Handle does.
func (h *Host) Call(plugin, entry string, payload []byte) (status.Status, error) {
	p, err := h.resolve(plugin)
	if err != nil {
		return status.Err, err
	}
	if p.vt.Handle == nil {
		return status.Err, hosterr.New(hosterr.MissingRequiredEntries)
	}
	id := callerSIDs.Next()
	st := safecall.Status("runtime", plugin, func() status.Status {
		return p.vt.Handle(abi.StrFromString(entry), id, abi.BytesFromSlice(payload))
	})
	if st != status.Ok {
		return st, hosterr.FromPluginStatus(hosterr.PluginHandleFailed, st)
	}
	return st, nil
}

// StreamHandle is the caller-facing handle for an open bidirectional
// stream: its sid, and a reference back to the Host so the Read,
// SendStreamData and CloseStream methods can reach the stream registries.
type StreamHandle struct {
	sid  uint64
	host *Host
}

// SID returns the session id backing this stream, exposed for logging and
// correlation, not for callers to construct their own handles from.
func (s *StreamHandle) SID() uint64 { return s.sid }

// CallStream is the bidirectional streaming discipline (C10): it opens a
// stream against plugin, registers both ends, and returns a handle the
// caller reads from and writes to independently of this call.
func (h *Host) CallStream(plugin, entry string, payload []byte) (*StreamHandle, error) {
	p, err := h.resolve(plugin)
	if err != nil {
		return nil, err
	}
	if p.vt.Handle == nil {
		return nil, hosterr.New(hosterr.MissingRequiredEntries)
	}

	id := callerSIDs.Next()
	q := frame.NewQueue()
	h.ctx.Pending.Register(id, pending.NewStream(q))
	h.ctx.Streams.PutReceiver(id, q)
	h.ctx.Streams.PutTarget(id, p)

	st := safecall.Status("runtime", plugin, func() status.Status {
		return p.vt.Handle(abi.StrFromString(entry), id, abi.BytesFromSlice(payload))
	})
	if st != status.Ok {
		h.ctx.Pending.Take(id)
		h.ctx.Streams.Close(id)
		return nil, hosterr.FromPluginStatus(hosterr.PluginHandleFailed, st)
	}
	return &StreamHandle{sid: id, host: h}, nil
}

// Read blocks for the next frame delivered on the stream, returning
// ok=false once the stream has reached a terminal state and drained.
func (s *StreamHandle) Read() (status.Status, []byte, bool) {
	q, ok := s.host.ctx.Streams.Receiver(s.sid)
	if !ok {
		return status.Invalid, nil, false
	}
	f, ok := q.Recv()
	if !ok {
		return status.StreamEnd, nil, false
	}
	return f.Status, f.Payload, true
}

// SendStreamData writes data into the stream, forwarding it to the target
// plugin's StreamData entry point.
func (s *StreamHandle) SendStreamData(data []byte) error {
	p, ok := s.host.ctx.Streams.Target(s.sid)
	if !ok {
		return hosterr.New(hosterr.InvalidPath)
	}
	vt := p.VTable()
	if vt == nil || vt.StreamData == nil {
		return hosterr.New(hosterr.MissingRequiredEntries)
	}
	st := safecall.Status("runtime", p.Name(), func() status.Status {
		return vt.StreamData(s.sid, abi.BytesFromSlice(data))
	})
	if st != status.Ok {
		return hosterr.FromPluginStatus(hosterr.PluginHandleFailed, st)
	}
	return nil
}

// CloseStream notifies the target plugin and releases the stream's
// registry entries.
func (s *StreamHandle) CloseStream() error {
	p, ok := s.host.ctx.Streams.Target(s.sid)
	var st status.Status = status.Ok
	if ok {
		if vt := p.VTable(); vt != nil && vt.StreamClose != nil {
			st = safecall.Status("runtime", p.Name(), func() status.Status {
				return vt.StreamClose(s.sid)
			})
		}
	}
	s.host.ctx.Pending.Take(s.sid)
	s.host.ctx.State.Clear(s.sid)
	s.host.ctx.Streams.Close(s.sid)
	if st != status.Ok {
		return hosterr.FromPluginStatus(hosterr.PluginHandleFailed, st)
	}
	return nil
}
