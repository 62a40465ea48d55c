package runtime

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/status"
	"github.com/streamspace/ringhost/vtable"
)

// burstPlugin echoes every stream_write it receives back as one Ok frame;
// its stream_close just returns Ok without sending a terminal frame.
func burstPlugin() *vtable.PluginInfo {
	var hostVT *vtable.HostVTable
	var hostCtx unsafe.Pointer

	vt := &vtable.PluginVTable{
		Init: func(hc unsafe.Pointer, hv *vtable.HostVTable) status.Status {
			hostVT, hostCtx = hv, hc
			return status.Ok
		},
		Handle: func(entry abi.Str, sid uint64, payload abi.Bytes) status.Status {
			return status.Ok
		},
		StreamData: func(sid uint64, data abi.Bytes) status.Status {
			hostVT.SendResult(hostCtx, sid, status.Ok, abi.VecFromBytes(data.Slice()))
			return status.Ok
		},
		StreamClose: func(sid uint64) status.Status {
			return status.Ok
		},
	}
	return &vtable.PluginInfo{
		ABIVersion: vtable.ExpectedABIVersion,
		Name:       abi.StrFromString("burst"),
		Version:    abi.StrFromString("1.0.0"),
		VTable:     vt,
	}
}

func TestCallStreamEndToEnd(t *testing.T) {
	fl := fakeLoader{libs: map[string]fakeLibrary{"/plugins/burst.so": {entry: burstPlugin}}}
	h := NewWithLoader(fl)
	_, err := h.Load("/plugins/burst.so")
	require.NoError(t, err)

	s, err := h.CallStream("burst", "go", nil)
	require.NoError(t, err)

	require.NoError(t, s.SendStreamData([]byte("chunk1")))
	st, payload, ok := s.Read()
	require.True(t, ok)
	assert.Equal(t, status.Ok, st)
	assert.Equal(t, "chunk1", string(payload))

	require.NoError(t, s.SendStreamData([]byte("chunk2")))
	st, payload, ok = s.Read()
	require.True(t, ok)
	assert.Equal(t, "chunk2", string(payload))

	require.NoError(t, s.CloseStream())

	_, _, ok = s.Read()
	assert.False(t, ok, "the stream registry is released once CloseStream returns")
}

// calcPlugin dispatches into another plugin by name via the host's
// cross-plugin DispatchSync entry point, exercising C9 end to end through
// the public façade rather than package dispatch's own unit tests.
func calcPlugin() *vtable.PluginInfo {
	var hostVT *vtable.HostVTable
	var hostCtx unsafe.Pointer

	vt := &vtable.PluginVTable{
		Init: func(hc unsafe.Pointer, hv *vtable.HostVTable) status.Status {
			hostVT, hostCtx = hv, hc
			return status.Ok
		},
		Handle: func(entry abi.Str, sid uint64, payload abi.Bytes) status.Status {
			res := hostVT.DispatchSync(hostCtx, abi.StrFromString("echo"), abi.StrFromString("noop"), payload)
			hostVT.SendResult(hostCtx, sid, res.A, res.B)
			return status.Ok
		},
	}
	return &vtable.PluginInfo{
		ABIVersion: vtable.ExpectedABIVersion,
		Name:       abi.StrFromString("calc"),
		Version:    abi.StrFromString("1.0.0"),
		VTable:     vt,
	}
}

func TestCrossPluginDispatchSync(t *testing.T) {
	fl := fakeLoader{libs: map[string]fakeLibrary{
		"/plugins/echo.so": {entry: echoPlugin},
		"/plugins/calc.so": {entry: calcPlugin},
	}}
	h := NewWithLoader(fl)
	_, err := h.Load("/plugins/echo.so")
	require.NoError(t, err)
	_, err = h.Load("/plugins/calc.so")
	require.NoError(t, err)

	st, payload, err := h.CallResponse("calc", "delegate", []byte("through-echo"))
	require.NoError(t, err)
	assert.Equal(t, status.Ok, st)
	assert.Equal(t, "through-echo", string(payload))
}
