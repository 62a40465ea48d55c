package fastpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/status"
)

func TestBindPublishRelease(t *testing.T) {
	slot := &ResultSlot{}
	release := BindResult(slot)

	handled := PublishResult(frame.Frame{Status: status.Ok, Payload: []byte("hi")})
	assert.True(t, handled)
	assert.True(t, slot.Filled)
	assert.Equal(t, "hi", string(slot.Frame.Payload))

	release()

	_, ok := directResult.Get()
	assert.False(t, ok, "cell must be null after release")
}

func TestPublishWithoutBindFallsThrough(t *testing.T) {
	handled := PublishResult(frame.Frame{Status: status.Ok})
	assert.False(t, handled)
}

func TestAliasingPanicsInDebug(t *testing.T) {
	Debug = true
	defer func() { Debug = true }()

	release := BindResult(&ResultSlot{})
	defer release()

	require.Panics(t, func() {
		BindResult(&ResultSlot{})
	})
}

func TestReentrantDispatchSavesAndRestores(t *testing.T) {
	outer := &ResultSlot{}
	releaseOuter := BindResult(outer)
	defer releaseOuter()

	func() {
		inner := &ResultSlot{}
		prev := SwapResult(inner) // simulates dispatch_fast entering plugin B
		defer RestoreResult(prev)
		PublishResult(frame.Frame{Status: status.Ok, Payload: []byte("inner")})
		assert.True(t, inner.Filled)
	}()

	PublishResult(frame.Frame{Status: status.Ok, Payload: []byte("outer")})
	assert.True(t, outer.Filled)
	assert.Equal(t, "outer", string(outer.Frame.Payload))
}
