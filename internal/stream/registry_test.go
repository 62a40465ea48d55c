package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/vtable"
)

type fakePlugin struct{ name string }

func (f fakePlugin) Name() string                  { return f.name }
func (f fakePlugin) VTable() *vtable.PluginVTable { return nil }

func TestReceiverRoundTrip(t *testing.T) {
	r := New()
	q := frame.NewQueue()
	r.PutReceiver(7, q)

	got, ok := r.Receiver(7)
	assert.True(t, ok)
	assert.Same(t, q, got)

	r.DropReceiver(7)
	_, ok = r.Receiver(7)
	assert.False(t, ok)
}

func TestTargetRoundTrip(t *testing.T) {
	r := New()
	r.PutTarget(9, fakePlugin{name: "calc"})

	got, ok := r.Target(9)
	assert.True(t, ok)
	assert.Equal(t, "calc", got.Name())

	r.Close(9)
	_, ok = r.Target(9)
	assert.False(t, ok)
}
