package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamspace/ringhost/status"
)

func TestOneshotDelivery(t *testing.T) {
	o := NewOneshot()
	o.Send(Frame{Status: status.Ok, Payload: []byte("hi")})
	f, ok := o.Recv()
	require.True(t, ok)
	assert.Equal(t, status.Ok, f.Status)
	assert.Equal(t, "hi", string(f.Payload))
}

func TestOneshotSingleDelivery(t *testing.T) {
	o := NewOneshot()
	o.Send(Frame{Status: status.Ok})
	o.Send(Frame{Status: status.Err}) // dropped, channel already full
	f, ok := o.Recv()
	require.True(t, ok)
	assert.Equal(t, status.Ok, f.Status)
}

func TestOneshotClosedWithoutSend(t *testing.T) {
	o := NewOneshot()
	o.Close()
	_, ok := o.Recv()
	assert.False(t, ok)
}

func TestQueueOrderPreserved(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Send(Frame{Status: status.Ok, Payload: []byte{byte(i)}})
	}
	q.Send(Frame{Status: status.StreamEnd})

	for i := 0; i < 5; i++ {
		f, ok := q.Recv()
		require.True(t, ok)
		assert.Equal(t, status.Ok, f.Status)
		assert.Equal(t, byte(i), f.Payload[0])
	}
	f, ok := q.Recv()
	require.True(t, ok)
	assert.Equal(t, status.StreamEnd, f.Status)
}

func TestQueueBlocksThenDelivers(t *testing.T) {
	q := NewQueue()
	done := make(chan Frame, 1)
	go func() {
		f, ok := q.Recv()
		if ok {
			done <- f
		}
	}()

	time.Sleep(10 * time.Millisecond) // give the goroutine a chance to block
	q.Send(Frame{Status: status.Ok, Payload: []byte("late")})

	select {
	case f := <-done:
		assert.Equal(t, "late", string(f.Payload))
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Send")
	}
}

func TestQueueCloseDrainsThenEnds(t *testing.T) {
	q := NewQueue()
	q.Send(Frame{Status: status.Ok})
	q.Close()

	_, ok := q.Recv()
	assert.True(t, ok) // buffered frame still delivered

	_, ok = q.Recv()
	assert.False(t, ok) // drained and closed

	q.Send(Frame{Status: status.Ok}) // dropped silently, no panic
}
