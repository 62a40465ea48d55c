package glocal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSetClear(t *testing.T) {
	l := New[int]()

	_, ok := l.Get()
	assert.False(t, ok)

	l.Set(42)
	v, ok := l.Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	l.Clear()
	_, ok = l.Get()
	assert.False(t, ok)
}

func TestIsolatedPerGoroutine(t *testing.T) {
	l := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Set(i)
			v, ok := l.Get()
			assert.True(t, ok)
			assert.Equal(t, i, v)
		}()
	}
	wg.Wait()
}
