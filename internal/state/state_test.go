package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetGet(t *testing.T) {
	s := New()
	s.Set(1, "a", []byte("hello"))
	assert.Equal(t, "hello", string(s.Get(1, "a")))
	assert.Nil(t, s.Get(1, "missing"))
	assert.Nil(t, s.Get(2, "a"))
}

func TestSetCopiesInput(t *testing.T) {
	s := New()
	buf := []byte("hello")
	s.Set(1, "a", buf)
	buf[0] = 'X'
	assert.Equal(t, "hello", string(s.Get(1, "a")))
}

func TestClearRemovesAllKeys(t *testing.T) {
	s := New()
	s.Set(5, "a", []byte("1"))
	s.Set(5, "b", []byte("2"))
	assert.Equal(t, 2, s.KeyCount())

	s.Clear(5)
	assert.Nil(t, s.Get(5, "a"))
	assert.Nil(t, s.Get(5, "b"))
	assert.Equal(t, 0, s.KeyCount())
}

func TestBoundedKeyCount(t *testing.T) {
	s := New()
	s.Set(1, "a", []byte("x"))
	s.Set(2, "a", []byte("y"))
	s.Set(2, "b", []byte("z"))
	assert.Equal(t, 3, s.KeyCount())

	s.Clear(2)
	assert.Equal(t, 1, s.KeyCount())
}
