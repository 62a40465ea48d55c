// Package abi defines the fixed-layout value types that cross the ring ABI
// boundary between the host and a loaded plugin: non-owning string/byte
// views, an owned byte vector, a two-element tuple, and a key-value pair.
//
// Every type here is a plain, 64-bit-aligned struct of a pointer plus
// integer fields — the same shape the ABI this module hosts would have if
// expressed in C: no methods with hidden allocations, no interfaces. Str and
// Bytes are borrowed views, valid only for the duration of the call that
// produced them; a plugin that needs the data afterwards must copy it.
package abi

import "unsafe"

// Str is a non-owning UTF-8 view: pointer + 32-bit length. Valid for the
// duration of the call that received it.
type Str struct {
	Ptr unsafe.Pointer
	Len uint32
	_   [4]byte // explicit padding to keep the struct 64-bit aligned
}

// Bytes is a non-owning byte view: pointer + 64-bit length. Valid for the
// duration of the call that received it.
type Bytes struct {
	Ptr unsafe.Pointer
	Len uint64
}

// Vec is an owned buffer: pointer + length + capacity. Ownership transfers
// to whoever receives it; the receiver is responsible for releasing it
// (in Go, simply letting it become unreachable).
type Vec[T any] struct {
	Ptr unsafe.Pointer
	Len uint64
	Cap uint64
}

// Tuple is a two-element, by-value carrier.
type Tuple[A any, B any] struct {
	A A
	B B
}

// KV is a header-like string key/value pair.
type KV struct {
	Key   Str
	Value Str
}

// StrFromString builds a borrowed Str view over s. s must outlive the view.
func StrFromString(s string) Str {
	if len(s) == 0 {
		return Str{}
	}
	return Str{Ptr: unsafe.Pointer(unsafe.StringData(s)), Len: uint32(len(s))}
}

// String materializes the view as a Go string. The returned string aliases
// the original backing memory and must not outlive it.
func (s Str) String() string {
	if s.Ptr == nil || s.Len == 0 {
		return ""
	}
	return unsafe.String((*byte)(s.Ptr), int(s.Len))
}

// BytesFromSlice builds a borrowed Bytes view over b. b must outlive the view.
func BytesFromSlice(b []byte) Bytes {
	if len(b) == 0 {
		return Bytes{}
	}
	return Bytes{Ptr: unsafe.Pointer(unsafe.SliceData(b)), Len: uint64(len(b))}
}

// Slice materializes the view as a Go byte slice. The returned slice aliases
// the original backing memory and must not outlive it.
func (b Bytes) Slice() []byte {
	if b.Ptr == nil || b.Len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(b.Ptr), int(b.Len))
}

// VecFromBytes takes ownership of b (copies it into a fresh buffer so the
// caller's slice and the returned Vec never alias) and returns it as an
// owned Vec[byte].
func VecFromBytes(b []byte) Vec[byte] {
	if len(b) == 0 {
		return Vec[byte]{}
	}
	owned := make([]byte, len(b))
	copy(owned, b)
	return Vec[byte]{
		Ptr: unsafe.Pointer(unsafe.SliceData(owned)),
		Len: uint64(len(owned)),
		Cap: uint64(cap(owned)),
	}
}

// IntoBytes consumes the Vec and returns its contents as a Go byte slice.
// Matches the "receiver converts it into its native owned buffer" rule: the
// caller now owns the returned slice exclusively.
func (v Vec[T]) IntoBytes() []byte {
	if v.Ptr == nil || v.Len == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(v.Ptr), int(v.Len))
}

// Empty reports whether the vector carries no data.
func (v Vec[T]) Empty() bool {
	return v.Len == 0
}
