// Package fastpath implements the two goroutine-local "direct slot" cells
// the synchronous fast call path uses to avoid the pending registry
// entirely: a direct-result cell (used by the ultra-fast unary call) and a
// direct-oneshot cell (a legacy extension point, preserved but not wired to
// any public operation — see SPEC_FULL.md's translation note 2).
//
// Both cells are per-goroutine (see package glocal for why that, rather
// than a true OS-thread-local, is the right Go analogue here) and must be
// bound and released around a single synchronous, non-suspending plugin
// call: the caller publishes the address of a stack-owned slot, invokes the
// plugin, and the plugin's result-delivery call writes into that slot
// before returning.
package fastpath

import (
	"github.com/streamspace/ringhost/internal/frame"
	"github.com/streamspace/ringhost/internal/glocal"
)

// ResultSlot is a stack-owned container the caller of a fast unary call
// allocates, publishes via BindResult, and reads back after the plugin
// call returns.
type ResultSlot struct {
	Filled bool
	Frame  frame.Frame
}

var directResult = glocal.New[*ResultSlot]()

// Debug gates the debug-assert on cell reuse. Tests leave it on; a host
// embedder that has profiled the assert's cost away can turn it off.
var Debug = true

// BindResult publishes slot as the calling goroutine's direct-result cell
// and returns a release function the caller must invoke on every exit path
// (including error returns and panics, via defer) to null the cell again.
//
// Panics if Debug is true and a direct-result cell is already bound on this
// goroutine — cells must never be aliased.
func BindResult(slot *ResultSlot) (release func()) {
	if Debug {
		if _, ok := directResult.Get(); ok {
			panic("fastpath: direct-result cell already in use on this goroutine")
		}
	}
	directResult.Set(slot)
	return func() { directResult.Clear() }
}

// PublishResult looks up the calling goroutine's direct-result cell and, if
// bound, writes (status, payload) into it. Returns true if a cell was
// bound (result handled via the fast path), false otherwise, so the
// result-delivery callback can fall through to the next resolution step.
func PublishResult(f frame.Frame) bool {
	slot, ok := directResult.Get()
	if !ok || slot == nil {
		return false
	}
	slot.Filled = true
	slot.Frame = f
	return true
}

// SwapResult installs slot as the calling goroutine's direct-result cell
// and returns whatever was previously bound (nil if nothing was). Used by
// the cross-plugin fast dispatcher, which must re-enter the direct-result
// cell from inside an already-bound outer call: unlike BindResult, it never
// panics on reuse, because nesting here is intentional, not aliasing.
func SwapResult(slot *ResultSlot) (prev *ResultSlot) {
	prev, _ = directResult.Get()
	directResult.Set(slot)
	return prev
}

// RestoreResult re-installs prev (as returned by SwapResult) as the
// calling goroutine's direct-result cell, or clears it if prev is nil.
func RestoreResult(prev *ResultSlot) {
	if prev == nil {
		directResult.Clear()
		return
	}
	directResult.Set(prev)
}

// OneshotSlot is the legacy extension point named in SPEC_FULL.md: a
// caller-owned optional single-shot sender. No public Host operation
// currently publishes one; it is preserved so a future fast caller can
// re-introduce it without touching the result-delivery resolution order.
type OneshotSlot struct {
	Sender *frame.Oneshot
}

var directOneshot = glocal.New[*OneshotSlot]()

// BindOneshot publishes slot as the calling goroutine's direct-oneshot
// cell, mirroring BindResult.
func BindOneshot(slot *OneshotSlot) (release func()) {
	directOneshot.Set(slot)
	return func() { directOneshot.Clear() }
}

// PublishOneshot looks up the calling goroutine's direct-oneshot cell and,
// if bound and still carrying a sender, takes it and sends f through it.
func PublishOneshot(f frame.Frame) bool {
	slot, ok := directOneshot.Get()
	if !ok || slot == nil || slot.Sender == nil {
		return false
	}
	sender := slot.Sender
	slot.Sender = nil
	sender.Send(f)
	return true
}
