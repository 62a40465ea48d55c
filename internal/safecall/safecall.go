// Package safecall traps panics crossing the FFI boundary into a plugin, the
// same way the teacher's plugin runtime recovers around every handler
// invocation (streamspace's plugin runtime logs and continues rather than
// letting a misbehaving plugin take the host down). Here a trapped panic is
// additionally turned into the status/error the spec's failure paths
// already expect, so callers don't need a second code path for "panicked"
// versus "returned non-Ok".
package safecall

import (
	"github.com/streamspace/ringhost/internal/logging"
	"github.com/streamspace/ringhost/status"
)

// Status invokes fn — a plugin's Init/Handle/StreamData/StreamClose entry
// point — and recovers from any panic, logging it and substituting
// status.Err so the caller's normal non-Ok handling takes over instead of
// the panic crossing back out of the plugin.
func Status(component, plugin string, fn func() status.Status) (st status.Status) {
	defer func() {
		if r := recover(); r != nil {
			logging.Component(component).Error().
				Str("plugin", plugin).
				Interface("panic", r).
				Msg("plugin entry point panicked, trapped at ffi boundary")
			st = status.Err
		}
	}()
	return fn()
}

// Void invokes a plugin callback that returns nothing and recovers from any
// panic, suppressing it entirely — used for a plugin's Shutdown entry point,
// which has no status to report. send_result does its own recover inline.
func Void(component, plugin string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Component(component).Error().
				Str("plugin", plugin).
				Interface("panic", r).
				Msg("plugin panicked, suppressed at ffi boundary")
		}
	}()
	fn()
}
