// Package hosterr defines the typed errors the host surfaces to callers.
// Every public call site returns one of these instead of an opaque
// fmt.Errorf chain, so callers can switch on Kind the same way
// streamspace/api's AppError lets handlers switch on Code.
package hosterr

import (
	"fmt"

	"github.com/streamspace/ringhost/status"
)

// Kind is a machine-readable error identifier.
type Kind string

const (
	// LibraryOpenFailed means the platform loader rejected the path.
	LibraryOpenFailed Kind = "LIBRARY_OPEN_FAILED"
	// MissingSymbol means the well-known entry symbol was not present.
	MissingSymbol Kind = "MISSING_SYMBOL"
	// NullInfo means the entry symbol returned a nil info block.
	NullInfo Kind = "NULL_INFO"
	// IncompatibleAbi means the plugin's ABI version does not match.
	IncompatibleAbi Kind = "INCOMPATIBLE_ABI"
	// NullVTable means the info block's vtable pointer was nil.
	NullVTable Kind = "NULL_VTABLE"
	// MissingRequiredEntries means init or handle was absent, or a stream
	// target has no StreamData entry. Load also reports a name that is
	// already registered under this kind, and Reload a library whose
	// declared name differs from the requested one.
	MissingRequiredEntries Kind = "MISSING_REQUIRED_ENTRIES"
	// PluginInitFailed means init returned non-Ok or panicked.
	PluginInitFailed Kind = "PLUGIN_INIT_FAILED"
	// PluginHandleFailed means handle returned non-Ok synchronously.
	PluginHandleFailed Kind = "PLUGIN_HANDLE_FAILED"
	// SenderDropped means the underlying receiver observed no delivery.
	SenderDropped Kind = "SENDER_DROPPED"
	// InvalidPath means the supplied path is not usable. Stream writes also
	// report an unknown or already-closed stream sid under this kind.
	InvalidPath Kind = "INVALID_PATH"
	// UnknownPlugin means no loaded plugin is registered under the given
	// name (public call operations and Unload).
	UnknownPlugin Kind = "UNKNOWN_PLUGIN"
)

// Error is the standardized error shape returned by every host operation.
type Error struct {
	Kind Kind
	// Status carries the plugin-reported status when Kind is
	// PluginInitFailed or PluginHandleFailed.
	Status status.Status
	// Expected/Actual carry the ABI version mismatch when Kind is
	// IncompatibleAbi.
	Expected, Actual uint32
	// Plugin is the target plugin name, when relevant.
	Plugin string
	// Details wraps the underlying cause, if any.
	Details error
}

func (e *Error) Error() string {
	switch e.Kind {
	case IncompatibleAbi:
		return fmt.Sprintf("ringhost: incompatible abi version: expected %d, got %d", e.Expected, e.Actual)
	case PluginInitFailed, PluginHandleFailed:
		return fmt.Sprintf("ringhost: %s: plugin returned %s", e.Kind, e.Status)
	case UnknownPlugin:
		return fmt.Sprintf("ringhost: unknown plugin %q", e.Plugin)
	default:
		if e.Details != nil {
			return fmt.Sprintf("ringhost: %s: %v", e.Kind, e.Details)
		}
		return fmt.Sprintf("ringhost: %s", e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Details }

// New builds a bare error of the given kind.
func New(kind Kind) *Error { return &Error{Kind: kind} }

// Wrap builds an error of the given kind wrapping cause.
func Wrap(kind Kind, cause error) *Error { return &Error{Kind: kind, Details: cause} }

// FromPluginStatus builds a PluginHandleFailed/PluginInitFailed error
// carrying the plugin's returned status.
func FromPluginStatus(kind Kind, st status.Status) *Error {
	return &Error{Kind: kind, Status: st}
}

// AbiMismatch builds an IncompatibleAbi error.
func AbiMismatch(expected, actual uint32) *Error {
	return &Error{Kind: IncompatibleAbi, Expected: expected, Actual: actual}
}

// NoSuchPlugin builds an UnknownPlugin error.
func NoSuchPlugin(name string) *Error {
	return &Error{Kind: UnknownPlugin, Plugin: name}
}
