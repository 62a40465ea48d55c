// Package vtable defines the function-pointer tables that make up the ring
// ABI contract: the host callback table a plugin is handed at init time, the
// optional host extension table, and the plugin's own entry-point table and
// metadata block. Every capability is optional and presence-tested at the
// call site — this is a vtable of function values, not an interface
// hierarchy, because plugins on the other side of the boundary cannot be
// assumed to share the host's type system.
package vtable

import (
	"unsafe"

	"github.com/streamspace/ringhost/abi"
	"github.com/streamspace/ringhost/status"
)

// ExpectedABIVersion is the only ABI version this host accepts.
const ExpectedABIVersion uint32 = 1

// HostVTable is the callback table a plugin is given at init time. A
// plugin invokes SendResult to report a call result and the Dispatch*/
// Stream* entries to reach another loaded plugin through the host.
type HostVTable struct {
	SendResult func(hostCtx unsafe.Pointer, sid uint64, st status.Status, payload abi.Vec[byte])

	DispatchSync  func(hostCtx unsafe.Pointer, target, entry abi.Str, payload abi.Bytes) abi.Tuple[status.Status, abi.Vec[byte]]
	DispatchFast  func(hostCtx unsafe.Pointer, target, entry abi.Str, payload abi.Bytes) abi.Tuple[status.Status, abi.Vec[byte]]
	DispatchAsync func(hostCtx unsafe.Pointer, target, entry abi.Str, payload abi.Bytes) status.Status
	DispatchStream func(hostCtx unsafe.Pointer, target, entry abi.Str, payload abi.Bytes) abi.Tuple[status.Status, uint64]

	StreamRead  func(hostCtx unsafe.Pointer, sid uint64) abi.Tuple[status.Status, abi.Vec[byte]]
	StreamWrite func(hostCtx unsafe.Pointer, sid uint64, data abi.Bytes) status.Status
	StreamClose func(hostCtx unsafe.Pointer, sid uint64) status.Status

	// SetState/GetState mirror HostExt's entries so a plugin can reach
	// scratch state through the same table it already holds, without the
	// host needing to hand out HostExt's address separately. Nil unless the
	// host that builds this table wires them up, matching HostExt's own
	// optionality.
	SetState func(hostCtx unsafe.Pointer, sid uint64, key abi.Str, value abi.Bytes) abi.Bytes
	GetState func(hostCtx unsafe.Pointer, sid uint64, key abi.Str) abi.Bytes
}

// HostExt is the optional per-request scratch-state extension. Its address
// is stable for the lifetime of the host context it is embedded in.
type HostExt struct {
	SetState func(hostCtx unsafe.Pointer, sid uint64, key abi.Str, value abi.Bytes) abi.Bytes
	GetState func(hostCtx unsafe.Pointer, sid uint64, key abi.Str) abi.Bytes
}

// PluginVTable is the set of entry points a plugin exposes to the host.
// Init and Handle are required; everything else is optional and must be
// presence-tested (nil-checked) before use.
type PluginVTable struct {
	Init func(hostCtx unsafe.Pointer, hostVTable *HostVTable) status.Status

	Handle func(entry abi.Str, sid uint64, payload abi.Bytes) status.Status

	Shutdown func()

	StreamData  func(sid uint64, data abi.Bytes) status.Status
	StreamClose func(sid uint64) status.Status
}

// PluginInfo is the metadata block a plugin exports under the well-known
// symbol name. StructSize is reserved for forward compatibility and is not
// currently interpreted by the host.
type PluginInfo struct {
	ABIVersion uint32
	StructSize uint32

	Name    abi.Str
	Version abi.Str

	PluginCtx unsafe.Pointer
	VTable    *PluginVTable
}

// Compatible reports whether this plugin's ABI version matches what the
// host expects. The host accepts only an exact match.
func (p *PluginInfo) Compatible(expected uint32) bool {
	return p != nil && p.ABIVersion == expected
}

// Ready reports whether the plugin's vtable carries the required entries
// (Init and Handle). Everything else is optional.
func (v *PluginVTable) Ready() bool {
	return v != nil && v.Init != nil && v.Handle != nil
}
