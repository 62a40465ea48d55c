package abi

import "unsafe"

// Compile-time layout assertions. These mirror the ABI's own startup checks:
// any change to these struct shapes is a breaking change to every loaded
// plugin, so a build on a platform where these don't hold must fail loudly.
var (
	_ [16]byte = [unsafe.Sizeof(Str{})]byte{}
	_ [16]byte = [unsafe.Sizeof(Bytes{})]byte{}
	_ [24]byte = [unsafe.Sizeof(Vec[byte]{})]byte{}
	_ [32]byte = [unsafe.Sizeof(KV{})]byte{}
	_ [16]byte = [unsafe.Sizeof(Tuple[uint64, uint64]{})]byte{}
)

// AssertLayout re-checks the same invariants at runtime, for hosts that want
// a startup assertion rather than relying purely on the compile-time array
// conversions above (which a future Go toolchain could in principle relax).
func AssertLayout() {
	mustSize("Str", unsafe.Sizeof(Str{}), 16)
	mustSize("Bytes", unsafe.Sizeof(Bytes{}), 16)
	mustSize("Vec[byte]", unsafe.Sizeof(Vec[byte]{}), 24)
	mustSize("KV", unsafe.Sizeof(KV{}), 32)
	mustSize("Tuple[uint64,uint64]", unsafe.Sizeof(Tuple[uint64, uint64]{}), 16)
}

func mustSize(name string, got, want uintptr) {
	if got != want {
		panic("abi: " + name + " layout changed, expected " + itoa(want) + " bytes, got " + itoa(got))
	}
}

func itoa(n uintptr) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
