package wire

import "unsafe"

// Alignment is the byte alignment zero-copy deserialization requires
// (spec.md §3.2).
const Alignment = 8

// IsAligned reports whether buf's backing array starts at an address that
// is a multiple of Alignment. An empty slice is trivially aligned.
func IsAligned(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	return uintptr(unsafe.Pointer(&buf[0]))%Alignment == 0
}

// ParseZeroCopy parses the header directly out of buf when buf is
// 8-byte-aligned. When it is not, it falls back to a single aligned copy
// before parsing, logging the fallback is the caller's responsibility (see
// parser.Parse, which logs it once per source per spec.md §7's
// Ring.AlignmentError policy).
func ParseZeroCopy(buf []byte) (Header, *ParseError, bool) {
	if IsAligned(buf) {
		h, err := Parse(buf)
		return h, err, true
	}
	aligned := make([]byte, len(buf))
	copy(aligned, buf)
	h, err := Parse(aligned)
	return h, err, false
}
