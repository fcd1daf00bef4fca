package shmring

import "unsafe"

// atPointer32/atPointer64 compute a typed pointer at a byte offset into buf.
// mmap always returns page-aligned memory, so any offset that is itself a
// multiple of its field's width is safely aligned for atomic access; the
// header layout in header.go is constructed to guarantee that.
func atPointer32(buf []byte, off int) unsafe.Pointer {
	return unsafe.Pointer(&buf[off])
}

func atPointer64(buf []byte, off int) unsafe.Pointer {
	return unsafe.Pointer(&buf[off])
}
