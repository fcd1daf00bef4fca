// Package shmring implements the shared-memory ring transport of spec.md
// §4.6: a lock-free single-writer/multi-reader circular buffer inside a
// memory-mapped file, used for intra-host distribution at sustained
// high message rates.
package shmring

import "sync/atomic"

// HeaderSize is the fixed, cache-line-padded header region preceding the
// slot array (spec.md §4.6).
const HeaderSize = 2048

// MaxReaders bounds the number of distinct reader cursors a ring header can
// track (spec.md §4.6: K <= 16).
const MaxReaders = 16

// RingVersion is the only header version this implementation writes or
// accepts.
const RingVersion uint32 = 1

// Byte offsets within the header region. Every field is read/written via
// direct offset math, never a borrowed reference into a packed struct
// (spec.md §9).
const (
	offVersion              = 0
	offCapacity              = 4
	offSlotSize              = 8
	offWriteSequence         = 16 // atomic u64
	offCachedWriteSequence   = 24 // mirror, read by readers
	offWriterPID             = 32
	offLastWriteTimestampNs  = 40 // atomic u64
	offReaderCursors         = 48 // MaxReaders * 8 bytes, atomic u64 each
)

func init() {
	if offReaderCursors+MaxReaders*8 > HeaderSize {
		panic("shmring: header layout overflows HeaderSize")
	}
}

// header is a thin view over the mmap'd header region's first HeaderSize
// bytes. It never copies; every method reads or writes directly at a fixed
// offset into the backing slice.
type header struct {
	buf []byte
}

func (h header) versionPtr() *uint32 { return (*uint32)(atPointer32(h.buf, offVersion)) }
func (h header) capacityPtr() *uint32 { return (*uint32)(atPointer32(h.buf, offCapacity)) }
func (h header) slotSizePtr() *uint32 { return (*uint32)(atPointer32(h.buf, offSlotSize)) }
func (h header) writerPIDPtr() *uint32 { return (*uint32)(atPointer32(h.buf, offWriterPID)) }

func (h header) writeSequence() *atomic.Uint64 {
	return (*atomic.Uint64)(atPointer64(h.buf, offWriteSequence))
}
func (h header) cachedWriteSequence() *atomic.Uint64 {
	return (*atomic.Uint64)(atPointer64(h.buf, offCachedWriteSequence))
}
func (h header) lastWriteTimestampNs() *atomic.Uint64 {
	return (*atomic.Uint64)(atPointer64(h.buf, offLastWriteTimestampNs))
}
func (h header) readerCursor(id int) *atomic.Uint64 {
	return (*atomic.Uint64)(atPointer64(h.buf, offReaderCursors+id*8))
}

func (h header) Version() uint32  { return *h.versionPtr() }
func (h header) Capacity() uint32 { return *h.capacityPtr() }
func (h header) SlotSize() uint32 { return *h.slotSizePtr() }
func (h header) WriterPID() uint32 { return *h.writerPIDPtr() }
