package shmring

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/edsrzf/mmap-go"
)

// Ring is the shared state both Writer and Reader wrap: an open
// memory-mapped file plus the cached capacity/slot_size read from its
// header at open time (spec.md §6.2: consumers trust these once validated
// at open).
type Ring struct {
	file     *os.File
	mapping  mmap.MMap
	h        header
	capacity uint32
	slotSize uint32
}

func slotOffset(idx, slotSize uint32) int64 {
	return int64(HeaderSize) + int64(idx)*int64(slotSize)
}

func totalFileSize(capacity, slotSize uint32) int64 {
	return int64(HeaderSize) + int64(capacity)*int64(slotSize)
}

// Create truncates (or creates) the file at path to hold a ring of the
// given capacity (slot count) and slot_size, and writes the initialized
// header. It refuses to proceed if the file already exists and its
// writer_pid looks like a live process (spec.md §5, "a second writer with a
// different PID observing a valid, recent writer_pid must refuse to
// open").
func Create(path string, capacity, slotSize uint32) (*Writer, error) {
	if capacity == 0 || slotSize == 0 {
		return nil, fmt.Errorf("shmring: capacity and slot_size must be nonzero")
	}
	if existing, err := tryOpenForConflictCheck(path); err == nil {
		defer existing.Close()
		if pid := existing.h.WriterPID(); pid != 0 && processAlive(pid) {
			return nil, ErrWriterConflict
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("shmring: open %s: %w", path, err)
	}
	size := totalFileSize(capacity, slotSize)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("shmring: truncate: %w", err)
	}

	mapping, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmring: mmap: %w", err)
	}

	h := header{buf: mapping[:HeaderSize]}
	*h.versionPtr() = RingVersion
	*h.capacityPtr() = capacity
	*h.slotSizePtr() = slotSize
	*h.writerPIDPtr() = uint32(os.Getpid())
	h.writeSequence().Store(0)
	h.cachedWriteSequence().Store(0)
	h.lastWriteTimestampNs().Store(uint64(time.Now().UnixNano()))
	for i := 0; i < MaxReaders; i++ {
		h.readerCursor(i).Store(0)
	}

	r := &Ring{file: f, mapping: mapping, h: h, capacity: capacity, slotSize: slotSize}
	return &Writer{Ring: r}, nil
}

// tryOpenForConflictCheck mmaps an existing ring file (read-write) purely
// to inspect its writer_pid; callers must Close() the returned Ring.
func tryOpenForConflictCheck(path string) (*Ring, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil || fi.Size() < HeaderSize {
		f.Close()
		return nil, fmt.Errorf("shmring: too small to be a ring")
	}
	mapping, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Ring{file: f, mapping: mapping, h: header{buf: mapping[:HeaderSize]}}, nil
}

// Open memory-maps an existing ring file for reading, validating the
// header's version (spec.md §6.2).
func Open(path string, readerID int) (*Reader, error) {
	if readerID < 0 || readerID >= MaxReaders {
		return nil, ErrReaderIDRange
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("shmring: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil || fi.Size() < HeaderSize {
		f.Close()
		return nil, fmt.Errorf("shmring: %s too small to be a ring", path)
	}
	mapping, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("shmring: mmap: %w", err)
	}
	h := header{buf: mapping[:HeaderSize]}
	if h.Version() != RingVersion {
		mapping.Unmap()
		f.Close()
		return nil, ErrIncompatibleRing
	}
	r := &Ring{file: f, mapping: mapping, h: h, capacity: h.Capacity(), slotSize: h.SlotSize()}
	return &Reader{Ring: r, readerID: readerID}, nil
}

// Version, Capacity, SlotSize, and WriterPID expose the header fields a
// diagnostic tool needs read-only access to; ordinary Reader/Writer use
// never calls these.
func (r *Ring) Version() uint32   { return r.h.Version() }
func (r *Ring) Capacity() uint32  { return r.capacity }
func (r *Ring) SlotSize() uint32  { return r.slotSize }
func (r *Ring) WriterPID() uint32 { return r.h.WriterPID() }

// WriteSequence returns the writer's current monotonic sequence counter.
func (r *Ring) WriteSequence() uint64 {
	return r.h.writeSequence().Load()
}

// ReaderCursor returns the stored cursor for the given reader_id.
func (r *Ring) ReaderCursor(readerID int) (uint64, error) {
	if readerID < 0 || readerID >= MaxReaders {
		return 0, ErrReaderIDRange
	}
	return r.h.readerCursor(readerID).Load(), nil
}

// Close unmaps and closes the underlying file.
func (r *Ring) Close() error {
	if err := r.mapping.Unmap(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func (r *Ring) slot(idx uint32) []byte {
	start := slotOffset(idx, r.slotSize)
	return r.mapping[start : start+int64(r.slotSize)]
}

// processAlive reports whether pid looks like a running process, using
// signal 0 (no-op) the way Unix tooling traditionally probes liveness. On
// platforms where this cannot be determined it conservatively returns true
// so callers do not accidentally steal a live writer's ring.
func processAlive(pid uint32) bool {
	proc, err := os.FindProcess(int(pid))
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	if err == os.ErrProcessDone {
		return false
	}
	// ESRCH means no such process; anything else (e.g. EPERM, meaning it
	// exists but we can't signal it) counts as alive.
	return err != syscall.ESRCH
}
