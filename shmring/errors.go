package shmring

import "errors"

var (
	// ErrIncompatibleRing is returned when an opened ring file's header
	// version does not match RingVersion (spec.md §6.2).
	ErrIncompatibleRing = errors.New("shmring: incompatible ring version")
	// ErrWriterConflict is returned when Create observes a live writer_pid
	// already holding the ring (spec.md §5, §7).
	ErrWriterConflict = errors.New("shmring: a live writer already holds this ring")
	// ErrSlotTooSmall is returned when a payload does not fit in one slot.
	ErrSlotTooSmall = errors.New("shmring: payload exceeds slot size")
	// ErrRingEmpty is returned by Reader.Poll when there is nothing new to
	// read; callers should back off (see Reader.Poll's doc comment).
	ErrRingEmpty = errors.New("shmring: no new messages")
	// ErrReaderIDRange is returned for a reader_id outside [0, MaxReaders).
	ErrReaderIDRange = errors.New("shmring: reader_id out of range")
)

// OverrunError is returned by Reader.Poll when the writer has advanced far
// enough to overwrite slots this reader had not yet consumed (spec.md
// §4.6, §8 scenario d).
type OverrunError struct {
	// GapStart and GapEnd are the inclusive range of sequence numbers lost.
	GapStart, GapEnd uint64
}

func (e *OverrunError) Error() string {
	return "shmring: overrun: lost sequences"
}
