package shmring

import (
	"encoding/binary"
	"time"
)

// Reader is one of up to MaxReaders independent consumers of a ring. Each
// reader owns a slot in the header's reader_cursors array (spec.md §4.6).
type Reader struct {
	*Ring
	readerID int
	localSeq uint64
}

// EmptyBackoff is how long Reader.Poll's caller should sleep after an
// ErrRingEmpty result before polling again, absent a wakeup primitive
// (spec.md §4.6: "a short sleep... unless a wakeup primitive is
// attached").
const EmptyBackoff = 100 * time.Microsecond

// Poll returns the next unread payload and its sequence number. It returns
// ErrRingEmpty if the writer has produced nothing new since the last call,
// and *OverrunError if the writer has advanced past this reader's cursor by
// more than the ring's capacity — in which case the reader jumps forward to
// the oldest slot still live and the caller should treat the gap as lost
// (surface it as a state invalidation upstream, see the consumer package).
func (r *Reader) Poll() ([]byte, uint64, error) {
	// Step 1/2: acquire_fence() then observed = cached_write_sequence. The
	// atomic load below is the acquire operation.
	observed := r.h.cachedWriteSequence().Load()

	if r.localSeq >= observed {
		r.h.readerCursor(r.readerID).Store(r.localSeq)
		return nil, 0, ErrRingEmpty
	}

	gap := observed - r.localSeq
	if gap > uint64(r.capacity) {
		gapStart := r.localSeq
		gapEnd := observed - uint64(r.capacity) - 1
		r.localSeq = observed - uint64(r.capacity)
		r.h.readerCursor(r.readerID).Store(r.localSeq)
		return nil, 0, &OverrunError{GapStart: gapStart, GapEnd: gapEnd}
	}

	seq := r.localSeq
	idx := uint32(seq % uint64(r.capacity))
	slot := r.slot(idx)
	n := binary.LittleEndian.Uint32(slot[0:lengthPrefixBytes])
	payload := make([]byte, n)
	copy(payload, slot[lengthPrefixBytes:lengthPrefixBytes+int(n)])

	r.localSeq++
	// Step 4: store reader_cursor = observed at the end of the batch; this
	// repo updates it every call rather than once per drained batch, which
	// is a strictly more conservative (never-stale) version of the same
	// contract.
	r.h.readerCursor(r.readerID).Store(r.localSeq)

	return payload, seq, nil
}

// LastWriteTimestampNs returns the writer's most recent publish timestamp,
// for staleness checks.
func (r *Ring) LastWriteTimestampNs() uint64 {
	return r.h.lastWriteTimestampNs().Load()
}
