package shmring

import (
	"encoding/binary"
	"time"
)

// Writer is the single-writer side of a ring (spec.md §4.6, §5: exactly
// one writer per ring, enforced by writer_pid at Create time).
type Writer struct {
	*Ring
}

// lengthPrefixBytes is the inline length prefix written at the front of
// every slot, uniformly for both the fixed trade-sized ring layout and the
// larger variable-event layout (spec.md §4.6 describes both concretely;
// this repo uses one write/read path for both by always framing the slot
// with its payload length).
const lengthPrefixBytes = 4

// MaxPayloadFor returns the largest payload a ring created with the given
// slot_size can hold.
func MaxPayloadFor(slotSize uint32) int {
	return int(slotSize) - lengthPrefixBytes
}

// Write publishes payload into the next slot. The writer never blocks: if
// readers have fallen behind by more than capacity slots, their unread data
// is simply overwritten (spec.md §4.6 overrun policy) and it is on readers
// to detect the resulting gap.
func (w *Writer) Write(payload []byte) (uint64, error) {
	if len(payload) > MaxPayloadFor(w.slotSize) {
		return 0, ErrSlotTooSmall
	}

	// Step 1: seq = write_sequence.fetch_add(1, AcqRel); idx = seq mod capacity.
	seq := w.h.writeSequence().Add(1) - 1
	idx := uint32(seq % uint64(w.capacity))

	// Step 2: volatile_write(slots[idx], payload).
	slot := w.slot(idx)
	binary.LittleEndian.PutUint32(slot[0:lengthPrefixBytes], uint32(len(payload)))
	copy(slot[lengthPrefixBytes:lengthPrefixBytes+len(payload)], payload)

	// Step 3/4: release_fence() then publish the non-atomic mirror. Go has
	// no standalone fence primitive; the atomic store below is the release
	// operation the spec's steps 3-4 describe, ordering the slot write
	// before it becomes visible to readers.
	w.h.cachedWriteSequence().Store(seq + 1)

	// Step 5: update last_write_timestamp_ns.
	w.h.lastWriteTimestampNs().Store(uint64(time.Now().UnixNano()))

	return seq, nil
}
