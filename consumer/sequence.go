// Package consumer implements the stateful consumer core of spec.md §4.8:
// a reusable sequence tracker for gap detection, and the
// apply/snapshot/restore contract an embedding application's state machine
// presents to the rest of the pipeline.
package consumer

// Gap is an inclusive range of sequence numbers never observed.
type Gap struct {
	Start, End uint64
}

// SequenceTracker implements spec.md §4.8's tracker: it holds the highest
// sequence seen and the list of gaps opened by skips in the stream.
// Duplicates and out-of-order-but-already-seen sequences are silently
// ignored (spec.md §7, Sequence.Duplicate).
type SequenceTracker struct {
	lastSeq uint64
	gaps    []Gap
}

// NewSequenceTracker returns a tracker with no history.
func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{}
}

// Track records seq's arrival. It returns the newly opened gap, if any, so
// callers can react immediately (e.g. emit a RecoveryRequest) without
// polling Gaps() after every call.
func (t *SequenceTracker) Track(seq uint64) *Gap {
	if seq <= t.lastSeq {
		return nil // duplicate or stale reorder; ignore
	}
	if seq == t.lastSeq+1 {
		t.lastSeq = seq
		return nil
	}

	g := Gap{Start: t.lastSeq + 1, End: seq - 1}
	t.gaps = append(t.gaps, g)
	t.lastSeq = seq
	return &g
}

// HasGaps reports whether any gap remains unresolved.
func (t *SequenceTracker) HasGaps() bool { return len(t.gaps) > 0 }

// Gaps returns every currently open gap, oldest first.
func (t *SequenceTracker) Gaps() []Gap {
	out := make([]Gap, len(t.gaps))
	copy(out, t.gaps)
	return out
}

// NextExpected returns the next sequence the tracker has not yet seen.
func (t *SequenceTracker) NextExpected() uint64 { return t.lastSeq + 1 }

// LastSequence returns the highest sequence observed so far.
func (t *SequenceTracker) LastSequence() uint64 { return t.lastSeq }

// SetLastSequence forces the tracker's last-seen sequence, used when
// restoring from a snapshot (spec.md §4.8).
func (t *SequenceTracker) SetLastSequence(seq uint64) {
	t.lastSeq = seq
}

// ResolveGap removes [from, to] from the open gap list once a recovery
// response has filled it in full. Partial fills are not supported: the
// replay protocol guarantees whole-interval responses (spec.md §4.9).
func (t *SequenceTracker) ResolveGap(from, to uint64) {
	out := t.gaps[:0]
	for _, g := range t.gaps {
		if g.Start == from && g.End == to {
			continue
		}
		out = append(out, g)
	}
	t.gaps = out
}
