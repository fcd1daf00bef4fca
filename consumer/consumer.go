package consumer

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// snapshotVersion is the 4-byte version prefix every snapshot blob carries
// (spec.md §6.4).
const snapshotVersion uint32 = 1

// Consumer is the base contract an embedding application's state machine
// presents (spec.md §4.8).
type Consumer interface {
	Apply(event []byte) error
	Snapshot() ([]byte, error)
	Restore(snapshot []byte) error
}

// GapHandler is invoked synchronously when Tracked.ApplySequenced detects a
// new gap, so the caller can emit a RecoveryRequest TLV for
// (sourceID, gap.Start, gap.End) (spec.md §4.8).
type GapHandler func(sourceID uint32, gap Gap)

// Tracked wraps a Consumer with the sequencing refinement of spec.md §4.8:
// apply_sequenced, last_sequence, has_gap, layered on the inner consumer's
// apply/snapshot/restore without the inner type needing to know about
// sequence tracking at all.
type Tracked struct {
	SourceID uint32
	inner    Consumer
	tracker  *SequenceTracker
	onGap    GapHandler
}

// NewTracked wraps inner with a fresh sequence tracker for source sourceID.
// onGap may be nil if the caller does not want gap notifications.
func NewTracked(sourceID uint32, inner Consumer, onGap GapHandler) *Tracked {
	return &Tracked{
		SourceID: sourceID,
		inner:    inner,
		tracker:  NewSequenceTracker(),
		onGap:    onGap,
	}
}

// ApplySequenced tracks seq, firing onGap for any newly opened gap, then
// applies event to the wrapped consumer regardless of whether a gap was
// just opened — spec.md treats gap detection and state application as
// independent concerns; a consumer may choose to apply out-of-order events
// optimistically while a recovery request is in flight.
func (t *Tracked) ApplySequenced(seq uint64, event []byte) error {
	if gap := t.tracker.Track(seq); gap != nil && t.onGap != nil {
		t.onGap(t.SourceID, *gap)
	}
	return t.inner.Apply(event)
}

// Apply applies event without sequence tracking, for callers that already
// know the stream has no gaps (e.g. replaying a RecoveryResponse).
func (t *Tracked) Apply(event []byte) error { return t.inner.Apply(event) }

// LastSequence returns the highest sequence observed.
func (t *Tracked) LastSequence() uint64 { return t.tracker.LastSequence() }

// HasGap reports whether next is beyond the tracker's expected next
// sequence, i.e. applying it now would (re)open a gap.
func (t *Tracked) HasGap(next uint64) bool { return next > t.tracker.NextExpected() }

// Gaps returns every currently open gap.
func (t *Tracked) Gaps() []Gap { return t.tracker.Gaps() }

// ResolveGap marks [from, to] filled, typically after a RecoveryResponse
// stream for that interval has been fully applied.
func (t *Tracked) ResolveGap(from, to uint64) { t.tracker.ResolveGap(from, to) }

// trackerState is the JSON-encoded block of a Tracked snapshot: the inner
// consumer's own bytes are opaque and appended untouched after it.
type trackerState struct {
	LastSequence uint64 `json:"last_sequence"`
	Gaps         []Gap  `json:"gaps"`
}

// Snapshot serializes the tracker's position plus the inner consumer's own
// snapshot into one opaque blob: a 4-byte version, a length-prefixed JSON
// tracker-state block, then the inner snapshot's raw bytes.
func (t *Tracked) Snapshot() ([]byte, error) {
	inner, err := t.inner.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("consumer: inner snapshot: %w", err)
	}
	state, err := json.Marshal(trackerState{LastSequence: t.tracker.LastSequence(), Gaps: t.tracker.Gaps()})
	if err != nil {
		return nil, fmt.Errorf("consumer: encode tracker state: %w", err)
	}

	out := make([]byte, 4+4+len(state)+len(inner))
	binary.LittleEndian.PutUint32(out[0:4], snapshotVersion)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(state)))
	copy(out[8:8+len(state)], state)
	copy(out[8+len(state):], inner)
	return out, nil
}

// Restore reverses Snapshot, per spec.md §6.4's restore(snapshot(state)) =
// state guarantee.
func (t *Tracked) Restore(snapshot []byte) error {
	if len(snapshot) < 8 {
		return fmt.Errorf("consumer: snapshot too short")
	}
	version := binary.LittleEndian.Uint32(snapshot[0:4])
	if version != snapshotVersion {
		return fmt.Errorf("consumer: unsupported snapshot version %d", version)
	}
	stateLen := int(binary.LittleEndian.Uint32(snapshot[4:8]))
	if len(snapshot) < 8+stateLen {
		return fmt.Errorf("consumer: truncated snapshot")
	}
	var state trackerState
	if err := json.Unmarshal(snapshot[8:8+stateLen], &state); err != nil {
		return fmt.Errorf("consumer: decode tracker state: %w", err)
	}

	if err := t.inner.Restore(snapshot[8+stateLen:]); err != nil {
		return fmt.Errorf("consumer: inner restore: %w", err)
	}

	t.tracker = NewSequenceTracker()
	t.tracker.SetLastSequence(state.LastSequence)
	t.tracker.gaps = append([]Gap(nil), state.Gaps...)
	return nil
}
