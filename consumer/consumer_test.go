package consumer

import (
	"bytes"
	"reflect"
	"testing"
)

// memConsumer is a minimal Consumer whose state is just an accumulated
// byte log, for testing Tracked without any real domain logic.
type memConsumer struct {
	applied [][]byte
}

func (m *memConsumer) Apply(event []byte) error {
	cp := append([]byte(nil), event...)
	m.applied = append(m.applied, cp)
	return nil
}

func (m *memConsumer) Snapshot() ([]byte, error) {
	var out []byte
	for _, e := range m.applied {
		out = append(out, byte(len(e)))
		out = append(out, e...)
	}
	return out, nil
}

func (m *memConsumer) Restore(snapshot []byte) error {
	m.applied = nil
	for len(snapshot) > 0 {
		n := int(snapshot[0])
		m.applied = append(m.applied, append([]byte(nil), snapshot[1:1+n]...))
		snapshot = snapshot[1+n:]
	}
	return nil
}

// TestSequenceTrackerGapDetection exercises spec.md §8 scenario (e):
// sequences 1,2,3,7,8 -> gaps() = [(4,6)].
func TestSequenceTrackerGapDetection(t *testing.T) {
	tr := NewSequenceTracker()
	for _, seq := range []uint64{1, 2, 3, 7, 8} {
		tr.Track(seq)
	}
	want := []Gap{{Start: 4, End: 6}}
	if got := tr.Gaps(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Gaps() = %v, want %v", got, want)
	}
	if tr.LastSequence() != 8 {
		t.Fatalf("LastSequence() = %d, want 8", tr.LastSequence())
	}
}

func TestSequenceTrackerResolveGap(t *testing.T) {
	tr := NewSequenceTracker()
	for _, seq := range []uint64{1, 2, 3, 7, 8} {
		tr.Track(seq)
	}
	tr.ResolveGap(4, 6)
	if tr.HasGaps() {
		t.Fatalf("expected no gaps after ResolveGap, got %v", tr.Gaps())
	}
	if tr.LastSequence() != 8 {
		t.Fatalf("LastSequence() = %d, want 8", tr.LastSequence())
	}
}

func TestSequenceTrackerDuplicateIgnored(t *testing.T) {
	tr := NewSequenceTracker()
	tr.Track(1)
	tr.Track(2)
	tr.Track(2) // duplicate
	tr.Track(1) // stale
	if tr.HasGaps() {
		t.Fatalf("expected no gaps, got %v", tr.Gaps())
	}
	if tr.LastSequence() != 2 {
		t.Fatalf("LastSequence() = %d, want 2", tr.LastSequence())
	}
}

func TestTrackedFiresGapHandlerOnce(t *testing.T) {
	var gotGaps []Gap
	inner := &memConsumer{}
	tc := NewTracked(7, inner, func(sourceID uint32, gap Gap) {
		if sourceID != 7 {
			t.Fatalf("sourceID = %d, want 7", sourceID)
		}
		gotGaps = append(gotGaps, gap)
	})

	for _, seq := range []uint64{1, 2, 3, 7, 8} {
		if err := tc.ApplySequenced(seq, []byte{byte(seq)}); err != nil {
			t.Fatalf("ApplySequenced(%d): %v", seq, err)
		}
	}

	want := []Gap{{Start: 4, End: 6}}
	if !reflect.DeepEqual(gotGaps, want) {
		t.Fatalf("gap handler calls = %v, want %v", gotGaps, want)
	}
	if len(inner.applied) != 5 {
		t.Fatalf("applied %d events, want 5", len(inner.applied))
	}
}

func TestTrackedSnapshotRestoreRoundTrip(t *testing.T) {
	inner := &memConsumer{}
	tc := NewTracked(1, inner, nil)
	for _, seq := range []uint64{1, 2, 3, 7, 8} {
		tc.ApplySequenced(seq, []byte{byte(seq)})
	}

	snap, err := tc.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	restoredInner := &memConsumer{}
	restored := NewTracked(1, restoredInner, nil)
	if err := restored.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.LastSequence() != 8 {
		t.Fatalf("restored LastSequence() = %d, want 8", restored.LastSequence())
	}
	want := []Gap{{Start: 4, End: 6}}
	if !reflect.DeepEqual(restored.Gaps(), want) {
		t.Fatalf("restored Gaps() = %v, want %v", restored.Gaps(), want)
	}
	if len(restoredInner.applied) != len(inner.applied) {
		t.Fatalf("restored applied %d events, want %d", len(restoredInner.applied), len(inner.applied))
	}
	for i := range inner.applied {
		if !bytes.Equal(inner.applied[i], restoredInner.applied[i]) {
			t.Fatalf("applied[%d] = %v, want %v", i, restoredInner.applied[i], inner.applied[i])
		}
	}
}
