package recovery

import (
	"path/filepath"
	"testing"
	"time"

	"protov2.dev/core/tlvtypes"
)

func openTestBuffer(t *testing.T) *Buffer {
	t.Helper()
	buf, err := OpenBuffer(filepath.Join(t.TempDir(), "replay.db"), 100)
	if err != nil {
		t.Fatalf("OpenBuffer: %v", err)
	}
	t.Cleanup(func() { buf.Close() })
	return buf
}

// TestGapRecoveryFlow exercises spec.md §8 scenario (e)'s recovery half:
// a consumer missing sequences 4-6 requests them and gets them back
// bit-exact, in order.
func TestGapRecoveryFlow(t *testing.T) {
	buf := openTestBuffer(t)
	svc := NewService(buf, time.Minute)

	for seq := uint64(1); seq <= 8; seq++ {
		payload := []byte{byte(seq), byte(seq), byte(seq)}
		if err := svc.Record(42, seq, payload); err != nil {
			t.Fatalf("Record(%d): %v", seq, err)
		}
	}

	resp, err := svc.Handle(tlvtypes.RecoveryRequest{SourceID: 42, FromSeq: 4, ToSeq: 6})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(resp) != 3 {
		t.Fatalf("got %d responses, want 3", len(resp))
	}
	for i, r := range resp {
		wantSeq := uint64(4 + i)
		if r.Sequence != wantSeq {
			t.Fatalf("response %d sequence = %d, want %d", i, r.Sequence, wantSeq)
		}
		want := []byte{byte(wantSeq), byte(wantSeq), byte(wantSeq)}
		if string(r.OriginalBytes) != string(want) {
			t.Fatalf("response %d bytes = %v, want %v", i, r.OriginalBytes, want)
		}
	}
}

func TestHandleOutOfRangeRegistersPending(t *testing.T) {
	buf := openTestBuffer(t)
	svc := NewService(buf, 10*time.Millisecond)

	if err := svc.Record(1, 1, []byte("a")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	// Sequence 2 was never recorded: the range is not fully buffered.
	_, err := svc.Handle(tlvtypes.RecoveryRequest{SourceID: 1, FromSeq: 1, ToSeq: 2})
	if err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	invalidations := svc.Sweep(time.Now())
	if len(invalidations) != 1 {
		t.Fatalf("got %d invalidations, want 1", len(invalidations))
	}
	if invalidations[0].SequenceStart != 1 || invalidations[0].SequenceEnd != 2 {
		t.Fatalf("unexpected invalidation range: %+v", invalidations[0])
	}
}

func TestBufferPrunesOldestBeyondCapacity(t *testing.T) {
	buf, err := OpenBuffer(filepath.Join(t.TempDir(), "replay.db"), 4)
	if err != nil {
		t.Fatalf("OpenBuffer: %v", err)
	}
	defer buf.Close()

	for seq := uint64(1); seq <= 10; seq++ {
		if err := buf.Record(9, seq, []byte{byte(seq)}); err != nil {
			t.Fatalf("Record(%d): %v", seq, err)
		}
	}

	// Sequences 1-6 should have been pruned; only the most recent 4 remain.
	_, ok, err := buf.Range(9, 7, 10)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if !ok {
		t.Fatalf("expected the most recent 4 sequences to still be buffered")
	}

	_, ok, err = buf.Range(9, 1, 3)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if ok {
		t.Fatalf("expected pruned sequences 1-3 to be reported out of range")
	}
}
