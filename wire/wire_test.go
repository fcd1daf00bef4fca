package wire

import (
	"bytes"
	"testing"

	"protov2.dev/core/tlv"
)

func TestHeaderRoundTrip(t *testing.T) {
	payload := []byte("hello-tlv-payload")
	buf := make([]byte, HeaderSize+len(payload))
	h := Header{
		RelayDomain: tlv.RelayDomainMarketData,
		SourceType:  7,
		Sequence:    42,
		TimestampNs: 1_734_567_890_123_456_789,
	}
	n, err := Write(buf, h, payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("Write returned %d, want %d", n, len(buf))
	}

	parsed, perr := Parse(buf)
	if perr != nil {
		t.Fatalf("Parse: %v", perr)
	}
	if parsed.Sequence != 42 || parsed.TimestampNs != h.TimestampNs {
		t.Fatalf("parsed header mismatch: %+v", parsed)
	}
	if !bytes.Equal(buf[HeaderSize:], payload) {
		t.Fatalf("payload bytes mismatch")
	}
}

func TestHeaderChecksum(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	buf := make([]byte, HeaderSize+len(payload))
	h := Header{RelayDomain: tlv.RelayDomainSignal, Checksum: 1 /* any nonzero requests stamping */}
	if _, err := Write(buf, h, payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	parsed, perr := Parse(buf)
	if perr != nil {
		t.Fatalf("Parse: %v", perr)
	}
	if parsed.Checksum == 0 {
		t.Fatalf("expected stamped checksum")
	}
	if !VerifyChecksum(buf, parsed) {
		t.Fatalf("checksum verification failed")
	}
	buf[HeaderSize] ^= 0xFF
	parsed2, _ := Parse(buf)
	if VerifyChecksum(buf, parsed2) {
		t.Fatalf("checksum verification should fail after corruption")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(make([]byte, 10)); err.Kind != "TooShort" {
		t.Fatalf("want TooShort, got %v", err)
	}

	buf := make([]byte, HeaderSize)
	if _, err := Parse(buf); err.Kind != "BadMagic" {
		t.Fatalf("want BadMagic, got %v", err)
	}

	h := Header{RelayDomain: tlv.RelayDomainMarketData}
	full := make([]byte, HeaderSize)
	Write(full, h, nil)
	full[4] = 99
	if _, err := Parse(full); err.Kind != "UnsupportedVersion" {
		t.Fatalf("want UnsupportedVersion, got %v", err)
	}
}

func TestEmptyPayloadDecodesZeroEntries(t *testing.T) {
	entries, err := NewIterator(nil).All()
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected zero entries, got %v, %v", entries, err)
	}
}

func TestStandardTLVRoundTrip(t *testing.T) {
	var buf []byte
	buf, err := AppendTLV(buf, 1, bytes.Repeat([]byte{0xAB}, 40))
	if err != nil {
		t.Fatalf("AppendTLV: %v", err)
	}
	entries, err := NewIterator(buf).All()
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries=%v err=%v", entries, err)
	}
	if entries[0].Type != 1 || entries[0].Length != 40 {
		t.Fatalf("entry mismatch: %+v", entries[0])
	}
}

func TestExtendedTLVRoundTrip(t *testing.T) {
	body := bytes.Repeat([]byte{0x42}, 1000)
	buf, err := AppendTLV(nil, 11, body)
	if err != nil {
		t.Fatalf("AppendTLV: %v", err)
	}
	if buf[0] != 0xFF || buf[1] != 0x00 || buf[2] != 11 {
		t.Fatalf("extended header prefix wrong: %v", buf[:5])
	}
	entries, err := NewIterator(buf).All()
	if err != nil || len(entries) != 1 {
		t.Fatalf("entries=%v err=%v", entries, err)
	}
	if entries[0].Length != 1000 || !bytes.Equal(entries[0].Body, body) {
		t.Fatalf("extended body mismatch")
	}
}

func TestLengthOverflowRejected(t *testing.T) {
	body := make([]byte, MaxEntryBytes+1)
	if _, err := AppendTLV(nil, 1, body); err == nil {
		t.Fatalf("expected LengthOverflowError")
	}
}

func TestTruncatedTLVFailsFast(t *testing.T) {
	buf := []byte{1, 40, 0, 0} // claims 40-byte body but only has 2
	_, _, err := NewIterator(buf).Next()
	if _, ok := err.(*TruncatedTLVError); !ok {
		t.Fatalf("expected *TruncatedTLVError, got %v", err)
	}
}

func TestMultiEntryIterationPreservesOrder(t *testing.T) {
	var buf []byte
	buf, _ = AppendTLV(buf, 1, []byte{1})
	buf, _ = AppendTLV(buf, 2, []byte{2, 3})
	buf, _ = AppendTLV(buf, 100, []byte{9})
	entries, err := NewIterator(buf).All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []uint8{1, 2, 100}
	for i, e := range entries {
		if e.Type != want[i] {
			t.Fatalf("entry %d type = %d, want %d", i, e.Type, want[i])
		}
	}
}
