package builder

import (
	"testing"

	"protov2.dev/core/tlv"
	"protov2.dev/core/tlvtypes"
	"protov2.dev/core/wire"
)

func TestBuildIntoTradeMessageSize(t *testing.T) {
	var body [tlvtypes.TradeSize]byte
	f := Fields{
		RelayDomain: tlv.RelayDomainMarketData,
		SourceType:  1,
		Type:        1,
		Body:        body[:],
		Sequence:    42,
		TimestampNs: 1_734_567_890_123_456_789,
	}
	buf := make([]byte, RequiredBufferSize(len(body)))
	n, err := BuildInto(buf, f, nil)
	if err != nil {
		t.Fatalf("BuildInto: %v", err)
	}
	if n != 32+2+40 {
		t.Fatalf("n = %d, want 74", n)
	}
	h, perr := wire.Parse(buf[:n])
	if perr != nil {
		t.Fatalf("Parse: %v", perr)
	}
	if h.Checksum != 0 {
		t.Fatalf("MarketData checksum should be disabled by default policy")
	}
}

func TestBuildIntoRejectsReservedType(t *testing.T) {
	buf := make([]byte, 128)
	_, err := BuildInto(buf, Fields{RelayDomain: tlv.RelayDomainMarketData, Type: 5, Body: nil}, nil)
	if err != tlv.ErrTypeReserved {
		t.Fatalf("err = %v, want ErrTypeReserved", err)
	}
}

func TestBuildIntoChecksumPolicy(t *testing.T) {
	buf := make([]byte, 128)
	n, err := BuildInto(buf, Fields{RelayDomain: tlv.RelayDomainSignal, Type: 20, Body: make([]byte, 16)}, nil)
	if err != nil {
		t.Fatalf("BuildInto: %v", err)
	}
	h, _ := wire.Parse(buf[:n])
	if h.Checksum == 0 {
		t.Fatalf("Signal domain checksum should be enabled by default policy")
	}
}

func TestBuildMessageAllocatesExactSize(t *testing.T) {
	out, err := BuildMessage(Fields{RelayDomain: tlv.RelayDomainMarketData, Type: 100, Body: make([]byte, 16)}, nil)
	if err != nil {
		t.Fatalf("BuildMessage: %v", err)
	}
	if len(out) != wire.HeaderSize+2+16 {
		t.Fatalf("len = %d, want %d", len(out), wire.HeaderSize+2+16)
	}
}

func TestNextSequenceMonotonicUnique(t *testing.T) {
	seen := map[uint64]bool{}
	for i := 0; i < 1000; i++ {
		s := NextSequence()
		if seen[s] {
			t.Fatalf("duplicate sequence %d", s)
		}
		seen[s] = true
	}
}
