package tlv

import "testing"

func TestValidateSizeFixed(t *testing.T) {
	ok, err := ValidateSize(1, 40)
	if err != nil || !ok {
		t.Fatalf("trade(40) should validate: ok=%v err=%v", ok, err)
	}
	ok, err = ValidateSize(1, 41)
	if err != nil || ok {
		t.Fatalf("trade(41) should not validate: ok=%v err=%v", ok, err)
	}
}

func TestValidateSizeBounded(t *testing.T) {
	for _, n := range []int{60, 120, 200} {
		ok, err := ValidateSize(11, n)
		if err != nil || !ok {
			t.Fatalf("pool_swap(%d) should validate: ok=%v err=%v", n, ok, err)
		}
	}
	if ok, _ := ValidateSize(11, 59); ok {
		t.Fatalf("pool_swap(59) should not validate")
	}
	if ok, _ := ValidateSize(11, 201); ok {
		t.Fatalf("pool_swap(201) should not validate")
	}
}

func TestReservedTypesNotImplemented(t *testing.T) {
	for _, rt := range []uint8{4, 18, 21, 31, 41, 101, 109} {
		if IsImplemented(rt) {
			t.Fatalf("type %d should be reserved/unimplemented", rt)
		}
	}
}

func TestCheckDomainMismatch(t *testing.T) {
	if err := CheckDomain(1, RelayDomainSignal); err != ErrDomainMismatch {
		t.Fatalf("expected domain mismatch, got %v", err)
	}
	if err := CheckDomain(1, RelayDomainMarketData); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}

func TestTypesInDomainSorted(t *testing.T) {
	types := TypesInDomain(DomainMarketData)
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Fatalf("not sorted ascending at %d: %v", i, types)
		}
	}
}
