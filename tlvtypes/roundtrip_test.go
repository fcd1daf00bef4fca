package tlvtypes

import (
	"math/big"
	"testing"

	"protov2.dev/core/instrument"
)

// TestTradeRoundTripLiteral exercises spec.md §8 scenario (a).
func TestTradeRoundTripLiteral(t *testing.T) {
	id := instrument.ID{Venue: instrument.VenueKraken, AssetType: instrument.AssetTypeCoin, AssetID: 1}
	tr := Trade{
		InstrumentID: id,
		PriceI64:     4_523_467_890_123,
		VolumeI64:    123_456_789,
		Side:         SideBuy,
		TradeID:      7,
	}
	buf := make([]byte, TradeSize)
	if err := tr.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeTrade(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != tr {
		t.Fatalf("round trip mismatch: %+v != %+v", got, tr)
	}
	if len(buf) != 40 {
		t.Fatalf("trade body size = %d, want 40", len(buf))
	}
}

// TestPoolSwapU128PrecisionLiteral exercises spec.md §8 scenario (b): no
// precision loss on u128 amounts, and specifically no trip through float64
// anywhere in the encode/decode path.
func TestPoolSwapU128PrecisionLiteral(t *testing.T) {
	amountIn, _ := new(big.Int).SetString("1234567890123456789012345678", 10)
	amountOut, _ := new(big.Int).SetString("9876543210987654321098765432", 10)

	ps := PoolSwap{
		AmountIn:  Uint128FromBig(amountIn),
		AmountOut: Uint128FromBig(amountOut),
		Decimals:  18,
	}
	buf := make([]byte, PoolSwapFixedSize)
	if _, err := ps.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodePoolSwap(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.AmountIn.Big().Cmp(amountIn) != 0 {
		t.Fatalf("amount_in precision loss: %s != %s", got.AmountIn.Big(), amountIn)
	}
	if got.AmountOut.Big().Cmp(amountOut) != 0 {
		t.Fatalf("amount_out precision loss: %s != %s", got.AmountOut.Big(), amountOut)
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	id, _ := instrument.FromSymbol(instrument.VenueKraken, instrument.AssetTypeCoin, "ETH")
	q := Quote{InstrumentID: id, BidPriceI64: 1, AskPriceI64: 2, BidSizeU32: 3, AskSizeU32: 4, TimestampNs: 5}
	buf := make([]byte, QuoteSize)
	if err := q.Encode(buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := DecodeQuote(buf)
	if err != nil || got != q {
		t.Fatalf("round trip mismatch: got=%+v err=%v", got, err)
	}
}

func TestStateInvalidationVariableRoundTrip(t *testing.T) {
	ids := []instrument.ID{
		{Venue: instrument.VenueKraken, AssetType: instrument.AssetTypeCoin, AssetID: 1},
		{Venue: instrument.VenuePolygon, AssetType: instrument.AssetTypeToken, AssetID: 2},
	}
	si := StateInvalidation{SequenceStart: 4, SequenceEnd: 6, Reason: InvalidationRecovery, Affected: ids}
	buf := make([]byte, StateInvalidationFixedSize+16*len(ids))
	n, err := si.Encode(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Encode: n=%d err=%v", n, err)
	}
	got, err := DecodeStateInvalidation(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SequenceStart != 4 || got.SequenceEnd != 6 || len(got.Affected) != 2 {
		t.Fatalf("mismatch: %+v", got)
	}
	for i, id := range got.Affected {
		if !id.Equal(ids[i]) {
			t.Fatalf("affected[%d] mismatch", i)
		}
	}
}

func TestRecoveryResponseRoundTrip(t *testing.T) {
	original := []byte{1, 2, 3, 4, 5, 6, 7}
	rr := RecoveryResponse{SourceID: 9, Sequence: 100, OriginalBytes: original}
	buf := make([]byte, RecoveryResponseFixedSize+len(original))
	n, err := rr.Encode(buf)
	if err != nil || n != len(buf) {
		t.Fatalf("Encode: n=%d err=%v", n, err)
	}
	got, err := DecodeRecoveryResponse(buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.SourceID != 9 || got.Sequence != 100 || string(got.OriginalBytes) != string(original) {
		t.Fatalf("mismatch: %+v", got)
	}
}
