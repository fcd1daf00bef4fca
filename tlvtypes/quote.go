package tlvtypes

import (
	"encoding/binary"
	"fmt"

	"protov2.dev/core/instrument"
)

// QuoteSize is the fixed wire size of a Quote body (type 2): 52 bytes, per
// both spec.md's stated size and the original source's own doc comment
// ("Bid/ask quote update with current best prices and sizes (52 bytes)",
// alphapulse_codec/src/tlv_types.rs). Fitting instrument_id (16) and
// timestamp_ns (8) alongside four price/size fields in the remaining 28
// bytes means the size fields cannot stay full 8-byte fixed-point like
// Trade's volume; they are narrowed to u32 here (top-of-book depth, unlike
// a trade's total volume, fits the smaller range), with 4 reserved bytes
// making up the remainder — the same trailing-padding idiom Trade uses to
// round out its own fixed size.
const QuoteSize = 52

// Quote is the type-2 MarketData TLV body: top-of-book bid/ask.
type Quote struct {
	InstrumentID instrument.ID
	BidPriceI64  int64
	AskPriceI64  int64
	BidSizeU32   uint32
	AskSizeU32   uint32
	TimestampNs  uint64
}

func (q Quote) Encode(dst []byte) error {
	if len(dst) < QuoteSize {
		return fmt.Errorf("tlvtypes: quote: buffer too small")
	}
	idBytes := q.InstrumentID.Bytes()
	copy(dst[0:16], idBytes[:])
	binary.LittleEndian.PutUint64(dst[16:24], uint64(q.BidPriceI64))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(q.AskPriceI64))
	binary.LittleEndian.PutUint32(dst[32:36], q.BidSizeU32)
	binary.LittleEndian.PutUint32(dst[36:40], q.AskSizeU32)
	binary.LittleEndian.PutUint64(dst[40:48], q.TimestampNs)
	dst[48], dst[49], dst[50], dst[51] = 0, 0, 0, 0
	return nil
}

func DecodeQuote(src []byte) (Quote, error) {
	if len(src) != QuoteSize {
		return Quote{}, fmt.Errorf("tlvtypes: quote: want %d bytes, got %d", QuoteSize, len(src))
	}
	var idBytes [16]byte
	copy(idBytes[:], src[0:16])
	return Quote{
		InstrumentID: instrument.FromBytes(idBytes),
		BidPriceI64:  int64(binary.LittleEndian.Uint64(src[16:24])),
		AskPriceI64:  int64(binary.LittleEndian.Uint64(src[24:32])),
		BidSizeU32:   binary.LittleEndian.Uint32(src[32:36]),
		AskSizeU32:   binary.LittleEndian.Uint32(src[36:40]),
		TimestampNs:  binary.LittleEndian.Uint64(src[40:48]),
	}, nil
}
