package tlvtypes

import (
	"encoding/binary"
	"fmt"

	"protov2.dev/core/instrument"
)

// TradeSize is the fixed wire size of a Trade body (type 1).
const TradeSize = 40

// Side enumerates which side of the book a trade printed against.
type Side uint8

const (
	SideUnknown Side = 0
	SideBuy     Side = 1
	SideSell    Side = 2
)

// Trade is the type-1 MarketData TLV body. PriceI64 and VolumeI64 are
// 8-decimal fixed-point (an implicit factor of 10^8): $45,234.67890123 is
// represented as 4_523_467_890_123.
type Trade struct {
	InstrumentID instrument.ID
	PriceI64     int64
	VolumeI64    int64
	Side         Side
	TradeID      uint32
}

// Encode writes t's 40-byte wire form into dst, which must be at least
// TradeSize bytes.
func (t Trade) Encode(dst []byte) error {
	if len(dst) < TradeSize {
		return fmt.Errorf("tlvtypes: trade: buffer too small")
	}
	idBytes := t.InstrumentID.Bytes()
	copy(dst[0:16], idBytes[:])
	binary.LittleEndian.PutUint64(dst[16:24], uint64(t.PriceI64))
	binary.LittleEndian.PutUint64(dst[24:32], uint64(t.VolumeI64))
	dst[32] = byte(t.Side)
	binary.LittleEndian.PutUint32(dst[33:37], t.TradeID)
	dst[37] = 0
	dst[38] = 0
	dst[39] = 0
	return nil
}

// DecodeTrade reads a Trade body back out of src.
func DecodeTrade(src []byte) (Trade, error) {
	if len(src) != TradeSize {
		return Trade{}, fmt.Errorf("tlvtypes: trade: want %d bytes, got %d", TradeSize, len(src))
	}
	var idBytes [16]byte
	copy(idBytes[:], src[0:16])
	return Trade{
		InstrumentID: instrument.FromBytes(idBytes),
		PriceI64:     int64(binary.LittleEndian.Uint64(src[16:24])),
		VolumeI64:    int64(binary.LittleEndian.Uint64(src[24:32])),
		Side:         Side(src[32]),
		TradeID:      binary.LittleEndian.Uint32(src[33:37]),
	}, nil
}
