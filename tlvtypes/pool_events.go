package tlvtypes

import (
	"encoding/binary"
	"fmt"
)

// PoolSyncSize is the fixed wire size this repo emits for type-12 PoolSync
// bodies (within the registry's bounded(40,120) constraint).
const PoolSyncSize = 60

// PoolSync is the type-12 TLV body: the pool's reserves after a sync event.
type PoolSync struct {
	PoolAddress [20]byte
	Reserve0    Uint128
	Reserve1    Uint128
	TimestampNs uint64
}

func (p PoolSync) Encode(dst []byte) (int, error) {
	if len(dst) < PoolSyncSize {
		return 0, fmt.Errorf("tlvtypes: pool_sync: buffer too small")
	}
	copy(dst[0:20], p.PoolAddress[:])
	p.Reserve0.PutBytes(dst[20:36])
	p.Reserve1.PutBytes(dst[36:52])
	binary.LittleEndian.PutUint64(dst[52:60], p.TimestampNs)
	return PoolSyncSize, nil
}

func DecodePoolSync(src []byte) (PoolSync, error) {
	if len(src) != PoolSyncSize {
		return PoolSync{}, fmt.Errorf("tlvtypes: pool_sync: want %d bytes, got %d", PoolSyncSize, len(src))
	}
	var p PoolSync
	copy(p.PoolAddress[:], src[0:20])
	p.Reserve0 = Uint128FromBytes(src[20:36])
	p.Reserve1 = Uint128FromBytes(src[36:52])
	p.TimestampNs = binary.LittleEndian.Uint64(src[52:60])
	return p, nil
}

// PoolLiquidityEventSize is the fixed wire size shared by type-13 PoolMint
// and type-14 PoolBurn bodies.
const PoolLiquidityEventSize = 76

// PoolLiquidityEvent is the shared body layout for PoolMint and PoolBurn:
// the amounts added or removed and the resulting liquidity delta.
type PoolLiquidityEvent struct {
	PoolAddress     [20]byte
	Amount0         Uint128
	Amount1         Uint128
	LiquidityDelta  Uint128
	TimestampNs     uint64
}

func (p PoolLiquidityEvent) Encode(dst []byte) (int, error) {
	if len(dst) < PoolLiquidityEventSize {
		return 0, fmt.Errorf("tlvtypes: pool_liquidity_event: buffer too small")
	}
	copy(dst[0:20], p.PoolAddress[:])
	p.Amount0.PutBytes(dst[20:36])
	p.Amount1.PutBytes(dst[36:52])
	p.LiquidityDelta.PutBytes(dst[52:68])
	binary.LittleEndian.PutUint64(dst[68:76], p.TimestampNs)
	return PoolLiquidityEventSize, nil
}

func DecodePoolLiquidityEvent(src []byte) (PoolLiquidityEvent, error) {
	if len(src) != PoolLiquidityEventSize {
		return PoolLiquidityEvent{}, fmt.Errorf("tlvtypes: pool_liquidity_event: want %d bytes, got %d", PoolLiquidityEventSize, len(src))
	}
	var p PoolLiquidityEvent
	copy(p.PoolAddress[:], src[0:20])
	p.Amount0 = Uint128FromBytes(src[20:36])
	p.Amount1 = Uint128FromBytes(src[36:52])
	p.LiquidityDelta = Uint128FromBytes(src[52:68])
	p.TimestampNs = binary.LittleEndian.Uint64(src[68:76])
	return p, nil
}
