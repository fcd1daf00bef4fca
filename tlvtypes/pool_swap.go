package tlvtypes

import (
	"encoding/binary"
	"fmt"
)

// PoolSwapMinSize and PoolSwapMaxSize bound the type-11 TLV body
// (spec.md §3.4): pool/token addresses plus native-precision u128 amounts.
const (
	PoolSwapFixedSize = 145
	PoolSwapMinSize   = 60
	PoolSwapMaxSize   = 200
)

// PoolSwap is the type-11 MarketData TLV body for a DEX swap event. Amounts
// and the post-swap price/liquidity are u128 in the pool's native
// precision; none of it is ever converted through a float.
type PoolSwap struct {
	PoolAddress        [20]byte
	TokenIn            [20]byte
	TokenOut           [20]byte
	AmountIn           Uint128
	AmountOut          Uint128
	SqrtPriceX96After  Uint128
	LiquidityAfter     Uint128
	TickAfter          int32
	BlockNumber        uint64
	TimestampNs        uint64
	Decimals           uint8
}

func (p PoolSwap) Encode(dst []byte) (int, error) {
	if len(dst) < PoolSwapFixedSize {
		return 0, fmt.Errorf("tlvtypes: pool_swap: buffer too small")
	}
	off := 0
	copy(dst[off:off+20], p.PoolAddress[:])
	off += 20
	copy(dst[off:off+20], p.TokenIn[:])
	off += 20
	copy(dst[off:off+20], p.TokenOut[:])
	off += 20
	p.AmountIn.PutBytes(dst[off : off+16])
	off += 16
	p.AmountOut.PutBytes(dst[off : off+16])
	off += 16
	p.SqrtPriceX96After.PutBytes(dst[off : off+16])
	off += 16
	p.LiquidityAfter.PutBytes(dst[off : off+16])
	off += 16
	binary.LittleEndian.PutUint32(dst[off:off+4], uint32(p.TickAfter))
	off += 4
	binary.LittleEndian.PutUint64(dst[off:off+8], p.BlockNumber)
	off += 8
	binary.LittleEndian.PutUint64(dst[off:off+8], p.TimestampNs)
	off += 8
	dst[off] = p.Decimals
	off++
	return off, nil
}

func DecodePoolSwap(src []byte) (PoolSwap, error) {
	if len(src) < PoolSwapMinSize || len(src) > PoolSwapMaxSize {
		return PoolSwap{}, fmt.Errorf("tlvtypes: pool_swap: length %d out of bounds [%d,%d]", len(src), PoolSwapMinSize, PoolSwapMaxSize)
	}
	if len(src) != PoolSwapFixedSize {
		return PoolSwap{}, fmt.Errorf("tlvtypes: pool_swap: unsupported variant length %d", len(src))
	}
	var p PoolSwap
	off := 0
	copy(p.PoolAddress[:], src[off:off+20])
	off += 20
	copy(p.TokenIn[:], src[off:off+20])
	off += 20
	copy(p.TokenOut[:], src[off:off+20])
	off += 20
	p.AmountIn = Uint128FromBytes(src[off : off+16])
	off += 16
	p.AmountOut = Uint128FromBytes(src[off : off+16])
	off += 16
	p.SqrtPriceX96After = Uint128FromBytes(src[off : off+16])
	off += 16
	p.LiquidityAfter = Uint128FromBytes(src[off : off+16])
	off += 16
	p.TickAfter = int32(binary.LittleEndian.Uint32(src[off : off+4]))
	off += 4
	p.BlockNumber = binary.LittleEndian.Uint64(src[off : off+8])
	off += 8
	p.TimestampNs = binary.LittleEndian.Uint64(src[off : off+8])
	off += 8
	p.Decimals = src[off]
	return p, nil
}
