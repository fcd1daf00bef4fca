// Package tlvtypes defines the canonical TLV body layouts of spec.md §3.4:
// Trade, Quote, PoolSwap, PoolSync/Mint/Burn, SignalIdentity, Economics,
// Heartbeat, StateInvalidation, and the recovery-protocol bodies. Every
// encoder writes directly into a caller-supplied buffer; every decoder
// reads directly out of one. No floating point crosses these boundaries,
// per spec.md's precision invariant.
package tlvtypes

import (
	"encoding/binary"
	"math/big"
)

// Uint128 holds a 128-bit unsigned integer in native precision: DEX token
// amounts, reserves, and similar on-chain quantities keep their full
// precision across the wire, never converted through a float.
type Uint128 struct {
	Lo, Hi uint64
}

// Uint128FromBig converts a non-negative big.Int with at most 128 bits of
// magnitude into a Uint128.
func Uint128FromBig(v *big.Int) Uint128 {
	var buf [16]byte
	v.FillBytes(buf[:]) // big-endian, left-padded
	return Uint128{
		Hi: binary.BigEndian.Uint64(buf[0:8]),
		Lo: binary.BigEndian.Uint64(buf[8:16]),
	}
}

// Big converts u back to a big.Int, losslessly.
func (u Uint128) Big() *big.Int {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], u.Hi)
	binary.BigEndian.PutUint64(buf[8:16], u.Lo)
	return new(big.Int).SetBytes(buf[:])
}

// PutBytes writes u's 16-byte little-endian wire form into dst[:16].
func (u Uint128) PutBytes(dst []byte) {
	binary.LittleEndian.PutUint64(dst[0:8], u.Lo)
	binary.LittleEndian.PutUint64(dst[8:16], u.Hi)
}

// Uint128FromBytes reads a 16-byte little-endian wire form.
func Uint128FromBytes(src []byte) Uint128 {
	return Uint128{
		Lo: binary.LittleEndian.Uint64(src[0:8]),
		Hi: binary.LittleEndian.Uint64(src[8:16]),
	}
}

// Equal reports bit-exact equality.
func (u Uint128) Equal(o Uint128) bool { return u.Lo == o.Lo && u.Hi == o.Hi }
