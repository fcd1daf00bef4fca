package tlvtypes

import (
	"encoding/binary"
	"fmt"
)

// SignalIdentitySize is the fixed wire size of a SignalIdentity body
// (type 20).
const SignalIdentitySize = 16

// Direction is the directional bias a strategy signal carries.
type Direction uint8

const (
	DirectionFlat  Direction = 0
	DirectionLong  Direction = 1
	DirectionShort Direction = 2
)

// SignalIdentity is the type-20 Signal TLV body identifying which strategy
// and signal instance a downstream Economics/execution TLV belongs to.
type SignalIdentity struct {
	StrategyID uint32
	SignalID   uint64
	Confidence uint8 // 0-100
	Direction  Direction
}

func (s SignalIdentity) Encode(dst []byte) error {
	if len(dst) < SignalIdentitySize {
		return fmt.Errorf("tlvtypes: signal_identity: buffer too small")
	}
	binary.LittleEndian.PutUint32(dst[0:4], s.StrategyID)
	binary.LittleEndian.PutUint64(dst[4:12], s.SignalID)
	dst[12] = s.Confidence
	dst[13] = byte(s.Direction)
	dst[14] = 0
	dst[15] = 0
	return nil
}

func DecodeSignalIdentity(src []byte) (SignalIdentity, error) {
	if len(src) != SignalIdentitySize {
		return SignalIdentity{}, fmt.Errorf("tlvtypes: signal_identity: want %d bytes, got %d", SignalIdentitySize, len(src))
	}
	return SignalIdentity{
		StrategyID: binary.LittleEndian.Uint32(src[0:4]),
		SignalID:   binary.LittleEndian.Uint64(src[4:12]),
		Confidence: src[12],
		Direction:  Direction(src[13]),
	}, nil
}

// EconomicsSize is the fixed wire size of an Economics body (type 22).
const EconomicsSize = 32

// Economics is the type-22 Signal TLV body carrying a strategy's expected
// cost/benefit, all 8-decimal USD fixed-point.
type Economics struct {
	ExpectedProfitI64   int64
	RequiredCapitalI64  int64
	GasCostI64          int64
	TimestampNs         uint64
}

func (e Economics) Encode(dst []byte) error {
	if len(dst) < EconomicsSize {
		return fmt.Errorf("tlvtypes: economics: buffer too small")
	}
	binary.LittleEndian.PutUint64(dst[0:8], uint64(e.ExpectedProfitI64))
	binary.LittleEndian.PutUint64(dst[8:16], uint64(e.RequiredCapitalI64))
	binary.LittleEndian.PutUint64(dst[16:24], uint64(e.GasCostI64))
	binary.LittleEndian.PutUint64(dst[24:32], e.TimestampNs)
	return nil
}

func DecodeEconomics(src []byte) (Economics, error) {
	if len(src) != EconomicsSize {
		return Economics{}, fmt.Errorf("tlvtypes: economics: want %d bytes, got %d", EconomicsSize, len(src))
	}
	return Economics{
		ExpectedProfitI64:  int64(binary.LittleEndian.Uint64(src[0:8])),
		RequiredCapitalI64: int64(binary.LittleEndian.Uint64(src[8:16])),
		GasCostI64:         int64(binary.LittleEndian.Uint64(src[16:24])),
		TimestampNs:        binary.LittleEndian.Uint64(src[24:32]),
	}, nil
}
