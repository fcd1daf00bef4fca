package tlvtypes

import (
	"encoding/binary"
	"fmt"

	"protov2.dev/core/instrument"
)

// HeartbeatSize is the fixed wire size of a Heartbeat body (type 100).
const HeartbeatSize = 16

// Heartbeat is the type-100 System TLV body a source emits periodically so
// relays and consumers can detect staleness.
type Heartbeat struct {
	ServiceID uint64
	UptimeNs  uint64
}

func (h Heartbeat) Encode(dst []byte) error {
	if len(dst) < HeartbeatSize {
		return fmt.Errorf("tlvtypes: heartbeat: buffer too small")
	}
	binary.LittleEndian.PutUint64(dst[0:8], h.ServiceID)
	binary.LittleEndian.PutUint64(dst[8:16], h.UptimeNs)
	return nil
}

func DecodeHeartbeat(src []byte) (Heartbeat, error) {
	if len(src) != HeartbeatSize {
		return Heartbeat{}, fmt.Errorf("tlvtypes: heartbeat: want %d bytes, got %d", HeartbeatSize, len(src))
	}
	return Heartbeat{
		ServiceID: binary.LittleEndian.Uint64(src[0:8]),
		UptimeNs:  binary.LittleEndian.Uint64(src[8:16]),
	}, nil
}

// InvalidationReason enumerates why a StateInvalidation was emitted.
type InvalidationReason uint8

const (
	InvalidationDisconnection InvalidationReason = 0
	InvalidationRecovery      InvalidationReason = 1
	InvalidationStale         InvalidationReason = 2
)

// StateInvalidationFixedSize is the size of StateInvalidation's fixed
// header, before the variable-length affected-instrument list.
const StateInvalidationFixedSize = 18

// MaxAffectedInstruments bounds the affected-instrument list so the body
// never exceeds tlv.MaxTLVLength.
const MaxAffectedInstruments = 255

// StateInvalidation is the type-106 System TLV body (variable length):
// upstream tells consumers to drop state for a sequence range because
// replay would be too costly.
type StateInvalidation struct {
	SequenceStart uint64
	SequenceEnd   uint64
	Reason        InvalidationReason
	Affected      []instrument.ID
}

// Encode returns the number of bytes written, which is
// StateInvalidationFixedSize + 16*len(s.Affected).
func (s StateInvalidation) Encode(dst []byte) (int, error) {
	if len(s.Affected) > MaxAffectedInstruments {
		return 0, fmt.Errorf("tlvtypes: state_invalidation: too many affected instruments")
	}
	need := StateInvalidationFixedSize + 16*len(s.Affected)
	if len(dst) < need {
		return 0, fmt.Errorf("tlvtypes: state_invalidation: buffer too small")
	}
	binary.LittleEndian.PutUint64(dst[0:8], s.SequenceStart)
	binary.LittleEndian.PutUint64(dst[8:16], s.SequenceEnd)
	dst[16] = byte(s.Reason)
	dst[17] = byte(len(s.Affected))
	off := StateInvalidationFixedSize
	for _, id := range s.Affected {
		b := id.Bytes()
		copy(dst[off:off+16], b[:])
		off += 16
	}
	return off, nil
}

func DecodeStateInvalidation(src []byte) (StateInvalidation, error) {
	if len(src) < StateInvalidationFixedSize {
		return StateInvalidation{}, fmt.Errorf("tlvtypes: state_invalidation: too short")
	}
	count := int(src[17])
	need := StateInvalidationFixedSize + 16*count
	if len(src) != need {
		return StateInvalidation{}, fmt.Errorf("tlvtypes: state_invalidation: length mismatch, want %d got %d", need, len(src))
	}
	s := StateInvalidation{
		SequenceStart: binary.LittleEndian.Uint64(src[0:8]),
		SequenceEnd:   binary.LittleEndian.Uint64(src[8:16]),
		Reason:        InvalidationReason(src[16]),
		Affected:      make([]instrument.ID, count),
	}
	off := StateInvalidationFixedSize
	for i := 0; i < count; i++ {
		var b [16]byte
		copy(b[:], src[off:off+16])
		s.Affected[i] = instrument.FromBytes(b)
		off += 16
	}
	return s, nil
}
