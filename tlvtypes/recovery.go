package tlvtypes

import (
	"encoding/binary"
	"fmt"
)

// RecoveryRequestSize is the fixed wire size of a RecoveryRequest body
// (type 110).
const RecoveryRequestSize = 24

// RecoveryRequest is the type-110 System TLV body: a consumer asks for a
// closed sequence interval [FromSeq, ToSeq] from a given source.
type RecoveryRequest struct {
	SourceID uint32
	FromSeq  uint64
	ToSeq    uint64
}

func (r RecoveryRequest) Encode(dst []byte) error {
	if len(dst) < RecoveryRequestSize {
		return fmt.Errorf("tlvtypes: recovery_request: buffer too small")
	}
	binary.LittleEndian.PutUint32(dst[0:4], r.SourceID)
	dst[4], dst[5], dst[6], dst[7] = 0, 0, 0, 0
	binary.LittleEndian.PutUint64(dst[8:16], r.FromSeq)
	binary.LittleEndian.PutUint64(dst[16:24], r.ToSeq)
	return nil
}

func DecodeRecoveryRequest(src []byte) (RecoveryRequest, error) {
	if len(src) != RecoveryRequestSize {
		return RecoveryRequest{}, fmt.Errorf("tlvtypes: recovery_request: want %d bytes, got %d", RecoveryRequestSize, len(src))
	}
	return RecoveryRequest{
		SourceID: binary.LittleEndian.Uint32(src[0:4]),
		FromSeq:  binary.LittleEndian.Uint64(src[8:16]),
		ToSeq:    binary.LittleEndian.Uint64(src[16:24]),
	}, nil
}

// RecoveryResponseFixedSize is the size of RecoveryResponse's fixed header,
// before the inlined original message bytes.
const RecoveryResponseFixedSize = 16

// RecoveryResponse is the type-111 System TLV body: one reply per original
// message, replayed bit-exact.
type RecoveryResponse struct {
	SourceID      uint32
	Sequence      uint64
	OriginalBytes []byte
}

func (r RecoveryResponse) Encode(dst []byte) (int, error) {
	if len(r.OriginalBytes) > tlvMaxLength-RecoveryResponseFixedSize {
		return 0, fmt.Errorf("tlvtypes: recovery_response: original message too large")
	}
	need := RecoveryResponseFixedSize + len(r.OriginalBytes)
	if len(dst) < need {
		return 0, fmt.Errorf("tlvtypes: recovery_response: buffer too small")
	}
	binary.LittleEndian.PutUint32(dst[0:4], r.SourceID)
	binary.LittleEndian.PutUint64(dst[4:12], r.Sequence)
	binary.LittleEndian.PutUint16(dst[12:14], uint16(len(r.OriginalBytes)))
	dst[14], dst[15] = 0, 0
	copy(dst[RecoveryResponseFixedSize:need], r.OriginalBytes)
	return need, nil
}

func DecodeRecoveryResponse(src []byte) (RecoveryResponse, error) {
	if len(src) < RecoveryResponseFixedSize {
		return RecoveryResponse{}, fmt.Errorf("tlvtypes: recovery_response: too short")
	}
	n := int(binary.LittleEndian.Uint16(src[12:14]))
	if len(src) != RecoveryResponseFixedSize+n {
		return RecoveryResponse{}, fmt.Errorf("tlvtypes: recovery_response: length mismatch")
	}
	original := make([]byte, n)
	copy(original, src[RecoveryResponseFixedSize:])
	return RecoveryResponse{
		SourceID:      binary.LittleEndian.Uint32(src[0:4]),
		Sequence:      binary.LittleEndian.Uint64(src[4:12]),
		OriginalBytes: original,
	}, nil
}

// tlvMaxLength mirrors tlv.MaxTLVLength without importing the tlv package,
// avoiding an import cycle (tlv does not, and should not, depend on body
// layouts).
const tlvMaxLength = 65535

// SequenceSyncSize is the fixed wire size of a SequenceSync body (type
// 112).
const SequenceSyncSize = 16

// SequenceSync is the type-112 System TLV body: an unsolicited periodic
// broadcast of a source's current sequence, so newly connected consumers
// can position themselves.
type SequenceSync struct {
	SourceID   uint32
	CurrentSeq uint64
}

func (s SequenceSync) Encode(dst []byte) error {
	if len(dst) < SequenceSyncSize {
		return fmt.Errorf("tlvtypes: sequence_sync: buffer too small")
	}
	binary.LittleEndian.PutUint32(dst[0:4], s.SourceID)
	dst[4], dst[5], dst[6], dst[7] = 0, 0, 0, 0
	binary.LittleEndian.PutUint64(dst[8:16], s.CurrentSeq)
	return nil
}

func DecodeSequenceSync(src []byte) (SequenceSync, error) {
	if len(src) != SequenceSyncSize {
		return SequenceSync{}, fmt.Errorf("tlvtypes: sequence_sync: want %d bytes, got %d", SequenceSyncSize, len(src))
	}
	return SequenceSync{
		SourceID:   binary.LittleEndian.Uint32(src[0:4]),
		CurrentSeq: binary.LittleEndian.Uint64(src[8:16]),
	}, nil
}
