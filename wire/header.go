// Package wire implements the 32-byte message header and TLV payload
// framing described in spec.md §3.2-§3.3 and §4.3: direct byte-offset
// reads and writes, never a borrowed reference into a packed struct (see
// spec.md §9 on packed-struct access on alignment-sensitive platforms).
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"protov2.dev/core/tlv"
)

// HeaderSize is the fixed on-wire size of a message header.
const HeaderSize = 32

// Magic is the constant magic number every header must carry.
const Magic uint32 = 0xDEADBEEF

// CurrentVersion is the only version this implementation emits.
const CurrentVersion uint8 = 1

// Header is the decoded form of the 32-byte message header.
type Header struct {
	Magic        uint32
	Version      uint8
	RelayDomain  tlv.RelayDomain
	SourceType   uint8
	Flags        uint8
	PayloadSize  uint32
	Checksum     uint32
	Sequence     uint64
	TimestampNs  uint64
}

// ParseError enumerates why header parsing failed (spec.md §4.3).
type ParseError struct {
	Kind string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wire: %s: %v", e.Kind, e.Err)
	}
	return "wire: " + e.Kind
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErr(kind string, err error) *ParseError { return &ParseError{Kind: kind, Err: err} }

var (
	ErrTooShort            = errors.New("buffer shorter than header size")
	ErrBadMagic            = errors.New("magic mismatch")
	ErrUnsupportedVersion  = errors.New("unsupported version")
	ErrUnknownDomain       = errors.New("unknown relay domain")
	ErrBadChecksum         = errors.New("checksum mismatch")
	ErrPayloadSizeMismatch = errors.New("payload_size does not match buffer")
)

// Write encodes h followed directly by payload into buf, which must be at
// least HeaderSize+len(payload) bytes. It returns the total bytes written.
// Write never allocates.
func Write(buf []byte, h Header, payload []byte) (int, error) {
	total := HeaderSize + len(payload)
	if len(buf) < total {
		return 0, fmt.Errorf("wire: buffer too small: have %d need %d", len(buf), total)
	}
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	buf[4] = CurrentVersion
	buf[5] = byte(h.RelayDomain)
	buf[6] = h.SourceType
	buf[7] = h.Flags
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[12:16], 0) // checksum stamped below
	binary.LittleEndian.PutUint64(buf[16:24], h.Sequence)
	binary.LittleEndian.PutUint64(buf[24:32], h.TimestampNs)
	copy(buf[HeaderSize:total], payload)

	if h.Checksum != 0 {
		sum := CRC32C(buf[:total])
		binary.LittleEndian.PutUint32(buf[12:16], sum)
	}
	return total, nil
}

// Parse decodes and validates the 32-byte header at the front of buf. It
// does not consume or validate the payload beyond the length check.
func Parse(buf []byte) (Header, *ParseError) {
	if len(buf) < HeaderSize {
		return Header{}, parseErr("TooShort", ErrTooShort)
	}
	magic := binary.LittleEndian.Uint32(buf[0:4])
	if magic != Magic {
		return Header{}, parseErr("BadMagic", ErrBadMagic)
	}
	version := buf[4]
	if version != CurrentVersion {
		return Header{}, parseErr("UnsupportedVersion", ErrUnsupportedVersion)
	}
	domain := tlv.RelayDomain(buf[5])
	if domain < tlv.RelayDomainMarketData || domain > tlv.RelayDomainSystem {
		return Header{}, parseErr("UnknownDomain", ErrUnknownDomain)
	}
	payloadSize := binary.LittleEndian.Uint32(buf[8:12])
	if len(buf) < HeaderSize+int(payloadSize) {
		return Header{}, parseErr("PayloadSizeMismatch", ErrPayloadSizeMismatch)
	}
	checksum := binary.LittleEndian.Uint32(buf[12:16])

	h := Header{
		Magic:       magic,
		Version:     version,
		RelayDomain: domain,
		SourceType:  buf[6],
		Flags:       buf[7],
		PayloadSize: payloadSize,
		Checksum:    checksum,
		Sequence:    binary.LittleEndian.Uint64(buf[16:24]),
		TimestampNs: binary.LittleEndian.Uint64(buf[24:32]),
	}
	return h, nil
}

// VerifyChecksum recomputes CRC32C over buf[:HeaderSize+payloadSize] with
// the checksum field zeroed, and compares it to h.Checksum. It is a no-op
// returning true when h.Checksum == 0 (checksum disabled by domain policy).
func VerifyChecksum(buf []byte, h Header) bool {
	if h.Checksum == 0 {
		return true
	}
	total := HeaderSize + int(h.PayloadSize)
	if len(buf) < total {
		return false
	}
	scratch := make([]byte, total)
	copy(scratch, buf[:total])
	binary.LittleEndian.PutUint32(scratch[12:16], 0)
	return CRC32C(scratch) == h.Checksum
}
