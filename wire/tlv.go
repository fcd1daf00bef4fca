package wire

import (
	"encoding/binary"
	"fmt"
)

// extendedSentinel marks an extended TLV entry (spec.md §3.3).
const extendedSentinel = 0xFF

// standardMaxLength is the largest body length the 1-byte length field of
// standard framing can carry.
const standardMaxLength = 255

// TruncatedTLVError is returned by the iterator when a declared TLV length
// would overrun the payload.
type TruncatedTLVError struct {
	Offset, Need, Have int
}

func (e *TruncatedTLVError) Error() string {
	return fmt.Sprintf("wire: truncated TLV at offset %d: need %d, have %d", e.Offset, e.Need, e.Have)
}

// LengthOverflowError is returned when a body length exceeds the maximum
// representable extended-TLV length (spec.md §8 boundary behavior).
type LengthOverflowError struct{ Length int }

func (e *LengthOverflowError) Error() string {
	return fmt.Sprintf("wire: TLV length %d exceeds maximum 65535", e.Length)
}

// Entry is one decoded (type, length, body) tuple. Body aliases the
// caller's payload slice; the iterator never allocates or copies.
type Entry struct {
	Type   uint8
	Length int
	Body   []byte
}

// Iterator walks the TLV entries of a payload without allocating.
type Iterator struct {
	payload []byte
	offset  int
}

// NewIterator returns an Iterator over payload.
func NewIterator(payload []byte) *Iterator {
	return &Iterator{payload: payload}
}

// Next returns the next entry, or (Entry{}, false, nil) at end of payload.
// A malformed length returns a *TruncatedTLVError.
func (it *Iterator) Next() (Entry, bool, error) {
	if it.offset >= len(it.payload) {
		return Entry{}, false, nil
	}
	remaining := len(it.payload) - it.offset
	first := it.payload[it.offset]

	if first == extendedSentinel {
		const extHeaderBytes = 5
		if remaining < extHeaderBytes {
			return Entry{}, false, &TruncatedTLVError{Offset: it.offset, Need: extHeaderBytes, Have: remaining}
		}
		typ := it.payload[it.offset+2]
		length := int(binary.LittleEndian.Uint16(it.payload[it.offset+3 : it.offset+5]))
		bodyStart := it.offset + extHeaderBytes
		if remaining-extHeaderBytes < length {
			return Entry{}, false, &TruncatedTLVError{Offset: it.offset, Need: extHeaderBytes + length, Have: remaining}
		}
		body := it.payload[bodyStart : bodyStart+length]
		it.offset = bodyStart + length
		return Entry{Type: typ, Length: length, Body: body}, true, nil
	}

	const stdHeaderBytes = 2
	if remaining < stdHeaderBytes {
		return Entry{}, false, &TruncatedTLVError{Offset: it.offset, Need: stdHeaderBytes, Have: remaining}
	}
	typ := first
	length := int(it.payload[it.offset+1])
	bodyStart := it.offset + stdHeaderBytes
	if remaining-stdHeaderBytes < length {
		return Entry{}, false, &TruncatedTLVError{Offset: it.offset, Need: stdHeaderBytes + length, Have: remaining}
	}
	body := it.payload[bodyStart : bodyStart+length]
	it.offset = bodyStart + length
	return Entry{Type: typ, Length: length, Body: body}, true, nil
}

// All drains the iterator into a slice; convenient for tests and small
// payloads, not used on the hot path.
func (it *Iterator) All() ([]Entry, error) {
	var out []Entry
	for {
		e, ok, err := it.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, e)
	}
}

// AppendTLV appends one TLV entry (type, body) to dst in standard framing
// when body fits in 255 bytes, or extended framing otherwise, and returns
// the grown slice.
func AppendTLV(dst []byte, typ uint8, body []byte) ([]byte, error) {
	if len(body) > MaxEntryBytes {
		return dst, &LengthOverflowError{Length: len(body)}
	}
	if len(body) <= standardMaxLength {
		dst = append(dst, typ, byte(len(body)))
		return append(dst, body...), nil
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(body)))
	dst = append(dst, extendedSentinel, 0, typ, lenBuf[0], lenBuf[1])
	return append(dst, body...), nil
}

// MaxEntryBytes is the largest TLV body length this codec can frame.
const MaxEntryBytes = 65535

// EntrySize returns the on-wire byte count AppendTLV would add for a body
// of the given length, so callers can size buffers without encoding twice.
func EntrySize(bodyLen int) int {
	if bodyLen <= standardMaxLength {
		return 2 + bodyLen
	}
	return 5 + bodyLen
}
