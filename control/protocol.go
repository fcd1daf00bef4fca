// Package control implements the relay control surface of spec.md §6.3: a
// Unix-domain-socket endpoint carrying Subscribe/Unsubscribe/
// UnsubscribeAll/ListTopics/Stats requests as length-prefixed JSON,
// kept strictly separate from the data path (which moves raw framed
// bytes, never control messages).
package control

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"protov2.dev/core/relay"
)

// Op enumerates the control surface's request kinds (spec.md §6.3).
type Op string

const (
	OpSubscribe       Op = "subscribe"
	OpUnsubscribe     Op = "unsubscribe"
	OpUnsubscribeAll  Op = "unsubscribe_all"
	OpListTopics      Op = "list_topics"
	OpStats           Op = "stats"
)

// Request is one control-surface call.
type Request struct {
	Op         Op     `json:"op"`
	ConsumerID string `json:"consumer_id,omitempty"`
	Topic      string `json:"topic,omitempty"`
}

// Response is the reply to a Request. Only the fields relevant to the
// request's Op are populated.
type Response struct {
	OK     bool          `json:"ok"`
	Error  string        `json:"error,omitempty"`
	Topics []string      `json:"topics,omitempty"`
	Stats  *relay.Stats  `json:"stats,omitempty"`
}

// maxFrameBytes bounds a single control frame, generous enough for a
// ListTopics/Stats response over many thousands of topics while still
// rejecting a corrupt or malicious length prefix outright.
const maxFrameBytes = 16 * 1024 * 1024

// writeFrame writes v as a 4-byte little-endian length prefix followed by
// its JSON encoding, mirroring the teacher's length-prefixed message
// framing on the data path (protocol.WriteMessage), applied here to
// control traffic instead.
func writeFrame(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("control: encode: %w", err)
	}
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(body)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("control: write length prefix: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("control: write body: %w", err)
	}
	return nil
}

// readFrame reads one length-prefixed JSON frame into v.
func readFrame(r io.Reader, v any) error {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return err
	}
	n := binary.LittleEndian.Uint32(prefix[:])
	if n > maxFrameBytes {
		return fmt.Errorf("control: frame of %d bytes exceeds maximum %d", n, maxFrameBytes)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return fmt.Errorf("control: read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("control: decode: %w", err)
	}
	return nil
}
