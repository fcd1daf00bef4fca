// Package parser implements the per-domain validator of spec.md §4.5: a
// stateless function family sharing one code path for header parsing and
// TLV iteration, differing only in whether the checksum function runs and
// whether an audit log line is emitted per message.
package parser

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"protov2.dev/core/tlv"
	"protov2.dev/core/wire"
)

var log = logrus.WithField("component", "parser")

// loggedAlignmentFallback tracks which sources have already had their
// unaligned-buffer fallback logged, so the log-once-per-source policy in
// spec.md §7 (Ring.AlignmentError) doesn't spam.
var loggedAlignmentFallback = map[uint8]bool{}

// Message is a parsed, validated message: its header and its TLV entries.
// Body slices always alias the input buffer; the aligned copy that
// wire.ParseZeroCopy makes for an unaligned buffer is used only to decode
// the header.
type Message struct {
	Header  wire.Header
	Entries []wire.Entry
}

// Parse validates buf according to the domain policy implied by the
// header's RelayDomain and returns the decoded message. The caller
// indicates whether audit logging should run (spec.md §4.5: mandatory for
// Execution, off elsewhere) independently of the header, since audit is a
// deployment policy, not a wire fact.
func Parse(buf []byte, audit bool) (Message, error) {
	h, perr, aligned := wire.ParseZeroCopy(buf)
	if perr != nil {
		return Message{}, perr
	}
	if !aligned && !loggedAlignmentFallback[h.SourceType] {
		loggedAlignmentFallback[h.SourceType] = true
		log.WithField("source_type", h.SourceType).Warn("ring.alignment_error: falling back to aligned copy")
	}

	if checksumRequired(h.RelayDomain) {
		if !wire.VerifyChecksum(buf, h) {
			return Message{}, &wire.ParseError{Kind: "BadChecksum", Err: wire.ErrBadChecksum}
		}
	}

	payload := buf[wire.HeaderSize : wire.HeaderSize+int(h.PayloadSize)]
	entries, err := iterateAndValidate(payload, h.RelayDomain)
	if err != nil {
		return Message{}, err
	}

	if audit {
		for _, e := range entries {
			log.WithFields(logrus.Fields{
				"sequence": h.Sequence,
				"source":   h.SourceType,
				"type":     e.Type,
				"outcome":  "accepted",
			}).Info("execution.audit")
		}
	}

	return Message{Header: h, Entries: entries}, nil
}

// checksumRequired implements spec.md §3.3's per-domain validation
// defaults: only MarketData skips CRC32C.
func checksumRequired(d tlv.RelayDomain) bool {
	return d != tlv.RelayDomainMarketData
}

func iterateAndValidate(payload []byte, headerDomain tlv.RelayDomain) ([]wire.Entry, error) {
	it := wire.NewIterator(payload)
	var out []wire.Entry
	for {
		e, ok, err := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		if !tlv.IsImplemented(e.Type) {
			continue // reserved or unknown type: skipped, not surfaced
		}
		if err := tlv.CheckDomain(e.Type, headerDomain); err != nil {
			return nil, fmt.Errorf("parser: type %d: %w", e.Type, err)
		}
		if ok, err := tlv.ValidateSize(e.Type, e.Length); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("parser: type %d: invalid body length %d", e.Type, e.Length)
		}
		out = append(out, e)
	}
}

// ParseMarketData is the fastest path: magic/version/payload-size only, no
// checksum, no audit. Kept as a distinct entrypoint (spec.md requires a
// benchmark showing <2x slowdown between this and the full path, which is
// only meaningful if the fast path is a real, separately callable
// function rather than a flag deep in a generic call).
func ParseMarketData(buf []byte) (Message, error) {
	h, perr, aligned := wire.ParseZeroCopy(buf)
	if perr != nil {
		return Message{}, perr
	}
	if !aligned && !loggedAlignmentFallback[h.SourceType] {
		loggedAlignmentFallback[h.SourceType] = true
		log.WithField("source_type", h.SourceType).Warn("ring.alignment_error: falling back to aligned copy")
	}
	payload := buf[wire.HeaderSize : wire.HeaderSize+int(h.PayloadSize)]
	entries, err := iterateAndValidate(payload, h.RelayDomain)
	if err != nil {
		return Message{}, err
	}
	return Message{Header: h, Entries: entries}, nil
}
