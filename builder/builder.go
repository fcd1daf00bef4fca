// Package builder implements the zero-copy message builder of spec.md
// §4.4: direct writes into a caller-supplied buffer, a process-wide atomic
// sequence counter, a fast cached clock for timestamps, and a convenience
// wrapper that hands callers a freshly allocated byte slice via a scratch
// buffer pool — the only allocation on the hot path.
package builder

import (
	"fmt"
	"sync"
	"sync/atomic"

	"protov2.dev/core/internal/clock"
	"protov2.dev/core/tlv"
	"protov2.dev/core/wire"
)

// sequenceCounter is the process-wide atomic sequence source described in
// spec.md §4.4 and Design Notes §9: callers draw from it with relaxed
// ordering, and the only invariant it guarantees is uniqueness within a
// source, never cross-source ordering.
var sequenceCounter atomic.Uint64

// NextSequence returns a process-wide-unique sequence number. Consumers are
// expected to track sequences per (source_type, relay_domain), not assume
// any cross-source order.
func NextSequence() uint64 {
	return sequenceCounter.Add(1)
}

// defaultClock is the fast monotonic clock every builder call samples for
// Header.TimestampNs unless the caller supplies its own via WithClock.
var defaultClock = clock.New(clock.DefaultRefreshInterval)

// ChecksumPolicy decides whether a domain's messages carry a stamped
// CRC32C or are transmitted with checksum = 0 (spec.md §3.3's per-domain
// validation defaults).
type ChecksumPolicy func(tlv.RelayDomain) bool

// DefaultChecksumPolicy matches spec.md §3.3: MarketData is the only
// checksum-off domain.
func DefaultChecksumPolicy(d tlv.RelayDomain) bool {
	return d != tlv.RelayDomainMarketData
}

// Fields are the caller-supplied, message-identifying inputs to Build; the
// sequence and timestamp are filled in by the builder unless overridden.
type Fields struct {
	RelayDomain tlv.RelayDomain
	SourceType  uint8
	Flags       uint8
	Type        uint8
	Body        []byte

	// Sequence and TimestampNs, when nonzero, override the builder's
	// automatic sequence counter / fast clock. Tests use this to produce
	// deterministic fixtures.
	Sequence    uint64
	TimestampNs uint64
}

// RequiredBufferSize returns the exact buffer size BuildInto needs for the
// given body length: header + TLV framing + body.
func RequiredBufferSize(bodyLen int) int {
	return wire.HeaderSize + wire.EntrySize(bodyLen)
}

// BuildInto writes a complete framed message (header + one TLV entry) into
// buf, which must be at least RequiredBufferSize(len(f.Body)) bytes and
// 8-byte aligned. It never allocates and returns the total bytes written.
func BuildInto(buf []byte, f Fields, checksum ChecksumPolicy) (int, error) {
	if checksum == nil {
		checksum = DefaultChecksumPolicy
	}
	if info, err := tlv.Lookup(f.Type); err != nil {
		return 0, fmt.Errorf("builder: %w", err)
	} else if !info.Implemented {
		return 0, tlv.ErrTypeReserved
	} else if !info.Constraint.Validate(len(f.Body)) {
		return 0, fmt.Errorf("builder: body length %d violates %s size constraint", len(f.Body), info.Name)
	}

	needed := RequiredBufferSize(len(f.Body))
	if len(buf) < needed {
		return 0, fmt.Errorf("builder: buffer too small: have %d need %d", len(buf), needed)
	}

	payload, err := wire.AppendTLV(buf[wire.HeaderSize:wire.HeaderSize], f.Type, f.Body)
	if err != nil {
		return 0, err
	}

	seq := f.Sequence
	if seq == 0 {
		seq = NextSequence()
	}
	ts := f.TimestampNs
	if ts == 0 {
		ts = defaultClock.NowNs()
	}

	h := wire.Header{
		RelayDomain: f.RelayDomain,
		SourceType:  f.SourceType,
		Flags:       f.Flags,
		Sequence:    seq,
		TimestampNs: ts,
	}
	if checksum(f.RelayDomain) {
		h.Checksum = 1 // any nonzero value requests stamping; Write recomputes it
	}

	return wire.Write(buf, h, payload)
}

// scratchPool backs BuildMessage's single allocation in the hot path: a
// pool of reusable 64 KiB buffers, the nearest idiomatic Go equivalent to a
// fixed-capacity thread-local scratch buffer (Go has no true TLS; sync.Pool
// is the corpus-wide substitute for per-goroutine reuse).
const scratchCapacity = 64 * 1024

var scratchPool = sync.Pool{
	New: func() any {
		buf := make([]byte, scratchCapacity)
		return &buf
	},
}

// BuildMessage is the convenience wrapper spec.md §4.4 describes: it builds
// into a pooled scratch buffer and returns a freshly allocated []byte sized
// exactly to the message — the single deliberate allocation in the hot
// path. Callers needing zero allocations at all should use BuildInto
// directly against a caller-owned (e.g. ring-slot) buffer.
func BuildMessage(f Fields, checksum ChecksumPolicy) ([]byte, error) {
	needed := RequiredBufferSize(len(f.Body))
	if needed > scratchCapacity {
		return nil, fmt.Errorf("builder: message of %d bytes exceeds scratch capacity %d", needed, scratchCapacity)
	}
	scratchPtr := scratchPool.Get().(*[]byte)
	defer scratchPool.Put(scratchPtr)
	scratch := *scratchPtr

	n, err := BuildInto(scratch, f, checksum)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, scratch[:n])
	return out, nil
}
