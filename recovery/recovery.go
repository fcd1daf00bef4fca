package recovery

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"protov2.dev/core/tlvtypes"
)

var log = logrus.WithField("component", "recovery")

// ErrOutOfRange is returned when a requested interval is no longer (or
// never was) fully buffered (spec.md §7, Recovery.OutOfRange).
var ErrOutOfRange = fmt.Errorf("recovery: requested range no longer buffered")

// PendingRequest tracks one outstanding RecoveryRequest's expiry (spec.md
// §5: "Recovery requests carry an expiry; unfulfilled requests are
// abandoned and resurfaced as StateInvalidation").
type PendingRequest struct {
	Request tlvtypes.RecoveryRequest
	Expires time.Time
}

// Service answers RecoveryRequests from a Buffer and tracks outstanding
// requests for expiry.
type Service struct {
	buf     *Buffer
	expiry  time.Duration
	pending map[pendingKey]PendingRequest
}

type pendingKey struct {
	sourceID uint32
	from, to uint64
}

// NewService returns a Service backed by buf, with requests that go
// unanswered for longer than expiry abandoned by Sweep.
func NewService(buf *Buffer, expiry time.Duration) *Service {
	return &Service{buf: buf, expiry: expiry, pending: make(map[pendingKey]PendingRequest)}
}

// Record stores a published message for later replay; callers wire this to
// every outbound message a relay or collector emits.
func (s *Service) Record(sourceID uint32, seq uint64, originalBytes []byte) error {
	return s.buf.Record(sourceID, seq, originalBytes)
}

// Handle answers req with the buffered messages in [req.FromSeq,
// req.ToSeq], in sequence order. If any sequence in the range is missing,
// it registers the request as pending (for Sweep to later expire into a
// StateInvalidation) and returns ErrOutOfRange immediately rather than a
// partial response, since spec.md guarantees "messages delivered in
// original sequence order within the requested range" with no partial
// fills.
func (s *Service) Handle(req tlvtypes.RecoveryRequest) ([]tlvtypes.RecoveryResponse, error) {
	entries, ok, err := s.buf.Range(req.SourceID, req.FromSeq, req.ToSeq)
	if err != nil {
		return nil, fmt.Errorf("recovery: range query: %w", err)
	}
	if !ok {
		key := pendingKey{sourceID: req.SourceID, from: req.FromSeq, to: req.ToSeq}
		s.pending[key] = PendingRequest{Request: req, Expires: time.Now().Add(s.expiry)}
		log.WithFields(logrus.Fields{
			"source_id": req.SourceID,
			"from":      req.FromSeq,
			"to":        req.ToSeq,
		}).Warn("recovery: requested range not fully buffered")
		return nil, ErrOutOfRange
	}

	out := make([]tlvtypes.RecoveryResponse, len(entries))
	for i, e := range entries {
		out[i] = tlvtypes.RecoveryResponse{
			SourceID:      req.SourceID,
			Sequence:      e.Sequence,
			OriginalBytes: e.OriginalBytes,
		}
	}
	return out, nil
}

// Sweep abandons every pending request whose expiry has elapsed and
// returns a StateInvalidation for each, per spec.md §5 and §4.8
// ("A StateInvalidation TLV is alternatively emitted by upstream when
// replay would be too costly"). Callers are responsible for building and
// publishing the returned bodies as type-106 TLVs.
func (s *Service) Sweep(now time.Time) []tlvtypes.StateInvalidation {
	var invalidations []tlvtypes.StateInvalidation
	for key, pending := range s.pending {
		if now.Before(pending.Expires) {
			continue
		}
		invalidations = append(invalidations, tlvtypes.StateInvalidation{
			SequenceStart: pending.Request.FromSeq,
			SequenceEnd:   pending.Request.ToSeq,
			Reason:        tlvtypes.InvalidationRecovery,
		})
		log.WithFields(logrus.Fields{
			"source_id": key.sourceID,
			"from":      key.from,
			"to":        key.to,
		}).Warn("recovery: request expired, resurfacing as state invalidation")
		delete(s.pending, key)
	}
	return invalidations
}

// SyncFor builds the unsolicited SequenceSync broadcast for sourceID at
// currentSeq, so newly connected consumers can position themselves
// (spec.md §4.9).
func SyncFor(sourceID uint32, currentSeq uint64) tlvtypes.SequenceSync {
	return tlvtypes.SequenceSync{SourceID: sourceID, CurrentSeq: currentSeq}
}
