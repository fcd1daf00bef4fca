// Package relay implements the domain relay of spec.md §4.7: per-message
// topic extraction, a subscription registry, and fan-out to bounded
// per-consumer channels with a documented backpressure policy.
package relay

import (
	"encoding/binary"
	"fmt"

	"protov2.dev/core/instrument"
	"protov2.dev/core/parser"
)

// StrategyKind selects how a relay derives a topic from a parsed message.
type StrategyKind uint8

const (
	// StrategySourceType maps header.SourceType to a stable topic name
	// via a caller-supplied table. Cheapest: never touches the payload,
	// which matters on the MarketData fast path (spec.md §9).
	StrategySourceType StrategyKind = iota
	// StrategyInstrumentVenue parses the first TLV entry carrying an
	// embedded instrument.ID and topics by its venue.
	StrategyInstrumentVenue
	// StrategyCustomField looks up a specific TLV type's body field.
	StrategyCustomField
	// StrategyFixed always returns the same constant topic.
	StrategyFixed
)

// Strategy configures topic extraction. Only the fields relevant to Kind
// need be set.
type Strategy struct {
	Kind StrategyKind

	// SourceTopics maps header.SourceType values to topic names, used by
	// StrategySourceType.
	SourceTopics map[uint8]string

	// CustomFieldType is the TLV type StrategyCustomField reads from.
	CustomFieldType uint8

	// Fixed is the constant topic name used by StrategyFixed.
	Fixed string
}

// ErrNoTopic is returned when a strategy cannot derive a topic for a
// message (e.g. an unmapped source_type, or no instrument-bearing TLV
// present).
var ErrNoTopic = fmt.Errorf("relay: no topic derived for message")

// DefaultSourceTopics is the source_type -> topic name table used by
// StrategySourceType when a deployment has no reason to override it,
// grounded on the original source's TopicRegistry::source_type_to_topic
// (_examples/original_source/backend_v2/relays/src/topics.rs): exchange
// collectors 1-4 are market-data sources, 20-22 are signal sources, 40-42
// are execution sources.
var DefaultSourceTopics = map[uint8]string{
	1:  "market_data_binance",
	2:  "market_data_kraken",
	3:  "market_data_coinbase",
	4:  "market_data_polygon",
	20: "arbitrage_signals",
	21: "market_maker_signals",
	22: "trend_signals",
	40: "execution_orders",
	41: "risk_updates",
	42: "execution_fills",
}

// Extract computes msg's topic under s.
func (s Strategy) Extract(msg parser.Message) (string, error) {
	switch s.Kind {
	case StrategySourceType:
		topic, ok := s.SourceTopics[msg.Header.SourceType]
		if !ok {
			return "", ErrNoTopic
		}
		return topic, nil

	case StrategyInstrumentVenue:
		for _, e := range msg.Entries {
			if len(e.Body) < 16 {
				continue
			}
			var idBytes [16]byte
			copy(idBytes[:], e.Body[:16])
			id := instrument.FromBytes(idBytes)
			venue, err := id.VenueOf()
			if err != nil {
				continue
			}
			return venue.String(), nil
		}
		return "", ErrNoTopic

	case StrategyCustomField:
		for _, e := range msg.Entries {
			if e.Type != s.CustomFieldType {
				continue
			}
			if len(e.Body) < 4 {
				return "", ErrNoTopic
			}
			return fmt.Sprintf("field_%d_%d", s.CustomFieldType, binary.LittleEndian.Uint32(e.Body[:4])), nil
		}
		return "", ErrNoTopic

	case StrategyFixed:
		return s.Fixed, nil

	default:
		return "", fmt.Errorf("relay: unknown strategy kind %d", s.Kind)
	}
}
