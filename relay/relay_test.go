package relay

import (
	"testing"

	"protov2.dev/core/builder"
	"protov2.dev/core/instrument"
	"protov2.dev/core/parser"
	"protov2.dev/core/tlv"
	"protov2.dev/core/tlvtypes"
)

const (
	sourceKraken  = 1
	sourcePolygon = 2
)

func buildTrade(t *testing.T, source uint8) []byte {
	t.Helper()
	trade := tlvtypes.Trade{
		InstrumentID: instrument.ID{Venue: instrument.VenueKraken, AssetType: instrument.AssetTypeCoin, AssetID: 7},
		PriceI64:     1,
		VolumeI64:    1,
	}
	body := make([]byte, tlvtypes.TradeSize)
	if err := trade.Encode(body); err != nil {
		t.Fatalf("encode: %v", err)
	}
	buf, err := builder.BuildMessage(builder.Fields{
		RelayDomain: tlv.RelayDomainMarketData,
		SourceType:  source,
		Type:        1,
		Body:        body,
	}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return buf
}

// TestMultiStrategyRouting exercises spec.md §8 scenario (c).
func TestMultiStrategyRouting(t *testing.T) {
	r := New(Config{
		Strategy: Strategy{
			Kind: StrategySourceType,
			SourceTopics: map[uint8]string{
				sourceKraken:  "market_data_kraken",
				sourcePolygon: "market_data_polygon",
			},
		},
		BufferSize:   8,
		AutoDiscover: true,
	})

	subA1, err := r.Subscribe("A", "market_data_kraken", DropNewest)
	if err != nil {
		t.Fatalf("subscribe A kraken: %v", err)
	}
	subA2, err := r.Subscribe("A", "market_data_polygon", DropNewest)
	if err != nil {
		t.Fatalf("subscribe A polygon: %v", err)
	}
	subB, err := r.Subscribe("B", "market_data_kraken", DropNewest)
	if err != nil {
		t.Fatalf("subscribe B kraken: %v", err)
	}

	krakenMsg := buildTrade(t, sourceKraken)
	polygonMsg := buildTrade(t, sourcePolygon)

	for _, raw := range [][]byte{krakenMsg, polygonMsg} {
		msg, err := parser.Parse(raw, false)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if err := r.Publish(msg, raw); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}

	aCount := len(subA1.Out) + len(subA2.Out)
	if aCount != 2 {
		t.Fatalf("consumer A received %d messages, want 2", aCount)
	}
	if len(subB.Out) != 1 {
		t.Fatalf("consumer B received %d messages, want 1", len(subB.Out))
	}
}

func TestConsumerTopics(t *testing.T) {
	r := New(Config{
		Strategy:     Strategy{Kind: StrategyFixed, Fixed: "t"},
		BufferSize:   8,
		AutoDiscover: true,
	})
	if _, err := r.Subscribe("A", "market_data_kraken", DropNewest); err != nil {
		t.Fatalf("subscribe A kraken: %v", err)
	}
	if _, err := r.Subscribe("A", "market_data_polygon", DropNewest); err != nil {
		t.Fatalf("subscribe A polygon: %v", err)
	}
	if _, err := r.Subscribe("B", "market_data_kraken", DropNewest); err != nil {
		t.Fatalf("subscribe B kraken: %v", err)
	}

	topics := r.ConsumerTopics("A")
	if len(topics) != 2 {
		t.Fatalf("ConsumerTopics(A) = %v, want 2 entries", topics)
	}
	if topics := r.ConsumerTopics("nobody"); len(topics) != 0 {
		t.Fatalf("ConsumerTopics(nobody) = %v, want empty", topics)
	}
}

func TestDefaultSourceTopicsMatchesOriginalMapping(t *testing.T) {
	want := map[uint8]string{1: "market_data_binance", 20: "arbitrage_signals", 40: "execution_orders"}
	for source, topic := range want {
		if got := DefaultSourceTopics[source]; got != topic {
			t.Fatalf("DefaultSourceTopics[%d] = %q, want %q", source, got, topic)
		}
	}
}

func TestSubscribeUnknownTopicWithoutAutoDiscover(t *testing.T) {
	r := New(Config{Strategy: Strategy{Kind: StrategyFixed, Fixed: "x"}, AutoDiscover: false})
	if _, err := r.Subscribe("A", "nonexistent", DropNewest); err != ErrTopicNotFound {
		t.Fatalf("expected ErrTopicNotFound, got %v", err)
	}
}

func TestDropNewestBackpressure(t *testing.T) {
	r := New(Config{
		Strategy:     Strategy{Kind: StrategyFixed, Fixed: "t"},
		BufferSize:   1,
		AutoDiscover: true,
	})
	sub, err := r.Subscribe("A", "t", DropNewest)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	raw := buildTrade(t, sourceKraken)
	msg, err := parser.Parse(raw, false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.Publish(msg, raw); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if sub.Dropped() != 2 {
		t.Fatalf("dropped = %d, want 2", sub.Dropped())
	}
}

func TestDisconnectBackpressureEvictsSubscriber(t *testing.T) {
	r := New(Config{
		Strategy:     Strategy{Kind: StrategyFixed, Fixed: "t"},
		BufferSize:   1,
		AutoDiscover: true,
	})
	if _, err := r.Subscribe("A", "t", Disconnect); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	raw := buildTrade(t, sourceKraken)
	msg, err := parser.Parse(raw, false)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := r.Publish(msg, raw); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	topics := r.ListTopics()
	found := false
	for _, topic := range topics {
		if topic == "t" {
			found = true
		}
	}
	if found {
		t.Fatalf("expected topic t to be pruned once its last subscriber was disconnected, got %v", topics)
	}
	if err := r.Unsubscribe("A", "t"); err != ErrTopicNotFound && err != ErrUnknownConsumer {
		t.Fatalf("expected A to already be disconnected, got %v", err)
	}
}
