package control

import (
	"path/filepath"
	"testing"

	"protov2.dev/core/relay"
	"protov2.dev/core/tlv"
)

func TestControlSurfaceRoundTrip(t *testing.T) {
	r := relay.New(relay.Config{
		Strategy:     relay.Strategy{Kind: relay.StrategyFixed, Fixed: "t"},
		BufferSize:   8,
		AutoDiscover: true,
	})

	sockPath := filepath.Join(t.TempDir(), "relay.sock")
	srv, err := Listen(sockPath, r, tlv.RelayDomainMarketData)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()

	client := NewClient(sockPath)
	defer client.Close()

	if err := client.Subscribe("A", "t"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	topics, err := client.ListTopics()
	if err != nil {
		t.Fatalf("ListTopics: %v", err)
	}
	if len(topics) != 1 || topics[0] != "t" {
		t.Fatalf("ListTopics() = %v, want [t]", topics)
	}

	stats, err := client.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Topics != 1 || stats.Consumers != 1 || stats.Subscriptions != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := client.Unsubscribe("A", "t"); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	stats, err = client.Stats()
	if err != nil {
		t.Fatalf("Stats after unsubscribe: %v", err)
	}
	if stats.Subscriptions != 0 {
		t.Fatalf("expected 0 subscriptions after unsubscribe, got %d", stats.Subscriptions)
	}
}

func TestControlSurfaceUnsubscribeAll(t *testing.T) {
	r := relay.New(relay.Config{
		Strategy:     relay.Strategy{Kind: relay.StrategyFixed, Fixed: "t"},
		BufferSize:   8,
		AutoDiscover: true,
	})
	sockPath := filepath.Join(t.TempDir(), "relay.sock")
	srv, err := Listen(sockPath, r, tlv.RelayDomainSignal)
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	defer srv.Close()
	go srv.Serve()

	client := NewClient(sockPath)
	defer client.Close()

	if err := client.Subscribe("A", "t"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := client.UnsubscribeAll("A"); err != nil {
		t.Fatalf("UnsubscribeAll: %v", err)
	}
	if err := client.Unsubscribe("A", "t"); err == nil {
		t.Fatalf("expected Unsubscribe to fail after UnsubscribeAll")
	}
}
