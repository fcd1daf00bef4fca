package config

import (
	"fmt"
	"strings"

	"protov2.dev/core/tlv"
)

// DefaultConfigForDomain returns DefaultConfig tuned per domain, grounded
// on the original source's RelayConfig presets
// (_examples/original_source/backend_v2/relays/src/config.rs): market_data
// favors throughput (large buffer, no audit overhead), signal and
// execution favor delivery guarantees (smaller buffers, audit on for
// execution).
func DefaultConfigForDomain(domain string) (Config, error) {
	cfg := DefaultConfig()
	cfg.RelayDomain = strings.ToLower(strings.TrimSpace(domain))
	switch cfg.RelayDomain {
	case "market_data":
		cfg.RingCapacity = 1 << 16
		cfg.SubscriberBufferSize = 10000
		cfg.AutoDiscoverTopics = true
		cfg.MaxMessageSize = 65536
		cfg.TargetThroughputPerSec = 1_000_000
	case "signal":
		cfg.RingCapacity = 1 << 15
		cfg.SubscriberBufferSize = 5000
		cfg.AutoDiscoverTopics = false
		cfg.MaxMessageSize = 32768
		cfg.TargetThroughputPerSec = 100_000
	case "execution":
		cfg.RingCapacity = 1 << 14
		cfg.SubscriberBufferSize = 1000
		cfg.AutoDiscoverTopics = false
		cfg.MaxMessageSize = 16384
		cfg.TargetThroughputPerSec = 50_000
	case "system":
		// System traffic (heartbeats, recovery, invalidation) is
		// low-volume; the original source has no dedicated preset for
		// it, so it keeps DefaultConfig's general-purpose values.
	default:
		return Config{}, fmt.Errorf("config: invalid relay_domain %q", domain)
	}
	return cfg, nil
}

// RelayDomainValue parses cfg.RelayDomain into its wire tlv.RelayDomain.
// Validate should be called first; this returns an error only if it
// wasn't.
func RelayDomainValue(cfg Config) (tlv.RelayDomain, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.RelayDomain)) {
	case "market_data":
		return tlv.RelayDomainMarketData, nil
	case "signal":
		return tlv.RelayDomainSignal, nil
	case "execution":
		return tlv.RelayDomainExecution, nil
	case "system":
		return tlv.RelayDomainSystem, nil
	default:
		return 0, fmt.Errorf("config: invalid relay_domain %q", cfg.RelayDomain)
	}
}
