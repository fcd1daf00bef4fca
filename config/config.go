// Package config loads and validates the ambient configuration a relay,
// collector, or consumer process needs, in the teacher's style: a plain
// JSON-tagged struct, a DefaultConfig constructor, and an explicit
// Validate function rather than a struct-tag validation library.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config is the top-level configuration for one relay process.
type Config struct {
	// RingPath is the shared-memory ring file this process writes or
	// reads (spec.md §4.6). Typically under /dev/shm.
	RingPath string `json:"ring_path"`
	// RingCapacity is the ring's slot count; must be a power of two.
	RingCapacity uint32 `json:"ring_capacity"`
	// RingSlotSize is the per-slot byte size.
	RingSlotSize uint32 `json:"ring_slot_size"`

	// ControlSocketPath is the Unix-domain socket the control surface
	// listens on (spec.md §6.3).
	ControlSocketPath string `json:"control_socket_path"`

	// RelayDomain selects which domain this relay instance routes:
	// "market_data", "signal", "execution", or "system".
	RelayDomain string `json:"relay_domain"`
	// SubscriberBufferSize bounds each subscriber's channel (spec.md
	// §4.7: "1,000-10,000 messages").
	SubscriberBufferSize int `json:"subscriber_buffer_size"`
	// AutoDiscoverTopics allows Subscribe to create unseen topics.
	AutoDiscoverTopics bool `json:"auto_discover_topics"`
	// SubscriberIdleTimeout drops a subscriber after this long since its
	// last Subscribe or Relay.Touch; the control surface has no keepalive
	// request. Zero disables idle eviction.
	SubscriberIdleTimeout time.Duration `json:"subscriber_idle_timeout"`

	// RecoveryBufferPath is the bbolt file backing the replay buffer
	// (spec.md §4.9).
	RecoveryBufferPath string `json:"recovery_buffer_path"`
	// RecoveryBufferCapacity bounds replayable messages per source.
	RecoveryBufferCapacity int `json:"recovery_buffer_capacity"`
	// RecoveryRequestExpiry is how long an unanswered RecoveryRequest is
	// held pending before being resurfaced as a StateInvalidation.
	RecoveryRequestExpiry time.Duration `json:"recovery_request_expiry"`

	// MaxMessageSize bounds a single raw framed message this relay will
	// hand to the parser; oversized reads are dropped before parsing.
	MaxMessageSize int `json:"max_message_size"`
	// TargetThroughputPerSec is this domain's expected steady-state
	// message rate, logged at startup; it is not enforced as a hard cap.
	TargetThroughputPerSec int `json:"target_throughput_per_sec"`

	LogLevel string `json:"log_level"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

var allowedRelayDomains = map[string]struct{}{
	"market_data": {},
	"signal":      {},
	"execution":   {},
	"system":      {},
}

// DefaultDataDir mirrors the teacher's per-user data directory
// convention, renamed for this project.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".protov2"
	}
	return filepath.Join(home, ".protov2")
}

// DefaultConfig returns a Config with conservative, development-sized
// defaults.
func DefaultConfig() Config {
	dataDir := DefaultDataDir()
	return Config{
		RingPath:               filepath.Join("/dev/shm", "protov2-market-data.ring"),
		RingCapacity:           1 << 16,
		RingSlotSize:           256,
		ControlSocketPath:      filepath.Join(dataDir, "control.sock"),
		RelayDomain:            "market_data",
		SubscriberBufferSize:   1000,
		AutoDiscoverTopics:     true,
		SubscriberIdleTimeout:  0,
		RecoveryBufferPath:     filepath.Join(dataDir, "recovery.db"),
		RecoveryBufferCapacity: 10000,
		RecoveryRequestExpiry:  30 * time.Second,
		MaxMessageSize:         65536,
		TargetThroughputPerSec: 1_000_000,
		LogLevel:               "info",
	}
}

// Load reads a JSON config file at path on top of DefaultConfig, so fields
// absent from the file keep their default values and partial config files
// are legal. A field written explicitly as zero stays zero.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks cfg for internal consistency, matching the teacher's
// explicit-validation-function style over a struct-tag library.
func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.RingPath) == "" {
		return errors.New("config: ring_path is required")
	}
	if cfg.RingCapacity == 0 || cfg.RingCapacity&(cfg.RingCapacity-1) != 0 {
		return errors.New("config: ring_capacity must be a nonzero power of two")
	}
	if cfg.RingSlotSize == 0 {
		return errors.New("config: ring_slot_size must be > 0")
	}
	if strings.TrimSpace(cfg.ControlSocketPath) == "" {
		return errors.New("config: control_socket_path is required")
	}
	domain := strings.ToLower(strings.TrimSpace(cfg.RelayDomain))
	if _, ok := allowedRelayDomains[domain]; !ok {
		return fmt.Errorf("config: invalid relay_domain %q", cfg.RelayDomain)
	}
	if cfg.SubscriberBufferSize <= 0 {
		return errors.New("config: subscriber_buffer_size must be > 0")
	}
	if cfg.RecoveryBufferCapacity <= 0 {
		return errors.New("config: recovery_buffer_capacity must be > 0")
	}
	if cfg.RecoveryRequestExpiry <= 0 {
		return errors.New("config: recovery_request_expiry must be > 0")
	}
	if cfg.MaxMessageSize <= 0 {
		return errors.New("config: max_message_size must be > 0")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("config: invalid log_level %q", cfg.LogLevel)
	}
	return nil
}
