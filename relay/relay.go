package relay

import (
	"time"

	"github.com/sirupsen/logrus"

	"protov2.dev/core/parser"
	"protov2.dev/core/tlv"
)

var log = logrus.WithField("component", "relay")

// DefaultBackpressure returns the policy spec.md §4.7 mandates per domain:
// drop-newest for MarketData, disconnect for Signal and Execution. System
// traffic (heartbeats, recovery, invalidation) is low-volume and also
// disconnects rather than silently drops, since losing it defeats its
// purpose.
func DefaultBackpressure(d tlv.RelayDomain) BackpressurePolicy {
	if d == tlv.RelayDomainMarketData {
		return DropNewest
	}
	return Disconnect
}

// Config configures a Relay.
type Config struct {
	Strategy Strategy
	// BufferSize bounds each subscriber's channel (spec.md §4.7:
	// "configurable, e.g. 1,000-10,000 messages").
	BufferSize int
	// AutoDiscover allows Subscribe to create a previously unseen topic;
	// otherwise it returns ErrTopicNotFound.
	AutoDiscover bool
	// IdleTimeout drops a subscriber that has neither subscribed nor been
	// Touch()-ed within the interval. Zero disables idle eviction.
	IdleTimeout time.Duration
}

// Relay is one domain relay instance (spec.md §4.7): it owns a
// subscription registry and fans parsed messages out to subscriber
// channels under a configured topic-extraction strategy and backpressure
// policy.
type Relay struct {
	strategy Strategy
	reg      *registry
}

// New constructs a Relay from cfg.
func New(cfg Config) *Relay {
	bufSize := cfg.BufferSize
	if bufSize <= 0 {
		bufSize = 1000
	}
	return &Relay{
		strategy: cfg.Strategy,
		reg:      newRegistry(cfg.AutoDiscover, bufSize, cfg.IdleTimeout),
	}
}

// Subscribe registers consumerID on topic. policy governs what happens
// when the subscriber's buffer fills; callers typically pass
// DefaultBackpressure(relayDomain).
func (r *Relay) Subscribe(consumerID, topic string, policy BackpressurePolicy) (*Subscriber, error) {
	sub, err := r.reg.subscribe(consumerID, topic, policy)
	if err != nil {
		log.WithFields(logrus.Fields{"consumer": consumerID, "topic": topic}).WithError(err).Warn("subscribe failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{"consumer": consumerID, "topic": topic, "policy": policyName(policy)}).Info("subscribed")
	return sub, nil
}

// Unsubscribe removes consumerID from topic.
func (r *Relay) Unsubscribe(consumerID, topic string) error {
	return r.reg.unsubscribe(consumerID, topic)
}

// UnsubscribeAll removes every subscription held by consumerID.
func (r *Relay) UnsubscribeAll(consumerID string) error {
	return r.reg.unsubscribeAll(consumerID)
}

// ListTopics returns every topic with at least one subscriber; a topic is
// removed once its last subscriber leaves.
func (r *Relay) ListTopics() []string {
	return r.reg.listTopics()
}

// Stats returns the relay control surface's Stats response (spec.md §6.3).
func (r *Relay) Stats() Stats {
	return r.reg.stats()
}

// ConsumerTopics returns every topic consumerID currently subscribes to,
// grounded on the original source's TopicRegistry::get_consumer_topics
// (_examples/original_source/backend_v2/relays/src/topics.rs).
func (r *Relay) ConsumerTopics(consumerID string) []string {
	return r.reg.consumerTopicsFor(consumerID)
}

// Touch resets consumerID's idle-eviction deadline, as Subscribe does. The
// control server does not call it.
func (r *Relay) Touch(consumerID string) {
	r.reg.touch(consumerID)
}

// EvictIdle drops every subscriber whose idle timeout has elapsed since the
// last call, returning the evicted consumer IDs. Callers run this on a
// timer; it is a no-op when Config.IdleTimeout was zero.
func (r *Relay) EvictIdle() []string {
	evicted := r.reg.evictIdle()
	for _, id := range evicted {
		log.WithField("consumer", id).Info("evicted idle subscriber")
	}
	return evicted
}

// Publish extracts msg's topic under the relay's strategy and fans raw out
// to every current subscriber of that topic, applying each subscriber's
// backpressure policy independently. A message with no derivable topic
// (ErrNoTopic) is silently dropped, matching spec.md §7's "malformed input
// -> drop, never abort" posture for routing failures.
func (r *Relay) Publish(msg parser.Message, raw []byte) error {
	topic, err := r.strategy.Extract(msg)
	if err != nil {
		return nil
	}

	for _, sub := range r.reg.subscribersFor(topic) {
		select {
		case sub.Out <- raw:
			messagesFanned.WithLabelValues(topic).Inc()
		default:
			switch sub.Policy {
			case DropNewest:
				sub.mu.Lock()
				sub.dropped++
				sub.mu.Unlock()
				messagesDropped.WithLabelValues(topic).Inc()
				log.WithFields(logrus.Fields{"consumer": sub.ConsumerID, "topic": topic}).Debug("backpressure: dropped newest")
			case Disconnect:
				subscribersDisconnected.WithLabelValues(topic).Inc()
				log.WithFields(logrus.Fields{"consumer": sub.ConsumerID, "topic": topic}).Warn("backpressure: disconnecting subscriber")
				r.reg.unsubscribe(sub.ConsumerID, topic)
			}
		}
	}
	return nil
}

func policyName(p BackpressurePolicy) string {
	if p == DropNewest {
		return "drop_newest"
	}
	return "disconnect"
}
