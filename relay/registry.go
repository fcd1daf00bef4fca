package relay

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// BackpressurePolicy decides what happens when a subscriber's bounded
// buffer is full (spec.md §4.7).
type BackpressurePolicy uint8

const (
	// DropNewest discards the incoming message and counts the drop. Used
	// for MarketData, where staleness is worse than a gap the recovery
	// protocol can backfill.
	DropNewest BackpressurePolicy = iota
	// Disconnect evicts the subscriber outright. Used for Signal and
	// Execution, where a silently dropped message is worse than forcing
	// the consumer to resubscribe and recover.
	Disconnect
)

// Subscriber is one consumer's view onto a topic: a bounded channel of raw
// framed messages plus the policy applied when it fills up.
type Subscriber struct {
	ConsumerID string
	Topic      string
	Out        chan []byte
	Policy     BackpressurePolicy

	mu      sync.Mutex
	dropped uint64
}

// Dropped returns the count of messages this subscriber has lost under the
// DropNewest backpressure policy.
func (s *Subscriber) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// registry is the subscription table of spec.md §4.7: topic -> consumer
// set and its reverse index, both guarded by one mutex (spec.md §5: "one
// writer at a time (mutex-protected) for subscribe/unsubscribe").
type registry struct {
	mu              sync.RWMutex
	topicConsumers  map[string]map[string]*Subscriber // topic -> consumerID -> sub
	consumerTopics  map[string]map[string]bool         // consumerID -> topic set
	autoDiscover    bool
	bufferSize      int
	idle            *lru.LRU[string, struct{}]
	idleTimeout     time.Duration
}

func newRegistry(autoDiscover bool, bufferSize int, idleTimeout time.Duration) *registry {
	r := &registry{
		topicConsumers: make(map[string]map[string]*Subscriber),
		consumerTopics: make(map[string]map[string]bool),
		autoDiscover:   autoDiscover,
		bufferSize:     bufferSize,
		idleTimeout:    idleTimeout,
	}
	if idleTimeout > 0 {
		r.idle = lru.NewLRU[string, struct{}](4096, nil, idleTimeout)
	}
	return r
}

// subscribe registers consumerID on topic with the given backpressure
// policy, creating the topic if autoDiscover is set (spec.md §4.7).
func (r *registry) subscribe(consumerID, topic string, policy BackpressurePolicy) (*Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	consumers, exists := r.topicConsumers[topic]
	if !exists {
		if !r.autoDiscover {
			return nil, ErrTopicNotFound
		}
		consumers = make(map[string]*Subscriber)
		r.topicConsumers[topic] = consumers
	}

	if sub, already := consumers[consumerID]; already {
		return sub, nil
	}

	sub := &Subscriber{
		ConsumerID: consumerID,
		Topic:      topic,
		Out:        make(chan []byte, r.bufferSize),
		Policy:     policy,
	}
	consumers[consumerID] = sub

	topics, ok := r.consumerTopics[consumerID]
	if !ok {
		topics = make(map[string]bool)
		r.consumerTopics[consumerID] = topics
	}
	topics[topic] = true

	if r.idle != nil {
		r.idle.Add(consumerID, struct{}{})
	}

	return sub, nil
}

func (r *registry) unsubscribe(consumerID, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unsubscribeLocked(consumerID, topic)
}

func (r *registry) unsubscribeLocked(consumerID, topic string) error {
	consumers, ok := r.topicConsumers[topic]
	if !ok {
		return ErrTopicNotFound
	}
	if _, ok := consumers[consumerID]; !ok {
		return ErrUnknownConsumer
	}
	delete(consumers, consumerID)
	if len(consumers) == 0 {
		delete(r.topicConsumers, topic)
	}
	if topics, ok := r.consumerTopics[consumerID]; ok {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(r.consumerTopics, consumerID)
		}
	}
	return nil
}

func (r *registry) unsubscribeAll(consumerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	topics, ok := r.consumerTopics[consumerID]
	if !ok {
		return ErrUnknownConsumer
	}
	for topic := range topics {
		if consumers, ok := r.topicConsumers[topic]; ok {
			delete(consumers, consumerID)
			if len(consumers) == 0 {
				delete(r.topicConsumers, topic)
			}
		}
	}
	delete(r.consumerTopics, consumerID)
	return nil
}

func (r *registry) listTopics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.topicConsumers))
	for topic := range r.topicConsumers {
		out = append(out, topic)
	}
	return out
}

func (r *registry) subscribersFor(topic string) []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	consumers := r.topicConsumers[topic]
	out := make([]*Subscriber, 0, len(consumers))
	for _, sub := range consumers {
		out = append(out, sub)
	}
	return out
}

// evictIdle drops every consumer the idle-timeout cache has expired since
// the last call, honoring the optional per-subscriber idle timeout of
// spec.md §5 ("Subscriber registration carries an optional idle timeout").
func (r *registry) evictIdle() []string {
	if r.idle == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	live := make(map[string]bool, len(r.consumerTopics))
	for _, k := range r.idle.Keys() {
		live[k] = true
	}
	var evicted []string
	for consumerID := range r.consumerTopics {
		if !live[consumerID] {
			r.unsubscribeAllLocked(consumerID)
			evicted = append(evicted, consumerID)
		}
	}
	return evicted
}

func (r *registry) unsubscribeAllLocked(consumerID string) {
	topics := r.consumerTopics[consumerID]
	for topic := range topics {
		if consumers, ok := r.topicConsumers[topic]; ok {
			delete(consumers, consumerID)
			if len(consumers) == 0 {
				delete(r.topicConsumers, topic)
			}
		}
	}
	delete(r.consumerTopics, consumerID)
}

// touch marks consumerID as recently active, resetting its idle deadline.
func (r *registry) touch(consumerID string) {
	if r.idle == nil {
		return
	}
	r.idle.Add(consumerID, struct{}{})
}

// consumerTopicsFor returns every topic consumerID currently subscribes to,
// matching the original source's TopicRegistry::get_consumer_topics
// (_examples/original_source/backend_v2/relays/src/topics.rs).
func (r *registry) consumerTopicsFor(consumerID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := r.consumerTopics[consumerID]
	out := make([]string, 0, len(topics))
	for topic := range topics {
		out = append(out, topic)
	}
	return out
}

func (r *registry) stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	depths := make(map[string]int, len(r.topicConsumers))
	subs := 0
	for topic, consumers := range r.topicConsumers {
		depth := 0
		for _, sub := range consumers {
			depth += len(sub.Out)
		}
		depths[topic] = depth
		subs += len(consumers)
	}
	return Stats{
		Topics:        len(r.topicConsumers),
		Consumers:     len(r.consumerTopics),
		Subscriptions: subs,
		QueueDepths:   depths,
	}
}

// Stats is the relay control surface's Stats response (spec.md §6.3).
type Stats struct {
	Topics        int
	Consumers     int
	Subscriptions int
	QueueDepths   map[string]int
}
