package relay

import "errors"

var (
	// ErrTopicNotFound is returned by Subscribe when auto-discovery is off
	// and the topic currently has no subscribers (spec.md §4.7).
	ErrTopicNotFound = errors.New("relay: topic not found")
	// ErrUnknownConsumer is returned by Unsubscribe/UnsubscribeAll for a
	// consumer_id with no active subscriptions.
	ErrUnknownConsumer = errors.New("relay: unknown consumer")
)
