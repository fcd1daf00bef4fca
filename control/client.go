package control

import (
	"fmt"
	"net"
	"sync"

	"github.com/cenkalti/backoff/v4"

	"protov2.dev/core/relay"
)

// Client is a control-surface client that transparently reconnects using
// an exponential backoff, matching the teacher's reconnect posture for
// outbound peer dials (rubin.dev/node's p2p client retries with backoff
// rather than failing a single dial attempt permanently).
type Client struct {
	path string

	mu   sync.Mutex
	conn net.Conn
}

// NewClient returns a Client that lazily dials path on first use.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Close drops any open connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

func (c *Client) ensureConn() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	var conn net.Conn
	op := func() error {
		var err error
		conn, err = net.Dial("unix", c.path)
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 0 // no time limit; retries are bounded by WithMaxRetries below
	if err := backoff.Retry(op, backoff.WithMaxRetries(b, 5)); err != nil {
		return nil, fmt.Errorf("control: dial %s: %w", c.path, err)
	}
	c.conn = conn
	return conn, nil
}

// call sends req and decodes the response, dropping the connection (so the
// next call redials) on any I/O error.
func (c *Client) call(req Request) (Response, error) {
	conn, err := c.ensureConn()
	if err != nil {
		return Response{}, err
	}
	if err := writeFrame(conn, req); err != nil {
		c.Close()
		return Response{}, err
	}
	var resp Response
	if err := readFrame(conn, &resp); err != nil {
		c.Close()
		return Response{}, err
	}
	if !resp.OK {
		return resp, fmt.Errorf("control: %s", resp.Error)
	}
	return resp, nil
}

// Subscribe registers consumerID on topic.
func (c *Client) Subscribe(consumerID, topic string) error {
	_, err := c.call(Request{Op: OpSubscribe, ConsumerID: consumerID, Topic: topic})
	return err
}

// Unsubscribe removes consumerID from topic.
func (c *Client) Unsubscribe(consumerID, topic string) error {
	_, err := c.call(Request{Op: OpUnsubscribe, ConsumerID: consumerID, Topic: topic})
	return err
}

// UnsubscribeAll removes every subscription held by consumerID.
func (c *Client) UnsubscribeAll(consumerID string) error {
	_, err := c.call(Request{Op: OpUnsubscribeAll, ConsumerID: consumerID})
	return err
}

// ListTopics returns every topic known to the relay.
func (c *Client) ListTopics() ([]string, error) {
	resp, err := c.call(Request{Op: OpListTopics})
	if err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

// Stats returns the relay's current stats snapshot.
func (c *Client) Stats() (relay.Stats, error) {
	resp, err := c.call(Request{Op: OpStats})
	if err != nil {
		return relay.Stats{}, err
	}
	if resp.Stats == nil {
		return relay.Stats{}, fmt.Errorf("control: stats response missing payload")
	}
	return *resp.Stats, nil
}
