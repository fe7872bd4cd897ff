package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes JSON-encoded events to NATS subjects.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url. The connection is
// named so saves from different editors can be told apart in server logs.
func NewNATSPublisher(url string, opts ...nats.Option) (*NATSPublisher, error) {
	defaults := []nats.Option{nats.Name("gantt")}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish encodes event and publishes it on topic, then waits for the
// server to acknowledge it. A context deadline bounds the wait; without one
// the client's default flush timeout applies.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	if _, ok := ctx.Deadline(); ok {
		err = p.conn.FlushWithContext(ctx)
	} else {
		err = p.conn.Flush()
	}
	if err != nil {
		return fmt.Errorf("flushing %s: %w", topic, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}

// NATSSubscriber follows project events for the watch command.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to the NATS server at url. A watcher outlives
// server restarts, so reconnects are retried forever; opts are applied after
// those defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	defaults := []nats.Option{
		nats.Name("gantt-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}
	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// feedBuffer is how many payloads a slow watcher may fall behind by before
// newer events are dropped.
const feedBuffer = 64

// feed hands payloads from the NATS callback goroutine to one watcher.
type feed struct {
	mu     sync.Mutex
	ch     chan []byte
	closed bool
}

func (f *feed) deliver(data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	select {
	case f.ch <- data:
	default:
	}
}

// stop closes the channel, discarding anything the watcher did not read.
func (f *feed) stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for len(f.ch) > 0 {
		<-f.ch
	}
	close(f.ch)
}

// Subscribe delivers the payload of every event published on topic, which
// may be a wildcard such as TopicAll. The subscription is registered on the
// server before Subscribe returns. cancel unsubscribes and closes the
// channel; it is safe to call more than once.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	f := &feed{ch: make(chan []byte, feedBuffer)}
	sub, err := s.conn.Subscribe(topic, func(msg *nats.Msg) { f.deliver(msg.Data) })
	if err != nil {
		f.stop()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	if err := s.conn.Flush(); err != nil {
		_ = sub.Unsubscribe()
		f.stop()
		return nil, nil, fmt.Errorf("registering %s: %w", topic, err)
	}

	cancel := func() {
		_ = sub.Unsubscribe()
		f.stop()
	}
	return f.ch, cancel, nil
}

func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
