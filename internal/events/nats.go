package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// closeFlushTimeout bounds how long Close waits for buffered events.
const closeFlushTimeout = 2 * time.Second

// subscriberBuffer is the per-subscription channel capacity.
const subscriberBuffer = 64

// NATSPublisher sends run events to a NATS server. Each event is JSON on
// the subject named by its topic, so "ticketforge.>" sees a whole run.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("ticketforge-generate"))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: nc}, nil
}

// Publish encodes event and queues it on topic. A done context stops the
// publish before anything is sent.
func (p *NATSPublisher) Publish(ctx context.Context, topic string, event any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", topic, err)
	}
	if err := p.conn.Publish(topic, data); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	return nil
}

// Close flushes queued events, waiting up to closeFlushTimeout, then
// closes the connection.
func (p *NATSPublisher) Close() error {
	defer p.conn.Close()
	if p.conn.IsClosed() {
		return nil
	}
	if err := p.conn.FlushTimeout(closeFlushTimeout); err != nil {
		return fmt.Errorf("flushing events: %w", err)
	}
	return nil
}

// NATSSubscriber follows run events on a NATS server. It reconnects
// forever; pass handlers via opts to observe connection changes.
type NATSSubscriber struct {
	conn *nats.Conn
}

// NewNATSSubscriber connects to url. opts are applied after the
// reconnect defaults.
func NewNATSSubscriber(url string, opts ...nats.Option) (*NATSSubscriber, error) {
	all := append([]nats.Option{
		nats.Name("ticketforge-watch"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	}, opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATSSubscriber{conn: nc}, nil
}

// natsSubscription forwards messages of one NATS subscription to ch until
// it is stopped.
type natsSubscription struct {
	ch   chan Message
	sub  *nats.Subscription
	mu   sync.Mutex
	done bool
	once sync.Once
}

// deliver runs on the NATS client goroutine and must not block it: a full
// channel drops the message.
func (s *natsSubscription) deliver(msg *nats.Msg) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return
	}
	select {
	case s.ch <- Message{Topic: msg.Subject, Data: msg.Data}:
	default:
	}
}

func (s *natsSubscription) stop() {
	s.once.Do(func() {
		if s.sub != nil {
			_ = s.sub.Unsubscribe()
		}
		s.mu.Lock()
		s.done = true
		s.mu.Unlock()
		for {
			select {
			case <-s.ch:
			default:
				close(s.ch)
				return
			}
		}
	})
}

// Subscribe delivers events matching topic, which may use NATS wildcards.
// The subscription is registered with the server before Subscribe
// returns. cancel is safe to call more than once.
func (s *NATSSubscriber) Subscribe(topic string) (<-chan Message, func(), error) {
	ns := &natsSubscription{ch: make(chan Message, subscriberBuffer)}
	sub, err := s.conn.Subscribe(topic, ns.deliver)
	if err != nil {
		ns.stop()
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	ns.sub = sub
	if err := s.conn.Flush(); err != nil {
		ns.stop()
		return nil, nil, fmt.Errorf("registering subscription to %s: %w", topic, err)
	}
	return ns.ch, ns.stop, nil
}

// Close closes the connection. Open subscriptions stop receiving.
func (s *NATSSubscriber) Close() error {
	s.conn.Close()
	return nil
}
