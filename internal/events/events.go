// Package events publishes queue lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Type names a queue lifecycle event.
type Type string

const (
	TypeQueued    Type = "queued"
	TypeConverted Type = "converted"
	TypeDismissed Type = "dismissed"
	TypeDeleted   Type = "deleted"
	TypeCleaned   Type = "cleaned"
)

// Event is one queue lifecycle change. Zero ids are omitted.
type Event struct {
	Type       Type      `json:"type"`
	QueueID    int64     `json:"queue_id,omitempty"`
	TicketID   int64     `json:"ticket_id,omitempty"`
	ArticleID  int64     `json:"article_id,omitempty"`
	Count      int64     `json:"count,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key partitions events by ticket so one ticket's events stay ordered.
func (e Event) Key() []byte {
	switch {
	case e.TicketID > 0:
		return []byte("ticket-" + strconv.FormatInt(e.TicketID, 10))
	case e.QueueID > 0:
		return []byte("queue-" + strconv.FormatInt(e.QueueID, 10))
	default:
		return []byte(string(e.Type))
	}
}

// Publisher sends lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("events: publisher closed")

// Nop discards events. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages to one topic.
type KafkaPublisher struct {
	writer messageWriter
	mu     sync.Mutex
	closed bool
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("events: no kafka brokers configured")
	}
	if topic == "" {
		return nil, errors.New("events: no kafka topic configured")
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}, nil
}

// New returns a Kafka publisher when brokers are set, otherwise Nop.
func New(brokers []string, topic string) (Publisher, error) {
	if len(brokers) == 0 {
		return Nop{}, nil
	}
	return NewKafkaPublisher(brokers, topic)
}

// Publish writes e synchronously.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrPublisherClosed
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: e.Key(), Value: data}); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.writer.Close()
}
