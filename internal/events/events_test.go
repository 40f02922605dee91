package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed++
	return nil
}

func TestKafkaPublisherPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{Type: TypeConverted, QueueID: 3, TicketID: 100, ArticleID: 55, OccurredAt: at})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	assert.Equal(t, "ticket-100", string(w.msgs[0].Key))

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "converted", got["type"])
	assert.Equal(t, float64(55), got["article_id"])
	assert.NotContains(t, got, "count")
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("broker down")}}

	err := p.Publish(context.Background(), Event{Type: TypeQueued, TicketID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish queued event")
}

func TestKafkaPublisherClose(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	err := p.Publish(context.Background(), Event{Type: TypeQueued})
	assert.ErrorIs(t, err, ErrPublisherClosed)
}

func TestNewWithoutBrokersIsNop(t *testing.T) {
	p, err := New(nil, "kb.queue")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, p)
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeQueued}))
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	_, err := NewKafkaPublisher([]string{"localhost:9092"}, "")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "kb.queue")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestEventKey(t *testing.T) {
	assert.Equal(t, "queue-7", string(Event{Type: TypeDismissed, QueueID: 7}.Key()))
	assert.Equal(t, "cleaned", string(Event{Type: TypeCleaned, Count: 4}.Key()))
}
