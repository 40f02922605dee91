package hooks

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/models"
)

type stubSettings struct {
	settings config.AddonSettings
	err      error
}

func (s stubSettings) Load(context.Context, string) (config.AddonSettings, error) {
	return s.settings, s.err
}

type stubQueue struct {
	calls  []int64
	result models.EnqueueResult
	err    error
	panic  bool
}

func (q *stubQueue) EnqueueOnTicketClose(_ context.Context, ticketID int64, _ config.AddonSettings) (models.EnqueueResult, error) {
	q.calls = append(q.calls, ticketID)
	if q.panic {
		panic("boom")
	}
	return q.result, q.err
}

func TestOnTicketClosed(t *testing.T) {
	ctx := context.Background()

	t.Run("enqueues", func(t *testing.T) {
		q := &stubQueue{result: models.EnqueueQueued}
		h := NewTicketClosedHandler(stubSettings{}, q, zerolog.Nop())

		assert.Equal(t, models.EnqueueQueued, h.OnTicketClosed(ctx, 100))
		assert.Equal(t, []int64{100}, q.calls)
	})

	t.Run("settings failure is swallowed", func(t *testing.T) {
		var buf bytes.Buffer
		q := &stubQueue{}
		h := NewTicketClosedHandler(stubSettings{err: errors.New("db down")}, q, zerolog.New(&buf))

		assert.Equal(t, models.EnqueueResult(""), h.OnTicketClosed(ctx, 100))
		assert.Empty(t, q.calls)
		assert.Contains(t, buf.String(), "db down")
	})

	t.Run("enqueue failure is swallowed", func(t *testing.T) {
		var buf bytes.Buffer
		q := &stubQueue{err: errors.New("insert failed")}
		h := NewTicketClosedHandler(stubSettings{}, q, zerolog.New(&buf))

		assert.Equal(t, models.EnqueueResult(""), h.OnTicketClosed(ctx, 100))
		assert.Contains(t, buf.String(), `"ticket_id":100`)
	})

	t.Run("panic is recovered", func(t *testing.T) {
		q := &stubQueue{panic: true}
		h := NewTicketClosedHandler(stubSettings{}, q, zerolog.Nop())

		assert.NotPanics(t, func() { h.OnTicketClosed(ctx, 100) })
	})

	t.Run("invalid id is ignored", func(t *testing.T) {
		q := &stubQueue{}
		h := NewTicketClosedHandler(stubSettings{}, q, zerolog.Nop())

		h.OnTicketClosed(ctx, 0)
		assert.Empty(t, q.calls)
	})
}
