package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/goatkit/kbgen/internal/events"
	"github.com/goatkit/kbgen/internal/metrics"
	"github.com/goatkit/kbgen/internal/repository"
)

// Option configures the ambient collaborators shared by the services.
type Option func(*common)

// WithActivityLog mirrors workflow events into the host activity log.
func WithActivityLog(a repository.ActivityRepository) Option {
	return func(c *common) { c.activity = a }
}

// WithEvents publishes queue lifecycle events.
func WithEvents(p events.Publisher) Option {
	return func(c *common) {
		if p != nil {
			c.events = p
		}
	}
}

// WithMetrics records queue and article metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *common) { c.metrics = m }
}

// WithLogger sets the structured logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *common) { c.logger = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *common) {
		if now != nil {
			c.now = now
		}
	}
}

type common struct {
	activity repository.ActivityRepository
	events   events.Publisher
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

func newCommon(opts []Option) common {
	c := common{
		events: events.Nop{},
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// timestamp is the current time as stored in queue rows: UTC, whole seconds.
func (c *common) timestamp() time.Time {
	return c.now().UTC().Truncate(time.Second)
}

// audit writes an activity log line. Failures are logged and dropped.
func (c *common) audit(ctx context.Context, msg string) {
	if c.activity == nil {
		return
	}
	if err := c.activity.Log(ctx, c.timestamp(), msg); err != nil {
		c.logger.Warn().Err(err).Msg("activity log write failed")
	}
}

// publish sends a lifecycle event. Failures are logged and dropped.
func (c *common) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = c.timestamp()
	}
	if err := c.events.Publish(ctx, e); err != nil {
		c.logger.Warn().Err(err).Str("event", string(e.Type)).Msg("event publish failed")
	}
}
