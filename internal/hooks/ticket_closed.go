// Package hooks holds the entry points the host platform calls on ticket
// events.
package hooks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/models"
)

// SettingsLoader loads the addon settings for one event.
type SettingsLoader interface {
	Load(ctx context.Context, requestHost string) (config.AddonSettings, error)
}

// Enqueuer queues a closed ticket.
type Enqueuer interface {
	EnqueueOnTicketClose(ctx context.Context, ticketID int64, settings config.AddonSettings) (models.EnqueueResult, error)
}

// TicketClosedHandler reacts to the platform's ticket-closed event. It never
// fails the caller: closing a ticket must not depend on this addon.
type TicketClosedHandler struct {
	settings SettingsLoader
	queue    Enqueuer
	logger   zerolog.Logger
}

// NewTicketClosedHandler creates the hook handler.
func NewTicketClosedHandler(settings SettingsLoader, queue Enqueuer, logger zerolog.Logger) *TicketClosedHandler {
	return &TicketClosedHandler{settings: settings, queue: queue, logger: logger}
}

// OnTicketClosed enqueues the ticket. Errors and panics are logged and
// swallowed; the returned result is empty when handling failed.
func (h *TicketClosedHandler) OnTicketClosed(ctx context.Context, ticketID int64) (result models.EnqueueResult) {
	log := h.logger.With().Int64("ticket_id", ticketID).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("panic", fmt.Sprint(rec)).Msg("ticket closed hook panicked")
			result = ""
		}
	}()

	if ticketID <= 0 {
		log.Warn().Msg("ticket closed hook called without a ticket id")
		return ""
	}

	settings, err := h.settings.Load(ctx, "")
	if err != nil {
		log.Error().Err(err).Msg("load settings for ticket close")
		return ""
	}

	result, err = h.queue.EnqueueOnTicketClose(ctx, ticketID, settings)
	if err != nil {
		log.Error().Err(err).Msg("enqueue closed ticket")
		return ""
	}

	log.Debug().Str("result", string(result)).Msg("ticket closed hook done")
	return result
}
