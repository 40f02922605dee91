package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/events"
	"github.com/goatkit/kbgen/internal/kberrors"
	"github.com/goatkit/kbgen/internal/models"
	"github.com/goatkit/kbgen/internal/repository"
)

// MaxQueueList caps the number of entries returned by List.
const MaxQueueList = 100

// QueueService manages the lifecycle of queued tickets.
type QueueService struct {
	common
	queue   repository.QueueRepository
	tickets repository.TicketRepository
}

// NewQueueService creates a new queue service.
func NewQueueService(queue repository.QueueRepository, tickets repository.TicketRepository, opts ...Option) *QueueService {
	return &QueueService{
		common:  newCommon(opts),
		queue:   queue,
		tickets: tickets,
	}
}

// EnqueueOnTicketClose queues a just-closed ticket for KB review. Skips are
// not errors; the result says which rule applied. At most one row is ever
// inserted per ticket.
func (s *QueueService) EnqueueOnTicketClose(ctx context.Context, ticketID int64, settings config.AddonSettings) (models.EnqueueResult, error) {
	result, err := s.enqueue(ctx, ticketID, settings)
	if err != nil {
		s.logger.Error().Err(err).Int64("ticket_id", ticketID).Msg("enqueue failed")
		s.audit(ctx, fmt.Sprintf("Error queuing ticket #%d: %s", ticketID, err))
		return "", kberrors.Wrap(kberrors.KindInternal, "queue.EnqueueOnTicketClose", "", err)
	}

	s.metrics.EnqueueResult(string(result))
	s.logger.Info().Int64("ticket_id", ticketID).Str("result", string(result)).Msg("ticket close handled")
	return result, nil
}

func (s *QueueService) enqueue(ctx context.Context, ticketID int64, settings config.AddonSettings) (models.EnqueueResult, error) {
	if !settings.AutoQueueClosed {
		return models.EnqueueSkippedDisabled, nil
	}

	ticket, err := s.tickets.GetTicket(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.EnqueueSkippedNoTicket, nil
	}
	if err != nil {
		return "", err
	}

	replies, err := s.tickets.CountReplies(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if replies < settings.MinReplies {
		s.audit(ctx, fmt.Sprintf("Ticket #%d skipped - only %d replies (min: %d)", ticketID, replies, settings.MinReplies))
		return models.EnqueueSkippedReplies, nil
	}

	exists, err := s.queue.ExistsForTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	if exists {
		return models.EnqueueSkippedExists, nil
	}

	department, err := s.tickets.DepartmentName(ctx, ticket.DepartmentID)
	if err != nil {
		return "", err
	}

	now := s.timestamp()
	entry := &models.QueueEntry{
		TicketID:         ticketID,
		TicketSubject:    ticket.Title,
		TicketDepartment: department,
		Status:           models.QueueStatusPending,
		TicketClosedAt:   &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.queue.Insert(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// lost the race against a concurrent close of the same ticket
			return models.EnqueueSkippedExists, nil
		}
		return "", err
	}

	s.audit(ctx, fmt.Sprintf("Ticket #%d added to KB queue", ticketID))
	s.metrics.QueueTransition(string(events.TypeQueued), 1)
	s.publish(ctx, events.Event{Type: events.TypeQueued, QueueID: entry.ID, TicketID: ticketID, OccurredAt: now})
	return models.EnqueueQueued, nil
}

// List returns the newest entries first, at most MaxQueueList of them.
func (s *QueueService) List(ctx context.Context, limit int) ([]models.QueueEntry, error) {
	if limit <= 0 || limit > MaxQueueList {
		limit = MaxQueueList
	}
	entries, err := s.queue.List(ctx, limit)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.KindInternal, "queue.List", "", err)
	}
	return entries, nil
}

// Stats counts entries per status.
func (s *QueueService) Stats(ctx context.Context) (models.QueueStats, error) {
	stats, err := s.queue.CountByStatus(ctx)
	if err != nil {
		return stats, kberrors.Wrap(kberrors.KindInternal, "queue.Stats", "", err)
	}
	return stats, nil
}

// Dismiss marks an entry dismissed. kb_article_id is left untouched.
func (s *QueueService) Dismiss(ctx context.Context, queueID int64) error {
	const op = "queue.Dismiss"
	if queueID <= 0 {
		return kberrors.Validation(op, "Invalid queue ID")
	}

	entry, err := s.queue.GetByID(ctx, queueID)
	if errors.Is(err, repository.ErrNotFound) {
		return kberrors.NotFound(op, "Queue entry not found")
	}
	if err != nil {
		return kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	if _, err := s.queue.UpdateStatus(ctx, queueID, models.QueueStatusDismissed, s.timestamp()); err != nil {
		return kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	s.logger.Info().Int64("queue_id", queueID).Int64("ticket_id", entry.TicketID).Msg("queue entry dismissed")
	s.audit(ctx, fmt.Sprintf("Dismissed queue entry #%d", queueID))
	s.metrics.QueueTransition(string(events.TypeDismissed), 1)
	s.publish(ctx, events.Event{Type: events.TypeDismissed, QueueID: queueID, TicketID: entry.TicketID})
	return nil
}

// Delete removes an entry regardless of its status.
func (s *QueueService) Delete(ctx context.Context, queueID int64) error {
	const op = "queue.Delete"
	if queueID <= 0 {
		return kberrors.Validation(op, "Invalid queue ID")
	}

	n, err := s.queue.Delete(ctx, queueID)
	if err != nil {
		return kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}
	if n == 0 {
		return kberrors.NotFound(op, "Queue entry not found")
	}

	s.logger.Info().Int64("queue_id", queueID).Msg("queue entry deleted")
	s.audit(ctx, fmt.Sprintf("Deleted queue entry #%d", queueID))
	s.metrics.QueueTransition(string(events.TypeDeleted), n)
	s.publish(ctx, events.Event{Type: events.TypeDeleted, QueueID: queueID})
	return nil
}

// Cleanup deletes entries that are not converted and older than
// retentionDays. Converted entries are kept forever.
func (s *QueueService) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = config.DefaultRetentionDays
	}
	cutoff := s.timestamp().Add(-time.Duration(retentionDays) * 24 * time.Hour)

	n, err := s.queue.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, kberrors.Wrap(kberrors.KindInternal, "queue.Cleanup", "", err)
	}

	if n > 0 {
		s.logger.Info().Int64("deleted", n).Int("retention_days", retentionDays).Msg("stale queue entries removed")
		s.audit(ctx, fmt.Sprintf("Cleaned up %d old queue entries", n))
		s.metrics.QueueTransition(string(events.TypeCleaned), n)
		s.publish(ctx, events.Event{Type: events.TypeCleaned, Count: n})
	}
	return n, nil
}

// RecordConversion marks the entry for a saved article converted. A
// positive queueID selects that row whatever its status; otherwise the
// pending row for ticketID is used. Matching nothing is not an error.
func (s *QueueService) RecordConversion(ctx context.Context, queueID, ticketID, articleID int64) (int64, error) {
	const op = "queue.RecordConversion"
	now := s.timestamp()

	var (
		n   int64
		err error
	)
	switch {
	case queueID > 0:
		n, err = s.queue.MarkConverted(ctx, queueID, articleID, now)
	case ticketID > 0:
		n, err = s.queue.MarkTicketConverted(ctx, ticketID, articleID, now)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	s.logger.Info().
		Int64("queue_id", queueID).
		Int64("ticket_id", ticketID).
		Int64("article_id", articleID).
		Int64("rows", n).
		Msg("conversion recorded")
	if n > 0 {
		s.metrics.QueueTransition(string(events.TypeConverted), n)
		s.publish(ctx, events.Event{Type: events.TypeConverted, QueueID: queueID, TicketID: ticketID, ArticleID: articleID, OccurredAt: now})
	}
	return n, nil
}
