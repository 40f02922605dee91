package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/kbgen/internal/database"
	"github.com/goatkit/kbgen/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// QueueRepository defines the storage operations on mod_ai_kb_queue.
type QueueRepository interface {
	ExistsForTicket(ctx context.Context, ticketID int64) (bool, error)
	Insert(ctx context.Context, entry *models.QueueEntry) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.QueueEntry, error)
	List(ctx context.Context, limit int) ([]models.QueueEntry, error)
	CountByStatus(ctx context.Context) (models.QueueStats, error)
	UpdateStatus(ctx context.Context, id int64, status models.QueueStatus, now time.Time) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
	MarkConverted(ctx context.Context, id, articleID int64, now time.Time) (int64, error)
	MarkTicketConverted(ctx context.Context, ticketID, articleID int64, now time.Time) (int64, error)
}

const queueColumns = `id, ticket_id, ticket_subject, ticket_department, ticket_content,
	status, kb_article_id, ticket_closed_at, created_at, updated_at`

// QueueSQLRepository implements QueueRepository on the host database.
type QueueSQLRepository struct {
	db *sqlx.DB
}

// NewQueueRepository creates a new queue repository.
func NewQueueRepository(db *sqlx.DB) *QueueSQLRepository {
	return &QueueSQLRepository{db: db}
}

// ExistsForTicket reports whether any queue row, in any status, exists
// for the ticket.
func (r *QueueSQLRepository) ExistsForTicket(ctx context.Context, ticketID int64) (bool, error) {
	var n int
	query := database.ConvertPlaceholders(r.db, `SELECT COUNT(*) FROM mod_ai_kb_queue WHERE ticket_id = ?`)
	if err := r.db.GetContext(ctx, &n, query, ticketID); err != nil {
		return false, fmt.Errorf("check queue entry: %w", err)
	}
	return n > 0, nil
}

// Insert stores a new queue entry and sets its ID. A second row for the
// same ticket yields ErrDuplicate.
func (r *QueueSQLRepository) Insert(ctx context.Context, e *models.QueueEntry) (int64, error) {
	id, err := database.InsertID(ctx, r.db, `
		INSERT INTO mod_ai_kb_queue
			(ticket_id, ticket_subject, ticket_department, ticket_content, status,
			 kb_article_id, ticket_closed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TicketID, e.TicketSubject, e.TicketDepartment, e.TicketContent, string(e.Status),
		e.KBArticleID, e.TicketClosedAt, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return 0, ErrDuplicate
		}
		return 0, fmt.Errorf("insert queue entry: %w", err)
	}
	e.ID = id
	return id, nil
}

// GetByID returns one queue entry or ErrNotFound.
func (r *QueueSQLRepository) GetByID(ctx context.Context, id int64) (*models.QueueEntry, error) {
	var e models.QueueEntry
	query := database.ConvertPlaceholders(r.db, `SELECT `+queueColumns+` FROM mod_ai_kb_queue WHERE id = ?`)
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get queue entry: %w", err)
	}
	return &e, nil
}

// List returns up to limit entries, newest first.
func (r *QueueSQLRepository) List(ctx context.Context, limit int) ([]models.QueueEntry, error) {
	entries := []models.QueueEntry{}
	query := database.ConvertPlaceholders(r.db,
		`SELECT `+queueColumns+` FROM mod_ai_kb_queue ORDER BY created_at DESC, id DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("list queue entries: %w", err)
	}
	return entries, nil
}

// CountByStatus returns the number of rows per status.
func (r *QueueSQLRepository) CountByStatus(ctx context.Context) (models.QueueStats, error) {
	var stats models.QueueStats
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM mod_ai_kb_queue GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("count queue entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return stats, fmt.Errorf("scan queue count: %w", err)
		}
		switch models.QueueStatus(status) {
		case models.QueueStatusPending:
			stats.Pending = n
		case models.QueueStatusConverted:
			stats.Converted = n
		case models.QueueStatusDismissed:
			stats.Dismissed = n
		}
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("count queue entries: %w", err)
	}
	return stats, nil
}

// UpdateStatus sets status and updated_at, leaving kb_article_id alone.
func (r *QueueSQLRepository) UpdateStatus(ctx context.Context, id int64, status models.QueueStatus, now time.Time) (int64, error) {
	query := database.ConvertPlaceholders(r.db,
		`UPDATE mod_ai_kb_queue SET status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, string(status), now, id)
	if err != nil {
		return 0, fmt.Errorf("update queue status: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes a queue row regardless of status.
func (r *QueueSQLRepository) Delete(ctx context.Context, id int64) (int64, error) {
	query := database.ConvertPlaceholders(r.db, `DELETE FROM mod_ai_kb_queue WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("delete queue entry: %w", err)
	}
	return res.RowsAffected()
}

// DeleteStale removes non-converted rows created before cutoff.
func (r *QueueSQLRepository) DeleteStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := database.ConvertPlaceholders(r.db,
		`DELETE FROM mod_ai_kb_queue WHERE status <> ? AND created_at < ?`)
	res, err := r.db.ExecContext(ctx, query, string(models.QueueStatusConverted), cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale queue entries: %w", err)
	}
	return res.RowsAffected()
}

// MarkConverted converts the row with the given id, whatever its status.
func (r *QueueSQLRepository) MarkConverted(ctx context.Context, id, articleID int64, now time.Time) (int64, error) {
	query := database.ConvertPlaceholders(r.db,
		`UPDATE mod_ai_kb_queue SET status = ?, kb_article_id = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, string(models.QueueStatusConverted), articleID, now, id)
	if err != nil {
		return 0, fmt.Errorf("mark queue entry converted: %w", err)
	}
	return res.RowsAffected()
}

// MarkTicketConverted converts the pending row for ticketID, if any.
func (r *QueueSQLRepository) MarkTicketConverted(ctx context.Context, ticketID, articleID int64, now time.Time) (int64, error) {
	query := database.ConvertPlaceholders(r.db, `
		UPDATE mod_ai_kb_queue SET status = ?, kb_article_id = ?, updated_at = ?
		WHERE ticket_id = ? AND status = ?`)
	res, err := r.db.ExecContext(ctx, query,
		string(models.QueueStatusConverted), articleID, now, ticketID, string(models.QueueStatusPending))
	if err != nil {
		return 0, fmt.Errorf("mark ticket converted: %w", err)
	}
	return res.RowsAffected()
}
