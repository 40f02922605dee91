package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/kbgen/internal/database"
	"github.com/goatkit/kbgen/internal/models"
)

// TicketRepository reads tickets owned by the host platform.
type TicketRepository interface {
	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	CountReplies(ctx context.Context, ticketID int64) (int, error)
	ListReplies(ctx context.Context, ticketID int64) ([]models.TicketReply, error)
	DepartmentName(ctx context.Context, departmentID int64) (*string, error)
}

// TicketSQLRepository reads tbltickets and related tables.
type TicketSQLRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new ticket repository.
func NewTicketRepository(db *sqlx.DB) *TicketSQLRepository {
	return &TicketSQLRepository{db: db}
}

// GetTicket returns the ticket or ErrNotFound.
func (r *TicketSQLRepository) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	var t models.Ticket
	query := database.ConvertPlaceholders(r.db, `SELECT id, did, title, message FROM tbltickets WHERE id = ?`)
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &t, nil
}

// CountReplies returns the number of replies on a ticket.
func (r *TicketSQLRepository) CountReplies(ctx context.Context, ticketID int64) (int, error) {
	var n int
	query := database.ConvertPlaceholders(r.db, `SELECT COUNT(*) FROM tblticketreplies WHERE tid = ?`)
	if err := r.db.GetContext(ctx, &n, query, ticketID); err != nil {
		return 0, fmt.Errorf("count ticket replies: %w", err)
	}
	return n, nil
}

// ListReplies returns a ticket's replies in chronological order.
func (r *TicketSQLRepository) ListReplies(ctx context.Context, ticketID int64) ([]models.TicketReply, error) {
	replies := []models.TicketReply{}
	query := database.ConvertPlaceholders(r.db,
		`SELECT id, message, admin FROM tblticketreplies WHERE tid = ? ORDER BY date ASC, id ASC`)
	if err := r.db.SelectContext(ctx, &replies, query, ticketID); err != nil {
		return nil, fmt.Errorf("list ticket replies: %w", err)
	}
	return replies, nil
}

// DepartmentName returns the department's name, or nil when it does not exist.
func (r *TicketSQLRepository) DepartmentName(ctx context.Context, departmentID int64) (*string, error) {
	var name string
	query := database.ConvertPlaceholders(r.db, `SELECT name FROM tblticketdepartments WHERE id = ?`)
	if err := r.db.GetContext(ctx, &name, query, departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get department name: %w", err)
	}
	return &name, nil
}
