package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/kbgen/internal/database"
)

// ActivityPrefix marks every activity log line written by this service.
const ActivityPrefix = "[AI KB Generator] "

// ActivityRepository appends to the host platform's activity log.
type ActivityRepository interface {
	Log(ctx context.Context, at time.Time, description string) error
}

// ActivitySQLRepository writes tblactivitylog rows.
type ActivitySQLRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new activity repository.
func NewActivityRepository(db *sqlx.DB) *ActivitySQLRepository {
	return &ActivitySQLRepository{db: db}
}

// Log writes one prefixed activity line.
func (r *ActivitySQLRepository) Log(ctx context.Context, at time.Time, description string) error {
	query := database.ConvertPlaceholders(r.db, `
		INSERT INTO tblactivitylog (date, description, `+database.QuoteIdentifier(r.db.DriverName(), "user")+`, userid, ipaddr)
		VALUES (?, ?, ?, 0, '')`)
	if _, err := r.db.ExecContext(ctx, query, at, ActivityPrefix+description, "System"); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}
