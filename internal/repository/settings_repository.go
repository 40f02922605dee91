package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/kbgen/internal/database"
)

// SettingsRepository reads addon and platform settings stored by the host.
type SettingsRepository interface {
	AddonSettings(ctx context.Context, module string) (map[string]string, error)
	SystemURL(ctx context.Context) (string, error)
}

// SettingsSQLRepository reads tbladdonmodules and tblconfiguration.
type SettingsSQLRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *sqlx.DB) *SettingsSQLRepository {
	return &SettingsSQLRepository{db: db}
}

type settingRow struct {
	Setting string `db:"setting"`
	Value   string `db:"value"`
}

// AddonSettings returns the module's settings keyed by setting name.
func (r *SettingsSQLRepository) AddonSettings(ctx context.Context, module string) (map[string]string, error) {
	var rows []settingRow
	query := database.ConvertPlaceholders(r.db,
		`SELECT setting, value FROM tbladdonmodules WHERE module = ?`)
	if err := r.db.SelectContext(ctx, &rows, query, module); err != nil {
		return nil, fmt.Errorf("load addon settings: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Setting] = row.Value
	}
	return out, nil
}

// SystemURL returns the platform's configured public URL, or "".
func (r *SettingsSQLRepository) SystemURL(ctx context.Context) (string, error) {
	var url string
	query := database.ConvertPlaceholders(r.db,
		`SELECT value FROM tblconfiguration WHERE setting = ?`)
	if err := r.db.GetContext(ctx, &url, query, "SystemURL"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load system url: %w", err)
	}
	return url, nil
}
