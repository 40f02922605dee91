package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Querier is satisfied by *sqlx.DB and *sqlx.Tx.
type Querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

var dollarPlaceholder = regexp.MustCompile(`\$\d+`)

// IsPostgres reports whether driver speaks the PostgreSQL dialect.
func IsPostgres(driver string) bool {
	switch strings.ToLower(driver) {
	case "postgres", "pgx":
		return true
	}
	return false
}

// IsSQLite reports whether driver is SQLite.
func IsSQLite(driver string) bool {
	return strings.HasPrefix(strings.ToLower(driver), "sqlite")
}

// ConvertPlaceholders rewrites ? placeholders for the driver behind q.
//
// Only ? placeholders are allowed. Using $N placeholders will panic.
//   - PostgreSQL: ? becomes $1, $2, ...
//   - MySQL, SQLite: passed through as-is
func ConvertPlaceholders(q Querier, query string) string {
	if dollarPlaceholder.MatchString(query) {
		panic(fmt.Sprintf("ConvertPlaceholders: $N placeholders are not allowed. Use ? placeholders instead.\nQuery: %s", query))
	}
	if !IsPostgres(q.DriverName()) {
		query = strings.ReplaceAll(query, " ILIKE ", " LIKE ")
	}
	return q.Rebind(query)
}

// QuoteIdentifier quotes a table or column name for driver. Needed for
// host columns that collide with reserved words, such as `order`.
func QuoteIdentifier(driver, name string) string {
	if IsPostgres(driver) {
		return `"` + name + `"`
	}
	return "`" + name + "`"
}

// InsertID runs an INSERT and returns the new row's id. PostgreSQL gets a
// RETURNING id clause; other drivers use LastInsertId.
func InsertID(ctx context.Context, q Querier, query string, args ...interface{}) (int64, error) {
	if IsPostgres(q.DriverName()) {
		var id int64
		if err := q.QueryRowxContext(ctx, ConvertPlaceholders(q, query+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	res, err := q.ExecContext(ctx, ConvertPlaceholders(q, query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsDuplicateKey reports whether err is a unique constraint violation on
// any supported driver.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
