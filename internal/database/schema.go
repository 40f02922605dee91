package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// QueueTable is the only table this service owns.
const QueueTable = "mod_ai_kb_queue"

var queueSchemaMySQL = []string{
	`CREATE TABLE IF NOT EXISTS mod_ai_kb_queue (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		ticket_id INT UNSIGNED NOT NULL,
		ticket_subject VARCHAR(255) NOT NULL DEFAULT '',
		ticket_department VARCHAR(100) NULL,
		ticket_content TEXT NULL,
		status ENUM('pending','converted','dismissed') NOT NULL DEFAULT 'pending',
		kb_article_id INT NULL,
		ticket_closed_at TIMESTAMP NULL,
		created_at TIMESTAMP NULL,
		updated_at TIMESTAMP NULL,
		UNIQUE KEY mod_ai_kb_queue_ticket_id_unique (ticket_id),
		KEY mod_ai_kb_queue_status_index (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var queueSchemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS mod_ai_kb_queue (
		id SERIAL PRIMARY KEY,
		ticket_id INTEGER NOT NULL,
		ticket_subject VARCHAR(255) NOT NULL DEFAULT '',
		ticket_department VARCHAR(100) NULL,
		ticket_content TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending','converted','dismissed')),
		kb_article_id INTEGER NULL,
		ticket_closed_at TIMESTAMP NULL,
		created_at TIMESTAMP NULL,
		updated_at TIMESTAMP NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS mod_ai_kb_queue_ticket_id_unique ON mod_ai_kb_queue (ticket_id)`,
	`CREATE INDEX IF NOT EXISTS mod_ai_kb_queue_status_index ON mod_ai_kb_queue (status)`,
}

var queueSchemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS mod_ai_kb_queue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ticket_id INTEGER NOT NULL,
		ticket_subject VARCHAR(255) NOT NULL DEFAULT '',
		ticket_department VARCHAR(100) NULL,
		ticket_content TEXT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending'
			CHECK (status IN ('pending','converted','dismissed')),
		kb_article_id INTEGER NULL,
		ticket_closed_at DATETIME NULL,
		created_at DATETIME NULL,
		updated_at DATETIME NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS mod_ai_kb_queue_ticket_id_unique ON mod_ai_kb_queue (ticket_id)`,
	`CREATE INDEX IF NOT EXISTS mod_ai_kb_queue_status_index ON mod_ai_kb_queue (status)`,
}

// Host platform tables, SQLite only. The service never creates these on a
// real installation; they back local development and tests.
var hostSchemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS tblticketdepartments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name VARCHAR(255) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tbltickets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		did INTEGER NOT NULL DEFAULT 0,
		title VARCHAR(255) NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		status VARCHAR(64) NOT NULL DEFAULT 'Open'
	)`,
	`CREATE TABLE IF NOT EXISTS tblticketreplies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tid INTEGER NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		admin VARCHAR(255) NOT NULL DEFAULT '',
		date DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tblknowledgebasecats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parentid INTEGER NOT NULL DEFAULT 0,
		name VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		hidden INTEGER NOT NULL DEFAULT 0
	)`,
	"CREATE TABLE IF NOT EXISTS tblknowledgebase (" +
		"id INTEGER PRIMARY KEY AUTOINCREMENT," +
		"title VARCHAR(255) NOT NULL DEFAULT ''," +
		"article TEXT NOT NULL DEFAULT ''," +
		"views INTEGER NOT NULL DEFAULT 0," +
		"useful INTEGER NOT NULL DEFAULT 0," +
		"votes INTEGER NOT NULL DEFAULT 0," +
		"private INTEGER NOT NULL DEFAULT 0," +
		"`order` INTEGER NOT NULL DEFAULT 0," +
		"parentid INTEGER NOT NULL DEFAULT 0," +
		"language VARCHAR(64) NOT NULL DEFAULT ''" +
		")",
	`CREATE TABLE IF NOT EXISTS tblknowledgebaselinks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		categoryid INTEGER NOT NULL,
		articleid INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tblknowledgebasetags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		articleid INTEGER NOT NULL,
		tag VARCHAR(64) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tbladdonmodules (
		module VARCHAR(64) NOT NULL,
		setting VARCHAR(64) NOT NULL,
		value TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tblconfiguration (
		setting VARCHAR(64) NOT NULL PRIMARY KEY,
		value TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tblactivitylog (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date DATETIME NOT NULL,
		description TEXT NOT NULL,
		user VARCHAR(255) NOT NULL DEFAULT '',
		userid INTEGER NOT NULL DEFAULT 0,
		ipaddr VARCHAR(64) NOT NULL DEFAULT ''
	)`,
}

// QueueSchema returns the DDL statements for the queue table.
func QueueSchema(driver string) []string {
	switch {
	case IsPostgres(driver):
		return queueSchemaPostgres
	case IsSQLite(driver):
		return queueSchemaSQLite
	default:
		return queueSchemaMySQL
	}
}

// Migrate creates the queue table and its indexes if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	return execAll(ctx, db, QueueSchema(db.DriverName()))
}

// CreateHostTables creates a minimal copy of the host platform tables.
// Only supported on SQLite.
func CreateHostTables(ctx context.Context, db *sqlx.DB) error {
	if !IsSQLite(db.DriverName()) {
		return fmt.Errorf("host tables can only be created on sqlite, not %s", db.DriverName())
	}
	return execAll(ctx, db, hostSchemaSQLite)
}

func execAll(ctx context.Context, db *sqlx.DB, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
