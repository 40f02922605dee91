package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/kbgen/internal/database"
	"github.com/goatkit/kbgen/internal/events"
	"github.com/goatkit/kbgen/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.Migrate(ctx, db))
	require.NoError(t, database.CreateHostTables(ctx, db))
	return db
}

func seedTicket(t *testing.T, db *sqlx.DB, id int64, title string, departmentID int64, replies int) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO tbltickets (id, did, title, message) VALUES (?, ?, ?, ?)`,
		id, departmentID, title, "<p>original message</p>")
	require.NoError(t, err)
	for i := 0; i < replies; i++ {
		admin := ""
		if i%2 == 0 {
			admin = "Alice"
		}
		_, err := db.Exec(`INSERT INTO tblticketreplies (tid, message, admin, date) VALUES (?, ?, ?, ?)`,
			id, "reply", admin, testNow.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
	}
}

func seedDepartment(t *testing.T, db *sqlx.DB, id int64, name string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO tblticketdepartments (id, name) VALUES (?, ?)`, id, name)
	require.NoError(t, err)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db       *sqlx.DB
	queue    *QueueService
	kb       *KnowledgeBaseService
	queueRep *repository.QueueSQLRepository
	events   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	pub := &recordingPublisher{}
	opts := []Option{
		WithClock(fixedClock),
		WithEvents(pub),
		WithActivityLog(repository.NewActivityRepository(db)),
	}

	queueRepo := repository.NewQueueRepository(db)
	queue := NewQueueService(queueRepo, repository.NewTicketRepository(db), opts...)
	kb := NewKnowledgeBaseService(repository.NewKnowledgeBaseRepository(db), queue, opts...)

	return &fixture{db: db, queue: queue, kb: kb, queueRep: queueRepo, events: pub}
}

func (f *fixture) count(t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.Get(&n, query, args...))
	return n
}
