package models

import "time"

// QueueStatus is the lifecycle state of a queue entry.
type QueueStatus string

const (
	QueueStatusPending   QueueStatus = "pending"
	QueueStatusConverted QueueStatus = "converted"
	QueueStatusDismissed QueueStatus = "dismissed"
)

// Valid reports whether s is one of the known statuses.
func (s QueueStatus) Valid() bool {
	switch s {
	case QueueStatusPending, QueueStatusConverted, QueueStatusDismissed:
		return true
	}
	return false
}

// QueueEntry is a closed ticket waiting to be turned into a KB article.
// Subject and department are snapshots taken when the ticket was queued.
type QueueEntry struct {
	ID               int64       `db:"id" json:"id"`
	TicketID         int64       `db:"ticket_id" json:"ticket_id"`
	TicketSubject    string      `db:"ticket_subject" json:"ticket_subject"`
	TicketDepartment *string     `db:"ticket_department" json:"ticket_department"`
	TicketContent    *string     `db:"ticket_content" json:"ticket_content,omitempty"`
	Status           QueueStatus `db:"status" json:"status"`
	KBArticleID      *int64      `db:"kb_article_id" json:"kb_article_id"`
	TicketClosedAt   *time.Time  `db:"ticket_closed_at" json:"ticket_closed_at"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updated_at"`
}

// QueueStats counts entries per status.
type QueueStats struct {
	Pending   int `json:"pending"`
	Converted int `json:"converted"`
	Dismissed int `json:"dismissed"`
}

// EnqueueResult tells what EnqueueOnTicketClose did with a ticket.
type EnqueueResult string

const (
	EnqueueQueued          EnqueueResult = "queued"
	EnqueueSkippedDisabled EnqueueResult = "auto_queue_disabled"
	EnqueueSkippedReplies  EnqueueResult = "too_few_replies"
	EnqueueSkippedNoTicket EnqueueResult = "ticket_not_found"
	EnqueueSkippedExists   EnqueueResult = "already_queued"
)
