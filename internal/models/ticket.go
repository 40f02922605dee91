package models

import "strings"

// Ticket is the part of a host platform ticket the generator reads.
type Ticket struct {
	ID           int64  `db:"id"`
	Title        string `db:"title"`
	Message      string `db:"message"`
	DepartmentID int64  `db:"did"`
}

// TicketReply is one reply on a ticket. Admin holds the staff author name
// and is empty for customer replies.
type TicketReply struct {
	ID      int64  `db:"id"`
	Message string `db:"message"`
	Admin   string `db:"admin"`
}

// IsStaff reports whether the reply was written by a staff member.
func (r TicketReply) IsStaff() bool {
	a := strings.TrimSpace(r.Admin)
	return a != "" && a != "0"
}
