package generation

import (
	"strings"

	"github.com/goatkit/kbgen/internal/models"
	"github.com/goatkit/kbgen/internal/utils"
)

// BuildTranscript renders a ticket and its replies as the plain-text
// conversation sent to the model. Replies must be in chronological order.
func BuildTranscript(ticket *models.Ticket, replies []models.TicketReply) string {
	var b strings.Builder

	b.WriteString("TICKET SUBJECT: ")
	b.WriteString(ticket.Title)
	b.WriteString("\n\n")

	b.WriteString("ORIGINAL MESSAGE:\n")
	b.WriteString(utils.StripHTML(ticket.Message))
	b.WriteString("\n\n")

	for _, r := range replies {
		if r.IsStaff() {
			b.WriteString("[STAFF]:\n")
		} else {
			b.WriteString("[CUSTOMER]:\n")
		}
		b.WriteString(utils.StripHTML(r.Message))
		b.WriteString("\n\n")
	}

	return b.String()
}

func toCategories(cats []models.KBCategory) []Category {
	out := make([]Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, Category{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out
}
