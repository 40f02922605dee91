package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type ticketClosedRequest struct {
	TicketID int64 `json:"ticket_id" form:"ticket_id"`
}

// ticketClosed handles POST /hooks/ticket-closed. The platform is always
// told the event was accepted; failures stay in our logs.
func (h *handlers) ticketClosed(c *gin.Context) {
	var req ticketClosedRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn().Err(err).Msg("unreadable ticket closed event")
	} else {
		result := h.hook.OnTicketClosed(c.Request.Context(), req.TicketID)
		h.logger.Debug().Int64("ticket_id", req.TicketID).Str("result", string(result)).Msg("ticket closed event")
	}
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func (h *handlers) health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error().Err(err).Msg("health check: database unreachable")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
