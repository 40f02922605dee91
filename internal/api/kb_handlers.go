package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/goatkit/kbgen/internal/apierrors"
	"github.com/goatkit/kbgen/internal/middleware"
	"github.com/goatkit/kbgen/internal/models"
)

type handlers struct {
	generator Generator
	queue     QueueManager
	kb        KnowledgeBase
	hook      TicketCloser
	db        Pinger
	logger    zerolog.Logger
}

// Requests accept JSON or the form posts the admin UI sends.
type generateRequest struct {
	TicketID int64 `json:"ticket_id" form:"ticket_id"`
}

type saveRequest struct {
	TicketID   int64  `json:"ticket_id" form:"ticket_id"`
	QueueID    int64  `json:"queue_id" form:"queue_id"`
	Title      string `json:"title" form:"title"`
	Content    string `json:"content" form:"content"`
	CategoryID int64  `json:"category_id" form:"category_id"`
	Tags       string `json:"tags" form:"tags"`
	ReplaceID  int64  `json:"replace_id" form:"replace_id"`
	Published  *int   `json:"published" form:"published"`
}

type categoryRequest struct {
	Name     string `json:"name" form:"name"`
	ParentID int64  `json:"parent_id" form:"parent_id"`
}

// generate handles POST /admin/kb/generate
//
//	@Summary	Generate a draft KB article from a ticket
//	@Param		body	body	generateRequest	true	"ticket_id"
//	@Success	200	{object}	map[string]interface{}
//	@Failure	400,402,404,502,503	{object}	apierrors.Failure
//	@Router		/admin/kb/generate [post]
func (h *handlers) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	draft, err := h.generator.Generate(c.Request.Context(), req.TicketID, middleware.Settings(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":                 true,
		"title":                   draft.Title,
		"content":                 draft.Content,
		"tags":                    draft.Tags,
		"suggested_category_id":   draft.SuggestedCategoryID,
		"suggested_category_name": draft.SuggestedCategoryName,
	})
}

// save handles POST /admin/kb/save
//
//	@Summary	Save an approved draft as a KB article
//	@Router		/admin/kb/save [post]
func (h *handlers) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	published := req.Published == nil || *req.Published != 0
	articleID, err := h.kb.SaveArticle(c.Request.Context(), models.SaveArticleInput{
		TicketID:   req.TicketID,
		QueueID:    req.QueueID,
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
		ReplaceID:  req.ReplaceID,
		Published:  published,
	})
	if err != nil && articleID == 0 {
		apierrors.Respond(c, err)
		return
	}
	if err != nil {
		// article is committed; only the queue bookkeeping failed
		h.logger.Warn().Err(err).Int64("article_id", articleID).Int64("queue_id", req.QueueID).Msg("conversion not recorded")
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"article_id": articleID,
		"message":    "KB article saved successfully",
	})
}

// createCategory handles POST /admin/kb/categories
func (h *handlers) createCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	id, err := h.kb.CreateCategory(c.Request.Context(), req.Name, req.ParentID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"category_id": id,
		"message":     "Category created successfully",
	})
}

// queuePage handles GET /admin/kb/queue. It sweeps stale entries first.
func (h *handlers) queuePage(c *gin.Context) {
	page, err := h.kb.QueuePage(c.Request.Context(), middleware.Settings(c))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"entries":    page.Entries,
		"stats":      page.Stats,
		"categories": page.Categories,
		"articles":   page.Articles,
		"cleaned":    page.Cleaned,
	})
}

func (h *handlers) stats(c *gin.Context) {
	stats, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}

func (h *handlers) dismiss(c *gin.Context) {
	id, ok := queueID(c)
	if !ok {
		return
	}
	if err := h.queue.Dismiss(c.Request.Context(), id); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlers) deleteEntry(c *gin.Context) {
	id, ok := queueID(c)
	if !ok {
		return
	}
	if err := h.queue.Delete(c.Request.Context(), id); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func queueID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.Error(c, apierrors.CodeInvalidID)
		return 0, false
	}
	return id, true
}
