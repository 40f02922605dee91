package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/kberrors"
	"github.com/goatkit/kbgen/internal/models"
	"github.com/goatkit/kbgen/internal/repository"
	"github.com/goatkit/kbgen/internal/utils"
)

// KnowledgeBaseService saves drafts as KB articles and serves the admin
// queue page.
type KnowledgeBaseService struct {
	common
	kb    repository.KnowledgeBaseRepository
	queue *QueueService
}

// NewKnowledgeBaseService creates a new knowledge base service.
func NewKnowledgeBaseService(kb repository.KnowledgeBaseRepository, queue *QueueService, opts ...Option) *KnowledgeBaseService {
	return &KnowledgeBaseService{
		common: newCommon(opts),
		kb:     kb,
		queue:  queue,
	}
}

// SplitTags splits a comma-separated tag string. Tags are trimmed and
// empties dropped; duplicates and case are kept as given.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SaveArticle creates or replaces a KB article from an operator-approved
// draft, rewrites its category link and tag set, then records the
// conversion on the queue. The article writes share one transaction.
func (s *KnowledgeBaseService) SaveArticle(ctx context.Context, in models.SaveArticleInput) (int64, error) {
	const op = "kb.SaveArticle"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return 0, kberrors.Validation(op, "Title is required")
	}
	if in.CategoryID <= 0 {
		return 0, kberrors.Validation(op, "Category is required")
	}

	content := utils.DecodeEntities(strings.TrimSpace(in.Content))
	tags := SplitTags(in.Tags)
	private := !in.Published
	replacing := in.ReplaceID > 0

	var articleID int64
	err := s.kb.WithinTx(ctx, func(w repository.KnowledgeBaseWriter) error {
		if replacing {
			exists, err := w.ArticleExists(ctx, in.ReplaceID)
			if err != nil {
				return err
			}
			if !exists {
				return kberrors.NotFound(op, "KB article not found")
			}
			if err := w.UpdateArticle(ctx, in.ReplaceID, title, content, private); err != nil {
				return err
			}
			if err := w.ReplaceCategoryLink(ctx, in.ReplaceID, in.CategoryID); err != nil {
				return err
			}
			articleID = in.ReplaceID
		} else {
			id, err := w.InsertArticle(ctx, title, content, private)
			if err != nil {
				return err
			}
			if err := w.InsertCategoryLink(ctx, id, in.CategoryID); err != nil {
				return err
			}
			articleID = id
		}
		return w.ReplaceTags(ctx, articleID, tags)
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("ticket_id", in.TicketID).
			Int64("queue_id", in.QueueID).
			Int64("replace_id", in.ReplaceID).
			Msg("article save failed")
		s.audit(ctx, "Save error: "+kberrors.MessageOf(err))
		var kerr *kberrors.Error
		if errors.As(err, &kerr) {
			return 0, err
		}
		return 0, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	if replacing {
		s.audit(ctx, fmt.Sprintf("Updated KB article #%d", articleID))
	} else {
		s.audit(ctx, fmt.Sprintf("Created KB article #%d", articleID))
	}
	s.metrics.ArticleSaved(replacing)
	s.logger.Info().
		Int64("article_id", articleID).
		Int64("ticket_id", in.TicketID).
		Int64("queue_id", in.QueueID).
		Int("tags", len(tags)).
		Bool("replaced", replacing).
		Msg("kb article saved")

	if _, err := s.queue.RecordConversion(ctx, in.QueueID, in.TicketID, articleID); err != nil {
		return articleID, err
	}
	return articleID, nil
}

// CreateCategory adds a visible KB category.
func (s *KnowledgeBaseService) CreateCategory(ctx context.Context, name string, parentID int64) (int64, error) {
	const op = "kb.CreateCategory"

	name = strings.TrimSpace(name)
	if name == "" {
		return 0, kberrors.Validation(op, "Category name is required")
	}
	if parentID < 0 {
		parentID = 0
	}

	id, err := s.kb.CreateCategory(ctx, name, parentID)
	if err != nil {
		s.logger.Error().Err(err).Str("name", name).Msg("category create failed")
		return 0, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	s.logger.Info().Int64("category_id", id).Int64("parent_id", parentID).Msg("kb category created")
	s.audit(ctx, fmt.Sprintf("Created KB category: %s (ID: %d)", name, id))
	return id, nil
}

// QueuePage is everything the admin queue view renders.
type QueuePage struct {
	Entries    []models.QueueEntry       `json:"entries"`
	Stats      models.QueueStats         `json:"stats"`
	Categories []models.KBCategory       `json:"categories"`
	Articles   []models.KBArticleSummary `json:"articles"`
	Cleaned    int64                     `json:"cleaned"`
}

// QueuePage runs the retention sweep and then loads the queue view data.
func (s *KnowledgeBaseService) QueuePage(ctx context.Context, settings config.AddonSettings) (*QueuePage, error) {
	const op = "kb.QueuePage"

	cleaned, err := s.queue.Cleanup(ctx, settings.RetentionDays)
	if err != nil {
		return nil, err
	}

	entries, err := s.queue.List(ctx, MaxQueueList)
	if err != nil {
		return nil, err
	}

	stats, err := s.queue.Stats(ctx)
	if err != nil {
		return nil, err
	}

	cats, err := s.kb.ListCategories(ctx)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	articles, err := s.kb.ListArticles(ctx)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	return &QueuePage{
		Entries:    entries,
		Stats:      stats,
		Categories: cats,
		Articles:   articles,
		Cleaned:    cleaned,
	}, nil
}
