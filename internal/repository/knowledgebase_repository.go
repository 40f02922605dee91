package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/goatkit/kbgen/internal/database"
	"github.com/goatkit/kbgen/internal/models"
)

// KnowledgeBaseRepository reads and writes the host platform's KB tables.
type KnowledgeBaseRepository interface {
	ListCategories(ctx context.Context) ([]models.KBCategory, error)
	ListArticles(ctx context.Context) ([]models.KBArticleSummary, error)
	CreateCategory(ctx context.Context, name string, parentID int64) (int64, error)
	// WithinTx runs fn in one transaction, committing when fn returns nil.
	WithinTx(ctx context.Context, fn func(w KnowledgeBaseWriter) error) error
}

// KnowledgeBaseWriter holds the article writes that make up one save.
type KnowledgeBaseWriter interface {
	ArticleExists(ctx context.Context, id int64) (bool, error)
	InsertArticle(ctx context.Context, title, body string, private bool) (int64, error)
	UpdateArticle(ctx context.Context, id int64, title, body string, private bool) error
	InsertCategoryLink(ctx context.Context, articleID, categoryID int64) error
	ReplaceCategoryLink(ctx context.Context, articleID, categoryID int64) error
	ReplaceTags(ctx context.Context, articleID int64, tags []string) error
}

// KnowledgeBaseSQLRepository implements KnowledgeBaseRepository.
type KnowledgeBaseSQLRepository struct {
	db *sqlx.DB
}

// NewKnowledgeBaseRepository creates a new knowledge base repository.
func NewKnowledgeBaseRepository(db *sqlx.DB) *KnowledgeBaseSQLRepository {
	return &KnowledgeBaseSQLRepository{db: db}
}

// ListCategories returns all categories ordered by name.
func (r *KnowledgeBaseSQLRepository) ListCategories(ctx context.Context) ([]models.KBCategory, error) {
	cats := []models.KBCategory{}
	err := r.db.SelectContext(ctx, &cats,
		`SELECT id, name, parentid, COALESCE(description, '') AS description FROM tblknowledgebasecats ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list kb categories: %w", err)
	}
	return cats, nil
}

// ListArticles returns every article with its category link, ordered by
// title. An article with several links appears once per link.
func (r *KnowledgeBaseSQLRepository) ListArticles(ctx context.Context) ([]models.KBArticleSummary, error) {
	articles := []models.KBArticleSummary{}
	err := r.db.SelectContext(ctx, &articles, `
		SELECT kb.id, kb.title, kbl.categoryid
		FROM tblknowledgebase kb
		LEFT JOIN tblknowledgebaselinks kbl ON kb.id = kbl.articleid
		ORDER BY kb.title, kb.id`)
	if err != nil {
		return nil, fmt.Errorf("list kb articles: %w", err)
	}
	return articles, nil
}

// CreateCategory inserts a visible category with an empty description.
func (r *KnowledgeBaseSQLRepository) CreateCategory(ctx context.Context, name string, parentID int64) (int64, error) {
	id, err := database.InsertID(ctx, r.db,
		`INSERT INTO tblknowledgebasecats (parentid, name, description, hidden) VALUES (?, ?, '', 0)`,
		parentID, name)
	if err != nil {
		return 0, fmt.Errorf("create kb category: %w", err)
	}
	return id, nil
}

// WithinTx runs fn in a transaction.
func (r *KnowledgeBaseSQLRepository) WithinTx(ctx context.Context, fn func(w KnowledgeBaseWriter) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&kbWriter{q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type kbWriter struct {
	q database.Querier
}

func (w *kbWriter) ArticleExists(ctx context.Context, id int64) (bool, error) {
	var n int
	query := database.ConvertPlaceholders(w.q, `SELECT COUNT(*) FROM tblknowledgebase WHERE id = ?`)
	if err := w.q.GetContext(ctx, &n, query, id); err != nil {
		return false, fmt.Errorf("check kb article: %w", err)
	}
	return n > 0, nil
}

func (w *kbWriter) InsertArticle(ctx context.Context, title, body string, private bool) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO tblknowledgebase
			(title, article, views, useful, votes, private, %s, parentid, language)
		VALUES (?, ?, 0, 0, 0, ?, 0, 0, '')`, database.QuoteIdentifier(w.q.DriverName(), "order"))
	id, err := database.InsertID(ctx, w.q, query, title, body, boolToInt(private))
	if err != nil {
		return 0, fmt.Errorf("insert kb article: %w", err)
	}
	return id, nil
}

func (w *kbWriter) UpdateArticle(ctx context.Context, id int64, title, body string, private bool) error {
	query := database.ConvertPlaceholders(w.q,
		`UPDATE tblknowledgebase SET title = ?, article = ?, private = ? WHERE id = ?`)
	if _, err := w.q.ExecContext(ctx, query, title, body, boolToInt(private), id); err != nil {
		return fmt.Errorf("update kb article: %w", err)
	}
	return nil
}

func (w *kbWriter) InsertCategoryLink(ctx context.Context, articleID, categoryID int64) error {
	query := database.ConvertPlaceholders(w.q,
		`INSERT INTO tblknowledgebaselinks (categoryid, articleid) VALUES (?, ?)`)
	if _, err := w.q.ExecContext(ctx, query, categoryID, articleID); err != nil {
		return fmt.Errorf("insert kb category link: %w", err)
	}
	return nil
}

// ReplaceCategoryLink leaves exactly one link for the article.
func (w *kbWriter) ReplaceCategoryLink(ctx context.Context, articleID, categoryID int64) error {
	query := database.ConvertPlaceholders(w.q, `DELETE FROM tblknowledgebaselinks WHERE articleid = ?`)
	if _, err := w.q.ExecContext(ctx, query, articleID); err != nil {
		return fmt.Errorf("delete kb category links: %w", err)
	}
	return w.InsertCategoryLink(ctx, articleID, categoryID)
}

// ReplaceTags deletes the article's tags and inserts one row per tag.
func (w *kbWriter) ReplaceTags(ctx context.Context, articleID int64, tags []string) error {
	del := database.ConvertPlaceholders(w.q, `DELETE FROM tblknowledgebasetags WHERE articleid = ?`)
	if _, err := w.q.ExecContext(ctx, del, articleID); err != nil {
		return fmt.Errorf("delete kb tags: %w", err)
	}

	ins := database.ConvertPlaceholders(w.q, `INSERT INTO tblknowledgebasetags (articleid, tag) VALUES (?, ?)`)
	for _, tag := range tags {
		if _, err := w.q.ExecContext(ctx, ins, articleID, tag); err != nil {
			return fmt.Errorf("insert kb tag: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
