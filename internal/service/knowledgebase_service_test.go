package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goatkit/kbgen/internal/events"
	"github.com/goatkit/kbgen/internal/kberrors"
	"github.com/goatkit/kbgen/internal/models"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{" , ,", []string{}},
		{"email, smtp", []string{"email", "smtp"}},
		{"a, b ,b", []string{"a", "b", "b"}},
		{"SMTP,smtp", []string{"SMTP", "smtp"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.raw))
		})
	}
}

func TestSaveArticleValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{Title: "  ", CategoryID: 1})
	assert.Equal(t, kberrors.KindValidation, kberrors.KindOf(err))
	assert.Equal(t, "Title is required", kberrors.MessageOf(err))

	_, err = f.kb.SaveArticle(ctx, models.SaveArticleInput{Title: "x", CategoryID: 0})
	assert.Equal(t, kberrors.KindValidation, kberrors.KindOf(err))
	assert.Equal(t, "Category is required", kberrors.MessageOf(err))

	assert.Equal(t, 0, f.count(t, `SELECT COUNT(*) FROM tblknowledgebase`))
}

func TestSaveArticleCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{
		Title:      " Fixing SMTP ",
		Content:    "<p>Use port 587 &amp;lt;tls&amp;gt;</p>",
		CategoryID: 5,
		Tags:       "a, b ,b",
		Published:  false,
	})
	require.NoError(t, err)
	require.Positive(t, id)

	var article struct {
		Title   string `db:"title"`
		Article string `db:"article"`
		Private int    `db:"private"`
		Views   int    `db:"views"`
	}
	require.NoError(t, f.db.Get(&article, `SELECT title, article, private, views FROM tblknowledgebase WHERE id = ?`, id))
	assert.Equal(t, "Fixing SMTP", article.Title)
	assert.Equal(t, "<p>Use port 587 &lt;tls&gt;</p>", article.Article)
	assert.Equal(t, 1, article.Private)
	assert.Equal(t, 0, article.Views)

	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM tblknowledgebaselinks WHERE articleid = ? AND categoryid = 5`, id))

	var tags []string
	require.NoError(t, f.db.Select(&tags, `SELECT tag FROM tblknowledgebasetags WHERE articleid = ? ORDER BY id`, id))
	assert.Equal(t, []string{"a", "b", "b"}, tags)
}

func TestSaveArticleReplace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{
		Title: "v1", Content: "one", CategoryID: 5, Tags: "old, tags", Published: true,
	})
	require.NoError(t, err)

	replaced, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{
		Title: "v2", Content: "two", CategoryID: 7, Tags: "", ReplaceID: id, Published: true,
	})
	require.NoError(t, err)
	assert.Equal(t, id, replaced)

	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM tblknowledgebase`))
	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM tblknowledgebaselinks WHERE articleid = ?`, id))
	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM tblknowledgebaselinks WHERE articleid = ? AND categoryid = 7`, id))
	assert.Equal(t, 0, f.count(t, `SELECT COUNT(*) FROM tblknowledgebasetags WHERE articleid = ?`, id))
	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM tblknowledgebase WHERE id = ? AND title = 'v2' AND private = 0`, id))
}

func TestSaveArticleReplaceMissingRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{
		Title: "t", Content: "c", CategoryID: 5, Tags: "x", ReplaceID: 999,
	})
	assert.Equal(t, kberrors.KindNotFound, kberrors.KindOf(err))
	assert.Equal(t, 0, f.count(t, `SELECT COUNT(*) FROM tblknowledgebaselinks`))
	assert.Equal(t, 0, f.count(t, `SELECT COUNT(*) FROM tblknowledgebasetags`))
	assert.Equal(t, 1, f.count(t, `SELECT COUNT(*) FROM tblactivitylog WHERE description = ?`,
		"[AI KB Generator] Save error: KB article not found"))
}

func TestSaveArticleConvertsQueueEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("by ticket", func(t *testing.T) {
		f := newFixture(t)
		seedTicket(t, f.db, 100, "s", 0, 3)
		_, err := f.queue.EnqueueOnTicketClose(ctx, 100, enabledSettings())
		require.NoError(t, err)

		id, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{
			TicketID: 100, Title: "t", Content: "c", CategoryID: 5, Published: true,
		})
		require.NoError(t, err)

		entries, err := f.queue.List(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, models.QueueStatusConverted, entries[0].Status)
		require.NotNil(t, entries[0].KBArticleID)
		assert.Equal(t, id, *entries[0].KBArticleID)
		assert.Equal(t, []events.Type{events.TypeQueued, events.TypeConverted}, f.events.types())
	})

	t.Run("by queue id after dismiss", func(t *testing.T) {
		f := newFixture(t)
		seedTicket(t, f.db, 100, "s", 0, 3)
		_, err := f.queue.EnqueueOnTicketClose(ctx, 100, enabledSettings())
		require.NoError(t, err)
		entries, err := f.queue.List(ctx, 1)
		require.NoError(t, err)
		require.NoError(t, f.queue.Dismiss(ctx, entries[0].ID))

		_, err = f.kb.SaveArticle(ctx, models.SaveArticleInput{
			QueueID: entries[0].ID, Title: "t", Content: "c", CategoryID: 5,
		})
		require.NoError(t, err)

		stats, err := f.queue.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.QueueStats{Converted: 1}, stats)
	})

	t.Run("unqueued ticket still saves", func(t *testing.T) {
		f := newFixture(t)
		id, err := f.kb.SaveArticle(ctx, models.SaveArticleInput{
			TicketID: 77, Title: "t", Content: "c", CategoryID: 5,
		})
		require.NoError(t, err)
		assert.Positive(t, id)
	})
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.kb.CreateCategory(ctx, "  ", 0)
	assert.Equal(t, kberrors.KindValidation, kberrors.KindOf(err))

	id, err := f.kb.CreateCategory(ctx, "Email", -3)
	require.NoError(t, err)

	var cat models.KBCategory
	require.NoError(t, f.db.Get(&cat, `SELECT id, name, parentid, description FROM tblknowledgebasecats WHERE id = ?`, id))
	assert.Equal(t, "Email", cat.Name)
	assert.Equal(t, int64(0), cat.ParentID)
	assert.Equal(t, "", cat.Description)
}

func TestQueuePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seedTicket(t, f.db, 100, "s", 0, 3)
	_, err := f.queue.EnqueueOnTicketClose(ctx, 100, enabledSettings())
	require.NoError(t, err)
	_, err = f.kb.CreateCategory(ctx, "Zeta", 0)
	require.NoError(t, err)
	alpha, err := f.kb.CreateCategory(ctx, "Alpha", 0)
	require.NoError(t, err)
	_, err = f.kb.SaveArticle(ctx, models.SaveArticleInput{Title: "Guide", Content: "c", CategoryID: alpha})
	require.NoError(t, err)

	old := testNow.AddDate(0, 0, -40)
	_, err = f.queueRep.Insert(ctx, &models.QueueEntry{
		TicketID: 5, Status: models.QueueStatusPending, CreatedAt: old, UpdatedAt: old,
	})
	require.NoError(t, err)

	page, err := f.kb.QueuePage(ctx, enabledSettings())
	require.NoError(t, err)

	assert.Equal(t, int64(1), page.Cleaned)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, int64(100), page.Entries[0].TicketID)
	assert.Equal(t, models.QueueStats{Pending: 1}, page.Stats)
	require.Len(t, page.Categories, 2)
	assert.Equal(t, "Alpha", page.Categories[0].Name)
	require.Len(t, page.Articles, 1)
	assert.Equal(t, "Guide", page.Articles[0].Title)
	require.NotNil(t, page.Articles[0].CategoryID)
	assert.Equal(t, alpha, *page.Articles[0].CategoryID)
}
