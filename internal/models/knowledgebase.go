package models

// KBCategory is a knowledge-base category of the host platform.
type KBCategory struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	ParentID    int64  `db:"parentid" json:"parentid"`
	Description string `db:"description" json:"description"`
}

// KBArticleSummary is an article joined to its category link, used to offer
// "replace existing article" targets.
type KBArticleSummary struct {
	ID         int64  `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	CategoryID *int64 `db:"categoryid" json:"categoryid"`
}

// GeneratedDraft is the AI proposal for an article. It is never stored;
// the operator edits it and submits a SaveArticleInput.
type GeneratedDraft struct {
	Title                 string  `json:"title"`
	Content               string  `json:"content"`
	Tags                  string  `json:"tags"`
	SuggestedCategoryID   *int64  `json:"suggested_category_id"`
	SuggestedCategoryName *string `json:"suggested_category_name"`
}

// SaveArticleInput is an operator's submission of a (possibly edited) draft.
type SaveArticleInput struct {
	TicketID   int64
	QueueID    int64
	Title      string
	Content    string
	CategoryID int64
	Tags       string
	ReplaceID  int64
	Published  bool
}
