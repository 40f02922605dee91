// Package generation calls the remote article generation endpoint and
// turns a ticket conversation into a draft KB article.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/goatkit/kbgen/internal/config"
	"github.com/goatkit/kbgen/internal/kberrors"
	"github.com/goatkit/kbgen/internal/metrics"
	"github.com/goatkit/kbgen/internal/models"
	"github.com/goatkit/kbgen/internal/repository"
	"github.com/goatkit/kbgen/internal/utils"
)

const (
	// DefaultTimeout bounds the single generation request.
	DefaultTimeout = 90 * time.Second

	// UntitledArticle is the title used when the response has none.
	UntitledArticle = "Untitled Article"

	maxResponseBytes = 8 << 20
)

// Operator-facing failure messages.
const (
	msgConnectFailed   = "Could not connect to Deploymance server. Please check your internet connection."
	msgUnreachable     = "Could not reach Deploymance server. Please try again later."
	msgHTMLResponse    = "Could not connect to Deploymance server. Please try again later."
	msgUnexpected      = "Unexpected response from Deploymance server."
	msgLicenseDefault  = "License validation failed"
	msgAPIDefault      = "Unknown error"
	msgUnsuccessful    = "API returned unsuccessful response"
	msgTicketNotFound  = "Ticket not found"
	msgInvalidTicketID = "Invalid ticket ID"
)

// CategoryLister lists the candidate KB categories.
type CategoryLister interface {
	ListCategories(ctx context.Context) ([]models.KBCategory, error)
}

// Client generates draft articles. It is safe for concurrent use.
type Client struct {
	tickets    repository.TicketRepository
	categories CategoryLister
	activity   repository.ActivityRepository
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithActivityLog mirrors notable steps into the host activity log.
func WithActivityLog(a repository.ActivityRepository) Option {
	return func(c *Client) { c.activity = a }
}

// WithMetrics records generation outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a generation client.
func NewClient(tickets repository.TicketRepository, categories CategoryLister, opts ...Option) *Client {
	c := &Client{
		tickets:    tickets,
		categories: categories,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate builds the ticket transcript, sends one request to the
// endpoint and returns the draft. Every failure is a *kberrors.Error.
func (c *Client) Generate(ctx context.Context, ticketID int64, settings config.AddonSettings) (*models.GeneratedDraft, error) {
	start := c.now()
	draft, err := c.generate(ctx, ticketID, settings)

	outcome := "success"
	if err != nil {
		outcome = kberrors.KindOf(err).String()
		c.logger.Error().Err(err).Int64("ticket_id", ticketID).Str("kind", outcome).Msg("article generation failed")
		c.logActivity(ctx, fmt.Sprintf("Error generating KB for ticket #%d: %s", ticketID, kberrors.MessageOf(err)))
	} else {
		c.logger.Info().Int64("ticket_id", ticketID).Str("title", draft.Title).Msg("article draft generated")
	}
	c.metrics.ObserveGeneration(outcome, c.now().Sub(start))

	return draft, err
}

func (c *Client) generate(ctx context.Context, ticketID int64, settings config.AddonSettings) (*models.GeneratedDraft, error) {
	const op = "generation.Generate"

	if ticketID <= 0 {
		return nil, kberrors.Validation(op, msgInvalidTicketID)
	}
	if err := settings.RequireGenerationKeys(); err != nil {
		return nil, err
	}
	domain, err := settings.Domain()
	if err != nil {
		return nil, err
	}

	c.logActivity(ctx, fmt.Sprintf("Generating KB article for ticket #%d", ticketID))

	ticket, err := c.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, kberrors.NotFound(op, msgTicketNotFound)
		}
		return nil, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	replies, err := c.tickets.ListReplies(ctx, ticketID)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	cats, err := c.categories.ListCategories(ctx)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.KindInternal, op, "", err)
	}

	req := Request{
		LicenseKey:   settings.LicenseKey,
		Domain:       domain,
		GeminiAPIKey: settings.GeminiAPIKey,
		GeminiModel:  settings.GeminiModel,
		Action:       ActionGenerateArticle,
		Context: RequestContext{
			TicketID:      ticket.ID,
			TicketSubject: ticket.Title,
			Conversation:  BuildTranscript(ticket, replies),
			KBCategories:  toCategories(cats),
		},
	}

	status, body, err := c.post(ctx, settings.Endpoint(), req)
	if err != nil {
		c.logger.Warn().Err(err).Int64("ticket_id", ticketID).Msg("generation endpoint unreachable")
		c.logActivity(ctx, "Connection error: "+err.Error())
		return nil, kberrors.Connectivity(op, msgConnectFailed, err)
	}
	c.logger.Debug().Int64("ticket_id", ticketID).Int("status", status).Int("bytes", len(body)).Msg("generation response received")

	payload, err := classify(status, body)
	if err != nil {
		return nil, err
	}

	return c.toDraft(payload, settings), nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload Request) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// classify maps a raw endpoint result to a draft payload or a classified
// error. The checks run in a fixed order; an HTML body is never parsed.
func classify(status int, body []byte) (*draftPayload, error) {
	const op = "generation.classify"

	if len(body) == 0 || status == 0 {
		return nil, kberrors.Connectivity(op, msgUnreachable, nil)
	}

	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("<")) {
		return nil, kberrors.Connectivity(op, msgHTMLResponse,
			fmt.Errorf("endpoint returned markup with status %d", status))
	}

	if !json.Valid(trimmed) {
		return nil, kberrors.Protocol(op, msgUnexpected, errors.New("response is not valid JSON"))
	}

	// a valid non-object body decodes to an empty envelope
	var env envelope
	if trimmed[0] == '{' {
		_ = json.Unmarshal(trimmed, &env)
	}

	if status == http.StatusUnauthorized {
		return nil, kberrors.License(op, "License Error: "+env.Error.Or(msgLicenseDefault))
	}
	if status != http.StatusOK {
		return nil, kberrors.API(op, "API Error: "+env.Error.Or(msgAPIDefault))
	}
	if !env.Success {
		return nil, kberrors.API(op, env.Error.Or(msgUnsuccessful))
	}

	source := trimmed
	if data := bytes.TrimSpace(env.Data); len(data) > 0 && data[0] == '{' {
		source = data
	}

	var p draftPayload
	if err := json.Unmarshal(source, &p); err != nil {
		return nil, kberrors.Protocol(op, msgUnexpected, err)
	}
	return &p, nil
}

func (c *Client) toDraft(p *draftPayload, settings config.AddonSettings) *models.GeneratedDraft {
	content := p.Content.Or("")
	if settings.RenderMarkdown && utils.IsMarkdown(content) {
		content = utils.MarkdownToHTML(content)
	}

	return &models.GeneratedDraft{
		Title:                 p.Title.Or(UntitledArticle),
		Content:               content,
		Tags:                  p.Tags.Or(""),
		SuggestedCategoryID:   p.SuggestedCategoryID.Ptr(),
		SuggestedCategoryName: p.SuggestedCategoryName.Ptr(),
	}
}

func (c *Client) logActivity(ctx context.Context, msg string) {
	if c.activity == nil {
		return
	}
	if err := c.activity.Log(ctx, c.now(), msg); err != nil {
		c.logger.Warn().Err(err).Msg("activity log write failed")
	}
}
