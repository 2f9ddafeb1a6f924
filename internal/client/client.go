// Package client wraps the two ranking pipeline backends: the crawl service
// (POST /crawl) and the chat/reasoning service (POST /chat/web, POST /start,
// POST /chat/:id/reply). Calls have server-side effects, so nothing here
// retries. Transport failures surface as *domain.NetworkError; responses
// missing required fields fail closed as *domain.BackendError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/domain"
)

const modeClarificationOnly = "CLARIFICATION_ONLY"

type Client struct {
	crawlBaseURL string
	chatBaseURL  string
	httpClient   *http.Client
}

func New(cfg *config.Config) *Client {
	return &Client{
		crawlBaseURL: cfg.CrawlBaseURL,
		chatBaseURL:  cfg.ChatBaseURL,
		// Timeouts are bound per call by the orchestrator's contexts.
		httpClient: &http.Client{},
	}
}

// Crawl runs web ingestion for the query and returns fresh artifacts.
func (c *Client) Crawl(ctx context.Context, query string) (*domain.CrawlArtifacts, error) {
	var resp crawlResponse
	if err := c.post(ctx, "crawl", c.crawlBaseURL+"/crawl", crawlRequest{Query: query}, &resp); err != nil {
		return nil, err
	}

	if resp.KnowledgeIndex == nil {
		return nil, &domain.BackendError{Op: "crawl", Reason: "missing knowledge_index"}
	}
	if resp.LowTrustPresent == nil {
		return nil, &domain.BackendError{Op: "crawl", Reason: "missing low_trust_present"}
	}

	art := &domain.CrawlArtifacts{
		KnowledgeIndex: resp.KnowledgeIndex,
		AllowedMetrics: resp.AllowedMetrics,
		BlockedMetrics: resp.BlockedMetrics,
		DatasetPreview: resp.DatasetPreview,
		LowTrust:       *resp.LowTrustPresent,
	}
	if art.AllowedMetrics == nil {
		art.AllowedMetrics = []string{}
	}
	if art.BlockedMetrics == nil {
		art.BlockedMetrics = []string{}
	}
	if art.DatasetPreview == nil {
		art.DatasetPreview = []map[string]any{}
	}
	return art, nil
}

// Converse runs one chat exchange against the reasoning backend. /chat/web
// decides the mode for every turn; clarification short-circuits without
// touching the chat store, otherwise the turn lands on /start (no session id
// yet, response must carry the assigned chat_id) or /chat/:id/reply.
func (c *Client) Converse(ctx context.Context, sessionID, query string, art *domain.CrawlArtifacts) (*domain.ChatOutcome, error) {
	var web chatWebResponse
	req := chatWebRequest{
		UserQuery:       query,
		KnowledgeIndex:  art.KnowledgeIndex,
		AllowedMetrics:  art.AllowedMetrics,
		BlockedMetrics:  art.BlockedMetrics,
		LowTrustPresent: art.LowTrust,
		DatasetPreview:  art.DatasetPreview,
	}
	if err := c.post(ctx, "chat/web", c.chatBaseURL+"/chat/web", req, &web); err != nil {
		return nil, err
	}
	if web.Mode == "" {
		return nil, &domain.BackendError{Op: "chat/web", Reason: "missing mode"}
	}

	if web.Mode == modeClarificationOnly {
		return &domain.ChatOutcome{Kind: domain.OutcomeClarify, Prompt: web.Response}, nil
	}

	if sessionID == "" {
		return c.start(ctx, query)
	}
	return c.reply(ctx, sessionID, query)
}

func (c *Client) start(ctx context.Context, query string) (*domain.ChatOutcome, error) {
	var resp startResponse
	if err := c.post(ctx, "start", c.chatBaseURL+"/start", startRequest{Message: query}, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &domain.BackendError{Op: "start", Reason: backendReason(resp.Error)}
	}
	if resp.ChatID == "" {
		return nil, &domain.BackendError{Op: "start", Reason: "missing chat_id"}
	}

	return &domain.ChatOutcome{
		Kind:      domain.OutcomeAnswer,
		Text:      resp.Bot,
		SessionID: resp.ChatID,
		Title:     resp.Title,
		History:   toHistory(resp.Messages),
	}, nil
}

func (c *Client) reply(ctx context.Context, sessionID, query string) (*domain.ChatOutcome, error) {
	u := c.chatBaseURL + "/chat/" + url.PathEscape(sessionID) + "/reply"

	var resp replyResponse
	if err := c.post(ctx, "reply", u, replyRequest{Message: query}, &resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &domain.BackendError{Op: "reply", Reason: backendReason(resp.Error)}
	}

	out := &domain.ChatOutcome{
		Kind:    domain.OutcomeAnswer,
		Text:    resp.BotText,
		History: toHistory(resp.Messages),
	}
	if len(resp.Columns) > 0 && len(resp.Rows) > 0 {
		out.Kind = domain.OutcomeTable
		out.Columns = resp.Columns
		out.Rows = resp.Rows
	}
	return out, nil
}

// DownloadURL builds the table export link for a backend chat. The file is
// served by the backend; the bot only hands the link out.
func (c *Client) DownloadURL(sessionID, format string) string {
	return fmt.Sprintf("%s/chat/%s/download?format=%s", c.chatBaseURL, url.PathEscape(sessionID), url.QueryEscape(format))
}

func (c *Client) post(ctx context.Context, op, u string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &domain.BackendError{Op: op, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.BackendError{Op: op, Reason: "invalid json"}
	}
	return nil
}

func backendReason(errText string) string {
	if errText == "" {
		return "ok=false"
	}
	return errText
}
