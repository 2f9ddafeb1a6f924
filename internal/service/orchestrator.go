package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/domain"
)

// Pipeline is what the orchestrator needs from the remote backends.
type Pipeline interface {
	Crawl(ctx context.Context, query string) (*domain.CrawlArtifacts, error)
	Converse(ctx context.Context, sessionID, query string, art *domain.CrawlArtifacts) (*domain.ChatOutcome, error)
}

// TurnState tracks where a turn is in its lifecycle. A turn walks
// Idle → Crawling → Extracting → AwaitingChat and ends Resolved or
// AwaitingClarification; failures land on Resolved so nothing ever sticks in
// a non-terminal state.
type TurnState int

const (
	StateIdle TurnState = iota
	StateCrawling
	StateExtracting
	StateAwaitingChat
	StateResolved
	StateAwaitingClarification
)

func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCrawling:
		return "crawling"
	case StateExtracting:
		return "extracting"
	case StateAwaitingChat:
		return "awaiting_chat"
	case StateResolved:
		return "resolved"
	case StateAwaitingClarification:
		return "awaiting_clarification"
	}
	return "unknown"
}

// Turn is one user-query-to-outcome cycle. It owns no state beyond what it
// writes into the session before finishing.
type Turn struct {
	ID    string
	Query string
	State TurnState
}

// TurnObserver is notified after every state transition. May be nil.
type TurnObserver func(turn *Turn, sess *domain.Session)

// TurnResult is what the surface renders after a turn finishes.
type TurnResult struct {
	Turn     *Turn
	Resolved bool
	Reply    string
	Table    *domain.TableData
	Clarify  *domain.ClarificationRequest
	LowTrust bool
}

// Orchestrator sequences one turn: crawl, install artifacts, converse,
// reconcile, then resolve or await clarification. Callers must not run two
// turns against the same session concurrently.
type Orchestrator struct {
	pipeline     Pipeline
	crawlTimeout time.Duration
	chatTimeout  time.Duration
}

func NewOrchestrator(pipeline Pipeline, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		pipeline:     pipeline,
		crawlTimeout: cfg.CrawlTimeout,
		chatTimeout:  cfg.ChatTimeout,
	}
}

// Run executes one turn for the query. The user message is appended
// optimistically and any pending clarification is cancelled before the first
// network call. On failure the session gets exactly one error message and the
// typed error is returned for the surface to map.
func (o *Orchestrator) Run(ctx context.Context, sess *domain.Session, query string, observe TurnObserver) (*TurnResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	turn := &Turn{ID: uuid.NewString(), Query: query, State: StateIdle}
	log := slog.With("turn_id", turn.ID, "session_id", sess.ID)
	log.Info("turn started", "query", query)

	sess.Pending = nil
	sess.Append(domain.NewUserMessage(query))
	sess.Append(domain.ThinkingMessage())
	o.transition(turn, sess, StateCrawling, observe)

	crawlCtx, cancelCrawl := context.WithTimeout(ctx, o.crawlTimeout)
	defer cancelCrawl()
	art, err := o.pipeline.Crawl(crawlCtx, query)
	if err != nil {
		return nil, o.fail(turn, sess, observe, log, err)
	}

	// Fresh artifacts fully replace the previous ones.
	sess.Artifacts = art
	sess.Append(domain.NewSystemMessage(extractionStatus(art)))
	o.transition(turn, sess, StateExtracting, observe)
	log.Info("artifacts installed",
		"allowed_metrics", len(art.AllowedMetrics),
		"preview_rows", len(art.DatasetPreview),
		"low_trust", art.LowTrust,
	)

	o.transition(turn, sess, StateAwaitingChat, observe)
	chatCtx, cancelChat := context.WithTimeout(ctx, o.chatTimeout)
	defer cancelChat()
	out, err := o.pipeline.Converse(chatCtx, sess.ID, query, art)
	if err != nil {
		return nil, o.fail(turn, sess, observe, log, err)
	}

	sess.AdoptIdentity(out.SessionID, out.Title)
	if sess.Title == "" {
		sess.Title = defaultTitle(query)
	}
	sess.DropThinking()

	result := &TurnResult{Turn: turn, LowTrust: art.LowTrust}

	if out.Kind == domain.OutcomeClarify {
		reconcile(sess, out)
		req := &domain.ClarificationRequest{
			OriginalQuery: query,
			Prompt:        out.Prompt,
			// Selectable disambiguators come from what the crawl
			// discovered, not from the reasoning layer.
			Options: append([]string(nil), art.AllowedMetrics...),
		}
		sess.Pending = req
		result.Reply = out.Prompt
		result.Clarify = req
		o.transition(turn, sess, StateAwaitingClarification, observe)
		log.Info("turn awaiting clarification", "options", len(req.Options))
		return result, nil
	}

	reconcile(sess, out)
	result.Resolved = true
	result.Reply = out.Text
	if out.Kind == domain.OutcomeTable {
		result.Table = &domain.TableData{Columns: out.Columns, Rows: out.Rows}
	}
	o.transition(turn, sess, StateResolved, observe)
	log.Info("turn resolved", "outcome", string(out.Kind))
	return result, nil
}

// ResolveClarification starts a fresh turn from the selected option, with the
// query synthesized as "<original> by <option>".
func (o *Orchestrator) ResolveClarification(ctx context.Context, sess *domain.Session, option string, observe TurnObserver) (*TurnResult, error) {
	pending := sess.Pending
	if pending == nil {
		return nil, domain.ErrNoClarification
	}

	found := false
	for _, opt := range pending.Options {
		if opt == option {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOption, option)
	}

	query := pending.OriginalQuery + " by " + option
	return o.Run(ctx, sess, query, observe)
}

func (o *Orchestrator) transition(turn *Turn, sess *domain.Session, next TurnState, observe TurnObserver) {
	turn.State = next
	if observe != nil {
		observe(turn, sess)
	}
}

// fail commits the failure: placeholder dropped, one error message appended,
// turn parked on a terminal state.
func (o *Orchestrator) fail(turn *Turn, sess *domain.Session, observe TurnObserver, log *slog.Logger, err error) error {
	sess.DropThinking()
	sess.Append(domain.NewSystemMessage(UserFacingError(err)))
	o.transition(turn, sess, StateResolved, observe)
	log.Error("turn failed", "state", turn.State.String(), "error", err)
	return err
}

func extractionStatus(art *domain.CrawlArtifacts) string {
	return fmt.Sprintf("Crawl finished: %d preview rows, %d usable metrics. Extracting an answer…",
		len(art.DatasetPreview), len(art.AllowedMetrics))
}

// UserFacingError maps a turn failure to the text shown in the conversation.
func UserFacingError(err error) string {
	var netErr *domain.NetworkError
	if errors.As(err, &netErr) {
		return "Could not reach the ranking pipeline. Please try again."
	}
	var beErr *domain.BackendError
	if errors.As(err, &beErr) {
		return "The ranking pipeline returned an unexpected response. Please try again."
	}
	return "Something went wrong while processing the request."
}

func defaultTitle(query string) string {
	if len(query) <= config.TitleMaxLen {
		return query
	}
	return query[:config.TitleMaxLen-1] + "…"
}
