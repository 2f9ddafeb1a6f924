// Package handler is the Telegram view glue: it routes commands and
// callbacks, hands queries to the turn orchestrator, and renders whatever
// ends up in the session state. No decision logic lives here.
package handler

import (
	"github.com/go-telegram/bot"
	"github.com/set-night/rankbot/internal/client"
	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot          *bot.Bot
	cfg          *config.Config
	sessions     *service.SessionService
	orchestrator *service.Orchestrator
	pipeline     *client.Client
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot          *bot.Bot
	Cfg          *config.Config
	Sessions     *service.SessionService
	Orchestrator *service.Orchestrator
	Pipeline     *client.Client
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:          deps.Bot,
		cfg:          deps.Cfg,
		sessions:     deps.Sessions,
		orchestrator: deps.Orchestrator,
		pipeline:     deps.Pipeline,
	}
}
