package handler

import "github.com/go-telegram/bot"

// Register wires all command and callback handlers.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNew)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sessions", bot.MatchTypePrefix, h.handleSessions)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/download", bot.MatchTypePrefix, h.handleDownload)

	// Clarification options
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, clarifyCallbackPrefix, bot.MatchTypePrefix, h.handleClarifyOption)

	// Session management callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "open_session_", bot.MatchTypePrefix, h.handleOpenSession)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "new_session", bot.MatchTypePrefix, h.handleNewSession)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delete_session_", bot.MatchTypePrefix, h.handleDeleteSession)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delete_all", bot.MatchTypePrefix, h.handleDeleteAllSessions)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "sessions_page_", bot.MatchTypePrefix, h.handleSessionsPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cur", bot.MatchTypeExact, h.handleNoop)
}
