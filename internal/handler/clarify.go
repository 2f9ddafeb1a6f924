package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/rankbot/internal/service"
)

const clarifyCallbackPrefix = "clar_"

// handleClarifyOption resolves a pending clarification: the selected metric
// is appended to the original query and a fresh turn runs with the
// synthesized query.
func (h *Handler) handleClarifyOption(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}

	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	sess := h.sessions.Active(chatID)

	pending := sess.Pending
	if pending == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "This clarification is no longer active. Send a new query instead.",
		})
		return
	}

	idx, err := strconv.Atoi(strings.TrimPrefix(cb.Data, clarifyCallbackPrefix))
	if err != nil || idx < 0 || idx >= len(pending.Options) {
		return
	}
	option := pending.Options[idx]

	// Drop the buttons so the choice cannot be made twice.
	b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:    chatID,
		MessageID: cb.Message.Message.ID,
	})

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "▶️ Ranking by " + option + "…",
	})

	h.runTurn(ctx, b, chatID, func(ctx context.Context, observe service.TurnObserver) (*service.TurnResult, error) {
		return h.orchestrator.ResolveClarification(ctx, h.sessions.Active(chatID), option, observe)
	})
}
