package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/rankbot/internal/config"
	"github.com/set-night/rankbot/internal/domain"
	"github.com/set-night/rankbot/internal/service"
	tg "github.com/set-night/rankbot/internal/telegram"
)

// HandleTextPrivate treats any non-command private text as a ranking query
// and runs one full turn against the pipeline.
func (h *Handler) HandleTextPrivate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	msg := update.Message
	if strings.HasPrefix(msg.Text, "/") {
		return
	}

	chatID := msg.Chat.ID
	query := strings.TrimSpace(msg.Text)
	if query == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "✍️ Please send a text query, e.g. \"rank top universities in Europe\".",
		})
		return
	}

	h.runTurn(ctx, b, chatID, func(ctx context.Context, observe service.TurnObserver) (*service.TurnResult, error) {
		sess := h.sessions.Active(chatID)
		return h.orchestrator.Run(ctx, sess, query, observe)
	})
}

// runTurn executes one turn under the advisory per-chat lock and renders the
// result. The in-session thinking placeholder surfaces here as a status
// message that tracks the turn's progress, edited into the error text on
// failure and deleted on success, plus a typing ticker for the whole turn.
func (h *Handler) runTurn(ctx context.Context, b *bot.Bot, chatID int64, run func(context.Context, service.TurnObserver) (*service.TurnResult, error)) {
	if !h.sessions.TryBegin(chatID) {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "⏳ Please wait for the previous request to finish.",
		})
		return
	}
	defer h.sessions.End(chatID)

	stopTyping := tg.StartTyping(ctx, b, chatID, config.TypingInterval)
	defer stopTyping()

	statusMsg, _ := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🔎 Crawling the web for relevant data…",
	})

	observe := func(turn *service.Turn, sess *domain.Session) {
		if statusMsg == nil || turn.State != service.StateExtracting {
			return
		}
		if sess.Artifacts == nil {
			return
		}
		tg.EditMessage(ctx, b, chatID, statusMsg.ID, fmt.Sprintf(
			"📊 Crawl finished: %d preview rows, %d usable metrics. Reasoning…",
			len(sess.Artifacts.DatasetPreview), len(sess.Artifacts.AllowedMetrics),
		))
	}

	result, err := run(ctx, observe)
	if err != nil {
		slog.Error("turn failed", "error", err, "chat_id", chatID)
		errText := "❌ " + service.UserFacingError(err)
		if statusMsg != nil {
			tg.EditMessage(ctx, b, chatID, statusMsg.ID, errText)
		} else {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: errText})
		}
		return
	}

	if statusMsg != nil {
		b.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: statusMsg.ID,
		})
	}

	sess := h.sessions.Active(chatID)
	h.sessions.Archive(ctx, chatID, sess)
	h.renderResult(ctx, b, chatID, sess, result)
}

// renderResult sends the turn's outcome: the narrative reply, then the table
// as a separate message, then either clarification buttons or download
// buttons depending on how the turn ended.
func (h *Handler) renderResult(ctx context.Context, b *bot.Bot, chatID int64, sess *domain.Session, result *service.TurnResult) {
	reply := tg.CleanText(result.Reply)
	if result.LowTrust && result.Resolved && reply != "" {
		reply += "\n\n⚠️ Results are based on web-sourced data and may be incomplete."
	}

	if result.Clarify != nil {
		options := result.Clarify.Options
		if len(options) > config.MaxClarifyOptions {
			options = options[:config.MaxClarifyOptions]
		}
		var markup models.ReplyMarkup
		if len(options) > 0 {
			markup = tg.InlineKeyboard(tg.OptionRows(options, clarifyCallbackPrefix)...)
		}
		if reply == "" {
			reply = "How should I build this ranking?"
		}
		tg.SendLongMessage(ctx, b, chatID, reply, markup)
		return
	}

	if reply != "" {
		tg.SendLongMessage(ctx, b, chatID, reply, nil)
	}

	if result.Table != nil {
		var markup models.ReplyMarkup
		if sess.ID != "" {
			markup = h.downloadKeyboard(sess.ID)
		}
		tg.SendLongMessage(ctx, b, chatID, tg.RenderTable(result.Table), markup)
	} else if reply == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "🤷 The pipeline returned an empty answer. Try rephrasing the query.",
		})
	}
}
