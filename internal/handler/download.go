package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	tg "github.com/set-night/rankbot/internal/telegram"
)

// handleDownload offers export links for the current session's ranking
// table. The files are generated and served by the backend; the bot never
// proxies the body.
func (h *Handler) handleDownload(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID
	sess := h.sessions.Active(chatID)

	if sess.ID == "" || sess.LastTable() == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "📭 There is no ranking table to export yet. Ask for a ranking first.",
		})
		return
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "⬇️ Export the full ranking:",
		ReplyMarkup: h.downloadKeyboard(sess.ID),
	})
}

func (h *Handler) downloadKeyboard(sessionID string) *models.InlineKeyboardMarkup {
	return tg.InlineKeyboard(tg.ButtonRow(
		tg.URLButton("📄 CSV", h.pipeline.DownloadURL(sessionID, "csv")),
		tg.URLButton("📊 XLSX", h.pipeline.DownloadURL(sessionID, "xlsx")),
	))
}
