package handler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/rankbot/internal/config"
	tg "github.com/set-night/rankbot/internal/telegram"
)

func (h *Handler) handleSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendSessionsPage(ctx, b, update.Message.Chat.ID, 0, false, 0)
}

func (h *Handler) sendSessionsPage(ctx context.Context, b *bot.Bot, chatID int64, page int, edit bool, messageID int) {
	total, err := h.sessions.Count(ctx, chatID)
	if err != nil {
		slog.Error("count sessions", "error", err)
		return
	}

	totalPages := int(math.Ceil(float64(total) / float64(config.SessionsPerPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	if page >= totalPages {
		page = totalPages - 1
	}

	records, err := h.sessions.List(ctx, chatID, config.SessionsPerPage, page*config.SessionsPerPage)
	if err != nil {
		slog.Error("list sessions", "error", err)
		return
	}

	text := fmt.Sprintf("📂 Conversations (%d)", total)
	activeID := h.sessions.ArchiveID(chatID)

	var rows [][]models.InlineKeyboardButton
	for _, r := range records {
		label := r.Title
		if label == "" {
			label = r.Snippet
		}
		if label == "" {
			label = "📝 " + r.CreatedAt.Format("02.01 15:04")
		}
		if len(label) > 30 {
			label = label[:30] + "..."
		}
		if r.ID == activeID {
			label += " ✅"
		}
		rows = append(rows, tg.ButtonRow(
			tg.InlineButton(label, fmt.Sprintf("open_session_%d", r.ID)),
			tg.InlineButton("🗑", fmt.Sprintf("delete_session_%d", r.ID)),
		))
	}

	rows = append(rows, tg.ButtonRow(
		tg.InlineButton("➕ New", "new_session"),
		tg.InlineButton("🗑 Delete all", "delete_all"),
	))

	if totalPages > 1 {
		rows = append(rows, tg.PaginationRow(page, totalPages, "sessions_page"))
	}

	keyboard := tg.InlineKeyboard(rows...)

	if edit && messageID != 0 {
		b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:      chatID,
			MessageID:   messageID,
			Text:        text,
			ReplyMarkup: keyboard,
		})
	} else {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ReplyMarkup: keyboard,
		})
	}
}

func (h *Handler) handleSessionsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	page, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "sessions_page_"))
	if err != nil {
		return
	}
	h.sendSessionsPage(ctx, b, cb.Message.Message.Chat.ID, page, true, cb.Message.Message.ID)
}

func (h *Handler) handleOpenSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	archiveID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "open_session_"), 10, 64)
	if err != nil {
		return
	}

	sess, err := h.sessions.Open(ctx, chatID, archiveID)
	if err != nil {
		slog.Error("open session", "error", err, "archive_id", archiveID)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not open that conversation.",
		})
		return
	}

	title := sess.Title
	if title == "" {
		title = "conversation"
	}
	reply := fmt.Sprintf("📖 Reopened %q (%d messages). Send a follow-up question to continue.", title, len(sess.Messages))
	if table := sess.LastTable(); table != nil {
		tg.SendLongMessage(ctx, b, chatID, tg.RenderTable(table), nil)
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: reply})
}

func (h *Handler) handleNewSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	h.sessions.Reset(cb.Message.Message.Chat.ID)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: cb.Message.Message.Chat.ID,
		Text:   "🆕 Started a new conversation. What would you like to rank?",
	})
}

func (h *Handler) handleDeleteSession(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	archiveID, err := strconv.ParseInt(strings.TrimPrefix(cb.Data, "delete_session_"), 10, 64)
	if err != nil {
		return
	}

	if err := h.sessions.Delete(ctx, chatID, archiveID); err != nil {
		slog.Error("delete session", "error", err, "archive_id", archiveID)
		return
	}
	h.sendSessionsPage(ctx, b, chatID, 0, true, cb.Message.Message.ID)
}

func (h *Handler) handleDeleteAllSessions(ctx context.Context, b *bot.Bot, update *models.Update) {
	cb := update.CallbackQuery
	if cb == nil || cb.Message.Message == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cb.ID})

	chatID := cb.Message.Message.Chat.ID
	if err := h.sessions.DeleteAll(ctx, chatID); err != nil {
		slog.Error("delete all sessions", "error", err)
		return
	}
	h.sendSessionsPage(ctx, b, chatID, 0, true, cb.Message.Message.ID)
}
