package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RateLimit returns middleware that drops updates from chats exceeding the
// per-minute budget. The window is in-memory: the bot is the only writer of
// its own session state, so there is nothing to coordinate across processes.
func RateLimit(perMinute int) bot.Middleware {
	var (
		mu      sync.Mutex
		windows = make(map[int64][]time.Time)
	)

	allow := func(chatID int64) bool {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		cutoff := now.Add(-time.Minute)

		recent := windows[chatID][:0]
		for _, t := range windows[chatID] {
			if t.After(cutoff) {
				recent = append(recent, t)
			}
		}
		if len(recent) >= perMinute {
			windows[chatID] = recent
			return false
		}
		windows[chatID] = append(recent, now)
		return true
	}

	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			if update.Message != nil {
				if !allow(update.Message.Chat.ID) {
					return
				}
			}
			next(ctx, b, update)
		}
	}
}
