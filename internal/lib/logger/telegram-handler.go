package logger

import (
	"context"
	"fmt"
	"log/slog"
)

// AlertSender delivers a plain-text alert to the operator channel.
type AlertSender interface {
	SendMessage(msg string)
}

// TelegramHandler forwards log records at or above a minimum level to the
// operator Telegram chat while passing everything through to the wrapped
// handler. Delivery is fire-and-forget.
type TelegramHandler struct {
	next     slog.Handler
	sender   AlertSender
	minLevel slog.Level
}

// SetupTelegramHandler wraps the logger so records >= minLevel are mirrored
// to the operator chat.
func SetupTelegramHandler(log *slog.Logger, sender AlertSender, minLevel slog.Level) *slog.Logger {
	return slog.New(&TelegramHandler{
		next:     log.Handler(),
		sender:   sender,
		minLevel: minLevel,
	})
}

func (h *TelegramHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.minLevel && h.sender != nil {
		text := fmt.Sprintf("[%s] %s", r.Level.String(), r.Message)
		r.Attrs(func(a slog.Attr) bool {
			text += fmt.Sprintf("\n%s: %s", a.Key, a.Value.String())
			return true
		})
		go h.sender.SendMessage(text)
	}
	return h.next.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TelegramHandler{next: h.next.WithAttrs(attrs), sender: h.sender, minLevel: h.minLevel}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{next: h.next.WithGroup(name), sender: h.sender, minLevel: h.minLevel}
}
