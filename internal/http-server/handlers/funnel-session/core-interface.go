package funnelsession

import (
	"context"

	"PixChat/entity"
	"PixChat/internal/session"
)

// Core defines the session operations the HTTP layer needs.
type Core interface {
	StartSession(ctx context.Context, remoteIP string) *session.Session
	History(id string) ([]entity.ChatMessage, bool)
	SessionExists(id string) bool
	Sessions() []entity.SessionInfo

	HandleStart(sessionID string)
	HandleText(sessionID, text string)
	HandleButton(sessionID, buttonID string)
	HandleMediaEnded(sessionID string, messageID int64)
}
