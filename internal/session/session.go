package session

import (
	"context"
	"sync"
	"time"

	"PixChat/chat"
	"PixChat/entity"
)

type eventKind int

const (
	evStart eventKind = iota
	evText
	evButton
	evMediaEnded
)

type event struct {
	kind      eventKind
	text      string
	buttonID  string
	messageID int64
}

// Session is one visitor's conversation: the flow state, the append-only
// history, and a serialized inbox consumed by a single worker goroutine.
// That worker is the only goroutine that touches State, so step handlers
// need no locking.
type Session struct {
	ID        string
	State     *chat.SessionState
	StartedAt time.Time

	mu           sync.Mutex
	history      []entity.ChatMessage
	nextMsgID    int64
	lastActivity time.Time
	started      bool

	// Summary mirror of State for readers outside the worker. State itself
	// is worker-owned and must never be read under this lock.
	currentStep chat.StepID
	userName    string
	city        string

	inbox  chan event
	cancel context.CancelFunc
}

// deliver enqueues an event without blocking. Events arriving while the
// worker is still inside a step are dropped — the UI equivalent of the
// triggering control being disabled while an operation is in progress.
func (s *Session) deliver(ev event) bool {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()

	select {
	case s.inbox <- ev:
		return true
	default:
		return false
	}
}

// appendMessage adds a message to the history with the next monotonic id.
func (s *Session) appendMessage(msg entity.ChatMessage) entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextMsgID++
	msg.ID = s.nextMsgID
	msg.SessionID = s.ID
	now := time.Now()
	msg.CreatedAt = now
	msg.Timestamp = now.Format("15:04")
	s.history = append(s.history, msg)
	s.lastActivity = now

	return msg
}

// History returns a copy of the conversation history.
func (s *Session) History() []entity.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.ChatMessage, len(s.history))
	copy(out, s.history)
	return out
}

// syncSummary refreshes the mirrored summary fields from State. Only the
// worker goroutine (or the creator, before the worker starts) may call
// this, since it reads State without synchronization.
func (s *Session) syncSummary() {
	step := s.State.CurrentStep
	name := s.State.GetString(chat.StateKeyUserName)
	city := s.State.GetString(chat.StateKeyCity)

	s.mu.Lock()
	s.currentStep = step
	s.userName = name
	s.city = city
	s.mu.Unlock()
}

// Info returns the operator-facing summary. Reads only the mirrored
// fields, never State, so it is safe from any goroutine.
func (s *Session) Info() entity.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return entity.SessionInfo{
		ID:           s.ID,
		CurrentStep:  string(s.currentStep),
		UserName:     s.userName,
		City:         s.city,
		MessageCount: len(s.history),
		StartedAt:    s.StartedAt,
		LastActivity: s.lastActivity,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// run consumes the inbox until the session context is cancelled.
func (s *Session) run(ctx context.Context, m *Manager) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.inbox:
			m.dispatch(ctx, s, ev)
		}
	}
}
