package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"PixChat/chat"
	"PixChat/entity"
	"PixChat/internal/config"
	"PixChat/internal/lib/sl"
	"PixChat/internal/ws"
)

// CityResolver resolves a visitor IP to a city for the personalized
// welcome. May be absent.
type CityResolver interface {
	CityByIP(ctx context.Context, ip string) string
}

// Manager is the in-memory registry of live funnel sessions. Sessions are
// never persisted; an idle session is reaped and its state discarded.
type Manager struct {
	engine     *chat.Engine
	hub        *ws.Hub
	geo        CityResolver
	workflowID chat.WorkflowID
	ttl        time.Duration
	log        *slog.Logger

	onClose func(sessionID string)

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(conf *config.Config, engine *chat.Engine, hub *ws.Hub, geo CityResolver, workflowID chat.WorkflowID, log *slog.Logger) *Manager {
	return &Manager{
		engine:     engine,
		hub:        hub,
		geo:        geo,
		workflowID: workflowID,
		ttl:        time.Duration(conf.Session.TTLMinutes) * time.Minute,
		log:        log.With(sl.Module("session manager")),
		sessions:   make(map[string]*Session),
	}
}

// SetCloseListener sets a hook invoked when a session is discarded.
func (m *Manager) SetCloseListener(fn func(sessionID string)) {
	m.onClose = fn
}

// StartSession creates a fresh session for a visitor and starts its worker.
// The scripted flow itself begins when the client sends the start event.
func (m *Manager) StartSession(ctx context.Context, remoteIP string) *Session {
	id := uuid.NewString()

	now := time.Now()
	sess := &Session{
		ID:           id,
		State:        chat.NewSessionState(id, m.workflowID, ""),
		StartedAt:    now,
		lastActivity: now,
		inbox:        make(chan event, 1),
	}

	if m.geo != nil && remoteIP != "" {
		if city := m.geo.CityByIP(ctx, remoteIP); city != "" {
			sess.State.Set(chat.StateKeyCity, city)
		}
	}

	sess.syncSummary()

	workerCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	go sess.run(workerCtx, m)

	m.log.Info("session started",
		slog.String("session_id", id),
		slog.String("remote_ip", remoteIP),
		slog.String("city", sess.State.GetString(chat.StateKeyCity)),
	)

	return sess
}

// Get returns a session by id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// SessionExists reports whether a session id belongs to a live session.
func (m *Manager) SessionExists(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// History returns a copy of a session's conversation history.
func (m *Manager) History(id string) ([]entity.ChatMessage, bool) {
	sess, ok := m.Get(id)
	if !ok {
		return nil, false
	}
	return sess.History(), true
}

// Sessions returns operator-facing summaries of all live sessions.
func (m *Manager) Sessions() []entity.SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]entity.SessionInfo, 0, len(m.sessions))
	for _, sess := range m.sessions {
		infos = append(infos, sess.Info())
	}
	return infos
}

// HandleStart begins the scripted flow for a session (the visitor's
// "listen now" tap).
func (m *Manager) HandleStart(sessionID string) {
	m.enqueue(sessionID, event{kind: evStart})
}

// HandleText feeds a visitor text message into the session's worker.
func (m *Manager) HandleText(sessionID, text string) {
	m.enqueue(sessionID, event{kind: evText, text: text})
}

// HandleButton feeds a control-bar tap into the session's worker.
func (m *Manager) HandleButton(sessionID, buttonID string) {
	m.enqueue(sessionID, event{kind: evButton, buttonID: buttonID})
}

// HandleMediaEnded feeds a playback-ended signal into the session's worker.
func (m *Manager) HandleMediaEnded(sessionID string, messageID int64) {
	m.enqueue(sessionID, event{kind: evMediaEnded, messageID: messageID})
}

func (m *Manager) enqueue(sessionID string, ev event) {
	sess, ok := m.Get(sessionID)
	if !ok {
		m.log.Debug("event for unknown session", slog.String("session_id", sessionID))
		return
	}
	if !sess.deliver(ev) {
		m.log.Debug("session busy, dropping event", slog.String("session_id", sessionID))
	}
}

// dispatch runs one event through the flow engine on the session's worker
// goroutine.
func (m *Manager) dispatch(ctx context.Context, sess *Session, ev event) {
	msgr := &messenger{sess: sess, hub: m.hub}

	var err error
	switch ev.kind {
	case evStart:
		sess.mu.Lock()
		if sess.started {
			sess.mu.Unlock()
			return
		}
		sess.started = true
		sess.mu.Unlock()
		err = m.engine.StartWorkflow(ctx, msgr, sess.State)
	case evText:
		err = m.engine.HandleText(ctx, msgr, sess.State, ev.text)
	case evButton:
		err = m.engine.HandleButton(ctx, msgr, sess.State, ev.buttonID)
	case evMediaEnded:
		err = m.engine.HandleMediaEnded(ctx, msgr, sess.State, ev.messageID)
	}

	if err != nil {
		m.log.Error("dispatch event",
			sl.Err(err),
			slog.String("session_id", sess.ID),
			slog.String("step_id", string(sess.State.CurrentStep)),
		)
	}

	sess.syncSummary()
}

// Close discards a session and stops its worker.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	sess.cancel()
	if m.onClose != nil {
		m.onClose(id)
	}
	m.log.Info("session closed", slog.String("session_id", id))
}

// Run reaps idle sessions until ctx is cancelled. Should be called in a
// goroutine.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.ttl)

			m.mu.RLock()
			var expired []string
			for id, sess := range m.sessions {
				if sess.idleSince().Before(cutoff) {
					expired = append(expired, id)
				}
			}
			m.mu.RUnlock()

			for _, id := range expired {
				m.Close(id)
			}
		}
	}
}
