package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"PixChat/entity"
)

// SessionEventHandler receives parsed events from visitor sockets.
type SessionEventHandler interface {
	HandleStart(sessionID string)
	HandleText(sessionID, text string)
	HandleButton(sessionID, buttonID string)
	HandleMediaEnded(sessionID string, messageID int64)
}

// Event represents an event pushed to clients.
type Event struct {
	Type string      `json:"type"` // "message", "typing", "typing_off", "controls", "sound"
	Data interface{} `json:"data,omitempty"`
}

type targetedEvent struct {
	sessionID string // "" = observers only
	event     *Event
}

// Hub maintains visitor sockets keyed by session id plus operator observer
// sockets that see every conversation live.
type Hub struct {
	sessions   map[string]map[*Client]bool
	observers  map[*Client]bool
	send       chan *targetedEvent
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    SessionEventHandler
	log        *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		observers:  make(map[*Client]bool),
		send:       make(chan *targetedEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the handler for incoming visitor events.
func (h *Hub) SetHandler(handler SessionEventHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.observer {
				h.observers[client] = true
			} else {
				if h.sessions[client.sessionID] == nil {
					h.sessions[client.sessionID] = make(map[*Client]bool)
				}
				h.sessions[client.sessionID][client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case te := <-h.send:
			data, err := json.Marshal(te.event)
			if err != nil {
				continue
			}
			h.mu.Lock()
			if te.sessionID != "" {
				for client := range h.sessions[te.sessionID] {
					h.push(client, data)
				}
			}
			for client := range h.observers {
				h.push(client, data)
			}
			h.mu.Unlock()
		}
	}
}

// push delivers to one client, dropping it when its buffer is full. Callers
// must hold the lock.
func (h *Hub) push(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.drop(client)
	}
}

// drop removes a client. Callers must hold the lock.
func (h *Hub) drop(client *Client) {
	if client.observer {
		if _, ok := h.observers[client]; ok {
			delete(h.observers, client)
			close(client.send)
		}
		return
	}
	if clients, ok := h.sessions[client.sessionID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)
		}
		if len(clients) == 0 {
			delete(h.sessions, client.sessionID)
		}
	}
}

// SendMessage pushes an appended chat message to the session's sockets and
// to all observers.
func (h *Hub) SendMessage(msg entity.ChatMessage) {
	h.send <- &targetedEvent{
		sessionID: msg.SessionID,
		event:     &Event{Type: "message", Data: msg},
	}
}

// SendTyping shows the composing/recording indicator for a session.
func (h *Hub) SendTyping(sessionID, indicator string) {
	h.send <- &targetedEvent{
		sessionID: sessionID,
		event: &Event{Type: "typing", Data: map[string]string{
			"session_id": sessionID,
			"indicator":  indicator,
		}},
	}
}

// SendTypingOff hides the indicator for a session.
func (h *Hub) SendTypingOff(sessionID string) {
	h.send <- &targetedEvent{
		sessionID: sessionID,
		event:     &Event{Type: "typing_off", Data: map[string]string{"session_id": sessionID}},
	}
}

// SendControls replaces the session's bottom control bar.
func (h *Hub) SendControls(sessionID string, c entity.Controls) {
	h.send <- &targetedEvent{
		sessionID: sessionID,
		event:     &Event{Type: "controls", Data: c},
	}
}

// SendSound fires the notification sound cue for a session.
func (h *Hub) SendSound(sessionID string) {
	h.send <- &targetedEvent{
		sessionID: sessionID,
		event:     &Event{Type: "sound"},
	}
}

// clientEvent represents an incoming WebSocket message from a visitor.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming visitor message.
func (h *Hub) HandleClientMessage(sessionID string, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		if h.log != nil {
			h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		}
		return
	}

	switch event.Type {
	case "start":
		h.handler.HandleStart(sessionID)

	case "text":
		var data struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return
		}
		h.handler.HandleText(sessionID, data.Text)

	case "button":
		var data struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return
		}
		if data.ID == "" {
			return
		}
		h.handler.HandleButton(sessionID, data.ID)

	case "media_ended":
		var data struct {
			MessageID int64 `json:"message_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return
		}
		if data.MessageID == 0 {
			return
		}
		h.handler.HandleMediaEnded(sessionID, data.MessageID)
	}
}
