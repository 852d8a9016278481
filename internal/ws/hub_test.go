package ws

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordedEvent struct {
	kind      string
	sessionID string
	text      string
	buttonID  string
	messageID int64
}

type recordingHandler struct {
	events []recordedEvent
}

func (r *recordingHandler) HandleStart(sessionID string) {
	r.events = append(r.events, recordedEvent{kind: "start", sessionID: sessionID})
}
func (r *recordingHandler) HandleText(sessionID, text string) {
	r.events = append(r.events, recordedEvent{kind: "text", sessionID: sessionID, text: text})
}
func (r *recordingHandler) HandleButton(sessionID, buttonID string) {
	r.events = append(r.events, recordedEvent{kind: "button", sessionID: sessionID, buttonID: buttonID})
}
func (r *recordingHandler) HandleMediaEnded(sessionID string, messageID int64) {
	r.events = append(r.events, recordedEvent{kind: "media_ended", sessionID: sessionID, messageID: messageID})
}

func newTestHub() (*Hub, *recordingHandler) {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := &recordingHandler{}
	h.SetHandler(handler)
	return h, handler
}

func TestHandleClientMessageStart(t *testing.T) {
	h, handler := newTestHub()
	h.HandleClientMessage("s1", []byte(`{"type":"start"}`))

	assert.Equal(t, []recordedEvent{{kind: "start", sessionID: "s1"}}, handler.events)
}

func TestHandleClientMessageText(t *testing.T) {
	h, handler := newTestHub()
	h.HandleClientMessage("s1", []byte(`{"type":"text","data":{"text":"oi"}}`))

	assert.Equal(t, []recordedEvent{{kind: "text", sessionID: "s1", text: "oi"}}, handler.events)
}

func TestHandleClientMessageButton(t *testing.T) {
	h, handler := newTestHub()
	h.HandleClientMessage("s1", []byte(`{"type":"button","data":{"id":"quero"}}`))

	assert.Equal(t, []recordedEvent{{kind: "button", sessionID: "s1", buttonID: "quero"}}, handler.events)
}

func TestHandleClientMessageMediaEnded(t *testing.T) {
	h, handler := newTestHub()
	h.HandleClientMessage("s1", []byte(`{"type":"media_ended","data":{"message_id":42}}`))

	assert.Equal(t, []recordedEvent{{kind: "media_ended", sessionID: "s1", messageID: 42}}, handler.events)
}

func TestHandleClientMessageInvalid(t *testing.T) {
	h, handler := newTestHub()

	h.HandleClientMessage("s1", []byte(`not json`))
	h.HandleClientMessage("s1", []byte(`{"type":"unknown"}`))
	h.HandleClientMessage("s1", []byte(`{"type":"button","data":{"id":""}}`))
	h.HandleClientMessage("s1", []byte(`{"type":"media_ended","data":{"message_id":0}}`))

	assert.Empty(t, handler.events)
}

func TestHandleClientMessageWithoutHandler(t *testing.T) {
	h := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	// Must not panic before a handler is attached.
	h.HandleClientMessage("s1", []byte(`{"type":"start"}`))
}
