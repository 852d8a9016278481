package session

import (
	"PixChat/entity"
	"PixChat/internal/ws"
)

// messenger implements chat.Messenger for one session: it owns the history
// append and mirrors every event to the websocket hub, which also fans the
// message out to operator observers. Bot emissions fire the notification
// sound cue first, fire-and-forget.
type messenger struct {
	sess *Session
	hub  *ws.Hub
}

func (m *messenger) sendBot(msg entity.ChatMessage) (entity.ChatMessage, error) {
	m.hub.SendSound(m.sess.ID)

	msg.Sender = entity.SenderBot
	msg.Status = entity.StatusSent
	appended := m.sess.appendMessage(msg)
	m.hub.SendMessage(appended)
	return appended, nil
}

func (m *messenger) SendText(text string) error {
	_, err := m.sendBot(entity.ChatMessage{Kind: entity.KindText, Text: text})
	return err
}

func (m *messenger) SendAudio(url string) (entity.ChatMessage, error) {
	return m.sendBot(entity.ChatMessage{Kind: entity.KindAudio, URL: url})
}

func (m *messenger) SendImage(url string) error {
	_, err := m.sendBot(entity.ChatMessage{Kind: entity.KindImage, URL: url})
	return err
}

func (m *messenger) SendVideo(url string) error {
	_, err := m.sendBot(entity.ChatMessage{Kind: entity.KindVideo, URL: url})
	return err
}

func (m *messenger) SendPaymentCode(charge entity.Charge) error {
	_, err := m.sendBot(entity.ChatMessage{
		Kind:       entity.KindPaymentCode,
		Code:       charge.Code,
		ValueCents: charge.AmountCents,
	})
	return err
}

func (m *messenger) RecordUserMessage(text string) error {
	appended := m.sess.appendMessage(entity.ChatMessage{
		Sender: entity.SenderUser,
		Kind:   entity.KindText,
		Text:   text,
		Status: entity.StatusRead,
	})
	m.hub.SendMessage(appended)
	return nil
}

func (m *messenger) ShowTyping(indicator string) error {
	m.hub.SendTyping(m.sess.ID, indicator)
	return nil
}

func (m *messenger) HideTyping() error {
	m.hub.SendTypingOff(m.sess.ID)
	return nil
}

func (m *messenger) ShowControls(c entity.Controls) error {
	m.hub.SendControls(m.sess.ID, c)
	return nil
}
