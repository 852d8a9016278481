package gpt

import (
	"PixChat/internal/config"
	"PixChat/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// historyWindow is how many prior exchanges are replayed to the model per
// session.
const historyWindow = 10

const defaultPersona = "Você é a Lara, atendente carinhosa de um chat em português. " +
	"Responda de forma curta, calorosa e informal. Nunca saia do personagem."

// Persona generates free-chat replies in the scripted character's voice.
// Conversation memory is per session and in-memory only.
type Persona struct {
	client *openai.Client
	model  string
	prompt string
	log    *slog.Logger

	mu       sync.Mutex
	sessions map[string][]openai.ChatCompletionMessage
}

func NewPersona(conf *config.Config, logger *slog.Logger) *Persona {
	if conf.OpenAI.ApiKey == "" {
		return nil
	}

	prompt := conf.OpenAI.Persona
	if prompt == "" {
		prompt = defaultPersona
	}

	return &Persona{
		client:   openai.NewClient(conf.OpenAI.ApiKey),
		model:    conf.OpenAI.Model,
		prompt:   prompt,
		log:      logger.With(sl.Module("persona")),
		sessions: make(map[string][]openai.ChatCompletionMessage),
	}
}

// Reply produces the next bot line for a free-chat message. The session's
// recent history is replayed so the character stays consistent.
func (p *Persona) Reply(ctx context.Context, sessionID, text string) (string, error) {
	p.mu.Lock()
	history := append([]openai.ChatCompletionMessage(nil), p.sessions[sessionID]...)
	p.mu.Unlock()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: p.prompt,
	})
	messages = append(messages, history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content

	p.mu.Lock()
	turns := append(p.sessions[sessionID],
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	)
	if len(turns) > historyWindow*2 {
		turns = turns[len(turns)-historyWindow*2:]
	}
	p.sessions[sessionID] = turns
	p.mu.Unlock()

	p.log.With(
		slog.String("session_id", sessionID),
	).Debug("free chat reply generated")

	return reply, nil
}

// Forget drops the stored history for a finished session.
func (p *Persona) Forget(sessionID string) {
	p.mu.Lock()
	delete(p.sessions, sessionID)
	p.mu.Unlock()
}
