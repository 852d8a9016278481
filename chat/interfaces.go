package chat

import (
	"context"
	"time"

	"PixChat/entity"
)

// StepID is a unique identifier for a step within a workflow.
type StepID string

// WorkflowID is a unique identifier for a workflow.
type WorkflowID string

// StepResult represents the outcome of handling an event in a step.
type StepResult struct {
	NextStep    StepID
	UpdateState map[string]any
	Complete    bool
	Error       error
}

// UserInput represents a normalized event from the client.
type UserInput struct {
	Text         string // Free-text message
	ButtonID     string // Control-bar button tap
	MediaEndedID int64  // ID of an emitted media message whose playback finished
}

// Step defines the interface for a single workflow step.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Enter is called when the session enters this step.
	Enter(ctx context.Context, m Messenger, state *SessionState) StepResult

	// HandleInput processes user input (text, button tap, or media end).
	HandleInput(ctx context.Context, m Messenger, state *SessionState, input UserInput) StepResult
}

// Workflow defines the interface for a complete workflow.
type Workflow interface {
	// ID returns the unique identifier for this workflow.
	ID() WorkflowID

	// InitialStep returns the first step of the workflow.
	InitialStep() StepID

	// GetStep returns a step by its ID.
	GetStep(id StepID) (Step, bool)
}

// Messenger is the client UI adapter interface. One Messenger serves one
// session; the session owns the conversation history behind it.
type Messenger interface {
	SendText(text string) error
	SendAudio(url string) (entity.ChatMessage, error)
	SendImage(url string) error
	SendVideo(url string) error
	SendPaymentCode(charge entity.Charge) error
	RecordUserMessage(text string) error
	ShowTyping(indicator string) error
	HideTyping() error
	ShowControls(c entity.Controls) error
}

// Pauser performs the scripted delays between emissions. Abstracted so
// tests run without real sleeps.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration)
}
