package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Engine is the workflow orchestrator driving funnel sessions. It holds no
// per-session state of its own; the caller owns the SessionState and must
// serialize calls for a given session.
type Engine struct {
	workflows map[WorkflowID]Workflow
	log       *slog.Logger
}

// NewEngine creates a new flow engine.
func NewEngine(log *slog.Logger) *Engine {
	return &Engine{
		workflows: make(map[WorkflowID]Workflow),
		log:       log,
	}
}

// RegisterWorkflow adds a workflow to the engine.
func (e *Engine) RegisterWorkflow(w Workflow) {
	e.workflows[w.ID()] = w
	e.log.Info("flow engine: registered workflow", slog.String("workflow_id", string(w.ID())))
}

// StartWorkflow enters the workflow's initial step for a fresh session.
func (e *Engine) StartWorkflow(ctx context.Context, m Messenger, state *SessionState) error {
	w, ok := e.workflows[state.WorkflowID]
	if !ok {
		return fmt.Errorf("workflow not found: %s", state.WorkflowID)
	}

	state.CurrentStep = w.InitialStep()

	step, ok := w.GetStep(w.InitialStep())
	if !ok {
		return fmt.Errorf("initial step not found: %s", w.InitialStep())
	}

	e.log.Info("flow engine: starting workflow",
		slog.String("session_id", state.SessionID),
		slog.String("workflow_id", string(state.WorkflowID)),
	)

	result := step.Enter(ctx, m, state)
	return e.processResult(ctx, m, state, w, result)
}

// HandleText processes a free-text message from the client. Blank input is
// silently ignored: nothing is appended and the step does not advance.
func (e *Engine) HandleText(ctx context.Context, m Messenger, state *SessionState, text string) error {
	if strings.TrimSpace(text) == "" {
		e.log.Debug("flow engine: ignoring blank input", slog.String("session_id", state.SessionID))
		return nil
	}

	step, w, err := e.currentStep(state)
	if err != nil {
		return err
	}

	if err := m.RecordUserMessage(text); err != nil {
		return fmt.Errorf("recording user message: %w", err)
	}

	result := step.HandleInput(ctx, m, state, UserInput{Text: text})
	return e.processResult(ctx, m, state, w, result)
}

// HandleButton processes a control-bar button tap. The step decides whether
// and how the tap is recorded in the conversation history.
func (e *Engine) HandleButton(ctx context.Context, m Messenger, state *SessionState, buttonID string) error {
	step, w, err := e.currentStep(state)
	if err != nil {
		return err
	}

	result := step.HandleInput(ctx, m, state, UserInput{ButtonID: buttonID})
	return e.processResult(ctx, m, state, w, result)
}

// HandleMediaEnded processes a media-playback-ended signal for an emitted
// message, resuming a step suspended on autoplay.
func (e *Engine) HandleMediaEnded(ctx context.Context, m Messenger, state *SessionState, messageID int64) error {
	step, w, err := e.currentStep(state)
	if err != nil {
		return err
	}

	result := step.HandleInput(ctx, m, state, UserInput{MediaEndedID: messageID})
	return e.processResult(ctx, m, state, w, result)
}

func (e *Engine) currentStep(state *SessionState) (Step, Workflow, error) {
	w, ok := e.workflows[state.WorkflowID]
	if !ok {
		return nil, nil, fmt.Errorf("workflow not found: %s", state.WorkflowID)
	}

	step, ok := w.GetStep(state.CurrentStep)
	if !ok {
		return nil, nil, fmt.Errorf("step not found: %s", state.CurrentStep)
	}

	return step, w, nil
}

// processResult handles the result of a step handler: transitions, state
// merges, auto-transition chaining.
func (e *Engine) processResult(ctx context.Context, m Messenger, state *SessionState, w Workflow, result StepResult) error {
	if result.Error != nil {
		e.log.Error("flow engine: step error",
			slog.String("session_id", state.SessionID),
			slog.String("step_id", string(state.CurrentStep)),
			slog.String("error", result.Error.Error()),
		)
		return result.Error
	}

	if result.UpdateState != nil {
		state.MergeData(result.UpdateState)
	}
	state.UpdatedAt = time.Now()

	if result.Complete {
		e.log.Info("flow engine: workflow completed",
			slog.String("session_id", state.SessionID),
			slog.String("workflow_id", string(state.WorkflowID)),
		)
		return nil
	}

	// Transition to next step if specified, looping through auto-transitions
	const maxTransitions = 20
	for i := 0; result.NextStep != "" && result.NextStep != state.CurrentStep && i < maxTransitions; i++ {
		state.CurrentStep = result.NextStep

		step, ok := w.GetStep(result.NextStep)
		if !ok {
			return fmt.Errorf("next step not found: %s", result.NextStep)
		}

		e.log.Debug("flow engine: transitioning",
			slog.String("session_id", state.SessionID),
			slog.String("step_id", string(result.NextStep)),
		)

		result = step.Enter(ctx, m, state)
		if result.Error != nil {
			return result.Error
		}

		if result.UpdateState != nil {
			state.MergeData(result.UpdateState)
		}
		state.UpdatedAt = time.Now()

		if result.Complete {
			e.log.Info("flow engine: workflow completed",
				slog.String("session_id", state.SessionID),
				slog.String("workflow_id", string(state.WorkflowID)),
			)
			return nil
		}
	}

	return nil
}
