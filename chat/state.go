package chat

import "time"

// Well-known state data keys shared between the session layer (which seeds
// them) and the workflow steps (which read and update them).
const (
	StateKeyCity     = "city"
	StateKeyUserName = "user_name"
)

// SessionState represents the workflow state for one visitor session. It is
// owned and mutated exclusively by that session's worker goroutine and is
// never persisted; a page reload starts a fresh session.
type SessionState struct {
	SessionID   string         `json:"session_id"`
	WorkflowID  WorkflowID     `json:"workflow_id"`
	CurrentStep StepID         `json:"current_step"`
	Data        map[string]any `json:"data"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewSessionState creates a new SessionState with default values.
func NewSessionState(sessionID string, workflowID WorkflowID, initialStep StepID) *SessionState {
	return &SessionState{
		SessionID:   sessionID,
		WorkflowID:  workflowID,
		CurrentStep: initialStep,
		Data:        make(map[string]any),
		UpdatedAt:   time.Now(),
	}
}

// GetString retrieves a string value from the state data.
func (s *SessionState) GetString(key string) string {
	if v, ok := s.Data[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// GetInt retrieves an integer value from the state data.
func (s *SessionState) GetInt(key string) int {
	if v, ok := s.Data[key]; ok {
		switch val := v.(type) {
		case int:
			return val
		case int32:
			return int(val)
		case int64:
			return int(val)
		case float64:
			return int(val)
		}
	}
	return 0
}

// GetInt64 retrieves a 64-bit integer value from the state data.
func (s *SessionState) GetInt64(key string) int64 {
	if v, ok := s.Data[key]; ok {
		switch val := v.(type) {
		case int64:
			return val
		case int:
			return int64(val)
		case int32:
			return int64(val)
		case float64:
			return int64(val)
		}
	}
	return 0
}

// GetBool retrieves a boolean value from the state data.
func (s *SessionState) GetBool(key string) bool {
	if v, ok := s.Data[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Set stores a value in the state data.
func (s *SessionState) Set(key string, value any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	s.Data[key] = value
}

// Delete removes a value from the state data.
func (s *SessionState) Delete(key string) {
	delete(s.Data, key)
}

// MergeData merges additional data into the state.
func (s *SessionState) MergeData(data map[string]any) {
	if s.Data == nil {
		s.Data = make(map[string]any)
	}
	for k, v := range data {
		s.Data[k] = v
	}
}
