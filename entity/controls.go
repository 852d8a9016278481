package entity

// Control bar modes shown under the conversation.
const (
	ControlsNone    = "none"
	ControlsInput   = "input"   // free-text input field
	ControlsButtons = "buttons" // one or more tappable buttons
	ControlsLink    = "link"    // external hand-off link
)

// ControlButton is a single tappable control.
type ControlButton struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Controls describes the bottom control bar the client should render for
// the current step: a text input, a button set, or an external link.
// Input reports whether the free-text field stays available alongside the
// mode-specific controls.
type Controls struct {
	Mode    string          `json:"mode"`
	Buttons []ControlButton `json:"buttons,omitempty"`
	LinkURL string          `json:"link_url,omitempty"`
	Label   string          `json:"label,omitempty"`
	Input   bool            `json:"input"`
}
