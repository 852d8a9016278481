package payment

import (
	"encoding/json"
)

// statusPaid is the only provider status literal that verifies a charge.
const statusPaid = "paid"

// Payload is the provider's transaction shape. Responses arrive either
// wrapped in a "data" envelope or flat at the top level; both are accepted.
type Payload struct {
	ID     string `json:"id"`
	QrCode string `json:"qr_code"`
	BrCode string `json:"br_code"`
	Status string `json:"status"`
}

type envelope struct {
	Data *Payload `json:"data"`
}

func parsePayload(body []byte) (*Payload, error) {
	var wrapped envelope
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Data != nil && wrapped.Data.ID != "" {
		return wrapped.Data, nil
	}

	var flat Payload
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, err
	}
	return &flat, nil
}
