package entity

// ChargeStatus is the resolved state of a provider-side payment intent.
type ChargeStatus string

const (
	ChargeUnknown ChargeStatus = "unknown"
	ChargePaid    ChargeStatus = "paid"
	ChargeUnpaid  ChargeStatus = "unpaid"
)

// Charge represents a provider-side payment intent: an opaque transaction
// id plus the payable copy-paste code shown to the user. Charges live only
// for the session that created them.
type Charge struct {
	TransactionID string       `json:"transaction_id"`
	Code          string       `json:"code"`
	AmountCents   int64        `json:"amount_cents"`
	Status        ChargeStatus `json:"status"`
}
