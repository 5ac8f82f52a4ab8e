package models

import "time"

const PaymentStatusPaid = "paid"

// Payment is written once per transaction after a confirmed callback. Its
// existence (keyed by TransactionID) is the guard against double crediting.
type Payment struct {
	TransactionID string    `json:"transaction_id"`
	GatewayID     string    `json:"libelula_id"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	Method        string    `json:"method"`
	CaregiverID   string    `json:"caregiver_id"`
	CreatedAt     time.Time `json:"created_at"`
}
