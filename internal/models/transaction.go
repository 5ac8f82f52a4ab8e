package models

import (
	"encoding/json"
	"time"
)

const (
	TransactionStatePending   = "pending"
	TransactionStatePaid      = "paid"
	TransactionStateFailed    = "failed"
	TransactionStateProcessed = "processed"
)

// Transaction is one issued debt. Identifier is our own key, GatewayID is the
// id Libélula assigned when the debt was registered. Rows are never deleted.
type Transaction struct {
	Identifier    string          `json:"identificador"`
	GatewayID     string          `json:"libelula_id_transaccion"`
	CaregiverID   string          `json:"caregiver_id"`
	PlanID        string          `json:"plan_id,omitempty"`
	Amount        float64         `json:"amount"`
	Currency      string          `json:"currency"`
	State         string          `json:"state"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	InvoiceURL    string          `json:"invoice_url,omitempty"`
	CallbackData  json.RawMessage `json:"callback_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TransactionUpdate carries the fields the reconciler writes back after a
// gateway callback.
type TransactionUpdate struct {
	State         string
	PaymentMethod string
	InvoiceURL    string
	CallbackData  json.RawMessage
}
