package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"cuidaBack/internal/models"
)

// VerifyMode selects how a callback is judged paid: the push variant trusts
// the payload's error code, the pull variant re-queries the gateway.
type VerifyMode string

const (
	VerifyPush VerifyMode = "push"
	VerifyPull VerifyMode = "pull"
)

func ParseVerifyMode(s string) VerifyMode {
	if strings.EqualFold(strings.TrimSpace(s), string(VerifyPull)) {
		return VerifyPull
	}
	return VerifyPush
}

// StatusQuerier is the slice of the gateway client the pull variant needs.
type StatusQuerier interface {
	QueryDebtStatus(ctx context.Context, identifier string) (*DebtStatus, error)
}

// GatewayCallback is the normalized webhook payload. Libélula delivers it as
// query parameters on GET or as a JSON body on POST.
type GatewayCallback struct {
	TransactionID string
	ErrorCode     string
	PaymentMethod string
	InvoiceURL    string
	Raw           json.RawMessage
}

// CallbackFromValues reads the callback fields from query/form parameters.
func CallbackFromValues(v url.Values) GatewayCallback {
	cb := GatewayCallback{
		TransactionID: firstOf(v, "id_transaccion", "transaction_id"),
		ErrorCode:     strings.TrimSpace(v.Get("error")),
		PaymentMethod: firstOf(v, "payment_method", "forma_pago"),
		InvoiceURL:    strings.TrimSpace(v.Get("invoice_url")),
	}
	if raw, err := json.Marshal(flatten(v)); err == nil {
		cb.Raw = raw
	}
	return cb
}

// CallbackFromJSON reads the callback fields from a JSON body. Numeric and
// string field encodings both occur in the wild.
func CallbackFromJSON(data []byte) (GatewayCallback, error) {
	var raw struct {
		IDTransaccion        json.RawMessage `json:"id_transaccion"`
		TransactionID        json.RawMessage `json:"transaction_id"`
		Error                json.RawMessage `json:"error"`
		PaymentMethod        string          `json:"payment_method"`
		FormaPago            string          `json:"forma_pago"`
		InvoiceURL           string          `json:"invoice_url"`
		FacturasElectronicas []struct {
			URL string `json:"url"`
		} `json:"facturas_electronicas"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return GatewayCallback{}, fmt.Errorf("decode callback: %w", err)
	}

	cb := GatewayCallback{Raw: json.RawMessage(data)}
	cb.TransactionID = flexibleString(raw.IDTransaccion)
	if cb.TransactionID == "" {
		cb.TransactionID = flexibleString(raw.TransactionID)
	}
	cb.ErrorCode = flexibleString(raw.Error)
	cb.PaymentMethod = strings.TrimSpace(raw.PaymentMethod)
	if cb.PaymentMethod == "" {
		cb.PaymentMethod = strings.TrimSpace(raw.FormaPago)
	}
	cb.InvoiceURL = strings.TrimSpace(raw.InvoiceURL)
	if len(raw.FacturasElectronicas) > 0 && raw.FacturasElectronicas[0].URL != "" {
		cb.InvoiceURL = raw.FacturasElectronicas[0].URL
	}
	return cb, nil
}

// CallbackResult is what the webhook handler renders on the acknowledgment
// page. Resolved false means no transaction matched any lookup path; that is
// an acknowledged no-op, not an error.
type CallbackResult struct {
	Identifier    string
	Resolved      bool
	Paid          bool
	State         string
	PlanID        string
	PaymentMethod string
	InvoiceURL    string
	Credited      bool
}

type ReconcileService struct {
	Transactions TransactionStore
	Credits      *CreditService
	Gateway      StatusQuerier
	Index        *TxIndex
	Verify       VerifyMode
	InfoLog      *log.Logger
	ErrorLog     *log.Logger
}

// ProcessCallback resolves the callback to a known transaction, updates its
// state, and applies the account credit for confirmed payments. The state
// update commits before crediting, so a crediting failure never loses the
// reconciliation outcome.
func (s *ReconcileService) ProcessCallback(ctx context.Context, cb GatewayCallback) (CallbackResult, error) {
	received := strings.TrimSpace(cb.TransactionID)
	if received == "" {
		return CallbackResult{}, models.ErrMissingParameters
	}

	tx, ok, err := s.resolve(ctx, received)
	if err != nil {
		return CallbackResult{}, err
	}
	if !ok {
		if s.InfoLog != nil {
			s.InfoLog.Printf("callback for unknown transaction %s acknowledged without changes", received)
		}
		return CallbackResult{Identifier: received}, nil
	}

	paid, method, amount, err := s.judge(ctx, tx, cb)
	if err != nil {
		return CallbackResult{Identifier: tx.Identifier, Resolved: true}, err
	}

	state := models.TransactionStateFailed
	if paid {
		state = models.TransactionStatePaid
	} else {
		method = ""
	}
	upd := models.TransactionUpdate{
		State:         state,
		PaymentMethod: method,
		InvoiceURL:    cb.InvoiceURL,
		CallbackData:  cb.Raw,
	}
	if err := s.Transactions.UpdateState(ctx, tx.Identifier, upd); err != nil {
		return CallbackResult{Identifier: tx.Identifier, Resolved: true}, fmt.Errorf("update transaction state: %w", err)
	}

	result := CallbackResult{
		Identifier:    tx.Identifier,
		Resolved:      true,
		Paid:          paid,
		State:         state,
		PlanID:        tx.PlanID,
		PaymentMethod: method,
		InvoiceURL:    cb.InvoiceURL,
	}
	if !paid {
		if s.InfoLog != nil {
			s.InfoLog.Printf("payment failed for transaction %s (error code %q)", tx.Identifier, cb.ErrorCode)
		}
		return result, nil
	}
	if tx.CaregiverID == "" {
		if s.InfoLog != nil {
			s.InfoLog.Printf("paid transaction %s has no caregiver id, nothing to credit", tx.Identifier)
		}
		return result, nil
	}

	credited, err := s.Credits.Apply(ctx, tx, method, amount)
	if err != nil {
		// The state update above already committed; surfacing the error here
		// turns into a 500 for the gateway while reconciliation state is kept.
		return result, err
	}
	result.Credited = credited
	return result, nil
}

// judge decides paid/unpaid. Push trusts the callback's error code; pull asks
// the gateway's status endpoint, which also knows the settled amount.
func (s *ReconcileService) judge(ctx context.Context, tx models.Transaction, cb GatewayCallback) (bool, string, float64, error) {
	method := cb.PaymentMethod
	if method == "" {
		method = "Libélula"
	}

	if s.Verify == VerifyPull {
		if s.Gateway == nil {
			return false, "", 0, fmt.Errorf("pull verification requires a gateway client")
		}
		st, err := s.Gateway.QueryDebtStatus(ctx, tx.Identifier)
		if err != nil {
			return false, "", 0, fmt.Errorf("query debt status: %w", err)
		}
		amount := st.Amount
		if amount == 0 {
			amount = tx.Amount
		}
		return st.Paid, method, amount, nil
	}

	return cb.ErrorCode == "0", method, tx.Amount, nil
}

// resolve maps the received id back to our transaction. Fixed priority per
// lookup path, first match wins; misses fall through, store errors stop the
// chain.
func (s *ReconcileService) resolve(ctx context.Context, received string) (models.Transaction, bool, error) {
	// Our own identifier, seen by this process when the debt was issued.
	if s.Index != nil {
		if _, ok := s.Index.GatewayID(received); ok {
			tx, found, err := s.fetchByIdentifier(ctx, received)
			if err != nil || found {
				return tx, found, err
			}
		}
	}

	// Stored transaction keyed by our identifier.
	tx, found, err := s.fetchByIdentifier(ctx, received)
	if err != nil || found {
		return tx, found, err
	}

	// Reverse index: the gateway used its own transaction id.
	if s.Index != nil {
		if identifier, ok := s.Index.Identifier(received); ok {
			tx, found, err := s.fetchByIdentifier(ctx, identifier)
			if err != nil || found {
				return tx, found, err
			}
		}
	}

	// Store query by gateway id field.
	tx, err = s.Transactions.GetByGatewayID(ctx, received)
	if err != nil {
		if err == models.ErrTransactionNotFound {
			return models.Transaction{}, false, nil
		}
		return models.Transaction{}, false, err
	}
	return tx, true, nil
}

func (s *ReconcileService) fetchByIdentifier(ctx context.Context, identifier string) (models.Transaction, bool, error) {
	tx, err := s.Transactions.GetByIdentifier(ctx, identifier)
	if err != nil {
		if err == models.ErrTransactionNotFound {
			return models.Transaction{}, false, nil
		}
		return models.Transaction{}, false, err
	}
	return tx, true, nil
}

func firstOf(v url.Values, keys ...string) string {
	for _, k := range keys {
		if s := strings.TrimSpace(v.Get(k)); s != "" {
			return s
		}
	}
	return ""
}

func flatten(v url.Values) map[string]string {
	m := make(map[string]string, len(v))
	for k := range v {
		m[k] = v.Get(k)
	}
	return m
}
