package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cuidaBack/internal/models"
	"cuidaBack/internal/services"
)

type stubGateway struct {
	configuredErr error
	resp          *services.DebtRegistration
	err           error
	calls         int
}

func (g *stubGateway) Configured() error { return g.configuredErr }

func (g *stubGateway) RegisterDebt(ctx context.Context, req services.DebtRequest) (*services.DebtRegistration, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.resp, nil
}

func newPaymentFixture(gateway *stubGateway) (*PaymentHandler, *memTransactionStore) {
	store := &memTransactionStore{txs: make(map[string]models.Transaction)}
	svc := &services.DebtService{
		Gateway:      gateway,
		Transactions: store,
		Index:        services.NewTxIndex(),
	}
	return NewPaymentHandler(svc, nil), store
}

func TestCreateCupo(t *testing.T) {
	t.Run("issues debt and returns checkout url", func(t *testing.T) {
		gateway := &stubGateway{resp: &services.DebtRegistration{
			GatewayID:  "L-1",
			PaymentURL: "https://checkout.example.com/x",
		}}
		h, store := newPaymentFixture(gateway)

		body := strings.NewReader(`{"caregiverId":"caregiver-1","email":"a@b.c","amount":15,"planId":"plan_1_person"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pagos/cupo", body)
		rec := httptest.NewRecorder()
		h.CreateCupo(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			URL        string `json:"url"`
			GatewayID  string `json:"id_transaccion"`
			Identifier string `json:"identificador"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.URL != "https://checkout.example.com/x" || resp.GatewayID != "L-1" {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if tx := store.txs[resp.Identifier]; tx.State != models.TransactionStatePending {
			t.Fatalf("transaction state = %q", tx.State)
		}
	})

	t.Run("missing email", func(t *testing.T) {
		gateway := &stubGateway{resp: &services.DebtRegistration{GatewayID: "L-1", PaymentURL: "u"}}
		h, store := newPaymentFixture(gateway)

		body := strings.NewReader(`{"caregiverId":"caregiver-1"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pagos/cupo", body)
		rec := httptest.NewRecorder()
		h.CreateCupo(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp struct {
			Error   bool   `json:"error"`
			Mensaje string `json:"mensaje"`
		}
		_ = json.NewDecoder(rec.Body).Decode(&resp)
		if !resp.Error || resp.Mensaje == "" {
			t.Fatalf("unexpected error body: %+v", resp)
		}
		if len(store.txs) != 0 {
			t.Fatal("no transaction must be persisted")
		}
		if gateway.calls != 0 {
			t.Fatal("gateway must not be called")
		}
	})

	t.Run("gateway error surfaces upstream message", func(t *testing.T) {
		gateway := &stubGateway{err: &services.LibelulaError{Code: 1, Mensaje: "Deuda duplicada"}}
		h, _ := newPaymentFixture(gateway)

		body := strings.NewReader(`{"caregiverId":"caregiver-1","email":"a@b.c"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/pagos/cupo", body)
		rec := httptest.NewRecorder()
		h.CreateCupo(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Deuda duplicada") {
			t.Fatalf("upstream message not surfaced: %s", rec.Body.String())
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		h, _ := newPaymentFixture(&stubGateway{})
		req := httptest.NewRequest(http.MethodPost, "/api/pagos/cupo", strings.NewReader(`{`))
		rec := httptest.NewRecorder()
		h.CreateCupo(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
