package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"cuidaBack/internal/models"
)

// DebtRegistrar is the slice of the gateway client the issuer needs.
type DebtRegistrar interface {
	Configured() error
	RegisterDebt(ctx context.Context, req DebtRequest) (*DebtRegistration, error)
}

type DebtService struct {
	Gateway      DebtRegistrar
	Transactions TransactionStore
	Index        *TxIndex
	InfoLog      *log.Logger
}

type DebtInput struct {
	CaregiverID string     `json:"caregiverId"`
	Email       string     `json:"email"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	PlanID      string     `json:"planId"`
	Currency    string     `json:"moneda"`
	InvoiceType string     `json:"tipo_factura"`
	Lines       []DebtLine `json:"lineas_detalle_deuda"`
}

type DebtIssued struct {
	PaymentURL string `json:"url"`
	GatewayID  string `json:"id_transaccion"`
	Identifier string `json:"identificador"`
}

// CreateDebt validates the request, registers the debt with Libélula and
// persists the pending transaction keyed by our own identifier. Nothing is
// persisted when the gateway rejects the debt.
func (s *DebtService) CreateDebt(ctx context.Context, in DebtInput) (DebtIssued, error) {
	if strings.TrimSpace(in.CaregiverID) == "" || strings.TrimSpace(in.Email) == "" {
		return DebtIssued{}, models.ErrMissingParameters
	}
	if err := s.Gateway.Configured(); err != nil {
		return DebtIssued{}, err
	}

	if in.Amount <= 0 {
		in.Amount = 0.01
	}
	if in.Description == "" {
		in.Description = "Cupo adicional de paciente"
	}
	lines := in.Lines
	if len(lines) == 0 {
		lines = []DebtLine{{
			Concepto:      in.Description,
			Cantidad:      1,
			CostoUnitario: in.Amount,
		}}
	}
	plan := in.PlanID
	if plan == "" {
		plan = "cupo_adicional"
	}

	identifier := newIdentifier(in.CaregiverID)
	if s.InfoLog != nil {
		s.InfoLog.Printf("creating debt for user %s, plan %s, identifier %s", in.CaregiverID, plan, identifier)
	}

	reg, err := s.Gateway.RegisterDebt(ctx, DebtRequest{
		Email:       in.Email,
		Identifier:  identifier,
		Description: in.Description,
		Currency:    in.Currency,
		InvoiceType: in.InvoiceType,
		Lines:       lines,
		Metadata: []MetadataLine{
			{Nombre: "plan", Dato: plan},
			{Nombre: "cuidador_id", Dato: in.CaregiverID},
		},
	})
	if err != nil {
		return DebtIssued{}, err
	}

	tx := models.Transaction{
		Identifier:  identifier,
		GatewayID:   reg.GatewayID,
		CaregiverID: in.CaregiverID,
		PlanID:      in.PlanID,
		Amount:      in.Amount,
		Currency:    orDefault(in.Currency, "BOB"),
		State:       models.TransactionStatePending,
	}
	if err := s.Transactions.Create(ctx, tx); err != nil {
		return DebtIssued{}, fmt.Errorf("persist transaction: %w", err)
	}
	if s.Index != nil {
		s.Index.Put(identifier, reg.GatewayID)
	}

	return DebtIssued{
		PaymentURL: reg.PaymentURL,
		GatewayID:  reg.GatewayID,
		Identifier: identifier,
	}, nil
}

// newIdentifier builds the debt key the gateway echoes back in callbacks:
// a short caregiver prefix for log grepping plus a uuid tail for uniqueness.
func newIdentifier(caregiverID string) string {
	short := caregiverID
	if len(short) > 8 {
		short = short[:8]
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("SUB-%s-%d-%s", short, time.Now().UnixMilli(), suffix)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
