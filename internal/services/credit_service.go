package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cuidaBack/internal/models"
)

// PushNotifier delivers a best-effort push after a successful credit.
type PushNotifier interface {
	SendToUser(ctx context.Context, userID, title, body string, data map[string]string) error
}

// CreditService applies the account credit derived from a confirmed payment:
// a subscription for recognized plan ids, the legacy slot increment otherwise.
type CreditService struct {
	Payments PaymentStore
	Users    UserStore
	Notifier PushNotifier
	InfoLog  *log.Logger
	ErrorLog *log.Logger

	// Now is swappable in tests; defaults to time.Now.
	Now func() time.Time
}

// Apply credits the caregiver for the given paid transaction. It returns
// false without touching the user when the transaction was already credited:
// the payment row keyed by transaction id is the idempotency guard, created
// with a compare-and-set so concurrent duplicate callbacks cannot both win.
func (s *CreditService) Apply(ctx context.Context, tx models.Transaction, method string, amount float64) (bool, error) {
	created, err := s.Payments.CreateIfAbsent(ctx, models.Payment{
		TransactionID: tx.Identifier,
		GatewayID:     tx.GatewayID,
		Amount:        amount,
		Currency:      orDefault(tx.Currency, "BOB"),
		Status:        models.PaymentStatusPaid,
		Method:        method,
		CaregiverID:   tx.CaregiverID,
	})
	if err != nil {
		return false, fmt.Errorf("create payment record: %w", err)
	}
	if !created {
		if s.InfoLog != nil {
			s.InfoLog.Printf("transaction %s already credited, skipping", tx.Identifier)
		}
		return false, nil
	}

	if models.IsPlanID(tx.PlanID) {
		if err := s.applyPlan(ctx, tx, amount); err != nil {
			return false, err
		}
	} else {
		slots, err := s.Users.IncrementLegacySlots(ctx, tx.CaregiverID)
		if err != nil {
			return false, fmt.Errorf("legacy slot increment: %w", err)
		}
		if s.InfoLog != nil {
			s.InfoLog.Printf("added 1 slot to user %s (now %d, max default %d)",
				tx.CaregiverID, slots.AdditionalPatientSlots, slots.MaxPatientsDefault)
		}
	}

	s.notify(ctx, tx)
	return true, nil
}

func (s *CreditService) applyPlan(ctx context.Context, tx models.Transaction, amount float64) error {
	now := s.now()
	sub := models.Subscription{
		PlanID:      tx.PlanID,
		StartDate:   now,
		EndDate:     now.Add(models.SubscriptionPeriod),
		ActiveSlots: models.SlotsForPlan(tx.PlanID),
		UpdatedAt:   now,
	}
	if err := s.Users.SetSubscription(ctx, tx.CaregiverID, sub); err != nil {
		return fmt.Errorf("set subscription: %w", err)
	}
	entry := models.SubscriptionHistoryEntry{
		PlanID:        sub.PlanID,
		StartDate:     sub.StartDate,
		EndDate:       sub.EndDate,
		ActiveSlots:   sub.ActiveSlots,
		PricePaid:     amount,
		Action:        models.ActionPurchase,
		TransactionID: tx.Identifier,
	}
	if err := s.Users.AppendSubscriptionHistory(ctx, tx.CaregiverID, entry); err != nil {
		return fmt.Errorf("append subscription history: %w", err)
	}
	if s.InfoLog != nil {
		s.InfoLog.Printf("activated %s for user %s: %d slots until %s",
			sub.PlanID, tx.CaregiverID, sub.ActiveSlots, sub.EndDate.Format(time.RFC3339))
	}
	return nil
}

func (s *CreditService) notify(ctx context.Context, tx models.Transaction) {
	if s.Notifier == nil {
		return
	}
	title := "Pago confirmado"
	body := "Tu cupo adicional ya está activo."
	if models.IsPlanID(tx.PlanID) {
		body = "Tu suscripción ya está activa."
	}
	err := s.Notifier.SendToUser(ctx, tx.CaregiverID, title, body, map[string]string{
		"transaction_id": tx.Identifier,
	})
	if err != nil && s.ErrorLog != nil {
		s.ErrorLog.Printf("push after credit for user %s: %v", tx.CaregiverID, err)
	}
}

func (s *CreditService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
