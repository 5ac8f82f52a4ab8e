package services

import (
	"context"

	"cuidaBack/internal/models"
)

// Store capabilities the payment flow needs. The repositories package
// implements them against MySQL; tests substitute fakes.

type TransactionStore interface {
	Create(ctx context.Context, tx models.Transaction) error
	GetByIdentifier(ctx context.Context, identifier string) (models.Transaction, error)
	GetByGatewayID(ctx context.Context, gatewayID string) (models.Transaction, error)
	UpdateState(ctx context.Context, identifier string, upd models.TransactionUpdate) error
}

type PaymentStore interface {
	CreateIfAbsent(ctx context.Context, p models.Payment) (bool, error)
}

type UserStore interface {
	SetSubscription(ctx context.Context, userID string, sub models.Subscription) error
	AppendSubscriptionHistory(ctx context.Context, userID string, entry models.SubscriptionHistoryEntry) error
	IncrementLegacySlots(ctx context.Context, userID string) (models.LegacySlots, error)
}
