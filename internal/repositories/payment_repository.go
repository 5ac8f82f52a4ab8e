package repositories

import (
	"context"
	"database/sql"
	"errors"

	"cuidaBack/internal/models"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// CreateIfAbsent inserts the payment row keyed by transaction id. The primary
// key acts as the compare-and-set against concurrent duplicate callbacks:
// rows affected 0 means the transaction was already credited.
func (r *PaymentRepository) CreateIfAbsent(ctx context.Context, p models.Payment) (bool, error) {
	stmt := `
        INSERT IGNORE INTO payments
        (transaction_id, gateway_id, amount, currency, status, method, caregiver_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, NOW())`
	res, err := r.DB.ExecContext(ctx, stmt,
		p.TransactionID, p.GatewayID, p.Amount, p.Currency, p.Status, p.Method, p.CaregiverID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (models.Payment, error) {
	const q = `
        SELECT transaction_id, gateway_id, amount, currency, status, COALESCE(method, ''), caregiver_id, created_at
        FROM payments WHERE transaction_id = ?`
	var p models.Payment
	err := r.DB.QueryRowContext(ctx, q, transactionID).Scan(
		&p.TransactionID, &p.GatewayID, &p.Amount, &p.Currency, &p.Status, &p.Method, &p.CaregiverID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Payment{}, models.ErrNoRecord
		}
		return models.Payment{}, err
	}
	return p, nil
}
