package repositories

import (
	"context"
	"database/sql"
	"errors"

	"cuidaBack/internal/models"
)

type TransactionRepository struct {
	DB *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx models.Transaction) error {
	stmt := `
        INSERT INTO libelula_transactions
        (identifier, gateway_id, caregiver_id, plan_id, amount, currency, state, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`
	_, err := r.DB.ExecContext(ctx, stmt,
		tx.Identifier, tx.GatewayID, tx.CaregiverID, nullString(tx.PlanID),
		tx.Amount, tx.Currency, tx.State)
	return err
}

func (r *TransactionRepository) GetByIdentifier(ctx context.Context, identifier string) (models.Transaction, error) {
	const q = `
        SELECT identifier, gateway_id, caregiver_id, COALESCE(plan_id, ''), amount, currency, state,
               COALESCE(payment_method, ''), COALESCE(invoice_url, ''), created_at, updated_at
        FROM libelula_transactions WHERE identifier = ?`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, identifier))
}

func (r *TransactionRepository) GetByGatewayID(ctx context.Context, gatewayID string) (models.Transaction, error) {
	const q = `
        SELECT identifier, gateway_id, caregiver_id, COALESCE(plan_id, ''), amount, currency, state,
               COALESCE(payment_method, ''), COALESCE(invoice_url, ''), created_at, updated_at
        FROM libelula_transactions WHERE gateway_id = ? ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, q, gatewayID))
}

func (r *TransactionRepository) UpdateState(ctx context.Context, identifier string, upd models.TransactionUpdate) error {
	stmt := `
        UPDATE libelula_transactions
        SET state = ?, payment_method = ?, invoice_url = ?, callback_data = ?, updated_at = NOW()
        WHERE identifier = ?`
	res, err := r.DB.ExecContext(ctx, stmt,
		upd.State, nullString(upd.PaymentMethod), nullString(upd.InvoiceURL),
		nullBytes(upd.CallbackData), identifier)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL also reports 0 on a no-op update, so re-check existence.
		var exists int
		row := r.DB.QueryRowContext(ctx, `SELECT 1 FROM libelula_transactions WHERE identifier = ?`, identifier)
		if err := row.Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrTransactionNotFound
			}
			return err
		}
	}
	return nil
}

func (r *TransactionRepository) scanOne(row *sql.Row) (models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(&tx.Identifier, &tx.GatewayID, &tx.CaregiverID, &tx.PlanID,
		&tx.Amount, &tx.Currency, &tx.State, &tx.PaymentMethod, &tx.InvoiceURL,
		&tx.CreatedAt, &tx.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Transaction{}, models.ErrTransactionNotFound
		}
		return models.Transaction{}, err
	}
	return tx, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
