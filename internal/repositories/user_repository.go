package repositories

import (
	"context"
	"database/sql"
	"errors"

	"cuidaBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// SetSubscription writes the user's current subscription, creating the user
// row when it does not exist yet.
func (r *UserRepository) SetSubscription(ctx context.Context, userID string, sub models.Subscription) error {
	stmt := `
        INSERT INTO users
        (id, subscription_plan_id, subscription_start, subscription_end, subscription_active_slots, subscription_updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            subscription_plan_id = VALUES(subscription_plan_id),
            subscription_start = VALUES(subscription_start),
            subscription_end = VALUES(subscription_end),
            subscription_active_slots = VALUES(subscription_active_slots),
            subscription_updated_at = VALUES(subscription_updated_at)`
	_, err := r.DB.ExecContext(ctx, stmt,
		userID, sub.PlanID, sub.StartDate, sub.EndDate, sub.ActiveSlots, sub.UpdatedAt)
	return err
}

func (r *UserRepository) AppendSubscriptionHistory(ctx context.Context, userID string, entry models.SubscriptionHistoryEntry) error {
	stmt := `
        INSERT INTO subscription_history
        (user_id, plan_id, start_date, end_date, active_slots, price_paid, action, transaction_id, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())`
	_, err := r.DB.ExecContext(ctx, stmt,
		userID, entry.PlanID, entry.StartDate, entry.EndDate, entry.ActiveSlots,
		entry.PricePaid, entry.Action, entry.TransactionID)
	return err
}

// IncrementLegacySlots adds exactly one slot inside a single transaction so
// that concurrent purchases by the same user cannot lose updates. A missing
// user row starts from the defaults (0 slots, max 2 patients).
func (r *UserRepository) IncrementLegacySlots(ctx context.Context, userID string) (models.LegacySlots, error) {
	dbTx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.LegacySlots{}, err
	}
	defer dbTx.Rollback()

	var slots, maxDefault int
	row := dbTx.QueryRowContext(ctx, `
        SELECT COALESCE(additional_patient_slots, 0), COALESCE(max_patients_default, 2)
        FROM users WHERE id = ? FOR UPDATE`, userID)
	err = row.Scan(&slots, &maxDefault)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		slots, maxDefault = 0, 2
		_, err = dbTx.ExecContext(ctx, `
            INSERT INTO users (id, additional_patient_slots, max_patients_default)
            VALUES (?, ?, ?)`, userID, slots+1, maxDefault)
		if err != nil {
			return models.LegacySlots{}, err
		}
	case err != nil:
		return models.LegacySlots{}, err
	default:
		_, err = dbTx.ExecContext(ctx, `
            UPDATE users SET additional_patient_slots = ?, max_patients_default = ?
            WHERE id = ?`, slots+1, maxDefault, userID)
		if err != nil {
			return models.LegacySlots{}, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return models.LegacySlots{}, err
	}
	return models.LegacySlots{AdditionalPatientSlots: slots + 1, MaxPatientsDefault: maxDefault}, nil
}

func (r *UserRepository) GetFCMToken(ctx context.Context, userID string) (string, error) {
	var token sql.NullString
	row := r.DB.QueryRowContext(ctx, `SELECT fcm_token FROM users WHERE id = ?`, userID)
	if err := row.Scan(&token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrUserNotFound
		}
		return "", err
	}
	return token.String, nil
}
