package models

import "time"

// User is a caregiver account. Capacity is granted either through an active
// subscription or through the legacy slot counters.
type User struct {
	ID                     string        `json:"id"`
	FCMToken               string        `json:"fcm_token,omitempty"`
	AdditionalPatientSlots int           `json:"additional_patient_slots"`
	MaxPatientsDefault     int           `json:"max_patients_default"`
	Subscription           *Subscription `json:"subscription,omitempty"`
}

type Subscription struct {
	PlanID      string    `json:"plan_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	ActiveSlots int       `json:"active_slots"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// SubscriptionHistoryEntry is append-only: one row per purchase.
type SubscriptionHistoryEntry struct {
	PlanID        string    `json:"plan_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	ActiveSlots   int       `json:"active_slots"`
	PricePaid     float64   `json:"price_paid"`
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
}

// LegacySlots is the result of the legacy credit path.
type LegacySlots struct {
	AdditionalPatientSlots int `json:"additional_patient_slots"`
	MaxPatientsDefault     int `json:"max_patients_default"`
}
