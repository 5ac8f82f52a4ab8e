package models

import (
	"strings"
	"time"
)

// SubscriptionPeriod is the fixed validity window of every purchased plan.
const SubscriptionPeriod = 30 * 24 * time.Hour

const ActionPurchase = "purchase"

var planSlots = map[string]int{
	"plan_1_person": 1,
	"plan_2_people": 2,
	"plan_3_people": 3,
}

// IsPlanID reports whether a transaction's plan id selects the subscription
// path rather than the legacy slot increment.
func IsPlanID(id string) bool {
	if id == "" {
		return false
	}
	if strings.HasPrefix(id, "plan_") {
		return true
	}
	_, ok := planSlots[id]
	return ok
}

// SlotsForPlan maps a plan id to its slot count, 1 for unrecognized plans.
func SlotsForPlan(id string) int {
	if n, ok := planSlots[id]; ok {
		return n
	}
	return 1
}
