package models

import "testing"

func TestSlotsForPlan(t *testing.T) {
	t.Run("known plans", func(t *testing.T) {
		cases := map[string]int{
			"plan_1_person": 1,
			"plan_2_people": 2,
			"plan_3_people": 3,
		}
		for plan, want := range cases {
			if got := SlotsForPlan(plan); got != want {
				t.Fatalf("SlotsForPlan(%q) = %d, want %d", plan, got, want)
			}
		}
	})

	t.Run("unrecognized plan defaults to one slot", func(t *testing.T) {
		if got := SlotsForPlan("plan_enterprise"); got != 1 {
			t.Fatalf("expected default 1, got %d", got)
		}
	})
}

func TestIsPlanID(t *testing.T) {
	if !IsPlanID("plan_2_people") {
		t.Fatal("expected plan_2_people to be a plan id")
	}
	if !IsPlanID("plan_whatever") {
		t.Fatal("expected plan_ prefix to be a plan id")
	}
	if IsPlanID("") {
		t.Fatal("empty id must not be a plan id")
	}
	if IsPlanID("cupo_adicional") {
		t.Fatal("legacy marker must not be a plan id")
	}
}
