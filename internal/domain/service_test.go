package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestServicePlan_AppliesTo(t *testing.T) {
	t.Parallel()

	partID := uuid.New()
	otherID := uuid.New()
	chain := PartCategoryChain
	tire := PartCategoryTire

	part := &Part{ID: partID, Category: PartCategoryChain}

	tests := []struct {
		name string
		plan ServicePlan
		want bool
	}{
		{name: "part-specific match", plan: ServicePlan{PartID: &partID}, want: true},
		{name: "part-specific other part", plan: ServicePlan{PartID: &otherID}, want: false},
		{name: "category match", plan: ServicePlan{Category: &chain}, want: true},
		{name: "category mismatch", plan: ServicePlan{Category: &tire}, want: false},
		{name: "neither set", plan: ServicePlan{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.plan.AppliesTo(part); got != tt.want {
				t.Fatalf("AppliesTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceEvent_Matches(t *testing.T) {
	t.Parallel()

	planID := uuid.New()
	other := uuid.New()

	blanket := ServiceEvent{}
	if !blanket.Matches(planID) {
		t.Error("event without plan must match every plan")
	}

	scoped := ServiceEvent{PlanID: &planID}
	if !scoped.Matches(planID) {
		t.Error("scoped event must match its plan")
	}
	if scoped.Matches(other) {
		t.Error("scoped event must not match other plans")
	}
}

func TestNormalizePosition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Position
	}{
		{"chain", "chain"},
		{"Front Wheel", "front_wheel"},
		{"front-wheel", "front_wheel"},
		{"  REAR   derailleur ", "rear_derailleur"},
		{"brake_pad_front", "brake_pad_front"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizePosition(tt.in); got != tt.want {
			t.Errorf("NormalizePosition(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
