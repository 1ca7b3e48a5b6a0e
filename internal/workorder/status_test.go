package workorder

import (
	"errors"
	"testing"
)

var allStatuses = []Status{
	StatusReceived, StatusAssigned, StatusEstimateNeeded, StatusEstimatePendingApproval,
	StatusInProgress, StatusCompleted, StatusCancelled,
}

func legalPairs() map[[2]Status]bool {
	return map[[2]Status]bool{
		{StatusReceived, StatusAssigned}:                      true,
		{StatusReceived, StatusEstimateNeeded}:                true,
		{StatusReceived, StatusCancelled}:                     true,
		{StatusAssigned, StatusInProgress}:                    true,
		{StatusAssigned, StatusEstimateNeeded}:                true,
		{StatusAssigned, StatusCancelled}:                     true,
		{StatusEstimateNeeded, StatusEstimatePendingApproval}: true,
		{StatusEstimateNeeded, StatusInProgress}:              true,
		{StatusEstimateNeeded, StatusCancelled}:               true,
		{StatusEstimatePendingApproval, StatusInProgress}:     true,
		{StatusEstimatePendingApproval, StatusEstimateNeeded}: true,
		{StatusEstimatePendingApproval, StatusCancelled}:      true,
		{StatusInProgress, StatusCompleted}:                   true,
		{StatusInProgress, StatusCancelled}:                   true,
	}
}

func TestCanTransition_MatchesAllowList(t *testing.T) {
	legal := legalPairs()
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := legal[[2]Status{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestValidateTransition_RejectsIllegalPairs(t *testing.T) {
	legal := legalPairs()
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			err := ValidateTransition(from, to)
			if legal[[2]Status{from, to}] {
				if err != nil {
					t.Errorf("ValidateTransition(%s, %s): unexpected error %v", from, to, err)
				}
				continue
			}
			var ite *InvalidTransitionError
			if !errors.As(err, &ite) {
				t.Errorf("ValidateTransition(%s, %s): expected InvalidTransitionError, got %v", from, to, err)
				continue
			}
			if ite.From != from || ite.To != to {
				t.Errorf("error pair mismatch: %+v", ite)
			}
		}
	}
}

func TestTerminalStatesHaveNoTransitions(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		if !IsTerminal(terminal) {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, to := range allStatuses {
			if CanTransition(terminal, to) {
				t.Errorf("terminal %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestCheckTransition_StaleState(t *testing.T) {
	wo := &WorkOrder{Status: StatusAssigned}

	// A replayed received->assigned request: the server already advanced.
	err := CheckTransition(wo, StatusReceived, StatusAssigned)
	var stale *StaleStateError
	if !errors.As(err, &stale) {
		t.Fatalf("expected StaleStateError, got %v", err)
	}
	if stale.Assumed != StatusReceived || stale.Actual != StatusAssigned {
		t.Fatalf("unexpected stale detail: %+v", stale)
	}
}

func TestCheckTransition_EstimateGuard(t *testing.T) {
	amount := "1250.00"
	yes := true
	no := false

	cases := []struct {
		name      string
		wo        *WorkOrder
		wantGuard bool
	}{
		{
			name:      "no estimate recorded",
			wo:        &WorkOrder{Status: StatusEstimateNeeded},
			wantGuard: true,
		},
		{
			name:      "estimate recorded but approval null",
			wo:        &WorkOrder{Status: StatusEstimateNeeded, EstimateAmount: &amount},
			wantGuard: true,
		},
		{
			name:      "estimate recorded but approval false",
			wo:        &WorkOrder{Status: StatusEstimateNeeded, EstimateAmount: &amount, PartnerEstimateApproved: &no},
			wantGuard: true,
		},
		{
			name: "estimate recorded and approved",
			wo:   &WorkOrder{Status: StatusEstimateNeeded, EstimateAmount: &amount, PartnerEstimateApproved: &yes},
		},
		{
			name: "pending approval, approved",
			wo:   &WorkOrder{Status: StatusEstimatePendingApproval, EstimateAmount: &amount, PartnerEstimateApproved: &yes},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(tc.wo, tc.wo.Status, StatusInProgress)
			var guard *GuardError
			if tc.wantGuard {
				if !errors.As(err, &guard) {
					t.Fatalf("expected GuardError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestCheckTransition_GuardVacuousWithoutEstimateFlow(t *testing.T) {
	// An order that never entered the estimate flow enters in_progress freely.
	wo := &WorkOrder{Status: StatusAssigned}
	if err := CheckTransition(wo, StatusAssigned, StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range allStatuses {
		got, err := ParseStatus(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStatus(%s) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Errorf("expected error for unknown status")
	}
}
