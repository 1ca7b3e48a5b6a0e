package report

import (
	"errors"
	"testing"

	"workorderpro/internal/workorder"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusSubmitted, StatusReviewed, true},
		{StatusSubmitted, StatusApproved, true},
		{StatusSubmitted, StatusRejected, true},
		{StatusReviewed, StatusApproved, true},
		{StatusReviewed, StatusRejected, true},
		{StatusReviewed, StatusSubmitted, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusSubmitted, false},
		{StatusRejected, StatusApproved, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCheckReview_ApprovalRequiresCompletableWorkOrder(t *testing.T) {
	blocked := []workorder.Status{
		workorder.StatusReceived, workorder.StatusAssigned,
		workorder.StatusEstimateNeeded, workorder.StatusEstimatePendingApproval,
		workorder.StatusCancelled,
	}
	for _, ps := range blocked {
		err := CheckReview(StatusSubmitted, StatusApproved, ps)
		var guard *workorder.GuardError
		if !errors.As(err, &guard) {
			t.Errorf("parent %s: expected GuardError, got %v", ps, err)
		}
	}

	for _, ps := range []workorder.Status{workorder.StatusInProgress, workorder.StatusCompleted} {
		if err := CheckReview(StatusSubmitted, StatusApproved, ps); err != nil {
			t.Errorf("parent %s: unexpected error %v", ps, err)
		}
	}
}

func TestCheckReview_RejectionIgnoresParentStatus(t *testing.T) {
	if err := CheckReview(StatusSubmitted, StatusRejected, workorder.StatusReceived); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
