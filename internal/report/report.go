package report

import (
	"fmt"

	"workorderpro/internal/workorder"
)

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusReviewed  Status = "reviewed"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSubmitted, StatusReviewed, StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown report status: %s", s)
	}
}

// The reviewed step is optional: admins may approve or reject directly.
var allowedTransitions = map[Status]map[Status]bool{
	StatusSubmitted: {StatusReviewed: true, StatusApproved: true, StatusRejected: true},
	StatusReviewed:  {StatusApproved: true, StatusRejected: true},
	StatusApproved:  {},
	StatusRejected:  {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// CheckReview validates a review decision against the report's current status
// and, for approvals, the parent work order's status. A report can only be
// approved while its work order is in a state that permits completion.
func CheckReview(current, next Status, parentStatus workorder.Status) error {
	if !CanTransition(current, next) {
		return fmt.Errorf("invalid report status change from %s to %s", current, next)
	}
	if next == StatusApproved && !workorder.PermitsCompletion(parentStatus) {
		return &workorder.GuardError{
			Reason: fmt.Sprintf("work order status %s does not permit report approval", parentStatus),
		}
	}
	return nil
}
