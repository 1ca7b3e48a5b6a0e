package workorder

import "fmt"

type Status string

const (
	StatusReceived                Status = "received"
	StatusAssigned                Status = "assigned"
	StatusEstimateNeeded          Status = "estimate_needed"
	StatusEstimatePendingApproval Status = "estimate_pending_approval"
	StatusInProgress              Status = "in_progress"
	StatusCompleted               Status = "completed"
	StatusCancelled               Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReceived, StatusAssigned, StatusEstimateNeeded, StatusEstimatePendingApproval,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown work order status: %s", s)
	}
}

// allowedTransitions is the advisory copy of the transition table. The
// transition_work_order_status procedure re-validates the same table and is
// the source of truth; this copy exists to fail fast before a round-trip.
var allowedTransitions = map[Status]map[Status]bool{
	StatusReceived:                {StatusAssigned: true, StatusEstimateNeeded: true, StatusCancelled: true},
	StatusAssigned:                {StatusInProgress: true, StatusEstimateNeeded: true, StatusCancelled: true},
	StatusEstimateNeeded:          {StatusEstimatePendingApproval: true, StatusInProgress: true, StatusCancelled: true},
	StatusEstimatePendingApproval: {StatusInProgress: true, StatusEstimateNeeded: true, StatusCancelled: true},
	StatusInProgress:              {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:               {}, // terminal; admin overrides happen out of band
	StatusCancelled:               {},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// PermitsCompletion reports whether reports against a work order in this
// status may be approved.
func PermitsCompletion(s Status) bool {
	return s == StatusInProgress || s == StatusCompleted
}

// ValidateTransition applies the allow-list only. Guard conditions that need
// row state live in CheckTransition.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidTransitionError{From: from, To: to}
	}
	return nil
}

// CheckTransition is the full advisory check against the server-truth row:
// stale-state detection, allow-list, and the estimate guard. The stored
// procedure independently re-checks all three.
func CheckTransition(wo *WorkOrder, assumed, next Status) error {
	if wo.Status != assumed {
		return &StaleStateError{Assumed: assumed, Actual: wo.Status}
	}
	if err := ValidateTransition(wo.Status, next); err != nil {
		return err
	}
	if next == StatusInProgress && requiresEstimate(wo.Status) {
		if wo.EstimateAmount == nil {
			return &GuardError{Reason: "no estimate recorded"}
		}
		if wo.PartnerEstimateApproved == nil || !*wo.PartnerEstimateApproved {
			return &GuardError{Reason: "estimate not approved by partner"}
		}
	}
	return nil
}

func requiresEstimate(from Status) bool {
	return from == StatusEstimateNeeded || from == StatusEstimatePendingApproval
}
