package invoice

import "fmt"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown invoice status: %s", s)
	}
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusDraft:     {StatusSent: true, StatusCancelled: true},
	StatusSent:      {StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
	StatusPaid:      {},
	StatusOverdue:   {StatusPaid: true, StatusCancelled: true},
	StatusCancelled: {},
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

// ValidateStatusChange rejects any (current, next) pair outside the
// allow-list with an error naming both statuses. Pure and synchronous.
func ValidateStatusChange(current, next Status) error {
	if CanTransition(current, next) {
		return nil
	}
	if IsTerminal(current) {
		return fmt.Errorf("invoice status %s is terminal and cannot change to %s", current, next)
	}
	return fmt.Errorf("invalid invoice status change from %s to %s", current, next)
}
