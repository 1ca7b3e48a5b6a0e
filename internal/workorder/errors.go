package workorder

import "fmt"

// InvalidTransitionError rejects a (current, next) pair absent from the
// allow-list. Raised locally before any remote call.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid work order status transition from %s to %s", e.From, e.To)
}

// GuardError rejects a structurally legal transition blocked by a business
// precondition, e.g. an unapproved estimate.
type GuardError struct {
	Reason string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("transition blocked: %s", e.Reason)
}

// StaleStateError means the caller's assumed current status no longer matches
// server truth. The server wins; the caller must refetch.
type StaleStateError struct {
	Assumed Status
	Actual  Status
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("stale work order status: assumed %s but server has %s", e.Assumed, e.Actual)
}

// RemoteError wraps a failed backend procedure call. Never retried
// automatically; surfaced for manual retry.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
