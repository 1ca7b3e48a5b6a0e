package workorder

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"workorderpro/pkg/db"
)

// Engine runs the two-phase transition contract: an advisory local check that
// fails fast without a round-trip, then the authoritative stored procedure.
// The procedure re-validates everything and owns the side effects (audit row,
// notification enqueue).
type Engine struct {
	DB    *pgxpool.Pool
	Procs Procedures
}

type TransitionRequest struct {
	WorkOrderID   string
	CurrentStatus Status
	NextStatus    Status
	Reason        string
	UserID        string
}

func (e *Engine) RequestTransition(ctx context.Context, req TransitionRequest) (ProcResult, error) {
	// Phase 1: allow-list pre-flight. Rejections here never reach the database.
	if err := ValidateTransition(req.CurrentStatus, req.NextStatus); err != nil {
		return ProcResult{}, err
	}

	var res ProcResult
	err := db.WithTx(ctx, e.DB, func(tx pgx.Tx) error {
		wo, err := GetForUpdate(ctx, tx, req.WorkOrderID)
		if err != nil {
			return err
		}
		if err := CheckTransition(wo, req.CurrentStatus, req.NextStatus); err != nil {
			return err
		}

		// Phase 2: the procedure is the authority; its rejection stands even
		// if the advisory check passed.
		res, err = e.Procs.TransitionWorkOrderStatus(ctx, tx, req.WorkOrderID, req.NextStatus, req.Reason, req.UserID)
		if err != nil {
			return &RemoteError{Op: "transition_work_order_status", Err: err}
		}
		return nil
	})
	if err != nil {
		return ProcResult{}, err
	}
	return res, nil
}

type NumberResult struct {
	Number     string `json:"workOrderNumber"`
	IsFallback bool   `json:"isFallback"`
	Warning    string `json:"warning,omitempty"`
}

// GenerateNumber asks the primary numbering procedure for the next number and
// falls back to the simple procedure exactly once. No local counters exist;
// uniqueness per organization and location is owned by the database.
func (e *Engine) GenerateNumber(ctx context.Context, orgID, locationCode string) (NumberResult, error) {
	number, primaryErr := e.Procs.GenerateWorkOrderNumberV2(ctx, orgID, locationCode)
	if primaryErr == nil {
		return NumberResult{Number: number}, nil
	}

	number, fallbackErr := e.Procs.GenerateWorkOrderNumberSimple(ctx, orgID, locationCode)
	if fallbackErr != nil {
		return NumberResult{}, &RemoteError{Op: "generate_work_order_number", Err: fallbackErr}
	}
	return NumberResult{
		Number:     number,
		IsFallback: true,
		Warning:    "primary numbering procedure failed; number generated by fallback sequence",
	}, nil
}

func (e *Engine) FixExistingNumbers(ctx context.Context) (ProcResult, error) {
	res, err := e.Procs.FixExistingWorkOrderNumbers(ctx)
	if err != nil {
		return ProcResult{}, &RemoteError{Op: "fix_existing_work_order_numbers", Err: err}
	}
	return res, nil
}

func (e *Engine) FixSequenceNumbers(ctx context.Context) (ProcResult, error) {
	res, err := e.Procs.FixWorkOrderSequenceNumbers(ctx)
	if err != nil {
		return ProcResult{}, &RemoteError{Op: "fix_work_order_sequence_numbers", Err: err}
	}
	return res, nil
}
