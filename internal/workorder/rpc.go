package workorder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcResult is the (success, message) row shape shared by the backend
// procedures. A false success is an authoritative rejection, not a transport
// failure.
type ProcResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Procedures is the opaque boundary to the database-hosted authorities. The
// allocation and re-validation algorithms behind these calls are owned by the
// database; callers only see the structured result.
type Procedures interface {
	TransitionWorkOrderStatus(ctx context.Context, tx pgx.Tx, workOrderID string, next Status, reason, userID string) (ProcResult, error)
	GenerateWorkOrderNumberV2(ctx context.Context, orgID, locationCode string) (string, error)
	GenerateWorkOrderNumberSimple(ctx context.Context, orgID, locationCode string) (string, error)
	FixExistingWorkOrderNumbers(ctx context.Context) (ProcResult, error)
	FixWorkOrderSequenceNumbers(ctx context.Context) (ProcResult, error)
}

type SQLProcedures struct {
	DB *pgxpool.Pool
}

func (p SQLProcedures) TransitionWorkOrderStatus(ctx context.Context, tx pgx.Tx, workOrderID string, next Status, reason, userID string) (ProcResult, error) {
	const q = `SELECT success, message FROM transition_work_order_status($1, $2, $3, $4)`
	var res ProcResult
	if err := tx.QueryRow(ctx, q, workOrderID, string(next), reason, userID).Scan(&res.Success, &res.Message); err != nil {
		return ProcResult{}, err
	}
	return res, nil
}

func (p SQLProcedures) GenerateWorkOrderNumberV2(ctx context.Context, orgID, locationCode string) (string, error) {
	return p.generate(ctx, `SELECT success, message, work_order_number FROM generate_work_order_number_v2($1, $2)`, orgID, locationCode)
}

func (p SQLProcedures) GenerateWorkOrderNumberSimple(ctx context.Context, orgID, locationCode string) (string, error) {
	return p.generate(ctx, `SELECT success, message, work_order_number FROM generate_work_order_number_simple($1, $2)`, orgID, locationCode)
}

func (p SQLProcedures) generate(ctx context.Context, q, orgID, locationCode string) (string, error) {
	var (
		success bool
		message string
		number  *string
	)
	if err := p.DB.QueryRow(ctx, q, orgID, locationCode).Scan(&success, &message, &number); err != nil {
		return "", err
	}
	if !success || number == nil || *number == "" {
		return "", fmt.Errorf("number generation rejected: %s", message)
	}
	return *number, nil
}

func (p SQLProcedures) FixExistingWorkOrderNumbers(ctx context.Context) (ProcResult, error) {
	const q = `SELECT success, message FROM fix_existing_work_order_numbers()`
	var res ProcResult
	if err := p.DB.QueryRow(ctx, q).Scan(&res.Success, &res.Message); err != nil {
		return ProcResult{}, err
	}
	return res, nil
}

func (p SQLProcedures) FixWorkOrderSequenceNumbers(ctx context.Context) (ProcResult, error) {
	const q = `SELECT success, message FROM fix_work_order_sequence_numbers()`
	var res ProcResult
	if err := p.DB.QueryRow(ctx, q).Scan(&res.Success, &res.Message); err != nil {
		return ProcResult{}, err
	}
	return res, nil
}
