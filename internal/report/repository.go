package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Report struct {
	ID            string     `json:"id"`
	WorkOrderID   string     `json:"workOrderId"`
	SubmittedBy   string     `json:"submittedBy"`
	WorkPerformed string     `json:"workPerformed"`
	HoursWorked   *string    `json:"hoursWorked,omitempty"`
	MaterialsCost *string    `json:"materialsCost,omitempty"`
	BillAmount    *string    `json:"billAmount,omitempty"`
	Status        Status     `json:"status"`
	ReviewNotes   string     `json:"reviewNotes,omitempty"`
	SubmittedAt   time.Time  `json:"submittedAt"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const reportColumns = `
id, work_order_id, submitted_by, work_performed, hours_worked::text, materials_cost::text,
bill_amount::text, status, COALESCE(review_notes,''), submitted_at, reviewed_at`

func scanReport(row pgx.Row) (*Report, error) {
	var rep Report
	if err := row.Scan(
		&rep.ID, &rep.WorkOrderID, &rep.SubmittedBy, &rep.WorkPerformed, &rep.HoursWorked,
		&rep.MaterialsCost, &rep.BillAmount, &rep.Status, &rep.ReviewNotes, &rep.SubmittedAt, &rep.ReviewedAt,
	); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *Repository) ListByWorkOrder(ctx context.Context, workOrderID string) ([]Report, error) {
	q := `SELECT ` + reportColumns + ` FROM work_order_reports WHERE work_order_id = $1 ORDER BY submitted_at ASC`
	rows, err := r.db.Query(ctx, q, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rep)
	}
	return out, rows.Err()
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Report, error) {
	q := `SELECT ` + reportColumns + ` FROM work_order_reports WHERE id = $1 FOR UPDATE`
	return scanReport(tx.QueryRow(ctx, q, id))
}

type SubmitParams struct {
	WorkOrderID   string
	SubmittedBy   string
	WorkPerformed string
	HoursWorked   *string
	MaterialsCost *string
	BillAmount    *string
}

func Insert(ctx context.Context, tx pgx.Tx, p SubmitParams) (*Report, error) {
	const q = `
INSERT INTO work_order_reports (id, work_order_id, submitted_by, work_performed, hours_worked, materials_cost, bill_amount, status)
VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, 'submitted')
RETURNING ` + reportColumns
	return scanReport(tx.QueryRow(ctx, q,
		uuid.NewString(), p.WorkOrderID, p.SubmittedBy, p.WorkPerformed, p.HoursWorked, p.MaterialsCost, p.BillAmount,
	))
}

func UpdateStatus(ctx context.Context, tx pgx.Tx, id string, next Status, reviewNotes string) error {
	const q = `
UPDATE work_order_reports
SET status = $2, review_notes = $3, reviewed_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, string(next), reviewNotes)
	return err
}

// AllApproved is the invoicing precondition: at least one report exists and
// none is outside approved.
func AllApproved(ctx context.Context, tx pgx.Tx, workOrderID string) (bool, error) {
	const q = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE status <> 'approved')
FROM work_order_reports
WHERE work_order_id = $1`
	var total, unapproved int
	if err := tx.QueryRow(ctx, q, workOrderID).Scan(&total, &unapproved); err != nil {
		return false, err
	}
	return total > 0 && unapproved == 0, nil
}
