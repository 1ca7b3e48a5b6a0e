package workorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WorkOrder struct {
	ID                      string    `json:"id"`
	OrganizationID          string    `json:"organizationId"`
	AssignedOrganizationID  *string   `json:"assignedOrganizationId,omitempty"`
	Number                  string    `json:"workOrderNumber"`
	LocationCode            string    `json:"locationCode"`
	Title                   string    `json:"title"`
	Description             string    `json:"description,omitempty"`
	Status                  Status    `json:"status"`
	EstimateAmount          *string   `json:"estimateAmount,omitempty"`
	PartnerEstimateApproved *bool     `json:"partnerEstimateApproved,omitempty"`
	CreatedBy               string    `json:"createdBy"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

type ListFilter struct {
	OrganizationID         string
	AssignedOrganizationID string
	Status                 string
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const workOrderColumns = `
id, organization_id, assigned_organization_id, work_order_number, location_code,
title, COALESCE(description,''), status, estimate_amount::text, partner_estimate_approved,
created_by, created_at, updated_at`

func scanWorkOrder(row pgx.Row) (*WorkOrder, error) {
	var wo WorkOrder
	if err := row.Scan(
		&wo.ID, &wo.OrganizationID, &wo.AssignedOrganizationID, &wo.Number, &wo.LocationCode,
		&wo.Title, &wo.Description, &wo.Status, &wo.EstimateAmount, &wo.PartnerEstimateApproved,
		&wo.CreatedBy, &wo.CreatedAt, &wo.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + `
FROM work_orders
WHERE ($1 = '' OR organization_id::text = $1)
  AND ($2 = '' OR assigned_organization_id::text = $2)
  AND ($3 = '' OR status = $3)
ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, f.OrganizationID, f.AssignedOrganizationID, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkOrder
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wo)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1`
	return scanWorkOrder(r.db.QueryRow(ctx, q, id))
}

// GetForUpdate locks the row for the duration of the transaction so the
// stale-state check and the procedure call see the same status.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*WorkOrder, error) {
	q := `SELECT ` + workOrderColumns + ` FROM work_orders WHERE id = $1 FOR UPDATE`
	return scanWorkOrder(tx.QueryRow(ctx, q, id))
}

type CreateParams struct {
	OrganizationID string
	Number         string
	LocationCode   string
	Title          string
	Description    string
	CreatedBy      string
}

func Create(ctx context.Context, tx pgx.Tx, p CreateParams) (*WorkOrder, error) {
	const q = `
INSERT INTO work_orders (id, organization_id, work_order_number, location_code, title, description, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, 'received', $7)
RETURNING ` + workOrderColumns
	return scanWorkOrder(tx.QueryRow(ctx, q,
		uuid.NewString(), p.OrganizationID, p.Number, p.LocationCode, p.Title, p.Description, p.CreatedBy,
	))
}

func Assign(ctx context.Context, tx pgx.Tx, id, assignedOrgID string) error {
	const q = `
UPDATE work_orders
SET assigned_organization_id = $2, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, assignedOrgID)
	return err
}

func SetEstimate(ctx context.Context, tx pgx.Tx, id, amount string) error {
	const q = `
UPDATE work_orders
SET estimate_amount = $2::numeric, partner_estimate_approved = NULL, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, amount)
	return err
}

func SetEstimateApproval(ctx context.Context, tx pgx.Tx, id string, approved bool) error {
	const q = `
UPDATE work_orders
SET partner_estimate_approved = $2, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, approved)
	return err
}
