package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Entry struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	WorkOrderID    *string   `json:"workOrderId,omitempty"`
	Action         string    `json:"action"`
	Actor          string    `json:"actor"`
	Metadata       any       `json:"metadata,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert writes an audit row inside the caller's transaction so the trail
// commits or rolls back with the mutation it describes.
func Insert(ctx context.Context, tx pgx.Tx, orgID string, workOrderID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (id, organization_id, work_order_id, action, actor, metadata)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := tx.Exec(ctx, q, uuid.NewString(), orgID, workOrderID, action, actor, s)
	return err
}

func (r *Repository) ListByWorkOrder(ctx context.Context, workOrderID string) ([]Entry, error) {
	const q = `
SELECT id, organization_id, work_order_id, action, actor, COALESCE(metadata, '{}'::jsonb), created_at
FROM audit_logs
WHERE work_order_id = $1
ORDER BY created_at ASC
`
	rows, err := r.db.Query(ctx, q, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.OrganizationID, &e.WorkOrderID, &e.Action, &e.Actor, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
