package organization

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Type string

const (
	TypePartner       Type = "partner"
	TypeSubcontractor Type = "subcontractor"
	TypeInternal      Type = "internal"
)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePartner, TypeSubcontractor, TypeInternal:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown organization type: %s", s)
	}
}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Initials  string    `json:"initials"`
	CreatedAt time.Time `json:"createdAt"`
}

type Member struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]Organization, error) {
	const q = `
SELECT id, name, type, initials, created_at
FROM organizations
ORDER BY name ASC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Organization
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.Type, &o.Initials, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Organization, error) {
	const q = `SELECT id, name, type, initials, created_at FROM organizations WHERE id = $1`
	var o Organization
	if err := r.db.QueryRow(ctx, q, id).Scan(&o.ID, &o.Name, &o.Type, &o.Initials, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, name string, typ Type, initials string) (*Organization, error) {
	const q = `
INSERT INTO organizations (id, name, type, initials)
VALUES ($1, $2, $3, $4)
RETURNING id, name, type, initials, created_at`
	var o Organization
	if err := r.db.QueryRow(ctx, q, uuid.NewString(), name, string(typ), initials).Scan(
		&o.ID, &o.Name, &o.Type, &o.Initials, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	const q = `
SELECT user_id, role
FROM organization_members
WHERE organization_id = $1
ORDER BY user_id ASC`
	rows, err := r.db.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
