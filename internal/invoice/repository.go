package invoice

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const invoiceColumns = `
id, organization_id, invoice_number, invoice_date, due_date,
subtotal::text, markup_percentage::text, total_amount::text, status, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv                     Invoice
		subtotal, markup, total string
	)
	if err := row.Scan(
		&inv.ID, &inv.OrganizationID, &inv.Number, &inv.InvoiceDate, &inv.DueDate,
		&subtotal, &markup, &total, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	var err error
	if inv.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("bad subtotal %q: %w", subtotal, err)
	}
	if inv.MarkupPercentage, err = decimal.NewFromString(markup); err != nil {
		return nil, fmt.Errorf("bad markup %q: %w", markup, err)
	}
	if inv.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("bad total %q: %w", total, err)
	}
	return &inv, nil
}

func (r *Repository) ListByOrganization(ctx context.Context, orgID string) ([]Invoice, error) {
	q := `SELECT ` + invoiceColumns + `
FROM invoices
WHERE ($1 = '' OR organization_id::text = $1)
ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.db.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}
	items, err := r.listLineItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.LineItems = items
	return inv, nil
}

func (r *Repository) listLineItems(ctx context.Context, invoiceID string) ([]LineItem, error) {
	const q = `
SELECT id, description, amount::text, work_order_report_id
FROM invoice_line_items
WHERE invoice_id = $1
ORDER BY position ASC`
	rows, err := r.db.Query(ctx, q, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LineItem
	for rows.Next() {
		var (
			li     LineItem
			amount string
		)
		if err := rows.Scan(&li.ID, &li.Description, &amount, &li.WorkOrderReportID); err != nil {
			return nil, err
		}
		if li.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("bad line item amount %q: %w", amount, err)
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1 FOR UPDATE`
	return scanInvoice(tx.QueryRow(ctx, q, id))
}

func Create(ctx context.Context, tx pgx.Tx, inv Invoice) (*Invoice, error) {
	const q = `
INSERT INTO invoices (id, organization_id, invoice_number, invoice_date, due_date, subtotal, markup_percentage, total_amount, status)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, $8::numeric, 'draft')
RETURNING ` + invoiceColumns
	created, err := scanInvoice(tx.QueryRow(ctx, q,
		uuid.NewString(), inv.OrganizationID, inv.Number, inv.InvoiceDate, inv.DueDate,
		inv.Subtotal.String(), inv.MarkupPercentage.String(), inv.TotalAmount.String(),
	))
	if err != nil {
		return nil, err
	}

	const qItem = `
INSERT INTO invoice_line_items (id, invoice_id, position, description, amount, work_order_report_id)
VALUES ($1, $2, $3, $4, $5::numeric, $6)`
	for i, li := range inv.LineItems {
		if _, err := tx.Exec(ctx, qItem,
			uuid.NewString(), created.ID, i, li.Description, li.Amount.String(), li.WorkOrderReportID,
		); err != nil {
			return nil, err
		}
	}
	created.LineItems = inv.LineItems
	return created, nil
}

func UpdateStatus(ctx context.Context, tx pgx.Tx, id string, next Status) error {
	const q = `
UPDATE invoices
SET status = $2, updated_at = NOW()
WHERE id = $1`
	_, err := tx.Exec(ctx, q, id, string(next))
	return err
}

// ReferencedWorkOrders resolves the distinct work orders behind a set of
// report line items.
func ReferencedWorkOrders(ctx context.Context, tx pgx.Tx, reportIDs []string) ([]string, error) {
	const q = `SELECT DISTINCT work_order_id FROM work_order_reports WHERE id = ANY($1)`
	rows, err := tx.Query(ctx, q, reportIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
