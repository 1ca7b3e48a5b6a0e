// Package notify is the outbound email boundary. Rows carry record
// identifiers and template names only; an external sender renders and
// delivers them by draining the queue.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	TemplateWorkOrderCreated = "work_order_created"
	TemplateReportSubmitted  = "report_submitted"
	TemplateReportReviewed   = "report_reviewed"
	TemplateInvoiceSent      = "invoice_sent"
)

// Enqueue inserts a pending email inside the caller's transaction; the row
// only exists if the triggering mutation commits.
func Enqueue(ctx context.Context, tx pgx.Tx, templateName, recordID, recipientOrgID string) error {
	const q = `
INSERT INTO email_queue (id, template_name, record_id, recipient_organization_id, status)
VALUES ($1, $2, $3, $4, 'pending')
`
	_, err := tx.Exec(ctx, q, uuid.NewString(), templateName, recordID, recipientOrgID)
	return err
}
