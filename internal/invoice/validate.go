package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID                string          `json:"id,omitempty"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	WorkOrderReportID *string         `json:"workOrderReportId,omitempty"`
}

type Invoice struct {
	ID               string          `json:"id"`
	OrganizationID   string          `json:"organizationId"`
	Number           string          `json:"invoiceNumber"`
	InvoiceDate      time.Time       `json:"invoiceDate"`
	DueDate          time.Time       `json:"dueDate"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	MarkupPercentage decimal.Decimal `json:"markupPercentage"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           Status          `json:"status"`
	LineItems        []LineItem      `json:"lineItems"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

var amountTolerance = decimal.RequireFromString("0.01")

// ExpectedTotal is subtotal grossed up by the markup percentage.
func ExpectedTotal(subtotal, markupPercentage decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(decimal.NewFromInt(100).Add(markupPercentage)).Div(decimal.NewFromInt(100))
}

// Validate returns human-readable problems; an empty slice means the invoice
// is valid. No side effects and no network round-trip.
func Validate(inv Invoice) []string {
	var errs []string

	if inv.DueDate.Before(inv.InvoiceDate) {
		errs = append(errs, "due date must be on or after the invoice date")
	}

	expected := ExpectedTotal(inv.Subtotal, inv.MarkupPercentage)
	if inv.TotalAmount.Sub(expected).Abs().GreaterThan(amountTolerance) {
		errs = append(errs, fmt.Sprintf(
			"total amount %s does not match subtotal plus markup (expected %s)",
			inv.TotalAmount.String(), expected.StringFixed(2),
		))
	}

	if len(inv.LineItems) == 0 {
		errs = append(errs, "invoice must contain at least one line item")
	}
	for i, li := range inv.LineItems {
		if strings.TrimSpace(li.Description) == "" {
			errs = append(errs, fmt.Sprintf("line item %d: description is required", i+1))
		}
		if li.Amount.LessThanOrEqual(decimal.Zero) {
			errs = append(errs, fmt.Sprintf("line item %d: amount must be greater than zero", i+1))
		}
	}

	return errs
}
