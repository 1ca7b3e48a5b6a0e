package invoice

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validInvoice() Invoice {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return Invoice{
		InvoiceDate:      date,
		DueDate:          date.AddDate(0, 0, 30),
		Subtotal:         decimal.RequireFromString("100"),
		MarkupPercentage: decimal.RequireFromString("10"),
		TotalAmount:      decimal.RequireFromString("110.00"),
		LineItems: []LineItem{
			{Description: "plumbing repair", Amount: decimal.RequireFromString("100")},
		},
	}
}

func TestValidate_AcceptsValidInvoice(t *testing.T) {
	if errs := Validate(validInvoice()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidate_TotalTolerance(t *testing.T) {
	cases := []struct {
		total string
		ok    bool
	}{
		{"110.00", true},
		{"110.005", true},
		{"110.01", true},
		{"109.99", true},
		{"109.98", false},
		{"110.02", false},
		{"120.00", false},
	}
	for _, tc := range cases {
		inv := validInvoice()
		inv.TotalAmount = decimal.RequireFromString(tc.total)
		errs := Validate(inv)
		if tc.ok && len(errs) != 0 {
			t.Errorf("total %s: expected valid, got %v", tc.total, errs)
		}
		if !tc.ok && len(errs) == 0 {
			t.Errorf("total %s: expected a mismatch error", tc.total)
		}
	}
}

func TestValidate_EmptyLineItems(t *testing.T) {
	inv := validInvoice()
	inv.LineItems = nil

	errs := Validate(inv)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "at least one line item") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an 'at least one line item' error, got %v", errs)
	}
}

func TestValidate_LineItemErrorsUseOneBasedIndex(t *testing.T) {
	inv := validInvoice()
	inv.LineItems = []LineItem{
		{Description: "labor", Amount: decimal.RequireFromString("50")},
		{Description: "materials", Amount: decimal.Zero},
	}
	// Keep totals consistent so only the line item fails.
	inv.Subtotal = decimal.RequireFromString("50")
	inv.TotalAmount = decimal.RequireFromString("55.00")

	errs := Validate(inv)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "line item 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an error referencing line item 2, got %v", errs)
	}
}

func TestValidate_MissingDescription(t *testing.T) {
	inv := validInvoice()
	inv.LineItems[0].Description = "   "

	errs := Validate(inv)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "line item 1") && strings.Contains(e, "description") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a description error for line item 1, got %v", errs)
	}
}

func TestValidate_DueDateBeforeInvoiceDate(t *testing.T) {
	inv := validInvoice()
	inv.DueDate = inv.InvoiceDate.AddDate(0, 0, -1)

	errs := Validate(inv)
	found := false
	for _, e := range errs {
		if strings.Contains(e, "due date") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a due date error, got %v", errs)
	}
}

func TestValidate_DueDateEqualInvoiceDate(t *testing.T) {
	inv := validInvoice()
	inv.DueDate = inv.InvoiceDate

	for _, e := range Validate(inv) {
		if strings.Contains(e, "due date") {
			t.Fatalf("equal dates must be accepted: %v", e)
		}
	}
}
