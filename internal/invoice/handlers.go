package invoice

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"workorderpro/internal/api"
	"workorderpro/internal/audit"
	"workorderpro/internal/notify"
	"workorderpro/internal/report"
	"workorderpro/pkg/db"
)

type Handlers struct {
	DB   *pgxpool.Pool
	Repo *Repository
	Log  *logrus.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	orgID := r.URL.Query().Get("organizationId")
	if !id.IsInternal() {
		orgID = id.OrganizationID
	}

	items, err := h.Repo.ListByOrganization(r.Context(), orgID)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("list invoices")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Invoice{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "invoice not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

type LineItemRequest struct {
	Description       string  `json:"description"`
	Amount            string  `json:"amount" validate:"required"`
	WorkOrderReportID *string `json:"workOrderReportId"`
}

type CreateRequest struct {
	OrganizationID   string            `json:"organizationId" validate:"required"`
	InvoiceDate      string            `json:"invoiceDate" validate:"required"`
	DueDate          string            `json:"dueDate" validate:"required"`
	Subtotal         string            `json:"subtotal" validate:"required"`
	MarkupPercentage string            `json:"markupPercentage" validate:"required"`
	TotalAmount      string            `json:"totalAmount" validate:"required"`
	LineItems        []LineItemRequest `json:"lineItems"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	var req CreateRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	inv, details := buildInvoice(req)
	// Pure local validation first: field-level failures never reach the
	// database.
	if len(details) == 0 {
		details = Validate(*inv)
	}
	if len(details) > 0 {
		api.WriteValidationErrors(w, details)
		return
	}

	var reportIDs []string
	for _, li := range inv.LineItems {
		if li.WorkOrderReportID != nil {
			reportIDs = append(reportIDs, *li.WorkOrderReportID)
		}
	}

	var created *Invoice
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if len(reportIDs) > 0 {
			workOrderIDs, err := ReferencedWorkOrders(r.Context(), tx, reportIDs)
			if err != nil {
				return err
			}
			for _, woID := range workOrderIDs {
				ok, err := report.AllApproved(r.Context(), tx, woID)
				if err != nil {
					return err
				}
				if !ok {
					api.WriteError(w, http.StatusConflict, "GUARD_FAILED",
						fmt.Sprintf("work order %s has reports that are not yet approved", woID))
					return pgx.ErrTxCommitRollback
				}
			}
		}

		var err error
		created, err = Create(r.Context(), tx, *inv)
		if err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, created.OrganizationID, nil, "INVOICE_CREATED", id.UserID, map[string]any{
			"invoiceId": created.ID,
			"number":    created.Number,
		})
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.Log.WithFields(logrus.Fields{"err": err}).Error("create invoice")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"invoice": created})
}

func buildInvoice(req CreateRequest) (*Invoice, []string) {
	var details []string

	invoiceDate, err := time.Parse("2006-01-02", req.InvoiceDate)
	if err != nil {
		details = append(details, "invoiceDate must be formatted YYYY-MM-DD")
	}
	dueDate, err := time.Parse("2006-01-02", req.DueDate)
	if err != nil {
		details = append(details, "dueDate must be formatted YYYY-MM-DD")
	}

	parse := func(field, v string) decimal.Decimal {
		d, err := decimal.NewFromString(v)
		if err != nil {
			details = append(details, field+" must be a number")
		}
		return d
	}
	subtotal := parse("subtotal", req.Subtotal)
	markup := parse("markupPercentage", req.MarkupPercentage)
	total := parse("totalAmount", req.TotalAmount)

	items := make([]LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		amt, err := decimal.NewFromString(li.Amount)
		if err != nil {
			details = append(details, "line item amounts must be numbers")
			continue
		}
		items = append(items, LineItem{
			Description:       li.Description,
			Amount:            amt,
			WorkOrderReportID: li.WorkOrderReportID,
		})
	}

	if len(details) > 0 {
		return nil, details
	}
	return &Invoice{
		OrganizationID:   req.OrganizationID,
		Number:           fmt.Sprintf("INV-%s-%s", invoiceDate.Format("200601"), uuid.NewString()[:8]),
		InvoiceDate:      invoiceDate,
		DueDate:          dueDate,
		Subtotal:         subtotal,
		MarkupPercentage: markup,
		TotalAmount:      total,
		LineItems:        items,
	}, nil
}

type StatusChangeRequest struct {
	NextStatus string `json:"nextStatus" validate:"required"`
}

func (h Handlers) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	var req StatusChangeRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	next, err := ParseStatus(req.NextStatus)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	invID := chi.URLParam(r, "id")
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		inv, err := GetForUpdate(r.Context(), tx, invID)
		if err != nil {
			return err
		}
		if err := ValidateStatusChange(inv.Status, next); err != nil {
			api.WriteError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
			return pgx.ErrTxCommitRollback
		}
		if err := UpdateStatus(r.Context(), tx, inv.ID, next); err != nil {
			return err
		}
		if err := audit.Insert(r.Context(), tx, inv.OrganizationID, nil, "INVOICE_STATUS_CHANGED", id.UserID, map[string]any{
			"invoiceId": inv.ID,
			"from":      inv.Status,
			"to":        next,
		}); err != nil {
			return err
		}
		if next == StatusSent {
			return notify.Enqueue(r.Context(), tx, notify.TemplateInvoiceSent, inv.ID, inv.OrganizationID)
		}
		return nil
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "invoice not found")
			return
		}
		h.Log.WithFields(logrus.Fields{"err": err}).Error("change invoice status")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
