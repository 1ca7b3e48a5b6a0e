package workorder

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"workorderpro/internal/api"
	"workorderpro/internal/audit"
	"workorderpro/internal/notify"
	"workorderpro/pkg/db"
)

type Handlers struct {
	DB     *pgxpool.Pool
	Repo   *Repository
	Engine *Engine
	Audits *audit.Repository
	Log    *logrus.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	f := ListFilter{Status: r.URL.Query().Get("status")}
	switch id.Role {
	case "partner":
		f.OrganizationID = id.OrganizationID
	case "subcontractor":
		f.AssignedOrganizationID = id.OrganizationID
	default:
		f.OrganizationID = r.URL.Query().Get("organizationId")
	}

	items, err := h.Repo.List(r.Context(), f)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("list work orders")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []WorkOrder{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	wo, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"workOrder": wo})
}

type CreateRequest struct {
	OrganizationID string `json:"organizationId"`
	LocationCode   string `json:"locationCode" validate:"required"`
	Title          string `json:"title" validate:"required"`
	Description    string `json:"description"`
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
	// Partners always submit against their own organization.
	if id.Role == "partner" || req.OrganizationID == "" {
		req.OrganizationID = id.OrganizationID
	}
	if req.OrganizationID == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing organizationId")
		return
	}

	num, err := h.Engine.GenerateNumber(r.Context(), req.OrganizationID, req.LocationCode)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"org": req.OrganizationID, "err": err}).Error("number generation failed")
		api.WriteError(w, http.StatusBadGateway, "REMOTE_ERROR", "work order number generation failed")
		return
	}
	if num.IsFallback {
		h.Log.WithFields(logrus.Fields{"org": req.OrganizationID, "number": num.Number}).Warn(num.Warning)
	}

	var wo *WorkOrder
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		wo, err = Create(r.Context(), tx, CreateParams{
			OrganizationID: req.OrganizationID,
			Number:         num.Number,
			LocationCode:   req.LocationCode,
			Title:          req.Title,
			Description:    req.Description,
			CreatedBy:      id.UserID,
		})
		if err != nil {
			return err
		}
		if err := audit.Insert(r.Context(), tx, wo.OrganizationID, &wo.ID, "WORK_ORDER_CREATED", id.UserID, map[string]any{
			"number":     wo.Number,
			"isFallback": num.IsFallback,
		}); err != nil {
			return err
		}
		return notify.Enqueue(r.Context(), tx, notify.TemplateWorkOrderCreated, wo.ID, wo.OrganizationID)
	})
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("create work order")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}

	api.WriteJSON(w, http.StatusCreated, map[string]any{"workOrder": wo, "numbering": num})
}

type TransitionHTTPRequest struct {
	CurrentStatus string `json:"currentStatus" validate:"required"`
	NextStatus    string `json:"nextStatus" validate:"required"`
	Reason        string `json:"reason"`
}

func (h Handlers) Transition(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req TransitionHTTPRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	current, err := ParseStatus(req.CurrentStatus)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}
	next, err := ParseStatus(req.NextStatus)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	res, err := h.Engine.RequestTransition(r.Context(), TransitionRequest{
		WorkOrderID:   chi.URLParam(r, "id"),
		CurrentStatus: current,
		NextStatus:    next,
		Reason:        req.Reason,
		UserID:        id.UserID,
	})
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	if !res.Success {
		// Authoritative rejection: the procedure saw something the advisory
		// check did not. The caller refetches and retries manually.
		api.WriteError(w, http.StatusConflict, "TRANSITION_REJECTED", res.Message)
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h Handlers) writeTransitionError(w http.ResponseWriter, err error) {
	var (
		invalid *InvalidTransitionError
		guard   *GuardError
		stale   *StaleStateError
		remote  *RemoteError
	)
	switch {
	case errors.As(err, &invalid):
		api.WriteError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.As(err, &guard):
		api.WriteError(w, http.StatusConflict, "GUARD_FAILED", err.Error())
	case errors.As(err, &stale):
		api.WriteError(w, http.StatusConflict, "STALE_STATE", err.Error())
	case errors.As(err, &remote):
		h.Log.WithFields(logrus.Fields{"err": err}).Error("transition procedure failed")
		api.WriteError(w, http.StatusBadGateway, "REMOTE_ERROR", "status transition procedure failed")
	case errors.Is(err, pgx.ErrNoRows):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
	default:
		h.Log.WithFields(logrus.Fields{"err": err}).Error("transition failed")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

type AssignRequest struct {
	AssignedOrganizationID string `json:"assignedOrganizationId" validate:"required"`
}

func (h Handlers) Assign(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	var req AssignRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	woID := chi.URLParam(r, "id")
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		wo, err := GetForUpdate(r.Context(), tx, woID)
		if err != nil {
			return err
		}
		if IsTerminal(wo.Status) {
			return &InvalidTransitionError{From: wo.Status, To: StatusAssigned}
		}
		if err := Assign(r.Context(), tx, wo.ID, req.AssignedOrganizationID); err != nil {
			return err
		}
		if err := audit.Insert(r.Context(), tx, wo.OrganizationID, &wo.ID, "WORK_ORDER_ASSIGNED", id.UserID, map[string]any{
			"assignedOrganizationId": req.AssignedOrganizationID,
		}); err != nil {
			return err
		}

		// A fresh work order moves to assigned through the same authority as
		// every other transition.
		if wo.Status == StatusReceived {
			res, err := h.Engine.Procs.TransitionWorkOrderStatus(r.Context(), tx, wo.ID, StatusAssigned, "assigned to organization", id.UserID)
			if err != nil {
				return &RemoteError{Op: "transition_work_order_status", Err: err}
			}
			if !res.Success {
				return &GuardError{Reason: res.Message}
			}
		}
		return nil
	})
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type EstimateRequest struct {
	Amount string `json:"amount" validate:"required"`
}

func (h Handlers) SetEstimate(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	var req EstimateRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	amt, err := decimal.NewFromString(req.Amount)
	if err != nil || amt.LessThanOrEqual(decimal.Zero) {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "amount must be a positive number")
		return
	}

	woID := chi.URLParam(r, "id")
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		wo, err := GetForUpdate(r.Context(), tx, woID)
		if err != nil {
			return err
		}
		if IsTerminal(wo.Status) {
			api.WriteError(w, http.StatusConflict, "INVALID_TRANSITION", "work order is closed")
			return pgx.ErrTxCommitRollback
		}
		if err := SetEstimate(r.Context(), tx, wo.ID, amt.StringFixed(2)); err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, wo.OrganizationID, &wo.ID, "ESTIMATE_RECORDED", id.UserID, map[string]any{
			"amount": amt.StringFixed(2),
		})
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.writeEstimateError(w, "set estimate", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type EstimateApprovalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

func (h Handlers) ApproveEstimate(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	var req EstimateApprovalRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	woID := chi.URLParam(r, "id")
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		wo, err := GetForUpdate(r.Context(), tx, woID)
		if err != nil {
			return err
		}
		if wo.EstimateAmount == nil {
			api.WriteError(w, http.StatusConflict, "GUARD_FAILED", "no estimate recorded for this work order")
			return pgx.ErrTxCommitRollback
		}
		if err := SetEstimateApproval(r.Context(), tx, wo.ID, *req.Approved); err != nil {
			return err
		}
		return audit.Insert(r.Context(), tx, wo.OrganizationID, &wo.ID, "ESTIMATE_APPROVAL", id.UserID, map[string]any{
			"approved": *req.Approved,
		})
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		h.writeEstimateError(w, "estimate approval", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeEstimateError keeps 404 for a missing row only; any other transaction
// failure is logged and reported as a server error.
func (h Handlers) writeEstimateError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
		return
	}
	h.Log.WithFields(logrus.Fields{"err": err}).Error(op)
	api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func (h Handlers) AuditTrail(w http.ResponseWriter, r *http.Request) {
	woID := chi.URLParam(r, "id")
	if _, err := h.Repo.GetByID(r.Context(), woID); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
		return
	}
	entries, err := h.Audits.ListByWorkOrder(r.Context(), woID)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("list audit trail")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": entries})
}

func (h Handlers) FixExistingNumbers(w http.ResponseWriter, r *http.Request) {
	res, err := h.Engine.FixExistingNumbers(r.Context())
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("fix existing numbers")
		api.WriteError(w, http.StatusBadGateway, "REMOTE_ERROR", "numbering repair procedure failed")
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}

func (h Handlers) FixSequenceNumbers(w http.ResponseWriter, r *http.Request) {
	res, err := h.Engine.FixSequenceNumbers(r.Context())
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("fix sequence numbers")
		api.WriteError(w, http.StatusBadGateway, "REMOTE_ERROR", "numbering repair procedure failed")
		return
	}
	api.WriteJSON(w, http.StatusOK, res)
}
