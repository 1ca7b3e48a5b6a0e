package report

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"workorderpro/internal/api"
	"workorderpro/internal/audit"
	"workorderpro/internal/notify"
	"workorderpro/internal/workorder"
	"workorderpro/pkg/db"
)

type Handlers struct {
	DB   *pgxpool.Pool
	Repo *Repository
	Log  *logrus.Logger
}

func (h Handlers) ListByWorkOrder(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.ListByWorkOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("list reports")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Report{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type SubmitRequest struct {
	WorkPerformed string  `json:"workPerformed" validate:"required"`
	HoursWorked   *string `json:"hoursWorked"`
	MaterialsCost *string `json:"materialsCost"`
	BillAmount    *string `json:"billAmount"`
}

func (h Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}

	var req SubmitRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}

	woID := chi.URLParam(r, "id")
	var rep *Report
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		wo, err := workorder.GetForUpdate(r.Context(), tx, woID)
		if err != nil {
			return err
		}
		if workorder.IsTerminal(wo.Status) && wo.Status != workorder.StatusCompleted {
			api.WriteError(w, http.StatusConflict, "INVALID_TRANSITION", "cannot report against a cancelled work order")
			return pgx.ErrTxCommitRollback
		}

		rep, err = Insert(r.Context(), tx, SubmitParams{
			WorkOrderID:   wo.ID,
			SubmittedBy:   id.UserID,
			WorkPerformed: req.WorkPerformed,
			HoursWorked:   req.HoursWorked,
			MaterialsCost: req.MaterialsCost,
			BillAmount:    req.BillAmount,
		})
		if err != nil {
			return err
		}
		if err := audit.Insert(r.Context(), tx, wo.OrganizationID, &wo.ID, "REPORT_SUBMITTED", id.UserID, map[string]any{
			"reportId": rep.ID,
		}); err != nil {
			return err
		}
		return notify.Enqueue(r.Context(), tx, notify.TemplateReportSubmitted, rep.ID, wo.OrganizationID)
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "work order not found")
			return
		}
		h.Log.WithFields(logrus.Fields{"err": err}).Error("submit report")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"report": rep})
}

type ReviewRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"`
}

func (h Handlers) Review(w http.ResponseWriter, r *http.Request) {
	id := api.IdentityFromContext(r.Context())
	if id == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
		return
	}
	var req ReviewRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	next, err := ParseStatus(req.Status)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	repID := chi.URLParam(r, "id")
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		rep, err := GetForUpdate(r.Context(), tx, repID)
		if err != nil {
			return err
		}
		wo, err := workorder.GetForUpdate(r.Context(), tx, rep.WorkOrderID)
		if err != nil {
			return err
		}

		if err := CheckReview(rep.Status, next, wo.Status); err != nil {
			var guard *workorder.GuardError
			if errors.As(err, &guard) {
				api.WriteError(w, http.StatusConflict, "GUARD_FAILED", err.Error())
			} else {
				api.WriteError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
			}
			return pgx.ErrTxCommitRollback
		}

		if err := UpdateStatus(r.Context(), tx, rep.ID, next, req.Notes); err != nil {
			return err
		}
		if err := audit.Insert(r.Context(), tx, wo.OrganizationID, &wo.ID, "REPORT_REVIEWED", id.UserID, map[string]any{
			"reportId": rep.ID,
			"from":     rep.Status,
			"to":       next,
		}); err != nil {
			return err
		}
		return notify.Enqueue(r.Context(), tx, notify.TemplateReportReviewed, rep.ID, wo.OrganizationID)
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "report not found")
			return
		}
		h.Log.WithFields(logrus.Fields{"err": err}).Error("review report")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
