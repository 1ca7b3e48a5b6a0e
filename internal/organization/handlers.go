package organization

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"workorderpro/internal/api"
)

type Handlers struct {
	Repo *Repository
	Log  *logrus.Logger
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Repo.List(r.Context())
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("list organizations")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if items == nil {
		items = []Organization{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	org, err := h.Repo.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "organization not found")
		return
	}
	members, err := h.Repo.ListMembers(r.Context(), org.ID)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("list members")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	if members == nil {
		members = []Member{}
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"organization": org, "members": members})
}

type CreateRequest struct {
	Name     string `json:"name" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=partner subcontractor internal"`
	Initials string `json:"initials" validate:"required,alphanum,max=8"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !api.DecodeJSON(w, r, &req) {
		return
	}
	typ, err := ParseType(req.Type)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		return
	}

	org, err := h.Repo.Create(r.Context(), req.Name, typ, req.Initials)
	if err != nil {
		h.Log.WithFields(logrus.Fields{"err": err}).Error("create organization")
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
		return
	}
	api.WriteJSON(w, http.StatusCreated, map[string]any{"organization": org})
}
