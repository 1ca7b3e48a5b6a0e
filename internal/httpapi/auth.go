package httpapi

import (
	"net/http"
	"time"

	"workorderpro/internal/api"
	"workorderpro/internal/auth"
	"workorderpro/pkg/config"
)

type mintTokenRequest struct {
	UserID         string `json:"userId" validate:"required"`
	OrganizationID string `json:"organizationId"`
	Role           string `json:"role" validate:"required,oneof=admin employee partner subcontractor"`
}

// mintTokenHandler issues portal session tokens for a user an internal caller
// vouches for. Partner and subcontractor frontends exchange these at login.
func mintTokenHandler(cfg config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mintTokenRequest
		if !api.DecodeJSON(w, r, &req) {
			return
		}

		tok, err := auth.SignSessionToken(cfg.Auth.JWTSecret, auth.Identity{
			UserID:         req.UserID,
			OrganizationID: req.OrganizationID,
			Role:           req.Role,
		}, cfg.Auth.TokenTTL, time.Now())
		if err != nil {
			api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not sign session token")
			return
		}

		api.WriteJSON(w, http.StatusOK, map[string]any{
			"token":     tok,
			"expiresIn": int64(cfg.Auth.TokenTTL.Seconds()),
		})
	}
}
