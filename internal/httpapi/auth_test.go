package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"workorderpro/internal/auth"
	"workorderpro/pkg/config"
)

func mintConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			Mode:      "token",
			JWTSecret: "test_secret",
			TokenTTL:  time.Hour,
		},
	}
}

func TestMintToken_IssuesVerifiableSession(t *testing.T) {
	cfg := mintConfig()
	handler := mintTokenHandler(cfg)

	body := `{"userId":"b4f7c2a0-0000-0000-0000-000000000001","organizationId":"org-1","role":"partner"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/tokens", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ExpiresIn != 3600 {
		t.Fatalf("expected expiresIn=3600, got %d", resp.ExpiresIn)
	}

	id, err := auth.VerifySessionToken(cfg.Auth.JWTSecret, resp.Token, time.Now())
	if err != nil {
		t.Fatalf("minted token did not verify: %v", err)
	}
	if id.UserID != "b4f7c2a0-0000-0000-0000-000000000001" || id.OrganizationID != "org-1" || id.Role != "partner" {
		t.Fatalf("identity mismatch: %+v", id)
	}
}

func TestMintToken_RejectsUnknownRole(t *testing.T) {
	handler := mintTokenHandler(mintConfig())

	body := `{"userId":"user-1","role":"superadmin"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/tokens", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMintToken_MissingSecret(t *testing.T) {
	cfg := mintConfig()
	cfg.Auth.JWTSecret = ""
	handler := mintTokenHandler(cfg)

	body := `{"userId":"user-1","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/tokens", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
}
