package auth

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	tok, err := SignSessionToken(secret, Identity{
		UserID:         "user-1",
		OrganizationID: "org-1",
		Role:           "partner",
	}, time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	got, err := VerifySessionToken(secret, tok, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.UserID != "user-1" || got.OrganizationID != "org-1" || got.Role != "partner" {
		t.Fatalf("identity mismatch: %+v", got)
	}
}

func TestVerifySessionToken_Expired(t *testing.T) {
	secret := "test_secret"
	now := time.Unix(1700000000, 0)

	tok, err := SignSessionToken(secret, Identity{UserID: "user-1"}, time.Minute, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := VerifySessionToken(secret, tok, now.Add(2*time.Minute)); err == nil {
		t.Fatalf("expected expiry error")
	}
}

func TestVerifySessionToken_WrongSecret(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tok, err := SignSessionToken("secret-a", Identity{UserID: "user-1"}, time.Hour, now)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := VerifySessionToken("secret-b", tok, now); err == nil {
		t.Fatalf("expected signature error")
	}
}
