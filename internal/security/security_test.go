package security

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, errHash := HashPassword("hunter2")
	if errHash != nil {
		t.Fatalf("expected hash ok, got %v", errHash)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	token, errSign := SignAdminToken("secret", 42, time.Hour)
	if errSign != nil {
		t.Fatalf("expected sign ok, got %v", errSign)
	}

	claims, errParse := ParseAdminToken("secret", token)
	if errParse != nil {
		t.Fatalf("expected parse ok, got %v", errParse)
	}
	if claims.AdminID != 42 {
		t.Fatalf("expected admin id 42, got %d", claims.AdminID)
	}

	if _, errParse := ParseAdminToken("wrong-secret", token); errParse == nil {
		t.Fatalf("expected parse with wrong secret to fail")
	}
}

func TestAdminTokenExpiry(t *testing.T) {
	token, errSign := SignAdminToken("secret", 42, -time.Minute)
	if errSign != nil {
		t.Fatalf("expected sign ok, got %v", errSign)
	}
	if _, errParse := ParseAdminToken("secret", token); errParse == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestSignAdminTokenEmptySecret(t *testing.T) {
	if _, errSign := SignAdminToken("", 1, time.Hour); errSign == nil {
		t.Fatalf("expected error for empty secret")
	}
}
