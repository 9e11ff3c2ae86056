package utils

import (
	"testing"
)

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate(7, ScopeAdmin)
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok {
		t.Fatalf("claims type = %T, want *JwtCustomClaim", parsed.Claims)
	}
	if claim.UserID != 7 {
		t.Errorf("UserID = %d, want 7", claim.UserID)
	}
	if claim.Scope != ScopeAdmin {
		t.Errorf("Scope = %q, want %q", claim.Scope, ScopeAdmin)
	}
	if claim.IsService() {
		t.Error("admin token reported as service scoped")
	}
}

func TestJwtServiceScope(t *testing.T) {
	token, err := JwtGenerate(0, ScopeService)
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	parsed, err := JwtValidate(token)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	claim := parsed.Claims.(*JwtCustomClaim)
	if !claim.IsService() {
		t.Error("service token not recognized as service scoped")
	}
}

func TestJwtValidateRejectsGarbage(t *testing.T) {
	if _, err := JwtValidate("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}

	var nilClaim *JwtCustomClaim
	if nilClaim.IsService() {
		t.Error("nil claim reported as service scoped")
	}
}
