package webhook

import (
	"strings"
	"testing"
)

func TestComputeHMAC(t *testing.T) {
	payload := []byte(`{"event":"rule.updated"}`)

	sig := ComputeHMAC(payload, "whsec_test")
	if !strings.HasPrefix(sig, "sha256=") {
		t.Errorf("expected sha256= prefix, got %s", sig)
	}
	if sig != ComputeHMAC(payload, "whsec_test") {
		t.Error("expected deterministic signature for same payload and secret")
	}
	if sig == ComputeHMAC(payload, "whsec_other") {
		t.Error("expected different signature for different secret")
	}
}

func TestVerifySignature(t *testing.T) {
	payload := []byte(`{"event":"expense.flagged"}`)
	sig := ComputeHMAC(payload, "whsec_test")

	if !VerifySignature(payload, sig, "whsec_test") {
		t.Error("expected valid signature to verify")
	}
	if VerifySignature(payload, sig, "whsec_wrong") {
		t.Error("expected wrong secret to fail verification")
	}
	if VerifySignature([]byte(`tampered`), sig, "whsec_test") {
		t.Error("expected tampered payload to fail verification")
	}
}

func TestGenerateSecret(t *testing.T) {
	a, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() returned error: %v", err)
	}
	if !strings.HasPrefix(a, "whsec_") {
		t.Errorf("expected whsec_ prefix, got %s", a)
	}
	b, err := GenerateSecret()
	if err != nil {
		t.Fatalf("GenerateSecret() returned error: %v", err)
	}
	if a == b {
		t.Error("expected unique secrets")
	}
}
