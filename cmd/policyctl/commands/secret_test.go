package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestSecretCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"secret"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("secret command returned error: %v", err)
	}

	secret := strings.TrimSpace(out.String())
	if !strings.HasPrefix(secret, "whsec_") {
		t.Errorf("expected a whsec_ secret, got %q", secret)
	}
	if len(secret) <= len("whsec_") {
		t.Error("expected a non-empty secret body")
	}
}
