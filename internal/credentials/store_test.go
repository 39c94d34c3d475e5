package credentials

import (
	"testing"

	"github.com/zalando/go-keyring"
)

func TestStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if token, err := store.Token(); err != nil || token != "" {
		t.Fatalf("expected no token before login, got %q err=%v", token, err)
	}

	if err := store.SetToken("tok_abc"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "tok_abc" {
		t.Fatalf("token = %q, want tok_abc", token)
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	if token, err := store.Token(); err != nil || token != "" {
		t.Fatalf("expected no token after logout, got %q err=%v", token, err)
	}
}

func TestEnvOverrideWins(t *testing.T) {
	keyring.MockInit()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SetToken("stored"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	t.Setenv(TokenEnv, "from-env")

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "from-env" {
		t.Fatalf("token = %q, want env override", token)
	}
}

func TestSetTokenRejectsEmpty(t *testing.T) {
	keyring.MockInit()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.SetToken("   "); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
