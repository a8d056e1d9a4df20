package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestAuthenticatedIdentity(t *testing.T) {
	userID := uuid.New()
	id := Authenticated(userID, "buyer@example.com")

	if !id.IsAuthenticated() {
		t.Fatal("expected authenticated identity")
	}
	if id.IsZero() {
		t.Fatal("authenticated identity must not be zero")
	}
	if id.Key() != "user:"+userID.String() {
		t.Fatalf("unexpected key %s", id.Key())
	}
	if id.Email() != "buyer@example.com" {
		t.Fatalf("unexpected email %s", id.Email())
	}
}

func TestAnonymousIdentity(t *testing.T) {
	id := Anonymous("sess-abc")

	if id.IsAuthenticated() {
		t.Fatal("expected anonymous identity")
	}
	if id.Key() != "session:sess-abc" {
		t.Fatalf("unexpected key %s", id.Key())
	}
	if id.SessionID() != "sess-abc" {
		t.Fatalf("unexpected session id %s", id.SessionID())
	}
}

func TestZeroIdentity(t *testing.T) {
	var id Identity
	if !id.IsZero() {
		t.Fatal("expected zero identity")
	}
}
