package identity

import (
	"fmt"

	"github.com/google/uuid"
)

// Identity names the owner of a basket, favorite list, or order: either a
// signed-in user or an anonymous browser session. It replaces the legacy
// convention of a single string field that was sometimes an email and
// sometimes a session id.
type Identity struct {
	userID    uuid.UUID
	email     string
	sessionID string
}

// Authenticated builds an identity for a signed-in user.
func Authenticated(userID uuid.UUID, email string) Identity {
	return Identity{userID: userID, email: email}
}

// Anonymous builds an identity for a browser session.
func Anonymous(sessionID string) Identity {
	return Identity{sessionID: sessionID}
}

// IsAuthenticated reports whether the identity belongs to a signed-in user.
func (i Identity) IsAuthenticated() bool {
	return i.userID != uuid.Nil
}

// IsZero reports whether no identity was resolved at all.
func (i Identity) IsZero() bool {
	return i.userID == uuid.Nil && i.sessionID == ""
}

// UserID returns the user id for authenticated identities, uuid.Nil otherwise.
func (i Identity) UserID() uuid.UUID {
	return i.userID
}

// Email returns the email for authenticated identities.
func (i Identity) Email() string {
	return i.email
}

// SessionID returns the anonymous session id, empty for authenticated identities.
func (i Identity) SessionID() string {
	return i.sessionID
}

// Key returns the stable storage key rows are scoped by.
func (i Identity) Key() string {
	if i.IsAuthenticated() {
		return "user:" + i.userID.String()
	}
	return "session:" + i.sessionID
}

// String implements fmt.Stringer for log output.
func (i Identity) String() string {
	if i.IsAuthenticated() {
		return fmt.Sprintf("user(%s)", i.userID)
	}
	return fmt.Sprintf("anonymous(%s)", i.sessionID)
}
