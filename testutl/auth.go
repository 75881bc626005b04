package testutl

import (
	"testing"
	"time"

	"github.com/mscno/collab/pkg/session"
)

// SessionSecret is the secret every test token is signed with.
const SessionSecret = "collab-test-secret"

// SessionToken configures pkg/session with SessionSecret and issues a token for userID.
func SessionToken(t testing.TB, userID string, admin bool) string {
	t.Helper()
	if err := session.Configure(SessionSecret, time.Hour); err != nil {
		t.Fatalf("configure session: %v", err)
	}
	token, _, err := session.GenerateToken(userID, admin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}
