package testutil

import (
	"testing"

	"github.com/gabbymorgan/drivefair.api/services"
)

// SessionToken issues a signed session token for the given actor.
// The auth service must be initialized before calling this.
func SessionToken(t *testing.T, actorID uint, role string) string {
	t.Helper()

	token, err := services.GetAuthService().IssueSessionToken(actorID, role)
	if err != nil {
		t.Fatalf("Failed to issue session token: %v", err)
	}
	return token
}
