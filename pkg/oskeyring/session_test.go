package oskeyring

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestSession_RoundTrip(t *testing.T) {
	svc := NewMemoryService()
	now := time.Unix(1_700_000_000, 0)

	_, err := LoadSession(svc, now)
	assert.IsError(t, err, ErrNotFound)

	assert.NoError(t, SaveSession(svc, "tok", now.Add(time.Hour).Unix()))
	token, err := LoadSession(svc, now)
	assert.NoError(t, err)
	assert.Equal(t, "tok", token)

	assert.NoError(t, ClearSession(svc))
	_, err = LoadSession(svc, now)
	assert.IsError(t, err, ErrNotFound)
}

func TestSession_ExpiredIsCleared(t *testing.T) {
	svc := NewMemoryService()
	now := time.Unix(1_700_000_000, 0)
	assert.NoError(t, SaveSession(svc, "tok", now.Add(-time.Second).Unix()))

	_, err := LoadSession(svc, now)
	assert.IsError(t, err, ErrSessionExpired)

	_, err = svc.Get(ServiceName, sessionTokenKey)
	assert.IsError(t, err, ErrNotFound)
}
