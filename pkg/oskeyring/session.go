package oskeyring

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	ServiceName = "collab"

	sessionTokenKey  = "session_token"
	sessionExpiryKey = "session_expiry"
)

var ErrSessionExpired = errors.New("session expired")

// SaveSession stores a session token and its expiry (unix seconds).
func SaveSession(svc Service, token string, expiresAt int64) error {
	if err := svc.Set(ServiceName, sessionTokenKey, token); err != nil {
		return err
	}
	return svc.Set(ServiceName, sessionExpiryKey, strconv.FormatInt(expiresAt, 10))
}

// LoadSession returns the stored token. An expired session is removed and reported
// as ErrSessionExpired; a missing one as ErrNotFound.
func LoadSession(svc Service, now time.Time) (string, error) {
	token, err := svc.Get(ServiceName, sessionTokenKey)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotFound
	}
	expiry, err := svc.Get(ServiceName, sessionExpiryKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", err
	}
	if expiry != "" {
		unix, err := strconv.ParseInt(expiry, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid session expiry %q: %w", expiry, err)
		}
		if now.Unix() > unix {
			_ = ClearSession(svc)
			return "", ErrSessionExpired
		}
	}
	return token, nil
}

func ClearSession(svc Service) error {
	if err := svc.Delete(ServiceName, sessionTokenKey); err != nil {
		return err
	}
	return svc.Delete(ServiceName, sessionExpiryKey)
}
