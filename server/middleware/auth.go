package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mscno/collab/pkg/session"
	"github.com/mscno/collab/server/model"
)

type actorKey struct{}

// ActorFrom returns the authenticated caller stored by WithSessionAuth.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok && actor.UserID != ""
}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// SessionValidator turns a bearer token into the actor it was issued to.
type SessionValidator func(ctx context.Context, token string) (model.Actor, bool)

// WithSessionAuth adds the caller to the request context when a valid session token
// is presented. Requests without one proceed anonymously; handlers decide whether
// they need an actor.
func WithSessionAuth(validate SessionValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if token := extractBearerToken(r.Header.Get("Authorization")); token != "" {
				if actor, ok := validate(ctx, token); ok {
					ctx = WithActor(ctx, actor)
					logger.DebugContext(ctx, "session authenticated", "user_id", actor.UserID, "admin", actor.Admin)
				} else {
					logger.WarnContext(ctx, "invalid session token presented", "remote_addr", r.RemoteAddr)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DefaultSessionValidator uses pkg/session to validate JWTs.
func DefaultSessionValidator(ctx context.Context, token string) (model.Actor, bool) {
	claims, err := session.ValidateToken(token)
	if err != nil {
		slog.DebugContext(ctx, "session token validation failed", "error", err)
		return model.Actor{}, false
	}
	return model.Actor{UserID: model.UserID(claims.UserID), Admin: claims.Admin}, true
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
