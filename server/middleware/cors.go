package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	connectcors "connectrpc.com/cors"
	"github.com/rs/cors"
)

type corsLogger struct {
	logger *slog.Logger
}

func (c *corsLogger) Printf(format string, args ...interface{}) {
	c.logger.Debug(fmt.Sprintf("CORS: %s", fmt.Sprintf(format, args...)))
}

// WithCORS allows browser clients from origins to call both the Connect and REST
// routes. An empty list allows every origin.
func WithCORS(logger *slog.Logger, origins ...string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return func(h http.Handler) http.Handler {
		middleware := cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: connectcors.AllowedMethods(),
			AllowedHeaders: append(connectcors.AllowedHeaders(), "Authorization"),
			ExposedHeaders: connectcors.ExposedHeaders(),
			Logger:         &corsLogger{logger: logger},
		})
		return middleware.Handler(h)
	}
}
