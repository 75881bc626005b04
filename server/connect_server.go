package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-michi/michi"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	maxHeaderBytes    = 1 << 20
	readTimeout       = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 2 * time.Minute
)

// Shutdown gracefully stops the server
func (c *ConnectServer) Shutdown(ctx context.Context) error {
	c.logger.Debug("shutting down server")
	if err := c.Server.Shutdown(ctx); err != nil {
		c.logger.Error("error shutting down server", "error", err)
		return err
	}
	return nil
}

// ListenAndServe serves on addr until Shutdown is called.
func (c *ConnectServer) ListenAndServe(addr string) error {
	c.Server.Addr = addr
	c.logger.Info("listening", "addr", addr)
	if err := c.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// ServeHTTP implements the http.Handler interface
func (c *ConnectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.Server.Handler.ServeHTTP(w, r)
}

// Handle registers a Connect procedure handler.
func (c *ConnectServer) Handle(path string, handler http.Handler) {
	c.routesAdded = true
	c.ServeMux.Handle(path, handler)
}

// fallbackHandler routes requests either to the mux (for Connect) or the REST router
type fallbackHandler struct {
	mux        *http.ServeMux
	router     *michi.Router
	h2cHandler http.Handler
}

func (m *fallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := m.mux.Handler(r); pattern != "" {
		m.h2cHandler.ServeHTTP(w, r)
	} else {
		m.router.ServeHTTP(w, r)
	}
}

// ConnectServer serves Connect procedures over HTTP/1.1 and h2c and falls back to a
// michi router for plain REST routes. Middleware wraps both.
type ConnectServer struct {
	ServeMux *http.ServeMux
	Server   *http.Server
	Router   *michi.Router

	logger      *slog.Logger
	middleware  []func(http.Handler) http.Handler
	fbHandler   *fallbackHandler
	routesAdded bool
}

// NewConnectServer creates a new ConnectServer instance
func NewConnectServer(logger *slog.Logger) *ConnectServer {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	router := michi.NewRouter()
	h2cHandler := h2c.NewHandler(mux, &http2.Server{})

	fbHandler := &fallbackHandler{
		mux:        mux,
		router:     router,
		h2cHandler: h2cHandler,
	}

	server := &http.Server{
		Handler:           fbHandler,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &ConnectServer{
		ServeMux:   mux,
		Server:     server,
		Router:     router,
		logger:     logger,
		middleware: []func(http.Handler) http.Handler{},
		fbHandler:  fbHandler,
	}
}

// Use adds middleware to the server. The first middleware added is the outermost.
func (s *ConnectServer) Use(mw ...func(http.Handler) http.Handler) {
	if s.routesAdded {
		panic("cannot add middleware after routes are registered")
	}
	s.middleware = append(s.middleware, mw...)
	s.rebuildHandlerChain()
}

func (s *ConnectServer) rebuildHandlerChain() {
	var handler http.Handler = s.fbHandler
	s.Server.Handler = applyMiddleware(handler, s.middleware...)
}

func applyMiddleware(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
