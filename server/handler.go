package server

import (
	"net/http"

	json "github.com/dustin/gojson"
	"github.com/mscno/collab/server/middleware"
	"github.com/mscno/collab/server/model"
)

// registerRoutes adds the plain REST read routes. They share the session middleware
// with the Connect procedures.
func (s *Server) registerRoutes(cs *ConnectServer) {
	cs.Router.Handle("GET /healthz", http.HandlerFunc(s.Healthz))
	cs.Router.Handle("GET /api/v1/users/{id}/partnerships", http.HandlerFunc(s.UserPartnerships))
	cs.Router.Handle("GET /api/v1/admin/pending", http.HandlerFunc(s.AdminPending))
}

func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// UserPartnerships serves the reconciled partner list of the user in the path.
func (s *Server) UserPartnerships(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		s.writeError(w, r, errNoSession)
		return
	}
	views, err := s.engine.ListPartnerships(r.Context(), actor, model.UserID(r.PathValue("id")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if views == nil {
		views = []model.PartnershipView{}
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"partnerships": views})
}

func (s *Server) AdminPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		s.writeError(w, r, errNoSession)
		return
	}
	pending, err := s.engine.PendingApprovalsForAdmin(r.Context(), actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, pending)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, r, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}
