// Package web is the read-only admin API: session login and the stats and
// group listings behind it.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"promo-bot/internal/infra/logging"
	"promo-bot/internal/usecase"
)

type Server struct {
	statsUC usecase.StatsUseCase
	groupUC usecase.GroupUseCase
	apiKey  string
	auth    *AuthManager
	log     *zerolog.Logger
}

// NewServer builds the admin API. With an empty apiKey or a nil auth every
// login is refused and every protected route answers 401.
func NewServer(statsUC usecase.StatsUseCase, groupUC usecase.GroupUseCase, apiKey string, auth *AuthManager, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "AdminAPI").Logger()
	return &Server{statsUC: statsUC, groupUC: groupUC, apiKey: apiKey, auth: auth, log: &l}
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
		r.With(s.requireSession).Get("/stats", statsHandler(s.statsUC, s.log))
		r.With(s.requireSession).Get("/groups", groupsHandler(s.groupUC, s.log))
	})
}

func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			writeError(w, http.StatusUnauthorized, "admin api has no session secret")
			return
		}
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			logging.With(r.Context(), s.log).Debug().Err(err).Msg("admin request rejected")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		logging.With(r.Context(), s.log).Debug().Str("session", claims.ID).Str("path", r.URL.Path).Msg("admin request")
		next.ServeHTTP(w, r)
	})
}

// handleLogin trades the configured API key for a session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.apiKey == "" || s.auth == nil {
		s.log.Error().Msg("admin login refused: api key or jwt secret not configured")
		writeError(w, http.StatusForbidden, "admin login disabled")
		return
	}
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if subtle.ConstantTimeCompare([]byte(body.Key), []byte(s.apiKey)) != 1 {
		logging.With(r.Context(), s.log).Warn().Msg("admin login with wrong key")
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	token, err := s.auth.Mint(w)
	if err != nil {
		s.log.Error().Err(err).Msg("mint admin session")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	if s.auth != nil {
		s.auth.Clear(w)
	}
	w.WriteHeader(http.StatusNoContent)
}
