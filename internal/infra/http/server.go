package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"promo-bot/internal/config"
	"promo-bot/internal/infra/api"
	"promo-bot/internal/infra/logging"
	"promo-bot/internal/infra/metrics"
)

// UpdateHandler consumes one decoded Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type WebhookManager interface {
	SetWebhook(ctx context.Context, url string) error
	RemoveWebhook(ctx context.Context) error
}

// RouteRegistrar mounts extra routes, such as the admin API.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// requestTimeout bounds the work done inline for one request, including one update.
const requestTimeout = 30 * time.Second

// Server hosts the Telegram webhook, the webhook management endpoints, health,
// metrics and optionally the admin API.
type Server struct {
	cfg      *config.Config
	updates  UpdateHandler
	webhooks WebhookManager
	handler  http.Handler
	server   *http.Server
	log      *zerolog.Logger
}

func NewServer(cfg *config.Config, updates UpdateHandler, webhooks WebhookManager, admin RouteRegistrar, logger *zerolog.Logger) *Server {
	l := logger.With().Str("component", "HTTPServer").Logger()
	s := &Server{cfg: cfg, updates: updates, webhooks: webhooks, log: &l}

	r := chi.NewRouter()

	r.Post(cfg.WebhookPath(), s.handleWebhook)
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	r.HandleFunc("/set_webhook", s.handleSetWebhook)
	r.HandleFunc("/remove_webhook", s.handleRemoveWebhook)
	if admin != nil {
		admin.RegisterRoutes(r)
	}
	s.handler = chi.Chain(
		api.TraceID,
		api.RequestLog(&l, cfg.Bot.Token),
		api.Recover(&l),
		middleware.Timeout(requestTimeout),
	).Handler(r)
	s.server = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

// Start blocks until the server stops. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("http server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleWebhook acknowledges every well-formed JSON request with 200 so
// Telegram does not redeliver an update that failed inside the bot.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mt != "application/json" {
		metrics.IncWebhookUpdate("rejected")
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		metrics.IncWebhookUpdate("malformed")
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("decode update")
		w.WriteHeader(http.StatusOK)
		return
	}
	s.updates.HandleUpdate(r.Context(), update)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("Bot is running!"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("OK"))
}

// handleSetWebhook drops any previous registration before pointing Telegram
// at this host.
func (s *Server) handleSetWebhook(w http.ResponseWriter, r *http.Request) {
	if err := s.webhooks.RemoveWebhook(r.Context()); err != nil {
		logging.With(r.Context(), s.log).Warn().Err(err).Msg("remove webhook before set")
	}
	if err := s.webhooks.SetWebhook(r.Context(), s.cfg.WebhookURL()); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("set webhook")
		http.Error(w, "Failed to set webhook", http.StatusBadGateway)
		return
	}
	_, _ = w.Write([]byte("Webhook set"))
}

func (s *Server) handleRemoveWebhook(w http.ResponseWriter, r *http.Request) {
	if err := s.webhooks.RemoveWebhook(r.Context()); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("remove webhook")
		http.Error(w, "Failed to remove webhook", http.StatusBadGateway)
		return
	}
	_, _ = w.Write([]byte("Webhook removed"))
}
