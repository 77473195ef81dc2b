package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"promo-bot/internal/usecase"
)

func statsHandler(statsUC usecase.StatsUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := statsUC.Totals(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("stats totals")
			writeError(w, http.StatusInternalServerError, "failed to get totals")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

type groupResponse struct {
	ChatID       int64     `json:"chat_id"`
	Title        string    `json:"title"`
	RegisteredBy int64     `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
}

func groupsHandler(groupUC usecase.GroupUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups, err := groupUC.List(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("list groups")
			writeError(w, http.StatusInternalServerError, "failed to list groups")
			return
		}
		items := make([]groupResponse, 0, len(groups))
		for _, g := range groups {
			items = append(items, groupResponse{
				ChatID:       g.ChatID,
				Title:        g.Title,
				RegisteredBy: g.RegisteredBy,
				RegisteredAt: g.RegisteredAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
