package funnelsession

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"PixChat/internal/lib/api/response"
	"PixChat/internal/lib/sl"
)

// History returns the full conversation history of a session.
func History(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.session"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionID := chi.URLParam(r, "id")
		history, ok := handler.History(sessionID)
		if !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Session not found"))
			return
		}

		logger.With(
			slog.String("session_id", sessionID),
			slog.Int("messages", len(history)),
		).Debug("history requested")

		render.JSON(w, r, response.Ok(history))
	}
}

// List returns summaries of all live sessions for the operator dashboard.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		infos := handler.Sessions()

		log.With(
			sl.Module("http.handlers.session"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Int("sessions", len(infos)),
		).Debug("session list requested")

		render.JSON(w, r, response.Ok(infos))
	}
}
