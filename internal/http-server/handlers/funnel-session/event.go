package funnelsession

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"PixChat/internal/lib/api/response"
	"PixChat/internal/lib/sl"
)

type eventRequest struct {
	Type      string `json:"type" validate:"required,oneof=start text button media_ended"`
	Text      string `json:"text,omitempty" validate:"required_if=Type text"`
	ButtonID  string `json:"button_id,omitempty" validate:"required_if=Type button"`
	MessageID int64  `json:"message_id,omitempty" validate:"required_if=Type media_ended"`
}

// Event accepts a visitor event over plain HTTP for clients without a
// websocket. The event is enqueued; processing is asynchronous.
func Event(log *slog.Logger, handler Core) http.HandlerFunc {
	validate := validator.New()

	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.session"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sessionID := chi.URLParam(r, "id")
		if !handler.SessionExists(sessionID) {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("Session not found"))
			return
		}

		var req eventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Error("invalid event", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid event"))
			return
		}

		switch req.Type {
		case "start":
			handler.HandleStart(sessionID)
		case "text":
			handler.HandleText(sessionID, req.Text)
		case "button":
			handler.HandleButton(sessionID, req.ButtonID)
		case "media_ended":
			handler.HandleMediaEnded(sessionID, req.MessageID)
		}

		logger.With(
			slog.String("session_id", sessionID),
			slog.String("type", req.Type),
		).Debug("event accepted")

		render.JSON(w, r, response.Ok(nil))
	}
}
