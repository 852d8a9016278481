package funnelsession

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"PixChat/internal/lib/api/response"
	"PixChat/internal/lib/sl"
)

type startResponse struct {
	SessionID string `json:"session_id"`
}

// Start creates a fresh funnel session for the calling visitor.
func Start(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.With(
			sl.Module("http.handlers.session"),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := handler.StartSession(r.Context(), clientIP(r))

		logger.With(
			slog.String("session_id", sess.ID),
		).Debug("session created")

		render.JSON(w, r, response.Ok(startResponse{SessionID: sess.ID}))
	}
}

// clientIP prefers the proxy-forwarded address over the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
