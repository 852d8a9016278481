package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"PixChat/internal/config"
	"PixChat/internal/http-server/handlers/errors"
	funnelsession "PixChat/internal/http-server/handlers/funnel-session"
	"PixChat/internal/http-server/middleware/authenticate"
	"PixChat/internal/http-server/middleware/timeout"
	"PixChat/internal/lib/sl"
	"PixChat/internal/ws"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

// Handler is everything the HTTP surface needs from the session layer.
type Handler interface {
	funnelsession.Core
	ws.SessionChecker
}

// keyAuth validates operator websocket tokens against the fixed API key.
type keyAuth struct {
	key string
}

func (a keyAuth) ValidateToken(token string) error {
	if a.key == "" || token != a.key {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func New(conf *config.Config, log *slog.Logger, handler Handler, hub *ws.Hub) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Route("/api/v1", func(v1 chi.Router) {
		// Websocket upgrades live outside this group so the timeout does
		// not apply to long-lived connections.
		v1.Use(timeout.Timeout(15))
		v1.Use(render.SetContentType(render.ContentTypeJSON))
		v1.Route("/session", func(r chi.Router) {
			r.Post("/", funnelsession.Start(log, handler))
			r.Get("/{id}/history", funnelsession.History(log, handler))
			r.Post("/{id}/event", funnelsession.Event(log, handler))
		})
		v1.Route("/admin", func(r chi.Router) {
			r.Use(authenticate.New(log, conf.Listen.ApiKey))
			r.Get("/sessions", funnelsession.List(log, handler))
		})
	})

	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, handler, keyAuth{key: conf.Listen.ApiKey}, log, w, r)
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  router,
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
