package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"murmur/internal/app/server/handlers"
	"murmur/internal/config"
	"murmur/internal/core/contracts"
	"murmur/internal/core/domain"
	"murmur/internal/core/services"
	"murmur/pkg/middleware"
)

// Deps are the collaborators the HTTP surface is built on. Scheduler may be nil.
type Deps struct {
	Tokens        middleware.TokenVerifier
	Users         domain.UserRepository
	Registry      contracts.ConnectionRegistry
	Presence      contracts.PresenceDirectory
	Rooms         *services.RoomService
	Sessions      *services.RoomManager
	Notifications *services.NotificationService
	Scheduler     contracts.Scheduler
}

type Server struct {
	mux    *http.ServeMux
	cfg    config.Config
	log    *slog.Logger
	deps   Deps
	server *http.Server
}

func NewServer(log *slog.Logger, cfg config.Config, deps Deps) *Server {
	s := &Server{
		mux:  http.NewServeMux(),
		cfg:  cfg,
		log:  log,
		deps: deps,
	}
	s.routes()
	s.server = &http.Server{
		Addr:              cfg.Service.Add,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	auth := middleware.AuthMiddleware(s.deps.Tokens)

	roomSocket := handlers.NewRoomSocketHandler(s.deps.Tokens, s.deps.Users, s.deps.Sessions, s.cfg.Socket)
	notificationSocket := handlers.NewNotificationSocketHandler(
		s.deps.Tokens, s.deps.Registry, s.deps.Presence, s.deps.Notifications,
		s.cfg.Socket, s.cfg.Presence.HeartbeatInterval(),
	)
	rooms := handlers.NewRoomHandler(s.deps.Rooms, s.deps.Sessions)
	notifications := handlers.NewNotificationHandler(s.deps.Notifications, s.deps.Scheduler)
	health := handlers.NewHealthHandler(s.deps.Registry)

	// Sockets authenticate after the upgrade so failures reach the client as error frames.
	s.mux.HandleFunc("GET /ws/rooms/{room_id}", roomSocket.Handler)
	s.mux.HandleFunc("GET /ws/notifications", notificationSocket.Handler)

	s.mux.Handle("DELETE /api/rooms/{room_id}", auth(http.HandlerFunc(rooms.DeleteRoom)))
	s.mux.HandleFunc("GET /api/rooms/{room_id}/participants", rooms.Participants)

	s.mux.Handle("GET /notifications/unread", auth(http.HandlerFunc(notifications.Unread)))
	s.mux.Handle("PATCH /notifications/mark-all-read", auth(http.HandlerFunc(notifications.MarkAllRead)))
	s.mux.Handle("POST /notifications", auth(http.HandlerFunc(notifications.Create)))

	s.mux.HandleFunc("GET /healthz", health.Health)
}

// Handler is the routed mux wrapped in tracing and request logging.
func (s *Server) Handler() http.Handler {
	return middleware.Chain(s.mux,
		middleware.TracerMiddleware(s.cfg.Service.Name),
		middleware.RequestLogger(s.log),
	)
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server - run - listening", slog.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("server - run - shutting down")
	return s.server.Shutdown(shutdownCtx)
}
