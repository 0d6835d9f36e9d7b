package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/tricarty/retrochat95/internal/config"
	"github.com/tricarty/retrochat95/internal/database"
	"github.com/tricarty/retrochat95/internal/server"
	"github.com/tricarty/retrochat95/internal/stats"
)

type ChatApp struct {
	log            *log.Logger
	cs             *server.ChatServer
	repo           database.ChatRepository
	stats          stats.StatsProvider
	mux            *http.Server
	allowedOrigins []string
}

func NewChatApp(mux *http.ServeMux, logger *log.Logger, cs *server.ChatServer, repo database.ChatRepository, sp stats.StatsProvider, cfg *config.Config) *ChatApp {
	s := &ChatApp{
		log:            logger,
		cs:             cs,
		repo:           repo,
		stats:          sp,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /ws", s.serveWs)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *ChatApp) Start() error {
	s.log.Printf("starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *ChatApp) Shutdown(ctx context.Context) error {
	s.log.Println("shutting down HTTP server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
