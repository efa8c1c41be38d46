package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/api/handlers"
	appMiddleware "github.com/suiscan-ai/suiscan/internal/api/middlewares"
	"github.com/suiscan-ai/suiscan/internal/auth"
	"github.com/suiscan-ai/suiscan/internal/config"
	"github.com/suiscan-ai/suiscan/internal/core"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(
	cfg *config.Config,
	logger *logrus.Logger,
	dbclient db.DbClient,
	sessions *auth.SessionAuthority,
	zkVerifier *auth.ZkLoginVerifier,
	salts core.SaltProvider,
	accounts *services.AccountService,
	chats *services.ChatService,
	txs *services.TransactionService,
	speech core.SpeechSynthesizer,
) *Server {
	authHandler := handlers.NewAuthHandler(dbclient, accounts, sessions, zkVerifier, salts, cfg, logger)
	chatHandler := handlers.NewChatHandler(chats, logger)
	chatsHandler := handlers.NewChatsHandler(dbclient, logger)
	txHandler := handlers.NewTransactionHandler(txs, logger)
	ttsHandler := handlers.NewTtsHandler(speech, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AppURL, "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Chat-Id", "X-Remaining"},
		AllowCredentials: true,
	}))

	// Session claims ride the context everywhere; gating is per route group.
	r.Use(appMiddleware.Session(sessions))

	// public endpoints
	r.Post("/auth", authHandler.Authenticate)
	r.Get("/auth", authHandler.CurrentUser)
	r.Post("/auth/callback", authHandler.Callback)
	r.Get("/auth/callback", authHandler.CallbackError)

	r.Post("/chat", chatHandler.Chat)
	r.Get("/chats/{id}/messages", chatsHandler.Messages)
	r.Get("/transaction", txHandler.Lookup)
	r.Post("/tts", ttsHandler.Synthesize)

	// protected endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(appMiddleware.RequireSession)
		protected.Get("/chats", chatsHandler.List)
		protected.Delete("/chats", chatsHandler.Delete)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
