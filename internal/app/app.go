package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/suiscan-ai/suiscan/internal/auth"
	"github.com/suiscan-ai/suiscan/internal/config"
	db "github.com/suiscan-ai/suiscan/internal/core/database"
	"github.com/suiscan-ai/suiscan/internal/core/email"
	"github.com/suiscan-ai/suiscan/internal/core/llm"
	"github.com/suiscan-ai/suiscan/internal/core/suiclient"
	"github.com/suiscan-ai/suiscan/internal/core/tts"
	"github.com/suiscan-ai/suiscan/internal/services"
)

// App is the composition root: every adapter and service wired once at
// startup, plus the HTTP server and the wallet monitor loop.
type App struct {
	DBClient db.DbClient
	Monitor  *services.MonitorService
	Server   *Server

	cfg *config.Config
	log *logrus.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	rpcURL := cfg.SuiRPCURL
	if rpcURL == "" {
		rpcURL = suiclient.FullnodeURL(cfg.SuiNetwork)
	}
	chain := suiclient.NewClient(rpcURL)

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	emailSender := email.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	speech := tts.NewElevenLabsSynthesizer(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID)

	sessions := auth.NewSessionAuthority(cfg.JWTSecret, cfg.SessionTTL, cfg.Production)
	salts := auth.NewSaltClient(cfg.ZkLoginSaltURL, log)

	var zkVerifier *auth.ZkLoginVerifier
	if cfg.GoogleClientID != "" {
		if zkVerifier, err = auth.NewZkLoginVerifier(appCtx, cfg.GoogleClientID); err != nil {
			return nil, fmt.Errorf("couldn't initialize the zklogin verifier, %w", err)
		}
	}

	txService := services.NewTransactionService(dbClient, chain, llmProvider, log)
	usageService := services.NewUsageService(dbClient)
	chatService := services.NewChatService(dbClient, txService, usageService, llmProvider, log)
	accountService := services.NewAccountService(dbClient, emailSender, log)
	monitor := services.NewMonitorService(dbClient, chain, txService, emailSender, log, cfg.MonitorTxLookback)

	server := NewServer(cfg, log, dbClient, sessions, zkVerifier, salts, accountService, chatService, txService, speech)

	return &App{
		DBClient: dbClient,
		Monitor:  monitor,
		Server:   server,
		cfg:      cfg,
		log:      log,
	}, nil
}

// Run starts the monitor loop and serves HTTP until ctx is cancelled, then
// shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	go a.Monitor.Run(ctx, a.cfg.MonitorInterval)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			a.log.WithError(err).Error("server shutdown failed")
		}
	}()
	return a.Server.Start()
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
