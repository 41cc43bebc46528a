package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/internal/config"
	"github.com/fkhayef/studyhub/internal/logging"
	"github.com/fkhayef/studyhub/internal/server"
	"github.com/fkhayef/studyhub/internal/store"
	"github.com/fkhayef/studyhub/internal/studygroup"
)

// @title        StudyHub API
// @version      1.0
// @description  Study group coordination: accounts, groups, join requests, sessions and RSVPs.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	sessionKey := []byte(cfg.SessionKey)
	if len(sessionKey) == 0 {
		sessionKey = securecookie.GenerateRandomKey(32)
		logger.Warn("SESSION_KEY not set; using a random key, sessions will not survive a restart")
	}

	st := store.New(store.WithLogger(logger.Named("store")))
	if cfg.SeedDemo {
		if err := studygroup.Seed(st, cfg.BcryptCost); err != nil {
			logger.Fatal("seeding demo data", zap.Error(err))
		}
		logger.Info("demo data loaded", zap.String("password", studygroup.DemoPassword))
	}

	handler := server.NewRouter(st, server.Options{
		SessionKey:          sessionKey,
		SecureCookies:       cfg.SecureCookies,
		BcryptCost:          cfg.BcryptCost,
		AllowTestUserHeader: cfg.AllowTestUserHeader,
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server failed", zap.Error(err))
	}
}
