package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"presale-backend/internal/api"
	"presale-backend/internal/config"
	"presale-backend/internal/logger"
	"presale-backend/internal/session"
	"presale-backend/internal/submit"
	"presale-backend/internal/watcher"
	"presale-backend/presaleprogram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init("presale-backend", cfg.Debug)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	client, err := presaleprogram.NewClient(cfg.ClientConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create program client")
	}
	logger.Info().
		Str("network", cfg.Solana.Network).
		Str("program", cfg.Solana.ProgramID).
		Msg("Program client ready")

	guard, err := submit.Open(cfg.Ledger.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open submission ledger")
	}

	vault := watcher.NewPoller("vault-balance", cfg.VaultPollInterval, client.GetVaultBalance)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go vault.Run(ctx)

	sessions := session.NewManager(cfg.SessionTTL)
	server := api.NewServer(client, sessions, guard, vault, cfg.Server.Origin)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
