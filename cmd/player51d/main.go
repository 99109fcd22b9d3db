package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/voxel51/player51/internal/annotations"
	"github.com/voxel51/player51/internal/api"
	"github.com/voxel51/player51/internal/config"
	"github.com/voxel51/player51/internal/db"
	"github.com/voxel51/player51/internal/library"
	"github.com/voxel51/player51/internal/logging"
	"github.com/voxel51/player51/internal/media"
	"github.com/voxel51/player51/internal/playback"
	"github.com/voxel51/player51/internal/session"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting player51 daemon",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"frame_zero_offset", cfg.FrameZeroOffset(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := library.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                      PLAYER51 DAEMON                      ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	prober := media.NewFFprobe(cfg.FFprobePath(), logger)
	fetcher := annotations.NewHTTPFetcher("", cfg.FetchTimeout(), logger)
	librarySvc := library.NewService(repo, prober, fetcher, logger)
	playbackSvc := playback.NewServer(logger)

	sessions := session.NewManager(session.ManagerConfig{
		FrameZeroOffset:  cfg.FrameZeroOffset(),
		DefaultFrameRate: cfg.DefaultFrameRate(),
		PaletteSize:      cfg.PaletteSize(),
	}, logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Library:    librarySvc,
		Repository: repo,
		Playback:   playbackSvc,
		Sessions:   sessions,
		Logger:     logger,
		StartTime:  startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	sessions.CloseAll()

	logger.Info("shutdown complete")
	return nil
}

func ensureAuthToken(repo library.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
