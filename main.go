package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/room4-2/tablefinder/config"
	"github.com/room4-2/tablefinder/server"
	"github.com/room4-2/tablefinder/session"
)

type httpServer interface {
	GetAddr() string
	Start() error
	Shutdown(ctx context.Context) error
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	assistant, err := session.NewAssistant(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build assistant", zap.Error(err))
	}

	// Create session manager
	sessionManager, err := session.NewManager(cfg, assistant, logger)
	if err != nil {
		logger.Fatal("Failed to create session manager", zap.Error(err))
	}

	var servers []httpServer
	switch cfg.ServerType {
	case "websocket":
		servers = append(servers, server.NewServerWebsocket(cfg, sessionManager, logger))
	case "twilio":
		servers = append(servers, server.NewSMSServer(cfg, sessionManager, logger))
	case "both":
		servers = append(servers,
			server.NewServerWebsocket(cfg, sessionManager, logger),
			server.NewSMSServer(cfg, sessionManager, logger),
		)
	default:
		logger.Fatal("Unknown SERVER_TYPE", zap.String("type", cfg.ServerType))
	}

	for _, srv := range servers {
		logger.Info("🧭 Server configured", zap.String("addr", srv.GetAddr()))
	}

	g, gctx := errgroup.WithContext(ctx)

	// Cleanup routine stops with the group
	g.Go(func() error {
		sessionManager.StartCleanupRoutine(gctx, time.Minute)
		return nil
	})

	for _, srv := range servers {
		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("🛑 Received shutdown signal...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Server shutdown error", zap.Error(err))
			}
		}
		sessionManager.Shutdown()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
	logger.Info("👋 Server stopped")
}
