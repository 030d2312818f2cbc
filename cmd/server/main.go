package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"coldiron/server/config"
	"coldiron/server/content"
	"coldiron/server/handlers"
	"coldiron/server/logging"
	"coldiron/server/messages"
	"coldiron/server/persistence"
	"coldiron/server/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	db, err := persistence.Open(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	defer db.Close()

	lib, err := content.Load(cfg.ContentFile)
	if err != nil {
		return err
	}

	games := services.NewGameService(services.GameConfig{
		WorldName: cfg.World.Name,
		Seed:      cfg.World.Seed,
		Width:     cfg.World.Width,
		Height:    cfg.World.Height,
		Levels:    cfg.World.Depth,
	}, db, lib, logger)
	clients := handlers.NewClientManager(logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handlers.NewWebsocketHandler(games, clients, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Int("clients", clients.Count()))
	clients.BroadcastToAll(messages.BaseMessage{
		Type:    messages.MessageTypeError,
		Payload: messages.ErrorMessage{Code: messages.CodeShutdown, Message: "Server is shutting down"},
	})
	clients.CloseAll(2 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
