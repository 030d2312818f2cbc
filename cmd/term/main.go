package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"coldiron/server/config"
	"coldiron/server/content"
	"coldiron/server/logging"
	"coldiron/server/persistence"
	"coldiron/server/services"
)

func main() {
	name := flag.String("name", os.Getenv("USER"), "player name recorded with the run")
	logFile := flag.String("log", "coldiron.log", "file the log is written to")
	flag.Parse()

	if err := run(*name, *logFile); err != nil {
		fmt.Fprintf(os.Stderr, "coldiron: %v\n", err)
		os.Exit(1)
	}
}

func run(name, logFile string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, logFile)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logger.Sync()

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

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer screen.Fini()

	newApp(games, name, logger).run(screen)
	logger.Info("terminal session ended", zap.String("player", name))
	return nil
}
