package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrInvalid is returned when an environment variable cannot be parsed
var ErrInvalid = errors.New("invalid configuration")

const (
	DefaultPort        = "8080"
	DefaultDBType      = "json"
	DefaultDBFile      = "db.json"
	DefaultDatabaseURL = "host=localhost user=coldiron password=coldiron dbname=coldiron sslmode=disable"
	DefaultStageWidth  = 70
	DefaultStageHeight = 40
	DefaultWorldDepth  = 2
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// Storage selects where layouts and runs are kept
type Storage struct {
	Type        string // "json" or "postgres"
	File        string
	DatabaseURL string
}

type Logging struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// World sizes and names the dungeon every game is played on
type World struct {
	Width  int
	Height int
	Depth  int
	Seed   string
	Name   string
}

// Config is the whole server configuration
type Config struct {
	Port        string
	Storage     Storage
	Logging     Logging
	ContentFile string
	World       World
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		Port: getenv("PORT", DefaultPort),
		Storage: Storage{
			Type:        strings.ToLower(getenv("DB_TYPE", DefaultDBType)),
			File:        getenv("DB_FILE", DefaultDBFile),
			DatabaseURL: getenv("DATABASE_URL", DefaultDatabaseURL),
		},
		Logging: Logging{
			Level:  strings.ToLower(getenv("LOG_LEVEL", DefaultLogLevel)),
			Format: strings.ToLower(getenv("LOG_FORMAT", DefaultLogFormat)),
		},
		ContentFile: os.Getenv("CONTENT_FILE"),
		World: World{
			Seed: os.Getenv("WORLD_SEED"),
			Name: os.Getenv("WORLD_NAME"),
		},
	}

	var err error
	if cfg.World.Width, err = positiveInt("STAGE_WIDTH", DefaultStageWidth); err != nil {
		return nil, err
	}
	if cfg.World.Height, err = positiveInt("STAGE_HEIGHT", DefaultStageHeight); err != nil {
		return nil, err
	}
	if cfg.World.Depth, err = positiveInt("WORLD_DEPTH", DefaultWorldDepth); err != nil {
		return nil, err
	}

	switch cfg.Storage.Type {
	case "json", "postgres":
	default:
		return nil, fmt.Errorf("%w: DB_TYPE %q", ErrInvalid, cfg.Storage.Type)
	}
	switch cfg.Logging.Format {
	case "json", "console":
	default:
		return nil, fmt.Errorf("%w: LOG_FORMAT %q", ErrInvalid, cfg.Logging.Format)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func positiveInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s=%q is not a positive integer", ErrInvalid, key, v)
	}
	return n, nil
}
