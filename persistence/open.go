package persistence

import (
	"go.uber.org/zap"

	"coldiron/server/config"
)

// Open connects the store cfg selects
func Open(cfg config.Storage, logger *zap.Logger) (Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Type == "postgres" {
		logger.Info("using PostgreSQL persistence")
		return NewPostgresStore(cfg.DatabaseURL, logger)
	}
	logger.Info("using JSON persistence", zap.String("file", cfg.File))
	return NewJSONStore(cfg.File)
}
