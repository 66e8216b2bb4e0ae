package params

import (
	"fmt"

	"settings-service/internal/config"
	"settings-service/internal/logger"
)

// Open builds the engine selected by cfg.Store.Backend.
func Open(cfg *config.Config, l *logger.Logger) (Engine, error) {
	switch cfg.Store.Backend {
	case "redis":
		return NewRedisEngine(cfg.Redis.Host, cfg.Redis.Port, l), nil
	case "file":
		return NewFileEngine(cfg.Store.Dir, l)
	case "sqlite":
		return NewSQLiteEngine(cfg.Store.SQLitePath)
	case "memory":
		return NewMemoryEngine(), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}
