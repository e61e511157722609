package persist

import (
	"context"
	"fmt"

	"github.com/nibzard/todolist-go/internal/config"
)

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case "", config.BackendFile:
		if cfg.DataFile == "" {
			return nil, fmt.Errorf("file backend: data file is not set")
		}
		return NewFile(cfg.DataFile), nil
	case config.BackendRedis:
		return OpenRedis(ctx, cfg.Redis.URL, cfg.Redis.Key)
	case config.BackendPostgres, config.BackendMySQL:
		return OpenSQL(ctx, cfg.Backend, cfg.SQL.DSN, cfg.SQL.Table, cfg.SQL.Name)
	case config.BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
