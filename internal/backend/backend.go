// Package backend selects and builds the document store the process
// runs against.
package backend

import (
	"fmt"
	"log/slog"

	"richr/internal/config"
	"richr/internal/store"
	"richr/internal/store/memory"
	"richr/internal/store/sqlite"
)

type Type string

const (
	Memory Type = "memory"
	SQLite Type = "sqlite"
)

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite:
		return true
	default:
		return false
	}
}

// Open builds the store named by the config. The caller owns Close.
func Open(cfg *config.Config) (store.Store, error) {
	t := Type(cfg.DataBackend)
	if !t.IsValid() {
		return nil, fmt.Errorf("unsupported data backend %q", cfg.DataBackend)
	}

	switch t {
	case SQLite:
		st, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		slog.Info("Opened sqlite backend", "path", cfg.SQLiteDBPath)
		return st, nil
	default:
		slog.Info("Using in-memory backend, data will not survive restarts")
		return memory.New(), nil
	}
}
