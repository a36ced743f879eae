package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Driver names accepted by Open.
const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Options selects and parameterises a backend.
type Options struct {
	Driver   string
	Path     string // data directory (fs, badger) or parent of vault.db (sqlite)
	RedisURL string
}

// Open builds the Provider named by opts.Driver.
func Open(opts Options, logger *slog.Logger) (Provider, error) {
	switch opts.Driver {
	case "", DriverFS:
		return NewFS(opts.Path)
	case DriverSQLite:
		return OpenSQLite(filepath.Join(opts.Path, "vault.db"))
	case DriverBadger:
		return OpenBadger(opts.Path, logger)
	case DriverRedis:
		return OpenRedis(opts.RedisURL)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", opts.Driver)
	}
}
