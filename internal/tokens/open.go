package tokens

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/roamly/internal/repositories"
	"github.com/desertthunder/roamly/internal/shared"
)

// Storage drivers accepted by [Open].
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the [Store] selected by cfg.Driver. The returned closer releases the backing (the SQLite handle); callers must close it.
func Open(cfg shared.StorageConfig) (*StorageStore, io.Closer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = shared.DefaultConfig().Storage.Path
		}
		db, err := shared.OpenStorageDatabase(path)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		return NewStorageStore(repositories.NewLocalStorage(db)), db, nil
	case DriverFile:
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("%w: storage.path is required for the file driver", shared.ErrMissingConfig)
		}
		return NewStorageStore(NewFileStorage(cfg.Path)), nopCloser{}, nil
	case DriverMemory:
		return NewStorageStore(NewMemoryStorage()), nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}
