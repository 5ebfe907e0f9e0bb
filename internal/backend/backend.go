// Package backend opens the store named by the project config.
package backend

import (
	"context"
	"fmt"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/store"
	"github.com/tally-dev/tally/internal/store/filestore"
	"github.com/tally-dev/tally/internal/store/memory"
	"github.com/tally-dev/tally/internal/store/sqlite"
)

// Open returns the store for cfg. Relative storage paths resolve against dir.
func Open(ctx context.Context, cfg *config.Config, dir string) (store.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil
	case config.BackendFile:
		s, err := filestore.New(cfg.StoragePath(dir))
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.StoragePath(dir))
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}
