// Package repomanager owns the storage backend chosen by configuration and
// vends its repositories.
package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	Close() error
}

// New opens the backend named by cfg.Storage and brings its schema up to
// date.
func New(ctx context.Context, cfg *config.Config) (RepositoryManager, error) {
	var (
		m   RepositoryManager
		err error
	)

	switch cfg.Storage {
	case config.StorageMemory:
		m = NewMemoryRepositoryManager()
	case config.StoragePostgres:
		m, err = NewPostgresRepositoryManager(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}

	if err := m.RunMigrations(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
