package repomanager

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
)

// MemoryRepositoryManager serves a process-local user store. Nothing
// survives a restart.
type MemoryRepositoryManager struct {
	users *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{users: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Users() users.Repository { return m.users }

func (m *MemoryRepositoryManager) Close() error { return nil }
