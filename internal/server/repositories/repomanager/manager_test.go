package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubGoose(t *testing.T, fn func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) {
	t.Helper()
	orig := gooseUpContext
	gooseUpContext = fn
	t.Cleanup(func() { gooseUpContext = orig })
}

func stubOpen(t *testing.T, db *sql.DB, err error) {
	t.Helper()
	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) {
		if driverName != "pgx" {
			return nil, errors.New("unexpected driver " + driverName)
		}
		return db, err
	}
	t.Cleanup(func() { sqlOpen = orig })
}

func TestNew_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageMemory}

	m, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer m.Close()

	_, ok := m.Users().(*users.MemoryRepository)
	assert.True(t, ok)
}

func TestNew_UnknownStorage(t *testing.T) {
	_, err := New(context.Background(), &config.Config{Storage: "redis"})
	assert.Error(t, err)
}

func TestNew_Postgres(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	stubOpen(t, db, nil)
	stubGoose(t, func(ctx context.Context, got *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if got != db {
			return errors.New("unexpected db")
		}
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	})

	m, err := New(context.Background(), &config.Config{Storage: config.StoragePostgres, DatabaseDSN: "dsn"})
	require.NoError(t, err)

	_, ok := m.Users().(*users.PostgresRepository)
	assert.True(t, ok)

	require.NoError(t, m.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_PostgresMigrationErrorClosesDB(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	stubOpen(t, db, nil)
	stubGoose(t, func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	})

	_, err = New(context.Background(), &config.Config{Storage: config.StoragePostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration error: boom")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRepositoryManager_PingError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("refused"))
	mock.ExpectClose()

	stubOpen(t, db, nil)

	_, err = NewPostgresRepositoryManager(context.Background(), "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db ping error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgresRepositoryManager_OpenError(t *testing.T) {
	stubOpen(t, nil, errors.New("bad dsn"))

	_, err := NewPostgresRepositoryManager(context.Background(), "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db open error")
}

func TestManagersSatisfyInterface(t *testing.T) {
	var _ RepositoryManager = (*MemoryRepositoryManager)(nil)
	var _ RepositoryManager = (*PostgresRepositoryManager)(nil)
}
