package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/dbx"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

const userColumns = `id, name, email, password_hash, is_adm, created_on, updated_on`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsAdm, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query :=
		`INSERT INTO users (id, name, email, password_hash, is_adm, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.IsAdm, user.CreatedOn, user.UpdatedOn)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_on, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn and writes the
// result back in the same transaction.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
		u, err := scanUser(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		if err := fn(u); err != nil {
			return err
		}
		u.ID = id

		_, err = tx.ExecContext(ctx,
			`UPDATE users SET name = $2, email = $3, password_hash = $4, is_adm = $5, updated_on = $6
			 WHERE id = $1`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.IsAdm, u.UpdatedOn)
		if err != nil {
			if dbx.IsUniqueViolation(err) {
				return common.ErrorAlreadyExists
			}
			return fmt.Errorf("db error: %w", err)
		}

		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
