// Package users stores user records. Two implementations satisfy
// Repository: a volatile in-memory store and a PostgreSQL store.
package users

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// UpdateFunc mutates a copy of the stored record in place. Returning an
// error aborts the update.
type UpdateFunc func(u *models.User) error

// Repository is the user store contract. Email is unique across records:
// Create and Update return common.ErrorAlreadyExists on a clash. Lookups
// and mutations of a missing record return common.ErrorNotFound.
// Returned records are copies; mutating them does not touch the store.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	// Update applies fn to the record atomically with respect to other
	// mutations and persists the result.
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.User, error)
	Delete(ctx context.Context, id string) error
}
