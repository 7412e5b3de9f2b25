// Package services contains server-side business logic. UserService handles
// registration, login and the account CRUD operations on top of a
// users.Repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/google/uuid"
)

// TokenIssuer mints bearer tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, isAdm bool) (string, error)
}

// CreateUserInput is the registration payload.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	IsAdm    bool
}

type UserService struct {
	repo   users.Repository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	logger logging.Logger

	now   func() time.Time
	newID func() string

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo users.Repository, hasher auth.PasswordHasher, tokens TokenIssuer, logger logging.Logger) *UserService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		logger: logger.With("module", "user_service"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

// Create registers a user. A taken email yields common.ErrorAlreadyExists.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.UserView, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, internal(err)
	}

	now := s.now()
	user := &models.User{
		ID:           s.newID(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		IsAdm:        in.IsAdm,
		CreatedOn:    now,
		UpdatedOn:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, internal(err)
	}

	s.logger.Info(ctx, "user created", "uuid", user.ID, "isAdm", user.IsAdm)

	view := user.View()
	return &view, nil
}

// List returns every stored user, sanitized, in store order.
func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal(err)
	}

	views := make([]models.UserView, 0, len(all))
	for _, u := range all {
		views = append(views, u.View())
	}
	return views, nil
}

// Authenticate checks email/password and returns a signed token. Unknown
// email and wrong password both yield common.ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Spend the same bcrypt time as a real mismatch.
			s.hasher.Verify(password, s.getDummyHash())
			return "", common.ErrorUnauthorized
		}
		return "", internal(err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Debug(ctx, "password mismatch", "uuid", user.ID)
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdm)
	if err != nil {
		return "", internal(err)
	}
	return token, nil
}

// Retrieve returns the user with id or common.ErrorNotFound.
func (s *UserService) Retrieve(ctx context.Context, id string) (*models.UserView, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, internal(err)
	}

	view := user.View()
	return &view, nil
}

// Edit applies the non-empty fields of patch to user id. The ID, admin
// flag and creation time never change.
func (s *UserService) Edit(ctx context.Context, id string, patch models.UserPatch) (*models.UserView, error) {
	var newHash string
	if patch.Password != nil && *patch.Password != "" {
		h, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, internal(err)
		}
		newHash = h
	}

	updated, err := s.repo.Update(ctx, id, func(u *models.User) error {
		if patch.Name != nil && *patch.Name != "" {
			u.Name = *patch.Name
		}
		if patch.Email != nil && *patch.Email != "" {
			u.Email = *patch.Email
		}
		if newHash != "" {
			u.PasswordHash = newHash
		}
		u.UpdatedOn = s.now()
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrorNotFound
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, common.ErrorAlreadyExists
		default:
			return nil, internal(err)
		}
	}

	s.logger.Info(ctx, "user updated", "uuid", updated.ID)

	view := updated.View()
	return &view, nil
}

// Delete removes user id or returns common.ErrorNotFound.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return internal(err)
	}

	s.logger.Info(ctx, "user deleted", "uuid", id)
	return nil
}

// getDummyHash lazily hashes a random value once; it never matches any
// real password.
func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
