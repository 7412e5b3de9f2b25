package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// UserService is the business layer the handlers call into.
type UserService interface {
	Create(ctx context.Context, in services.CreateUserInput) (*models.UserView, error)
	List(ctx context.Context) ([]models.UserView, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	Retrieve(ctx context.Context, id string) (*models.UserView, error)
	Edit(ctx context.Context, id string, patch models.UserPatch) (*models.UserView, error)
	Delete(ctx context.Context, id string) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdm    bool   `json:"isAdm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type editUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	view, err := h.svc.Create(r.Context(), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdm:    req.IsAdm,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return ErrConflict(msgEmailTaken)
		}
		return err
	}

	RespondWithJSON(w, http.StatusCreated, view)
	return nil
}

func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) error {
	views, err := h.svc.List(r.Context())
	if err != nil {
		return err
	}

	RespondWithJSON(w, http.StatusOK, views)
	return nil
}

func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	token, err := h.svc.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return ErrUnauthorized(msgWrongCredentials)
		}
		return err
	}

	RespondWithJSON(w, http.StatusOK, loginResponse{Token: token})
	return nil
}

// HandleProfile returns the caller's own record.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) error {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return ErrUnauthorized(msgMissingAuth)
	}

	view, err := h.svc.Retrieve(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrNotFound(msgUserNotFound)
		}
		return err
	}

	RespondWithJSON(w, http.StatusOK, view)
	return nil
}

func (h *UserHandler) HandleEditUser(w http.ResponseWriter, r *http.Request) error {
	var req editUserRequest
	if err := decodeJSON(r, &req); err != nil {
		return err
	}

	view, err := h.svc.Edit(r.Context(), chi.URLParam(r, paramUUID), models.UserPatch{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return ErrNotFound(msgUserNotFound)
		case errors.Is(err, common.ErrorAlreadyExists):
			return ErrConflict(msgEmailTaken)
		}
		return err
	}

	RespondWithJSON(w, http.StatusOK, view)
	return nil
}

func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, paramUUID)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return ErrNotFound(msgUserNotFound)
		}
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(headerContentType, contentTypeText)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
