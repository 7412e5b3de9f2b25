package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const paramUUID = "uuid"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// UserFinder resolves a token subject to its stored record.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator holds the authentication variants and the permission guards.
type Authenticator struct {
	tokens TokenVerifier
	users  UserFinder
	logger logging.Logger
}

func NewAuthenticator(tokens TokenVerifier, users UserFinder, logger logging.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, logger: logger.With("module", "auth_middleware")}
}

// bearerToken extracts the token from "Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		return "", false
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func (a *Authenticator) verify(r *http.Request) (*auth.Claims, bool) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, false
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		a.logger.Debug(r.Context(), "token rejected", "error", err)
		return nil, false
	}
	return claims, true
}

// Authenticate attaches the identity carried by the token claims. It never
// touches the store.
func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.verify(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, msgMissingAuth)
			return
		}

		ctx := auth.WithIdentity(r.Context(), claims.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateWithLookup verifies the token and then resolves its subject in
// the store. The stored record, not the claims, decides the identity.
func (a *Authenticator) AuthenticateWithLookup(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := a.verify(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, msgMissingAuth)
			return
		}

		user, err := a.users.GetByID(r.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				respondWithError(w, http.StatusForbidden, msgUserNotFound)
				return
			}
			a.logger.Error(r.Context(), "actor lookup failed", "error", err)
			respondWithError(w, http.StatusInternalServerError, msgInternalServer)
			return
		}

		ctx := auth.WithActor(r.Context(), user)
		ctx = auth.WithIdentity(ctx, auth.Identity{UserID: user.ID, IsAdm: user.IsAdm})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin lets through callers whose identity carries the admin flag.
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFrom(r.Context())
		if !ok || !id.IsAdm {
			respondWithError(w, http.StatusForbidden, msgMissingAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrAdmin lets through admins and callers acting on their own
// {uuid}. Must run after AuthenticateWithLookup.
func (a *Authenticator) RequireSelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFrom(r.Context())
		if !ok || (!actor.IsAdm && chi.URLParam(r, paramUUID) != actor.ID) {
			respondWithError(w, http.StatusForbidden, msgMissingAdmin)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// accessLog logs one line per request.
func accessLog(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info(r.Context(), "request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
