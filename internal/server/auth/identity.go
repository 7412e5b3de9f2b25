package auth

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// Identity is who the bearer token says the caller is.
type Identity struct {
	UserID string
	IsAdm  bool
}

type ctxKey string

const (
	identityKey ctxKey = "identity"
	actorKey    ctxKey = "actor"
)

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity attached by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// WithActor returns a copy of ctx carrying the stored record of the caller.
func WithActor(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, actorKey, u)
}

// ActorFrom returns the record attached by WithActor.
func ActorFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(actorKey).(*models.User)
	return u, ok && u != nil
}
