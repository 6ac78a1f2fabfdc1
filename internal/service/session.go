package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"daoapi/internal/auth"
	"daoapi/internal/model"
	"daoapi/internal/repository"
)

// TokenVerifier checks a bearer token's signature and expiry.
type TokenVerifier interface {
	Parse(token string) (model.Viewer, error)
}

// SessionResolver turns a bearer token into the current caller. The capability is
// read from the stored account on every request, so a role change applies at once
// and a deleted account loses access before its token expires.
type SessionResolver struct {
	tokens TokenVerifier
	users  repository.UserRepository
}

// NewSessionResolver constructs a SessionResolver.
func NewSessionResolver(tokens TokenVerifier, users repository.UserRepository) *SessionResolver {
	return &SessionResolver{tokens: tokens, users: users}
}

// Resolve returns the caller identified by token. Invalid tokens and unknown accounts
// yield auth.ErrInvalidToken; datastore failures wrap ErrStorageUnavailable.
func (r *SessionResolver) Resolve(ctx context.Context, token string) (model.Viewer, error) {
	claimed, err := r.tokens.Parse(token)
	if err != nil {
		return model.Viewer{}, err
	}
	u, err := r.users.FindByID(ctx, claimed.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Viewer{}, fmt.Errorf("%w: user %d no longer exists", auth.ErrInvalidToken, claimed.UserID)
		}
		return model.Viewer{}, unavailable("find session user", err)
	}
	return model.Viewer{UserID: u.ID, Capability: ClassifyUser(*u)}, nil
}
