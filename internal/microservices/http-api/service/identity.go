package service

import (
	"context"
	"errors"
)

var ErrNotAuthenticated = errors.New("user not authenticated")

type userIDKey struct{}

// WithUserID attaches the authenticated user to the request context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user, if any
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// IdentityResolver answers "who is the current user" for every list operation
type IdentityResolver interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// ContextIdentity resolves the user set on the context by the auth middleware
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) (string, error) {
	if userID, ok := UserIDFromContext(ctx); ok {
		return userID, nil
	}
	return "", ErrNotAuthenticated
}
