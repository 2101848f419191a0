package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned by any data access attempted without a caller.
var ErrUnauthenticated = errors.New("unauthenticated")

// Sources a caller identity can be resolved from.
const (
	SourceSession   = "session"
	SourceToken     = "token"
	SourceScheduler = "scheduler"
)

type contextKey struct{}

// Caller is the authenticated identity a request acts on behalf of. Every row
// the caller can read or write is owned by UserID.
type Caller struct {
	UserID    string
	Email     string
	SessionID string
	Source    string
}

// Authenticated reports whether c carries an identity.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// Require returns ErrUnauthenticated when c carries no identity.
func (c Caller) Require() error {
	if !c.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

func FromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(contextKey{}).(Caller)
	if !ok || !c.Authenticated() {
		return Caller{}, false
	}
	return c, true
}

// UserID returns the caller's owner id, or "" when unauthenticated.
func UserID(ctx context.Context) string {
	c, _ := FromContext(ctx)
	return c.UserID
}
