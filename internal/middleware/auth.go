package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries a local login session token.
const SessionCookieName = "ecopantry_session"

type SessionLookup interface {
	GetByToken(ctx context.Context, token string) (*model.Session, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// Authenticator resolves the caller of a request from either a session cookie
// or an HS256 bearer token issued by an external identity provider.
type Authenticator struct {
	sessions  SessionLookup
	users     UserLookup
	jwtSecret []byte
	logger    *slog.Logger
}

// NewAuthenticator builds an Authenticator. Bearer tokens are rejected when
// jwtSecret is empty.
func NewAuthenticator(sessions SessionLookup, users UserLookup, jwtSecret string, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		sessions:  sessions,
		users:     users,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
	}
}

// Resolve returns the caller for r. A request carrying a bearer token is
// judged on the token alone.
func (a *Authenticator) Resolve(r *http.Request) (auth.Caller, bool) {
	if token, ok := bearerToken(r); ok {
		c, err := a.fromToken(token)
		if err != nil {
			a.logger.Debug("bearer token rejected", "error", err)
			return auth.Caller{}, false
		}
		return c, true
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return auth.Caller{}, false
	}
	sess, err := a.sessions.GetByToken(r.Context(), cookie.Value)
	if err != nil {
		a.logger.Error("session lookup failed", "error", err)
		return auth.Caller{}, false
	}
	if sess == nil {
		return auth.Caller{}, false
	}
	user, err := a.users.GetByID(r.Context(), sess.UserID)
	if err != nil {
		a.logger.Error("session user lookup failed", "error", err)
		return auth.Caller{}, false
	}
	if user == nil {
		return auth.Caller{}, false
	}
	return auth.Caller{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: sess.ID,
		Source:    auth.SourceSession,
	}, true
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (a *Authenticator) fromToken(raw string) (auth.Caller, error) {
	if len(a.jwtSecret) == 0 {
		return auth.Caller{}, errors.New("bearer tokens are not configured")
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return auth.Caller{}, fmt.Errorf("parse token: %w", err)
	}
	if claims.Subject == "" {
		return auth.Caller{}, errors.New("token has no subject")
	}
	return auth.Caller{UserID: claims.Subject, Email: claims.Email, Source: auth.SourceToken}, nil
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}

// RequireAuth rejects unauthenticated requests with a JSON 401 before the
// handler runs.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := a.Resolve(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithCaller(r.Context(), c)))
	})
}

// OptionalAuth attaches the caller when there is one and lets anonymous
// requests through.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := a.Resolve(r); ok {
			r = r.WithContext(auth.WithCaller(r.Context(), c))
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
