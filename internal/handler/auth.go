package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/middleware"
	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/ecopantry/ecopantry/internal/store"
)

type AuthHandler struct {
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	profileStore *store.ProfileStore
	secureCookie bool
	logger       *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, ps *store.ProfileStore, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		userStore:    us,
		sessionStore: ss,
		profileStore: ps,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

type registerRequest struct {
	Email         string  `json:"email" validate:"required,email,max=254"`
	Password      string  `json:"password" validate:"required,min=8,max=72"`
	FullName      *string `json:"full_name" validate:"omitempty,max=100"`
	HouseholdName *string `json:"household_name" validate:"omitempty,max=100"`
}

// Register handles POST /register: it creates the account and its profile
// and signs the new user in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	req.Email = normalizeEmail(req.Email)
	if !check(w, &req) {
		return
	}

	existing, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		storeFailed(w, h.logger, err, "look up user")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "email is already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to register")
		return
	}

	user, err := h.userStore.Create(r.Context(), req.Email, string(hash))
	if err != nil {
		storeFailed(w, h.logger, err, "create user")
		return
	}

	c := auth.Caller{UserID: user.ID, Email: user.Email, Source: auth.SourceSession}
	if _, err := h.profileStore.Upsert(r.Context(), c, user.Email, trimPtr(req.FullName), trimPtr(req.HouseholdName)); err != nil {
		storeFailed(w, h.logger, err, "create profile")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	h.logger.Info("user registered", "user_id", user.ID)
	writeData(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	req.Email = normalizeEmail(req.Email)
	if !check(w, &req) {
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		storeFailed(w, h.logger, err, "look up user")
		return
	}
	// Same answer for unknown email and wrong password.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !h.startSession(w, r, user) {
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	sess, err := h.sessionStore.Create(r.Context(), user.ID)
	if err != nil {
		storeFailed(w, h.logger, err, "create session")
		return false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return true
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		sess, err := h.sessionStore.GetByToken(r.Context(), cookie.Value)
		if err != nil {
			h.logger.Error("logout session lookup", "error", err)
		} else if sess != nil {
			if err := h.sessionStore.Delete(r.Context(), sess.ID); err != nil {
				h.logger.Error("delete session", "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
