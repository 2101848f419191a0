package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecopantry/ecopantry/internal/store"
	ws "github.com/ecopantry/ecopantry/internal/websocket"
)

type ProfileHandler struct {
	store  *store.ProfileStore
	hub    ws.Publisher
	logger *slog.Logger
}

func NewProfileHandler(s *store.ProfileStore, hub ws.Publisher, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{store: s, hub: hub, logger: logger}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.Get(r.Context(), caller(r))
	if err != nil {
		storeFailed(w, h.logger, err, "get profile")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeData(w, http.StatusOK, p)
}

type profileRequest struct {
	Email         string  `json:"email" validate:"omitempty,email,max=254"`
	FullName      *string `json:"full_name" validate:"omitempty,max=100"`
	HouseholdName *string `json:"household_name" validate:"omitempty,max=100"`
}

// Update handles PUT /api/profile. Omitted fields keep their stored values;
// an empty string clears a name. Without any stored profile the email falls
// back to the one the caller signed in with.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !check(w, &req) {
		return
	}

	c := caller(r)
	existing, err := h.store.Get(r.Context(), c)
	if err != nil {
		storeFailed(w, h.logger, err, "get profile")
		return
	}

	email := req.Email
	fullName := trimPtr(req.FullName)
	householdName := trimPtr(req.HouseholdName)
	if existing != nil {
		if email == "" {
			email = existing.Email
		}
		if req.FullName == nil {
			fullName = existing.FullName
		}
		if req.HouseholdName == nil {
			householdName = existing.HouseholdName
		}
	} else if email == "" {
		email = c.Email
	}

	p, err := h.store.Upsert(r.Context(), c, email, fullName, householdName)
	if err != nil {
		storeFailed(w, h.logger, err, "update profile")
		return
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityProfile, ws.ActionUpdated, p.ID, nil))
	writeData(w, http.StatusOK, p)
}
