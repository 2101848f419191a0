package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/ecopantry/ecopantry/internal/push"
	"github.com/ecopantry/ecopantry/internal/store"
)

// PushSender delivers one notification to one browser subscription.
type PushSender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload push.Payload) error
	VAPIDPublicKey() string
}

type PushHandler struct {
	pushStore *store.PushStore
	service   PushSender
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc PushSender, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, logger: logger}
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint" validate:"required,url,max=2048"`
	P256dh     string `json:"p256dh" validate:"required,max=256"`
	Auth       string `json:"auth" validate:"required,max=256"`
	DeviceName string `json:"device_name" validate:"max=100"`
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decode(w, r, &req) {
		return
	}
	req.DeviceName = strings.TrimSpace(req.DeviceName)
	if !check(w, &req) {
		return
	}

	sub, err := h.pushStore.CreateSubscription(r.Context(), caller(r), req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		storeFailed(w, h.logger, err, "save subscription")
		return
	}
	writeData(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.pushStore.Delete(r.Context(), caller(r), r.PathValue("id"))
	if err != nil {
		storeFailed(w, h.logger, err, "delete subscription")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSubscriptions handles GET /api/push/subscriptions
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByUser(r.Context(), caller(r))
	if err != nil {
		storeFailed(w, h.logger, err, "list subscriptions")
		return
	}
	writeData(w, http.StatusOK, subs)
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// TestNotification handles POST /api/push/test
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.ListByUser(r.Context(), caller(r))
	if err != nil {
		storeFailed(w, h.logger, err, "list subscriptions")
		return
	}

	payload := push.Payload{
		Title: "Test Notification",
		Body:  "Push notifications are working!",
		URL:   "/settings",
		Tag:   "test",
	}

	sent := 0
	for _, sub := range subs {
		err := h.service.Send(r.Context(), sub, payload)
		if errors.Is(err, push.ErrExpired) {
			if err := h.pushStore.DeleteByEndpoint(r.Context(), sub.Endpoint); err != nil {
				h.logger.Error("delete expired subscription", "error", err)
			}
			continue
		}
		if err != nil {
			h.logger.Error("test push send", "error", err)
			continue
		}
		sent++
	}

	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}
