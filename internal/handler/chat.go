package handler

import (
	"log/slog"
	"net/http"

	"github.com/ecopantry/ecopantry/internal/chat"
	"github.com/ecopantry/ecopantry/internal/metrics"
)

type ChatHandler struct {
	service *chat.Service
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewChatHandler creates a chat handler. A nil service answers 503.
func NewChatHandler(svc *chat.Service, m *metrics.Metrics, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{service: svc, metrics: m, logger: logger}
}

type chatRequest struct {
	History []chat.Message `json:"history" validate:"omitempty,max=50,dive"`
}

// Reply handles POST /api/chat. Authentication is optional; a signed-in
// caller gets answers that know about their expiring food.
func (h *ChatHandler) Reply(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusServiceUnavailable, "chat is not configured")
		return
	}

	var req chatRequest
	if !decode(w, r, &req) || !check(w, &req) {
		return
	}

	reply, err := h.service.Reply(r.Context(), caller(r), req.History)
	if err != nil {
		h.count("error")
		h.logger.Error("chat reply", "error", err)
		writeError(w, http.StatusBadGateway, "chat completion failed")
		return
	}

	h.count("ok")
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (h *ChatHandler) count(result string) {
	if h.metrics != nil {
		h.metrics.ChatCompletions.WithLabelValues(result).Inc()
	}
}
