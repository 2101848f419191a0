package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ecopantry/ecopantry/internal/metrics"
	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/ecopantry/ecopantry/internal/store"
	ws "github.com/ecopantry/ecopantry/internal/websocket"
)

type ConsumptionLogHandler struct {
	store   *store.ConsumptionLogStore
	hub     ws.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *slog.Logger
}

func NewConsumptionLogHandler(s *store.ConsumptionLogStore, hub ws.Publisher, m *metrics.Metrics, logger *slog.Logger) *ConsumptionLogHandler {
	return &ConsumptionLogHandler{store: s, hub: hub, metrics: m, now: time.Now, logger: logger}
}

// List handles GET /api/consumption-logs?limit=N
func (h *ConsumptionLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	logs, err := h.store.List(r.Context(), caller(r), limit)
	if err != nil {
		storeFailed(w, h.logger, err, "list consumption logs")
		return
	}
	writeData(w, http.StatusOK, logs)
}

type consumptionLogRequest struct {
	FoodItemID       *string     `json:"food_item_id"`
	ItemName         string      `json:"item_name" validate:"required,max=200"`
	QuantityConsumed float64     `json:"quantity_consumed" validate:"gt=0"`
	ConsumptionDate  *model.Date `json:"consumption_date"`
	IsWaste          bool        `json:"is_waste"`
	WasteReason      *string     `json:"waste_reason" validate:"omitempty,max=200"`
}

// Create handles POST /api/consumption-logs
func (h *ConsumptionLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req consumptionLogRequest
	if !decode(w, r, &req) {
		return
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if !check(w, &req) {
		return
	}

	in := model.ConsumptionLogInput{
		FoodItemID:       trimPtr(req.FoodItemID),
		ItemName:         req.ItemName,
		QuantityConsumed: req.QuantityConsumed,
		ConsumptionDate:  model.DateOf(h.now()),
		IsWaste:          req.IsWaste,
	}
	if req.ConsumptionDate != nil {
		in.ConsumptionDate = *req.ConsumptionDate
	}
	if req.IsWaste {
		in.WasteReason = trimPtr(req.WasteReason)
	}

	c := caller(r)
	log, err := h.store.Create(r.Context(), c, in)
	if err != nil {
		storeFailed(w, h.logger, err, "create consumption log")
		return
	}

	if h.metrics != nil {
		h.metrics.ItemsConsumed.WithLabelValues(metrics.Outcome(log.IsWaste)).Inc()
	}
	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityConsumptionLog, ws.ActionCreated, log.ID, nil))
	writeData(w, http.StatusCreated, log)
}
