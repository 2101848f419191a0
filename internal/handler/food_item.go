package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ecopantry/ecopantry/internal/expiry"
	"github.com/ecopantry/ecopantry/internal/grocery"
	"github.com/ecopantry/ecopantry/internal/metrics"
	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/ecopantry/ecopantry/internal/store"
	ws "github.com/ecopantry/ecopantry/internal/websocket"
)

type FoodItemHandler struct {
	store   *store.FoodItemStore
	hub     ws.Publisher
	metrics *metrics.Metrics
	now     func() time.Time
	logger  *slog.Logger
}

func NewFoodItemHandler(s *store.FoodItemStore, hub ws.Publisher, m *metrics.Metrics, logger *slog.Logger) *FoodItemHandler {
	return &FoodItemHandler{store: s, hub: hub, metrics: m, now: time.Now, logger: logger}
}

type foodItemRequest struct {
	Name         string      `json:"name" validate:"required,max=200"`
	Category     string      `json:"category" validate:"omitempty,oneof=fruits vegetables dairy meat grains snacks beverages other"`
	Quantity     float64     `json:"quantity" validate:"gt=0"`
	Unit         string      `json:"unit" validate:"omitempty,oneof=pieces kg g l ml lbs oz"`
	Location     string      `json:"location" validate:"omitempty,oneof=pantry fridge freezer counter"`
	Notes        *string     `json:"notes" validate:"omitempty,max=1000"`
	Barcode      *string     `json:"barcode" validate:"omitempty,max=64"`
	PurchaseDate *model.Date `json:"purchase_date"`
	ExpiryDate   *model.Date `json:"expiry_date"`
}

// input fills defaults; a missing category is guessed from the name.
func (req foodItemRequest) input() model.FoodItemInput {
	in := model.FoodItemInput{
		Name:         req.Name,
		Category:     req.Category,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Location:     req.Location,
		Notes:        trimPtr(req.Notes),
		Barcode:      trimPtr(req.Barcode),
		PurchaseDate: req.PurchaseDate,
		ExpiryDate:   req.ExpiryDate,
	}
	if in.Category == "" {
		in.Category = grocery.Categorize(in.Name)
	}
	if in.Unit == "" {
		in.Unit = "pieces"
	}
	if in.Location == "" {
		in.Location = "pantry"
	}
	return in
}

func (h *FoodItemHandler) decodeItem(w http.ResponseWriter, r *http.Request) (model.FoodItemInput, bool) {
	var req foodItemRequest
	if !decode(w, r, &req) {
		return model.FoodItemInput{}, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if !check(w, &req) {
		return model.FoodItemInput{}, false
	}
	return req.input(), true
}

// List handles GET /api/food-items
func (h *FoodItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.FoodItemFilter{
		Search:   strings.TrimSpace(q.Get("q")),
		Category: q.Get("category"),
		Location: q.Get("location"),
		Sort:     q.Get("sort"),
	}
	if f.Category == "all" {
		f.Category = ""
	}
	if f.Location == "all" {
		f.Location = ""
	}

	items, err := h.store.List(r.Context(), caller(r), f)
	if err != nil {
		storeFailed(w, h.logger, err, "list food items")
		return
	}
	writeData(w, http.StatusOK, items)
}

// Create handles POST /api/food-items
func (h *FoodItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	c := caller(r)
	item, err := h.store.Create(r.Context(), c, in)
	if err != nil {
		storeFailed(w, h.logger, err, "create food item")
		return
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityFoodItem, ws.ActionCreated, item.ID, nil))
	writeData(w, http.StatusCreated, item)
}

// Update handles PUT /api/food-items/{id}
func (h *FoodItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	c := caller(r)
	item, err := h.store.Update(r.Context(), c, r.PathValue("id"), in)
	if err != nil {
		storeFailed(w, h.logger, err, "update food item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "food item not found")
		return
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityFoodItem, ws.ActionUpdated, item.ID, nil))
	writeData(w, http.StatusOK, item)
}

// Delete handles DELETE /api/food-items/{id}
func (h *FoodItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c := caller(r)
	id := r.PathValue("id")
	deleted, err := h.store.Delete(r.Context(), c, id)
	if err != nil {
		storeFailed(w, h.logger, err, "delete food item")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "food item not found")
		return
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityFoodItem, ws.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// Expiring handles GET /api/food-items/expiring?horizon=7&limit=5
func (h *FoodItemHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	horizon, err := intQuery(r, "horizon", expiry.ListHorizon)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intQuery(r, "limit", expiry.DashboardLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.List(r.Context(), caller(r), model.FoodItemFilter{Sort: "expiry"})
	if err != nil {
		storeFailed(w, h.logger, err, "list food items")
		return
	}

	now := h.now()
	writeData(w, http.StatusOK, expiry.Decorate(expiry.Select(items, now, horizon, limit), now))
}

type consumeRequest struct {
	// Zero consumes whatever quantity is left.
	Quantity        float64     `json:"quantity" validate:"gte=0"`
	IsWaste         bool        `json:"is_waste"`
	WasteReason     *string     `json:"waste_reason" validate:"omitempty,max=200"`
	ConsumptionDate *model.Date `json:"consumption_date"`
}

// Consume handles POST /api/food-items/{id}/consume. It logs the consumption
// and decrements the item, removing it once nothing is left.
func (h *FoodItemHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req consumeRequest
	if !decode(w, r, &req) || !check(w, &req) {
		return
	}

	c := caller(r)
	id := r.PathValue("id")

	date := model.DateOf(h.now())
	if req.ConsumptionDate != nil {
		date = *req.ConsumptionDate
	}
	var reason *string
	if req.IsWaste {
		reason = trimPtr(req.WasteReason)
	}

	log, item, err := h.store.Consume(r.Context(), c, id, req.Quantity, date, req.IsWaste, reason)
	if err != nil {
		storeFailed(w, h.logger, err, "consume food item")
		return
	}
	if log == nil {
		writeError(w, http.StatusNotFound, "food item not found")
		return
	}

	if h.metrics != nil {
		h.metrics.ItemsConsumed.WithLabelValues(metrics.Outcome(req.IsWaste)).Inc()
	}
	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityConsumptionLog, ws.ActionCreated, log.ID, nil))
	if item == nil {
		h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityFoodItem, ws.ActionDeleted, id, nil))
	} else {
		h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityFoodItem, ws.ActionConsumed, id, map[string]any{"quantity": item.Quantity}))
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": log, "item": item})
}
