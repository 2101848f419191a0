package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecopantry/ecopantry/internal/grocery"
	"github.com/ecopantry/ecopantry/internal/shopping"
	"github.com/ecopantry/ecopantry/internal/store"
	ws "github.com/ecopantry/ecopantry/internal/websocket"
)

type ShoppingListHandler struct {
	store  *store.ShoppingListStore
	hub    ws.Publisher
	logger *slog.Logger
}

func NewShoppingListHandler(s *store.ShoppingListStore, hub ws.Publisher, logger *slog.Logger) *ShoppingListHandler {
	return &ShoppingListHandler{store: s, hub: hub, logger: logger}
}

// List handles GET /api/shopping-lists
func (h *ShoppingListHandler) List(w http.ResponseWriter, r *http.Request) {
	lists, err := h.store.ListWithItems(r.Context(), caller(r))
	if err != nil {
		storeFailed(w, h.logger, err, "list shopping lists")
		return
	}
	writeData(w, http.StatusOK, shopping.Views(lists))
}

type shoppingListRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive *bool  `json:"is_active"`
}

// Create handles POST /api/shopping-lists
func (h *ShoppingListHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req shoppingListRequest
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if !check(w, &req) {
		return
	}
	active := req.IsActive == nil || *req.IsActive

	c := caller(r)
	list, err := h.store.CreateList(r.Context(), c, req.Name, active)
	if err != nil {
		storeFailed(w, h.logger, err, "create shopping list")
		return
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityShoppingList, ws.ActionCreated, list.ID, nil))
	writeData(w, http.StatusCreated, list)
}

type shoppingItemRequest struct {
	ItemName string  `json:"item_name" validate:"required,max=200"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Unit     string  `json:"unit" validate:"max=20"`
	Category *string `json:"category" validate:"omitempty,max=50"`
}

// AddItem handles POST /api/shopping-lists/{list_id}/items
func (h *ShoppingListHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req shoppingItemRequest
	if !decode(w, r, &req) {
		return
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if !check(w, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Unit == "" {
		req.Unit = "pieces"
	}

	// Auto-categorize if no category provided
	category := trimPtr(req.Category)
	if category == nil {
		guess := grocery.Categorize(req.ItemName)
		category = &guess
	}

	c := caller(r)
	item, err := h.store.AddItem(r.Context(), c, r.PathValue("list_id"), req.ItemName, req.Quantity, req.Unit, category)
	if err != nil {
		storeFailed(w, h.logger, err, "add shopping list item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityShoppingItem, ws.ActionCreated, item.ID, map[string]any{"list_id": item.ListID}))
	writeData(w, http.StatusCreated, item)
}

type purchasedRequest struct {
	IsPurchased *bool  `json:"is_purchased" validate:"required"`
	Version     *int64 `json:"version" validate:"required"`
}

// SetPurchased handles PUT /api/shopping-lists/{list_id}/items/{id}/purchased.
// The write only lands if the client saw the current version; otherwise the
// response is 409 with the item as it now stands.
func (h *ShoppingListHandler) SetPurchased(w http.ResponseWriter, r *http.Request) {
	var req purchasedRequest
	if !decode(w, r, &req) || !check(w, &req) {
		return
	}

	c := caller(r)
	listID := r.PathValue("list_id")

	existing, err := h.store.GetItem(r.Context(), c, r.PathValue("id"))
	if err != nil {
		storeFailed(w, h.logger, err, "get shopping list item")
		return
	}
	if existing == nil || existing.ListID != listID {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err := h.store.SetPurchased(r.Context(), c, existing.ID, *req.IsPurchased, *req.Version)
	if errors.Is(err, store.ErrVersionConflict) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "item was changed by another session",
			"data":  item,
		})
		return
	}
	if err != nil {
		storeFailed(w, h.logger, err, "update shopping list item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	list, err := h.store.GetList(r.Context(), c, listID)
	if err != nil {
		storeFailed(w, h.logger, err, "get shopping list")
		return
	}
	var progress float64
	if list != nil {
		progress = shopping.Progress(*list)
	}

	h.hub.Publish(c.UserID, ws.NewMessage(ws.EntityShoppingItem, ws.ActionUpdated, item.ID, map[string]any{
		"list_id":      item.ListID,
		"is_purchased": item.IsPurchased,
		"version":      item.Version,
	}))
	writeJSON(w, http.StatusOK, map[string]any{"data": item, "progress": progress})
}
