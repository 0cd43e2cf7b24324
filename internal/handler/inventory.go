package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/lookup"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

// InventoryStore defines the database methods needed by inventory handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type InventoryStore interface {
	ListInventoryItems(ctx context.Context, arg database.ListInventoryItemsParams) ([]database.InventoryItem, error)
	ListInventoryCategories(ctx context.Context, outletID uuid.UUID) ([]string, error)
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, arg database.CreateInventoryItemParams) (database.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, arg database.UpdateInventoryItemParams) (database.InventoryItem, error)
	SoftDeleteInventoryItem(ctx context.Context, arg database.SoftDeleteInventoryItemParams) (uuid.UUID, error)
}

// InventoryHandler handles the item master and item lookup.
type InventoryHandler struct {
	store InventoryStore
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(store InventoryStore) *InventoryHandler {
	return &InventoryHandler{store: store}
}

// RegisterRoutes registers inventory endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/inventory
func (h *InventoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type inventoryItemRequest struct {
	Name      string   `json:"name"`
	Sku       string   `json:"sku"`
	Category  string   `json:"category"`
	ItemType  string   `json:"item_type"`
	Unit      string   `json:"unit"`
	UnitCost  string   `json:"unit_cost"`
	ParLevel  string   `json:"par_level"`
	OnHand    string   `json:"on_hand"`
	Locations []string `json:"locations"`
}

type inventoryItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Sku           string    `json:"sku"`
	Category      string    `json:"category"`
	ItemType      string    `json:"item_type"`
	Unit          string    `json:"unit"`
	UnitCost      string    `json:"unit_cost"`
	ParLevel      string    `json:"par_level"`
	OnHand        string    `json:"on_hand"`
	StockStatus   string    `json:"stock_status"`
	Locations     []string  `json:"locations"`
	LastCountedAt *string   `json:"last_counted_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Score         int       `json:"score,omitempty"`
}

func toInventoryItemResponse(it database.InventoryItem) inventoryItemResponse {
	locations := it.Locations
	if locations == nil {
		locations = []string{}
	}
	return inventoryItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Sku:           it.Sku,
		Category:      it.Category,
		ItemType:      it.ItemType,
		Unit:          it.Unit,
		UnitCost:      pgconv.StringFixed(it.UnitCost, 4),
		ParLevel:      pgconv.StringFixed(it.ParLevel, 3),
		OnHand:        pgconv.StringFixed(it.OnHand, 3),
		StockStatus:   string(costing.Stock(pgconv.Decimal(it.OnHand), pgconv.Decimal(it.ParLevel))),
		Locations:     locations,
		LastCountedAt: pgconv.DatePtr(it.LastCountedAt),
		UpdatedAt:     it.UpdatedAt,
	}
}

// --- Handlers ---

// List handles GET /outlets/{oid}/inventory?q=&category=&type=&low_stock=true
// With q set, results are ranked by relevance; otherwise ordered by name.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	q := r.URL.Query()
	itemType := q.Get("type")
	if itemType != "" && !isValidItemType(itemType) {
		writeError(w, http.StatusBadRequest, "invalid type")
		return
	}
	lowStock := q.Get("low_stock") == "true"

	items, err := h.store.ListInventoryItems(r.Context(), database.ListInventoryItemsParams{
		OutletID: outletID,
		Category: pgconv.Text(q.Get("category")),
		ItemType: pgconv.Text(itemType),
	})
	if err != nil {
		internalError(w, "list inventory items", err)
		return
	}

	byID := make(map[uuid.UUID]database.InventoryItem, len(items))
	entries := make([]lookup.Item, len(items))
	for i, it := range items {
		byID[it.ID] = it
		entries[i] = lookup.Item{ID: it.ID, Code: it.Sku, Name: it.Name, Category: it.Category}
	}

	resp := []inventoryItemResponse{}
	for _, hit := range lookup.New(entries).Search(q.Get("q")) {
		item := toInventoryItemResponse(byID[hit.Item.ID])
		if lowStock && item.StockStatus == string(costing.StockOK) {
			continue
		}
		item.Score = hit.Score
		resp = append(resp, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Categories handles GET /outlets/{oid}/inventory/categories
func (h *InventoryHandler) Categories(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	categories, err := h.store.ListInventoryCategories(r.Context(), outletID)
	if err != nil {
		internalError(w, "list inventory categories", err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// Get handles GET /outlets/{oid}/inventory/{id}
func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "id", "item")
	if !ok {
		return
	}

	item, err := h.store.GetInventoryItem(r.Context(), database.GetInventoryItemParams{ID: itemID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		internalError(w, "get inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}

// Create handles POST /outlets/{oid}/inventory
func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, msg := validateInventoryItem(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	onHand, err := optionalDecimal(req.OnHand)
	if err != nil || onHand.IsNegative() {
		writeError(w, http.StatusBadRequest, "on_hand must be >= 0")
		return
	}

	item, err := h.store.CreateInventoryItem(r.Context(), database.CreateInventoryItemParams{
		OutletID:  outletID,
		Name:      v.name,
		Sku:       v.sku,
		Category:  v.category,
		ItemType:  req.ItemType,
		Unit:      v.unit,
		UnitCost:  pgconv.UnitCost(v.unitCost),
		ParLevel:  pgconv.Quantity(v.parLevel),
		OnHand:    pgconv.Quantity(onHand),
		Locations: v.locations,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "sku already exists")
			return
		}
		internalError(w, "create inventory item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInventoryItemResponse(item))
}

// Update handles PUT /outlets/{oid}/inventory/{id}. On-hand is only changed
// by receiving and count postings, never directly.
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "id", "item")
	if !ok {
		return
	}

	var req inventoryItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	v, msg := validateInventoryItem(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := h.store.UpdateInventoryItem(r.Context(), database.UpdateInventoryItemParams{
		ID:        itemID,
		OutletID:  outletID,
		Name:      v.name,
		Sku:       v.sku,
		Category:  v.category,
		ItemType:  req.ItemType,
		Unit:      v.unit,
		UnitCost:  pgconv.UnitCost(v.unitCost),
		ParLevel:  pgconv.Quantity(v.parLevel),
		Locations: v.locations,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "sku already exists")
			return
		}
		internalError(w, "update inventory item", err)
		return
	}
	writeJSON(w, http.StatusOK, toInventoryItemResponse(item))
}

// Delete handles DELETE /outlets/{oid}/inventory/{id} (soft delete).
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	itemID, ok := urlUUID(w, r, "id", "item")
	if !ok {
		return
	}

	_, err := h.store.SoftDeleteInventoryItem(r.Context(), database.SoftDeleteInventoryItemParams{ID: itemID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		internalError(w, "delete inventory item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

type inventoryFields struct {
	name      string
	sku       string
	category  string
	unit      string
	unitCost  decimal.Decimal
	parLevel  decimal.Decimal
	locations []string
}

func validateInventoryItem(req inventoryItemRequest) (inventoryFields, string) {
	v := inventoryFields{
		name:     strings.TrimSpace(req.Name),
		sku:      strings.TrimSpace(req.Sku),
		category: strings.TrimSpace(req.Category),
		unit:     strings.TrimSpace(req.Unit),
	}
	if v.name == "" || v.sku == "" || v.category == "" || v.unit == "" {
		return v, "name, sku, category, and unit are required"
	}
	if !isValidItemType(req.ItemType) {
		return v, "item_type must be RAW, PREP, or MENU"
	}

	var err error
	if v.unitCost, err = optionalDecimal(req.UnitCost); err != nil || v.unitCost.IsNegative() {
		return v, "unit_cost must be >= 0"
	}
	if v.parLevel, err = optionalDecimal(req.ParLevel); err != nil || v.parLevel.IsNegative() {
		return v, "par_level must be >= 0"
	}

	v.locations = []string{}
	for _, loc := range req.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			v.locations = append(v.locations, loc)
		}
	}
	return v, ""
}

// optionalDecimal parses s, treating the empty string as zero.
func optionalDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func isValidItemType(t string) bool {
	switch t {
	case enum.ItemTypeRaw, enum.ItemTypePrep, enum.ItemTypeMenu:
		return true
	}
	return false
}
