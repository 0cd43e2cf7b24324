package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/middleware"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

const (
	wasteNumberConstraint = "waste_entries_outlet_id_waste_number_key"
	maxWasteNumberRetries = 3
)

// WasteStore defines the database methods needed by waste handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type WasteStore interface {
	ListWasteEntries(ctx context.Context, arg database.ListWasteEntriesParams) ([]database.WasteEntry, error)
	SumWasteCost(ctx context.Context, arg database.SumWasteCostParams) (pgtype.Numeric, error)
	GetNextWasteNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateWasteEntry(ctx context.Context, arg database.CreateWasteEntryParams) (database.WasteEntry, error)
	DeleteWasteEntry(ctx context.Context, arg database.DeleteWasteEntryParams) (uuid.UUID, error)
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
}

// WasteHandler handles waste log endpoints.
type WasteHandler struct {
	store WasteStore
}

// NewWasteHandler creates a new WasteHandler.
func NewWasteHandler(store WasteStore) *WasteHandler {
	return &WasteHandler{store: store}
}

// RegisterRoutes registers waste endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/waste
func (h *WasteHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/total", h.Total)
	r.Post("/preview", h.Preview)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type wasteRequest struct {
	WastedAt        string `json:"wasted_at"`
	ItemType        string `json:"item_type"`
	InventoryItemID string `json:"inventory_item_id"`
	Unit            string `json:"unit"`
	Quantity        string `json:"quantity"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

type wasteResponse struct {
	ID              uuid.UUID `json:"id"`
	WasteNumber     string    `json:"waste_number"`
	WastedAt        time.Time `json:"wasted_at"`
	ItemType        string    `json:"item_type"`
	InventoryItemID uuid.UUID `json:"inventory_item_id"`
	ItemName        string    `json:"item_name"`
	Unit            string    `json:"unit"`
	Quantity        string    `json:"quantity"`
	UnitCost        string    `json:"unit_cost"`
	Cost            string    `json:"cost"`
	OnHandAtTime    string    `json:"on_hand_at_time"`
	Reason          string    `json:"reason"`
	Notes           *string   `json:"notes"`
	RecordedBy      uuid.UUID `json:"recorded_by"`
}

type wastePreviewResponse struct {
	Complete bool    `json:"complete"`
	ItemName string  `json:"item_name,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	UnitCost string  `json:"unit_cost"`
	OnHand   *string `json:"on_hand"`
	Cost     string  `json:"cost"`
}

func toWasteResponse(e database.WasteEntry) wasteResponse {
	return wasteResponse{
		ID:              e.ID,
		WasteNumber:     e.WasteNumber,
		WastedAt:        e.WastedAt,
		ItemType:        e.ItemType,
		InventoryItemID: e.InventoryItemID,
		ItemName:        e.ItemName,
		Unit:            e.Unit,
		Quantity:        pgconv.StringFixed(e.Quantity, 3),
		UnitCost:        pgconv.StringFixed(e.UnitCost, 4),
		Cost:            pgconv.String(e.Cost),
		OnHandAtTime:    pgconv.StringFixed(e.OnHandAtTime, 3),
		Reason:          e.Reason,
		Notes:           pgconv.TextPtr(e.Notes),
		RecordedBy:      e.RecordedBy,
	}
}

// --- Handlers ---

// List handles GET /outlets/{oid}/waste?date=YYYY-MM-DD (default today, UTC).
func (h *WasteHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	start, end, ok := dayRange(w, r)
	if !ok {
		return
	}

	entries, err := h.store.ListWasteEntries(r.Context(), database.ListWasteEntriesParams{
		OutletID: outletID, StartAt: start, EndAt: end,
	})
	if err != nil {
		internalError(w, "list waste entries", err)
		return
	}

	resp := make([]wasteResponse, len(entries))
	for i, e := range entries {
		resp[i] = toWasteResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Total handles GET /outlets/{oid}/waste/total?date=YYYY-MM-DD
func (h *WasteHandler) Total(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	start, end, ok := dayRange(w, r)
	if !ok {
		return
	}

	total, err := h.store.SumWasteCost(r.Context(), database.SumWasteCostParams{
		OutletID: outletID, StartAt: start, EndAt: end,
	})
	if err != nil {
		internalError(w, "sum waste cost", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"date":  start.Format(pgconv.DateLayout),
		"total": pgconv.String(total),
	})
}

// Preview handles POST /outlets/{oid}/waste/preview. It prices a partly
// filled entry without writing anything; incomplete input costs zero.
func (h *WasteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	var req wasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := costing.WasteInput{Unit: strings.TrimSpace(req.Unit)}
	if qty, err := decimal.NewFromString(strings.TrimSpace(req.Quantity)); err == nil {
		in.Quantity = qty.Round(pgconv.QuantityPlaces)
	}

	resp := wastePreviewResponse{UnitCost: "0.0000"}
	if id, err := uuid.Parse(req.InventoryItemID); err == nil {
		item, err := h.store.GetInventoryItem(r.Context(), database.GetInventoryItemParams{ID: id, OutletID: outletID})
		switch {
		case err == nil:
			// Create rejects any unit other than the item's own.
			in.HasItem = (req.ItemType == "" || req.ItemType == item.ItemType) &&
				(in.Unit == "" || in.Unit == item.Unit)
			in.UnitCost = pgconv.Decimal(item.UnitCost)
			resp.ItemName = item.Name
			resp.Unit = item.Unit
			resp.UnitCost = pgconv.StringFixed(item.UnitCost, 4)
			onHand := pgconv.StringFixed(item.OnHand, 3)
			resp.OnHand = &onHand
		case !errors.Is(err, pgx.ErrNoRows):
			internalError(w, "preview waste: get item", err)
			return
		}
	}

	cost, complete := costing.WasteCost(in)
	resp.Complete = complete
	resp.Cost = cost.StringFixed(2)
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /outlets/{oid}/waste
func (h *WasteHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req wasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wastedAt := time.Now().UTC()
	if s := strings.TrimSpace(req.WastedAt); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid wasted_at format, use RFC 3339")
			return
		}
		wastedAt = t
	}
	if !isValidItemType(req.ItemType) {
		writeError(w, http.StatusBadRequest, "item_type must be RAW, PREP, or MENU")
		return
	}
	itemID, err := uuid.Parse(req.InventoryItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid inventory_item_id")
		return
	}
	qty, err := decimal.NewFromString(strings.TrimSpace(req.Quantity))
	if err == nil {
		qty = qty.Round(pgconv.QuantityPlaces)
	}
	if err != nil || !qty.IsPositive() {
		writeError(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	if !isValidWasteReason(req.Reason) {
		writeError(w, http.StatusBadRequest, "reason must be EXPIRED, SPILLED_DAMAGED, PREPARATION_MISTAKE, OVERPRODUCTION, or RETURNED")
		return
	}

	item, err := h.store.GetInventoryItem(r.Context(), database.GetInventoryItemParams{ID: itemID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "inventory item not found")
			return
		}
		internalError(w, "create waste: get item", err)
		return
	}
	if item.ItemType != req.ItemType {
		writeError(w, http.StatusBadRequest, "item does not match item_type")
		return
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = item.Unit
	}
	if unit != item.Unit {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unit must be %s for this item", item.Unit))
		return
	}

	unitCost := pgconv.Decimal(item.UnitCost)
	cost, _ := costing.WasteCost(costing.WasteInput{HasItem: true, Unit: unit, Quantity: qty, UnitCost: unitCost})

	params := database.CreateWasteEntryParams{
		OutletID:        outletID,
		WastedAt:        wastedAt,
		ItemType:        item.ItemType,
		InventoryItemID: item.ID,
		ItemName:        item.Name,
		Unit:            unit,
		Quantity:        pgconv.Quantity(qty),
		UnitCost:        pgconv.UnitCost(unitCost),
		Cost:            pgconv.Numeric(cost),
		OnHandAtTime:    pgconv.Quantity(pgconv.Decimal(item.OnHand)),
		Reason:          req.Reason,
		Notes:           pgconv.Text(strings.TrimSpace(req.Notes)),
		RecordedBy:      claims.UserID,
	}

	var entry database.WasteEntry
	for attempt := 0; attempt < maxWasteNumberRetries; attempt++ {
		next, nerr := h.store.GetNextWasteNumber(r.Context(), outletID)
		if nerr != nil {
			internalError(w, "create waste: next number", nerr)
			return
		}
		params.WasteNumber = fmt.Sprintf("WST-%04d", next)
		entry, err = h.store.CreateWasteEntry(r.Context(), params)
		if uniqueConstraint(err) != wasteNumberConstraint {
			break
		}
	}
	if err != nil {
		internalError(w, "create waste entry", err)
		return
	}

	writeJSON(w, http.StatusCreated, toWasteResponse(entry))
}

// Delete handles DELETE /outlets/{oid}/waste/{id}
func (h *WasteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	entryID, ok := urlUUID(w, r, "id", "waste entry")
	if !ok {
		return
	}

	if _, err := h.store.DeleteWasteEntry(r.Context(), database.DeleteWasteEntryParams{ID: entryID, OutletID: outletID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "waste entry not found")
			return
		}
		internalError(w, "delete waste entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// dayRange reads ?date= and returns the half-open UTC day it names.
func dayRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse(pgconv.DateLayout, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		day = t
	}
	return day, day.AddDate(0, 0, 1), true
}

func isValidWasteReason(reason string) bool {
	switch reason {
	case enum.WasteReasonExpired, enum.WasteReasonSpilledDamaged, enum.WasteReasonPreparationMistake,
		enum.WasteReasonOverproduction, enum.WasteReasonReturned:
		return true
	}
	return false
}
