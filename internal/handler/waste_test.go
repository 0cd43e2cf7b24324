package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/auth"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/handler"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

// --- Mock store ---

type mockWasteStore struct {
	entries    map[uuid.UUID]database.WasteEntry
	items      map[uuid.UUID]database.InventoryItem
	collisions int
}

func newMockWasteStore() *mockWasteStore {
	return &mockWasteStore{
		entries: make(map[uuid.UUID]database.WasteEntry),
		items:   make(map[uuid.UUID]database.InventoryItem),
	}
}

func (m *mockWasteStore) inRange(e database.WasteEntry, outletID uuid.UUID, start, end time.Time) bool {
	return e.OutletID == outletID && !e.WastedAt.Before(start) && e.WastedAt.Before(end)
}

func (m *mockWasteStore) ListWasteEntries(_ context.Context, arg database.ListWasteEntriesParams) ([]database.WasteEntry, error) {
	var result []database.WasteEntry
	for _, e := range m.entries {
		if m.inRange(e, arg.OutletID, arg.StartAt, arg.EndAt) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockWasteStore) SumWasteCost(_ context.Context, arg database.SumWasteCostParams) (pgtype.Numeric, error) {
	sum := decimal.Zero
	for _, e := range m.entries {
		if m.inRange(e, arg.OutletID, arg.StartAt, arg.EndAt) {
			sum = sum.Add(pgconv.Decimal(e.Cost))
		}
	}
	return pgconv.Numeric(sum), nil
}

func (m *mockWasteStore) GetNextWasteNumber(_ context.Context, outletID uuid.UUID) (int32, error) {
	var n int32
	for _, e := range m.entries {
		if e.OutletID == outletID {
			n++
		}
	}
	return n + 1, nil
}

func (m *mockWasteStore) CreateWasteEntry(_ context.Context, arg database.CreateWasteEntryParams) (database.WasteEntry, error) {
	if m.collisions > 0 {
		m.collisions--
		return database.WasteEntry{}, &pgconn.PgError{Code: "23505", ConstraintName: "waste_entries_outlet_id_waste_number_key"}
	}
	e := database.WasteEntry{
		ID: uuid.New(), OutletID: arg.OutletID, WasteNumber: arg.WasteNumber, WastedAt: arg.WastedAt,
		ItemType: arg.ItemType, InventoryItemID: arg.InventoryItemID, ItemName: arg.ItemName,
		Unit: arg.Unit, Quantity: arg.Quantity, UnitCost: arg.UnitCost, Cost: arg.Cost,
		OnHandAtTime: arg.OnHandAtTime, Reason: arg.Reason, Notes: arg.Notes, RecordedBy: arg.RecordedBy,
		CreatedAt: time.Now(),
	}
	m.entries[e.ID] = e
	return e, nil
}

func (m *mockWasteStore) DeleteWasteEntry(_ context.Context, arg database.DeleteWasteEntryParams) (uuid.UUID, error) {
	e, ok := m.entries[arg.ID]
	if !ok || e.OutletID != arg.OutletID {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.entries, arg.ID)
	return e.ID, nil
}

func (m *mockWasteStore) GetInventoryItem(_ context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error) {
	it, ok := m.items[arg.ID]
	if !ok || it.OutletID != arg.OutletID {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (m *mockWasteStore) addItem(outletID uuid.UUID, name, itemType, unit, cost, onHand string) database.InventoryItem {
	it := database.InventoryItem{
		ID: uuid.New(), OutletID: outletID, Name: name, ItemType: itemType, Unit: unit,
		UnitCost: pgconv.UnitCost(dec(cost)), OnHand: pgconv.Quantity(dec(onHand)), IsActive: true,
	}
	m.items[it.ID] = it
	return it
}

func (m *mockWasteStore) addEntry(outletID uuid.UUID, at time.Time, cost string) database.WasteEntry {
	e := database.WasteEntry{
		ID: uuid.New(), OutletID: outletID, WasteNumber: "WST-9999", WastedAt: at,
		Reason: enum.WasteReasonExpired, Cost: pgconv.Numeric(dec(cost)),
	}
	m.entries[e.ID] = e
	return e
}

// --- Helpers ---

func setupWasteRouter(store *mockWasteStore, claims *auth.Claims) *chi.Mux {
	h := handler.NewWasteHandler(store)
	r := chi.NewRouter()
	if claims != nil {
		r.Use(asUser(claims))
	}
	r.Route("/outlets/{oid}/waste", h.RegisterRoutes)
	return r
}

func wastePath(outletID uuid.UUID) string {
	return "/outlets/" + outletID.String() + "/waste"
}

// --- Tests ---

func TestCreateWaste(t *testing.T) {
	outletID := uuid.New()
	store := newMockWasteStore()
	milk := store.addItem(outletID, "Milk", enum.ItemTypeRaw, "L", "1.2500", "12")
	claims := managerClaims(outletID)

	rr := doRequest(t, setupWasteRouter(store, claims), "POST", wastePath(outletID), map[string]string{
		"wasted_at":         "2026-10-17T09:30:00Z",
		"item_type":         enum.ItemTypeRaw,
		"inventory_item_id": milk.ID.String(),
		"quantity":          "2.5",
		"reason":            enum.WasteReasonExpired,
		"notes":             "past date",
	})
	expectStatus(t, rr, http.StatusCreated)

	resp := decodeMap(t, rr)
	checks := map[string]string{
		"waste_number":    "WST-0001",
		"item_name":       "Milk",
		"unit":            "L",
		"quantity":        "2.500",
		"cost":            "3.13",
		"on_hand_at_time": "12.000",
		"notes":           "past date",
		"recorded_by":     claims.UserID.String(),
	}
	for field, want := range checks {
		if resp[field] != want {
			t.Errorf("%s = %v, want %s", field, resp[field], want)
		}
	}
	if got := pgconv.Decimal(store.items[milk.ID].OnHand); !got.Equal(dec("12")) {
		t.Errorf("on_hand changed to %s; waste must not touch stock", got)
	}
}

func TestCreateWaste_RetriesNumberCollision(t *testing.T) {
	outletID := uuid.New()
	store := newMockWasteStore()
	store.collisions = 2
	milk := store.addItem(outletID, "Milk", enum.ItemTypeRaw, "L", "1", "0")

	rr := doRequest(t, setupWasteRouter(store, managerClaims(outletID)), "POST", wastePath(outletID), map[string]string{
		"item_type":         enum.ItemTypeRaw,
		"inventory_item_id": milk.ID.String(),
		"quantity":          "1",
		"reason":            enum.WasteReasonReturned,
	})
	expectStatus(t, rr, http.StatusCreated)
	if len(store.entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(store.entries))
	}
}

func TestCreateWaste_Validation(t *testing.T) {
	outletID := uuid.New()
	store := newMockWasteStore()
	milk := store.addItem(outletID, "Milk", enum.ItemTypeRaw, "L", "1", "0")
	router := setupWasteRouter(store, managerClaims(outletID))

	valid := func() map[string]string {
		return map[string]string{
			"item_type":         enum.ItemTypeRaw,
			"inventory_item_id": milk.ID.String(),
			"unit":              "L",
			"quantity":          "1",
			"reason":            enum.WasteReasonOverproduction,
		}
	}
	tests := []struct {
		name  string
		field string
		value string
		msg   string
	}{
		{"bad time", "wasted_at", "yesterday", "invalid wasted_at format, use RFC 3339"},
		{"bad type", "item_type", "FROZEN", "item_type must be RAW, PREP, or MENU"},
		{"bad item id", "inventory_item_id", "x", "invalid inventory_item_id"},
		{"zero qty", "quantity", "0", "quantity must be > 0"},
		{"negative qty", "quantity", "-3", "quantity must be > 0"},
		{"bad reason", "reason", "STOLEN", "reason must be EXPIRED, SPILLED_DAMAGED, PREPARATION_MISTAKE, OVERPRODUCTION, or RETURNED"},
		{"unknown item", "inventory_item_id", uuid.NewString(), "inventory item not found"},
		{"type mismatch", "item_type", enum.ItemTypePrep, "item does not match item_type"},
		{"unit mismatch", "unit", "KG", "unit must be L for this item"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			body[tt.field] = tt.value
			rr := doRequest(t, router, "POST", wastePath(outletID), body)
			expectError(t, rr, http.StatusBadRequest, tt.msg)
		})
	}
	if len(store.entries) != 0 {
		t.Errorf("expected no entries written, got %d", len(store.entries))
	}
}

func TestPreviewWaste(t *testing.T) {
	outletID := uuid.New()
	store := newMockWasteStore()
	butter := store.addItem(outletID, "Butter", enum.ItemTypeRaw, "KG", "8.4000", "3")
	router := setupWasteRouter(store, managerClaims(outletID))

	tests := []struct {
		name     string
		body     map[string]string
		complete bool
		cost     string
	}{
		{"complete", map[string]string{"inventory_item_id": butter.ID.String(), "unit": "KG", "quantity": "0.25"}, true, "2.10"},
		{"no item", map[string]string{"unit": "KG", "quantity": "1"}, false, "0.00"},
		{"no unit", map[string]string{"inventory_item_id": butter.ID.String(), "quantity": "1"}, false, "0.00"},
		{"no quantity", map[string]string{"inventory_item_id": butter.ID.String(), "unit": "KG"}, false, "0.00"},
		{"wrong type", map[string]string{"item_type": enum.ItemTypeMenu, "inventory_item_id": butter.ID.String(), "unit": "KG", "quantity": "1"}, false, "0.00"},
		{"wrong unit", map[string]string{"inventory_item_id": butter.ID.String(), "unit": "G", "quantity": "250"}, false, "0.00"},
		{"rounds quantity", map[string]string{"inventory_item_id": butter.ID.String(), "unit": "KG", "quantity": "0.0004"}, false, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, "POST", wastePath(outletID)+"/preview", tt.body)
			expectStatus(t, rr, http.StatusOK)
			resp := decodeMap(t, rr)
			if resp["complete"] != tt.complete || resp["cost"] != tt.cost {
				t.Errorf("got complete=%v cost=%v, want %v %s", resp["complete"], resp["cost"], tt.complete, tt.cost)
			}
		})
	}
	if len(store.entries) != 0 {
		t.Error("preview must not write")
	}
}

func TestListWaste_ByDateAndTotal(t *testing.T) {
	outletID := uuid.New()
	store := newMockWasteStore()
	store.addEntry(outletID, time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC), "4.20")
	store.addEntry(outletID, time.Date(2026, 10, 17, 23, 59, 0, 0, time.UTC), "1.05")
	store.addEntry(outletID, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), "9.99")
	store.addEntry(uuid.New(), time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), "50.00")
	router := setupWasteRouter(store, managerClaims(outletID))

	rr := doRequest(t, router, "GET", wastePath(outletID)+"?date=2026-10-17", nil)
	expectStatus(t, rr, http.StatusOK)
	if got := len(decodeList(t, rr)); got != 2 {
		t.Errorf("expected 2 entries, got %d", got)
	}

	rr = doRequest(t, router, "GET", wastePath(outletID)+"/total?date=2026-10-17", nil)
	expectStatus(t, rr, http.StatusOK)
	if resp := decodeMap(t, rr); resp["total"] != "5.25" || resp["date"] != "2026-10-17" {
		t.Errorf("unexpected total: %v", resp)
	}

	rr = doRequest(t, router, "GET", wastePath(outletID)+"?date=17-10-2026", nil)
	expectError(t, rr, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
}

func TestDeleteWaste(t *testing.T) {
	outletID := uuid.New()
	store := newMockWasteStore()
	e := store.addEntry(outletID, time.Now(), "1.00")
	router := setupWasteRouter(store, managerClaims(outletID))

	rr := doRequest(t, router, "DELETE", wastePath(uuid.New())+"/"+e.ID.String(), nil)
	expectError(t, rr, http.StatusNotFound, "waste entry not found")

	rr = doRequest(t, router, "DELETE", wastePath(outletID)+"/"+e.ID.String(), nil)
	expectStatus(t, rr, http.StatusNoContent)
	if len(store.entries) != 0 {
		t.Error("entry not deleted")
	}
}
