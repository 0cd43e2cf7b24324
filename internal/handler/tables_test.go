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
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/handler"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/larder-pos/api/internal/ws"
)

// --- Mock store ---

type mockTableStore struct {
	tables map[uuid.UUID]database.DiningTable
	// racer changes a table's status between read and write.
	racer  func(t *database.DiningTable)
}

func newMockTableStore() *mockTableStore {
	return &mockTableStore{tables: make(map[uuid.UUID]database.DiningTable)}
}

func (m *mockTableStore) ListDiningTables(_ context.Context, outletID uuid.UUID) ([]database.DiningTable, error) {
	var result []database.DiningTable
	for _, t := range m.tables {
		if t.OutletID == outletID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTableStore) GetDiningTable(_ context.Context, arg database.GetDiningTableParams) (database.DiningTable, error) {
	t, ok := m.tables[arg.ID]
	if !ok || t.OutletID != arg.OutletID {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	if m.racer != nil {
		raced := t
		m.racer(&raced)
		m.tables[t.ID] = raced
	}
	return t, nil
}

func (m *mockTableStore) CreateDiningTable(_ context.Context, arg database.CreateDiningTableParams) (database.DiningTable, error) {
	for _, t := range m.tables {
		if t.OutletID == arg.OutletID && t.Name == arg.Name {
			return database.DiningTable{}, &pgconn.PgError{Code: "23505", ConstraintName: "dining_tables_outlet_id_name_key"}
		}
	}
	t := database.DiningTable{
		ID: uuid.New(), OutletID: arg.OutletID, Name: arg.Name, Section: arg.Section,
		Capacity: arg.Capacity, Status: enum.TableStatusAvailable, CheckTotal: pgconv.Numeric(dec("0")),
		UpdatedAt: time.Now(),
	}
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockTableStore) UpdateDiningTableState(_ context.Context, arg database.UpdateDiningTableStateParams) (database.DiningTable, error) {
	t, ok := m.tables[arg.ID]
	if !ok || t.OutletID != arg.OutletID || t.Status != arg.Status_2 {
		return database.DiningTable{}, pgx.ErrNoRows
	}
	t.Status = arg.Status
	t.ServerName = arg.ServerName
	t.Guests = arg.Guests
	t.CheckTotal = arg.CheckTotal
	t.SeatedAt = arg.SeatedAt
	t.UpdatedAt = time.Now()
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockTableStore) addTable(outletID uuid.UUID, name string, capacity int32, status string) database.DiningTable {
	t := database.DiningTable{
		ID: uuid.New(), OutletID: outletID, Name: name, Capacity: capacity, Status: status,
		CheckTotal: pgconv.Numeric(dec("0")),
	}
	m.tables[t.ID] = t
	return t
}

// --- Mock broadcaster ---

type publishedEvent struct {
	outletID  uuid.UUID
	eventType string
	payload   any
}

type mockBroadcaster struct {
	events []publishedEvent
}

func (m *mockBroadcaster) Publish(outletID uuid.UUID, eventType string, payload any) error {
	m.events = append(m.events, publishedEvent{outletID, eventType, payload})
	return nil
}

// --- Helpers ---

func setupTableRouter(store *mockTableStore, hub *mockBroadcaster) *chi.Mux {
	h := handler.NewTableHandler(store, hub)
	r := chi.NewRouter()
	r.Route("/outlets/{oid}/tables", h.RegisterRoutes)
	return r
}

func tablePath(outletID, tableID uuid.UUID, action string) string {
	return "/outlets/" + outletID.String() + "/tables/" + tableID.String() + "/" + action
}

// --- Tests ---

func TestTableCreate(t *testing.T) {
	outletID := uuid.New()
	store := newMockTableStore()
	hub := &mockBroadcaster{}
	router := setupTableRouter(store, hub)
	path := "/outlets/" + outletID.String() + "/tables"

	rr := doRequest(t, router, "POST", path, map[string]interface{}{"name": "T1", "section": "Patio", "capacity": 4})
	expectStatus(t, rr, http.StatusCreated)
	if resp := decodeMap(t, rr); resp["status"] != enum.TableStatusAvailable || resp["section"] != "Patio" {
		t.Errorf("unexpected response: %v", resp)
	}
	if len(hub.events) != 1 || hub.events[0].eventType != ws.EventTableCreated || hub.events[0].outletID != outletID {
		t.Errorf("unexpected events: %+v", hub.events)
	}

	rr = doRequest(t, router, "POST", path, map[string]interface{}{"name": "T1", "capacity": 2})
	expectError(t, rr, http.StatusConflict, "table name already exists")

	rr = doRequest(t, router, "POST", path, map[string]interface{}{"name": "T2", "capacity": 0})
	expectError(t, rr, http.StatusBadRequest, "capacity must be >= 1")

	rr = doRequest(t, router, "POST", path, map[string]interface{}{"capacity": 2})
	expectError(t, rr, http.StatusBadRequest, "name is required")
}

func TestTableLifecycle(t *testing.T) {
	outletID := uuid.New()
	store := newMockTableStore()
	hub := &mockBroadcaster{}
	router := setupTableRouter(store, hub)
	table := store.addTable(outletID, "T4", 4, enum.TableStatusAvailable)

	steps := []struct {
		action string
		method string
		body   interface{}
		status string
	}{
		{"reserve", "POST", nil, enum.TableStatusReserved},
		{"seat", "POST", map[string]interface{}{"guests": 3, "server": "Ana"}, enum.TableStatusOccupied},
		{"check", "PUT", map[string]string{"check_total": "86.40"}, enum.TableStatusOccupied},
		{"clear", "POST", nil, enum.TableStatusDirty},
		{"clean", "POST", nil, enum.TableStatusAvailable},
		{"reserve", "POST", nil, enum.TableStatusReserved},
		{"release", "POST", nil, enum.TableStatusAvailable},
	}
	for i, s := range steps {
		rr := doRequest(t, router, s.method, tablePath(outletID, table.ID, s.action), s.body)
		expectStatus(t, rr, http.StatusOK)
		resp := decodeMap(t, rr)
		if resp["status"] != s.status {
			t.Fatalf("step %d %s: status = %v, want %s", i, s.action, resp["status"], s.status)
		}
		switch s.action {
		case "seat":
			if resp["guests"] != float64(3) || resp["server"] != "Ana" || resp["seated_at"] == nil {
				t.Errorf("seat did not record seating: %v", resp)
			}
		case "check":
			if resp["check_total"] != "86.40" || resp["server"] != "Ana" {
				t.Errorf("check lost seating or total: %v", resp)
			}
		case "clear":
			if resp["guests"] != nil || resp["server"] != nil || resp["check_total"] != "0.00" {
				t.Errorf("clear left seating behind: %v", resp)
			}
		}
	}

	if len(hub.events) != len(steps) {
		t.Fatalf("expected %d events, got %d", len(steps), len(hub.events))
	}
	for _, ev := range hub.events {
		if ev.eventType != ws.EventTableUpdated {
			t.Errorf("unexpected event type %s", ev.eventType)
		}
	}
}

func TestTableTransitions_Rejected(t *testing.T) {
	outletID := uuid.New()

	tests := []struct {
		name   string
		from   string
		action string
		method string
		body   interface{}
		status int
		msg    string
	}{
		{"seat occupied", enum.TableStatusOccupied, "seat", "POST", map[string]interface{}{"guests": 2, "server": "Ana"}, http.StatusConflict, "table is not available"},
		{"seat dirty", enum.TableStatusDirty, "seat", "POST", map[string]interface{}{"guests": 2, "server": "Ana"}, http.StatusConflict, "table is not available"},
		{"too many guests", enum.TableStatusAvailable, "seat", "POST", map[string]interface{}{"guests": 5, "server": "Ana"}, http.StatusBadRequest, "guests must be between 1 and table capacity"},
		{"zero guests", enum.TableStatusAvailable, "seat", "POST", map[string]interface{}{"guests": 0, "server": "Ana"}, http.StatusBadRequest, "guests must be between 1 and table capacity"},
		{"no server", enum.TableStatusAvailable, "seat", "POST", map[string]interface{}{"guests": 2}, http.StatusBadRequest, "server is required"},
		{"check not occupied", enum.TableStatusAvailable, "check", "PUT", map[string]string{"check_total": "5"}, http.StatusConflict, "table is not occupied"},
		{"negative check", enum.TableStatusOccupied, "check", "PUT", map[string]string{"check_total": "-1"}, http.StatusBadRequest, "check_total must be >= 0"},
		{"clear available", enum.TableStatusAvailable, "clear", "POST", nil, http.StatusConflict, "table is not occupied"},
		{"clean occupied", enum.TableStatusOccupied, "clean", "POST", nil, http.StatusConflict, "table is not dirty"},
		{"reserve dirty", enum.TableStatusDirty, "reserve", "POST", nil, http.StatusConflict, "table is not available"},
		{"release available", enum.TableStatusAvailable, "release", "POST", nil, http.StatusConflict, "table is not reserved"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockTableStore()
			hub := &mockBroadcaster{}
			table := store.addTable(outletID, "T1", 4, tt.from)

			rr := doRequest(t, setupTableRouter(store, hub), tt.method, tablePath(outletID, table.ID, tt.action), tt.body)
			expectError(t, rr, tt.status, tt.msg)
			if store.tables[table.ID].Status != tt.from {
				t.Error("table status changed on rejected move")
			}
			if len(hub.events) != 0 {
				t.Error("rejected move must not broadcast")
			}
		})
	}
}

func TestTableTransition_ConcurrentChange(t *testing.T) {
	outletID := uuid.New()
	store := newMockTableStore()
	hub := &mockBroadcaster{}
	table := store.addTable(outletID, "T1", 4, enum.TableStatusAvailable)
	store.racer = func(t *database.DiningTable) { t.Status = enum.TableStatusOccupied }

	rr := doRequest(t, setupTableRouter(store, hub), "POST", tablePath(outletID, table.ID, "reserve"), nil)
	expectError(t, rr, http.StatusConflict, "table status changed, please retry")
	if len(hub.events) != 0 {
		t.Error("lost race must not broadcast")
	}
}

func TestTableTransition_NotFound(t *testing.T) {
	outletID := uuid.New()
	router := setupTableRouter(newMockTableStore(), &mockBroadcaster{})

	rr := doRequest(t, router, "POST", tablePath(outletID, uuid.New(), "clean"), nil)
	expectError(t, rr, http.StatusNotFound, "table not found")
}

func TestTableList(t *testing.T) {
	outletID := uuid.New()
	store := newMockTableStore()
	store.addTable(outletID, "T1", 2, enum.TableStatusAvailable)
	store.addTable(outletID, "T2", 6, enum.TableStatusDirty)
	store.addTable(uuid.New(), "T9", 2, enum.TableStatusAvailable)

	rr := doRequest(t, setupTableRouter(store, &mockBroadcaster{}), "GET", "/outlets/"+outletID.String()+"/tables", nil)
	expectStatus(t, rr, http.StatusOK)
	if got := len(decodeList(t, rr)); got != 2 {
		t.Errorf("expected 2 tables, got %d", got)
	}
}
