package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/larder-pos/api/internal/auth"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/handler"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/larder-pos/api/internal/service"
)

// --- Mock CountServicer ---

type mockCountService struct {
	createFn func(ctx context.Context, req service.CreateCountRequest) (database.InventoryCount, error)
	saveFn   func(ctx context.Context, req service.SaveCountLinesRequest) ([]database.InventoryCountLine, error)
	postFn   func(ctx context.Context, outletID, countID uuid.UUID) (database.InventoryCount, error)
}

func (m *mockCountService) CreateCount(ctx context.Context, req service.CreateCountRequest) (database.InventoryCount, error) {
	return m.createFn(ctx, req)
}

func (m *mockCountService) SaveLines(ctx context.Context, req service.SaveCountLinesRequest) ([]database.InventoryCountLine, error) {
	return m.saveFn(ctx, req)
}

func (m *mockCountService) PostCount(ctx context.Context, outletID, countID uuid.UUID) (database.InventoryCount, error) {
	return m.postFn(ctx, outletID, countID)
}

// --- Mock CountStore ---

type mockCountStore struct {
	counts map[uuid.UUID]database.InventoryCount
	lines  map[uuid.UUID][]database.InventoryCountLine
}

func newMockCountStore() *mockCountStore {
	return &mockCountStore{
		counts: make(map[uuid.UUID]database.InventoryCount),
		lines:  make(map[uuid.UUID][]database.InventoryCountLine),
	}
}

func (m *mockCountStore) ListInventoryCounts(_ context.Context, arg database.ListInventoryCountsParams) ([]database.InventoryCount, error) {
	var result []database.InventoryCount
	for _, c := range m.counts {
		if c.OutletID != arg.OutletID {
			continue
		}
		if arg.Status.Valid && c.Status != arg.Status.String {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

func (m *mockCountStore) GetInventoryCount(_ context.Context, arg database.GetInventoryCountParams) (database.InventoryCount, error) {
	c, ok := m.counts[arg.ID]
	if !ok || c.OutletID != arg.OutletID {
		return database.InventoryCount{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockCountStore) ListInventoryCountLines(_ context.Context, countID uuid.UUID) ([]database.InventoryCountLine, error) {
	return m.lines[countID], nil
}

func (m *mockCountStore) addCount(outletID uuid.UUID, number, status string) database.InventoryCount {
	d, _ := pgconv.ParseDate("2026-10-17")
	c := database.InventoryCount{
		ID: uuid.New(), OutletID: outletID, CountNumber: number, CountDate: d,
		Frequency: enum.CountFrequencyWeekly, Status: status, TotalItems: 12,
	}
	m.counts[c.ID] = c
	return c
}

// --- Helpers ---

func setupCountRouter(svc *mockCountService, store *mockCountStore, claims *auth.Claims) *chi.Mux {
	h := handler.NewCountHandler(svc, store)
	r := chi.NewRouter()
	if claims != nil {
		r.Use(asUser(claims))
	}
	r.Route("/outlets/{oid}/counts", h.RegisterRoutes)
	return r
}

func countsPath(outletID uuid.UUID) string {
	return "/outlets/" + outletID.String() + "/counts"
}

// --- Tests ---

func TestCountCreate(t *testing.T) {
	outletID := uuid.New()
	claims := managerClaims(outletID)
	var got service.CreateCountRequest
	svc := &mockCountService{
		createFn: func(_ context.Context, req service.CreateCountRequest) (database.InventoryCount, error) {
			got = req
			if req.Frequency == "HOURLY" {
				return database.InventoryCount{}, service.ErrInvalidFrequency
			}
			d, _ := pgconv.ParseDate(req.CountDate)
			return database.InventoryCount{
				ID: uuid.New(), OutletID: req.OutletID, CountNumber: "CNT-2026-001", CountDate: d,
				Frequency: req.Frequency, Location: pgconv.Text(req.Location),
				Status: enum.CountStatusDraft, TotalItems: 40, CreatedBy: req.CreatedBy,
			}, nil
		},
	}
	router := setupCountRouter(svc, newMockCountStore(), claims)

	rr := doRequest(t, router, "POST", countsPath(outletID), map[string]string{
		"count_date": "2026-10-17", "frequency": enum.CountFrequencyDaily, "location": "Walk-in",
	})
	expectStatus(t, rr, http.StatusCreated)
	if got.OutletID != outletID || got.CreatedBy != claims.UserID || got.Location != "Walk-in" {
		t.Errorf("unexpected service request: %+v", got)
	}
	resp := decodeMap(t, rr)
	if resp["status"] != enum.CountStatusDraft || resp["total_items"] != float64(40) || resp["location"] != "Walk-in" {
		t.Errorf("unexpected response: %v", resp)
	}

	rr = doRequest(t, router, "POST", countsPath(outletID), map[string]string{"frequency": "HOURLY"})
	expectError(t, rr, http.StatusBadRequest, service.ErrInvalidFrequency.Error())

	rr = doRequest(t, setupCountRouter(svc, newMockCountStore(), nil), "POST", countsPath(outletID), map[string]string{})
	expectError(t, rr, http.StatusUnauthorized, "not authenticated")
}

func TestCountList(t *testing.T) {
	outletID := uuid.New()
	store := newMockCountStore()
	store.addCount(outletID, "CNT-2026-001", enum.CountStatusPosted)
	store.addCount(outletID, "CNT-2026-002", enum.CountStatusDraft)
	store.addCount(uuid.New(), "CNT-2026-001", enum.CountStatusDraft)
	router := setupCountRouter(&mockCountService{}, store, nil)

	rr := doRequest(t, router, "GET", countsPath(outletID)+"?status=DRAFT", nil)
	expectStatus(t, rr, http.StatusOK)
	resp := decodeMap(t, rr)
	if counts := resp["counts"].([]interface{}); len(counts) != 1 {
		t.Errorf("expected 1 draft count, got %d", len(counts))
	}
	if resp["limit"] != float64(20) {
		t.Errorf("limit = %v, want 20", resp["limit"])
	}

	rr = doRequest(t, router, "GET", countsPath(outletID)+"?status=OPEN", nil)
	expectError(t, rr, http.StatusBadRequest, "invalid status")
}

func TestCountGet_WithVariance(t *testing.T) {
	outletID := uuid.New()
	store := newMockCountStore()
	c := store.addCount(outletID, "CNT-2026-001", enum.CountStatusDraft)
	store.lines[c.ID] = []database.InventoryCountLine{{
		ID: uuid.New(), CountID: c.ID, InventoryItemID: uuid.New(),
		CountedQuantity: pgconv.Quantity(dec("7.5")), ExpectedQuantity: pgconv.Quantity(dec("10")),
	}}
	router := setupCountRouter(&mockCountService{}, store, nil)

	rr := doRequest(t, router, "GET", countsPath(outletID)+"/"+c.ID.String(), nil)
	expectStatus(t, rr, http.StatusOK)
	line := decodeMap(t, rr)["lines"].([]interface{})[0].(map[string]interface{})
	if line["counted_quantity"] != "7.500" || line["variance"] != "-2.500" {
		t.Errorf("unexpected line: %v", line)
	}

	rr = doRequest(t, router, "GET", countsPath(outletID)+"/"+uuid.NewString(), nil)
	expectError(t, rr, http.StatusNotFound, service.ErrCountNotFound.Error())

	rr = doRequest(t, router, "GET", countsPath(outletID)+"/nope", nil)
	expectError(t, rr, http.StatusBadRequest, "invalid count ID")
}

func TestCountSaveLines(t *testing.T) {
	outletID := uuid.New()
	countID := uuid.New()
	itemID := uuid.New()
	var got service.SaveCountLinesRequest
	svc := &mockCountService{
		saveFn: func(_ context.Context, req service.SaveCountLinesRequest) ([]database.InventoryCountLine, error) {
			got = req
			switch req.Lines[0].CountedQuantity {
			case "-1":
				return nil, service.ErrNegativeQuantity
			case "9":
				return nil, service.ErrCountPosted
			}
			return []database.InventoryCountLine{{
				CountID: req.CountID, InventoryItemID: itemID,
				CountedQuantity: pgconv.Quantity(dec("4")), ExpectedQuantity: pgconv.Quantity(dec("4")),
			}}, nil
		},
	}
	router := setupCountRouter(svc, newMockCountStore(), nil)
	path := countsPath(outletID) + "/" + countID.String() + "/lines"
	body := func(qty string) map[string]interface{} {
		return map[string]interface{}{
			"lines": []map[string]string{{"inventory_item_id": itemID.String(), "counted_quantity": qty}},
		}
	}

	rr := doRequest(t, router, "PUT", path, body("4"))
	expectStatus(t, rr, http.StatusOK)
	if got.CountID != countID || got.OutletID != outletID || got.Lines[0].InventoryItemID != itemID.String() {
		t.Errorf("unexpected service request: %+v", got)
	}
	if lines := decodeList(t, rr); len(lines) != 1 || lines[0]["variance"] != "0.000" {
		t.Errorf("unexpected lines: %v", lines)
	}

	rr = doRequest(t, router, "PUT", path, body("-1"))
	expectError(t, rr, http.StatusBadRequest, service.ErrNegativeQuantity.Error())

	rr = doRequest(t, router, "PUT", path, body("9"))
	expectError(t, rr, http.StatusConflict, service.ErrCountPosted.Error())
}

func TestCountPost(t *testing.T) {
	outletID := uuid.New()
	countID := uuid.New()
	svc := &mockCountService{
		postFn: func(_ context.Context, oid, cid uuid.UUID) (database.InventoryCount, error) {
			if cid != countID {
				return database.InventoryCount{}, service.ErrCountNotFound
			}
			return database.InventoryCount{ID: cid, OutletID: oid, Status: enum.CountStatusPosted, ItemsCounted: 3}, nil
		},
	}
	router := setupCountRouter(svc, newMockCountStore(), nil)

	rr := doRequest(t, router, "POST", countsPath(outletID)+"/"+countID.String()+"/post", nil)
	expectStatus(t, rr, http.StatusOK)
	if resp := decodeMap(t, rr); resp["status"] != enum.CountStatusPosted || resp["items_counted"] != float64(3) {
		t.Errorf("unexpected response: %v", resp)
	}

	rr = doRequest(t, router, "POST", countsPath(outletID)+"/"+uuid.NewString()+"/post", nil)
	expectError(t, rr, http.StatusNotFound, service.ErrCountNotFound.Error())
}
