package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/middleware"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/larder-pos/api/internal/service"
)

// CountServicer defines the count operations that write.
// Satisfied by *service.CountService.
type CountServicer interface {
	CreateCount(ctx context.Context, req service.CreateCountRequest) (database.InventoryCount, error)
	SaveLines(ctx context.Context, req service.SaveCountLinesRequest) ([]database.InventoryCountLine, error)
	PostCount(ctx context.Context, outletID, countID uuid.UUID) (database.InventoryCount, error)
}

// CountStore defines the read methods needed by count handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CountStore interface {
	ListInventoryCounts(ctx context.Context, arg database.ListInventoryCountsParams) ([]database.InventoryCount, error)
	GetInventoryCount(ctx context.Context, arg database.GetInventoryCountParams) (database.InventoryCount, error)
	ListInventoryCountLines(ctx context.Context, countID uuid.UUID) ([]database.InventoryCountLine, error)
}

// CountHandler handles inventory count endpoints.
type CountHandler struct {
	svc   CountServicer
	store CountStore
}

// NewCountHandler creates a new CountHandler.
func NewCountHandler(svc CountServicer, store CountStore) *CountHandler {
	return &CountHandler{svc: svc, store: store}
}

// RegisterRoutes registers count endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/counts
func (h *CountHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/lines", h.SaveLines)
	r.Post("/{id}/post", h.Post)
}

// --- Request / Response types ---

type createCountRequest struct {
	CountDate string `json:"count_date"`
	Frequency string `json:"frequency"`
	Location  string `json:"location"`
}

type countLineRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	CountedQuantity string `json:"counted_quantity"`
}

type saveCountLinesRequest struct {
	Lines []countLineRequest `json:"lines"`
}

type countResponse struct {
	ID           uuid.UUID           `json:"id"`
	CountNumber  string              `json:"count_number"`
	CountDate    string              `json:"count_date"`
	Frequency    string              `json:"frequency"`
	Location     *string             `json:"location"`
	Status       string              `json:"status"`
	TotalItems   int32               `json:"total_items"`
	ItemsCounted int32               `json:"items_counted"`
	CreatedBy    uuid.UUID           `json:"created_by"`
	PostedAt     *time.Time          `json:"posted_at"`
	CreatedAt    time.Time           `json:"created_at"`
	Lines        []countLineResponse `json:"lines,omitempty"`
}

type countLineResponse struct {
	InventoryItemID  uuid.UUID `json:"inventory_item_id"`
	CountedQuantity  string    `json:"counted_quantity"`
	ExpectedQuantity string    `json:"expected_quantity"`
	Variance         string    `json:"variance"`
}

func toCountResponse(c database.InventoryCount) countResponse {
	return countResponse{
		ID:           c.ID,
		CountNumber:  c.CountNumber,
		CountDate:    pgconv.DateString(c.CountDate),
		Frequency:    c.Frequency,
		Location:     pgconv.TextPtr(c.Location),
		Status:       c.Status,
		TotalItems:   c.TotalItems,
		ItemsCounted: c.ItemsCounted,
		CreatedBy:    c.CreatedBy,
		PostedAt:     pgconv.TimePtr(c.PostedAt),
		CreatedAt:    c.CreatedAt,
	}
}

func toCountLines(lines []database.InventoryCountLine) []countLineResponse {
	out := make([]countLineResponse, len(lines))
	for i, l := range lines {
		counted := pgconv.Decimal(l.CountedQuantity)
		expected := pgconv.Decimal(l.ExpectedQuantity)
		out[i] = countLineResponse{
			InventoryItemID:  l.InventoryItemID,
			CountedQuantity:  counted.StringFixed(3),
			ExpectedQuantity: expected.StringFixed(3),
			Variance:         counted.Sub(expected).StringFixed(3),
		}
	}
	return out
}

// --- Handlers ---

// List handles GET /outlets/{oid}/counts?status=&limit=&offset=
func (h *CountHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != enum.CountStatusDraft && status != enum.CountStatusPosted {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	limit, offset := pagination(r)

	counts, err := h.store.ListInventoryCounts(r.Context(), database.ListInventoryCountsParams{
		OutletID: outletID,
		Status:   pgconv.Text(status),
		Limit:    int32(limit),
		Offset:   int32(offset),
	})
	if err != nil {
		internalError(w, "list inventory counts", err)
		return
	}

	resp := make([]countResponse, len(counts))
	for i, c := range counts {
		resp[i] = toCountResponse(c)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"counts": resp,
		"limit":  limit,
		"offset": offset,
	})
}

// Create handles POST /outlets/{oid}/counts
func (h *CountHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createCountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	count, err := h.svc.CreateCount(r.Context(), service.CreateCountRequest{
		OutletID:  outletID,
		CreatedBy: claims.UserID,
		CountDate: req.CountDate,
		Frequency: req.Frequency,
		Location:  req.Location,
	})
	if err != nil {
		serviceError(w, "create inventory count", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCountResponse(count))
}

// Get handles GET /outlets/{oid}/counts/{id}
func (h *CountHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	countID, ok := urlUUID(w, r, "id", "count")
	if !ok {
		return
	}

	count, err := h.store.GetInventoryCount(r.Context(), database.GetInventoryCountParams{ID: countID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrCountNotFound.Error())
			return
		}
		internalError(w, "get inventory count", err)
		return
	}
	lines, err := h.store.ListInventoryCountLines(r.Context(), count.ID)
	if err != nil {
		internalError(w, "list count lines", err)
		return
	}

	resp := toCountResponse(count)
	resp.Lines = toCountLines(lines)
	writeJSON(w, http.StatusOK, resp)
}

// SaveLines handles PUT /outlets/{oid}/counts/{id}/lines. Lines are upserted
// by item; items not sent keep their saved quantity.
func (h *CountHandler) SaveLines(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	countID, ok := urlUUID(w, r, "id", "count")
	if !ok {
		return
	}

	var req saveCountLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := service.SaveCountLinesRequest{
		OutletID: outletID,
		CountID:  countID,
		Lines:    make([]service.CountLineInput, len(req.Lines)),
	}
	for i, l := range req.Lines {
		in.Lines[i] = service.CountLineInput{InventoryItemID: l.InventoryItemID, CountedQuantity: l.CountedQuantity}
	}

	lines, err := h.svc.SaveLines(r.Context(), in)
	if err != nil {
		serviceError(w, "save count lines", err)
		return
	}
	writeJSON(w, http.StatusOK, toCountLines(lines))
}

// Post handles POST /outlets/{oid}/counts/{id}/post
func (h *CountHandler) Post(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	countID, ok := urlUUID(w, r, "id", "count")
	if !ok {
		return
	}

	count, err := h.svc.PostCount(r.Context(), outletID, countID)
	if err != nil {
		serviceError(w, "post inventory count", err)
		return
	}
	writeJSON(w, http.StatusOK, toCountResponse(count))
}
