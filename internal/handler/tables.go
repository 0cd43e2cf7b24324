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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/larder-pos/api/internal/ws"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TableStore defines the database methods needed by floor plan handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	ListDiningTables(ctx context.Context, outletID uuid.UUID) ([]database.DiningTable, error)
	GetDiningTable(ctx context.Context, arg database.GetDiningTableParams) (database.DiningTable, error)
	CreateDiningTable(ctx context.Context, arg database.CreateDiningTableParams) (database.DiningTable, error)
	UpdateDiningTableState(ctx context.Context, arg database.UpdateDiningTableStateParams) (database.DiningTable, error)
}

// Broadcaster pushes events to an outlet's connected terminals.
// Satisfied by *ws.Hub.
type Broadcaster interface {
	Publish(outletID uuid.UUID, eventType string, payload any) error
}

// TableHandler handles floor plan endpoints.
type TableHandler struct {
	store TableStore
	hub   Broadcaster
	now   func() time.Time
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, hub Broadcaster) *TableHandler {
	return &TableHandler{store: store, hub: hub, now: time.Now}
}

// RegisterRoutes registers floor plan endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/tables
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/seat", h.Seat)
	r.Put("/{id}/check", h.UpdateCheck)
	r.Post("/{id}/clear", h.Clear)
	r.Post("/{id}/clean", h.Clean)
	r.Post("/{id}/reserve", h.Reserve)
	r.Post("/{id}/release", h.Release)
}

// --- Request / Response types ---

type createTableRequest struct {
	Name     string `json:"name"`
	Section  string `json:"section"`
	Capacity int32  `json:"capacity"`
}

type seatTableRequest struct {
	Guests int32  `json:"guests"`
	Server string `json:"server"`
}

type checkTableRequest struct {
	CheckTotal string `json:"check_total"`
}

type tableResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Section    *string    `json:"section"`
	Capacity   int32      `json:"capacity"`
	Status     string     `json:"status"`
	Server     *string    `json:"server"`
	Guests     *int32     `json:"guests"`
	CheckTotal string     `json:"check_total"`
	SeatedAt   *time.Time `json:"seated_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toTableResponse(t database.DiningTable) tableResponse {
	resp := tableResponse{
		ID:         t.ID,
		Name:       t.Name,
		Section:    pgconv.TextPtr(t.Section),
		Capacity:   t.Capacity,
		Status:     t.Status,
		Server:     pgconv.TextPtr(t.ServerName),
		CheckTotal: pgconv.String(t.CheckTotal),
		SeatedAt:   pgconv.TimePtr(t.SeatedAt),
		UpdatedAt:  t.UpdatedAt,
	}
	if t.Guests.Valid {
		g := t.Guests.Int32
		resp.Guests = &g
	}
	return resp
}

// --- Handlers ---

// List handles GET /outlets/{oid}/tables
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	tables, err := h.store.ListDiningTables(r.Context(), outletID)
	if err != nil {
		internalError(w, "list tables", err)
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /outlets/{oid}/tables
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Capacity < 1 {
		writeError(w, http.StatusBadRequest, "capacity must be >= 1")
		return
	}

	table, err := h.store.CreateDiningTable(r.Context(), database.CreateDiningTableParams{
		OutletID: outletID,
		Name:     req.Name,
		Section:  pgconv.Text(strings.TrimSpace(req.Section)),
		Capacity: req.Capacity,
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "table name already exists")
			return
		}
		internalError(w, "create table", err)
		return
	}

	resp := toTableResponse(table)
	h.publish(outletID, ws.EventTableCreated, resp)
	writeJSON(w, http.StatusCreated, resp)
}

// Seat handles POST /outlets/{oid}/tables/{id}/seat
func (h *TableHandler) Seat(w http.ResponseWriter, r *http.Request) {
	var req seatTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	server := strings.TrimSpace(req.Server)
	if server == "" {
		writeError(w, http.StatusBadRequest, "server is required")
		return
	}

	h.transition(w, r, "seat table", func(t database.DiningTable) (database.UpdateDiningTableStateParams, *tableReject) {
		if t.Status != enum.TableStatusAvailable && t.Status != enum.TableStatusReserved {
			return database.UpdateDiningTableStateParams{}, conflict("table is not available")
		}
		if req.Guests < 1 || req.Guests > t.Capacity {
			return database.UpdateDiningTableStateParams{}, &tableReject{http.StatusBadRequest, "guests must be between 1 and table capacity"}
		}
		return database.UpdateDiningTableStateParams{
			Status:     enum.TableStatusOccupied,
			ServerName: pgconv.Text(server),
			Guests:     pgtype.Int4{Int32: req.Guests, Valid: true},
			CheckTotal: pgconv.Numeric(decimal.Zero),
			SeatedAt:   pgtype.Timestamptz{Time: h.now(), Valid: true},
		}, nil
	})
}

// UpdateCheck handles PUT /outlets/{oid}/tables/{id}/check
func (h *TableHandler) UpdateCheck(w http.ResponseWriter, r *http.Request) {
	var req checkTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	total, err := decimal.NewFromString(strings.TrimSpace(req.CheckTotal))
	if err != nil || total.IsNegative() {
		writeError(w, http.StatusBadRequest, "check_total must be >= 0")
		return
	}

	h.transition(w, r, "update table check", func(t database.DiningTable) (database.UpdateDiningTableStateParams, *tableReject) {
		if t.Status != enum.TableStatusOccupied {
			return database.UpdateDiningTableStateParams{}, conflict("table is not occupied")
		}
		return database.UpdateDiningTableStateParams{
			Status:     t.Status,
			ServerName: t.ServerName,
			Guests:     t.Guests,
			CheckTotal: pgconv.Numeric(total),
			SeatedAt:   t.SeatedAt,
		}, nil
	})
}

// Clear handles POST /outlets/{oid}/tables/{id}/clear
func (h *TableHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.simpleMove(w, r, "clear table", enum.TableStatusOccupied, enum.TableStatusDirty, "table is not occupied")
}

// Clean handles POST /outlets/{oid}/tables/{id}/clean
func (h *TableHandler) Clean(w http.ResponseWriter, r *http.Request) {
	h.simpleMove(w, r, "clean table", enum.TableStatusDirty, enum.TableStatusAvailable, "table is not dirty")
}

// Reserve handles POST /outlets/{oid}/tables/{id}/reserve
func (h *TableHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.simpleMove(w, r, "reserve table", enum.TableStatusAvailable, enum.TableStatusReserved, "table is not available")
}

// Release handles POST /outlets/{oid}/tables/{id}/release
func (h *TableHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.simpleMove(w, r, "release table", enum.TableStatusReserved, enum.TableStatusAvailable, "table is not reserved")
}

// --- Helpers ---

// simpleMove moves a table between two states and resets the seating
// fields.
func (h *TableHandler) simpleMove(w http.ResponseWriter, r *http.Request, op, from, to, msg string) {
	h.transition(w, r, op, func(t database.DiningTable) (database.UpdateDiningTableStateParams, *tableReject) {
		if t.Status != from {
			return database.UpdateDiningTableStateParams{}, conflict(msg)
		}
		return database.UpdateDiningTableStateParams{
			Status:     to,
			CheckTotal: pgconv.Numeric(decimal.Zero),
		}, nil
	})
}

// tableReject is why a table cannot make the requested move.
type tableReject struct {
	status int
	msg    string
}

func conflict(msg string) *tableReject {
	return &tableReject{status: http.StatusConflict, msg: msg}
}

// transition loads the table, lets next build the new state and writes it
// only if the status is still the one next saw.
func (h *TableHandler) transition(w http.ResponseWriter, r *http.Request, op string,
	next func(database.DiningTable) (database.UpdateDiningTableStateParams, *tableReject)) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	tableID, ok := urlUUID(w, r, "id", "table")
	if !ok {
		return
	}

	table, err := h.store.GetDiningTable(r.Context(), database.GetDiningTableParams{ID: tableID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "table not found")
			return
		}
		internalError(w, op+": get table", err)
		return
	}

	params, reject := next(table)
	if reject != nil {
		writeError(w, reject.status, reject.msg)
		return
	}
	params.ID = table.ID
	params.OutletID = outletID
	params.Status_2 = table.Status

	updated, err := h.store.UpdateDiningTableState(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusConflict, "table status changed, please retry")
			return
		}
		internalError(w, op, err)
		return
	}

	resp := toTableResponse(updated)
	h.publish(outletID, ws.EventTableUpdated, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (h *TableHandler) publish(outletID uuid.UUID, eventType string, payload tableResponse) {
	if err := h.hub.Publish(outletID, eventType, payload); err != nil {
		zap.L().Warn("publish table event", zap.String("type", eventType), zap.Error(err))
	}
}
