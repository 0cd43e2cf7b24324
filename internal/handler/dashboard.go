package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"golang.org/x/sync/errgroup"
)

// DashboardStore defines the database methods needed by the dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type DashboardStore interface {
	CountPurchaseOrdersByStatus(ctx context.Context, arg database.CountPurchaseOrdersByStatusParams) (int64, error)
	CountUnfinalizedInvoices(ctx context.Context, outletID uuid.UUID) (int64, error)
	CountLowStockItems(ctx context.Context, outletID uuid.UUID) (int64, error)
	CountDraftInventoryCounts(ctx context.Context, outletID uuid.UUID) (int64, error)
	CountHighCostRecipes(ctx context.Context, arg database.CountHighCostRecipesParams) (int64, error)
	GetFloorSummary(ctx context.Context, outletID uuid.UUID) (database.GetFloorSummaryRow, error)
	SumPurchaseOrderSpend(ctx context.Context, outletID uuid.UUID) (pgtype.Numeric, error)
	SumBillTotals(ctx context.Context, arg database.SumBillTotalsParams) (pgtype.Numeric, error)
	SumWasteCost(ctx context.Context, arg database.SumWasteCostParams) (pgtype.Numeric, error)
}

// DashboardHandler serves the per-outlet summary counters.
type DashboardHandler struct {
	store DashboardStore
	now   func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(store DashboardStore) *DashboardHandler {
	return &DashboardHandler{store: store, now: time.Now}
}

// RegisterRoutes registers the dashboard endpoint.
// Expected to be mounted at /outlets/{oid}/dashboard
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
}

// --- Response types ---

type dashboardResponse struct {
	OpenOrders          int64  `json:"open_orders"`
	OrdersToReceive     int64  `json:"orders_to_receive"`
	UnfinalizedInvoices int64  `json:"unfinalized_invoices"`
	LowStockItems       int64  `json:"low_stock_items"`
	DraftCounts         int64  `json:"draft_counts"`
	HighCostRecipes     int64  `json:"high_cost_recipes"`
	OccupiedTables      int64  `json:"occupied_tables"`
	OpenCheckTotal      string `json:"open_check_total"`
	PurchaseSpend       string `json:"purchase_spend"`
	BillsThisMonth      string `json:"bills_this_month"`
	WasteToday          string `json:"waste_today"`
}

// --- Handlers ---

// Get handles GET /outlets/{oid}/dashboard. Counters are fetched
// concurrently; any failure fails the whole response.
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	now := h.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	var (
		resp                dashboardResponse
		spend, bills, waste pgtype.Numeric
		floor               database.GetFloorSummaryRow
	)
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() (err error) {
		resp.OpenOrders, err = h.store.CountPurchaseOrdersByStatus(ctx, database.CountPurchaseOrdersByStatusParams{
			OutletID: outletID,
			Statuses: []string{enum.PurchaseOrderStatusDraft, enum.PurchaseOrderStatusOpen, enum.PurchaseOrderStatusSent},
		})
		return err
	})
	g.Go(func() (err error) {
		resp.OrdersToReceive, err = h.store.CountPurchaseOrdersByStatus(ctx, database.CountPurchaseOrdersByStatusParams{
			OutletID: outletID,
			Statuses: []string{enum.PurchaseOrderStatusNeedsReceiving, enum.PurchaseOrderStatusPartiallyReceived},
		})
		return err
	})
	g.Go(func() (err error) {
		resp.UnfinalizedInvoices, err = h.store.CountUnfinalizedInvoices(ctx, outletID)
		return err
	})
	g.Go(func() (err error) {
		resp.LowStockItems, err = h.store.CountLowStockItems(ctx, outletID)
		return err
	})
	g.Go(func() (err error) {
		resp.DraftCounts, err = h.store.CountDraftInventoryCounts(ctx, outletID)
		return err
	})
	g.Go(func() (err error) {
		resp.HighCostRecipes, err = h.store.CountHighCostRecipes(ctx, database.CountHighCostRecipesParams{
			OutletID:  outletID,
			Threshold: pgconv.Numeric(costing.WarningThreshold),
		})
		return err
	})
	g.Go(func() (err error) {
		floor, err = h.store.GetFloorSummary(ctx, outletID)
		return err
	})
	g.Go(func() (err error) {
		spend, err = h.store.SumPurchaseOrderSpend(ctx, outletID)
		return err
	})
	g.Go(func() (err error) {
		bills, err = h.store.SumBillTotals(ctx, database.SumBillTotalsParams{
			OutletID:  outletID,
			StartDate: pgconv.Date(monthStart),
			EndDate:   pgconv.Date(monthEnd),
		})
		return err
	})
	g.Go(func() (err error) {
		waste, err = h.store.SumWasteCost(ctx, database.SumWasteCostParams{
			OutletID: outletID,
			StartAt:  today,
			EndAt:    today.AddDate(0, 0, 1),
		})
		return err
	})

	if err := g.Wait(); err != nil {
		internalError(w, "dashboard", err)
		return
	}

	resp.OccupiedTables = floor.OccupiedTables
	resp.OpenCheckTotal = pgconv.String(floor.OpenCheckTotal)
	resp.PurchaseSpend = pgconv.String(spend)
	resp.BillsThisMonth = pgconv.String(bills)
	resp.WasteToday = pgconv.String(waste)
	writeJSON(w, http.StatusOK, resp)
}
