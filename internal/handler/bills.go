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
	"github.com/larder-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

const (
	billNumberConstraint = "bills_outlet_id_bill_number_key"
	maxBillNumberRetries = 3
)

var errBillItemNotFound = errors.New("inventory item not found")

// BillStore defines the database methods needed by bill handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type BillStore interface {
	ListBills(ctx context.Context, arg database.ListBillsParams) ([]database.Bill, error)
	SumBillTotals(ctx context.Context, arg database.SumBillTotalsParams) (pgtype.Numeric, error)
	GetBill(ctx context.Context, arg database.GetBillParams) (database.Bill, error)
	ListBillItems(ctx context.Context, billID uuid.UUID) ([]database.BillItem, error)
	GetNextBillNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateBill(ctx context.Context, arg database.CreateBillParams) (database.Bill, error)
	CreateBillItem(ctx context.Context, arg database.CreateBillItemParams) (database.BillItem, error)
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
}

// NewBillStore creates a BillStore from a DBTX (pool or tx).
type NewBillStore func(db database.DBTX) BillStore

// BillHandler handles petty-cash bill endpoints.
type BillHandler struct {
	store      BillStore
	pool       service.TxBeginner
	newStore   NewBillStore
	defaultGST decimal.Decimal
}

// NewBillHandler creates a new BillHandler. defaultGST is the percentage
// applied when a bill does not carry its own rate.
func NewBillHandler(store BillStore, pool service.TxBeginner, newStore NewBillStore, defaultGST decimal.Decimal) *BillHandler {
	return &BillHandler{store: store, pool: pool, newStore: newStore, defaultGST: defaultGST}
}

// RegisterRoutes registers bill endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/bills
func (h *BillHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
}

// --- Request / Response types ---

type billItemRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	Unit            string `json:"unit"`
	UnitPrice       string `json:"unit_price"`
}

type createBillRequest struct {
	BillDate  string            `json:"bill_date"`
	Supplier  string            `json:"supplier"`
	Category  string            `json:"category"`
	Reference string            `json:"reference"`
	PaidBy    string            `json:"paid_by"`
	GSTRate   string            `json:"gst_rate"`
	Items     []billItemRequest `json:"items"`
}

type billResponse struct {
	ID         uuid.UUID          `json:"id"`
	BillNumber string             `json:"bill_number"`
	BillDate   string             `json:"bill_date"`
	Supplier   string             `json:"supplier"`
	Category   string             `json:"category"`
	Reference  string             `json:"reference"`
	PaidBy     string             `json:"paid_by"`
	GSTRate    string             `json:"gst_rate"`
	Subtotal   string             `json:"subtotal"`
	GSTAmount  string             `json:"gst_amount"`
	Total      string             `json:"total"`
	CreatedBy  uuid.UUID          `json:"created_by"`
	CreatedAt  time.Time          `json:"created_at"`
	Items      []billItemResponse `json:"items,omitempty"`
}

type billItemResponse struct {
	ID              uuid.UUID `json:"id"`
	InventoryItemID *string   `json:"inventory_item_id"`
	Description     string    `json:"description"`
	Quantity        string    `json:"quantity"`
	Unit            string    `json:"unit"`
	UnitPrice       string    `json:"unit_price"`
	LineTotal       string    `json:"line_total"`
}

type billListResponse struct {
	Bills        []billResponse `json:"bills"`
	TotalInRange string         `json:"total_in_range"`
}

func toBillResponse(b database.Bill, items []database.BillItem) billResponse {
	resp := billResponse{
		ID:         b.ID,
		BillNumber: b.BillNumber,
		BillDate:   pgconv.DateString(b.BillDate),
		Supplier:   b.Supplier,
		Category:   b.Category,
		Reference:  b.Reference,
		PaidBy:     b.PaidBy,
		GSTRate:    pgconv.String(b.GstRate),
		Subtotal:   pgconv.String(b.Subtotal),
		GSTAmount:  pgconv.String(b.GstAmount),
		Total:      pgconv.String(b.Total),
		CreatedBy:  b.CreatedBy,
		CreatedAt:  b.CreatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, billItemResponse{
			ID:              it.ID,
			InventoryItemID: pgconv.UUIDPtr(it.InventoryItemID),
			Description:     it.Description,
			Quantity:        pgconv.StringFixed(it.Quantity, 3),
			Unit:            it.Unit,
			UnitPrice:       pgconv.StringFixed(it.UnitPrice, 4),
			LineTotal:       pgconv.String(it.LineTotal),
		})
	}
	return resp
}

// --- Handlers ---

// List handles GET /outlets/{oid}/bills?q=&start_date=&end_date=
// total_in_range ignores q so the figure always reflects the whole period.
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	startDate, err := pgconv.ParseDate(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date format, use YYYY-MM-DD")
		return
	}
	endDate, err := pgconv.ParseDate(r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date format, use YYYY-MM-DD")
		return
	}

	bills, err := h.store.ListBills(r.Context(), database.ListBillsParams{
		OutletID:  outletID,
		StartDate: startDate,
		EndDate:   endDate,
		Search:    pgconv.Text(strings.TrimSpace(r.URL.Query().Get("q"))),
	})
	if err != nil {
		internalError(w, "list bills", err)
		return
	}

	total, err := h.store.SumBillTotals(r.Context(), database.SumBillTotalsParams{
		OutletID:  outletID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		internalError(w, "sum bill totals", err)
		return
	}

	resp := billListResponse{Bills: make([]billResponse, len(bills)), TotalInRange: pgconv.String(total)}
	for i, b := range bills {
		resp.Bills[i] = toBillResponse(b, nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /outlets/{oid}/bills/{id}
func (h *BillHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	billID, ok := urlUUID(w, r, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.store.GetBill(r.Context(), database.GetBillParams{ID: billID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		internalError(w, "get bill", err)
		return
	}

	items, err := h.store.ListBillItems(r.Context(), bill.ID)
	if err != nil {
		internalError(w, "list bill items", err)
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill, items))
}

// Create handles POST /outlets/{oid}/bills. The bill and its items are
// written in one transaction; a BILL-NNNN collision retries in a fresh one.
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, msg := h.validateBill(req)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	draft.outletID = outletID
	draft.createdBy = claims.UserID

	var (
		bill  database.Bill
		items []database.BillItem
		err   error
	)
	for attempt := 0; attempt < maxBillNumberRetries; attempt++ {
		bill, items, err = h.createTx(r.Context(), draft)
		if uniqueConstraint(err) != billNumberConstraint {
			break
		}
	}
	if err != nil {
		if errors.Is(err, errBillItemNotFound) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		internalError(w, "create bill", err)
		return
	}

	writeJSON(w, http.StatusCreated, toBillResponse(bill, items))
}

// --- Helpers ---

type billLine struct {
	itemID      uuid.UUID // uuid.Nil for free-text lines
	description string
	quantity    decimal.Decimal
	unit        string
	unitPrice   decimal.Decimal
}

type billDraft struct {
	outletID  uuid.UUID
	createdBy uuid.UUID
	date      pgtype.Date
	supplier  string
	category  string
	reference string
	paidBy    string
	gstRate   decimal.Decimal
	lines     []billLine
	totals    costing.Totals
}

type billMergeKey struct {
	itemID uuid.UUID
	price  string
}

func (h *BillHandler) validateBill(req createBillRequest) (billDraft, string) {
	var d billDraft

	if strings.TrimSpace(req.BillDate) == "" {
		return d, "bill_date is required"
	}
	date, err := pgconv.ParseDate(strings.TrimSpace(req.BillDate))
	if err != nil {
		return d, "invalid bill_date format, use YYYY-MM-DD"
	}
	d.date = date

	if len(req.Items) == 0 {
		return d, "at least one item is required"
	}
	d.paidBy = strings.TrimSpace(req.PaidBy)
	if d.paidBy == "" {
		return d, "paid_by is required"
	}
	if !isValidBillCategory(req.Category) {
		return d, "category must be PETTY_CASH, LOCAL_PURCHASE, URGENT_BUY, or MISC"
	}
	d.category = req.Category

	d.gstRate = h.defaultGST
	if s := strings.TrimSpace(req.GSTRate); s != "" {
		rate, err := decimal.NewFromString(s)
		if err != nil || rate.IsNegative() {
			return d, "gst_rate must be >= 0"
		}
		d.gstRate = rate.Round(pgconv.MoneyPlaces)
	}

	d.supplier = strings.TrimSpace(req.Supplier)
	if d.supplier == "" {
		d.supplier = enum.BillSupplierDefault
	}
	d.reference = strings.TrimSpace(req.Reference)
	if d.reference == "" {
		d.reference = enum.BillReferenceDefault
	}

	merged := make(map[billMergeKey]int)
	for i, it := range req.Items {
		qty, err := decimal.NewFromString(strings.TrimSpace(it.Quantity))
		if err == nil {
			qty = qty.Round(pgconv.QuantityPlaces)
		}
		if err != nil || !qty.IsPositive() {
			return d, fmt.Sprintf("items[%d]: quantity must be > 0", i)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(it.UnitPrice))
		if err != nil || price.IsNegative() {
			return d, fmt.Sprintf("items[%d]: unit_price must be >= 0", i)
		}
		price = price.Round(pgconv.UnitCostPlaces)
		line := billLine{
			description: strings.TrimSpace(it.Description),
			quantity:    qty,
			unit:        strings.TrimSpace(it.Unit),
			unitPrice:   price,
		}
		if it.InventoryItemID != "" {
			id, err := uuid.Parse(it.InventoryItemID)
			if err != nil {
				return d, fmt.Sprintf("items[%d]: invalid inventory_item_id", i)
			}
			// Repeats of an item at the same price collapse into the first line.
			key := billMergeKey{itemID: id, price: price.StringFixed(pgconv.UnitCostPlaces)}
			if at, seen := merged[key]; seen {
				d.lines[at].quantity = d.lines[at].quantity.Add(qty)
				continue
			}
			line.itemID = id
			merged[key] = len(d.lines)
		} else if line.description == "" {
			return d, fmt.Sprintf("items[%d]: description is required", i)
		}
		d.lines = append(d.lines, line)
	}

	costLines := make([]costing.Line, len(d.lines))
	for i, l := range d.lines {
		costLines[i] = costing.Line{Quantity: l.quantity, UnitPrice: l.unitPrice}
	}
	d.totals = costing.ComputeTotals(costLines, d.gstRate)
	if !d.totals.Total.IsPositive() {
		return d, "total must be greater than 0"
	}
	return d, ""
}

func (h *BillHandler) createTx(ctx context.Context, d billDraft) (database.Bill, []database.BillItem, error) {
	tx, err := h.pool.Begin(ctx)
	if err != nil {
		return database.Bill{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	store := h.newStore(tx)

	// Inventory-linked lines take the item's name and unit when left blank.
	for i, l := range d.lines {
		if l.itemID == uuid.Nil {
			continue
		}
		item, err := store.GetInventoryItem(ctx, database.GetInventoryItemParams{ID: l.itemID, OutletID: d.outletID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return database.Bill{}, nil, errBillItemNotFound
			}
			return database.Bill{}, nil, fmt.Errorf("get inventory item: %w", err)
		}
		if l.description == "" {
			d.lines[i].description = item.Name
		}
		if l.unit == "" {
			d.lines[i].unit = item.Unit
		}
	}

	next, err := store.GetNextBillNumber(ctx, d.outletID)
	if err != nil {
		return database.Bill{}, nil, fmt.Errorf("next bill number: %w", err)
	}

	bill, err := store.CreateBill(ctx, database.CreateBillParams{
		OutletID:   d.outletID,
		BillNumber: fmt.Sprintf("BILL-%04d", next),
		BillDate:   d.date,
		Supplier:   d.supplier,
		Category:   d.category,
		Reference:  d.reference,
		PaidBy:     d.paidBy,
		GstRate:    pgconv.Numeric(d.gstRate),
		Subtotal:   pgconv.Numeric(d.totals.Subtotal),
		GstAmount:  pgconv.Numeric(d.totals.GSTAmount),
		Total:      pgconv.Numeric(d.totals.Total),
		CreatedBy:  d.createdBy,
	})
	if err != nil {
		return database.Bill{}, nil, err
	}

	items := make([]database.BillItem, 0, len(d.lines))
	for _, l := range d.lines {
		var itemID pgtype.UUID
		if l.itemID != uuid.Nil {
			itemID = pgconv.UUID(l.itemID)
		}
		item, err := store.CreateBillItem(ctx, database.CreateBillItemParams{
			BillID:          bill.ID,
			InventoryItemID: itemID,
			Description:     l.description,
			Quantity:        pgconv.Quantity(l.quantity),
			Unit:            l.unit,
			UnitPrice:       pgconv.UnitCost(l.unitPrice),
			LineTotal:       pgconv.Numeric(costing.LineTotal(l.quantity, l.unitPrice)),
		})
		if err != nil {
			return database.Bill{}, nil, fmt.Errorf("create bill item: %w", err)
		}
		items = append(items, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Bill{}, nil, fmt.Errorf("commit: %w", err)
	}
	return bill, items, nil
}

func isValidBillCategory(c string) bool {
	switch c {
	case enum.BillCategoryPettyCash, enum.BillCategoryLocalPurchase,
		enum.BillCategoryUrgentBuy, enum.BillCategoryMisc:
		return true
	}
	return false
}
