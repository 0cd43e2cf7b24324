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
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/larder-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

// InvoiceServicer defines the service methods needed by invoice handlers.
// Satisfied by *service.InvoiceService; narrow interface for testability.
type InvoiceServicer interface {
	UpdateLines(ctx context.Context, req service.UpdateInvoiceRequest) (*service.InvoiceResult, error)
	Transition(ctx context.Context, outletID, invoiceID uuid.UUID, action string) (database.Invoice, error)
}

// InvoiceStore defines the database methods needed by invoice reads.
// Satisfied by *database.Queries; narrow interface for testability.
type InvoiceStore interface {
	ListInvoices(ctx context.Context, arg database.ListInvoicesParams) ([]database.ListInvoicesRow, error)
	GetInvoice(ctx context.Context, arg database.GetInvoiceParams) (database.Invoice, error)
	ListInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]database.InvoiceItem, error)
	ListPurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]database.PurchaseOrderItem, error)
}

// InvoiceHandler handles vendor invoice endpoints.
type InvoiceHandler struct {
	svc   InvoiceServicer
	store InvoiceStore
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(svc InvoiceServicer, store InvoiceStore) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, store: store}
}

// RegisterRoutes registers invoice endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/invoices
func (h *InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/match", h.Match)
	r.Put("/{id}/lines", h.UpdateLines)
	r.Patch("/{id}/status", h.Transition)
}

// --- Request / Response types ---

type updateInvoiceLinesRequest struct {
	Lines []struct {
		ItemID   string `json:"item_id"`
		Quantity string `json:"quantity"`
		UnitCost string `json:"unit_cost"`
	} `json:"lines"`
}

type invoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	InvoiceNumber   string                `json:"invoice_number"`
	PurchaseOrderID uuid.UUID             `json:"purchase_order_id"`
	PoNumber        string                `json:"po_number,omitempty"`
	VendorID        uuid.UUID             `json:"vendor_id"`
	VendorName      string                `json:"vendor_name,omitempty"`
	Status          string                `json:"status"`
	InvoiceDate     *string               `json:"invoice_date"`
	DueDate         *string               `json:"due_date"`
	GSTRate         string                `json:"gst_rate"`
	Subtotal        string                `json:"subtotal"`
	GSTAmount       string                `json:"gst_amount"`
	Total           string                `json:"total"`
	CreatedBy       uuid.UUID             `json:"created_by"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Items           []invoiceItemResponse `json:"items,omitempty"`
}

type invoiceItemResponse struct {
	ID                  uuid.UUID `json:"id"`
	PurchaseOrderItemID *string   `json:"purchase_order_item_id"`
	Name                string    `json:"name"`
	Unit                string    `json:"unit"`
	Quantity            string    `json:"quantity"`
	UnitCost            string    `json:"unit_cost"`
	LineTotal           string    `json:"line_total"`
}

type invoiceListResponse struct {
	Invoices []invoiceResponse `json:"invoices"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

type matchLineResponse struct {
	InvoiceItemID    uuid.UUID `json:"invoice_item_id"`
	Name             string    `json:"name"`
	OrderedQuantity  string    `json:"ordered_quantity"`
	ReceivedQuantity string    `json:"received_quantity"`
	InvoicedQuantity string    `json:"invoiced_quantity"`
	OrderedCost      string    `json:"ordered_cost"`
	InvoicedCost     string    `json:"invoiced_cost"`
	Status           string    `json:"status"`
	QtyVariance      string    `json:"qty_variance"`
	ReceivedVariance string    `json:"received_variance"`
	CostVariance     string    `json:"cost_variance"`
	AmountVariance   string    `json:"amount_variance"`
}

type matchResponse struct {
	InvoiceID uuid.UUID           `json:"invoice_id"`
	Matched   bool                `json:"matched"`
	Received  bool                `json:"received"`
	Lines     []matchLineResponse `json:"lines"`
}

func toInvoiceResponse(inv database.Invoice, items []database.InvoiceItem) invoiceResponse {
	resp := invoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		PurchaseOrderID: inv.PurchaseOrderID,
		VendorID:        inv.VendorID,
		Status:          inv.Status,
		InvoiceDate:     pgconv.DatePtr(inv.InvoiceDate),
		DueDate:         pgconv.DatePtr(inv.DueDate),
		GSTRate:         pgconv.String(inv.GstRate),
		Subtotal:        pgconv.String(inv.Subtotal),
		GSTAmount:       pgconv.String(inv.GstAmount),
		Total:           pgconv.String(inv.Total),
		CreatedBy:       inv.CreatedBy,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		Items:           make([]invoiceItemResponse, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = invoiceItemResponse{
			ID:                  it.ID,
			PurchaseOrderItemID: pgconv.UUIDPtr(it.PurchaseOrderItemID),
			Name:                it.Name,
			Unit:                it.Unit,
			Quantity:            pgconv.StringFixed(it.Quantity, 3),
			UnitCost:            pgconv.StringFixed(it.UnitCost, 4),
			LineTotal:           pgconv.String(it.LineTotal),
		}
	}
	return resp
}

// --- Handlers ---

// List handles GET /outlets/{oid}/invoices?status=&vendor_id=&limit=&offset=
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	limit, offset := pagination(r)
	params := database.ListInvoicesParams{
		OutletID: outletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidInvoiceStatus(s) {
			writeError(w, http.StatusBadRequest, "invalid status")
			return
		}
		params.Status = pgconv.Text(s)
	}
	vendorID, err := pgconv.ParseUUID(r.URL.Query().Get("vendor_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vendor_id")
		return
	}
	params.VendorID = vendorID

	rows, err := h.store.ListInvoices(r.Context(), params)
	if err != nil {
		internalError(w, "list invoices", err)
		return
	}

	resp := make([]invoiceResponse, len(rows))
	for i, row := range rows {
		resp[i] = invoiceResponse{
			ID:              row.ID,
			InvoiceNumber:   row.InvoiceNumber,
			PurchaseOrderID: row.PurchaseOrderID,
			PoNumber:        row.PoNumber,
			VendorID:        row.VendorID,
			VendorName:      row.VendorName,
			Status:          row.Status,
			InvoiceDate:     pgconv.DatePtr(row.InvoiceDate),
			DueDate:         pgconv.DatePtr(row.DueDate),
			GSTRate:         pgconv.String(row.GstRate),
			Subtotal:        pgconv.String(row.Subtotal),
			GSTAmount:       pgconv.String(row.GstAmount),
			Total:           pgconv.String(row.Total),
			CreatedBy:       row.CreatedBy,
			CreatedAt:       row.CreatedAt,
			UpdatedAt:       row.UpdatedAt,
		}
	}
	writeJSON(w, http.StatusOK, invoiceListResponse{Invoices: resp, Limit: limit, Offset: offset})
}

// Get handles GET /outlets/{oid}/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, items, ok := h.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv, items))
}

// Match handles GET /outlets/{oid}/invoices/{id}/match: each invoice line
// compared against its purchase order line and what was received.
func (h *InvoiceHandler) Match(w http.ResponseWriter, r *http.Request) {
	inv, items, ok := h.load(w, r)
	if !ok {
		return
	}

	poItems, err := h.store.ListPurchaseOrderItems(r.Context(), inv.PurchaseOrderID)
	if err != nil {
		internalError(w, "list purchase order items", err)
		return
	}
	byID := make(map[uuid.UUID]database.PurchaseOrderItem, len(poItems))
	received := false
	for _, it := range poItems {
		byID[it.ID] = it
		if pgconv.Decimal(it.ReceivedQuantity).IsPositive() {
			received = true
		}
	}

	lines := make([]costing.MatchLine, len(items))
	for i, it := range items {
		line := costing.MatchLine{
			Name:         it.Name,
			Received:     received,
			InvoicedQty:  pgconv.Decimal(it.Quantity),
			InvoicedCost: pgconv.Decimal(it.UnitCost),
		}
		// Lines without a PO counterpart compare against zero.
		if it.PurchaseOrderItemID.Valid {
			if po, found := byID[uuid.UUID(it.PurchaseOrderItemID.Bytes)]; found {
				line.OrderedQty = pgconv.Decimal(po.Quantity)
				line.ReceivedQty = pgconv.Decimal(po.ReceivedQuantity)
				line.OrderedCost = pgconv.Decimal(po.UnitCost)
			}
		}
		lines[i] = line
	}

	results, matched := costing.ThreeWayMatch(lines)
	resp := matchResponse{InvoiceID: inv.ID, Matched: matched, Received: received, Lines: make([]matchLineResponse, len(results))}
	for i, res := range results {
		resp.Lines[i] = matchLineResponse{
			InvoiceItemID:    items[i].ID,
			Name:             res.Name,
			OrderedQuantity:  lines[i].OrderedQty.StringFixed(3),
			ReceivedQuantity: lines[i].ReceivedQty.StringFixed(3),
			InvoicedQuantity: lines[i].InvoicedQty.StringFixed(3),
			OrderedCost:      lines[i].OrderedCost.StringFixed(4),
			InvoicedCost:     lines[i].InvoicedCost.StringFixed(4),
			Status:           string(res.Status),
			QtyVariance:      res.QtyVariance.StringFixed(3),
			ReceivedVariance: res.ReceivedVariance.StringFixed(3),
			CostVariance:     res.CostVariance.StringFixed(4),
			AmountVariance:   roundMoney(res.AmountVariance),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateLines handles PUT /outlets/{oid}/invoices/{id}/lines
func (h *InvoiceHandler) UpdateLines(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	invoiceID, ok := urlUUID(w, r, "id", "invoice")
	if !ok {
		return
	}

	var req updateInvoiceLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.InvoiceLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.InvoiceLineInput{ItemID: l.ItemID, Quantity: l.Quantity, UnitCost: l.UnitCost}
	}

	result, err := h.svc.UpdateLines(r.Context(), service.UpdateInvoiceRequest{
		OutletID:  outletID,
		InvoiceID: invoiceID,
		Lines:     lines,
	})
	if err != nil {
		serviceError(w, "update invoice lines", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(result.Invoice, result.Items))
}

// Transition handles PATCH /outlets/{oid}/invoices/{id}/status with
// {"action": "submit" | "finalize" | "reject"}.
func (h *InvoiceHandler) Transition(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	invoiceID, ok := urlUUID(w, r, "id", "invoice")
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Action == "" {
		writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	inv, err := h.svc.Transition(r.Context(), outletID, invoiceID, req.Action)
	if err != nil {
		serviceError(w, "transition invoice", err)
		return
	}

	items, err := h.store.ListInvoiceItems(r.Context(), inv.ID)
	if err != nil {
		internalError(w, "list invoice items", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv, items))
}

// --- Helpers ---

func (h *InvoiceHandler) load(w http.ResponseWriter, r *http.Request) (database.Invoice, []database.InvoiceItem, bool) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return database.Invoice{}, nil, false
	}
	invoiceID, ok := urlUUID(w, r, "id", "invoice")
	if !ok {
		return database.Invoice{}, nil, false
	}

	inv, err := h.store.GetInvoice(r.Context(), database.GetInvoiceParams{ID: invoiceID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrInvoiceNotFound.Error())
			return database.Invoice{}, nil, false
		}
		internalError(w, "get invoice", err)
		return database.Invoice{}, nil, false
	}

	items, err := h.store.ListInvoiceItems(r.Context(), inv.ID)
	if err != nil {
		internalError(w, "list invoice items", err)
		return database.Invoice{}, nil, false
	}
	return inv, items, true
}

func roundMoney(d decimal.Decimal) string {
	return d.Round(2).StringFixed(2)
}

func isValidInvoiceStatus(s string) bool {
	switch s {
	case enum.InvoiceStatusDraft, enum.InvoiceStatusPending,
		enum.InvoiceStatusFinalized, enum.InvoiceStatusRejected:
		return true
	}
	return false
}
