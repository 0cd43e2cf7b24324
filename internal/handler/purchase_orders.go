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

// PurchasingServicer defines the service methods needed by purchase order handlers.
// Satisfied by *service.PurchasingService; narrow interface for testability.
type PurchasingServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	UpdateOrder(ctx context.Context, req service.UpdateOrderRequest) (*service.OrderResult, error)
	TransitionOrder(ctx context.Context, outletID, orderID uuid.UUID, action string) (database.PurchaseOrder, error)
	ReceiveOrder(ctx context.Context, req service.ReceiveRequest) (*service.OrderResult, error)
	CreateInvoice(ctx context.Context, req service.CreateInvoiceRequest) (*service.InvoiceResult, error)
}

// PurchaseOrderStore defines the database methods needed by purchase order reads.
// Satisfied by *database.Queries; narrow interface for testability.
type PurchaseOrderStore interface {
	ListPurchaseOrders(ctx context.Context, arg database.ListPurchaseOrdersParams) ([]database.ListPurchaseOrdersRow, error)
	GetPurchaseOrder(ctx context.Context, arg database.GetPurchaseOrderParams) (database.PurchaseOrder, error)
	ListPurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]database.PurchaseOrderItem, error)
}

// PurchaseOrderHandler handles purchase order endpoints.
type PurchaseOrderHandler struct {
	svc   PurchasingServicer
	store PurchaseOrderStore
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler.
func NewPurchaseOrderHandler(svc PurchasingServicer, store PurchaseOrderStore) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{svc: svc, store: store}
}

// RegisterRoutes registers purchase order endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/purchase-orders
func (h *PurchaseOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.Transition)
	r.Post("/{id}/receive", h.Receive)
	r.Post("/{id}/invoice", h.Invoice)
}

// --- Request / Response types ---

type orderLineRequest struct {
	VendorProductID string `json:"vendor_product_id"`
	InventoryItemID string `json:"inventory_item_id"`
	Name            string `json:"name"`
	Sku             string `json:"sku"`
	Unit            string `json:"unit"`
	Quantity        string `json:"quantity"`
	UnitCost        string `json:"unit_cost"`
}

type createPurchaseOrderRequest struct {
	VendorID     string             `json:"vendor_id"`
	OrderDate    string             `json:"order_date"`
	DeliveryDate string             `json:"delivery_date"`
	Memo         string             `json:"memo"`
	Submit       bool               `json:"submit"`
	Lines        []orderLineRequest `json:"lines"`
}

type updatePurchaseOrderRequest struct {
	DeliveryDate string             `json:"delivery_date"`
	Memo         string             `json:"memo"`
	Lines        []orderLineRequest `json:"lines"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type receiveRequest struct {
	Lines []struct {
		ItemID   string `json:"item_id"`
		Quantity string `json:"quantity"`
	} `json:"lines"`
}

type createInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	DueDate       string `json:"due_date"`
	GSTRate       string `json:"gst_rate"`
	Lines         []struct {
		ItemID   string `json:"item_id"`
		Quantity string `json:"quantity"`
		UnitCost string `json:"unit_cost"`
	} `json:"lines"`
}

type purchaseOrderResponse struct {
	ID           uuid.UUID                   `json:"id"`
	PoNumber     string                      `json:"po_number"`
	VendorID     uuid.UUID                   `json:"vendor_id"`
	VendorName   string                      `json:"vendor_name,omitempty"`
	Status       string                      `json:"status"`
	OrderDate    *string                     `json:"order_date"`
	DeliveryDate *string                     `json:"delivery_date"`
	Memo         *string                     `json:"memo"`
	Total        string                      `json:"total"`
	ItemCount    int                         `json:"item_count"`
	CreatedBy    uuid.UUID                   `json:"created_by"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	Items        []purchaseOrderItemResponse `json:"items,omitempty"`
}

type purchaseOrderItemResponse struct {
	ID               uuid.UUID `json:"id"`
	VendorProductID  *string   `json:"vendor_product_id"`
	InventoryItemID  *string   `json:"inventory_item_id"`
	Name             string    `json:"name"`
	Sku              string    `json:"sku"`
	Unit             string    `json:"unit"`
	Quantity         string    `json:"quantity"`
	UnitCost         string    `json:"unit_cost"`
	ReceivedQuantity string    `json:"received_quantity"`
	LineTotal        string    `json:"line_total"`
}

type purchaseOrderListResponse struct {
	Orders []purchaseOrderResponse `json:"orders"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

func toPurchaseOrderResponse(o database.PurchaseOrder, items []database.PurchaseOrderItem) purchaseOrderResponse {
	resp := purchaseOrderResponse{
		ID:           o.ID,
		PoNumber:     o.PoNumber,
		VendorID:     o.VendorID,
		Status:       o.Status,
		OrderDate:    pgconv.DatePtr(o.OrderDate),
		DeliveryDate: pgconv.DatePtr(o.DeliveryDate),
		Memo:         pgconv.TextPtr(o.Memo),
		Total:        pgconv.String(o.Total),
		ItemCount:    len(items),
		CreatedBy:    o.CreatedBy,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		Items:        make([]purchaseOrderItemResponse, len(items)),
	}
	for i, it := range items {
		resp.Items[i] = purchaseOrderItemResponse{
			ID:               it.ID,
			VendorProductID:  pgconv.UUIDPtr(it.VendorProductID),
			InventoryItemID:  pgconv.UUIDPtr(it.InventoryItemID),
			Name:             it.Name,
			Sku:              it.Sku,
			Unit:             it.Unit,
			Quantity:         pgconv.StringFixed(it.Quantity, 3),
			UnitCost:         pgconv.StringFixed(it.UnitCost, 4),
			ReceivedQuantity: pgconv.StringFixed(it.ReceivedQuantity, 3),
			LineTotal:        pgconv.String(it.LineTotal),
		}
	}
	return resp
}

func listRowToPurchaseOrderResponse(row database.ListPurchaseOrdersRow) purchaseOrderResponse {
	return purchaseOrderResponse{
		ID:           row.ID,
		PoNumber:     row.PoNumber,
		VendorID:     row.VendorID,
		VendorName:   row.VendorName,
		Status:       row.Status,
		OrderDate:    pgconv.DatePtr(row.OrderDate),
		DeliveryDate: pgconv.DatePtr(row.DeliveryDate),
		Memo:         pgconv.TextPtr(row.Memo),
		Total:        pgconv.String(row.Total),
		ItemCount:    int(row.ItemCount),
		CreatedBy:    row.CreatedBy,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toOrderLineInputs(lines []orderLineRequest) []service.OrderLineInput {
	out := make([]service.OrderLineInput, len(lines))
	for i, l := range lines {
		out[i] = service.OrderLineInput{
			VendorProductID: l.VendorProductID,
			InventoryItemID: l.InventoryItemID,
			Name:            l.Name,
			Sku:             l.Sku,
			Unit:            l.Unit,
			Quantity:        l.Quantity,
			UnitCost:        l.UnitCost,
		}
	}
	return out
}

// --- Handlers ---

// List handles GET /outlets/{oid}/purchase-orders?status=&vendor_id=&limit=&offset=
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	limit, offset := pagination(r)
	params := database.ListPurchaseOrdersParams{
		OutletID: outletID,
		Limit:    int32(limit),
		Offset:   int32(offset),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		if !isValidOrderStatus(s) {
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

	rows, err := h.store.ListPurchaseOrders(r.Context(), params)
	if err != nil {
		internalError(w, "list purchase orders", err)
		return
	}

	resp := make([]purchaseOrderResponse, len(rows))
	for i, row := range rows {
		resp[i] = listRowToPurchaseOrderResponse(row)
	}
	writeJSON(w, http.StatusOK, purchaseOrderListResponse{Orders: resp, Limit: limit, Offset: offset})
}

// Get handles GET /outlets/{oid}/purchase-orders/{id}
func (h *PurchaseOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "purchase order")
	if !ok {
		return
	}

	order, err := h.store.GetPurchaseOrder(r.Context(), database.GetPurchaseOrderParams{ID: orderID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrOrderNotFound.Error())
			return
		}
		internalError(w, "get purchase order", err)
		return
	}

	items, err := h.store.ListPurchaseOrderItems(r.Context(), order.ID)
	if err != nil {
		internalError(w, "list purchase order items", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderResponse(order, items))
}

// Create handles POST /outlets/{oid}/purchase-orders
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createPurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VendorID == "" {
		writeError(w, http.StatusBadRequest, "vendor_id is required")
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		OutletID:     outletID,
		CreatedBy:    claims.UserID,
		VendorID:     req.VendorID,
		OrderDate:    req.OrderDate,
		DeliveryDate: req.DeliveryDate,
		Memo:         req.Memo,
		Submit:       req.Submit,
		Lines:        toOrderLineInputs(req.Lines),
	})
	if err != nil {
		serviceError(w, "create purchase order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPurchaseOrderResponse(result.Order, result.Items))
}

// Update handles PUT /outlets/{oid}/purchase-orders/{id}. Lines are replaced
// wholesale and the total recomputed.
func (h *PurchaseOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "purchase order")
	if !ok {
		return
	}

	var req updatePurchaseOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.UpdateOrder(r.Context(), service.UpdateOrderRequest{
		OutletID:     outletID,
		OrderID:      orderID,
		DeliveryDate: req.DeliveryDate,
		Memo:         req.Memo,
		Lines:        toOrderLineInputs(req.Lines),
	})
	if err != nil {
		serviceError(w, "update purchase order", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderResponse(result.Order, result.Items))
}

// Transition handles PATCH /outlets/{oid}/purchase-orders/{id}/status with
// {"action": "submit" | "send" | "needs-receiving" | "close"}.
func (h *PurchaseOrderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "purchase order")
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

	order, err := h.svc.TransitionOrder(r.Context(), outletID, orderID, req.Action)
	if err != nil {
		serviceError(w, "transition purchase order", err)
		return
	}

	items, err := h.store.ListPurchaseOrderItems(r.Context(), order.ID)
	if err != nil {
		internalError(w, "list purchase order items", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderResponse(order, items))
}

// Receive handles POST /outlets/{oid}/purchase-orders/{id}/receive
func (h *PurchaseOrderHandler) Receive(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "purchase order")
	if !ok {
		return
	}

	var req receiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.ReceiveLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.ReceiveLineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}

	result, err := h.svc.ReceiveOrder(r.Context(), service.ReceiveRequest{
		OutletID: outletID,
		OrderID:  orderID,
		Lines:    lines,
	})
	if err != nil {
		serviceError(w, "receive purchase order", err)
		return
	}
	writeJSON(w, http.StatusOK, toPurchaseOrderResponse(result.Order, result.Items))
}

// Invoice handles POST /outlets/{oid}/purchase-orders/{id}/invoice. The
// order is closed in the same transaction.
func (h *PurchaseOrderHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	orderID, ok := urlUUID(w, r, "id", "purchase order")
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	lines := make([]service.InvoiceLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = service.InvoiceLineInput{ItemID: l.ItemID, Quantity: l.Quantity, UnitCost: l.UnitCost}
	}

	result, err := h.svc.CreateInvoice(r.Context(), service.CreateInvoiceRequest{
		OutletID:      outletID,
		OrderID:       orderID,
		CreatedBy:     claims.UserID,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		DueDate:       req.DueDate,
		GSTRate:       req.GSTRate,
		Lines:         lines,
	})
	if err != nil {
		serviceError(w, "invoice purchase order", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(result.Invoice, result.Items))
}

// --- Helpers ---

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.PurchaseOrderStatusDraft, enum.PurchaseOrderStatusOpen, enum.PurchaseOrderStatusSent,
		enum.PurchaseOrderStatusNeedsReceiving, enum.PurchaseOrderStatusPartiallyReceived,
		enum.PurchaseOrderStatusReceived, enum.PurchaseOrderStatusClosed:
		return true
	}
	return false
}
