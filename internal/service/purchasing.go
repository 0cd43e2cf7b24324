package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

const (
	poNumberConstraint      = "purchase_orders_outlet_id_po_number_key"
	invoiceNumberConstraint = "invoices_outlet_id_invoice_number_key"
)

// Errors returned by the purchasing service.
var (
	ErrNoLines               = errors.New("at least one line is required")
	ErrInvalidVendorID       = errors.New("invalid vendor_id")
	ErrVendorNotFound        = errors.New("vendor not found")
	ErrVendorInactive        = errors.New("vendor is not active")
	ErrVendorProductNotFound = errors.New("vendor product not found")
	ErrInventoryItemNotFound = errors.New("inventory item not found")
	ErrLineNameRequired      = errors.New("line name is required")
	ErrOrderNotFound         = errors.New("purchase order not found")
	ErrInvalidAction         = errors.New("invalid action")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrOrderNotEditable      = errors.New("purchase order can only be edited in DRAFT or OPEN")
	ErrOrderNotReceivable    = errors.New("purchase order is not awaiting delivery")
	ErrOrderNotInvoiceable   = errors.New("purchase order cannot be invoiced in its current status")
	ErrUnknownLine           = errors.New("line does not belong to this document")
	ErrNothingReceived       = errors.New("nothing to receive")
	ErrDuplicateInvoice      = errors.New("invoice number already exists")
	ErrInvalidGSTRate        = errors.New("gst_rate must be >= 0")
)

// Order actions accepted by TransitionOrder.
const (
	ActionSubmit      = "submit"
	ActionSend        = "send"
	ActionNeedReceipt = "needs-receiving"
	ActionClose       = "close"
)

var actionTargets = map[string]string{
	ActionSubmit:      enum.PurchaseOrderStatusOpen,
	ActionSend:        enum.PurchaseOrderStatusSent,
	ActionNeedReceipt: enum.PurchaseOrderStatusNeedsReceiving,
	ActionClose:       enum.PurchaseOrderStatusClosed,
}

// allowedOrderTransitions maps a status to the statuses reachable from it
// by an explicit action. Receiving and invoicing move orders on their own.
var allowedOrderTransitions = map[string][]string{
	enum.PurchaseOrderStatusDraft:             {enum.PurchaseOrderStatusOpen, enum.PurchaseOrderStatusClosed},
	enum.PurchaseOrderStatusOpen:              {enum.PurchaseOrderStatusSent, enum.PurchaseOrderStatusClosed},
	enum.PurchaseOrderStatusSent:              {enum.PurchaseOrderStatusNeedsReceiving, enum.PurchaseOrderStatusClosed},
	enum.PurchaseOrderStatusNeedsReceiving:    {enum.PurchaseOrderStatusClosed},
	enum.PurchaseOrderStatusPartiallyReceived: {enum.PurchaseOrderStatusClosed},
	enum.PurchaseOrderStatusReceived:          {enum.PurchaseOrderStatusClosed},
}

var receivableStatuses = map[string]bool{
	enum.PurchaseOrderStatusSent:              true,
	enum.PurchaseOrderStatusNeedsReceiving:    true,
	enum.PurchaseOrderStatusPartiallyReceived: true,
}

var invoiceableStatuses = map[string]bool{
	enum.PurchaseOrderStatusSent:              true,
	enum.PurchaseOrderStatusNeedsReceiving:    true,
	enum.PurchaseOrderStatusPartiallyReceived: true,
	enum.PurchaseOrderStatusReceived:          true,
}

// PurchasingStore defines the DB methods needed by the purchasing service.
// Satisfied by *database.Queries (and its WithTx variant).
type PurchasingStore interface {
	GetVendor(ctx context.Context, arg database.GetVendorParams) (database.Vendor, error)
	GetVendorProduct(ctx context.Context, arg database.GetVendorProductParams) (database.VendorProduct, error)
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
	AdjustInventoryOnHand(ctx context.Context, arg database.AdjustInventoryOnHandParams) (database.InventoryItem, error)

	GetNextPONumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreatePurchaseOrder(ctx context.Context, arg database.CreatePurchaseOrderParams) (database.PurchaseOrder, error)
	CreatePurchaseOrderItem(ctx context.Context, arg database.CreatePurchaseOrderItemParams) (database.PurchaseOrderItem, error)
	GetPurchaseOrderForUpdate(ctx context.Context, arg database.GetPurchaseOrderForUpdateParams) (database.PurchaseOrder, error)
	ListPurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]database.PurchaseOrderItem, error)
	DeletePurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) error
	UpdatePurchaseOrderDetails(ctx context.Context, arg database.UpdatePurchaseOrderDetailsParams) (database.PurchaseOrder, error)
	UpdatePurchaseOrderStatus(ctx context.Context, arg database.UpdatePurchaseOrderStatusParams) (database.PurchaseOrder, error)
	AddReceivedQuantity(ctx context.Context, arg database.AddReceivedQuantityParams) (database.PurchaseOrderItem, error)

	GetNextInvoiceSequence(ctx context.Context, arg database.GetNextInvoiceSequenceParams) (int32, error)
	InvoiceNumberExists(ctx context.Context, arg database.InvoiceNumberExistsParams) (bool, error)
	CreateInvoice(ctx context.Context, arg database.CreateInvoiceParams) (database.Invoice, error)
	CreateInvoiceItem(ctx context.Context, arg database.CreateInvoiceItemParams) (database.InvoiceItem, error)
}

// NewPurchasingStore creates a PurchasingStore from a DBTX (pool or tx).
type NewPurchasingStore func(db database.DBTX) PurchasingStore

// OrderLineInput is one requested purchase order line. Name, sku, unit and
// unit cost fall back to the vendor product, then to the inventory item.
type OrderLineInput struct {
	VendorProductID string
	InventoryItemID string
	Name            string
	Sku             string
	Unit            string
	Quantity        string
	UnitCost        string
}

// CreateOrderRequest is the input for creating a purchase order.
type CreateOrderRequest struct {
	OutletID     uuid.UUID
	CreatedBy    uuid.UUID
	VendorID     string
	OrderDate    string // YYYY-MM-DD, defaults to today
	DeliveryDate string
	Memo         string
	Submit       bool
	Lines        []OrderLineInput
}

// UpdateOrderRequest replaces the editable parts of an order.
type UpdateOrderRequest struct {
	OutletID     uuid.UUID
	OrderID      uuid.UUID
	DeliveryDate string
	Memo         string
	Lines        []OrderLineInput
}

// ReceiveLineInput records a delivered quantity against one order line.
type ReceiveLineInput struct {
	ItemID   string
	Quantity string
}

// ReceiveRequest is one delivery against an order.
type ReceiveRequest struct {
	OutletID uuid.UUID
	OrderID  uuid.UUID
	Lines    []ReceiveLineInput
}

// InvoiceLineInput overrides the quantity or cost invoiced for one order line.
type InvoiceLineInput struct {
	ItemID   string
	Quantity string
	UnitCost string
}

// CreateInvoiceRequest is the input for invoicing an order.
type CreateInvoiceRequest struct {
	OutletID      uuid.UUID
	OrderID       uuid.UUID
	CreatedBy     uuid.UUID
	InvoiceNumber string // generated when empty
	InvoiceDate   string // defaults to today
	DueDate       string
	GSTRate       string // defaults to the configured invoice rate
	Lines         []InvoiceLineInput
}

// OrderResult is a purchase order with its lines.
type OrderResult struct {
	Order database.PurchaseOrder
	Items []database.PurchaseOrderItem
}

// InvoiceResult is an invoice with its lines.
type InvoiceResult struct {
	Invoice database.Invoice
	Items   []database.InvoiceItem
}

// PurchasingService handles the purchase order lifecycle: ordering,
// receiving and invoicing.
type PurchasingService struct {
	pool           TxBeginner
	newStore       NewPurchasingStore
	invoiceGSTRate decimal.Decimal
}

// NewPurchasingService creates a new PurchasingService. invoiceGSTRate is
// the percentage applied when an invoice request does not carry its own.
func NewPurchasingService(pool TxBeginner, newStore NewPurchasingStore, invoiceGSTRate decimal.Decimal) *PurchasingService {
	return &PurchasingService{pool: pool, newStore: newStore, invoiceGSTRate: invoiceGSTRate}
}

// CreateOrder validates the vendor and lines and creates the order in
// DRAFT, or OPEN when submitted. Retries on po_number conflicts.
func (s *PurchasingService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return nil, ErrInvalidVendorID
	}
	orderDate := pgconv.Date(today())
	if req.OrderDate != "" {
		if orderDate, err = pgconv.ParseDate(req.OrderDate); err != nil {
			return nil, ErrInvalidDate
		}
	}
	deliveryDate, err := pgconv.ParseDate(req.DeliveryDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	status := enum.PurchaseOrderStatusDraft
	if req.Submit {
		status = enum.PurchaseOrderStatusOpen
	}

	return withNumberRetry(poNumberConstraint, func() (*OrderResult, error) {
		return s.createOrderTx(ctx, req, vendorID, status, orderDate, deliveryDate)
	})
}

func (s *PurchasingService) createOrderTx(ctx context.Context, req CreateOrderRequest, vendorID uuid.UUID, status string, orderDate, deliveryDate pgtype.Date) (*OrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	vendor, err := store.GetVendor(ctx, database.GetVendorParams{ID: vendorID, OutletID: req.OutletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	if vendor.Status != enum.VendorStatusActive {
		return nil, ErrVendorInactive
	}

	lines, total, err := resolveOrderLines(ctx, store, req.OutletID, vendor.ID, req.Lines)
	if err != nil {
		return nil, err
	}

	next, err := store.GetNextPONumber(ctx, req.OutletID)
	if err != nil {
		return nil, fmt.Errorf("next po number: %w", err)
	}

	order, err := store.CreatePurchaseOrder(ctx, database.CreatePurchaseOrderParams{
		OutletID:     req.OutletID,
		PoNumber:     fmt.Sprintf("PO-%04d", next),
		VendorID:     vendor.ID,
		Status:       status,
		OrderDate:    orderDate,
		DeliveryDate: deliveryDate,
		Memo:         pgconv.Text(req.Memo),
		Total:        pgconv.Numeric(total),
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}

	items, err := insertOrderLines(ctx, store, order.ID, lines)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderResult{Order: order, Items: items}, nil
}

// UpdateOrder replaces lines, delivery date and memo on a DRAFT or OPEN
// order and recomputes its total from the new lines.
func (s *PurchasingService) UpdateOrder(ctx context.Context, req UpdateOrderRequest) (*OrderResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}
	deliveryDate, err := pgconv.ParseDate(req.DeliveryDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := s.lockOrder(ctx, store, req.OutletID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != enum.PurchaseOrderStatusDraft && order.Status != enum.PurchaseOrderStatusOpen {
		return nil, ErrOrderNotEditable
	}

	lines, total, err := resolveOrderLines(ctx, store, req.OutletID, order.VendorID, req.Lines)
	if err != nil {
		return nil, err
	}

	if err := store.DeletePurchaseOrderItems(ctx, order.ID); err != nil {
		return nil, fmt.Errorf("delete order lines: %w", err)
	}
	items, err := insertOrderLines(ctx, store, order.ID, lines)
	if err != nil {
		return nil, err
	}

	updated, err := store.UpdatePurchaseOrderDetails(ctx, database.UpdatePurchaseOrderDetailsParams{
		ID:           order.ID,
		OutletID:     req.OutletID,
		DeliveryDate: deliveryDate,
		Memo:         pgconv.Text(req.Memo),
		Total:        pgconv.Numeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("update purchase order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderResult{Order: updated, Items: items}, nil
}

// TransitionOrder applies a named action (submit, send, needs-receiving,
// close) to an order.
func (s *PurchasingService) TransitionOrder(ctx context.Context, outletID, orderID uuid.UUID, action string) (database.PurchaseOrder, error) {
	target, ok := actionTargets[action]
	if !ok {
		return database.PurchaseOrder{}, ErrInvalidAction
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.PurchaseOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := s.lockOrder(ctx, store, outletID, orderID)
	if err != nil {
		return database.PurchaseOrder{}, err
	}
	if !orderTransitionAllowed(order.Status, target) {
		return database.PurchaseOrder{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
	}

	updated, err := setOrderStatus(ctx, store, order, target)
	if err != nil {
		return database.PurchaseOrder{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.PurchaseOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

// ReceiveOrder adds delivered quantities to the order lines, raises stock
// for lines linked to an inventory item, and sets the order to RECEIVED
// when every line is covered, otherwise PARTIALLY_RECEIVED.
func (s *PurchasingService) ReceiveOrder(ctx context.Context, req ReceiveRequest) (*OrderResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := s.lockOrder(ctx, store, req.OutletID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !receivableStatuses[order.Status] {
		return nil, ErrOrderNotReceivable
	}

	items, err := store.ListPurchaseOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	byID := make(map[uuid.UUID]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}

	// Sum per line first so a line listed twice is received once.
	received := make(map[uuid.UUID]decimal.Decimal)
	var lineOrder []uuid.UUID
	for i, l := range req.Lines {
		id, err := uuid.Parse(l.ItemID)
		if err != nil {
			return nil, lineErr(i, ErrUnknownLine)
		}
		if _, ok := byID[id]; !ok {
			return nil, lineErr(i, ErrUnknownLine)
		}
		qty, err := parseNonNegative(l.Quantity, pgconv.QuantityPlaces, ErrNegativeQuantity)
		if err != nil {
			return nil, lineErr(i, err)
		}
		if _, seen := received[id]; !seen {
			lineOrder = append(lineOrder, id)
		}
		received[id] = received[id].Add(qty)
	}

	anything := false
	for _, id := range lineOrder {
		qty := received[id]
		if !qty.IsPositive() {
			continue
		}
		anything = true

		updated, err := store.AddReceivedQuantity(ctx, database.AddReceivedQuantityParams{
			ID:               id,
			PurchaseOrderID:  order.ID,
			ReceivedQuantity: pgconv.Quantity(qty),
		})
		if err != nil {
			return nil, fmt.Errorf("add received quantity: %w", err)
		}
		items[byID[id]] = updated

		if updated.InventoryItemID.Valid {
			_, err := store.AdjustInventoryOnHand(ctx, database.AdjustInventoryOnHandParams{
				ID:       uuid.UUID(updated.InventoryItemID.Bytes),
				OutletID: req.OutletID,
				Delta:    pgconv.Quantity(qty),
			})
			if err != nil {
				return nil, fmt.Errorf("adjust stock: %w", err)
			}
		}
	}
	if !anything {
		return nil, ErrNothingReceived
	}

	target := enum.PurchaseOrderStatusReceived
	for _, it := range items {
		if pgconv.Decimal(it.ReceivedQuantity).LessThan(pgconv.Decimal(it.Quantity)) {
			target = enum.PurchaseOrderStatusPartiallyReceived
			break
		}
	}

	updated, err := setOrderStatus(ctx, store, order, target)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &OrderResult{Order: updated, Items: items}, nil
}

// CreateInvoice bills an order: lines default to the order's quantities
// and costs, totals follow costing.ComputeTotals, the invoice starts
// PENDING and the order is closed in the same transaction.
func (s *PurchasingService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResult, error) {
	gstRate := s.invoiceGSTRate
	if req.GSTRate != "" {
		rate, err := parseNonNegative(req.GSTRate, pgconv.MoneyPlaces, ErrInvalidGSTRate)
		if err != nil {
			return nil, err
		}
		gstRate = rate
	}

	invoiceDate := pgconv.Date(today())
	if req.InvoiceDate != "" {
		d, err := pgconv.ParseDate(req.InvoiceDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		invoiceDate = d
	}
	dueDate, err := pgconv.ParseDate(req.DueDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	return withNumberRetry(invoiceNumberConstraint, func() (*InvoiceResult, error) {
		return s.createInvoiceTx(ctx, req, gstRate, invoiceDate, dueDate)
	})
}

func (s *PurchasingService) createInvoiceTx(ctx context.Context, req CreateInvoiceRequest, gstRate decimal.Decimal, invoiceDate, dueDate pgtype.Date) (*InvoiceResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := s.lockOrder(ctx, store, req.OutletID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !invoiceableStatuses[order.Status] {
		return nil, ErrOrderNotInvoiceable
	}

	orderItems, err := store.ListPurchaseOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}

	overrides, err := parseInvoiceOverrides(req.Lines, orderItems)
	if err != nil {
		return nil, err
	}

	lines := make([]database.CreateInvoiceItemParams, len(orderItems))
	calc := make([]costing.Line, len(orderItems))
	for i, it := range orderItems {
		qty := pgconv.Decimal(it.Quantity)
		cost := pgconv.Decimal(it.UnitCost)
		if o, ok := overrides[it.ID]; ok {
			if o.quantity != nil {
				qty = *o.quantity
			}
			if o.unitCost != nil {
				cost = *o.unitCost
			}
		}
		calc[i] = costing.Line{Quantity: qty, UnitPrice: cost}
		lines[i] = database.CreateInvoiceItemParams{
			PurchaseOrderItemID: pgconv.UUID(it.ID),
			Name:                it.Name,
			Unit:                it.Unit,
			Quantity:            pgconv.Quantity(qty),
			UnitCost:            pgconv.UnitCost(cost),
			LineTotal:           pgconv.Numeric(costing.LineTotal(qty, cost)),
		}
	}
	totals := costing.ComputeTotals(calc, gstRate)

	number := req.InvoiceNumber
	if number != "" {
		exists, err := store.InvoiceNumberExists(ctx, database.InvoiceNumberExistsParams{
			OutletID:      req.OutletID,
			InvoiceNumber: number,
		})
		if err != nil {
			return nil, fmt.Errorf("check invoice number: %w", err)
		}
		if exists {
			return nil, ErrDuplicateInvoice
		}
	} else {
		prefix := fmt.Sprintf("INV-%d-", invoiceDate.Time.Year())
		next, err := store.GetNextInvoiceSequence(ctx, database.GetNextInvoiceSequenceParams{
			OutletID: req.OutletID,
			Prefix:   prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("next invoice number: %w", err)
		}
		number = fmt.Sprintf("%s%03d", prefix, next)
	}

	invoice, err := store.CreateInvoice(ctx, database.CreateInvoiceParams{
		OutletID:        req.OutletID,
		InvoiceNumber:   number,
		PurchaseOrderID: order.ID,
		VendorID:        order.VendorID,
		Status:          enum.InvoiceStatusPending,
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		GstRate:         pgconv.Numeric(gstRate),
		Subtotal:        pgconv.Numeric(totals.Subtotal),
		GstAmount:       pgconv.Numeric(totals.GSTAmount),
		Total:           pgconv.Numeric(totals.Total),
		CreatedBy:       req.CreatedBy,
	})
	if err != nil {
		// A supplied number that loses a race is a duplicate, not a retry.
		if req.InvoiceNumber != "" && isUniqueViolation(err, invoiceNumberConstraint) {
			return nil, ErrDuplicateInvoice
		}
		return nil, fmt.Errorf("create invoice: %w", err)
	}

	items := make([]database.InvoiceItem, 0, len(lines))
	for _, l := range lines {
		l.InvoiceID = invoice.ID
		item, err := store.CreateInvoiceItem(ctx, l)
		if err != nil {
			return nil, fmt.Errorf("create invoice item: %w", err)
		}
		items = append(items, item)
	}

	if _, err := setOrderStatus(ctx, store, order, enum.PurchaseOrderStatusClosed); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &InvoiceResult{Invoice: invoice, Items: items}, nil
}

// --- Helpers ---

func (s *PurchasingService) lockOrder(ctx context.Context, store PurchasingStore, outletID, orderID uuid.UUID) (database.PurchaseOrder, error) {
	order, err := store.GetPurchaseOrderForUpdate(ctx, database.GetPurchaseOrderForUpdateParams{
		ID:       orderID,
		OutletID: outletID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.PurchaseOrder{}, ErrOrderNotFound
		}
		return database.PurchaseOrder{}, fmt.Errorf("get purchase order: %w", err)
	}
	return order, nil
}

// setOrderStatus is a compare-and-set on the status the order was read with.
func setOrderStatus(ctx context.Context, store PurchasingStore, order database.PurchaseOrder, target string) (database.PurchaseOrder, error) {
	updated, err := store.UpdatePurchaseOrderStatus(ctx, database.UpdatePurchaseOrderStatusParams{
		ID:       order.ID,
		OutletID: order.OutletID,
		Status:   target,
		Status_2: order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.PurchaseOrder{}, ErrStatusConflict
		}
		return database.PurchaseOrder{}, fmt.Errorf("update purchase order status: %w", err)
	}
	return updated, nil
}

func orderTransitionAllowed(from, to string) bool {
	for _, s := range allowedOrderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// resolveOrderLines validates the requested lines, fills defaults from the
// vendor catalog and inventory, and returns insert params (without the
// order id) plus the order total.
func resolveOrderLines(ctx context.Context, store PurchasingStore, outletID, vendorID uuid.UUID, in []OrderLineInput) ([]database.CreatePurchaseOrderItemParams, decimal.Decimal, error) {
	out := make([]database.CreatePurchaseOrderItemParams, len(in))
	calc := make([]costing.Line, len(in))

	for i, l := range in {
		qty, err := parsePositive(l.Quantity, pgconv.QuantityPlaces)
		if err != nil {
			return nil, decimal.Zero, lineErr(i, err)
		}

		name, sku, unit, costStr := l.Name, l.Sku, l.Unit, l.UnitCost
		var vendorProductID, inventoryItemID pgtype.UUID

		if l.VendorProductID != "" {
			id, err := uuid.Parse(l.VendorProductID)
			if err != nil {
				return nil, decimal.Zero, lineErr(i, ErrVendorProductNotFound)
			}
			vp, err := store.GetVendorProduct(ctx, database.GetVendorProductParams{ID: id, VendorID: vendorID})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, decimal.Zero, lineErr(i, ErrVendorProductNotFound)
				}
				return nil, decimal.Zero, fmt.Errorf("get vendor product: %w", err)
			}
			vendorProductID = pgconv.UUID(vp.ID)
			inventoryItemID = vp.InventoryItemID
			name = firstNonEmpty(name, vp.Name)
			sku = firstNonEmpty(sku, vp.Sku)
			unit = firstNonEmpty(unit, vp.Unit)
			costStr = firstNonEmpty(costStr, pgconv.StringFixed(vp.Price, 4))
		}

		if l.InventoryItemID != "" {
			id, err := uuid.Parse(l.InventoryItemID)
			if err != nil {
				return nil, decimal.Zero, lineErr(i, ErrInventoryItemNotFound)
			}
			inventoryItemID = pgconv.UUID(id)
		}
		if inventoryItemID.Valid {
			item, err := store.GetInventoryItem(ctx, database.GetInventoryItemParams{
				ID:       uuid.UUID(inventoryItemID.Bytes),
				OutletID: outletID,
			})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, decimal.Zero, lineErr(i, ErrInventoryItemNotFound)
				}
				return nil, decimal.Zero, fmt.Errorf("get inventory item: %w", err)
			}
			name = firstNonEmpty(name, item.Name)
			sku = firstNonEmpty(sku, item.Sku)
			unit = firstNonEmpty(unit, item.Unit)
			costStr = firstNonEmpty(costStr, pgconv.StringFixed(item.UnitCost, 4))
		}

		if name == "" {
			return nil, decimal.Zero, lineErr(i, ErrLineNameRequired)
		}
		if unit == "" {
			unit = enum.UnitEach
		}
		cost, err := parseNonNegative(costStr, pgconv.UnitCostPlaces, ErrInvalidCost)
		if err != nil {
			return nil, decimal.Zero, lineErr(i, err)
		}

		calc[i] = costing.Line{Quantity: qty, UnitPrice: cost}
		out[i] = database.CreatePurchaseOrderItemParams{
			VendorProductID: vendorProductID,
			InventoryItemID: inventoryItemID,
			Name:            name,
			Sku:             sku,
			Unit:            unit,
			Quantity:        pgconv.Quantity(qty),
			UnitCost:        pgconv.UnitCost(cost),
			LineTotal:       pgconv.Numeric(costing.LineTotal(qty, cost)),
		}
	}

	return out, costing.ComputeTotals(calc, decimal.Zero).Subtotal, nil
}

func insertOrderLines(ctx context.Context, store PurchasingStore, orderID uuid.UUID, lines []database.CreatePurchaseOrderItemParams) ([]database.PurchaseOrderItem, error) {
	items := make([]database.PurchaseOrderItem, 0, len(lines))
	for _, l := range lines {
		l.PurchaseOrderID = orderID
		item, err := store.CreatePurchaseOrderItem(ctx, l)
		if err != nil {
			return nil, fmt.Errorf("create order line: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

type invoiceOverride struct {
	quantity *decimal.Decimal
	unitCost *decimal.Decimal
}

func parseInvoiceOverrides(in []InvoiceLineInput, orderItems []database.PurchaseOrderItem) (map[uuid.UUID]invoiceOverride, error) {
	known := make(map[uuid.UUID]bool, len(orderItems))
	for _, it := range orderItems {
		known[it.ID] = true
	}

	out := make(map[uuid.UUID]invoiceOverride, len(in))
	for i, l := range in {
		id, err := uuid.Parse(l.ItemID)
		if err != nil || !known[id] {
			return nil, lineErr(i, ErrUnknownLine)
		}
		var o invoiceOverride
		if l.Quantity != "" {
			q, err := parseNonNegative(l.Quantity, pgconv.QuantityPlaces, ErrNegativeQuantity)
			if err != nil {
				return nil, lineErr(i, err)
			}
			o.quantity = &q
		}
		if l.UnitCost != "" {
			c, err := parseNonNegative(l.UnitCost, pgconv.UnitCostPlaces, ErrInvalidCost)
			if err != nil {
				return nil, lineErr(i, err)
			}
			o.unitCost = &c
		}
		out[id] = o
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
