package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const addReceivedQuantity = `-- name: AddReceivedQuantity :one
UPDATE purchase_order_items SET received_quantity = received_quantity + $3
WHERE id = $1 AND purchase_order_id = $2
RETURNING id, purchase_order_id, vendor_product_id, inventory_item_id, name, sku, unit, quantity, unit_cost, received_quantity, line_total
`

type AddReceivedQuantityParams struct {
	ID               uuid.UUID      `json:"id"`
	PurchaseOrderID  uuid.UUID      `json:"purchase_order_id"`
	ReceivedQuantity pgtype.Numeric `json:"received_quantity"`
}

func (q *Queries) AddReceivedQuantity(ctx context.Context, arg AddReceivedQuantityParams) (PurchaseOrderItem, error) {
	row := q.db.QueryRow(ctx, addReceivedQuantity, arg.ID, arg.PurchaseOrderID, arg.ReceivedQuantity)
	var i PurchaseOrderItem
	err := row.Scan(
		&i.ID,
		&i.PurchaseOrderID,
		&i.VendorProductID,
		&i.InventoryItemID,
		&i.Name,
		&i.Sku,
		&i.Unit,
		&i.Quantity,
		&i.UnitCost,
		&i.ReceivedQuantity,
		&i.LineTotal,
	)
	return i, err
}

const countPurchaseOrdersByStatus = `-- name: CountPurchaseOrdersByStatus :one
SELECT COUNT(*) FROM purchase_orders
WHERE outlet_id = $1 AND status = ANY($2::text[])
`

type CountPurchaseOrdersByStatusParams struct {
	OutletID uuid.UUID `json:"outlet_id"`
	Statuses []string  `json:"statuses"`
}

func (q *Queries) CountPurchaseOrdersByStatus(ctx context.Context, arg CountPurchaseOrdersByStatusParams) (int64, error) {
	row := q.db.QueryRow(ctx, countPurchaseOrdersByStatus, arg.OutletID, arg.Statuses)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createPurchaseOrder = `-- name: CreatePurchaseOrder :one
INSERT INTO purchase_orders (outlet_id, po_number, vendor_id, status, order_date, delivery_date, memo, total, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, outlet_id, po_number, vendor_id, status, order_date, delivery_date, memo, total, created_by, created_at, updated_at
`

type CreatePurchaseOrderParams struct {
	OutletID     uuid.UUID      `json:"outlet_id"`
	PoNumber     string         `json:"po_number"`
	VendorID     uuid.UUID      `json:"vendor_id"`
	Status       string         `json:"status"`
	OrderDate    pgtype.Date    `json:"order_date"`
	DeliveryDate pgtype.Date    `json:"delivery_date"`
	Memo         pgtype.Text    `json:"memo"`
	Total        pgtype.Numeric `json:"total"`
	CreatedBy    uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreatePurchaseOrder(ctx context.Context, arg CreatePurchaseOrderParams) (PurchaseOrder, error) {
	row := q.db.QueryRow(ctx, createPurchaseOrder,
		arg.OutletID,
		arg.PoNumber,
		arg.VendorID,
		arg.Status,
		arg.OrderDate,
		arg.DeliveryDate,
		arg.Memo,
		arg.Total,
		arg.CreatedBy,
	)
	var i PurchaseOrder
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.PoNumber,
		&i.VendorID,
		&i.Status,
		&i.OrderDate,
		&i.DeliveryDate,
		&i.Memo,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createPurchaseOrderItem = `-- name: CreatePurchaseOrderItem :one
INSERT INTO purchase_order_items (purchase_order_id, vendor_product_id, inventory_item_id, name, sku, unit, quantity, unit_cost, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, purchase_order_id, vendor_product_id, inventory_item_id, name, sku, unit, quantity, unit_cost, received_quantity, line_total
`

type CreatePurchaseOrderItemParams struct {
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	VendorProductID pgtype.UUID    `json:"vendor_product_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Name            string         `json:"name"`
	Sku             string         `json:"sku"`
	Unit            string         `json:"unit"`
	Quantity        pgtype.Numeric `json:"quantity"`
	UnitCost        pgtype.Numeric `json:"unit_cost"`
	LineTotal       pgtype.Numeric `json:"line_total"`
}

func (q *Queries) CreatePurchaseOrderItem(ctx context.Context, arg CreatePurchaseOrderItemParams) (PurchaseOrderItem, error) {
	row := q.db.QueryRow(ctx, createPurchaseOrderItem,
		arg.PurchaseOrderID,
		arg.VendorProductID,
		arg.InventoryItemID,
		arg.Name,
		arg.Sku,
		arg.Unit,
		arg.Quantity,
		arg.UnitCost,
		arg.LineTotal,
	)
	var i PurchaseOrderItem
	err := row.Scan(
		&i.ID,
		&i.PurchaseOrderID,
		&i.VendorProductID,
		&i.InventoryItemID,
		&i.Name,
		&i.Sku,
		&i.Unit,
		&i.Quantity,
		&i.UnitCost,
		&i.ReceivedQuantity,
		&i.LineTotal,
	)
	return i, err
}

const deletePurchaseOrderItems = `-- name: DeletePurchaseOrderItems :exec
DELETE FROM purchase_order_items
WHERE purchase_order_id = $1
`

func (q *Queries) DeletePurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deletePurchaseOrderItems, purchaseOrderID)
	return err
}

const getNextPONumber = `-- name: GetNextPONumber :one
SELECT (COALESCE(MAX(CAST(substring(po_number FROM '^PO-([0-9]+)$') AS INTEGER)), 0) + 1)::int4 AS next_number
FROM purchase_orders
WHERE outlet_id = $1
`

func (q *Queries) GetNextPONumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextPONumber, outletID)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const getPurchaseOrder = `-- name: GetPurchaseOrder :one
SELECT id, outlet_id, po_number, vendor_id, status, order_date, delivery_date, memo, total, created_by, created_at, updated_at FROM purchase_orders
WHERE id = $1 AND outlet_id = $2
`

type GetPurchaseOrderParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetPurchaseOrder(ctx context.Context, arg GetPurchaseOrderParams) (PurchaseOrder, error) {
	row := q.db.QueryRow(ctx, getPurchaseOrder, arg.ID, arg.OutletID)
	var i PurchaseOrder
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.PoNumber,
		&i.VendorID,
		&i.Status,
		&i.OrderDate,
		&i.DeliveryDate,
		&i.Memo,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPurchaseOrderForUpdate = `-- name: GetPurchaseOrderForUpdate :one
SELECT id, outlet_id, po_number, vendor_id, status, order_date, delivery_date, memo, total, created_by, created_at, updated_at FROM purchase_orders
WHERE id = $1 AND outlet_id = $2
FOR UPDATE
`

type GetPurchaseOrderForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetPurchaseOrderForUpdate(ctx context.Context, arg GetPurchaseOrderForUpdateParams) (PurchaseOrder, error) {
	row := q.db.QueryRow(ctx, getPurchaseOrderForUpdate, arg.ID, arg.OutletID)
	var i PurchaseOrder
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.PoNumber,
		&i.VendorID,
		&i.Status,
		&i.OrderDate,
		&i.DeliveryDate,
		&i.Memo,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listPurchaseOrderItems = `-- name: ListPurchaseOrderItems :many
SELECT id, purchase_order_id, vendor_product_id, inventory_item_id, name, sku, unit, quantity, unit_cost, received_quantity, line_total FROM purchase_order_items
WHERE purchase_order_id = $1
ORDER BY name, id
`

func (q *Queries) ListPurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]PurchaseOrderItem, error) {
	rows, err := q.db.Query(ctx, listPurchaseOrderItems, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []PurchaseOrderItem{}
	for rows.Next() {
		var i PurchaseOrderItem
		if err := rows.Scan(
			&i.ID,
			&i.PurchaseOrderID,
			&i.VendorProductID,
			&i.InventoryItemID,
			&i.Name,
			&i.Sku,
			&i.Unit,
			&i.Quantity,
			&i.UnitCost,
			&i.ReceivedQuantity,
			&i.LineTotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPurchaseOrders = `-- name: ListPurchaseOrders :many
SELECT po.id, po.outlet_id, po.po_number, po.vendor_id, po.status, po.order_date, po.delivery_date, po.memo, po.total, po.created_by, po.created_at, po.updated_at,
       v.name AS vendor_name,
       (SELECT COUNT(*) FROM purchase_order_items poi WHERE poi.purchase_order_id = po.id) AS item_count
FROM purchase_orders po
JOIN vendors v ON v.id = po.vendor_id
WHERE po.outlet_id = $1
  AND ($2::text IS NULL OR po.status = $2::text)
  AND ($3::uuid IS NULL OR po.vendor_id = $3::uuid)
ORDER BY po.created_at DESC
LIMIT $4 OFFSET $5
`

type ListPurchaseOrdersParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Status   pgtype.Text `json:"status"`
	VendorID pgtype.UUID `json:"vendor_id"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

type ListPurchaseOrdersRow struct {
	ID           uuid.UUID      `json:"id"`
	OutletID     uuid.UUID      `json:"outlet_id"`
	PoNumber     string         `json:"po_number"`
	VendorID     uuid.UUID      `json:"vendor_id"`
	Status       string         `json:"status"`
	OrderDate    pgtype.Date    `json:"order_date"`
	DeliveryDate pgtype.Date    `json:"delivery_date"`
	Memo         pgtype.Text    `json:"memo"`
	Total        pgtype.Numeric `json:"total"`
	CreatedBy    uuid.UUID      `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	VendorName   string         `json:"vendor_name"`
	ItemCount    int64          `json:"item_count"`
}

func (q *Queries) ListPurchaseOrders(ctx context.Context, arg ListPurchaseOrdersParams) ([]ListPurchaseOrdersRow, error) {
	rows, err := q.db.Query(ctx, listPurchaseOrders,
		arg.OutletID,
		arg.Status,
		arg.VendorID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListPurchaseOrdersRow{}
	for rows.Next() {
		var i ListPurchaseOrdersRow
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.PoNumber,
			&i.VendorID,
			&i.Status,
			&i.OrderDate,
			&i.DeliveryDate,
			&i.Memo,
			&i.Total,
			&i.CreatedBy,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.VendorName,
			&i.ItemCount,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumPurchaseOrderSpend = `-- name: SumPurchaseOrderSpend :one
SELECT COALESCE(SUM(total), 0)::numeric AS total FROM purchase_orders
WHERE outlet_id = $1 AND status <> 'DRAFT'
`

func (q *Queries) SumPurchaseOrderSpend(ctx context.Context, outletID uuid.UUID) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumPurchaseOrderSpend, outletID)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

const updatePurchaseOrderDetails = `-- name: UpdatePurchaseOrderDetails :one
UPDATE purchase_orders SET delivery_date = $3, memo = $4, total = $5, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, po_number, vendor_id, status, order_date, delivery_date, memo, total, created_by, created_at, updated_at
`

type UpdatePurchaseOrderDetailsParams struct {
	ID           uuid.UUID      `json:"id"`
	OutletID     uuid.UUID      `json:"outlet_id"`
	DeliveryDate pgtype.Date    `json:"delivery_date"`
	Memo         pgtype.Text    `json:"memo"`
	Total        pgtype.Numeric `json:"total"`
}

func (q *Queries) UpdatePurchaseOrderDetails(ctx context.Context, arg UpdatePurchaseOrderDetailsParams) (PurchaseOrder, error) {
	row := q.db.QueryRow(ctx, updatePurchaseOrderDetails,
		arg.ID,
		arg.OutletID,
		arg.DeliveryDate,
		arg.Memo,
		arg.Total,
	)
	var i PurchaseOrder
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.PoNumber,
		&i.VendorID,
		&i.Status,
		&i.OrderDate,
		&i.DeliveryDate,
		&i.Memo,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updatePurchaseOrderStatus = `-- name: UpdatePurchaseOrderStatus :one
UPDATE purchase_orders SET status = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = $4
RETURNING id, outlet_id, po_number, vendor_id, status, order_date, delivery_date, memo, total, created_by, created_at, updated_at
`

type UpdatePurchaseOrderStatusParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
	Status   string    `json:"status"`
	Status_2 string    `json:"status_2"`
}

func (q *Queries) UpdatePurchaseOrderStatus(ctx context.Context, arg UpdatePurchaseOrderStatusParams) (PurchaseOrder, error) {
	row := q.db.QueryRow(ctx, updatePurchaseOrderStatus, arg.ID, arg.OutletID, arg.Status, arg.Status_2)
	var i PurchaseOrder
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.PoNumber,
		&i.VendorID,
		&i.Status,
		&i.OrderDate,
		&i.DeliveryDate,
		&i.Memo,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
