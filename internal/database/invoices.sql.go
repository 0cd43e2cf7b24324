package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const countUnfinalizedInvoices = `-- name: CountUnfinalizedInvoices :one
SELECT COUNT(*) FROM invoices
WHERE outlet_id = $1 AND status IN ('DRAFT', 'PENDING')
`

func (q *Queries) CountUnfinalizedInvoices(ctx context.Context, outletID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countUnfinalizedInvoices, outletID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createInvoice = `-- name: CreateInvoice :one
INSERT INTO invoices (outlet_id, invoice_number, purchase_order_id, vendor_id, status, invoice_date, due_date, gst_rate, subtotal, gst_amount, total, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, outlet_id, invoice_number, purchase_order_id, vendor_id, status, invoice_date, due_date, gst_rate, subtotal, gst_amount, total, created_by, created_at, updated_at
`

type CreateInvoiceParams struct {
	OutletID        uuid.UUID      `json:"outlet_id"`
	InvoiceNumber   string         `json:"invoice_number"`
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	VendorID        uuid.UUID      `json:"vendor_id"`
	Status          string         `json:"status"`
	InvoiceDate     pgtype.Date    `json:"invoice_date"`
	DueDate         pgtype.Date    `json:"due_date"`
	GstRate         pgtype.Numeric `json:"gst_rate"`
	Subtotal        pgtype.Numeric `json:"subtotal"`
	GstAmount       pgtype.Numeric `json:"gst_amount"`
	Total           pgtype.Numeric `json:"total"`
	CreatedBy       uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, createInvoice,
		arg.OutletID,
		arg.InvoiceNumber,
		arg.PurchaseOrderID,
		arg.VendorID,
		arg.Status,
		arg.InvoiceDate,
		arg.DueDate,
		arg.GstRate,
		arg.Subtotal,
		arg.GstAmount,
		arg.Total,
		arg.CreatedBy,
	)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.InvoiceNumber,
		&i.PurchaseOrderID,
		&i.VendorID,
		&i.Status,
		&i.InvoiceDate,
		&i.DueDate,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createInvoiceItem = `-- name: CreateInvoiceItem :one
INSERT INTO invoice_items (invoice_id, purchase_order_item_id, name, unit, quantity, unit_cost, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, invoice_id, purchase_order_item_id, name, unit, quantity, unit_cost, line_total
`

type CreateInvoiceItemParams struct {
	InvoiceID           uuid.UUID      `json:"invoice_id"`
	PurchaseOrderItemID pgtype.UUID    `json:"purchase_order_item_id"`
	Name                string         `json:"name"`
	Unit                string         `json:"unit"`
	Quantity            pgtype.Numeric `json:"quantity"`
	UnitCost            pgtype.Numeric `json:"unit_cost"`
	LineTotal           pgtype.Numeric `json:"line_total"`
}

func (q *Queries) CreateInvoiceItem(ctx context.Context, arg CreateInvoiceItemParams) (InvoiceItem, error) {
	row := q.db.QueryRow(ctx, createInvoiceItem,
		arg.InvoiceID,
		arg.PurchaseOrderItemID,
		arg.Name,
		arg.Unit,
		arg.Quantity,
		arg.UnitCost,
		arg.LineTotal,
	)
	var i InvoiceItem
	err := row.Scan(
		&i.ID,
		&i.InvoiceID,
		&i.PurchaseOrderItemID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.UnitCost,
		&i.LineTotal,
	)
	return i, err
}

const getInvoice = `-- name: GetInvoice :one
SELECT id, outlet_id, invoice_number, purchase_order_id, vendor_id, status, invoice_date, due_date, gst_rate, subtotal, gst_amount, total, created_by, created_at, updated_at FROM invoices
WHERE id = $1 AND outlet_id = $2
`

type GetInvoiceParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetInvoice(ctx context.Context, arg GetInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, getInvoice, arg.ID, arg.OutletID)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.InvoiceNumber,
		&i.PurchaseOrderID,
		&i.VendorID,
		&i.Status,
		&i.InvoiceDate,
		&i.DueDate,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getInvoiceForUpdate = `-- name: GetInvoiceForUpdate :one
SELECT id, outlet_id, invoice_number, purchase_order_id, vendor_id, status, invoice_date, due_date, gst_rate, subtotal, gst_amount, total, created_by, created_at, updated_at FROM invoices
WHERE id = $1 AND outlet_id = $2
FOR UPDATE
`

type GetInvoiceForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetInvoiceForUpdate(ctx context.Context, arg GetInvoiceForUpdateParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, getInvoiceForUpdate, arg.ID, arg.OutletID)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.InvoiceNumber,
		&i.PurchaseOrderID,
		&i.VendorID,
		&i.Status,
		&i.InvoiceDate,
		&i.DueDate,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getNextInvoiceSequence = `-- name: GetNextInvoiceSequence :one
SELECT (COALESCE(MAX(CAST(substring(invoice_number FROM '^' || $2::text || '([0-9]+)$') AS INTEGER)), 0) + 1)::int4 AS next_number
FROM invoices
WHERE outlet_id = $1
`

type GetNextInvoiceSequenceParams struct {
	OutletID uuid.UUID `json:"outlet_id"`
	Prefix   string    `json:"prefix"`
}

func (q *Queries) GetNextInvoiceSequence(ctx context.Context, arg GetNextInvoiceSequenceParams) (int32, error) {
	row := q.db.QueryRow(ctx, getNextInvoiceSequence, arg.OutletID, arg.Prefix)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const invoiceNumberExists = `-- name: InvoiceNumberExists :one
SELECT EXISTS (
    SELECT 1 FROM invoices WHERE outlet_id = $1 AND invoice_number = $2
) AS exists
`

type InvoiceNumberExistsParams struct {
	OutletID      uuid.UUID `json:"outlet_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

func (q *Queries) InvoiceNumberExists(ctx context.Context, arg InvoiceNumberExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, invoiceNumberExists, arg.OutletID, arg.InvoiceNumber)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listInvoiceItems = `-- name: ListInvoiceItems :many
SELECT id, invoice_id, purchase_order_item_id, name, unit, quantity, unit_cost, line_total FROM invoice_items
WHERE invoice_id = $1
ORDER BY name, id
`

func (q *Queries) ListInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]InvoiceItem, error) {
	rows, err := q.db.Query(ctx, listInvoiceItems, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InvoiceItem{}
	for rows.Next() {
		var i InvoiceItem
		if err := rows.Scan(
			&i.ID,
			&i.InvoiceID,
			&i.PurchaseOrderItemID,
			&i.Name,
			&i.Unit,
			&i.Quantity,
			&i.UnitCost,
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

const listInvoices = `-- name: ListInvoices :many
SELECT i.id, i.outlet_id, i.invoice_number, i.purchase_order_id, i.vendor_id, i.status, i.invoice_date, i.due_date, i.gst_rate, i.subtotal, i.gst_amount, i.total, i.created_by, i.created_at, i.updated_at,
       v.name AS vendor_name,
       po.po_number
FROM invoices i
JOIN vendors v ON v.id = i.vendor_id
JOIN purchase_orders po ON po.id = i.purchase_order_id
WHERE i.outlet_id = $1
  AND ($2::text IS NULL OR i.status = $2::text)
  AND ($3::uuid IS NULL OR i.vendor_id = $3::uuid)
ORDER BY i.invoice_date DESC, i.invoice_number DESC
LIMIT $4 OFFSET $5
`

type ListInvoicesParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Status   pgtype.Text `json:"status"`
	VendorID pgtype.UUID `json:"vendor_id"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

type ListInvoicesRow struct {
	ID              uuid.UUID      `json:"id"`
	OutletID        uuid.UUID      `json:"outlet_id"`
	InvoiceNumber   string         `json:"invoice_number"`
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	VendorID        uuid.UUID      `json:"vendor_id"`
	Status          string         `json:"status"`
	InvoiceDate     pgtype.Date    `json:"invoice_date"`
	DueDate         pgtype.Date    `json:"due_date"`
	GstRate         pgtype.Numeric `json:"gst_rate"`
	Subtotal        pgtype.Numeric `json:"subtotal"`
	GstAmount       pgtype.Numeric `json:"gst_amount"`
	Total           pgtype.Numeric `json:"total"`
	CreatedBy       uuid.UUID      `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	VendorName      string         `json:"vendor_name"`
	PoNumber        string         `json:"po_number"`
}

func (q *Queries) ListInvoices(ctx context.Context, arg ListInvoicesParams) ([]ListInvoicesRow, error) {
	rows, err := q.db.Query(ctx, listInvoices,
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
	items := []ListInvoicesRow{}
	for rows.Next() {
		var i ListInvoicesRow
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.InvoiceNumber,
			&i.PurchaseOrderID,
			&i.VendorID,
			&i.Status,
			&i.InvoiceDate,
			&i.DueDate,
			&i.GstRate,
			&i.Subtotal,
			&i.GstAmount,
			&i.Total,
			&i.CreatedBy,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.VendorName,
			&i.PoNumber,
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

const updateInvoiceItem = `-- name: UpdateInvoiceItem :one
UPDATE invoice_items SET quantity = $3, unit_cost = $4, line_total = $5
WHERE id = $1 AND invoice_id = $2
RETURNING id, invoice_id, purchase_order_item_id, name, unit, quantity, unit_cost, line_total
`

type UpdateInvoiceItemParams struct {
	ID        uuid.UUID      `json:"id"`
	InvoiceID uuid.UUID      `json:"invoice_id"`
	Quantity  pgtype.Numeric `json:"quantity"`
	UnitCost  pgtype.Numeric `json:"unit_cost"`
	LineTotal pgtype.Numeric `json:"line_total"`
}

func (q *Queries) UpdateInvoiceItem(ctx context.Context, arg UpdateInvoiceItemParams) (InvoiceItem, error) {
	row := q.db.QueryRow(ctx, updateInvoiceItem,
		arg.ID,
		arg.InvoiceID,
		arg.Quantity,
		arg.UnitCost,
		arg.LineTotal,
	)
	var i InvoiceItem
	err := row.Scan(
		&i.ID,
		&i.InvoiceID,
		&i.PurchaseOrderItemID,
		&i.Name,
		&i.Unit,
		&i.Quantity,
		&i.UnitCost,
		&i.LineTotal,
	)
	return i, err
}

const updateInvoiceStatus = `-- name: UpdateInvoiceStatus :one
UPDATE invoices SET status = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = $4
RETURNING id, outlet_id, invoice_number, purchase_order_id, vendor_id, status, invoice_date, due_date, gst_rate, subtotal, gst_amount, total, created_by, created_at, updated_at
`

type UpdateInvoiceStatusParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
	Status   string    `json:"status"`
	Status_2 string    `json:"status_2"`
}

func (q *Queries) UpdateInvoiceStatus(ctx context.Context, arg UpdateInvoiceStatusParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, updateInvoiceStatus, arg.ID, arg.OutletID, arg.Status, arg.Status_2)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.InvoiceNumber,
		&i.PurchaseOrderID,
		&i.VendorID,
		&i.Status,
		&i.InvoiceDate,
		&i.DueDate,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateInvoiceTotals = `-- name: UpdateInvoiceTotals :one
UPDATE invoices SET subtotal = $2, gst_amount = $3, total = $4, updated_at = now()
WHERE id = $1
RETURNING id, outlet_id, invoice_number, purchase_order_id, vendor_id, status, invoice_date, due_date, gst_rate, subtotal, gst_amount, total, created_by, created_at, updated_at
`

type UpdateInvoiceTotalsParams struct {
	ID        uuid.UUID      `json:"id"`
	Subtotal  pgtype.Numeric `json:"subtotal"`
	GstAmount pgtype.Numeric `json:"gst_amount"`
	Total     pgtype.Numeric `json:"total"`
}

func (q *Queries) UpdateInvoiceTotals(ctx context.Context, arg UpdateInvoiceTotalsParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, updateInvoiceTotals, arg.ID, arg.Subtotal, arg.GstAmount, arg.Total)
	var i Invoice
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.InvoiceNumber,
		&i.PurchaseOrderID,
		&i.VendorID,
		&i.Status,
		&i.InvoiceDate,
		&i.DueDate,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
