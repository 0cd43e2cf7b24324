package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createBill = `-- name: CreateBill :one
INSERT INTO bills (outlet_id, bill_number, bill_date, supplier, category, reference, paid_by, gst_rate, subtotal, gst_amount, total, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, outlet_id, bill_number, bill_date, supplier, category, reference, paid_by, gst_rate, subtotal, gst_amount, total, created_by, created_at
`

type CreateBillParams struct {
	OutletID   uuid.UUID      `json:"outlet_id"`
	BillNumber string         `json:"bill_number"`
	BillDate   pgtype.Date    `json:"bill_date"`
	Supplier   string         `json:"supplier"`
	Category   string         `json:"category"`
	Reference  string         `json:"reference"`
	PaidBy     string         `json:"paid_by"`
	GstRate    pgtype.Numeric `json:"gst_rate"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
	GstAmount  pgtype.Numeric `json:"gst_amount"`
	Total      pgtype.Numeric `json:"total"`
	CreatedBy  uuid.UUID      `json:"created_by"`
}

func (q *Queries) CreateBill(ctx context.Context, arg CreateBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx, createBill,
		arg.OutletID,
		arg.BillNumber,
		arg.BillDate,
		arg.Supplier,
		arg.Category,
		arg.Reference,
		arg.PaidBy,
		arg.GstRate,
		arg.Subtotal,
		arg.GstAmount,
		arg.Total,
		arg.CreatedBy,
	)
	var i Bill
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.BillNumber,
		&i.BillDate,
		&i.Supplier,
		&i.Category,
		&i.Reference,
		&i.PaidBy,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createBillItem = `-- name: CreateBillItem :one
INSERT INTO bill_items (bill_id, inventory_item_id, description, quantity, unit, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, bill_id, inventory_item_id, description, quantity, unit, unit_price, line_total
`

type CreateBillItemParams struct {
	BillID          uuid.UUID      `json:"bill_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Description     string         `json:"description"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	LineTotal       pgtype.Numeric `json:"line_total"`
}

func (q *Queries) CreateBillItem(ctx context.Context, arg CreateBillItemParams) (BillItem, error) {
	row := q.db.QueryRow(ctx, createBillItem,
		arg.BillID,
		arg.InventoryItemID,
		arg.Description,
		arg.Quantity,
		arg.Unit,
		arg.UnitPrice,
		arg.LineTotal,
	)
	var i BillItem
	err := row.Scan(
		&i.ID,
		&i.BillID,
		&i.InventoryItemID,
		&i.Description,
		&i.Quantity,
		&i.Unit,
		&i.UnitPrice,
		&i.LineTotal,
	)
	return i, err
}

const getBill = `-- name: GetBill :one
SELECT id, outlet_id, bill_number, bill_date, supplier, category, reference, paid_by, gst_rate, subtotal, gst_amount, total, created_by, created_at FROM bills
WHERE id = $1 AND outlet_id = $2
`

type GetBillParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetBill(ctx context.Context, arg GetBillParams) (Bill, error) {
	row := q.db.QueryRow(ctx, getBill, arg.ID, arg.OutletID)
	var i Bill
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.BillNumber,
		&i.BillDate,
		&i.Supplier,
		&i.Category,
		&i.Reference,
		&i.PaidBy,
		&i.GstRate,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getNextBillNumber = `-- name: GetNextBillNumber :one
SELECT (COALESCE(MAX(CAST(substring(bill_number FROM '^BILL-([0-9]+)$') AS INTEGER)), 0) + 1)::int4 AS next_number
FROM bills
WHERE outlet_id = $1
`

func (q *Queries) GetNextBillNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextBillNumber, outletID)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const listBillItems = `-- name: ListBillItems :many
SELECT id, bill_id, inventory_item_id, description, quantity, unit, unit_price, line_total FROM bill_items
WHERE bill_id = $1
ORDER BY description, id
`

func (q *Queries) ListBillItems(ctx context.Context, billID uuid.UUID) ([]BillItem, error) {
	rows, err := q.db.Query(ctx, listBillItems, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []BillItem{}
	for rows.Next() {
		var i BillItem
		if err := rows.Scan(
			&i.ID,
			&i.BillID,
			&i.InventoryItemID,
			&i.Description,
			&i.Quantity,
			&i.Unit,
			&i.UnitPrice,
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

const listBills = `-- name: ListBills :many
SELECT b.id, b.outlet_id, b.bill_number, b.bill_date, b.supplier, b.category, b.reference, b.paid_by, b.gst_rate, b.subtotal, b.gst_amount, b.total, b.created_by, b.created_at FROM bills b
WHERE b.outlet_id = $1
  AND ($2::date IS NULL OR b.bill_date >= $2::date)
  AND ($3::date IS NULL OR b.bill_date <= $3::date)
  AND ($4::text IS NULL
       OR b.bill_number ILIKE '%' || $4::text || '%'
       OR b.supplier ILIKE '%' || $4::text || '%'
       OR replace(b.category, '_', ' ') ILIKE '%' || $4::text || '%'
       OR b.paid_by ILIKE '%' || $4::text || '%'
       OR b.reference ILIKE '%' || $4::text || '%'
       OR EXISTS (
           SELECT 1 FROM bill_items bi
           WHERE bi.bill_id = b.id AND bi.description ILIKE '%' || $4::text || '%'
       ))
ORDER BY b.bill_date DESC, b.bill_number DESC
`

type ListBillsParams struct {
	OutletID  uuid.UUID   `json:"outlet_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
	Search    pgtype.Text `json:"search"`
}

func (q *Queries) ListBills(ctx context.Context, arg ListBillsParams) ([]Bill, error) {
	rows, err := q.db.Query(ctx, listBills, arg.OutletID, arg.StartDate, arg.EndDate, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Bill{}
	for rows.Next() {
		var i Bill
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.BillNumber,
			&i.BillDate,
			&i.Supplier,
			&i.Category,
			&i.Reference,
			&i.PaidBy,
			&i.GstRate,
			&i.Subtotal,
			&i.GstAmount,
			&i.Total,
			&i.CreatedBy,
			&i.CreatedAt,
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

const sumBillTotals = `-- name: SumBillTotals :one
SELECT COALESCE(SUM(total), 0)::numeric AS total FROM bills
WHERE outlet_id = $1
  AND ($2::date IS NULL OR bill_date >= $2::date)
  AND ($3::date IS NULL OR bill_date <= $3::date)
`

type SumBillTotalsParams struct {
	OutletID  uuid.UUID   `json:"outlet_id"`
	StartDate pgtype.Date `json:"start_date"`
	EndDate   pgtype.Date `json:"end_date"`
}

func (q *Queries) SumBillTotals(ctx context.Context, arg SumBillTotalsParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumBillTotals, arg.OutletID, arg.StartDate, arg.EndDate)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
