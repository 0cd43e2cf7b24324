package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const countDraftInventoryCounts = `-- name: CountDraftInventoryCounts :one
SELECT COUNT(*) FROM inventory_counts
WHERE outlet_id = $1 AND status = 'DRAFT'
`

func (q *Queries) CountDraftInventoryCounts(ctx context.Context, outletID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countDraftInventoryCounts, outletID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createInventoryCount = `-- name: CreateInventoryCount :one
INSERT INTO inventory_counts (outlet_id, count_number, count_date, frequency, location, total_items, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, outlet_id, count_number, count_date, frequency, location, status, total_items, items_counted, created_by, posted_at, created_at
`

type CreateInventoryCountParams struct {
	OutletID    uuid.UUID   `json:"outlet_id"`
	CountNumber string      `json:"count_number"`
	CountDate   pgtype.Date `json:"count_date"`
	Frequency   string      `json:"frequency"`
	Location    pgtype.Text `json:"location"`
	TotalItems  int32       `json:"total_items"`
	CreatedBy   uuid.UUID   `json:"created_by"`
}

func (q *Queries) CreateInventoryCount(ctx context.Context, arg CreateInventoryCountParams) (InventoryCount, error) {
	row := q.db.QueryRow(ctx, createInventoryCount,
		arg.OutletID,
		arg.CountNumber,
		arg.CountDate,
		arg.Frequency,
		arg.Location,
		arg.TotalItems,
		arg.CreatedBy,
	)
	var i InventoryCount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.CountNumber,
		&i.CountDate,
		&i.Frequency,
		&i.Location,
		&i.Status,
		&i.TotalItems,
		&i.ItemsCounted,
		&i.CreatedBy,
		&i.PostedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getInventoryCount = `-- name: GetInventoryCount :one
SELECT id, outlet_id, count_number, count_date, frequency, location, status, total_items, items_counted, created_by, posted_at, created_at FROM inventory_counts
WHERE id = $1 AND outlet_id = $2
`

type GetInventoryCountParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetInventoryCount(ctx context.Context, arg GetInventoryCountParams) (InventoryCount, error) {
	row := q.db.QueryRow(ctx, getInventoryCount, arg.ID, arg.OutletID)
	var i InventoryCount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.CountNumber,
		&i.CountDate,
		&i.Frequency,
		&i.Location,
		&i.Status,
		&i.TotalItems,
		&i.ItemsCounted,
		&i.CreatedBy,
		&i.PostedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getInventoryCountForUpdate = `-- name: GetInventoryCountForUpdate :one
SELECT id, outlet_id, count_number, count_date, frequency, location, status, total_items, items_counted, created_by, posted_at, created_at FROM inventory_counts
WHERE id = $1 AND outlet_id = $2
FOR UPDATE
`

type GetInventoryCountForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetInventoryCountForUpdate(ctx context.Context, arg GetInventoryCountForUpdateParams) (InventoryCount, error) {
	row := q.db.QueryRow(ctx, getInventoryCountForUpdate, arg.ID, arg.OutletID)
	var i InventoryCount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.CountNumber,
		&i.CountDate,
		&i.Frequency,
		&i.Location,
		&i.Status,
		&i.TotalItems,
		&i.ItemsCounted,
		&i.CreatedBy,
		&i.PostedAt,
		&i.CreatedAt,
	)
	return i, err
}

const getNextCountSequence = `-- name: GetNextCountSequence :one
SELECT (COALESCE(MAX(CAST(substring(count_number FROM '^' || $2::text || '([0-9]+)$') AS INTEGER)), 0) + 1)::int4 AS next_number
FROM inventory_counts
WHERE outlet_id = $1
`

type GetNextCountSequenceParams struct {
	OutletID uuid.UUID `json:"outlet_id"`
	Prefix   string    `json:"prefix"`
}

func (q *Queries) GetNextCountSequence(ctx context.Context, arg GetNextCountSequenceParams) (int32, error) {
	row := q.db.QueryRow(ctx, getNextCountSequence, arg.OutletID, arg.Prefix)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const listInventoryCountLines = `-- name: ListInventoryCountLines :many
SELECT id, count_id, inventory_item_id, counted_quantity, expected_quantity FROM inventory_count_lines
WHERE count_id = $1
ORDER BY id
`

func (q *Queries) ListInventoryCountLines(ctx context.Context, countID uuid.UUID) ([]InventoryCountLine, error) {
	rows, err := q.db.Query(ctx, listInventoryCountLines, countID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryCountLine{}
	for rows.Next() {
		var i InventoryCountLine
		if err := rows.Scan(
			&i.ID,
			&i.CountID,
			&i.InventoryItemID,
			&i.CountedQuantity,
			&i.ExpectedQuantity,
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

const listInventoryCounts = `-- name: ListInventoryCounts :many
SELECT id, outlet_id, count_number, count_date, frequency, location, status, total_items, items_counted, created_by, posted_at, created_at FROM inventory_counts
WHERE outlet_id = $1
  AND ($2::text IS NULL OR status = $2::text)
ORDER BY count_date DESC, count_number DESC
LIMIT $3 OFFSET $4
`

type ListInventoryCountsParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Status   pgtype.Text `json:"status"`
	Limit    int32       `json:"limit"`
	Offset   int32       `json:"offset"`
}

func (q *Queries) ListInventoryCounts(ctx context.Context, arg ListInventoryCountsParams) ([]InventoryCount, error) {
	rows, err := q.db.Query(ctx, listInventoryCounts, arg.OutletID, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryCount{}
	for rows.Next() {
		var i InventoryCount
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.CountNumber,
			&i.CountDate,
			&i.Frequency,
			&i.Location,
			&i.Status,
			&i.TotalItems,
			&i.ItemsCounted,
			&i.CreatedBy,
			&i.PostedAt,
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

const postInventoryCount = `-- name: PostInventoryCount :one
UPDATE inventory_counts SET status = 'POSTED', items_counted = $3, posted_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = 'DRAFT'
RETURNING id, outlet_id, count_number, count_date, frequency, location, status, total_items, items_counted, created_by, posted_at, created_at
`

type PostInventoryCountParams struct {
	ID           uuid.UUID `json:"id"`
	OutletID     uuid.UUID `json:"outlet_id"`
	ItemsCounted int32     `json:"items_counted"`
}

func (q *Queries) PostInventoryCount(ctx context.Context, arg PostInventoryCountParams) (InventoryCount, error) {
	row := q.db.QueryRow(ctx, postInventoryCount, arg.ID, arg.OutletID, arg.ItemsCounted)
	var i InventoryCount
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.CountNumber,
		&i.CountDate,
		&i.Frequency,
		&i.Location,
		&i.Status,
		&i.TotalItems,
		&i.ItemsCounted,
		&i.CreatedBy,
		&i.PostedAt,
		&i.CreatedAt,
	)
	return i, err
}

const upsertInventoryCountLine = `-- name: UpsertInventoryCountLine :one
INSERT INTO inventory_count_lines (count_id, inventory_item_id, counted_quantity, expected_quantity)
VALUES ($1, $2, $3, $4)
ON CONFLICT (count_id, inventory_item_id)
DO UPDATE SET counted_quantity = EXCLUDED.counted_quantity, expected_quantity = EXCLUDED.expected_quantity
RETURNING id, count_id, inventory_item_id, counted_quantity, expected_quantity
`

type UpsertInventoryCountLineParams struct {
	CountID          uuid.UUID      `json:"count_id"`
	InventoryItemID  uuid.UUID      `json:"inventory_item_id"`
	CountedQuantity  pgtype.Numeric `json:"counted_quantity"`
	ExpectedQuantity pgtype.Numeric `json:"expected_quantity"`
}

func (q *Queries) UpsertInventoryCountLine(ctx context.Context, arg UpsertInventoryCountLineParams) (InventoryCountLine, error) {
	row := q.db.QueryRow(ctx, upsertInventoryCountLine, arg.CountID, arg.InventoryItemID, arg.CountedQuantity, arg.ExpectedQuantity)
	var i InventoryCountLine
	err := row.Scan(
		&i.ID,
		&i.CountID,
		&i.InventoryItemID,
		&i.CountedQuantity,
		&i.ExpectedQuantity,
	)
	return i, err
}
