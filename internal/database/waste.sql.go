package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createWasteEntry = `-- name: CreateWasteEntry :one
INSERT INTO waste_entries (outlet_id, waste_number, wasted_at, item_type, inventory_item_id, item_name, unit, quantity, unit_cost, cost, on_hand_at_time, reason, notes, recorded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, outlet_id, waste_number, wasted_at, item_type, inventory_item_id, item_name, unit, quantity, unit_cost, cost, on_hand_at_time, reason, notes, recorded_by, created_at
`

type CreateWasteEntryParams struct {
	OutletID        uuid.UUID      `json:"outlet_id"`
	WasteNumber     string         `json:"waste_number"`
	WastedAt        time.Time      `json:"wasted_at"`
	ItemType        string         `json:"item_type"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	ItemName        string         `json:"item_name"`
	Unit            string         `json:"unit"`
	Quantity        pgtype.Numeric `json:"quantity"`
	UnitCost        pgtype.Numeric `json:"unit_cost"`
	Cost            pgtype.Numeric `json:"cost"`
	OnHandAtTime    pgtype.Numeric `json:"on_hand_at_time"`
	Reason          string         `json:"reason"`
	Notes           pgtype.Text    `json:"notes"`
	RecordedBy      uuid.UUID      `json:"recorded_by"`
}

func (q *Queries) CreateWasteEntry(ctx context.Context, arg CreateWasteEntryParams) (WasteEntry, error) {
	row := q.db.QueryRow(ctx, createWasteEntry,
		arg.OutletID,
		arg.WasteNumber,
		arg.WastedAt,
		arg.ItemType,
		arg.InventoryItemID,
		arg.ItemName,
		arg.Unit,
		arg.Quantity,
		arg.UnitCost,
		arg.Cost,
		arg.OnHandAtTime,
		arg.Reason,
		arg.Notes,
		arg.RecordedBy,
	)
	var i WasteEntry
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.WasteNumber,
		&i.WastedAt,
		&i.ItemType,
		&i.InventoryItemID,
		&i.ItemName,
		&i.Unit,
		&i.Quantity,
		&i.UnitCost,
		&i.Cost,
		&i.OnHandAtTime,
		&i.Reason,
		&i.Notes,
		&i.RecordedBy,
		&i.CreatedAt,
	)
	return i, err
}

const deleteWasteEntry = `-- name: DeleteWasteEntry :one
DELETE FROM waste_entries
WHERE id = $1 AND outlet_id = $2
RETURNING id
`

type DeleteWasteEntryParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) DeleteWasteEntry(ctx context.Context, arg DeleteWasteEntryParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, deleteWasteEntry, arg.ID, arg.OutletID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const getNextWasteNumber = `-- name: GetNextWasteNumber :one
SELECT (COALESCE(MAX(CAST(substring(waste_number FROM '^WST-([0-9]+)$') AS INTEGER)), 0) + 1)::int4 AS next_number
FROM waste_entries
WHERE outlet_id = $1
`

func (q *Queries) GetNextWasteNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextWasteNumber, outletID)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const listWasteEntries = `-- name: ListWasteEntries :many
SELECT id, outlet_id, waste_number, wasted_at, item_type, inventory_item_id, item_name, unit, quantity, unit_cost, cost, on_hand_at_time, reason, notes, recorded_by, created_at FROM waste_entries
WHERE outlet_id = $1 AND wasted_at >= $2 AND wasted_at < $3
ORDER BY wasted_at DESC
`

type ListWasteEntriesParams struct {
	OutletID uuid.UUID `json:"outlet_id"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
}

func (q *Queries) ListWasteEntries(ctx context.Context, arg ListWasteEntriesParams) ([]WasteEntry, error) {
	rows, err := q.db.Query(ctx, listWasteEntries, arg.OutletID, arg.StartAt, arg.EndAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []WasteEntry{}
	for rows.Next() {
		var i WasteEntry
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.WasteNumber,
			&i.WastedAt,
			&i.ItemType,
			&i.InventoryItemID,
			&i.ItemName,
			&i.Unit,
			&i.Quantity,
			&i.UnitCost,
			&i.Cost,
			&i.OnHandAtTime,
			&i.Reason,
			&i.Notes,
			&i.RecordedBy,
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

const sumWasteCost = `-- name: SumWasteCost :one
SELECT COALESCE(SUM(cost), 0)::numeric AS total FROM waste_entries
WHERE outlet_id = $1 AND wasted_at >= $2 AND wasted_at < $3
`

type SumWasteCostParams struct {
	OutletID uuid.UUID `json:"outlet_id"`
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
}

func (q *Queries) SumWasteCost(ctx context.Context, arg SumWasteCostParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumWasteCost, arg.OutletID, arg.StartAt, arg.EndAt)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
