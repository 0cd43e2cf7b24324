package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createDiningTable = `-- name: CreateDiningTable :one
INSERT INTO dining_tables (outlet_id, name, section, capacity)
VALUES ($1, $2, $3, $4)
RETURNING id, outlet_id, name, section, capacity, status, server_name, guests, check_total, seated_at, updated_at
`

type CreateDiningTableParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Name     string      `json:"name"`
	Section  pgtype.Text `json:"section"`
	Capacity int32       `json:"capacity"`
}

func (q *Queries) CreateDiningTable(ctx context.Context, arg CreateDiningTableParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, createDiningTable, arg.OutletID, arg.Name, arg.Section, arg.Capacity)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Section,
		&i.Capacity,
		&i.Status,
		&i.ServerName,
		&i.Guests,
		&i.CheckTotal,
		&i.SeatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getDiningTable = `-- name: GetDiningTable :one
SELECT id, outlet_id, name, section, capacity, status, server_name, guests, check_total, seated_at, updated_at FROM dining_tables
WHERE id = $1 AND outlet_id = $2
`

type GetDiningTableParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetDiningTable(ctx context.Context, arg GetDiningTableParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getDiningTable, arg.ID, arg.OutletID)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Section,
		&i.Capacity,
		&i.Status,
		&i.ServerName,
		&i.Guests,
		&i.CheckTotal,
		&i.SeatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getFloorSummary = `-- name: GetFloorSummary :one
SELECT COUNT(*) FILTER (WHERE status = 'OCCUPIED') AS occupied_tables,
       COALESCE(SUM(check_total) FILTER (WHERE status = 'OCCUPIED'), 0)::numeric AS open_check_total
FROM dining_tables
WHERE outlet_id = $1
`

type GetFloorSummaryRow struct {
	OccupiedTables int64          `json:"occupied_tables"`
	OpenCheckTotal pgtype.Numeric `json:"open_check_total"`
}

func (q *Queries) GetFloorSummary(ctx context.Context, outletID uuid.UUID) (GetFloorSummaryRow, error) {
	row := q.db.QueryRow(ctx, getFloorSummary, outletID)
	var i GetFloorSummaryRow
	err := row.Scan(
		&i.OccupiedTables,
		&i.OpenCheckTotal,
	)
	return i, err
}

const listDiningTables = `-- name: ListDiningTables :many
SELECT id, outlet_id, name, section, capacity, status, server_name, guests, check_total, seated_at, updated_at FROM dining_tables
WHERE outlet_id = $1
ORDER BY section NULLS FIRST, name
`

func (q *Queries) ListDiningTables(ctx context.Context, outletID uuid.UUID) ([]DiningTable, error) {
	rows, err := q.db.Query(ctx, listDiningTables, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []DiningTable{}
	for rows.Next() {
		var i DiningTable
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Name,
			&i.Section,
			&i.Capacity,
			&i.Status,
			&i.ServerName,
			&i.Guests,
			&i.CheckTotal,
			&i.SeatedAt,
			&i.UpdatedAt,
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

const updateDiningTableState = `-- name: UpdateDiningTableState :one
UPDATE dining_tables
SET status = $3, server_name = $4, guests = $5, check_total = $6, seated_at = $7, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND status = $8
RETURNING id, outlet_id, name, section, capacity, status, server_name, guests, check_total, seated_at, updated_at
`

type UpdateDiningTableStateParams struct {
	ID         uuid.UUID          `json:"id"`
	OutletID   uuid.UUID          `json:"outlet_id"`
	Status     string             `json:"status"`
	ServerName pgtype.Text        `json:"server_name"`
	Guests     pgtype.Int4        `json:"guests"`
	CheckTotal pgtype.Numeric     `json:"check_total"`
	SeatedAt   pgtype.Timestamptz `json:"seated_at"`
	Status_2   string             `json:"status_2"`
}

func (q *Queries) UpdateDiningTableState(ctx context.Context, arg UpdateDiningTableStateParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, updateDiningTableState,
		arg.ID,
		arg.OutletID,
		arg.Status,
		arg.ServerName,
		arg.Guests,
		arg.CheckTotal,
		arg.SeatedAt,
		arg.Status_2,
	)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Section,
		&i.Capacity,
		&i.Status,
		&i.ServerName,
		&i.Guests,
		&i.CheckTotal,
		&i.SeatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
