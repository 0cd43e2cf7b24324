package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOutlet = `-- name: CreateOutlet :one
INSERT INTO outlets (name, address)
VALUES ($1, $2)
RETURNING id, name, address, created_at, updated_at
`

type CreateOutletParams struct {
	Name    string      `json:"name"`
	Address pgtype.Text `json:"address"`
}

func (q *Queries) CreateOutlet(ctx context.Context, arg CreateOutletParams) (Outlet, error) {
	row := q.db.QueryRow(ctx, createOutlet, arg.Name, arg.Address)
	var i Outlet
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Address,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOutlet = `-- name: GetOutlet :one
SELECT id, name, address, created_at, updated_at FROM outlets
WHERE id = $1
`

func (q *Queries) GetOutlet(ctx context.Context, id uuid.UUID) (Outlet, error) {
	row := q.db.QueryRow(ctx, getOutlet, id)
	var i Outlet
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Address,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOutletByName = `-- name: GetOutletByName :one
SELECT id, name, address, created_at, updated_at FROM outlets
WHERE name = $1
`

func (q *Queries) GetOutletByName(ctx context.Context, name string) (Outlet, error) {
	row := q.db.QueryRow(ctx, getOutletByName, name)
	var i Outlet
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Address,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
