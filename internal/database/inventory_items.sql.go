package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const adjustInventoryOnHand = `-- name: AdjustInventoryOnHand :one
UPDATE inventory_items SET on_hand = on_hand + $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at
`

type AdjustInventoryOnHandParams struct {
	ID       uuid.UUID      `json:"id"`
	OutletID uuid.UUID      `json:"outlet_id"`
	Delta    pgtype.Numeric `json:"delta"`
}

func (q *Queries) AdjustInventoryOnHand(ctx context.Context, arg AdjustInventoryOnHandParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, adjustInventoryOnHand, arg.ID, arg.OutletID, arg.Delta)
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Sku,
		&i.Category,
		&i.ItemType,
		&i.Unit,
		&i.UnitCost,
		&i.ParLevel,
		&i.OnHand,
		&i.Locations,
		&i.LastCountedAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const countActiveInventoryItems = `-- name: CountActiveInventoryItems :one
SELECT COUNT(*) FROM inventory_items
WHERE outlet_id = $1 AND is_active = true
`

func (q *Queries) CountActiveInventoryItems(ctx context.Context, outletID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveInventoryItems, outletID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countLowStockItems = `-- name: CountLowStockItems :one
SELECT COUNT(*) FROM inventory_items
WHERE outlet_id = $1 AND is_active = true AND on_hand < par_level
`

func (q *Queries) CountLowStockItems(ctx context.Context, outletID uuid.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countLowStockItems, outletID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createInventoryItem = `-- name: CreateInventoryItem :one
INSERT INTO inventory_items (outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at
`

type CreateInventoryItemParams struct {
	OutletID  uuid.UUID      `json:"outlet_id"`
	Name      string         `json:"name"`
	Sku       string         `json:"sku"`
	Category  string         `json:"category"`
	ItemType  string         `json:"item_type"`
	Unit      string         `json:"unit"`
	UnitCost  pgtype.Numeric `json:"unit_cost"`
	ParLevel  pgtype.Numeric `json:"par_level"`
	OnHand    pgtype.Numeric `json:"on_hand"`
	Locations []string       `json:"locations"`
}

func (q *Queries) CreateInventoryItem(ctx context.Context, arg CreateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, createInventoryItem,
		arg.OutletID,
		arg.Name,
		arg.Sku,
		arg.Category,
		arg.ItemType,
		arg.Unit,
		arg.UnitCost,
		arg.ParLevel,
		arg.OnHand,
		arg.Locations,
	)
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Sku,
		&i.Category,
		&i.ItemType,
		&i.Unit,
		&i.UnitCost,
		&i.ParLevel,
		&i.OnHand,
		&i.Locations,
		&i.LastCountedAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getInventoryItem = `-- name: GetInventoryItem :one
SELECT id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at FROM inventory_items
WHERE id = $1 AND outlet_id = $2 AND is_active = true
`

type GetInventoryItemParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetInventoryItem(ctx context.Context, arg GetInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, getInventoryItem, arg.ID, arg.OutletID)
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Sku,
		&i.Category,
		&i.ItemType,
		&i.Unit,
		&i.UnitCost,
		&i.ParLevel,
		&i.OnHand,
		&i.Locations,
		&i.LastCountedAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getInventoryItemForUpdate = `-- name: GetInventoryItemForUpdate :one
SELECT id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at FROM inventory_items
WHERE id = $1 AND outlet_id = $2 AND is_active = true
FOR UPDATE
`

type GetInventoryItemForUpdateParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetInventoryItemForUpdate(ctx context.Context, arg GetInventoryItemForUpdateParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, getInventoryItemForUpdate, arg.ID, arg.OutletID)
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Sku,
		&i.Category,
		&i.ItemType,
		&i.Unit,
		&i.UnitCost,
		&i.ParLevel,
		&i.OnHand,
		&i.Locations,
		&i.LastCountedAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listInventoryCategories = `-- name: ListInventoryCategories :many
SELECT DISTINCT category FROM inventory_items
WHERE outlet_id = $1 AND is_active = true
ORDER BY category
`

func (q *Queries) ListInventoryCategories(ctx context.Context, outletID uuid.UUID) ([]string, error) {
	rows, err := q.db.Query(ctx, listInventoryCategories, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []string{}
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listInventoryItems = `-- name: ListInventoryItems :many
SELECT id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at FROM inventory_items
WHERE outlet_id = $1 AND is_active = true
  AND ($2::text IS NULL OR category = $2::text)
  AND ($3::text IS NULL OR item_type = $3::text)
ORDER BY name
`

type ListInventoryItemsParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Category pgtype.Text `json:"category"`
	ItemType pgtype.Text `json:"item_type"`
}

func (q *Queries) ListInventoryItems(ctx context.Context, arg ListInventoryItemsParams) ([]InventoryItem, error) {
	rows, err := q.db.Query(ctx, listInventoryItems, arg.OutletID, arg.Category, arg.ItemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []InventoryItem{}
	for rows.Next() {
		var i InventoryItem
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Name,
			&i.Sku,
			&i.Category,
			&i.ItemType,
			&i.Unit,
			&i.UnitCost,
			&i.ParLevel,
			&i.OnHand,
			&i.Locations,
			&i.LastCountedAt,
			&i.IsActive,
			&i.CreatedAt,
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

const setInventoryOnHand = `-- name: SetInventoryOnHand :one
UPDATE inventory_items SET on_hand = $3, last_counted_at = $4, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at
`

type SetInventoryOnHandParams struct {
	ID            uuid.UUID      `json:"id"`
	OutletID      uuid.UUID      `json:"outlet_id"`
	OnHand        pgtype.Numeric `json:"on_hand"`
	LastCountedAt pgtype.Date    `json:"last_counted_at"`
}

func (q *Queries) SetInventoryOnHand(ctx context.Context, arg SetInventoryOnHandParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, setInventoryOnHand, arg.ID, arg.OutletID, arg.OnHand, arg.LastCountedAt)
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Sku,
		&i.Category,
		&i.ItemType,
		&i.Unit,
		&i.UnitCost,
		&i.ParLevel,
		&i.OnHand,
		&i.Locations,
		&i.LastCountedAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const softDeleteInventoryItem = `-- name: SoftDeleteInventoryItem :one
UPDATE inventory_items SET is_active = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteInventoryItemParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) SoftDeleteInventoryItem(ctx context.Context, arg SoftDeleteInventoryItemParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteInventoryItem, arg.ID, arg.OutletID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const updateInventoryItem = `-- name: UpdateInventoryItem :one
UPDATE inventory_items
SET name = $3, sku = $4, category = $5, item_type = $6, unit = $7,
    unit_cost = $8, par_level = $9, locations = $10, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active = true
RETURNING id, outlet_id, name, sku, category, item_type, unit, unit_cost, par_level, on_hand, locations, last_counted_at, is_active, created_at, updated_at
`

type UpdateInventoryItemParams struct {
	ID        uuid.UUID      `json:"id"`
	OutletID  uuid.UUID      `json:"outlet_id"`
	Name      string         `json:"name"`
	Sku       string         `json:"sku"`
	Category  string         `json:"category"`
	ItemType  string         `json:"item_type"`
	Unit      string         `json:"unit"`
	UnitCost  pgtype.Numeric `json:"unit_cost"`
	ParLevel  pgtype.Numeric `json:"par_level"`
	Locations []string       `json:"locations"`
}

func (q *Queries) UpdateInventoryItem(ctx context.Context, arg UpdateInventoryItemParams) (InventoryItem, error) {
	row := q.db.QueryRow(ctx, updateInventoryItem,
		arg.ID,
		arg.OutletID,
		arg.Name,
		arg.Sku,
		arg.Category,
		arg.ItemType,
		arg.Unit,
		arg.UnitCost,
		arg.ParLevel,
		arg.Locations,
	)
	var i InventoryItem
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.Sku,
		&i.Category,
		&i.ItemType,
		&i.Unit,
		&i.UnitCost,
		&i.ParLevel,
		&i.OnHand,
		&i.Locations,
		&i.LastCountedAt,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
