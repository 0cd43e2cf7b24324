package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createVendor = `-- name: CreateVendor :one
INSERT INTO vendors (outlet_id, code, name, contact_name, email, phone)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, outlet_id, code, name, contact_name, email, phone, status, created_at, updated_at
`

type CreateVendorParams struct {
	OutletID    uuid.UUID   `json:"outlet_id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	ContactName pgtype.Text `json:"contact_name"`
	Email       pgtype.Text `json:"email"`
	Phone       pgtype.Text `json:"phone"`
}

func (q *Queries) CreateVendor(ctx context.Context, arg CreateVendorParams) (Vendor, error) {
	row := q.db.QueryRow(ctx, createVendor,
		arg.OutletID,
		arg.Code,
		arg.Name,
		arg.ContactName,
		arg.Email,
		arg.Phone,
	)
	var i Vendor
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.ContactName,
		&i.Email,
		&i.Phone,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createVendorProduct = `-- name: CreateVendorProduct :one
INSERT INTO vendor_products (vendor_id, inventory_item_id, name, sku, unit, price)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, vendor_id, inventory_item_id, name, sku, unit, price, created_at
`

type CreateVendorProductParams struct {
	VendorID        uuid.UUID      `json:"vendor_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Name            string         `json:"name"`
	Sku             string         `json:"sku"`
	Unit            string         `json:"unit"`
	Price           pgtype.Numeric `json:"price"`
}

func (q *Queries) CreateVendorProduct(ctx context.Context, arg CreateVendorProductParams) (VendorProduct, error) {
	row := q.db.QueryRow(ctx, createVendorProduct,
		arg.VendorID,
		arg.InventoryItemID,
		arg.Name,
		arg.Sku,
		arg.Unit,
		arg.Price,
	)
	var i VendorProduct
	err := row.Scan(
		&i.ID,
		&i.VendorID,
		&i.InventoryItemID,
		&i.Name,
		&i.Sku,
		&i.Unit,
		&i.Price,
		&i.CreatedAt,
	)
	return i, err
}

const getNextVendorNumber = `-- name: GetNextVendorNumber :one
SELECT (COALESCE(COUNT(*), 0) + 1)::int4 AS next_number FROM vendors
WHERE outlet_id = $1
`

func (q *Queries) GetNextVendorNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextVendorNumber, outletID)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const getVendor = `-- name: GetVendor :one
SELECT id, outlet_id, code, name, contact_name, email, phone, status, created_at, updated_at FROM vendors
WHERE id = $1 AND outlet_id = $2
`

type GetVendorParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetVendor(ctx context.Context, arg GetVendorParams) (Vendor, error) {
	row := q.db.QueryRow(ctx, getVendor, arg.ID, arg.OutletID)
	var i Vendor
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.ContactName,
		&i.Email,
		&i.Phone,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getVendorProduct = `-- name: GetVendorProduct :one
SELECT id, vendor_id, inventory_item_id, name, sku, unit, price, created_at FROM vendor_products
WHERE id = $1 AND vendor_id = $2
`

type GetVendorProductParams struct {
	ID       uuid.UUID `json:"id"`
	VendorID uuid.UUID `json:"vendor_id"`
}

func (q *Queries) GetVendorProduct(ctx context.Context, arg GetVendorProductParams) (VendorProduct, error) {
	row := q.db.QueryRow(ctx, getVendorProduct, arg.ID, arg.VendorID)
	var i VendorProduct
	err := row.Scan(
		&i.ID,
		&i.VendorID,
		&i.InventoryItemID,
		&i.Name,
		&i.Sku,
		&i.Unit,
		&i.Price,
		&i.CreatedAt,
	)
	return i, err
}

const listVendorProducts = `-- name: ListVendorProducts :many
SELECT id, vendor_id, inventory_item_id, name, sku, unit, price, created_at FROM vendor_products
WHERE vendor_id = $1
ORDER BY name
`

func (q *Queries) ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]VendorProduct, error) {
	rows, err := q.db.Query(ctx, listVendorProducts, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []VendorProduct{}
	for rows.Next() {
		var i VendorProduct
		if err := rows.Scan(
			&i.ID,
			&i.VendorID,
			&i.InventoryItemID,
			&i.Name,
			&i.Sku,
			&i.Unit,
			&i.Price,
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

const listVendors = `-- name: ListVendors :many
SELECT id, outlet_id, code, name, contact_name, email, phone, status, created_at, updated_at FROM vendors
WHERE outlet_id = $1
  AND ($2::text IS NULL OR status = $2::text)
  AND ($3::text IS NULL OR name ILIKE '%' || $3::text || '%' OR code ILIKE '%' || $3::text || '%')
ORDER BY name
`

type ListVendorsParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Status   pgtype.Text `json:"status"`
	Search   pgtype.Text `json:"search"`
}

func (q *Queries) ListVendors(ctx context.Context, arg ListVendorsParams) ([]Vendor, error) {
	rows, err := q.db.Query(ctx, listVendors, arg.OutletID, arg.Status, arg.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Vendor{}
	for rows.Next() {
		var i Vendor
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Code,
			&i.Name,
			&i.ContactName,
			&i.Email,
			&i.Phone,
			&i.Status,
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

const updateVendor = `-- name: UpdateVendor :one
UPDATE vendors SET name = $3, contact_name = $4, email = $5, phone = $6, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, code, name, contact_name, email, phone, status, created_at, updated_at
`

type UpdateVendorParams struct {
	ID          uuid.UUID   `json:"id"`
	OutletID    uuid.UUID   `json:"outlet_id"`
	Name        string      `json:"name"`
	ContactName pgtype.Text `json:"contact_name"`
	Email       pgtype.Text `json:"email"`
	Phone       pgtype.Text `json:"phone"`
}

func (q *Queries) UpdateVendor(ctx context.Context, arg UpdateVendorParams) (Vendor, error) {
	row := q.db.QueryRow(ctx, updateVendor,
		arg.ID,
		arg.OutletID,
		arg.Name,
		arg.ContactName,
		arg.Email,
		arg.Phone,
	)
	var i Vendor
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.ContactName,
		&i.Email,
		&i.Phone,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateVendorProduct = `-- name: UpdateVendorProduct :one
UPDATE vendor_products SET inventory_item_id = $3, name = $4, sku = $5, unit = $6, price = $7
WHERE id = $1 AND vendor_id = $2
RETURNING id, vendor_id, inventory_item_id, name, sku, unit, price, created_at
`

type UpdateVendorProductParams struct {
	ID              uuid.UUID      `json:"id"`
	VendorID        uuid.UUID      `json:"vendor_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Name            string         `json:"name"`
	Sku             string         `json:"sku"`
	Unit            string         `json:"unit"`
	Price           pgtype.Numeric `json:"price"`
}

func (q *Queries) UpdateVendorProduct(ctx context.Context, arg UpdateVendorProductParams) (VendorProduct, error) {
	row := q.db.QueryRow(ctx, updateVendorProduct,
		arg.ID,
		arg.VendorID,
		arg.InventoryItemID,
		arg.Name,
		arg.Sku,
		arg.Unit,
		arg.Price,
	)
	var i VendorProduct
	err := row.Scan(
		&i.ID,
		&i.VendorID,
		&i.InventoryItemID,
		&i.Name,
		&i.Sku,
		&i.Unit,
		&i.Price,
		&i.CreatedAt,
	)
	return i, err
}

const updateVendorStatus = `-- name: UpdateVendorStatus :one
UPDATE vendors SET status = $3, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, code, name, contact_name, email, phone, status, created_at, updated_at
`

type UpdateVendorStatusParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
	Status   string    `json:"status"`
}

func (q *Queries) UpdateVendorStatus(ctx context.Context, arg UpdateVendorStatusParams) (Vendor, error) {
	row := q.db.QueryRow(ctx, updateVendorStatus, arg.ID, arg.OutletID, arg.Status)
	var i Vendor
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.ContactName,
		&i.Email,
		&i.Phone,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
