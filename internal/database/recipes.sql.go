package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const countHighCostRecipes = `-- name: CountHighCostRecipes :one
SELECT COUNT(*) FROM recipes
WHERE outlet_id = $1 AND is_active = true AND kind = 'MENU'
  AND menu_price > 0 AND food_cost_percent > $2
`

type CountHighCostRecipesParams struct {
	OutletID  uuid.UUID      `json:"outlet_id"`
	Threshold pgtype.Numeric `json:"threshold"`
}

func (q *Queries) CountHighCostRecipes(ctx context.Context, arg CountHighCostRecipesParams) (int64, error) {
	row := q.db.QueryRow(ctx, countHighCostRecipes, arg.OutletID, arg.Threshold)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createRecipe = `-- name: CreateRecipe :one
INSERT INTO recipes (outlet_id, code, name, category, kind, yield_amount, yield_unit, menu_price, instructions, total_cost, cost_per_portion, food_cost_percent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING id, outlet_id, code, name, category, kind, yield_amount, yield_unit, menu_price, instructions, total_cost, cost_per_portion, food_cost_percent, is_active, created_at, updated_at
`

type CreateRecipeParams struct {
	OutletID        uuid.UUID      `json:"outlet_id"`
	Code            string         `json:"code"`
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Kind            string         `json:"kind"`
	YieldAmount     pgtype.Numeric `json:"yield_amount"`
	YieldUnit       string         `json:"yield_unit"`
	MenuPrice       pgtype.Numeric `json:"menu_price"`
	Instructions    pgtype.Text    `json:"instructions"`
	TotalCost       pgtype.Numeric `json:"total_cost"`
	CostPerPortion  pgtype.Numeric `json:"cost_per_portion"`
	FoodCostPercent pgtype.Numeric `json:"food_cost_percent"`
}

func (q *Queries) CreateRecipe(ctx context.Context, arg CreateRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, createRecipe,
		arg.OutletID,
		arg.Code,
		arg.Name,
		arg.Category,
		arg.Kind,
		arg.YieldAmount,
		arg.YieldUnit,
		arg.MenuPrice,
		arg.Instructions,
		arg.TotalCost,
		arg.CostPerPortion,
		arg.FoodCostPercent,
	)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.Category,
		&i.Kind,
		&i.YieldAmount,
		&i.YieldUnit,
		&i.MenuPrice,
		&i.Instructions,
		&i.TotalCost,
		&i.CostPerPortion,
		&i.FoodCostPercent,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createRecipeIngredient = `-- name: CreateRecipeIngredient :one
INSERT INTO recipe_ingredients (recipe_id, inventory_item_id, name, quantity, unit, unit_cost, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, recipe_id, inventory_item_id, name, quantity, unit, unit_cost, sort_order
`

type CreateRecipeIngredientParams struct {
	RecipeID        uuid.UUID      `json:"recipe_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Name            string         `json:"name"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	UnitCost        pgtype.Numeric `json:"unit_cost"`
	SortOrder       int32          `json:"sort_order"`
}

func (q *Queries) CreateRecipeIngredient(ctx context.Context, arg CreateRecipeIngredientParams) (RecipeIngredient, error) {
	row := q.db.QueryRow(ctx, createRecipeIngredient,
		arg.RecipeID,
		arg.InventoryItemID,
		arg.Name,
		arg.Quantity,
		arg.Unit,
		arg.UnitCost,
		arg.SortOrder,
	)
	var i RecipeIngredient
	err := row.Scan(
		&i.ID,
		&i.RecipeID,
		&i.InventoryItemID,
		&i.Name,
		&i.Quantity,
		&i.Unit,
		&i.UnitCost,
		&i.SortOrder,
	)
	return i, err
}

const deleteRecipeIngredients = `-- name: DeleteRecipeIngredients :exec
DELETE FROM recipe_ingredients
WHERE recipe_id = $1
`

func (q *Queries) DeleteRecipeIngredients(ctx context.Context, recipeID uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteRecipeIngredients, recipeID)
	return err
}

const getNextRecipeNumber = `-- name: GetNextRecipeNumber :one
SELECT (COALESCE(MAX(CAST(substring(code FROM '^RCP-([0-9]+)$') AS INTEGER)), 0) + 1)::int4 AS next_number
FROM recipes
WHERE outlet_id = $1
`

func (q *Queries) GetNextRecipeNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	row := q.db.QueryRow(ctx, getNextRecipeNumber, outletID)
	var next_number int32
	err := row.Scan(&next_number)
	return next_number, err
}

const getRecipe = `-- name: GetRecipe :one
SELECT id, outlet_id, code, name, category, kind, yield_amount, yield_unit, menu_price, instructions, total_cost, cost_per_portion, food_cost_percent, is_active, created_at, updated_at FROM recipes
WHERE id = $1 AND outlet_id = $2 AND is_active = true
`

type GetRecipeParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetRecipe(ctx context.Context, arg GetRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, getRecipe, arg.ID, arg.OutletID)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.Category,
		&i.Kind,
		&i.YieldAmount,
		&i.YieldUnit,
		&i.MenuPrice,
		&i.Instructions,
		&i.TotalCost,
		&i.CostPerPortion,
		&i.FoodCostPercent,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listRecipeIngredients = `-- name: ListRecipeIngredients :many
SELECT id, recipe_id, inventory_item_id, name, quantity, unit, unit_cost, sort_order FROM recipe_ingredients
WHERE recipe_id = $1
ORDER BY sort_order, id
`

func (q *Queries) ListRecipeIngredients(ctx context.Context, recipeID uuid.UUID) ([]RecipeIngredient, error) {
	rows, err := q.db.Query(ctx, listRecipeIngredients, recipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []RecipeIngredient{}
	for rows.Next() {
		var i RecipeIngredient
		if err := rows.Scan(
			&i.ID,
			&i.RecipeID,
			&i.InventoryItemID,
			&i.Name,
			&i.Quantity,
			&i.Unit,
			&i.UnitCost,
			&i.SortOrder,
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

const listRecipes = `-- name: ListRecipes :many
SELECT id, outlet_id, code, name, category, kind, yield_amount, yield_unit, menu_price, instructions, total_cost, cost_per_portion, food_cost_percent, is_active, created_at, updated_at FROM recipes
WHERE outlet_id = $1 AND is_active = true
  AND ($2::text IS NULL OR kind = $2::text)
ORDER BY name
`

type ListRecipesParams struct {
	OutletID uuid.UUID   `json:"outlet_id"`
	Kind     pgtype.Text `json:"kind"`
}

func (q *Queries) ListRecipes(ctx context.Context, arg ListRecipesParams) ([]Recipe, error) {
	rows, err := q.db.Query(ctx, listRecipes, arg.OutletID, arg.Kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Recipe{}
	for rows.Next() {
		var i Recipe
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Code,
			&i.Name,
			&i.Category,
			&i.Kind,
			&i.YieldAmount,
			&i.YieldUnit,
			&i.MenuPrice,
			&i.Instructions,
			&i.TotalCost,
			&i.CostPerPortion,
			&i.FoodCostPercent,
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

const softDeleteRecipe = `-- name: SoftDeleteRecipe :one
UPDATE recipes SET is_active = false, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active = true
RETURNING id
`

type SoftDeleteRecipeParams struct {
	ID       uuid.UUID `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) SoftDeleteRecipe(ctx context.Context, arg SoftDeleteRecipeParams) (uuid.UUID, error) {
	row := q.db.QueryRow(ctx, softDeleteRecipe, arg.ID, arg.OutletID)
	var id uuid.UUID
	err := row.Scan(&id)
	return id, err
}

const updateRecipe = `-- name: UpdateRecipe :one
UPDATE recipes
SET name = $3, category = $4, kind = $5, yield_amount = $6, yield_unit = $7, menu_price = $8,
    instructions = $9, total_cost = $10, cost_per_portion = $11, food_cost_percent = $12, updated_at = now()
WHERE id = $1 AND outlet_id = $2 AND is_active = true
RETURNING id, outlet_id, code, name, category, kind, yield_amount, yield_unit, menu_price, instructions, total_cost, cost_per_portion, food_cost_percent, is_active, created_at, updated_at
`

type UpdateRecipeParams struct {
	ID              uuid.UUID      `json:"id"`
	OutletID        uuid.UUID      `json:"outlet_id"`
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Kind            string         `json:"kind"`
	YieldAmount     pgtype.Numeric `json:"yield_amount"`
	YieldUnit       string         `json:"yield_unit"`
	MenuPrice       pgtype.Numeric `json:"menu_price"`
	Instructions    pgtype.Text    `json:"instructions"`
	TotalCost       pgtype.Numeric `json:"total_cost"`
	CostPerPortion  pgtype.Numeric `json:"cost_per_portion"`
	FoodCostPercent pgtype.Numeric `json:"food_cost_percent"`
}

func (q *Queries) UpdateRecipe(ctx context.Context, arg UpdateRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, updateRecipe,
		arg.ID,
		arg.OutletID,
		arg.Name,
		arg.Category,
		arg.Kind,
		arg.YieldAmount,
		arg.YieldUnit,
		arg.MenuPrice,
		arg.Instructions,
		arg.TotalCost,
		arg.CostPerPortion,
		arg.FoodCostPercent,
	)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.Category,
		&i.Kind,
		&i.YieldAmount,
		&i.YieldUnit,
		&i.MenuPrice,
		&i.Instructions,
		&i.TotalCost,
		&i.CostPerPortion,
		&i.FoodCostPercent,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateRecipeCosts = `-- name: UpdateRecipeCosts :one
UPDATE recipes SET total_cost = $3, cost_per_portion = $4, food_cost_percent = $5, updated_at = now()
WHERE id = $1 AND outlet_id = $2
RETURNING id, outlet_id, code, name, category, kind, yield_amount, yield_unit, menu_price, instructions, total_cost, cost_per_portion, food_cost_percent, is_active, created_at, updated_at
`

type UpdateRecipeCostsParams struct {
	ID              uuid.UUID      `json:"id"`
	OutletID        uuid.UUID      `json:"outlet_id"`
	TotalCost       pgtype.Numeric `json:"total_cost"`
	CostPerPortion  pgtype.Numeric `json:"cost_per_portion"`
	FoodCostPercent pgtype.Numeric `json:"food_cost_percent"`
}

func (q *Queries) UpdateRecipeCosts(ctx context.Context, arg UpdateRecipeCostsParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, updateRecipeCosts,
		arg.ID,
		arg.OutletID,
		arg.TotalCost,
		arg.CostPerPortion,
		arg.FoodCostPercent,
	)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Code,
		&i.Name,
		&i.Category,
		&i.Kind,
		&i.YieldAmount,
		&i.YieldUnit,
		&i.MenuPrice,
		&i.Instructions,
		&i.TotalCost,
		&i.CostPerPortion,
		&i.FoodCostPercent,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateRecipeIngredientCost = `-- name: UpdateRecipeIngredientCost :one
UPDATE recipe_ingredients SET unit_cost = $3
WHERE id = $1 AND recipe_id = $2
RETURNING id, recipe_id, inventory_item_id, name, quantity, unit, unit_cost, sort_order
`

type UpdateRecipeIngredientCostParams struct {
	ID       uuid.UUID      `json:"id"`
	RecipeID uuid.UUID      `json:"recipe_id"`
	UnitCost pgtype.Numeric `json:"unit_cost"`
}

func (q *Queries) UpdateRecipeIngredientCost(ctx context.Context, arg UpdateRecipeIngredientCostParams) (RecipeIngredient, error) {
	row := q.db.QueryRow(ctx, updateRecipeIngredientCost, arg.ID, arg.RecipeID, arg.UnitCost)
	var i RecipeIngredient
	err := row.Scan(
		&i.ID,
		&i.RecipeID,
		&i.InventoryItemID,
		&i.Name,
		&i.Quantity,
		&i.Unit,
		&i.UnitCost,
		&i.SortOrder,
	)
	return i, err
}
