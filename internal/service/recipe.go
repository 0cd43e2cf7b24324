package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

const recipeCodeConstraint = "recipes_outlet_id_code_key"

var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrRecipeNameRequired = errors.New("name is required")
	ErrInvalidRecipeKind  = errors.New("kind must be MENU or PREP")
	ErrInvalidYield       = errors.New("yield_amount must be >= 0")
	ErrInvalidMenuPrice   = errors.New("menu_price must be >= 0")
	ErrInvalidUnit        = errors.New("invalid unit")
	ErrDuplicateRecipe    = errors.New("recipe code already exists")
	ErrFoodCostOutOfRange = errors.New("food cost percent out of range, check menu_price")
)

// RecipeStore defines the DB methods needed by the recipe service.
type RecipeStore interface {
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)

	GetNextRecipeNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateRecipe(ctx context.Context, arg database.CreateRecipeParams) (database.Recipe, error)
	GetRecipe(ctx context.Context, arg database.GetRecipeParams) (database.Recipe, error)
	UpdateRecipe(ctx context.Context, arg database.UpdateRecipeParams) (database.Recipe, error)
	UpdateRecipeCosts(ctx context.Context, arg database.UpdateRecipeCostsParams) (database.Recipe, error)

	CreateRecipeIngredient(ctx context.Context, arg database.CreateRecipeIngredientParams) (database.RecipeIngredient, error)
	ListRecipeIngredients(ctx context.Context, recipeID uuid.UUID) ([]database.RecipeIngredient, error)
	DeleteRecipeIngredients(ctx context.Context, recipeID uuid.UUID) error
	UpdateRecipeIngredientCost(ctx context.Context, arg database.UpdateRecipeIngredientCostParams) (database.RecipeIngredient, error)
}

type NewRecipeStore func(db database.DBTX) RecipeStore

// IngredientInput is one requested ingredient line. Name, unit and unit
// cost default from the linked inventory item.
type IngredientInput struct {
	InventoryItemID string
	Name            string
	Quantity        string
	Unit            string
	UnitCost        string
}

// RecipeRequest is the input for create, update and preview.
type RecipeRequest struct {
	OutletID     uuid.UUID
	Code         string // generated as RCP-NNN when empty; ignored on update
	Name         string
	Category     string
	Kind         string
	YieldAmount  string // defaults to 1
	YieldUnit    string
	MenuPrice    string // defaults to 0
	Instructions string
	Ingredients  []IngredientInput
}

// RecipeResult carries the stored recipe and its computed costing.
type RecipeResult struct {
	Recipe      database.Recipe
	Ingredients []database.RecipeIngredient
	Cost        costing.RecipeCost
}

type RecipeService struct {
	pool     TxBeginner
	newStore NewRecipeStore
}

func NewRecipeService(pool TxBeginner, newStore NewRecipeStore) *RecipeService {
	return &RecipeService{pool: pool, newStore: newStore}
}

type resolvedRecipe struct {
	kind        string
	yieldAmount decimal.Decimal
	menuPrice   decimal.Decimal
	ingredients []database.CreateRecipeIngredientParams
	cost        costing.RecipeCost
}

// Preview resolves and costs a recipe without writing anything.
func (s *RecipeService) Preview(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	r, err := resolveRecipe(ctx, s.newStore(tx), req)
	if err != nil {
		return nil, err
	}

	ingredients := make([]database.RecipeIngredient, len(r.ingredients))
	for i, p := range r.ingredients {
		ingredients[i] = database.RecipeIngredient{
			InventoryItemID: p.InventoryItemID,
			Name:            p.Name,
			Quantity:        p.Quantity,
			Unit:            p.Unit,
			UnitCost:        p.UnitCost,
			SortOrder:       p.SortOrder,
		}
	}
	return &RecipeResult{
		Recipe: database.Recipe{
			OutletID:        req.OutletID,
			Code:            req.Code,
			Name:            strings.TrimSpace(req.Name),
			Category:        req.Category,
			Kind:            r.kind,
			YieldAmount:     pgconv.Quantity(r.yieldAmount),
			YieldUnit:       req.YieldUnit,
			MenuPrice:       pgconv.Numeric(r.menuPrice),
			Instructions:    pgconv.Text(req.Instructions),
			TotalCost:       pgconv.Numeric(r.cost.TotalCost),
			CostPerPortion:  pgconv.NumericFixed(r.cost.CostPerPortion, 4),
			FoodCostPercent: pgconv.Numeric(r.cost.FoodCostPercent),
			IsActive:        true,
		},
		Ingredients: ingredients,
		Cost:        r.cost,
	}, nil
}

// Create stores a recipe with its computed costs. Generated codes retry
// on conflict; a supplied code that exists is rejected.
func (s *RecipeService) Create(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	return withNumberRetry(recipeCodeConstraint, func() (*RecipeResult, error) {
		res, err := s.createTx(ctx, req)
		if req.Code != "" && isUniqueViolation(err, recipeCodeConstraint) {
			return nil, ErrDuplicateRecipe
		}
		return res, err
	})
}

func (s *RecipeService) createTx(ctx context.Context, req RecipeRequest) (*RecipeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	r, err := resolveRecipe(ctx, store, req)
	if err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		next, err := store.GetNextRecipeNumber(ctx, req.OutletID)
		if err != nil {
			return nil, fmt.Errorf("next recipe code: %w", err)
		}
		code = fmt.Sprintf("RCP-%03d", next)
	}

	recipe, err := store.CreateRecipe(ctx, database.CreateRecipeParams{
		OutletID:        req.OutletID,
		Code:            code,
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		Kind:            r.kind,
		YieldAmount:     pgconv.Quantity(r.yieldAmount),
		YieldUnit:       req.YieldUnit,
		MenuPrice:       pgconv.Numeric(r.menuPrice),
		Instructions:    pgconv.Text(req.Instructions),
		TotalCost:       pgconv.Numeric(r.cost.TotalCost),
		CostPerPortion:  pgconv.NumericFixed(r.cost.CostPerPortion, 4),
		FoodCostPercent: pgconv.Numeric(r.cost.FoodCostPercent),
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	ingredients, err := insertIngredients(ctx, store, recipe.ID, r.ingredients)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &RecipeResult{Recipe: recipe, Ingredients: ingredients, Cost: r.cost}, nil
}

// Update replaces a recipe's fields and ingredient lines and recomputes
// its stored costs.
func (s *RecipeService) Update(ctx context.Context, recipeID uuid.UUID, req RecipeRequest) (*RecipeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if _, err := getRecipe(ctx, store, req.OutletID, recipeID); err != nil {
		return nil, err
	}

	r, err := resolveRecipe(ctx, store, req)
	if err != nil {
		return nil, err
	}

	recipe, err := store.UpdateRecipe(ctx, database.UpdateRecipeParams{
		ID:              recipeID,
		OutletID:        req.OutletID,
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		Kind:            r.kind,
		YieldAmount:     pgconv.Quantity(r.yieldAmount),
		YieldUnit:       req.YieldUnit,
		MenuPrice:       pgconv.Numeric(r.menuPrice),
		Instructions:    pgconv.Text(req.Instructions),
		TotalCost:       pgconv.Numeric(r.cost.TotalCost),
		CostPerPortion:  pgconv.NumericFixed(r.cost.CostPerPortion, 4),
		FoodCostPercent: pgconv.Numeric(r.cost.FoodCostPercent),
	})
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if err := store.DeleteRecipeIngredients(ctx, recipeID); err != nil {
		return nil, fmt.Errorf("delete ingredients: %w", err)
	}
	ingredients, err := insertIngredients(ctx, store, recipeID, r.ingredients)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &RecipeResult{Recipe: recipe, Ingredients: ingredients, Cost: r.cost}, nil
}

// Recost refreshes linked ingredient unit costs from the inventory and
// stores the recomputed totals.
func (s *RecipeService) Recost(ctx context.Context, outletID, recipeID uuid.UUID) (*RecipeResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	recipe, err := getRecipe(ctx, store, outletID, recipeID)
	if err != nil {
		return nil, err
	}
	ingredients, err := store.ListRecipeIngredients(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}

	for i, ing := range ingredients {
		if !ing.InventoryItemID.Valid {
			continue
		}
		item, err := store.GetInventoryItem(ctx, database.GetInventoryItemParams{
			ID:       uuid.UUID(ing.InventoryItemID.Bytes),
			OutletID: outletID,
		})
		if err != nil {
			// Deactivated items keep their last known cost.
			if errors.Is(err, pgx.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("get inventory item: %w", err)
		}
		if pgconv.Decimal(item.UnitCost).Equal(pgconv.Decimal(ing.UnitCost)) {
			continue
		}
		updated, err := store.UpdateRecipeIngredientCost(ctx, database.UpdateRecipeIngredientCostParams{
			ID:       ing.ID,
			RecipeID: recipeID,
			UnitCost: pgconv.UnitCost(pgconv.Decimal(item.UnitCost)),
		})
		if err != nil {
			return nil, fmt.Errorf("update ingredient cost: %w", err)
		}
		ingredients[i] = updated
	}

	cost := CostRecipe(recipe, ingredients)
	if err := checkFoodCost(cost); err != nil {
		return nil, err
	}
	recipe, err = store.UpdateRecipeCosts(ctx, database.UpdateRecipeCostsParams{
		ID:              recipeID,
		OutletID:        outletID,
		TotalCost:       pgconv.Numeric(cost.TotalCost),
		CostPerPortion:  pgconv.NumericFixed(cost.CostPerPortion, 4),
		FoodCostPercent: pgconv.Numeric(cost.FoodCostPercent),
	})
	if err != nil {
		return nil, fmt.Errorf("update recipe costs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &RecipeResult{Recipe: recipe, Ingredients: ingredients, Cost: cost}, nil
}

// CostRecipe recomputes costing for a stored recipe and its lines.
func CostRecipe(recipe database.Recipe, ingredients []database.RecipeIngredient) costing.RecipeCost {
	in := costing.RecipeInput{
		Ingredients: make([]costing.Ingredient, len(ingredients)),
		YieldAmount: pgconv.Decimal(recipe.YieldAmount),
		MenuPrice:   pgconv.Decimal(recipe.MenuPrice),
	}
	for i, ing := range ingredients {
		in.Ingredients[i] = costing.Ingredient{
			Quantity: pgconv.Decimal(ing.Quantity),
			UnitCost: pgconv.Decimal(ing.UnitCost),
		}
	}
	return costing.Recipe(in)
}

// --- Helpers ---

func getRecipe(ctx context.Context, store RecipeStore, outletID, recipeID uuid.UUID) (database.Recipe, error) {
	recipe, err := store.GetRecipe(ctx, database.GetRecipeParams{ID: recipeID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Recipe{}, ErrRecipeNotFound
		}
		return database.Recipe{}, fmt.Errorf("get recipe: %w", err)
	}
	return recipe, nil
}

func resolveRecipe(ctx context.Context, store RecipeStore, req RecipeRequest) (*resolvedRecipe, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrRecipeNameRequired
	}
	kind := req.Kind
	if kind == "" {
		kind = enum.RecipeKindMenu
	}
	if kind != enum.RecipeKindMenu && kind != enum.RecipeKindPrep {
		return nil, ErrInvalidRecipeKind
	}

	yield := decimal.NewFromInt(1)
	if req.YieldAmount != "" {
		y, err := parseNonNegative(req.YieldAmount, pgconv.QuantityPlaces, ErrInvalidYield)
		if err != nil {
			return nil, err
		}
		yield = y
	}
	price := decimal.Zero
	if req.MenuPrice != "" {
		p, err := parseNonNegative(req.MenuPrice, pgconv.MoneyPlaces, ErrInvalidMenuPrice)
		if err != nil {
			return nil, err
		}
		price = p
	}

	out := &resolvedRecipe{
		kind:        kind,
		yieldAmount: yield,
		menuPrice:   price,
		ingredients: make([]database.CreateRecipeIngredientParams, len(req.Ingredients)),
	}
	calc := costing.RecipeInput{
		Ingredients: make([]costing.Ingredient, len(req.Ingredients)),
		YieldAmount: yield,
		MenuPrice:   price,
	}

	for i, in := range req.Ingredients {
		qty, err := parseNonNegative(in.Quantity, pgconv.QuantityPlaces, ErrNegativeQuantity)
		if err != nil {
			return nil, lineErr(i, err)
		}

		name, unit, costStr := in.Name, in.Unit, in.UnitCost
		var itemID pgtype.UUID
		if in.InventoryItemID != "" {
			id, err := uuid.Parse(in.InventoryItemID)
			if err != nil {
				return nil, lineErr(i, ErrInventoryItemNotFound)
			}
			item, err := store.GetInventoryItem(ctx, database.GetInventoryItemParams{ID: id, OutletID: req.OutletID})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, lineErr(i, ErrInventoryItemNotFound)
				}
				return nil, fmt.Errorf("get inventory item: %w", err)
			}
			itemID = pgconv.UUID(item.ID)
			name = firstNonEmpty(name, item.Name)
			unit = firstNonEmpty(unit, item.Unit)
			costStr = firstNonEmpty(costStr, pgconv.StringFixed(item.UnitCost, 4))
		}

		if strings.TrimSpace(name) == "" {
			return nil, lineErr(i, ErrLineNameRequired)
		}
		if !enum.IsRecipeUnit(unit) {
			return nil, lineErr(i, ErrInvalidUnit)
		}
		cost := decimal.Zero
		if costStr != "" {
			if cost, err = parseNonNegative(costStr, pgconv.UnitCostPlaces, ErrInvalidCost); err != nil {
				return nil, lineErr(i, err)
			}
		}

		calc.Ingredients[i] = costing.Ingredient{Quantity: qty, UnitCost: cost}
		out.ingredients[i] = database.CreateRecipeIngredientParams{
			InventoryItemID: itemID,
			Name:            name,
			Quantity:        pgconv.Quantity(qty),
			Unit:            unit,
			UnitCost:        pgconv.UnitCost(cost),
			SortOrder:       int32(i),
		}
	}

	out.cost = costing.Recipe(calc)
	if err := checkFoodCost(out.cost); err != nil {
		return nil, err
	}
	return out, nil
}

// maxFoodCostPercent is the largest value recipes.food_cost_percent holds.
var maxFoodCostPercent = decimal.RequireFromString("9999999999.99")

func checkFoodCost(c costing.RecipeCost) error {
	if c.FoodCostPercent.Round(pgconv.MoneyPlaces).GreaterThan(maxFoodCostPercent) {
		return ErrFoodCostOutOfRange
	}
	return nil
}

func insertIngredients(ctx context.Context, store RecipeStore, recipeID uuid.UUID, params []database.CreateRecipeIngredientParams) ([]database.RecipeIngredient, error) {
	out := make([]database.RecipeIngredient, 0, len(params))
	for _, p := range params {
		p.RecipeID = recipeID
		ing, err := store.CreateRecipeIngredient(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("create ingredient: %w", err)
		}
		out = append(out, ing)
	}
	return out, nil
}
