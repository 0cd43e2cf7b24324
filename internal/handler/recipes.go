package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/larder-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

// RecipeServicer defines the recipe writes that recompute costs.
// Satisfied by *service.RecipeService.
type RecipeServicer interface {
	Preview(ctx context.Context, req service.RecipeRequest) (*service.RecipeResult, error)
	Create(ctx context.Context, req service.RecipeRequest) (*service.RecipeResult, error)
	Update(ctx context.Context, recipeID uuid.UUID, req service.RecipeRequest) (*service.RecipeResult, error)
	Recost(ctx context.Context, outletID, recipeID uuid.UUID) (*service.RecipeResult, error)
}

// RecipeStore defines the read methods needed by recipe handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type RecipeStore interface {
	ListRecipes(ctx context.Context, arg database.ListRecipesParams) ([]database.Recipe, error)
	GetRecipe(ctx context.Context, arg database.GetRecipeParams) (database.Recipe, error)
	ListRecipeIngredients(ctx context.Context, recipeID uuid.UUID) ([]database.RecipeIngredient, error)
	SoftDeleteRecipe(ctx context.Context, arg database.SoftDeleteRecipeParams) (uuid.UUID, error)
}

// RecipeHandler handles recipe and menu item endpoints.
type RecipeHandler struct {
	svc   RecipeServicer
	store RecipeStore
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(svc RecipeServicer, store RecipeStore) *RecipeHandler {
	return &RecipeHandler{svc: svc, store: store}
}

// RegisterRoutes registers recipe endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/recipes
func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/overview", h.Overview)
	r.Post("/preview", h.Preview)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/recost", h.Recost)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type ingredientRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Name            string `json:"name"`
	Quantity        string `json:"quantity"`
	Unit            string `json:"unit"`
	UnitCost        string `json:"unit_cost"`
}

type recipeRequest struct {
	Code         string              `json:"code"`
	Name         string              `json:"name"`
	Category     string              `json:"category"`
	Kind         string              `json:"kind"`
	YieldAmount  string              `json:"yield_amount"`
	YieldUnit    string              `json:"yield_unit"`
	MenuPrice    string              `json:"menu_price"`
	Instructions string              `json:"instructions"`
	Ingredients  []ingredientRequest `json:"ingredients"`
}

type recipeResponse struct {
	ID                  *uuid.UUID           `json:"id,omitempty"`
	Code                string               `json:"code"`
	Name                string               `json:"name"`
	Category            string               `json:"category"`
	Kind                string               `json:"kind"`
	YieldAmount         string               `json:"yield_amount"`
	YieldUnit           string               `json:"yield_unit"`
	MenuPrice           string               `json:"menu_price"`
	Instructions        *string              `json:"instructions"`
	TotalCost           string               `json:"total_cost"`
	CostPerPortion      string               `json:"cost_per_portion"`
	FoodCostPercent     string               `json:"food_cost_percent"`
	Classification      string               `json:"classification"`
	ClassificationLabel string               `json:"classification_label"`
	Ingredients         []ingredientResponse `json:"ingredients,omitempty"`
}

type ingredientResponse struct {
	InventoryItemID *string `json:"inventory_item_id"`
	Name            string  `json:"name"`
	Quantity        string  `json:"quantity"`
	Unit            string  `json:"unit"`
	UnitCost        string  `json:"unit_cost"`
	LineCost        string  `json:"line_cost"`
}

type recipeOverviewResponse struct {
	MenuItems          int    `json:"menu_items"`
	PrepRecipes        int    `json:"prep_recipes"`
	AvgFoodCostPercent string `json:"avg_food_cost_percent"`
	HighCostItems      int    `json:"high_cost_items"`
}

func (req recipeRequest) toService(outletID uuid.UUID) service.RecipeRequest {
	out := service.RecipeRequest{
		OutletID:     outletID,
		Code:         req.Code,
		Name:         req.Name,
		Category:     req.Category,
		Kind:         req.Kind,
		YieldAmount:  req.YieldAmount,
		YieldUnit:    req.YieldUnit,
		MenuPrice:    req.MenuPrice,
		Instructions: req.Instructions,
		Ingredients:  make([]service.IngredientInput, len(req.Ingredients)),
	}
	for i, in := range req.Ingredients {
		out.Ingredients[i] = service.IngredientInput{
			InventoryItemID: in.InventoryItemID,
			Name:            in.Name,
			Quantity:        in.Quantity,
			Unit:            in.Unit,
			UnitCost:        in.UnitCost,
		}
	}
	return out
}

// recipeClass classifies the stored percentage. Recipes without a menu
// price are UNPRICED.
func recipeClass(r database.Recipe) costing.Classification {
	return costing.Classify(pgconv.Decimal(r.FoodCostPercent), pgconv.Decimal(r.MenuPrice).IsPositive())
}

func toRecipeResponse(r database.Recipe) recipeResponse {
	class := recipeClass(r)
	resp := recipeResponse{
		Code:                r.Code,
		Name:                r.Name,
		Category:            r.Category,
		Kind:                r.Kind,
		YieldAmount:         pgconv.StringFixed(r.YieldAmount, 3),
		YieldUnit:           r.YieldUnit,
		MenuPrice:           pgconv.String(r.MenuPrice),
		Instructions:        pgconv.TextPtr(r.Instructions),
		TotalCost:           pgconv.String(r.TotalCost),
		CostPerPortion:      pgconv.StringFixed(r.CostPerPortion, 4),
		FoodCostPercent:     pgconv.String(r.FoodCostPercent),
		Classification:      string(class),
		ClassificationLabel: class.Label(),
	}
	if r.ID != uuid.Nil {
		id := r.ID
		resp.ID = &id
	}
	return resp
}

func toRecipeResult(res *service.RecipeResult) recipeResponse {
	resp := toRecipeResponse(res.Recipe)
	resp.Classification = string(res.Cost.Classification)
	resp.ClassificationLabel = res.Cost.Classification.Label()
	resp.Ingredients = make([]ingredientResponse, len(res.Ingredients))
	for i, ing := range res.Ingredients {
		lineCost := decimal.Zero
		if i < len(res.Cost.LineCosts) {
			lineCost = res.Cost.LineCosts[i]
		}
		resp.Ingredients[i] = ingredientResponse{
			InventoryItemID: pgconv.UUIDPtr(ing.InventoryItemID),
			Name:            ing.Name,
			Quantity:        pgconv.StringFixed(ing.Quantity, 3),
			Unit:            ing.Unit,
			UnitCost:        pgconv.StringFixed(ing.UnitCost, 4),
			LineCost:        lineCost.StringFixed(2),
		}
	}
	return resp
}

// --- Handlers ---

// List handles GET /outlets/{oid}/recipes?kind=MENU|PREP
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind != "" && kind != enum.RecipeKindMenu && kind != enum.RecipeKindPrep {
		writeError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	recipes, err := h.store.ListRecipes(r.Context(), database.ListRecipesParams{
		OutletID: outletID,
		Kind:     pgconv.Text(kind),
	})
	if err != nil {
		internalError(w, "list recipes", err)
		return
	}

	resp := make([]recipeResponse, len(recipes))
	for i, rc := range recipes {
		resp[i] = toRecipeResponse(rc)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Overview handles GET /outlets/{oid}/recipes/overview. The average only
// covers menu items that carry a price.
func (h *RecipeHandler) Overview(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	recipes, err := h.store.ListRecipes(r.Context(), database.ListRecipesParams{OutletID: outletID})
	if err != nil {
		internalError(w, "recipe overview", err)
		return
	}

	var (
		resp   recipeOverviewResponse
		sum    = decimal.Zero
		priced int64
	)
	for _, rc := range recipes {
		if rc.Kind == enum.RecipeKindPrep {
			resp.PrepRecipes++
			continue
		}
		resp.MenuItems++
		class := recipeClass(rc)
		if class == costing.ClassUnpriced {
			continue
		}
		priced++
		sum = sum.Add(pgconv.Decimal(rc.FoodCostPercent))
		if class == costing.ClassHigh {
			resp.HighCostItems++
		}
	}
	avg := decimal.Zero
	if priced > 0 {
		avg = sum.Div(decimal.NewFromInt(priced))
	}
	resp.AvgFoodCostPercent = avg.StringFixed(2)
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /outlets/{oid}/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	recipeID, ok := urlUUID(w, r, "id", "recipe")
	if !ok {
		return
	}

	recipe, err := h.store.GetRecipe(r.Context(), database.GetRecipeParams{ID: recipeID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrRecipeNotFound.Error())
			return
		}
		internalError(w, "get recipe", err)
		return
	}
	ingredients, err := h.store.ListRecipeIngredients(r.Context(), recipe.ID)
	if err != nil {
		internalError(w, "list recipe ingredients", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecipeResult(&service.RecipeResult{
		Recipe:      recipe,
		Ingredients: ingredients,
		Cost:        service.CostRecipe(recipe, ingredients),
	}))
}

// Preview handles POST /outlets/{oid}/recipes/preview
func (h *RecipeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusOK, "preview recipe", func(req service.RecipeRequest) (*service.RecipeResult, error) {
		return h.svc.Preview(r.Context(), req)
	})
}

// Create handles POST /outlets/{oid}/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, http.StatusCreated, "create recipe", func(req service.RecipeRequest) (*service.RecipeResult, error) {
		return h.svc.Create(r.Context(), req)
	})
}

// Update handles PUT /outlets/{oid}/recipes/{id}
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipeID, ok := urlUUID(w, r, "id", "recipe")
	if !ok {
		return
	}
	h.write(w, r, http.StatusOK, "update recipe", func(req service.RecipeRequest) (*service.RecipeResult, error) {
		return h.svc.Update(r.Context(), recipeID, req)
	})
}

// Recost handles POST /outlets/{oid}/recipes/{id}/recost
func (h *RecipeHandler) Recost(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	recipeID, ok := urlUUID(w, r, "id", "recipe")
	if !ok {
		return
	}

	res, err := h.svc.Recost(r.Context(), outletID, recipeID)
	if err != nil {
		serviceError(w, "recost recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecipeResult(res))
}

// Delete handles DELETE /outlets/{oid}/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	recipeID, ok := urlUUID(w, r, "id", "recipe")
	if !ok {
		return
	}

	if _, err := h.store.SoftDeleteRecipe(r.Context(), database.SoftDeleteRecipeParams{ID: recipeID, OutletID: outletID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, service.ErrRecipeNotFound.Error())
			return
		}
		internalError(w, "delete recipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

// write decodes a recipe body, hands it to fn and renders the result.
func (h *RecipeHandler) write(w http.ResponseWriter, r *http.Request, status int, op string, fn func(service.RecipeRequest) (*service.RecipeResult, error)) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := fn(req.toService(outletID))
	if err != nil {
		serviceError(w, op, err)
		return
	}
	writeJSON(w, status, toRecipeResult(res))
}
