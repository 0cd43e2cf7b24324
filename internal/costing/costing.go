// Package costing holds the arithmetic behind recipe costing, document
// totals, waste valuation and stock levels. Everything here is pure and
// works on shopspring decimals; callers handle persistence and rounding
// for storage.
package costing

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)

	// GoodThreshold and WarningThreshold bound the food-cost classes in percent.
	GoodThreshold    = decimal.NewFromInt(28)
	WarningThreshold = decimal.NewFromInt(35)
)

// Classification labels a recipe's food-cost percentage.
type Classification string

const (
	ClassGood     Classification = "GOOD"
	ClassWarning  Classification = "WARNING"
	ClassHigh     Classification = "HIGH"
	ClassUnpriced Classification = "UNPRICED"
)

// Label returns the operator-facing wording for c.
func (c Classification) Label() string {
	switch c {
	case ClassGood:
		return "excellent/good"
	case ClassWarning:
		return "approaching limit"
	case ClassHigh:
		return "review pricing"
	case ClassUnpriced:
		return "no menu price"
	default:
		return ""
	}
}

// Ingredient is one recipe line.
type Ingredient struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// RecipeInput carries what the recipe calculation needs.
type RecipeInput struct {
	Ingredients []Ingredient
	YieldAmount decimal.Decimal
	MenuPrice   decimal.Decimal
}

// RecipeCost is the result of costing a recipe. Values are unrounded.
type RecipeCost struct {
	LineCosts       []decimal.Decimal
	TotalCost       decimal.Decimal
	CostPerPortion  decimal.Decimal
	FoodCostPercent decimal.Decimal
	Classification  Classification
}

// Recipe computes total cost, cost per portion and food-cost percentage.
// A yield of zero or less gives a zero cost per portion; a menu price of
// zero or less gives a zero percentage and the UNPRICED class.
func Recipe(in RecipeInput) RecipeCost {
	out := RecipeCost{
		LineCosts: make([]decimal.Decimal, len(in.Ingredients)),
		TotalCost: decimal.Zero,
	}
	for i, ing := range in.Ingredients {
		line := ing.Quantity.Mul(ing.UnitCost)
		out.LineCosts[i] = line
		out.TotalCost = out.TotalCost.Add(line)
	}

	out.CostPerPortion = decimal.Zero
	if in.YieldAmount.IsPositive() {
		out.CostPerPortion = out.TotalCost.DivRound(in.YieldAmount, 8)
	}

	out.FoodCostPercent = decimal.Zero
	priced := in.MenuPrice.IsPositive()
	if priced {
		out.FoodCostPercent = out.CostPerPortion.DivRound(in.MenuPrice, 8).Mul(hundred)
	}
	out.Classification = Classify(out.FoodCostPercent, priced)
	return out
}

// Classify maps a food-cost percentage onto its class: up to 28 is good,
// above 28 up to 35 is a warning, above 35 is high.
func Classify(percent decimal.Decimal, priced bool) Classification {
	if !priced {
		return ClassUnpriced
	}
	switch {
	case percent.LessThanOrEqual(GoodThreshold):
		return ClassGood
	case percent.LessThanOrEqual(WarningThreshold):
		return ClassWarning
	default:
		return ClassHigh
	}
}

// Line is a priced quantity on an invoice or bill.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Totals are rounded to two places and satisfy Total = Subtotal + GSTAmount.
type Totals struct {
	Subtotal  decimal.Decimal
	GSTAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineTotal is quantity × unit price rounded to cents.
func LineTotal(quantity, unitPrice decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitPrice).Round(2)
}

// ComputeTotals sums the lines and applies gstRate, given in percent.
func ComputeTotals(lines []Line, gstRate decimal.Decimal) Totals {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Quantity.Mul(l.UnitPrice))
	}
	subtotal := sum.Round(2)
	gst := subtotal.Mul(gstRate).Div(hundred).Round(2)
	return Totals{
		Subtotal:  subtotal,
		GSTAmount: gst,
		Total:     subtotal.Add(gst),
	}
}

// WasteInput mirrors the fields of a waste entry that drive its cost.
type WasteInput struct {
	HasItem  bool
	Unit     string
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// WasteCost returns quantity × unit cost rounded to cents. The second
// result is false when no item or unit is chosen or the quantity is not
// positive; the cost is then zero.
func WasteCost(in WasteInput) (decimal.Decimal, bool) {
	if !in.HasItem || in.Unit == "" || !in.Quantity.IsPositive() {
		return decimal.Zero, false
	}
	return in.Quantity.Mul(in.UnitCost).Round(2), true
}

// StockStatus describes on-hand stock relative to par.
type StockStatus string

const (
	StockOK       StockStatus = "OK"
	StockLow      StockStatus = "LOW"
	StockCritical StockStatus = "CRITICAL"
)

// Stock is CRITICAL below half of par, LOW below par, otherwise OK.
// Items without a par level are always OK.
func Stock(onHand, par decimal.Decimal) StockStatus {
	if !par.IsPositive() {
		return StockOK
	}
	if onHand.LessThan(par.Mul(half)) {
		return StockCritical
	}
	if onHand.LessThan(par) {
		return StockLow
	}
	return StockOK
}
