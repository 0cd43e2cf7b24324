package costing

import "github.com/shopspring/decimal"

// MatchStatus is the outcome of comparing one invoice line.
type MatchStatus string

const (
	Matched  MatchStatus = "MATCHED"
	Variance MatchStatus = "VARIANCE"
)

// MatchLine lines up the ordered, received and invoiced side of one item.
// Received is false when the order has no receipt recorded yet; the
// received quantity is then left out of the comparison.
type MatchLine struct {
	Name         string
	OrderedQty   decimal.Decimal
	Received     bool
	ReceivedQty  decimal.Decimal
	InvoicedQty  decimal.Decimal
	OrderedCost  decimal.Decimal
	InvoicedCost decimal.Decimal
}

// MatchResult reports invoiced minus ordered (or received) for each measure.
type MatchResult struct {
	Name             string
	Status           MatchStatus
	QtyVariance      decimal.Decimal
	ReceivedVariance decimal.Decimal
	CostVariance     decimal.Decimal
	AmountVariance   decimal.Decimal
}

// ThreeWayMatch compares purchase order, receipt and invoice per line.
// A line matches when the invoiced quantity equals the ordered quantity
// (and the received quantity, once anything was received) and the
// invoiced unit cost equals the PO cost. The boolean is true when every
// line matched.
func ThreeWayMatch(lines []MatchLine) ([]MatchResult, bool) {
	results := make([]MatchResult, len(lines))
	all := true
	for i, l := range lines {
		r := MatchResult{
			Name:         l.Name,
			QtyVariance:  l.InvoicedQty.Sub(l.OrderedQty),
			CostVariance: l.InvoicedCost.Sub(l.OrderedCost),
			AmountVariance: LineTotal(l.InvoicedQty, l.InvoicedCost).
				Sub(LineTotal(l.OrderedQty, l.OrderedCost)),
		}
		if l.Received {
			r.ReceivedVariance = l.InvoicedQty.Sub(l.ReceivedQty)
		}
		if r.QtyVariance.IsZero() && r.ReceivedVariance.IsZero() && r.CostVariance.IsZero() {
			r.Status = Matched
		} else {
			r.Status = Variance
			all = false
		}
		results[i] = r
	}
	return results, all
}
