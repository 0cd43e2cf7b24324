package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/larder-pos/api/internal/costing"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvoiceLocked   = errors.New("invoice is finalized or rejected")
)

// Invoice actions accepted by TransitionInvoice.
const (
	InvoiceActionSubmit   = "submit"
	InvoiceActionFinalize = "finalize"
	InvoiceActionReject   = "reject"
)

var invoiceActionTargets = map[string]string{
	InvoiceActionSubmit:   enum.InvoiceStatusPending,
	InvoiceActionFinalize: enum.InvoiceStatusFinalized,
	InvoiceActionReject:   enum.InvoiceStatusRejected,
}

var allowedInvoiceTransitions = map[string][]string{
	enum.InvoiceStatusDraft:   {enum.InvoiceStatusPending, enum.InvoiceStatusFinalized, enum.InvoiceStatusRejected},
	enum.InvoiceStatusPending: {enum.InvoiceStatusFinalized, enum.InvoiceStatusRejected},
}

// InvoiceStore defines the DB methods needed to edit invoices.
type InvoiceStore interface {
	GetInvoiceForUpdate(ctx context.Context, arg database.GetInvoiceForUpdateParams) (database.Invoice, error)
	ListInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]database.InvoiceItem, error)
	UpdateInvoiceItem(ctx context.Context, arg database.UpdateInvoiceItemParams) (database.InvoiceItem, error)
	UpdateInvoiceTotals(ctx context.Context, arg database.UpdateInvoiceTotalsParams) (database.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, arg database.UpdateInvoiceStatusParams) (database.Invoice, error)
}

type NewInvoiceStore func(db database.DBTX) InvoiceStore

// UpdateInvoiceRequest edits quantities and costs on existing invoice lines.
// Empty fields keep the current value.
type UpdateInvoiceRequest struct {
	OutletID  uuid.UUID
	InvoiceID uuid.UUID
	Lines     []InvoiceLineInput
}

type InvoiceService struct {
	pool     TxBeginner
	newStore NewInvoiceStore
}

func NewInvoiceService(pool TxBeginner, newStore NewInvoiceStore) *InvoiceService {
	return &InvoiceService{pool: pool, newStore: newStore}
}

// UpdateLines applies line edits and recomputes subtotal, GST and total
// at the invoice's own GST rate.
func (s *InvoiceService) UpdateLines(ctx context.Context, req UpdateInvoiceRequest) (*InvoiceResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	invoice, err := lockInvoice(ctx, store, req.OutletID, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status == enum.InvoiceStatusFinalized || invoice.Status == enum.InvoiceStatusRejected {
		return nil, ErrInvoiceLocked
	}

	items, err := store.ListInvoiceItems(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	byID := make(map[uuid.UUID]int, len(items))
	for i, it := range items {
		byID[it.ID] = i
	}

	for i, l := range req.Lines {
		id, err := uuid.Parse(l.ItemID)
		if err != nil {
			return nil, lineErr(i, ErrUnknownLine)
		}
		idx, ok := byID[id]
		if !ok {
			return nil, lineErr(i, ErrUnknownLine)
		}

		qty := pgconv.Decimal(items[idx].Quantity)
		cost := pgconv.Decimal(items[idx].UnitCost)
		if l.Quantity != "" {
			if qty, err = parseNonNegative(l.Quantity, pgconv.QuantityPlaces, ErrNegativeQuantity); err != nil {
				return nil, lineErr(i, err)
			}
		}
		if l.UnitCost != "" {
			if cost, err = parseNonNegative(l.UnitCost, pgconv.UnitCostPlaces, ErrInvalidCost); err != nil {
				return nil, lineErr(i, err)
			}
		}

		updated, err := store.UpdateInvoiceItem(ctx, database.UpdateInvoiceItemParams{
			ID:        id,
			InvoiceID: invoice.ID,
			Quantity:  pgconv.Quantity(qty),
			UnitCost:  pgconv.UnitCost(cost),
			LineTotal: pgconv.Numeric(costing.LineTotal(qty, cost)),
		})
		if err != nil {
			return nil, fmt.Errorf("update invoice item: %w", err)
		}
		items[idx] = updated
	}

	calc := make([]costing.Line, len(items))
	for i, it := range items {
		calc[i] = costing.Line{Quantity: pgconv.Decimal(it.Quantity), UnitPrice: pgconv.Decimal(it.UnitCost)}
	}
	totals := costing.ComputeTotals(calc, pgconv.Decimal(invoice.GstRate))

	invoice, err = store.UpdateInvoiceTotals(ctx, database.UpdateInvoiceTotalsParams{
		ID:        invoice.ID,
		Subtotal:  pgconv.Numeric(totals.Subtotal),
		GstAmount: pgconv.Numeric(totals.GSTAmount),
		Total:     pgconv.Numeric(totals.Total),
	})
	if err != nil {
		return nil, fmt.Errorf("update invoice totals: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &InvoiceResult{Invoice: invoice, Items: items}, nil
}

// Transition applies submit, finalize or reject.
func (s *InvoiceService) Transition(ctx context.Context, outletID, invoiceID uuid.UUID, action string) (database.Invoice, error) {
	target, ok := invoiceActionTargets[action]
	if !ok {
		return database.Invoice{}, ErrInvalidAction
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Invoice{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	invoice, err := lockInvoice(ctx, store, outletID, invoiceID)
	if err != nil {
		return database.Invoice{}, err
	}

	allowed := false
	for _, st := range allowedInvoiceTransitions[invoice.Status] {
		if st == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return database.Invoice{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invoice.Status, target)
	}

	updated, err := store.UpdateInvoiceStatus(ctx, database.UpdateInvoiceStatusParams{
		ID:       invoice.ID,
		OutletID: outletID,
		Status:   target,
		Status_2: invoice.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Invoice{}, ErrStatusConflict
		}
		return database.Invoice{}, fmt.Errorf("update invoice status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Invoice{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

func lockInvoice(ctx context.Context, store InvoiceStore, outletID, invoiceID uuid.UUID) (database.Invoice, error) {
	invoice, err := store.GetInvoiceForUpdate(ctx, database.GetInvoiceForUpdateParams{ID: invoiceID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Invoice{}, ErrInvoiceNotFound
		}
		return database.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return invoice, nil
}
