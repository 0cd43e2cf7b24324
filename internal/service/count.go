package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
)

const countNumberConstraint = "inventory_counts_outlet_id_count_number_key"

var (
	ErrInvalidFrequency = errors.New("frequency must be DAILY, WEEKLY or MONTHLY")
	ErrCountNotFound    = errors.New("inventory count not found")
	ErrCountPosted      = errors.New("inventory count is already posted")
	ErrNothingCounted   = errors.New("no items have been counted")
)

// CountStore defines the DB methods needed by the count service.
type CountStore interface {
	CountActiveInventoryItems(ctx context.Context, outletID uuid.UUID) (int64, error)
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
	SetInventoryOnHand(ctx context.Context, arg database.SetInventoryOnHandParams) (database.InventoryItem, error)

	GetNextCountSequence(ctx context.Context, arg database.GetNextCountSequenceParams) (int32, error)
	CreateInventoryCount(ctx context.Context, arg database.CreateInventoryCountParams) (database.InventoryCount, error)
	GetInventoryCountForUpdate(ctx context.Context, arg database.GetInventoryCountForUpdateParams) (database.InventoryCount, error)
	ListInventoryCountLines(ctx context.Context, countID uuid.UUID) ([]database.InventoryCountLine, error)
	UpsertInventoryCountLine(ctx context.Context, arg database.UpsertInventoryCountLineParams) (database.InventoryCountLine, error)
	PostInventoryCount(ctx context.Context, arg database.PostInventoryCountParams) (database.InventoryCount, error)
}

type NewCountStore func(db database.DBTX) CountStore

type CreateCountRequest struct {
	OutletID  uuid.UUID
	CreatedBy uuid.UUID
	CountDate string // defaults to today
	Frequency string
	Location  string
}

type CountLineInput struct {
	InventoryItemID string
	CountedQuantity string
}

type SaveCountLinesRequest struct {
	OutletID uuid.UUID
	CountID  uuid.UUID
	Lines    []CountLineInput
}

// CountService runs inventory counts from draft to posting.
type CountService struct {
	pool     TxBeginner
	newStore NewCountStore
}

func NewCountService(pool TxBeginner, newStore NewCountStore) *CountService {
	return &CountService{pool: pool, newStore: newStore}
}

// CreateCount opens a DRAFT count numbered CNT-<year>-NNN covering every
// active item.
func (s *CountService) CreateCount(ctx context.Context, req CreateCountRequest) (database.InventoryCount, error) {
	switch req.Frequency {
	case enum.CountFrequencyDaily, enum.CountFrequencyWeekly, enum.CountFrequencyMonthly:
	default:
		return database.InventoryCount{}, ErrInvalidFrequency
	}
	countDate := pgconv.Date(today())
	if req.CountDate != "" {
		d, err := pgconv.ParseDate(req.CountDate)
		if err != nil {
			return database.InventoryCount{}, ErrInvalidDate
		}
		countDate = d
	}

	return withNumberRetry(countNumberConstraint, func() (database.InventoryCount, error) {
		return s.createCountTx(ctx, req, countDate)
	})
}

func (s *CountService) createCountTx(ctx context.Context, req CreateCountRequest, countDate pgtype.Date) (database.InventoryCount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.InventoryCount{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	total, err := store.CountActiveInventoryItems(ctx, req.OutletID)
	if err != nil {
		return database.InventoryCount{}, fmt.Errorf("count items: %w", err)
	}

	prefix := fmt.Sprintf("CNT-%d-", countDate.Time.Year())
	next, err := store.GetNextCountSequence(ctx, database.GetNextCountSequenceParams{OutletID: req.OutletID, Prefix: prefix})
	if err != nil {
		return database.InventoryCount{}, fmt.Errorf("next count number: %w", err)
	}

	count, err := store.CreateInventoryCount(ctx, database.CreateInventoryCountParams{
		OutletID:    req.OutletID,
		CountNumber: fmt.Sprintf("%s%03d", prefix, next),
		CountDate:   countDate,
		Frequency:   req.Frequency,
		Location:    pgconv.Text(req.Location),
		TotalItems:  int32(total),
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return database.InventoryCount{}, fmt.Errorf("create count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.InventoryCount{}, fmt.Errorf("commit tx: %w", err)
	}
	return count, nil
}

// SaveLines records counted quantities on a DRAFT count. Saving an item
// twice keeps the last quantity. The item's current on-hand is kept as the
// expected quantity.
func (s *CountService) SaveLines(ctx context.Context, req SaveCountLinesRequest) ([]database.InventoryCountLine, error) {
	if len(req.Lines) == 0 {
		return nil, ErrNoLines
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	count, err := lockCount(ctx, store, req.OutletID, req.CountID)
	if err != nil {
		return nil, err
	}
	if count.Status != enum.CountStatusDraft {
		return nil, ErrCountPosted
	}

	for i, l := range req.Lines {
		itemID, err := uuid.Parse(l.InventoryItemID)
		if err != nil {
			return nil, lineErr(i, ErrInventoryItemNotFound)
		}
		qty, err := parseNonNegative(l.CountedQuantity, pgconv.QuantityPlaces, ErrNegativeQuantity)
		if err != nil {
			return nil, lineErr(i, err)
		}
		item, err := store.GetInventoryItem(ctx, database.GetInventoryItemParams{ID: itemID, OutletID: req.OutletID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, lineErr(i, ErrInventoryItemNotFound)
			}
			return nil, fmt.Errorf("get inventory item: %w", err)
		}

		if _, err := store.UpsertInventoryCountLine(ctx, database.UpsertInventoryCountLineParams{
			CountID:          count.ID,
			InventoryItemID:  item.ID,
			CountedQuantity:  pgconv.Quantity(qty),
			ExpectedQuantity: item.OnHand,
		}); err != nil {
			return nil, fmt.Errorf("save count line: %w", err)
		}
	}

	lines, err := store.ListInventoryCountLines(ctx, count.ID)
	if err != nil {
		return nil, fmt.Errorf("list count lines: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return lines, nil
}

// PostCount sets on-hand to the counted quantity for every counted item,
// stamps their last-counted date, and moves the count to POSTED. Items
// without a line keep their stock.
func (s *CountService) PostCount(ctx context.Context, outletID, countID uuid.UUID) (database.InventoryCount, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.InventoryCount{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	count, err := lockCount(ctx, store, outletID, countID)
	if err != nil {
		return database.InventoryCount{}, err
	}
	if count.Status != enum.CountStatusDraft {
		return database.InventoryCount{}, ErrCountPosted
	}

	lines, err := store.ListInventoryCountLines(ctx, count.ID)
	if err != nil {
		return database.InventoryCount{}, fmt.Errorf("list count lines: %w", err)
	}
	if len(lines) == 0 {
		return database.InventoryCount{}, ErrNothingCounted
	}

	for _, l := range lines {
		if _, err := store.SetInventoryOnHand(ctx, database.SetInventoryOnHandParams{
			ID:            l.InventoryItemID,
			OutletID:      outletID,
			OnHand:        l.CountedQuantity,
			LastCountedAt: count.CountDate,
		}); err != nil {
			return database.InventoryCount{}, fmt.Errorf("set on hand: %w", err)
		}
	}

	posted, err := store.PostInventoryCount(ctx, database.PostInventoryCountParams{
		ID:           count.ID,
		OutletID:     outletID,
		ItemsCounted: int32(len(lines)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.InventoryCount{}, ErrStatusConflict
		}
		return database.InventoryCount{}, fmt.Errorf("post count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.InventoryCount{}, fmt.Errorf("commit tx: %w", err)
	}
	return posted, nil
}

func lockCount(ctx context.Context, store CountStore, outletID, countID uuid.UUID) (database.InventoryCount, error) {
	count, err := store.GetInventoryCountForUpdate(ctx, database.GetInventoryCountForUpdateParams{ID: countID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.InventoryCount{}, ErrCountNotFound
		}
		return database.InventoryCount{}, fmt.Errorf("get count: %w", err)
	}
	return count, nil
}
