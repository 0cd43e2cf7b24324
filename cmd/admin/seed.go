package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/larder-pos/api/internal/auth"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedOpts struct {
	outlet   string
	email    string
	password string
	name     string
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the first outlet, its owner and sample data",
	Long: `Creates an outlet and an OWNER user. Sample vendors, inventory items and
dining tables are added only when the outlet is new, so running seed twice
changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedOpts.email == "" {
			seedOpts.email = os.Getenv("SEED_EMAIL")
		}
		if seedOpts.password == "" {
			seedOpts.password = os.Getenv("SEED_PASSWORD")
		}
		if seedOpts.password == "" {
			seedOpts.password = "password123"
			log.Warn("using default owner password, change it before going live")
		}
		if len(seedOpts.password) < auth.MinPasswordLength {
			return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
		}
		return runSeed(cmd.Context())
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.outlet, "outlet", "Larder Kitchen", "outlet name")
	f.StringVar(&seedOpts.email, "email", "", "owner email (default $SEED_EMAIL or owner@larder.local)")
	f.StringVar(&seedOpts.password, "password", "", "owner password (default $SEED_PASSWORD)")
	f.StringVar(&seedOpts.name, "name", "Larder Owner", "owner full name")
}

func runSeed(ctx context.Context) error {
	if seedOpts.email == "" {
		seedOpts.email = "owner@larder.local"
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()

	// Outlet and owner land together or not at all.
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	q := database.New(tx)

	outletID, created, err := seedOutlet(ctx, q, seedOpts.outlet)
	if err != nil {
		return err
	}
	ownerID, err := seedOwner(ctx, q, outletID)
	if err != nil {
		return err
	}
	if created {
		if err := seedSamples(ctx, q, outletID); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info("seed completed", zap.Stringer("outlet_id", outletID), zap.Stringer("owner_id", ownerID))
	return nil
}

func seedOutlet(ctx context.Context, q *database.Queries, name string) (uuid.UUID, bool, error) {
	existing, err := q.GetOutletByName(ctx, name)
	if err == nil {
		log.Info("outlet exists, skipping", zap.String("name", name))
		return existing.ID, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, fmt.Errorf("check outlet: %w", err)
	}

	outlet, err := q.CreateOutlet(ctx, database.CreateOutletParams{Name: name})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("create outlet: %w", err)
	}
	log.Info("created outlet", zap.String("name", name), zap.Stringer("id", outlet.ID))
	return outlet.ID, true, nil
}

func seedOwner(ctx context.Context, q *database.Queries, outletID uuid.UUID) (uuid.UUID, error) {
	existing, err := q.GetUserByEmail(ctx, seedOpts.email)
	if err == nil {
		log.Info("owner exists, skipping", zap.String("email", seedOpts.email))
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, fmt.Errorf("check owner: %w", err)
	}

	hash, err := auth.HashPassword(seedOpts.password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := q.CreateUser(ctx, database.CreateUserParams{
		OutletID:       outletID,
		Email:          seedOpts.email,
		HashedPassword: hash,
		FullName:       seedOpts.name,
		Role:           enum.UserRoleOwner,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create owner: %w", err)
	}
	log.Info("created owner", zap.String("email", user.Email))
	return user.ID, nil
}

type sampleItem struct {
	name, sku, category, itemType, unit string
	cost, par, onHand                   string
}

var (
	sampleVendors = []database.CreateVendorParams{
		{Name: "Harbour Produce", ContactName: pgconv.Text("Mia Tan"), Phone: pgconv.Text("+65 6123 4567")},
		{Name: "Northside Dairy", Email: pgconv.Text("orders@northside.example")},
		{Name: "Prime Meats"},
	}

	sampleItems = []sampleItem{
		{"Beef Patty", "MEAT-001", "Meat", enum.ItemTypeRaw, enum.UnitEach, "1.8500", "40", "60"},
		{"Cheddar Slice", "DAIRY-001", "Dairy", enum.ItemTypeRaw, enum.UnitEach, "0.2200", "100", "150"},
		{"Whole Milk", "DAIRY-002", "Dairy", enum.ItemTypeRaw, enum.UnitLitre, "1.2500", "20", "12"},
		{"Brioche Bun", "BAKE-001", "Bakery", enum.ItemTypeRaw, enum.UnitEach, "0.4500", "60", "80"},
		{"Lime", "PROD-001", "Produce", enum.ItemTypeRaw, enum.UnitKilo, "4.2000", "2", "3.5"},
		{"House Sauce", "PREP-001", "Sauces", enum.ItemTypePrep, enum.UnitLitre, "3.1000", "2", "1.5"},
	}

	sampleTables = []database.CreateDiningTableParams{
		{Name: "T1", Section: pgconv.Text("Main"), Capacity: 2},
		{Name: "T2", Section: pgconv.Text("Main"), Capacity: 4},
		{Name: "T3", Section: pgconv.Text("Main"), Capacity: 4},
		{Name: "P1", Section: pgconv.Text("Patio"), Capacity: 6},
	}
)

func seedSamples(ctx context.Context, q *database.Queries, outletID uuid.UUID) error {
	for i, v := range sampleVendors {
		v.OutletID = outletID
		v.Code = fmt.Sprintf("V-%03d", i+1)
		if _, err := q.CreateVendor(ctx, v); err != nil {
			return fmt.Errorf("create vendor %s: %w", v.Name, err)
		}
	}

	for _, it := range sampleItems {
		_, err := q.CreateInventoryItem(ctx, database.CreateInventoryItemParams{
			OutletID:  outletID,
			Name:      it.name,
			Sku:       it.sku,
			Category:  it.category,
			ItemType:  it.itemType,
			Unit:      it.unit,
			UnitCost:  pgconv.UnitCost(decimal.RequireFromString(it.cost)),
			ParLevel:  pgconv.Quantity(decimal.RequireFromString(it.par)),
			OnHand:    pgconv.Quantity(decimal.RequireFromString(it.onHand)),
			Locations: []string{"Store Room"},
		})
		if err != nil {
			return fmt.Errorf("create item %s: %w", it.name, err)
		}
	}

	for _, t := range sampleTables {
		t.OutletID = outletID
		if _, err := q.CreateDiningTable(ctx, t); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}

	log.Info("created sample data",
		zap.Int("vendors", len(sampleVendors)),
		zap.Int("items", len(sampleItems)),
		zap.Int("tables", len(sampleTables)))
	return nil
}
