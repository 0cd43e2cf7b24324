package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr error
	committed bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = true
	return nil
}
func (m *mockTx) Rollback(ctx context.Context) error { return nil }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner and remembers the last tx handed out.
type mockTxBeginner struct {
	tx    *mockTx
	err   error
	began int
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.began++
	m.tx = &mockTx{}
	return m.tx, nil
}

// fakeDB is an in-memory stand-in for *database.Queries covering every
// store interface in this package. Writes are not rolled back; tests
// assert on the state after the call under test.
type fakeDB struct {
	outletID uuid.UUID

	vendors        map[uuid.UUID]database.Vendor
	vendorProducts map[uuid.UUID]database.VendorProduct
	items          map[uuid.UUID]database.InventoryItem
	orders         map[uuid.UUID]database.PurchaseOrder
	orderItems     map[uuid.UUID][]database.PurchaseOrderItem
	invoices       map[uuid.UUID]database.Invoice
	invoiceItems   map[uuid.UUID][]database.InvoiceItem
	counts         map[uuid.UUID]database.InventoryCount
	countLines     map[uuid.UUID][]database.InventoryCountLine
	recipes        map[uuid.UUID]database.Recipe
	ingredients    map[uuid.UUID][]database.RecipeIngredient

	// Hooks for error injection. Each receives the 1-based call number.
	createOrderErr     func(call int) error
	createInvoiceErr   func(call int) error
	createRecipeErr    func(call int) error
	// beforeStatusUpdate runs before a compare-and-set so tests can race it.
	beforeStatusUpdate func()

	createOrderCalls   int
	createInvoiceCalls int
	createRecipeCalls  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		outletID:       uuid.New(),
		vendors:        map[uuid.UUID]database.Vendor{},
		vendorProducts: map[uuid.UUID]database.VendorProduct{},
		items:          map[uuid.UUID]database.InventoryItem{},
		orders:         map[uuid.UUID]database.PurchaseOrder{},
		orderItems:     map[uuid.UUID][]database.PurchaseOrderItem{},
		invoices:       map[uuid.UUID]database.Invoice{},
		invoiceItems:   map[uuid.UUID][]database.InvoiceItem{},
		counts:         map[uuid.UUID]database.InventoryCount{},
		countLines:     map[uuid.UUID][]database.InventoryCountLine{},
		recipes:        map[uuid.UUID]database.Recipe{},
		ingredients:    map[uuid.UUID][]database.RecipeIngredient{},
	}
}

// --- Test helpers ---

func num(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}

func numericEquals(n pgtype.Numeric, expected string) bool {
	return pgconv.Decimal(n).Equal(decimal.RequireFromString(expected))
}

func (f *fakeDB) addVendor(status string) database.Vendor {
	v := database.Vendor{ID: uuid.New(), OutletID: f.outletID, Code: "V-001", Name: "Harbor Produce", Status: status}
	f.vendors[v.ID] = v
	return v
}

func (f *fakeDB) addItem(name, unit, unitCost, onHand string) database.InventoryItem {
	it := database.InventoryItem{
		ID: uuid.New(), OutletID: f.outletID, Name: name, Sku: strings.ToUpper(name[:3]) + "-1",
		Category: "Produce", ItemType: enum.ItemTypeRaw, Unit: unit,
		UnitCost: num(unitCost), ParLevel: num("10"), OnHand: num(onHand), IsActive: true,
	}
	f.items[it.ID] = it
	return it
}

func (f *fakeDB) addVendorProduct(vendorID uuid.UUID, item *database.InventoryItem, name, unit, price string) database.VendorProduct {
	vp := database.VendorProduct{ID: uuid.New(), VendorID: vendorID, Name: name, Sku: "VP-" + name[:3], Unit: unit, Price: num(price)}
	if item != nil {
		vp.InventoryItemID = pgconv.UUID(item.ID)
	}
	f.vendorProducts[vp.ID] = vp
	return vp
}

func (f *fakeDB) addOrder(status string, lines ...database.PurchaseOrderItem) database.PurchaseOrder {
	vendor := f.addVendor(enum.VendorStatusActive)
	o := database.PurchaseOrder{
		ID: uuid.New(), OutletID: f.outletID, PoNumber: "PO-0001", VendorID: vendor.ID,
		Status: status, OrderDate: pgconv.Date(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)),
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].PurchaseOrderID = o.ID
		if !lines[i].ReceivedQuantity.Valid {
			lines[i].ReceivedQuantity = num("0")
		}
	}
	f.orders[o.ID] = o
	f.orderItems[o.ID] = lines
	return o
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func nextNumber(count int) int32 { return int32(count + 1) }

// --- Inventory ---

func (f *fakeDB) GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error) {
	it, ok := f.items[arg.ID]
	if !ok || it.OutletID != arg.OutletID || !it.IsActive {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	return it, nil
}

func (f *fakeDB) AdjustInventoryOnHand(ctx context.Context, arg database.AdjustInventoryOnHandParams) (database.InventoryItem, error) {
	it, ok := f.items[arg.ID]
	if !ok || it.OutletID != arg.OutletID {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	it.OnHand = pgconv.Quantity(pgconv.Decimal(it.OnHand).Add(pgconv.Decimal(arg.Delta)))
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeDB) SetInventoryOnHand(ctx context.Context, arg database.SetInventoryOnHandParams) (database.InventoryItem, error) {
	it, ok := f.items[arg.ID]
	if !ok || it.OutletID != arg.OutletID {
		return database.InventoryItem{}, pgx.ErrNoRows
	}
	it.OnHand = arg.OnHand
	it.LastCountedAt = arg.LastCountedAt
	f.items[it.ID] = it
	return it, nil
}

func (f *fakeDB) CountActiveInventoryItems(ctx context.Context, outletID uuid.UUID) (int64, error) {
	var n int64
	for _, it := range f.items {
		if it.OutletID == outletID && it.IsActive {
			n++
		}
	}
	return n, nil
}

// --- Vendors ---

func (f *fakeDB) GetVendor(ctx context.Context, arg database.GetVendorParams) (database.Vendor, error) {
	v, ok := f.vendors[arg.ID]
	if !ok || v.OutletID != arg.OutletID {
		return database.Vendor{}, pgx.ErrNoRows
	}
	return v, nil
}

func (f *fakeDB) GetVendorProduct(ctx context.Context, arg database.GetVendorProductParams) (database.VendorProduct, error) {
	vp, ok := f.vendorProducts[arg.ID]
	if !ok || vp.VendorID != arg.VendorID {
		return database.VendorProduct{}, pgx.ErrNoRows
	}
	return vp, nil
}

// --- Purchase orders ---

func (f *fakeDB) GetNextPONumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	return nextNumber(len(f.orders)), nil
}

func (f *fakeDB) CreatePurchaseOrder(ctx context.Context, arg database.CreatePurchaseOrderParams) (database.PurchaseOrder, error) {
	f.createOrderCalls++
	if f.createOrderErr != nil {
		if err := f.createOrderErr(f.createOrderCalls); err != nil {
			return database.PurchaseOrder{}, err
		}
	}
	o := database.PurchaseOrder{
		ID: uuid.New(), OutletID: arg.OutletID, PoNumber: arg.PoNumber, VendorID: arg.VendorID,
		Status: arg.Status, OrderDate: arg.OrderDate, DeliveryDate: arg.DeliveryDate,
		Memo: arg.Memo, Total: arg.Total, CreatedBy: arg.CreatedBy,
	}
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeDB) CreatePurchaseOrderItem(ctx context.Context, arg database.CreatePurchaseOrderItemParams) (database.PurchaseOrderItem, error) {
	it := database.PurchaseOrderItem{
		ID: uuid.New(), PurchaseOrderID: arg.PurchaseOrderID, VendorProductID: arg.VendorProductID,
		InventoryItemID: arg.InventoryItemID, Name: arg.Name, Sku: arg.Sku, Unit: arg.Unit,
		Quantity: arg.Quantity, UnitCost: arg.UnitCost, ReceivedQuantity: num("0"), LineTotal: arg.LineTotal,
	}
	f.orderItems[arg.PurchaseOrderID] = append(f.orderItems[arg.PurchaseOrderID], it)
	return it, nil
}

func (f *fakeDB) GetPurchaseOrderForUpdate(ctx context.Context, arg database.GetPurchaseOrderForUpdateParams) (database.PurchaseOrder, error) {
	o, ok := f.orders[arg.ID]
	if !ok || o.OutletID != arg.OutletID {
		return database.PurchaseOrder{}, pgx.ErrNoRows
	}
	return o, nil
}

func (f *fakeDB) ListPurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) ([]database.PurchaseOrderItem, error) {
	return append([]database.PurchaseOrderItem(nil), f.orderItems[purchaseOrderID]...), nil
}

func (f *fakeDB) DeletePurchaseOrderItems(ctx context.Context, purchaseOrderID uuid.UUID) error {
	delete(f.orderItems, purchaseOrderID)
	return nil
}

func (f *fakeDB) UpdatePurchaseOrderDetails(ctx context.Context, arg database.UpdatePurchaseOrderDetailsParams) (database.PurchaseOrder, error) {
	o, ok := f.orders[arg.ID]
	if !ok {
		return database.PurchaseOrder{}, pgx.ErrNoRows
	}
	o.DeliveryDate, o.Memo, o.Total = arg.DeliveryDate, arg.Memo, arg.Total
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeDB) UpdatePurchaseOrderStatus(ctx context.Context, arg database.UpdatePurchaseOrderStatusParams) (database.PurchaseOrder, error) {
	if f.beforeStatusUpdate != nil {
		f.beforeStatusUpdate()
	}
	o, ok := f.orders[arg.ID]
	if !ok || o.OutletID != arg.OutletID || o.Status != arg.Status_2 {
		return database.PurchaseOrder{}, pgx.ErrNoRows
	}
	o.Status = arg.Status
	f.orders[o.ID] = o
	return o, nil
}

func (f *fakeDB) AddReceivedQuantity(ctx context.Context, arg database.AddReceivedQuantityParams) (database.PurchaseOrderItem, error) {
	lines := f.orderItems[arg.PurchaseOrderID]
	for i, l := range lines {
		if l.ID == arg.ID {
			l.ReceivedQuantity = pgconv.Quantity(pgconv.Decimal(l.ReceivedQuantity).Add(pgconv.Decimal(arg.ReceivedQuantity)))
			lines[i] = l
			return l, nil
		}
	}
	return database.PurchaseOrderItem{}, pgx.ErrNoRows
}

// --- Invoices ---

func (f *fakeDB) GetNextInvoiceSequence(ctx context.Context, arg database.GetNextInvoiceSequenceParams) (int32, error) {
	max := 0
	for _, inv := range f.invoices {
		if inv.OutletID != arg.OutletID || !strings.HasPrefix(inv.InvoiceNumber, arg.Prefix) {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(inv.InvoiceNumber, arg.Prefix)); err == nil && n > max {
			max = n
		}
	}
	return int32(max + 1), nil
}

func (f *fakeDB) InvoiceNumberExists(ctx context.Context, arg database.InvoiceNumberExistsParams) (bool, error) {
	for _, inv := range f.invoices {
		if inv.OutletID == arg.OutletID && inv.InvoiceNumber == arg.InvoiceNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDB) CreateInvoice(ctx context.Context, arg database.CreateInvoiceParams) (database.Invoice, error) {
	f.createInvoiceCalls++
	if f.createInvoiceErr != nil {
		if err := f.createInvoiceErr(f.createInvoiceCalls); err != nil {
			return database.Invoice{}, err
		}
	}
	inv := database.Invoice{
		ID: uuid.New(), OutletID: arg.OutletID, InvoiceNumber: arg.InvoiceNumber,
		PurchaseOrderID: arg.PurchaseOrderID, VendorID: arg.VendorID, Status: arg.Status,
		InvoiceDate: arg.InvoiceDate, DueDate: arg.DueDate, GstRate: arg.GstRate,
		Subtotal: arg.Subtotal, GstAmount: arg.GstAmount, Total: arg.Total, CreatedBy: arg.CreatedBy,
	}
	f.invoices[inv.ID] = inv
	return inv, nil
}

func (f *fakeDB) CreateInvoiceItem(ctx context.Context, arg database.CreateInvoiceItemParams) (database.InvoiceItem, error) {
	it := database.InvoiceItem{
		ID: uuid.New(), InvoiceID: arg.InvoiceID, PurchaseOrderItemID: arg.PurchaseOrderItemID,
		Name: arg.Name, Unit: arg.Unit, Quantity: arg.Quantity, UnitCost: arg.UnitCost, LineTotal: arg.LineTotal,
	}
	f.invoiceItems[arg.InvoiceID] = append(f.invoiceItems[arg.InvoiceID], it)
	return it, nil
}

func (f *fakeDB) GetInvoiceForUpdate(ctx context.Context, arg database.GetInvoiceForUpdateParams) (database.Invoice, error) {
	inv, ok := f.invoices[arg.ID]
	if !ok || inv.OutletID != arg.OutletID {
		return database.Invoice{}, pgx.ErrNoRows
	}
	return inv, nil
}

func (f *fakeDB) ListInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]database.InvoiceItem, error) {
	return append([]database.InvoiceItem(nil), f.invoiceItems[invoiceID]...), nil
}

func (f *fakeDB) UpdateInvoiceItem(ctx context.Context, arg database.UpdateInvoiceItemParams) (database.InvoiceItem, error) {
	items := f.invoiceItems[arg.InvoiceID]
	for i, it := range items {
		if it.ID == arg.ID {
			it.Quantity, it.UnitCost, it.LineTotal = arg.Quantity, arg.UnitCost, arg.LineTotal
			items[i] = it
			return it, nil
		}
	}
	return database.InvoiceItem{}, pgx.ErrNoRows
}

func (f *fakeDB) UpdateInvoiceTotals(ctx context.Context, arg database.UpdateInvoiceTotalsParams) (database.Invoice, error) {
	inv, ok := f.invoices[arg.ID]
	if !ok {
		return database.Invoice{}, pgx.ErrNoRows
	}
	inv.Subtotal, inv.GstAmount, inv.Total = arg.Subtotal, arg.GstAmount, arg.Total
	f.invoices[inv.ID] = inv
	return inv, nil
}

func (f *fakeDB) UpdateInvoiceStatus(ctx context.Context, arg database.UpdateInvoiceStatusParams) (database.Invoice, error) {
	if f.beforeStatusUpdate != nil {
		f.beforeStatusUpdate()
	}
	inv, ok := f.invoices[arg.ID]
	if !ok || inv.OutletID != arg.OutletID || inv.Status != arg.Status_2 {
		return database.Invoice{}, pgx.ErrNoRows
	}
	inv.Status = arg.Status
	f.invoices[inv.ID] = inv
	return inv, nil
}

// --- Counts ---

func (f *fakeDB) GetNextCountSequence(ctx context.Context, arg database.GetNextCountSequenceParams) (int32, error) {
	n := 0
	for _, c := range f.counts {
		if c.OutletID == arg.OutletID && strings.HasPrefix(c.CountNumber, arg.Prefix) {
			n++
		}
	}
	return int32(n + 1), nil
}

func (f *fakeDB) CreateInventoryCount(ctx context.Context, arg database.CreateInventoryCountParams) (database.InventoryCount, error) {
	c := database.InventoryCount{
		ID: uuid.New(), OutletID: arg.OutletID, CountNumber: arg.CountNumber, CountDate: arg.CountDate,
		Frequency: arg.Frequency, Location: arg.Location, Status: enum.CountStatusDraft,
		TotalItems: arg.TotalItems, CreatedBy: arg.CreatedBy,
	}
	f.counts[c.ID] = c
	return c, nil
}

func (f *fakeDB) GetInventoryCountForUpdate(ctx context.Context, arg database.GetInventoryCountForUpdateParams) (database.InventoryCount, error) {
	c, ok := f.counts[arg.ID]
	if !ok || c.OutletID != arg.OutletID {
		return database.InventoryCount{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeDB) ListInventoryCountLines(ctx context.Context, countID uuid.UUID) ([]database.InventoryCountLine, error) {
	return append([]database.InventoryCountLine(nil), f.countLines[countID]...), nil
}

func (f *fakeDB) UpsertInventoryCountLine(ctx context.Context, arg database.UpsertInventoryCountLineParams) (database.InventoryCountLine, error) {
	lines := f.countLines[arg.CountID]
	for i, l := range lines {
		if l.InventoryItemID == arg.InventoryItemID {
			l.CountedQuantity, l.ExpectedQuantity = arg.CountedQuantity, arg.ExpectedQuantity
			lines[i] = l
			return l, nil
		}
	}
	l := database.InventoryCountLine{
		ID: uuid.New(), CountID: arg.CountID, InventoryItemID: arg.InventoryItemID,
		CountedQuantity: arg.CountedQuantity, ExpectedQuantity: arg.ExpectedQuantity,
	}
	f.countLines[arg.CountID] = append(lines, l)
	return l, nil
}

func (f *fakeDB) PostInventoryCount(ctx context.Context, arg database.PostInventoryCountParams) (database.InventoryCount, error) {
	c, ok := f.counts[arg.ID]
	if !ok || c.OutletID != arg.OutletID || c.Status != enum.CountStatusDraft {
		return database.InventoryCount{}, pgx.ErrNoRows
	}
	c.Status = enum.CountStatusPosted
	c.ItemsCounted = arg.ItemsCounted
	c.PostedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	f.counts[c.ID] = c
	return c, nil
}

// --- Recipes ---

func (f *fakeDB) GetNextRecipeNumber(ctx context.Context, outletID uuid.UUID) (int32, error) {
	return nextNumber(len(f.recipes)), nil
}

func (f *fakeDB) CreateRecipe(ctx context.Context, arg database.CreateRecipeParams) (database.Recipe, error) {
	f.createRecipeCalls++
	if f.createRecipeErr != nil {
		if err := f.createRecipeErr(f.createRecipeCalls); err != nil {
			return database.Recipe{}, err
		}
	}
	r := database.Recipe{
		ID: uuid.New(), OutletID: arg.OutletID, Code: arg.Code, Name: arg.Name, Category: arg.Category,
		Kind: arg.Kind, YieldAmount: arg.YieldAmount, YieldUnit: arg.YieldUnit, MenuPrice: arg.MenuPrice,
		Instructions: arg.Instructions, TotalCost: arg.TotalCost, CostPerPortion: arg.CostPerPortion,
		FoodCostPercent: arg.FoodCostPercent, IsActive: true,
	}
	f.recipes[r.ID] = r
	return r, nil
}

func (f *fakeDB) GetRecipe(ctx context.Context, arg database.GetRecipeParams) (database.Recipe, error) {
	r, ok := f.recipes[arg.ID]
	if !ok || r.OutletID != arg.OutletID || !r.IsActive {
		return database.Recipe{}, pgx.ErrNoRows
	}
	return r, nil
}

func (f *fakeDB) UpdateRecipe(ctx context.Context, arg database.UpdateRecipeParams) (database.Recipe, error) {
	r, ok := f.recipes[arg.ID]
	if !ok {
		return database.Recipe{}, pgx.ErrNoRows
	}
	r.Name, r.Category, r.Kind = arg.Name, arg.Category, arg.Kind
	r.YieldAmount, r.YieldUnit, r.MenuPrice, r.Instructions = arg.YieldAmount, arg.YieldUnit, arg.MenuPrice, arg.Instructions
	r.TotalCost, r.CostPerPortion, r.FoodCostPercent = arg.TotalCost, arg.CostPerPortion, arg.FoodCostPercent
	f.recipes[r.ID] = r
	return r, nil
}

func (f *fakeDB) UpdateRecipeCosts(ctx context.Context, arg database.UpdateRecipeCostsParams) (database.Recipe, error) {
	r, ok := f.recipes[arg.ID]
	if !ok {
		return database.Recipe{}, pgx.ErrNoRows
	}
	r.TotalCost, r.CostPerPortion, r.FoodCostPercent = arg.TotalCost, arg.CostPerPortion, arg.FoodCostPercent
	f.recipes[r.ID] = r
	return r, nil
}

func (f *fakeDB) CreateRecipeIngredient(ctx context.Context, arg database.CreateRecipeIngredientParams) (database.RecipeIngredient, error) {
	ing := database.RecipeIngredient{
		ID: uuid.New(), RecipeID: arg.RecipeID, InventoryItemID: arg.InventoryItemID, Name: arg.Name,
		Quantity: arg.Quantity, Unit: arg.Unit, UnitCost: arg.UnitCost, SortOrder: arg.SortOrder,
	}
	f.ingredients[arg.RecipeID] = append(f.ingredients[arg.RecipeID], ing)
	return ing, nil
}

func (f *fakeDB) ListRecipeIngredients(ctx context.Context, recipeID uuid.UUID) ([]database.RecipeIngredient, error) {
	out := append([]database.RecipeIngredient(nil), f.ingredients[recipeID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (f *fakeDB) DeleteRecipeIngredients(ctx context.Context, recipeID uuid.UUID) error {
	delete(f.ingredients, recipeID)
	return nil
}

func (f *fakeDB) UpdateRecipeIngredientCost(ctx context.Context, arg database.UpdateRecipeIngredientCostParams) (database.RecipeIngredient, error) {
	ings := f.ingredients[arg.RecipeID]
	for i, ing := range ings {
		if ing.ID == arg.ID {
			ing.UnitCost = arg.UnitCost
			ings[i] = ing
			return ing, nil
		}
	}
	return database.RecipeIngredient{}, pgx.ErrNoRows
}
