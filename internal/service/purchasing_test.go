package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

func newTestPurchasing(db *fakeDB) (*PurchasingService, *mockTxBeginner) {
	pool := &mockTxBeginner{}
	svc := NewPurchasingService(pool, func(database.DBTX) PurchasingStore { return db }, decimal.NewFromInt(6))
	return svc, pool
}

// ---------------------------------------------------------------------------
// CreateOrder
// ---------------------------------------------------------------------------

func TestCreateOrder_DefaultsFromVendorProductAndItem(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	tomato := db.addItem("Tomato", "KG", "3.2000", "4")
	vp := db.addVendorProduct(vendor.ID, &tomato, "Roma Tomato", "CS", "24.5000")
	onion := db.addItem("Onion", "KG", "1.1000", "0")

	svc, pool := newTestPurchasing(db)
	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID:  db.outletID,
		CreatedBy: uuid.New(),
		VendorID:  vendor.ID.String(),
		OrderDate: "2024-05-02",
		Lines: []OrderLineInput{
			{VendorProductID: vp.ID.String(), Quantity: "2"},
			{InventoryItemID: onion.ID.String(), Quantity: "3.5"},
			{Name: "Delivery fee", Quantity: "1", UnitCost: "5"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if res.Order.PoNumber != "PO-0001" {
		t.Errorf("po_number = %q, want PO-0001", res.Order.PoNumber)
	}
	if res.Order.Status != enum.PurchaseOrderStatusDraft {
		t.Errorf("status = %q, want DRAFT", res.Order.Status)
	}
	// 2*24.5 + 3.5*1.1 + 1*5 = 49 + 3.85 + 5
	if !numericEquals(res.Order.Total, "57.85") {
		t.Errorf("total = %s, want 57.85", pgconv.String(res.Order.Total))
	}
	if pgconv.DateString(res.Order.OrderDate) != "2024-05-02" {
		t.Errorf("order_date = %s", pgconv.DateString(res.Order.OrderDate))
	}

	type line struct{ Name, Sku, Unit, Cost string }
	var got []line
	for _, it := range res.Items {
		got = append(got, line{it.Name, it.Sku, it.Unit, pgconv.StringFixed(it.UnitCost, 4)})
	}
	want := []line{
		{"Roma Tomato", "VP-Rom", "CS", "24.5000"},
		{"Onion", "ONI-1", "KG", "1.1000"},
		{"Delivery fee", "", "EA", "5.0000"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if !res.Items[0].InventoryItemID.Valid || uuid.UUID(res.Items[0].InventoryItemID.Bytes) != tomato.ID {
		t.Error("vendor product line should carry the linked inventory item")
	}
	if !pool.tx.committed {
		t.Error("expected commit")
	}
}

func TestCreateOrder_SubmitOpensOrder(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	svc, _ := newTestPurchasing(db)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Submit:   true,
		Lines:    []OrderLineInput{{Name: "Basil", Quantity: "1", UnitCost: "2"}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if res.Order.Status != enum.PurchaseOrderStatusOpen {
		t.Errorf("status = %q, want OPEN", res.Order.Status)
	}
}

func TestCreateOrder_TotalMatchesStoredLines(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	svc, _ := newTestPurchasing(db)

	res, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Lines: []OrderLineInput{
			{Name: "Saffron", Quantity: "1.0004", UnitCost: "100"},
			{Name: "Vanilla", Quantity: "2", UnitCost: "1.23456"},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	sum := decimal.Zero
	for _, it := range res.Items {
		sum = sum.Add(pgconv.Decimal(it.Quantity).Mul(pgconv.Decimal(it.UnitCost)))
	}
	// 1.000*100 + 2*1.2346
	if !numericEquals(res.Order.Total, sum.Round(2).String()) || !numericEquals(res.Order.Total, "102.47") {
		t.Errorf("total = %s, stored lines sum to %s", pgconv.String(res.Order.Total), sum.StringFixed(2))
	}
	if !numericEquals(res.Items[1].UnitCost, "1.2346") {
		t.Errorf("unit_cost = %s, want 1.2346", pgconv.StringFixed(res.Items[1].UnitCost, 4))
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	db := newFakeDB()
	active := db.addVendor(enum.VendorStatusActive)
	excluded := db.addVendor(enum.VendorStatusExcluded)
	other := db.addVendor(enum.VendorStatusActive)
	foreign := db.addVendorProduct(other.ID, nil, "Leeks", "KG", "2")

	line := OrderLineInput{Name: "Basil", Quantity: "1", UnitCost: "2"}
	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"no lines", CreateOrderRequest{VendorID: active.ID.String()}, ErrNoLines},
		{"bad vendor id", CreateOrderRequest{VendorID: "nope", Lines: []OrderLineInput{line}}, ErrInvalidVendorID},
		{"unknown vendor", CreateOrderRequest{VendorID: uuid.NewString(), Lines: []OrderLineInput{line}}, ErrVendorNotFound},
		{"excluded vendor", CreateOrderRequest{VendorID: excluded.ID.String(), Lines: []OrderLineInput{line}}, ErrVendorInactive},
		{"bad order date", CreateOrderRequest{VendorID: active.ID.String(), OrderDate: "02/05/2024", Lines: []OrderLineInput{line}}, ErrInvalidDate},
		{"zero quantity", CreateOrderRequest{VendorID: active.ID.String(), Lines: []OrderLineInput{{Name: "x", Quantity: "0", UnitCost: "1"}}}, ErrInvalidQuantity},
		{"quantity rounds to zero", CreateOrderRequest{VendorID: active.ID.String(), Lines: []OrderLineInput{{Name: "x", Quantity: "0.0004", UnitCost: "1"}}}, ErrInvalidQuantity},
		{"negative cost", CreateOrderRequest{VendorID: active.ID.String(), Lines: []OrderLineInput{{Name: "x", Quantity: "1", UnitCost: "-1"}}}, ErrInvalidCost},
		{"missing name", CreateOrderRequest{VendorID: active.ID.String(), Lines: []OrderLineInput{{Quantity: "1", UnitCost: "1"}}}, ErrLineNameRequired},
		{"product of another vendor", CreateOrderRequest{VendorID: active.ID.String(), Lines: []OrderLineInput{{VendorProductID: foreign.ID.String(), Quantity: "1"}}}, ErrVendorProductNotFound},
		{"unknown item", CreateOrderRequest{VendorID: active.ID.String(), Lines: []OrderLineInput{{InventoryItemID: uuid.NewString(), Quantity: "1"}}}, ErrInventoryItemNotFound},
	}

	svc, _ := newTestPurchasing(db)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OutletID = db.outletID
			_, err := svc.CreateOrder(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(db.orders) != 0 {
		t.Errorf("no order should be created, got %d", len(db.orders))
	}
}

func TestCreateOrder_LineErrorCarriesIndex(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	svc, _ := newTestPurchasing(db)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Lines: []OrderLineInput{
			{Name: "ok", Quantity: "1", UnitCost: "1"},
			{Name: "bad", Quantity: "abc", UnitCost: "1"},
		},
	})
	if err == nil || err.Error() != "line[1]: quantity must be > 0" {
		t.Fatalf("error = %v", err)
	}
}

func TestCreateOrder_RetriesOnPONumberConflict(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	db.createOrderErr = func(call int) error {
		if call == 1 {
			return uniqueViolation(poNumberConstraint)
		}
		return nil
	}
	svc, pool := newTestPurchasing(db)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Lines:    []OrderLineInput{{Name: "Basil", Quantity: "1", UnitCost: "2"}},
	})
	if err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if db.createOrderCalls != 2 {
		t.Errorf("expected 2 CreatePurchaseOrder calls, got %d", db.createOrderCalls)
	}
	if pool.began != 2 {
		t.Errorf("expected 2 transactions, got %d", pool.began)
	}
}

func TestCreateOrder_RetriesExhausted(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	db.createOrderErr = func(int) error { return uniqueViolation(poNumberConstraint) }
	svc, _ := newTestPurchasing(db)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Lines:    []OrderLineInput{{Name: "Basil", Quantity: "1", UnitCost: "2"}},
	})
	if !isUniqueViolation(err, poNumberConstraint) {
		t.Fatalf("expected the unique violation after exhausting retries, got: %v", err)
	}
	if db.createOrderCalls != maxNumberRetries {
		t.Errorf("expected %d calls, got %d", maxNumberRetries, db.createOrderCalls)
	}
}

func TestCreateOrder_OtherErrorNotRetried(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	db.createOrderErr = func(int) error { return uniqueViolation("some_other_key") }
	svc, _ := newTestPurchasing(db)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Lines:    []OrderLineInput{{Name: "Basil", Quantity: "1", UnitCost: "2"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if db.createOrderCalls != 1 {
		t.Errorf("expected 1 call (no retry), got %d", db.createOrderCalls)
	}
}

func TestCreateOrder_BeginError(t *testing.T) {
	db := newFakeDB()
	vendor := db.addVendor(enum.VendorStatusActive)
	pool := &mockTxBeginner{err: errors.New("connection refused")}
	svc := NewPurchasingService(pool, func(database.DBTX) PurchasingStore { return db }, decimal.Zero)

	_, err := svc.CreateOrder(context.Background(), CreateOrderRequest{
		OutletID: db.outletID,
		VendorID: vendor.ID.String(),
		Lines:    []OrderLineInput{{Name: "Basil", Quantity: "1", UnitCost: "2"}},
	})
	if err == nil || err.Error() != "begin tx: connection refused" {
		t.Fatalf("error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// UpdateOrder
// ---------------------------------------------------------------------------

func TestUpdateOrder_ReplacesLinesAndRecomputesTotal(t *testing.T) {
	db := newFakeDB()
	order := db.addOrder(enum.PurchaseOrderStatusOpen, database.PurchaseOrderItem{
		Name: "Old", Quantity: num("1"), UnitCost: num("100"), LineTotal: num("100"),
	})
	order.Total = num("100")
	db.orders[order.ID] = order

	svc, _ := newTestPurchasing(db)
	res, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OutletID:     db.outletID,
		OrderID:      order.ID,
		DeliveryDate: "2024-05-09",
		Memo:         "back door",
		Lines: []OrderLineInput{
			{Name: "Parsley", Quantity: "4", UnitCost: "0.75"},
			{Name: "Dill", Quantity: "2", UnitCost: "1.2"},
		},
	})
	if err != nil {
		t.Fatalf("UpdateOrder: %v", err)
	}
	if !numericEquals(res.Order.Total, "5.40") {
		t.Errorf("total = %s, want 5.40", pgconv.String(res.Order.Total))
	}
	if len(db.orderItems[order.ID]) != 2 {
		t.Errorf("expected 2 stored lines, got %d", len(db.orderItems[order.ID]))
	}
	if res.Order.Memo.String != "back door" || pgconv.DateString(res.Order.DeliveryDate) != "2024-05-09" {
		t.Errorf("details not updated: %+v", res.Order)
	}
}

func TestUpdateOrder_NotEditable(t *testing.T) {
	for _, status := range []string{enum.PurchaseOrderStatusSent, enum.PurchaseOrderStatusReceived, enum.PurchaseOrderStatusClosed} {
		t.Run(status, func(t *testing.T) {
			db := newFakeDB()
			order := db.addOrder(status)
			svc, _ := newTestPurchasing(db)

			_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
				OutletID: db.outletID,
				OrderID:  order.ID,
				Lines:    []OrderLineInput{{Name: "x", Quantity: "1", UnitCost: "1"}},
			})
			if !errors.Is(err, ErrOrderNotEditable) {
				t.Fatalf("error = %v, want ErrOrderNotEditable", err)
			}
		})
	}
}

func TestUpdateOrder_NotFound(t *testing.T) {
	db := newFakeDB()
	svc, _ := newTestPurchasing(db)
	_, err := svc.UpdateOrder(context.Background(), UpdateOrderRequest{
		OutletID: db.outletID,
		OrderID:  uuid.New(),
		Lines:    []OrderLineInput{{Name: "x", Quantity: "1", UnitCost: "1"}},
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("error = %v, want ErrOrderNotFound", err)
	}
}

// ---------------------------------------------------------------------------
// TransitionOrder
// ---------------------------------------------------------------------------

func TestTransitionOrder(t *testing.T) {
	tests := []struct {
		from   string
		action string
		want   string
		err    error
	}{
		{enum.PurchaseOrderStatusDraft, ActionSubmit, enum.PurchaseOrderStatusOpen, nil},
		{enum.PurchaseOrderStatusOpen, ActionSend, enum.PurchaseOrderStatusSent, nil},
		{enum.PurchaseOrderStatusSent, ActionNeedReceipt, enum.PurchaseOrderStatusNeedsReceiving, nil},
		{enum.PurchaseOrderStatusPartiallyReceived, ActionClose, enum.PurchaseOrderStatusClosed, nil},
		{enum.PurchaseOrderStatusDraft, ActionSend, "", ErrInvalidTransition},
		{enum.PurchaseOrderStatusClosed, ActionSubmit, "", ErrInvalidTransition},
		{enum.PurchaseOrderStatusClosed, ActionClose, "", ErrInvalidTransition},
		{enum.PurchaseOrderStatusDraft, "approve", "", ErrInvalidAction},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.from, tt.action), func(t *testing.T) {
			db := newFakeDB()
			order := db.addOrder(tt.from)
			svc, _ := newTestPurchasing(db)

			got, err := svc.TransitionOrder(context.Background(), db.outletID, order.ID, tt.action)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("error = %v, want %v", err, tt.err)
				}
				if db.orders[order.ID].Status != tt.from {
					t.Errorf("status changed to %s on failure", db.orders[order.ID].Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("TransitionOrder: %v", err)
			}
			if got.Status != tt.want {
				t.Errorf("status = %s, want %s", got.Status, tt.want)
			}
		})
	}
}

func TestTransitionOrder_ConcurrentChange(t *testing.T) {
	db := newFakeDB()
	order := db.addOrder(enum.PurchaseOrderStatusOpen)
	db.beforeStatusUpdate = func() {
		o := db.orders[order.ID]
		o.Status = enum.PurchaseOrderStatusClosed
		db.orders[order.ID] = o
	}
	svc, pool := newTestPurchasing(db)

	_, err := svc.TransitionOrder(context.Background(), db.outletID, order.ID, ActionSend)
	if !errors.Is(err, ErrStatusConflict) {
		t.Fatalf("error = %v, want ErrStatusConflict", err)
	}
	if pool.tx.committed {
		t.Error("conflict must not commit")
	}
}

// ---------------------------------------------------------------------------
// ReceiveOrder
// ---------------------------------------------------------------------------

func receivingFixture(t *testing.T) (*fakeDB, database.PurchaseOrder, database.InventoryItem) {
	t.Helper()
	db := newFakeDB()
	flour := db.addItem("Flour", "KG", "1.5", "2")
	order := db.addOrder(enum.PurchaseOrderStatusSent,
		database.PurchaseOrderItem{Name: "Flour", InventoryItemID: pgconv.UUID(flour.ID), Quantity: num("10"), UnitCost: num("1.5")},
		database.PurchaseOrderItem{Name: "Crate deposit", Quantity: num("1"), UnitCost: num("4")},
	)
	return db, order, flour
}

func TestReceiveOrder_PartialThenFull(t *testing.T) {
	db, order, flour := receivingFixture(t)
	lines := db.orderItems[order.ID]
	svc, _ := newTestPurchasing(db)
	ctx := context.Background()

	res, err := svc.ReceiveOrder(ctx, ReceiveRequest{
		OutletID: db.outletID,
		OrderID:  order.ID,
		Lines: []ReceiveLineInput{
			{ItemID: lines[0].ID.String(), Quantity: "4"},
			{ItemID: lines[0].ID.String(), Quantity: "2"},
			{ItemID: lines[1].ID.String(), Quantity: "0"},
		},
	})
	if err != nil {
		t.Fatalf("first receive: %v", err)
	}
	if res.Order.Status != enum.PurchaseOrderStatusPartiallyReceived {
		t.Errorf("status = %s, want PARTIALLY_RECEIVED", res.Order.Status)
	}
	if !numericEquals(res.Items[0].ReceivedQuantity, "6") {
		t.Errorf("received = %s, want 6", pgconv.String(res.Items[0].ReceivedQuantity))
	}
	if !numericEquals(db.items[flour.ID].OnHand, "8") {
		t.Errorf("on_hand = %s, want 8", pgconv.String(db.items[flour.ID].OnHand))
	}

	res, err = svc.ReceiveOrder(ctx, ReceiveRequest{
		OutletID: db.outletID,
		OrderID:  order.ID,
		Lines: []ReceiveLineInput{
			{ItemID: lines[0].ID.String(), Quantity: "4"},
			{ItemID: lines[1].ID.String(), Quantity: "1"},
		},
	})
	if err != nil {
		t.Fatalf("second receive: %v", err)
	}
	if res.Order.Status != enum.PurchaseOrderStatusReceived {
		t.Errorf("status = %s, want RECEIVED", res.Order.Status)
	}
	if !numericEquals(db.items[flour.ID].OnHand, "12") {
		t.Errorf("on_hand = %s, want 12", pgconv.String(db.items[flour.ID].OnHand))
	}
}

func TestReceiveOrder_Errors(t *testing.T) {
	db, order, _ := receivingFixture(t)
	line := db.orderItems[order.ID][0]
	draft := db.addOrder(enum.PurchaseOrderStatusDraft, database.PurchaseOrderItem{Name: "x", Quantity: num("1"), UnitCost: num("1")})
	svc, _ := newTestPurchasing(db)

	tests := []struct {
		name    string
		orderID uuid.UUID
		lines   []ReceiveLineInput
		want    error
	}{
		{"no lines", order.ID, nil, ErrNoLines},
		{"unknown order", uuid.New(), []ReceiveLineInput{{ItemID: line.ID.String(), Quantity: "1"}}, ErrOrderNotFound},
		{"draft order", draft.ID, []ReceiveLineInput{{ItemID: db.orderItems[draft.ID][0].ID.String(), Quantity: "1"}}, ErrOrderNotReceivable},
		{"foreign line", order.ID, []ReceiveLineInput{{ItemID: uuid.NewString(), Quantity: "1"}}, ErrUnknownLine},
		{"negative", order.ID, []ReceiveLineInput{{ItemID: line.ID.String(), Quantity: "-1"}}, ErrNegativeQuantity},
		{"all zero", order.ID, []ReceiveLineInput{{ItemID: line.ID.String(), Quantity: "0"}}, ErrNothingReceived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ReceiveOrder(context.Background(), ReceiveRequest{
				OutletID: db.outletID,
				OrderID:  tt.orderID,
				Lines:    tt.lines,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReceiveOrder_OverReceiptCountsAsReceived(t *testing.T) {
	db, order, flour := receivingFixture(t)
	lines := db.orderItems[order.ID]
	svc, _ := newTestPurchasing(db)

	res, err := svc.ReceiveOrder(context.Background(), ReceiveRequest{
		OutletID: db.outletID,
		OrderID:  order.ID,
		Lines: []ReceiveLineInput{
			{ItemID: lines[0].ID.String(), Quantity: "12"},
			{ItemID: lines[1].ID.String(), Quantity: "1"},
		},
	})
	if err != nil {
		t.Fatalf("ReceiveOrder: %v", err)
	}
	if res.Order.Status != enum.PurchaseOrderStatusReceived {
		t.Errorf("status = %s, want RECEIVED", res.Order.Status)
	}
	if !numericEquals(db.items[flour.ID].OnHand, "14") {
		t.Errorf("on_hand = %s, want 14", pgconv.String(db.items[flour.ID].OnHand))
	}
}

// ---------------------------------------------------------------------------
// CreateInvoice
// ---------------------------------------------------------------------------

func TestCreateInvoice_FromOrder(t *testing.T) {
	db, order, _ := receivingFixture(t)
	o := db.orders[order.ID]
	o.Status = enum.PurchaseOrderStatusReceived
	db.orders[order.ID] = o
	svc, pool := newTestPurchasing(db)

	res, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		OutletID:    db.outletID,
		OrderID:     order.ID,
		InvoiceDate: "2024-05-10",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}

	inv := res.Invoice
	if inv.InvoiceNumber != "INV-2024-001" {
		t.Errorf("invoice_number = %q, want INV-2024-001", inv.InvoiceNumber)
	}
	if inv.Status != enum.InvoiceStatusPending {
		t.Errorf("status = %s, want PENDING", inv.Status)
	}
	// 10*1.5 + 1*4 = 19.00, 6% = 1.14
	for field, pair := range map[string]struct {
		got  string
		want string
	}{
		"subtotal": {pgconv.StringFixed(inv.Subtotal, 2), "19.00"},
		"gst":      {pgconv.StringFixed(inv.GstAmount, 2), "1.14"},
		"total":    {pgconv.StringFixed(inv.Total, 2), "20.14"},
		"gst_rate": {pgconv.StringFixed(inv.GstRate, 2), "6.00"},
	} {
		if pair.got != pair.want {
			t.Errorf("%s = %s, want %s", field, pair.got, pair.want)
		}
	}
	if len(res.Items) != 2 {
		t.Fatalf("expected 2 invoice items, got %d", len(res.Items))
	}
	if db.orders[order.ID].Status != enum.PurchaseOrderStatusClosed {
		t.Errorf("order status = %s, want CLOSED", db.orders[order.ID].Status)
	}
	if !pool.tx.committed {
		t.Error("expected commit")
	}
}

func TestCreateInvoice_OverridesAndRate(t *testing.T) {
	db, order, _ := receivingFixture(t)
	lines := db.orderItems[order.ID]
	svc, _ := newTestPurchasing(db)

	res, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		OutletID:      db.outletID,
		OrderID:       order.ID,
		InvoiceNumber: "HP-7781",
		GSTRate:       "0",
		Lines: []InvoiceLineInput{
			{ItemID: lines[0].ID.String(), Quantity: "8", UnitCost: "1.4"},
		},
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if res.Invoice.InvoiceNumber != "HP-7781" {
		t.Errorf("invoice_number = %q", res.Invoice.InvoiceNumber)
	}
	// 8*1.4 + 1*4 = 15.20, no GST
	if !numericEquals(res.Invoice.Total, "15.20") || !numericEquals(res.Invoice.GstAmount, "0") {
		t.Errorf("total = %s gst = %s", pgconv.String(res.Invoice.Total), pgconv.String(res.Invoice.GstAmount))
	}
	if !numericEquals(res.Items[0].LineTotal, "11.20") {
		t.Errorf("line total = %s, want 11.20", pgconv.String(res.Items[0].LineTotal))
	}
}

func TestCreateInvoice_SequenceContinuesWithinYear(t *testing.T) {
	db, order, _ := receivingFixture(t)
	db.invoices[uuid.New()] = database.Invoice{OutletID: db.outletID, InvoiceNumber: "INV-2024-007"}
	db.invoices[uuid.New()] = database.Invoice{OutletID: db.outletID, InvoiceNumber: "INV-2023-041"}
	svc, _ := newTestPurchasing(db)

	res, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		OutletID:    db.outletID,
		OrderID:     order.ID,
		InvoiceDate: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	if res.Invoice.InvoiceNumber != "INV-2024-008" {
		t.Errorf("invoice_number = %q, want INV-2024-008", res.Invoice.InvoiceNumber)
	}
}

func TestCreateInvoice_Errors(t *testing.T) {
	db, order, _ := receivingFixture(t)
	db.invoices[uuid.New()] = database.Invoice{OutletID: db.outletID, InvoiceNumber: "HP-1"}
	draft := db.addOrder(enum.PurchaseOrderStatusDraft)
	svc, _ := newTestPurchasing(db)

	tests := []struct {
		name string
		req  CreateInvoiceRequest
		want error
	}{
		{"duplicate number", CreateInvoiceRequest{OrderID: order.ID, InvoiceNumber: "HP-1"}, ErrDuplicateInvoice},
		{"draft order", CreateInvoiceRequest{OrderID: draft.ID}, ErrOrderNotInvoiceable},
		{"unknown order", CreateInvoiceRequest{OrderID: uuid.New()}, ErrOrderNotFound},
		{"negative rate", CreateInvoiceRequest{OrderID: order.ID, GSTRate: "-1"}, ErrInvalidGSTRate},
		{"bad due date", CreateInvoiceRequest{OrderID: order.ID, DueDate: "soon"}, ErrInvalidDate},
		{"foreign line", CreateInvoiceRequest{OrderID: order.ID, Lines: []InvoiceLineInput{{ItemID: uuid.NewString(), Quantity: "1"}}}, ErrUnknownLine},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.OutletID = db.outletID
			_, err := svc.CreateInvoice(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
	if db.orders[order.ID].Status != enum.PurchaseOrderStatusSent {
		t.Errorf("order status changed to %s", db.orders[order.ID].Status)
	}
}

func TestCreateInvoice_SuppliedNumberRaceIsDuplicate(t *testing.T) {
	db, order, _ := receivingFixture(t)
	db.createInvoiceErr = func(int) error { return uniqueViolation(invoiceNumberConstraint) }
	svc, _ := newTestPurchasing(db)

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		OutletID:      db.outletID,
		OrderID:       order.ID,
		InvoiceNumber: "HP-9",
	})
	if !errors.Is(err, ErrDuplicateInvoice) {
		t.Fatalf("error = %v, want ErrDuplicateInvoice", err)
	}
	if db.createInvoiceCalls != 1 {
		t.Errorf("supplied numbers must not be retried, got %d calls", db.createInvoiceCalls)
	}
}

func TestCreateInvoice_GeneratedNumberRetried(t *testing.T) {
	db, order, _ := receivingFixture(t)
	db.createInvoiceErr = func(call int) error {
		if call == 1 {
			return uniqueViolation(invoiceNumberConstraint)
		}
		return nil
	}
	svc, _ := newTestPurchasing(db)

	if _, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		OutletID: db.outletID,
		OrderID:  order.ID,
	}); err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if db.createInvoiceCalls != 2 {
		t.Errorf("expected 2 CreateInvoice calls, got %d", db.createInvoiceCalls)
	}
}
