package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Bill struct {
	ID         uuid.UUID      `json:"id"`
	OutletID   uuid.UUID      `json:"outlet_id"`
	BillNumber string         `json:"bill_number"`
	BillDate   pgtype.Date    `json:"bill_date"`
	Supplier   string         `json:"supplier"`
	Category   string         `json:"category"`
	Reference  string         `json:"reference"`
	PaidBy     string         `json:"paid_by"`
	GstRate    pgtype.Numeric `json:"gst_rate"`
	Subtotal   pgtype.Numeric `json:"subtotal"`
	GstAmount  pgtype.Numeric `json:"gst_amount"`
	Total      pgtype.Numeric `json:"total"`
	CreatedBy  uuid.UUID      `json:"created_by"`
	CreatedAt  time.Time      `json:"created_at"`
}

type BillItem struct {
	ID              uuid.UUID      `json:"id"`
	BillID          uuid.UUID      `json:"bill_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Description     string         `json:"description"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	UnitPrice       pgtype.Numeric `json:"unit_price"`
	LineTotal       pgtype.Numeric `json:"line_total"`
}

type DiningTable struct {
	ID         uuid.UUID          `json:"id"`
	OutletID   uuid.UUID          `json:"outlet_id"`
	Name       string             `json:"name"`
	Section    pgtype.Text        `json:"section"`
	Capacity   int32              `json:"capacity"`
	Status     string             `json:"status"`
	ServerName pgtype.Text        `json:"server_name"`
	Guests     pgtype.Int4        `json:"guests"`
	CheckTotal pgtype.Numeric     `json:"check_total"`
	SeatedAt   pgtype.Timestamptz `json:"seated_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type InventoryCount struct {
	ID           uuid.UUID          `json:"id"`
	OutletID     uuid.UUID          `json:"outlet_id"`
	CountNumber  string             `json:"count_number"`
	CountDate    pgtype.Date        `json:"count_date"`
	Frequency    string             `json:"frequency"`
	Location     pgtype.Text        `json:"location"`
	Status       string             `json:"status"`
	TotalItems   int32              `json:"total_items"`
	ItemsCounted int32              `json:"items_counted"`
	CreatedBy    uuid.UUID          `json:"created_by"`
	PostedAt     pgtype.Timestamptz `json:"posted_at"`
	CreatedAt    time.Time          `json:"created_at"`
}

type InventoryCountLine struct {
	ID               uuid.UUID      `json:"id"`
	CountID          uuid.UUID      `json:"count_id"`
	InventoryItemID  uuid.UUID      `json:"inventory_item_id"`
	CountedQuantity  pgtype.Numeric `json:"counted_quantity"`
	ExpectedQuantity pgtype.Numeric `json:"expected_quantity"`
}

type InventoryItem struct {
	ID            uuid.UUID      `json:"id"`
	OutletID      uuid.UUID      `json:"outlet_id"`
	Name          string         `json:"name"`
	Sku           string         `json:"sku"`
	Category      string         `json:"category"`
	ItemType      string         `json:"item_type"`
	Unit          string         `json:"unit"`
	UnitCost      pgtype.Numeric `json:"unit_cost"`
	ParLevel      pgtype.Numeric `json:"par_level"`
	OnHand        pgtype.Numeric `json:"on_hand"`
	Locations     []string       `json:"locations"`
	LastCountedAt pgtype.Date    `json:"last_counted_at"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Invoice struct {
	ID              uuid.UUID      `json:"id"`
	OutletID        uuid.UUID      `json:"outlet_id"`
	InvoiceNumber   string         `json:"invoice_number"`
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	VendorID        uuid.UUID      `json:"vendor_id"`
	Status          string         `json:"status"`
	InvoiceDate     pgtype.Date    `json:"invoice_date"`
	DueDate         pgtype.Date    `json:"due_date"`
	GstRate         pgtype.Numeric `json:"gst_rate"`
	Subtotal        pgtype.Numeric `json:"subtotal"`
	GstAmount       pgtype.Numeric `json:"gst_amount"`
	Total           pgtype.Numeric `json:"total"`
	CreatedBy       uuid.UUID      `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type InvoiceItem struct {
	ID                  uuid.UUID      `json:"id"`
	InvoiceID           uuid.UUID      `json:"invoice_id"`
	PurchaseOrderItemID pgtype.UUID    `json:"purchase_order_item_id"`
	Name                string         `json:"name"`
	Unit                string         `json:"unit"`
	Quantity            pgtype.Numeric `json:"quantity"`
	UnitCost            pgtype.Numeric `json:"unit_cost"`
	LineTotal           pgtype.Numeric `json:"line_total"`
}

type Outlet struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Address   pgtype.Text `json:"address"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type PurchaseOrder struct {
	ID           uuid.UUID      `json:"id"`
	OutletID     uuid.UUID      `json:"outlet_id"`
	PoNumber     string         `json:"po_number"`
	VendorID     uuid.UUID      `json:"vendor_id"`
	Status       string         `json:"status"`
	OrderDate    pgtype.Date    `json:"order_date"`
	DeliveryDate pgtype.Date    `json:"delivery_date"`
	Memo         pgtype.Text    `json:"memo"`
	Total        pgtype.Numeric `json:"total"`
	CreatedBy    uuid.UUID      `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type PurchaseOrderItem struct {
	ID               uuid.UUID      `json:"id"`
	PurchaseOrderID  uuid.UUID      `json:"purchase_order_id"`
	VendorProductID  pgtype.UUID    `json:"vendor_product_id"`
	InventoryItemID  pgtype.UUID    `json:"inventory_item_id"`
	Name             string         `json:"name"`
	Sku              string         `json:"sku"`
	Unit             string         `json:"unit"`
	Quantity         pgtype.Numeric `json:"quantity"`
	UnitCost         pgtype.Numeric `json:"unit_cost"`
	ReceivedQuantity pgtype.Numeric `json:"received_quantity"`
	LineTotal        pgtype.Numeric `json:"line_total"`
}

type Recipe struct {
	ID              uuid.UUID      `json:"id"`
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
	IsActive        bool           `json:"is_active"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type RecipeIngredient struct {
	ID              uuid.UUID      `json:"id"`
	RecipeID        uuid.UUID      `json:"recipe_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Name            string         `json:"name"`
	Quantity        pgtype.Numeric `json:"quantity"`
	Unit            string         `json:"unit"`
	UnitCost        pgtype.Numeric `json:"unit_cost"`
	SortOrder       int32          `json:"sort_order"`
}

type User struct {
	ID             uuid.UUID `json:"id"`
	OutletID       uuid.UUID `json:"outlet_id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"hashed_password"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Vendor struct {
	ID          uuid.UUID   `json:"id"`
	OutletID    uuid.UUID   `json:"outlet_id"`
	Code        string      `json:"code"`
	Name        string      `json:"name"`
	ContactName pgtype.Text `json:"contact_name"`
	Email       pgtype.Text `json:"email"`
	Phone       pgtype.Text `json:"phone"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type VendorProduct struct {
	ID              uuid.UUID      `json:"id"`
	VendorID        uuid.UUID      `json:"vendor_id"`
	InventoryItemID pgtype.UUID    `json:"inventory_item_id"`
	Name            string         `json:"name"`
	Sku             string         `json:"sku"`
	Unit            string         `json:"unit"`
	Price           pgtype.Numeric `json:"price"`
	CreatedAt       time.Time      `json:"created_at"`
}

type WasteEntry struct {
	ID              uuid.UUID      `json:"id"`
	OutletID        uuid.UUID      `json:"outlet_id"`
	WasteNumber     string         `json:"waste_number"`
	WastedAt        time.Time      `json:"wasted_at"`
	ItemType        string         `json:"item_type"`
	InventoryItemID uuid.UUID      `json:"inventory_item_id"`
	ItemName        string         `json:"item_name"`
	Unit            string         `json:"unit"`
	Quantity        pgtype.Numeric `json:"quantity"`
	UnitCost        pgtype.Numeric `json:"unit_cost"`
	Cost            pgtype.Numeric `json:"cost"`
	OnHandAtTime    pgtype.Numeric `json:"on_hand_at_time"`
	Reason          string         `json:"reason"`
	Notes           pgtype.Text    `json:"notes"`
	RecordedBy      uuid.UUID      `json:"recorded_by"`
	CreatedAt       time.Time      `json:"created_at"`
}
