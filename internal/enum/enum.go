package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	PurchaseOrderStatusDraft             = "DRAFT"
	PurchaseOrderStatusOpen              = "OPEN"
	PurchaseOrderStatusSent              = "SENT"
	PurchaseOrderStatusNeedsReceiving    = "NEEDS_RECEIVING"
	PurchaseOrderStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          = "RECEIVED"
	PurchaseOrderStatusClosed            = "CLOSED"
)

const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusPending   = "PENDING"
	InvoiceStatusFinalized = "FINALIZED"
	InvoiceStatusRejected  = "REJECTED"
)

const (
	CountStatusDraft  = "DRAFT"
	CountStatusPosted = "POSTED"
)

const (
	TableStatusAvailable = "AVAILABLE"
	TableStatusOccupied  = "OCCUPIED"
	TableStatusDirty     = "DIRTY"
	TableStatusReserved  = "RESERVED"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleBuyer   = "BUYER"
	UserRoleChef    = "CHEF"
	UserRoleServer  = "SERVER"
)

const (
	VendorStatusActive   = "ACTIVE"
	VendorStatusExcluded = "EXCLUDED"
)

const (
	ItemTypeRaw  = "RAW"
	ItemTypePrep = "PREP"
	ItemTypeMenu = "MENU"
)

const (
	RecipeKindMenu = "MENU"
	RecipeKindPrep = "PREP"
)

const (
	BillCategoryPettyCash     = "PETTY_CASH"
	BillCategoryLocalPurchase = "LOCAL_PURCHASE"
	BillCategoryUrgentBuy     = "URGENT_BUY"
	BillCategoryMisc          = "MISC"
)

const (
	WasteReasonExpired            = "EXPIRED"
	WasteReasonSpilledDamaged     = "SPILLED_DAMAGED"
	WasteReasonPreparationMistake = "PREPARATION_MISTAKE"
	WasteReasonOverproduction     = "OVERPRODUCTION"
	WasteReasonReturned           = "RETURNED"
)

const (
	CountFrequencyDaily   = "DAILY"
	CountFrequencyWeekly  = "WEEKLY"
	CountFrequencyMonthly = "MONTHLY"
)

// ── Group B: Configurable labels (no DB constraint) ──

// Units accepted on recipe ingredient lines.
const (
	UnitEach    = "EA"
	UnitKilo    = "KG"
	UnitGram    = "GM"
	UnitPound   = "LB"
	UnitOunce   = "OZ"
	UnitLitre   = "L"
	UnitMilli   = "ML"
	UnitGallon  = "GAL"
	UnitQuart   = "QT"
	UnitPint    = "PT"
	UnitCase    = "CS"
	UnitHead    = "HD"
	UnitServing = "SRV"
)

const (
	BillSupplierDefault  = "(No supplier)"
	BillReferenceDefault = "-"
)

// IsRecipeUnit reports whether u is one of the recipe units above.
func IsRecipeUnit(u string) bool {
	switch u {
	case UnitEach, UnitKilo, UnitGram, UnitPound, UnitOunce, UnitLitre, UnitMilli,
		UnitGallon, UnitQuart, UnitPint, UnitCase, UnitHead, UnitServing:
		return true
	}
	return false
}
