package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/larder-pos/api/internal/database"
	"github.com/larder-pos/api/internal/enum"
	"github.com/larder-pos/api/internal/pgconv"
	"github.com/shopspring/decimal"
)

const (
	vendorCodeConstraint = "vendors_outlet_id_code_key"
	maxVendorCodeRetries = 3
)

// VendorStore defines the database methods needed by vendor handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type VendorStore interface {
	ListVendors(ctx context.Context, arg database.ListVendorsParams) ([]database.Vendor, error)
	GetVendor(ctx context.Context, arg database.GetVendorParams) (database.Vendor, error)
	GetNextVendorNumber(ctx context.Context, outletID uuid.UUID) (int32, error)
	CreateVendor(ctx context.Context, arg database.CreateVendorParams) (database.Vendor, error)
	UpdateVendor(ctx context.Context, arg database.UpdateVendorParams) (database.Vendor, error)
	UpdateVendorStatus(ctx context.Context, arg database.UpdateVendorStatusParams) (database.Vendor, error)

	ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]database.VendorProduct, error)
	CreateVendorProduct(ctx context.Context, arg database.CreateVendorProductParams) (database.VendorProduct, error)
	UpdateVendorProduct(ctx context.Context, arg database.UpdateVendorProductParams) (database.VendorProduct, error)

	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
}

// VendorHandler handles vendor and vendor catalog endpoints.
type VendorHandler struct {
	store VendorStore
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(store VendorStore) *VendorHandler {
	return &VendorHandler{store: store}
}

// RegisterRoutes registers vendor endpoints on the given Chi router.
// Expected to be mounted at /outlets/{oid}/vendors
func (h *VendorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Post("/{id}/products", h.AddProduct)
	r.Put("/{id}/products/{pid}", h.UpdateProduct)
}

// --- Request / Response types ---

type vendorRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type vendorStatusRequest struct {
	Status string `json:"status"`
}

type vendorProductRequest struct {
	InventoryItemID string `json:"inventory_item_id"`
	Name            string `json:"name"`
	Sku             string `json:"sku"`
	Unit            string `json:"unit"`
	Price           string `json:"price"`
}

type vendorResponse struct {
	ID          uuid.UUID               `json:"id"`
	Code        string                  `json:"code"`
	Name        string                  `json:"name"`
	ContactName *string                 `json:"contact_name"`
	Email       *string                 `json:"email"`
	Phone       *string                 `json:"phone"`
	Status      string                  `json:"status"`
	CreatedAt   time.Time               `json:"created_at"`
	Products    []vendorProductResponse `json:"products,omitempty"`
}

type vendorProductResponse struct {
	ID              uuid.UUID `json:"id"`
	VendorID        uuid.UUID `json:"vendor_id"`
	InventoryItemID *string   `json:"inventory_item_id"`
	Name            string    `json:"name"`
	Sku             string    `json:"sku"`
	Unit            string    `json:"unit"`
	Price           string    `json:"price"`
}

func toVendorResponse(v database.Vendor) vendorResponse {
	return vendorResponse{
		ID:          v.ID,
		Code:        v.Code,
		Name:        v.Name,
		ContactName: pgconv.TextPtr(v.ContactName),
		Email:       pgconv.TextPtr(v.Email),
		Phone:       pgconv.TextPtr(v.Phone),
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
	}
}

func toVendorProductResponse(p database.VendorProduct) vendorProductResponse {
	return vendorProductResponse{
		ID:              p.ID,
		VendorID:        p.VendorID,
		InventoryItemID: pgconv.UUIDPtr(p.InventoryItemID),
		Name:            p.Name,
		Sku:             p.Sku,
		Unit:            p.Unit,
		Price:           pgconv.StringFixed(p.Price, 4),
	}
}

// --- Handlers ---

// List handles GET /outlets/{oid}/vendors?q=&status=
func (h *VendorHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	if status != "" && !isValidVendorStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	vendors, err := h.store.ListVendors(r.Context(), database.ListVendorsParams{
		OutletID: outletID,
		Status:   pgconv.Text(status),
		Search:   pgconv.Text(strings.TrimSpace(r.URL.Query().Get("q"))),
	})
	if err != nil {
		internalError(w, "list vendors", err)
		return
	}

	resp := make([]vendorResponse, len(vendors))
	for i, v := range vendors {
		resp[i] = toVendorResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /outlets/{oid}/vendors/{id}, including the catalog.
func (h *VendorHandler) Get(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.loadVendor(w, r)
	if !ok {
		return
	}

	products, err := h.store.ListVendorProducts(r.Context(), vendor.ID)
	if err != nil {
		internalError(w, "list vendor products", err)
		return
	}

	resp := toVendorResponse(vendor)
	resp.Products = make([]vendorProductResponse, len(products))
	for i, p := range products {
		resp.Products[i] = toVendorProductResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create handles POST /outlets/{oid}/vendors. A missing code is generated
// as V-NNN; a generated code that collides is regenerated.
func (h *VendorHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}

	var req vendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}

	params := database.CreateVendorParams{
		OutletID:    outletID,
		Code:        req.Code,
		Name:        req.Name,
		ContactName: pgconv.Text(strings.TrimSpace(req.ContactName)),
		Email:       pgconv.Text(strings.TrimSpace(req.Email)),
		Phone:       pgconv.Text(strings.TrimSpace(req.Phone)),
	}

	var (
		vendor database.Vendor
		err    error
	)
	for attempt := 0; attempt < maxVendorCodeRetries; attempt++ {
		if req.Code == "" {
			next, nerr := h.store.GetNextVendorNumber(r.Context(), outletID)
			if nerr != nil {
				internalError(w, "create vendor: next number", nerr)
				return
			}
			params.Code = fmt.Sprintf("V-%03d", int(next)+attempt)
		}
		vendor, err = h.store.CreateVendor(r.Context(), params)
		if err == nil || req.Code != "" || uniqueConstraint(err) != vendorCodeConstraint {
			break
		}
	}
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "vendor code already exists")
			return
		}
		internalError(w, "create vendor", err)
		return
	}

	writeJSON(w, http.StatusCreated, toVendorResponse(vendor))
}

// Update handles PUT /outlets/{oid}/vendors/{id}. The code is immutable.
func (h *VendorHandler) Update(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	vendorID, ok := urlUUID(w, r, "id", "vendor")
	if !ok {
		return
	}

	var req vendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Email != "" && !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email format")
		return
	}

	vendor, err := h.store.UpdateVendor(r.Context(), database.UpdateVendorParams{
		ID:          vendorID,
		OutletID:    outletID,
		Name:        req.Name,
		ContactName: pgconv.Text(strings.TrimSpace(req.ContactName)),
		Email:       pgconv.Text(strings.TrimSpace(req.Email)),
		Phone:       pgconv.Text(strings.TrimSpace(req.Phone)),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "vendor not found")
			return
		}
		internalError(w, "update vendor", err)
		return
	}

	writeJSON(w, http.StatusOK, toVendorResponse(vendor))
}

// UpdateStatus handles PATCH /outlets/{oid}/vendors/{id}/status.
func (h *VendorHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return
	}
	vendorID, ok := urlUUID(w, r, "id", "vendor")
	if !ok {
		return
	}

	var req vendorStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !isValidVendorStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "status must be ACTIVE or EXCLUDED")
		return
	}

	vendor, err := h.store.UpdateVendorStatus(r.Context(), database.UpdateVendorStatusParams{
		ID:       vendorID,
		OutletID: outletID,
		Status:   req.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "vendor not found")
			return
		}
		internalError(w, "update vendor status", err)
		return
	}

	writeJSON(w, http.StatusOK, toVendorResponse(vendor))
}

// AddProduct handles POST /outlets/{oid}/vendors/{id}/products.
func (h *VendorHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.loadVendor(w, r)
	if !ok {
		return
	}

	var req vendorProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fields, ok := h.validateProduct(w, r, vendor.OutletID, req)
	if !ok {
		return
	}

	product, err := h.store.CreateVendorProduct(r.Context(), database.CreateVendorProductParams{
		VendorID:        vendor.ID,
		InventoryItemID: fields.itemID,
		Name:            fields.name,
		Sku:             fields.sku,
		Unit:            fields.unit,
		Price:           pgconv.UnitCost(fields.price),
	})
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "sku already exists for this vendor")
			return
		}
		internalError(w, "create vendor product", err)
		return
	}

	writeJSON(w, http.StatusCreated, toVendorProductResponse(product))
}

// UpdateProduct handles PUT /outlets/{oid}/vendors/{id}/products/{pid}.
func (h *VendorHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	vendor, ok := h.loadVendor(w, r)
	if !ok {
		return
	}
	productID, ok := urlUUID(w, r, "pid", "product")
	if !ok {
		return
	}

	var req vendorProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	fields, ok := h.validateProduct(w, r, vendor.OutletID, req)
	if !ok {
		return
	}

	product, err := h.store.UpdateVendorProduct(r.Context(), database.UpdateVendorProductParams{
		ID:              productID,
		VendorID:        vendor.ID,
		InventoryItemID: fields.itemID,
		Name:            fields.name,
		Sku:             fields.sku,
		Unit:            fields.unit,
		Price:           pgconv.UnitCost(fields.price),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "vendor product not found")
			return
		}
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "sku already exists for this vendor")
			return
		}
		internalError(w, "update vendor product", err)
		return
	}

	writeJSON(w, http.StatusOK, toVendorProductResponse(product))
}

// --- Helpers ---

func (h *VendorHandler) loadVendor(w http.ResponseWriter, r *http.Request) (database.Vendor, bool) {
	outletID, ok := urlUUID(w, r, "oid", "outlet")
	if !ok {
		return database.Vendor{}, false
	}
	vendorID, ok := urlUUID(w, r, "id", "vendor")
	if !ok {
		return database.Vendor{}, false
	}

	vendor, err := h.store.GetVendor(r.Context(), database.GetVendorParams{ID: vendorID, OutletID: outletID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "vendor not found")
			return database.Vendor{}, false
		}
		internalError(w, "get vendor", err)
		return database.Vendor{}, false
	}
	return vendor, true
}

type productFields struct {
	itemID pgtype.UUID
	name   string
	sku    string
	unit   string
	price  decimal.Decimal
}

func (h *VendorHandler) validateProduct(w http.ResponseWriter, r *http.Request, outletID uuid.UUID, req vendorProductRequest) (productFields, bool) {
	f := productFields{
		name: strings.TrimSpace(req.Name),
		sku:  strings.TrimSpace(req.Sku),
		unit: strings.TrimSpace(req.Unit),
	}
	if f.name == "" || f.sku == "" || f.unit == "" {
		writeError(w, http.StatusBadRequest, "name, sku, and unit are required")
		return f, false
	}

	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "price must be >= 0")
		return f, false
	}
	f.price = price

	if req.InventoryItemID != "" {
		id, err := uuid.Parse(req.InventoryItemID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid inventory_item_id")
			return f, false
		}
		if _, err := h.store.GetInventoryItem(r.Context(), database.GetInventoryItemParams{ID: id, OutletID: outletID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusBadRequest, "inventory item not found")
				return f, false
			}
			internalError(w, "get inventory item", err)
			return f, false
		}
		f.itemID = pgconv.UUID(id)
	}
	return f, true
}

func isValidVendorStatus(s string) bool {
	return s == enum.VendorStatusActive || s == enum.VendorStatusExcluded
}
