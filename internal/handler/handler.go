// Package handler holds the HTTP handlers. Each handler owns a narrow store
// interface satisfied by *database.Queries, and multi-row writes go through
// a service or a handler-level transaction.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/larder-pos/api/internal/service"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func internalError(w http.ResponseWriter, op string, err error) {
	zap.L().Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func uniqueConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName
	}
	return ""
}

// urlUUID parses a path parameter. On failure it writes a 400 naming what
// was invalid and returns false.
func urlUUID(w http.ResponseWriter, r *http.Request, param, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit (default 20, max 100) and offset from the query.
func pagination(r *http.Request) (limit, offset int) {
	limit = defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

var notFoundErrors = []error{
	service.ErrOrderNotFound,
	service.ErrInvoiceNotFound,
	service.ErrCountNotFound,
	service.ErrRecipeNotFound,
}

var conflictErrors = []error{
	service.ErrInvalidTransition,
	service.ErrStatusConflict,
	service.ErrOrderNotEditable,
	service.ErrOrderNotReceivable,
	service.ErrOrderNotInvoiceable,
	service.ErrDuplicateInvoice,
	service.ErrInvoiceLocked,
	service.ErrCountPosted,
	service.ErrNothingCounted,
	service.ErrDuplicateRecipe,
}

var validationErrors = []error{
	service.ErrNoLines,
	service.ErrInvalidVendorID,
	service.ErrVendorNotFound,
	service.ErrVendorInactive,
	service.ErrVendorProductNotFound,
	service.ErrInventoryItemNotFound,
	service.ErrLineNameRequired,
	service.ErrInvalidAction,
	service.ErrUnknownLine,
	service.ErrNothingReceived,
	service.ErrInvalidGSTRate,
	service.ErrInvalidQuantity,
	service.ErrNegativeQuantity,
	service.ErrInvalidCost,
	service.ErrInvalidDate,
	service.ErrInvalidID,
	service.ErrInvalidFrequency,
	service.ErrRecipeNameRequired,
	service.ErrInvalidRecipeKind,
	service.ErrInvalidYield,
	service.ErrInvalidMenuPrice,
	service.ErrFoodCostOutOfRange,
	service.ErrInvalidUnit,
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// serviceError maps a service error onto a response. Unknown errors are
// logged under op and reported as 500.
func serviceError(w http.ResponseWriter, op string, err error) {
	switch {
	case matchesAny(err, notFoundErrors):
		writeError(w, http.StatusNotFound, err.Error())
	case matchesAny(err, conflictErrors):
		writeError(w, http.StatusConflict, err.Error())
	case matchesAny(err, validationErrors):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, op, err)
	}
}
