// Package service holds the multi-row write paths. Each operation runs in
// one transaction obtained from a TxBeginner and talks to the database
// through a narrow store built by a factory over that transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// maxNumberRetries bounds retries when two transactions generate the same
// document number and the unique constraint rejects the second insert.
const maxNumberRetries = 3

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Errors shared by several services.
var (
	ErrInvalidQuantity  = errors.New("quantity must be > 0")
	ErrNegativeQuantity = errors.New("quantity must be >= 0")
	ErrInvalidCost      = errors.New("unit cost must be >= 0")
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidID        = errors.New("invalid id")
	ErrStatusConflict   = errors.New("status changed, please retry")
)

// isUniqueViolation reports whether err is a 23505 on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}

// withNumberRetry runs fn until it succeeds, fails with something other
// than a conflict on constraint, or runs out of attempts.
func withNumberRetry[T any](constraint string, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < maxNumberRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		if isUniqueViolation(err, constraint) {
			lastErr = err
			continue
		}
		return zero, err
	}
	return zero, lastErr
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// parsePositive parses a quantity rounded to places. It must still be > 0
// after rounding, since the stored column would otherwise hold zero.
func parsePositive(s string, places int32) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, ErrInvalidQuantity
	}
	d = d.Round(places)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidQuantity
	}
	return d, nil
}

// parseNonNegative parses a value rounded to places that must be >= 0,
// returning errBad otherwise.
func parseNonNegative(s string, places int32, errBad error) (decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, errBad
	}
	d = d.Round(places)
	if d.IsNegative() {
		return decimal.Zero, errBad
	}
	return d, nil
}

// today truncates now to a calendar date in UTC.
func today() time.Time {
	y, m, d := time.Now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lineErr(i int, err error) error {
	return fmt.Errorf("line[%d]: %w", i, err)
}
