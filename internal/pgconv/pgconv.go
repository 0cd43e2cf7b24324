// Package pgconv converts between pgtype values and the Go types the
// handlers and services work with.
package pgconv

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Scales of the NUMERIC columns values are stored in.
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 3
	UnitCostPlaces int32 = 4
)

// Decimal returns zero for NULL or unparseable values.
func Decimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Numeric stores d as a money value with two decimal places.
func Numeric(d decimal.Decimal) pgtype.Numeric {
	return NumericFixed(d, MoneyPlaces)
}

// NumericFixed stores d rounded to the given number of places.
func NumericFixed(d decimal.Decimal, places int32) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(places))
	return n
}

// Quantity stores d with the three places used for stock quantities.
func Quantity(d decimal.Decimal) pgtype.Numeric {
	return NumericFixed(d, QuantityPlaces)
}

// UnitCost stores d with the four places used for unit prices.
func UnitCost(d decimal.Decimal) pgtype.Numeric {
	return NumericFixed(d, UnitCostPlaces)
}

// String renders n with two decimal places.
func String(n pgtype.Numeric) string {
	return Decimal(n).StringFixed(2)
}

// StringFixed renders n with the given number of places.
func StringFixed(n pgtype.Numeric, places int32) string {
	return Decimal(n).StringFixed(places)
}

// Text maps the empty string to NULL.
func Text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func TextPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func UUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// ParseUUID maps the empty string to NULL.
func ParseUUID(s string) (pgtype.UUID, error) {
	if s == "" {
		return pgtype.UUID{}, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{}, err
	}
	return UUID(id), nil
}

func UUIDPtr(u pgtype.UUID) *string {
	if !u.Valid {
		return nil
	}
	s := uuid.UUID(u.Bytes).String()
	return &s
}

func Date(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

// ParseDate maps the empty string to NULL.
func ParseDate(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return pgtype.Date{}, err
	}
	return Date(t), nil
}

func DateString(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

func DatePtr(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(DateLayout)
	return &s
}

func TimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
