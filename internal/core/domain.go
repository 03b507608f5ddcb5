package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	// Saving is a gold saving goal identified by its category name.
	// The completion percentage is never stored; see Percentage.
	Saving struct {
		Category    string
		Target      Rupiah
		TotalSaving Rupiah
	}

	// Transaction is one recorded gold purchase.
	Transaction struct {
		ID             int64 // assigned by storage
		Time           string
		SavingCategory string // free text, not a reference
		GoldPrice      Rupiah // per gram
		GoldQuantity   Grams
		Product        string
	}
)

var (
	ErrEmptyCategory   = errors.New("empty saving category")
	ErrEmptyProduct    = errors.New("empty product")
	ErrEmptyTime       = errors.New("empty date")
	ErrInvalidTime     = errors.New("unrecognised date")
	ErrInvalidPrice    = errors.New("invalid gold price")
	ErrInvalidQuantity = errors.New("invalid gold quantity")
	ErrInvalidTarget   = errors.New("invalid saving target")
	ErrValueTooLarge   = errors.New("transaction value too large")
)

var hundred = decimal.NewFromInt(100)

// Percentage returns TotalSaving/Target*100 rounded to one decimal place.
// A goal without a target reports 0.
func (s Saving) Percentage() float64 {
	if s.Target <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(s.TotalSaving)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(s.Target))).
		Round(1)
	return pct.InexactFloat64()
}

func (s Saving) Validate() error {
	if strings.TrimSpace(s.Category) == "" {
		return ErrEmptyCategory
	}
	if len(s.Category) > 100 {
		return errors.New("saving category too long (max 100 characters)")
	}
	if s.Target < 0 || s.TotalSaving < 0 || s.Target > MaxRupiah {
		return ErrInvalidTarget
	}
	return nil
}

// Value is the rupiah amount paid: price per gram times grams, rounded half-up.
// It is only meaningful for a transaction that passes Validate.
func (t Transaction) Value() Rupiah {
	v, _ := PurchaseValue(t.GoldPrice, t.GoldQuantity)
	return v
}

// PurchaseValue multiplies a price per gram by a quantity, rounding half-up.
// Results above MaxRupiah fail with ErrValueTooLarge.
func PurchaseValue(price Rupiah, g Grams) (Rupiah, error) {
	if price < 0 || price > MaxRupiah || !g.InRange() {
		return 0, ErrValueTooLarge
	}
	v := decimal.NewFromInt(int64(price)).Mul(g.Decimal).Round(0)
	if v.GreaterThan(decimal.NewFromInt(int64(MaxRupiah))) {
		return 0, ErrValueTooLarge
	}
	return Rupiah(v.IntPart()), nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.SavingCategory) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(t.Time) == "" {
		return ErrEmptyTime
	}
	if t.GoldPrice < 0 || t.GoldPrice > MaxRupiah {
		return ErrInvalidPrice
	}
	if !t.GoldQuantity.InRange() {
		return ErrInvalidQuantity
	}
	if strings.TrimSpace(t.Product) == "" {
		return ErrEmptyProduct
	}
	if _, err := PurchaseValue(t.GoldPrice, t.GoldQuantity); err != nil {
		return err
	}
	return nil
}
