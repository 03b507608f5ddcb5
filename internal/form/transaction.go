// Package form holds the editable state of the add-transaction and add-saving
// forms. Drafts are plain values: every edit produces a new draft and leaves
// the previous one untouched, and validity is always recomputed from the
// whole draft.
package form

import (
	"fmt"
	"strings"
	"time"

	"nabungemas/internal/core"
)

// Field names one editable input of a transaction draft. The string values
// double as the HTML input names.
type Field string

const (
	FieldSavingCategory Field = "saving_category"
	FieldTime           Field = "time"
	FieldGoldPrice      Field = "gold_price"
	FieldGoldQuantity   Field = "gold_quantity"
	FieldProduct        Field = "product"
)

// Fields lists the transaction draft fields in form order.
var Fields = []Field{FieldSavingCategory, FieldTime, FieldGoldPrice, FieldGoldQuantity, FieldProduct}

// Draft is a not-yet-persisted transaction with every value kept as text so
// partial input survives editing.
type Draft struct {
	SavingCategory string
	Time           string
	GoldPrice      string
	GoldQuantity   string
	Product        string
}

// Edit replaces one field of a draft.
type Edit struct {
	Field Field
	Value string
}

// State is what the add-transaction screen renders.
type State struct {
	Draft      Draft
	EntryValid bool
}

// NewState wraps a draft with its validity.
func NewState(d Draft) State {
	return State{Draft: d, EntryValid: Valid(d)}
}

// Reduce applies e and recomputes validity.
func Reduce(s State, e Edit) State {
	return NewState(Apply(s.Draft, e))
}

// Apply returns a copy of d with exactly the edited field replaced.
// Edits to unknown fields return d unchanged.
func Apply(d Draft, e Edit) Draft {
	switch e.Field {
	case FieldSavingCategory:
		d.SavingCategory = e.Value
	case FieldTime:
		d.Time = e.Value
	case FieldGoldPrice:
		d.GoldPrice = e.Value
	case FieldGoldQuantity:
		d.GoldQuantity = e.Value
	case FieldProduct:
		d.Product = e.Value
	}
	return d
}

// Get returns the current text of f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldSavingCategory:
		return d.SavingCategory
	case FieldTime:
		return d.Time
	case FieldGoldPrice:
		return d.GoldPrice
	case FieldGoldQuantity:
		return d.GoldQuantity
	case FieldProduct:
		return d.Product
	}
	return ""
}

// Valid reports whether d can be saved. The date may be left empty; it then
// defaults to the day of saving.
func Valid(d Draft) bool {
	return d.validate() == nil
}

func (d Draft) validate() error {
	if strings.TrimSpace(d.SavingCategory) == "" {
		return core.ErrEmptyCategory
	}
	if strings.TrimSpace(d.Product) == "" {
		return core.ErrEmptyProduct
	}
	price, err := core.ParseRupiah(d.GoldPrice)
	if err != nil {
		return err
	}
	qty, err := core.ParseGrams(d.GoldQuantity)
	if err != nil {
		return err
	}
	if _, err := core.PurchaseValue(price, qty); err != nil {
		return err
	}
	if strings.TrimSpace(d.Time) != "" {
		if _, err := core.NormalizeDay(d.Time); err != nil {
			return err
		}
	}
	return nil
}

// ToTransaction converts a valid draft into a transaction without an ID.
func (d Draft) ToTransaction(now time.Time) (core.Transaction, error) {
	if err := d.validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("invalid draft: %w", err)
	}
	price, _ := core.ParseRupiah(d.GoldPrice)
	qty, _ := core.ParseGrams(d.GoldQuantity)
	day := core.FormatDay(now)
	if strings.TrimSpace(d.Time) != "" {
		day, _ = core.NormalizeDay(d.Time)
	}
	return core.Transaction{
		Time:           day,
		SavingCategory: strings.TrimSpace(d.SavingCategory),
		GoldPrice:      price,
		GoldQuantity:   qty,
		Product:        strings.TrimSpace(d.Product),
	}, nil
}
