// Package presenter turns collections into what the list screens render.
package presenter

import (
	"fmt"
	"strconv"

	"nabungemas/internal/core"
)

// EmptyText is shown when a list has nothing to render.
const EmptyText = "No Data"

// Row is one rendered item plus whether its delete dialog is open.
type Row[T any] struct {
	Key            string
	Item           T
	ConfirmPending bool
}

// List is either the empty state or a sequence of rows.
type List[T any] struct {
	Empty     bool
	EmptyText string
	Rows      []Row[T]
}

// Present maps items to rows in the order given. A nil or empty slice yields
// the empty state. pending may be nil, meaning no row is pending.
func Present[T any](items []T, keyOf func(T) string, pending func(string) bool) List[T] {
	if len(items) == 0 {
		return List[T]{Empty: true, EmptyText: EmptyText}
	}
	rows := make([]Row[T], 0, len(items))
	for _, it := range items {
		key := keyOf(it)
		rows = append(rows, Row[T]{
			Key:            key,
			Item:           it,
			ConfirmPending: pending != nil && pending(key),
		})
	}
	return List[T]{Rows: rows}
}

// SavingKey identifies a saving row.
func SavingKey(s core.Saving) string { return s.Category }

// TransactionKey identifies a transaction row.
func TransactionKey(t core.Transaction) string { return strconv.FormatInt(t.ID, 10) }

// SavingRow holds the display strings of a saving goal.
type SavingRow struct {
	Category    string
	Target      string
	TotalSaving string
	Percentage  string
	Progress    float64 // 0..100, for the progress bar
}

func NewSavingRow(s core.Saving) SavingRow {
	pct := s.Percentage()
	progress := pct
	if progress > 100 {
		progress = 100
	}
	return SavingRow{
		Category:    s.Category,
		Target:      "Target: " + s.Target.String(),
		TotalSaving: "Total Saving: " + s.TotalSaving.String(),
		Percentage:  FormatPercentage(pct),
		Progress:    progress,
	}
}

// FormatPercentage renders p with one decimal, e.g. "10.0%".
func FormatPercentage(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// TransactionRow holds the display strings of a transaction.
type TransactionRow struct {
	ID             int64
	Time           string
	SavingCategory string
	GoldPrice      string
	GoldQuantity   string
	Product        string
	Value          string
}

func NewTransactionRow(t core.Transaction) TransactionRow {
	return TransactionRow{
		ID:             t.ID,
		Time:           t.Time,
		SavingCategory: t.SavingCategory,
		GoldPrice:      t.GoldPrice.String(),
		GoldQuantity:   t.GoldQuantity.String() + " gr",
		Product:        t.Product,
		Value:          t.Value().String(),
	}
}
