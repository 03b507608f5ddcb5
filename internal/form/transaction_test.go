package form

import (
	"errors"
	"testing"
	"time"

	"nabungemas/internal/core"
)

func validDraft() Draft {
	return Draft{
		SavingCategory: "Tabungan Menikah",
		GoldPrice:      "900000",
		GoldQuantity:   "1.0",
		Product:        "Antam",
	}
}

func TestApplyChangesOnlyTargetField(t *testing.T) {
	base := Draft{SavingCategory: "A", Time: "01 Jan 2025", GoldPrice: "1", GoldQuantity: "2", Product: "P"}
	for _, f := range Fields {
		t.Run(string(f), func(t *testing.T) {
			before := base
			got := Apply(base, Edit{Field: f, Value: "edited"})

			if base != before {
				t.Fatalf("original draft mutated: %+v", base)
			}
			if got.Get(f) != "edited" {
				t.Fatalf("field %s = %q, want edited", f, got.Get(f))
			}
			for _, other := range Fields {
				if other == f {
					continue
				}
				if got.Get(other) != base.Get(other) {
					t.Fatalf("field %s changed from %q to %q", other, base.Get(other), got.Get(other))
				}
			}
		})
	}
}

func TestApplyUnknownFieldIsNoop(t *testing.T) {
	d := validDraft()
	if got := Apply(d, Edit{Field: "colour", Value: "gold"}); got != d {
		t.Fatalf("unknown field changed draft: %+v", got)
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		edit *Edit
		want bool
	}{
		{"complete draft", nil, true},
		{"zero price allowed", &Edit{FieldGoldPrice, "0"}, true},
		{"grouped price", &Edit{FieldGoldPrice, "900.000"}, true},
		{"comma quantity", &Edit{FieldGoldQuantity, "0,5"}, true},
		{"picked date", &Edit{FieldTime, "2023-01-20"}, true},
		{"empty price", &Edit{FieldGoldPrice, ""}, false},
		{"negative price", &Edit{FieldGoldPrice, "-5"}, false},
		{"fractional price", &Edit{FieldGoldPrice, "900000.5"}, false},
		{"empty quantity", &Edit{FieldGoldQuantity, ""}, false},
		{"negative quantity", &Edit{FieldGoldQuantity, "-1"}, false},
		{"blank category", &Edit{FieldSavingCategory, "   "}, false},
		{"empty product", &Edit{FieldProduct, ""}, false},
		{"garbage date", &Edit{FieldTime, "someday"}, false},
		{"price past int64", &Edit{FieldGoldPrice, "9.223.372.036.854.775.807"}, false},
		{"price above cap", &Edit{FieldGoldPrice, "1.000.000.000.001"}, false},
		{"exponent quantity", &Edit{FieldGoldQuantity, "1e-2000000"}, false},
		{"too many decimals", &Edit{FieldGoldQuantity, "0.00001"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			if tt.edit != nil {
				d = Apply(d, *tt.edit)
			}
			if got := Valid(d); got != tt.want {
				t.Errorf("Valid(%+v) = %v, want %v", d, got, tt.want)
			}
		})
	}
}

func TestReduceRecomputesValidity(t *testing.T) {
	s := NewState(Draft{})
	if s.EntryValid {
		t.Fatal("empty draft must not be valid")
	}
	for _, e := range []Edit{
		{FieldSavingCategory, "Tabungan Rumah"},
		{FieldGoldPrice, "1.000.000"},
		{FieldGoldQuantity, "2"},
	} {
		s = Reduce(s, e)
		if s.EntryValid {
			t.Fatalf("draft valid too early after %s", e.Field)
		}
	}
	s = Reduce(s, Edit{FieldProduct, "UBS"})
	if !s.EntryValid {
		t.Fatalf("expected valid state, got %+v", s)
	}
	s = Reduce(s, Edit{FieldGoldPrice, ""})
	if s.EntryValid {
		t.Fatal("clearing the price must disable save")
	}
}

func TestToTransaction(t *testing.T) {
	now := time.Date(2025, 10, 15, 9, 0, 0, 0, time.UTC)

	tx, err := validDraft().ToTransaction(now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.ID != 0 || tx.Time != "15 Oct 2025" || tx.GoldPrice != 900000 || tx.GoldQuantity.String() != "1.0" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	d := Apply(validDraft(), Edit{FieldTime, "2023-01-20"})
	tx, err = d.ToTransaction(now)
	if err != nil || tx.Time != "20 Jan 2023" {
		t.Fatalf("expected picked date, got %q (err=%v)", tx.Time, err)
	}

	_, err = Apply(validDraft(), Edit{FieldGoldPrice, "abc"}).ToTransaction(now)
	if !errors.Is(err, core.ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestSavingDraft(t *testing.T) {
	d := ApplySaving(SavingDraft{}, Edit{FieldCategory, "Dana Darurat"})
	if ValidSaving(d) {
		t.Fatal("missing target must be invalid")
	}
	d = ApplySaving(d, Edit{FieldTarget, "9.000.000"})
	s, err := d.ToSaving()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Category != "Dana Darurat" || s.Target != 9000000 || s.TotalSaving != 0 {
		t.Fatalf("unexpected saving: %+v", s)
	}
	if _, err := (SavingDraft{Target: "1"}).ToSaving(); !errors.Is(err, core.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestValueAboveCapIsNotSavable(t *testing.T) {
	d := Draft{
		SavingCategory: "Tabungan Menikah",
		GoldPrice:      "1.000.000.000.000",
		GoldQuantity:   "2",
		Product:        "Antam",
	}
	if NewState(d).EntryValid {
		t.Fatal("a draft worth more than the cap must keep save disabled")
	}
	if _, err := d.ToTransaction(time.Now()); !errors.Is(err, core.ErrValueTooLarge) {
		t.Fatalf("ToTransaction error = %v, want ErrValueTooLarge", err)
	}
}
