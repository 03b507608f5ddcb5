package core

import (
	"errors"
	"testing"
)

func TestParseRupiah(t *testing.T) {
	cases := []struct {
		in  string
		out Rupiah
		ok  bool
	}{
		{"900000", 900000, true},
		{"900.000", 900000, true},
		{"9.000.000", 9000000, true},
		{"Rp 20.000", 20000, true},
		{" 0 ", 0, true},
		{"", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"900.00", 0, false},
		{"9000.000", 0, false},
		{"900,5", 0, false},
		{"abc", 0, false},
		{"99999999999999999999", 0, false},
		{"1.000.000.000.000", MaxRupiah, true},
		{"1.000.000.000.001", 0, false},
		{"9.223.372.036.854.775.807", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseRupiah(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error, got %d", tc.in, got)
		}
	}
}

func TestRupiahString(t *testing.T) {
	cases := map[Rupiah]string{
		0:        "Rp0",
		999:      "Rp999",
		1000:     "Rp1.000",
		900000:   "Rp900.000",
		9000000:  "Rp9.000.000",
		-20000:   "-Rp20.000",
	}
	for in, want := range cases {
		if got := in.String(); got != want {
			t.Errorf("Rupiah(%d).String() = %q, want %q", int64(in), got, want)
		}
	}
}

func TestParseGrams(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.0", "1.0", true},
		{"1", "1.0", true},
		{"0,5", "0.5", true},
		{"0.25", "0.25", true},
		{"0", "0.0", true},
		{"", "", false},
		{"-1", "", false},
		{"1.2.3", "", false},
		{"gold", "", false},
		{"0,0001", "0.0001", true},
		{"1000000", "1000000.0", true},
		{"1000000.0001", "", false},
		{"0.12345", "", false},
		{"1e-2", "", false},
		{"1E3", "", false},
		{"1e-2000000", "", false},
		{"1.", "", false},
		{".5", "", false},
		{"+1", "", false},
		{"0.000000000000000000001", "", false},
	}
	for _, tc := range cases {
		got, err := ParseGrams(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q unexpected error %v", tc.in, err)
			}
			if got.String() != tc.want {
				t.Fatalf("%q expected %s, got %s", tc.in, tc.want, got.String())
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestPurchaseValueBounds(t *testing.T) {
	cases := []struct {
		price Rupiah
		qty   string
		want  Rupiah
		err   error
	}{
		{900000, "1.5", 1350000, nil},
		{MaxRupiah, "1", MaxRupiah, nil},
		{MaxRupiah, "1.0001", 0, ErrValueTooLarge},
		{2000000, "1000000", 0, ErrValueTooLarge},
		{MaxRupiah + 1, "1", 0, ErrValueTooLarge},
		{-1, "1", 0, ErrValueTooLarge},
	}
	for _, tc := range cases {
		g, err := ParseGrams(tc.qty)
		if err != nil {
			t.Fatalf("%q: %v", tc.qty, err)
		}
		got, err := PurchaseValue(tc.price, g)
		if !errors.Is(err, tc.err) || got != tc.want {
			t.Errorf("PurchaseValue(%d, %s) = %d, %v; want %d, %v", tc.price, tc.qty, got, err, tc.want, tc.err)
		}
	}
}
