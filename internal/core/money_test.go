package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{".5", "0.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.001", "", false},
		{"abc", "", false},
		{"1e3", "", false},
		{"1.2.3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	cases := []struct{ in, out string }{
		{"2.5", "3"},
		{"2.49", "2"},
		{"-2.5", "-2"},
		{"-2.51", "-3"},
		{"0", "0"},
	}
	for _, tc := range cases {
		got := RoundHalfUp(decimal.RequireFromString(tc.in))
		if !got.Equal(decimal.RequireFromString(tc.out)) {
			t.Errorf("RoundHalfUp(%s) = %s, want %s", tc.in, got, tc.out)
		}
	}
}

func TestCentsRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("12.34")
	if c := Cents(d); c != 1234 {
		t.Fatalf("Cents = %d, want 1234", c)
	}
	if !FromCents(1234).Equal(d) {
		t.Fatalf("FromCents(1234) = %s", FromCents(1234))
	}
}

func TestFormatEuros(t *testing.T) {
	if got := FormatEuros(decimal.RequireFromString("12.5")); got != "€12.50" {
		t.Fatalf("got %q", got)
	}
	if got := FormatEuros(decimal.RequireFromString("-3")); got != "-€3.00" {
		t.Fatalf("got %q", got)
	}
}
