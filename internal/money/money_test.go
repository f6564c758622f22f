package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromDollars(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    Cents
		wantErr bool
	}{
		{name: "whole dollars", in: 10, want: 1000},
		{name: "two decimals", in: 83.27, want: 8327},
		{name: "float artifact", in: 1.10, want: 110},
		{name: "negative discount", in: -8.19, want: -819},
		{name: "zero", in: 0, want: 0},
		{name: "three decimals rejected", in: 1.005, wantErr: true},
		{name: "sub-cent rejected", in: 0.001, wantErr: true},
		{name: "NaN rejected", in: math.NaN(), wantErr: true},
		{name: "Inf rejected", in: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromDollars(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromDollars(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("FromDollars(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromDecimal(t *testing.T) {
	if got := FromDecimal(decimal.RequireFromString("333.4")); got != 333 {
		t.Errorf("FromDecimal(333.4) = %d, want 333", got)
	}
	if got := FromDecimal(decimal.RequireFromString("333.5")); got != 334 {
		t.Errorf("FromDecimal(333.5) = %d, want 334", got)
	}
	if got := FromDecimal(decimal.RequireFromString("-0.6")); got != -1 {
		t.Errorf("FromDecimal(-0.6) = %d, want -1", got)
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		in   Cents
		want string
	}{
		{8327, "83.27"},
		{5, "0.05"},
		{-819, "-8.19"},
		{0, "0.00"},
		{100, "1.00"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("Cents(%d).String() = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDollarsRoundTrip(t *testing.T) {
	for _, c := range []Cents{0, 1, 99, 100, 8327, -819, 123456789} {
		got, err := FromDollars(c.Dollars())
		if err != nil {
			t.Fatalf("round trip of %d failed: %v", c, err)
		}
		if got != c {
			t.Errorf("round trip of %d = %d", c, got)
		}
	}
}
