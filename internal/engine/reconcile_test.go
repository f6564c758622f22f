package engine

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/peytondoyle/tabby/internal/money"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLargestRemainder(t *testing.T) {
	tests := []struct {
		name     string
		target   money.Cents
		raw      []string
		want     []money.Cents
		adjusted []int
	}{
		{
			name:   "exact input needs no adjustment",
			target: 500,
			raw:    []string{"200", "300"},
			want:   []money.Cents{200, 300},
		},
		{
			name:     "single leftover cent to largest fraction",
			target:   1000,
			raw:      []string{"333.4", "333.3", "333.3"},
			want:     []money.Cents{334, 333, 333},
			adjusted: []int{0},
		},
		{
			name:     "equal fractions tie-break by index",
			target:   100,
			raw:      []string{"33.3", "33.3", "33.3"},
			want:     []money.Cents{34, 33, 33},
			adjusted: []int{0},
		},
		{
			name:     "two leftover cents",
			target:   101,
			raw:      []string{"33.5", "33.9", "33.1"},
			want:     []money.Cents{34, 34, 33},
			adjusted: []int{1, 0},
		},
		{
			name:     "negative leftover takes from smallest fraction",
			target:   98,
			raw:      []string{"33.9", "33.5", "33.1"},
			want:     []money.Cents{33, 33, 32},
			adjusted: []int{2},
		},
		{
			name:     "leftover larger than entry count cycles",
			target:   1005,
			raw:      []string{"200", "800"},
			want:     []money.Cents{203, 802},
			adjusted: []int{0, 1},
		},
		{
			name:     "negative values floor correctly",
			target:   -819,
			raw:      []string{"-465.9828", "-353.0172"},
			want:     []money.Cents{-466, -353},
			adjusted: []int{1},
		},
		{
			name:   "empty input",
			target: 0,
			raw:    nil,
			want:   []money.Cents{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]decimal.Decimal, len(tt.raw))
			for i, s := range tt.raw {
				raw[i] = dec(s)
			}

			cents, adjusted := largestRemainder(tt.target, raw)

			if len(cents) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(cents), len(tt.want))
			}
			sum := money.Cents(0)
			for i := range cents {
				if cents[i] != tt.want[i] {
					t.Errorf("cents[%d] = %d, want %d", i, cents[i], tt.want[i])
				}
				sum += cents[i]
			}
			if len(cents) > 0 && sum != tt.target {
				t.Errorf("sum = %d, want target %d", sum, tt.target)
			}

			if len(adjusted) != len(tt.adjusted) {
				t.Fatalf("adjusted = %v, want %v", adjusted, tt.adjusted)
			}
			for i := range adjusted {
				if adjusted[i] != tt.adjusted[i] {
					t.Errorf("adjusted = %v, want %v", adjusted, tt.adjusted)
					break
				}
			}
		})
	}
}

func TestLargestRemainderStable(t *testing.T) {
	raw := []decimal.Decimal{dec("333.3333"), dec("333.3333"), dec("333.3334")}
	first, _ := largestRemainder(1000, raw)
	for i := 0; i < 10; i++ {
		again, _ := largestRemainder(1000, raw)
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d: cents[%d] = %d, first run had %d", i, j, again[j], first[j])
			}
		}
	}
}
