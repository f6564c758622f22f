package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/peytondoyle/tabby/internal/money"
)

// largestRemainder converts fractional-cent values to whole cents that sum
// to exactly target, using the largest remainder method: floor everything,
// then hand the leftover cents to the entries with the largest fractional
// parts. Ties break by ascending index, so repeated runs on identical input
// adjust the same entries and nobody drifts between recomputations.
//
// A negative leftover (the floors overshoot the target) takes cents from
// the entries with the smallest fractional parts instead, same tie-break.
// Leftovers larger than len(raw) simply make additional passes in the same
// order.
//
// The returned adjusted slice lists the indices whose value was moved off
// its floor, in the order they were touched.
func largestRemainder(target money.Cents, raw []decimal.Decimal) (cents []money.Cents, adjusted []int) {
	n := len(raw)
	cents = make([]money.Cents, n)
	if n == 0 {
		return cents, nil
	}

	fracs := make([]decimal.Decimal, n)
	sum := money.Cents(0)
	for i, r := range raw {
		floor := r.Floor()
		cents[i] = money.Cents(floor.IntPart())
		fracs[i] = r.Sub(floor)
		sum += cents[i]
	}

	leftover := target - sum
	if leftover == 0 {
		return cents, nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	descending := leftover > 0
	sort.SliceStable(order, func(a, b int) bool {
		fa, fb := fracs[order[a]], fracs[order[b]]
		if fa.Equal(fb) {
			return order[a] < order[b]
		}
		if descending {
			return fa.GreaterThan(fb)
		}
		return fa.LessThan(fb)
	})

	step := money.Cents(1)
	if leftover < 0 {
		step = -1
	}
	touched := make(map[int]bool, n)
	for leftover != 0 {
		for _, i := range order {
			if leftover == 0 {
				break
			}
			cents[i] += step
			leftover -= step
			if !touched[i] {
				touched[i] = true
				adjusted = append(adjusted, i)
			}
		}
	}
	return cents, adjusted
}
