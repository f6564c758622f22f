package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/peytondoyle/tabby/internal/models"
)

// allocation holds every person's subtotal in fractional cents, plus the
// value that could not be allocated to anyone.
type allocation struct {
	// subtotals is keyed by person ID; values are fractional cents.
	subtotals map[string]decimal.Decimal

	// basis is the sum of all subtotals, the denominator for proportional
	// ancillary distribution.
	basis decimal.Decimal

	// unassignedIDs lists items that had no shares, regardless of policy.
	unassignedIDs []string

	// pool is the value (in fractional cents) withheld from all subtotals:
	// unassigned items under ExcludeFromSplit, or any unassigned value
	// when the bill has no people to give it to.
	pool decimal.Decimal
}

// allocateSubtotals computes each person's pre-tax share from the item
// prices and the resolved per-item distributions. Items without a
// distribution are handled per the UnassignedPolicy; their value is either
// spread, redirected, or moved to the reported pool, never dropped.
func allocateSubtotals(items []models.Item, dists map[string]*itemDistribution, people []models.Person, pol Policy) (*allocation, error) {
	alloc := &allocation{subtotals: make(map[string]decimal.Decimal, len(people))}
	for _, p := range people {
		alloc.subtotals[p.ID] = decimal.Zero
	}

	for _, item := range items {
		if item.Price < 0 {
			return nil, fmt.Errorf("%w: item %s priced %s", ErrNegativePrice, item.ID, item.Price)
		}
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		value := item.Price.Decimal().Mul(decimal.NewFromInt(int64(qty)))

		dist := dists[item.ID]
		if dist == nil {
			alloc.unassignedIDs = append(alloc.unassignedIDs, item.ID)
			allocateUnassigned(alloc, value, people, pol)
			continue
		}

		// The first sharer takes the exact remainder so the item's value
		// is conserved even when fractions carry division residue.
		remaining := value
		for i := len(dist.personIDs) - 1; i >= 1; i-- {
			id := dist.personIDs[i]
			share := value.Mul(dist.fractions[id])
			alloc.subtotals[id] = alloc.subtotals[id].Add(share)
			remaining = remaining.Sub(share)
		}
		first := dist.personIDs[0]
		alloc.subtotals[first] = alloc.subtotals[first].Add(remaining)
	}

	for _, p := range people {
		alloc.basis = alloc.basis.Add(alloc.subtotals[p.ID])
	}
	return alloc, nil
}

func allocateUnassigned(alloc *allocation, value decimal.Decimal, people []models.Person, pol Policy) {
	if len(people) == 0 {
		// Nobody to allocate to under any policy; keep the value visible.
		alloc.pool = alloc.pool.Add(value)
		return
	}

	switch pol.unassigned() {
	case ExcludeFromSplit:
		alloc.pool = alloc.pool.Add(value)

	case AssignToDefaultPayer:
		target := people[0].ID
		for _, p := range people {
			if p.ID == pol.DefaultPayerID {
				target = p.ID
				break
			}
		}
		alloc.subtotals[target] = alloc.subtotals[target].Add(value)

	default: // EvenSplitAll
		n := decimal.NewFromInt(int64(len(people)))
		remaining := value
		for i := len(people) - 1; i >= 1; i-- {
			share := value.Div(n)
			alloc.subtotals[people[i].ID] = alloc.subtotals[people[i].ID].Add(share)
			remaining = remaining.Sub(share)
		}
		alloc.subtotals[people[0].ID] = alloc.subtotals[people[0].ID].Add(remaining)
	}
}
