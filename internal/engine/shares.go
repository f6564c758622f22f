package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/peytondoyle/tabby/internal/models"
)

// itemDistribution is the normalized ownership of a single item: fractions
// per person summing to exactly 1. Order preserves first appearance of each
// person in the share rows, which keeps all downstream tie-breaks stable.
type itemDistribution struct {
	personIDs []string
	fractions map[string]decimal.Decimal
}

// resolveShares normalizes raw share weights for one item into fractions.
// Returns nil for an item with no shares (unassigned); the caller applies
// the UnassignedPolicy.
//
// The first person's fraction is computed as one minus the sum of the
// others rather than by division, so the fractions sum to exactly 1 in
// decimal arithmetic and an item's value can never leak through
// normalization. Pinning the residue to the first sharer also keeps the
// downstream rounding tie-break anchored to insertion order.
func resolveShares(itemID string, shares []models.ItemShare) (*itemDistribution, error) {
	if len(shares) == 0 {
		return nil, nil
	}

	dist := &itemDistribution{fractions: make(map[string]decimal.Decimal, len(shares))}
	weights := make(map[string]decimal.Decimal, len(shares))
	total := decimal.Zero

	for _, s := range shares {
		if s.Weight <= 0 {
			return nil, fmt.Errorf("%w: item %s, person %s, weight %v",
				ErrInvalidWeight, itemID, s.PersonID, s.Weight)
		}
		w := decimal.NewFromFloat(s.Weight)
		if _, seen := weights[s.PersonID]; !seen {
			dist.personIDs = append(dist.personIDs, s.PersonID)
		}
		weights[s.PersonID] = weights[s.PersonID].Add(w)
		total = total.Add(w)
	}

	rest := decimal.Zero
	for i, id := range dist.personIDs {
		if i == 0 {
			continue
		}
		frac := weights[id].Div(total)
		dist.fractions[id] = frac
		rest = rest.Add(frac)
	}
	dist.fractions[dist.personIDs[0]] = decimal.NewFromInt(1).Sub(rest)

	return dist, nil
}
