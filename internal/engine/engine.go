// Package engine computes exact per-person bill splits.
//
// The whole computation is one pure, synchronous pipeline:
//
//	resolve shares -> allocate subtotals -> distribute ancillary -> reconcile cents
//
// invoked through Recompute on every assignment edit. There is no state
// between calls and no I/O; concurrent calls are safe because nothing is
// shared or mutated.
//
// All currency math is fixed-point: amounts enter and leave as integer
// cents (money.Cents), and the fractional intermediate shares use
// decimal.Decimal. Earlier incarnations of this computation accumulated
// float64 dollars and duplicated tip across call sites, overcharging by
// whole dollars; the integer-cent discipline here is the fix, not an
// implementation detail.
package engine

import (
	"github.com/shopspring/decimal"

	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/money"
)

// PersonTotal is one person's computed share of a bill. All fields are
// whole cents. Component shares each sum exactly to the bill-level amount
// they were cut from; Total is reconciled independently against the
// authoritative receipt total, which on real receipts does not always
// equal the component sum.
type PersonTotal struct {
	PersonID      string
	SubtotalShare money.Cents
	TaxShare      money.Cents
	TipShare      money.Cents
	FeeShare      money.Cents
	DiscountShare money.Cents
	Total         money.Cents
}

// Diagnostics reports everything the engine decided not to decide. The UI
// surfaces these as warnings; none of them abort the computation.
type Diagnostics struct {
	// UnassignedItemIDs lists items that had no shares.
	UnassignedItemIDs []string

	// UnassignedPoolCents is item value withheld from every subtotal
	// (ExcludeFromSplit, or unassigned items on a bill with no people).
	UnassignedPoolCents money.Cents

	// UnallocatedAncillaryCents is the net tax/tip/fee/discount value that
	// was not spread across people.
	UnallocatedAncillaryCents money.Cents

	// NoBasisForSplit is set when ancillary amounts exist but every
	// subtotal is zero, so proportional distribution had nothing to work
	// with. Not set when the bill has no people at all.
	NoBasisForSplit bool

	// TotalWasDerived is set when the bill had no authoritative total and
	// the engine fell back to the sum of the computed shares.
	TotalWasDerived bool

	// RoundingResidueAppliedTo lists the people whose final total was
	// nudged off its floor during reconciliation, in adjustment order.
	RoundingResidueAppliedTo []string
}

// Result is the output of one Recompute call.
type Result struct {
	PersonTotals []PersonTotal
	Diagnostics  Diagnostics
}

// Recompute derives every person's exact share of a bill from scratch.
//
// People appear in the output in input order, and all rounding tie-breaks
// follow that order, so identical input yields identical output and nobody
// is penalized a cent twice in a row by chance.
//
// Shares referencing items or people missing from the snapshot are
// ignored; the assignment layer deletes those rows, and a half-applied
// edit must not fail the whole recomputation.
func Recompute(bill models.Bill, items []models.Item, people []models.Person, shares []models.ItemShare, policy Policy) (*Result, error) {
	knownItems := make(map[string]bool, len(items))
	for _, it := range items {
		knownItems[it.ID] = true
	}
	knownPeople := make(map[string]bool, len(people))
	for _, p := range people {
		knownPeople[p.ID] = true
	}

	byItem := make(map[string][]models.ItemShare, len(items))
	for _, s := range shares {
		if !knownItems[s.ItemID] || !knownPeople[s.PersonID] {
			continue
		}
		byItem[s.ItemID] = append(byItem[s.ItemID], s)
	}

	dists := make(map[string]*itemDistribution, len(byItem))
	for _, it := range items {
		dist, err := resolveShares(it.ID, byItem[it.ID])
		if err != nil {
			return nil, err
		}
		if dist != nil {
			dists[it.ID] = dist
		}
	}

	alloc, err := allocateSubtotals(items, dists, people, policy)
	if err != nil {
		return nil, err
	}
	anc := distributeAncillary(bill, alloc, people)

	diag := Diagnostics{
		UnassignedItemIDs:         alloc.unassignedIDs,
		UnassignedPoolCents:       money.FromDecimal(alloc.pool),
		UnallocatedAncillaryCents: money.FromDecimal(anc.unallocated),
		NoBasisForSplit:           anc.noBasis,
	}

	if len(people) == 0 {
		if policy.StrictTotal && !bill.TotalKnown {
			return nil, ErrMissingTotal
		}
		return &Result{PersonTotals: []PersonTotal{}, Diagnostics: diag}, nil
	}

	totals := make([]PersonTotal, len(people))
	rawTotals := make([]decimal.Decimal, len(people))
	for i, p := range people {
		totals[i].PersonID = p.ID
	}

	// Reconcile each component against the value actually spread, so a
	// receipt whose items disagree with its printed subtotal does not have
	// the mismatch smeared over people as phantom cents.
	components := []struct {
		raw func(personID string) decimal.Decimal
		set func(t *PersonTotal, c money.Cents)
	}{
		{func(id string) decimal.Decimal { return alloc.subtotals[id] }, func(t *PersonTotal, c money.Cents) { t.SubtotalShare = c }},
		{func(id string) decimal.Decimal { return anc.tax[id] }, func(t *PersonTotal, c money.Cents) { t.TaxShare = c }},
		{func(id string) decimal.Decimal { return anc.tip[id] }, func(t *PersonTotal, c money.Cents) { t.TipShare = c }},
		{func(id string) decimal.Decimal { return anc.fee[id] }, func(t *PersonTotal, c money.Cents) { t.FeeShare = c }},
		{func(id string) decimal.Decimal { return anc.discount[id] }, func(t *PersonTotal, c money.Cents) { t.DiscountShare = c }},
	}
	for _, comp := range components {
		raw := make([]decimal.Decimal, len(people))
		target := decimal.Zero
		for i, p := range people {
			raw[i] = comp.raw(p.ID)
			target = target.Add(raw[i])
			rawTotals[i] = rawTotals[i].Add(raw[i])
		}
		cents, _ := largestRemainder(money.FromDecimal(target), raw)
		for i := range people {
			comp.set(&totals[i], cents[i])
		}
	}

	target := bill.Total
	if bill.TotalKnown {
		// Withheld value stays a visible warning; folding it back into the
		// reconciliation target would redistribute it silently.
		target -= diag.UnassignedPoolCents + diag.UnallocatedAncillaryCents
	} else {
		if policy.StrictTotal {
			return nil, ErrMissingTotal
		}
		sum := decimal.Zero
		for _, r := range rawTotals {
			sum = sum.Add(r)
		}
		target = money.FromDecimal(sum)
		diag.TotalWasDerived = true
	}

	if alloc.basis.IsZero() {
		// No consumption at all: totals stay zero instead of spreading the
		// printed total over people who ordered nothing.
		return &Result{PersonTotals: totals, Diagnostics: diag}, nil
	}

	totalCents, adjusted := largestRemainder(target, rawTotals)
	for i := range totals {
		totals[i].Total = totalCents[i]
	}
	for _, i := range adjusted {
		diag.RoundingResidueAppliedTo = append(diag.RoundingResidueAppliedTo, people[i].ID)
	}

	return &Result{PersonTotals: totals, Diagnostics: diag}, nil
}
