package engine

import (
	"github.com/shopspring/decimal"

	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/money"
)

// ancillary holds each person's fractional-cent share of the bill-level
// amounts, plus whatever could not be allocated.
type ancillary struct {
	tax      map[string]decimal.Decimal
	tip      map[string]decimal.Decimal
	fee      map[string]decimal.Decimal
	discount map[string]decimal.Decimal

	// unallocated is the net ancillary value (fractional cents, signed)
	// that was not spread across people: the shortfall when
	// ExcludeFromSplit shrank the basis, or everything when there was no
	// basis at all.
	unallocated decimal.Decimal

	// noBasis is set when ancillary amounts exist but the basis is zero
	// while people are present. With no people nothing was attempted and
	// the flag stays false.
	noBasis bool
}

// distributeAncillary spreads tax, tip, service fee, and discount across
// people in proportion to their subtotal shares. Each amount is divided by
// the person's proportional share of the basis; it is never duplicated
// per person or attached wholesale to a single party.
//
// When ExcludeFromSplit withheld item value, the denominator stays at the
// full bill subtotal, so the withheld portion of each ancillary amount
// surfaces as unallocated instead of being quietly redistributed over the
// remaining people.
func distributeAncillary(bill models.Bill, alloc *allocation, people []models.Person) *ancillary {
	anc := &ancillary{
		tax:      zeroShares(people),
		tip:      zeroShares(people),
		fee:      zeroShares(people),
		discount: zeroShares(people),
	}
	amounts := []struct {
		amt money.Cents
		dst map[string]decimal.Decimal
	}{
		{bill.Tax, anc.tax},
		{bill.Tip, anc.tip},
		{bill.ServiceFee, anc.fee},
		{bill.Discount, anc.discount},
	}

	if alloc.basis.IsZero() {
		for _, a := range amounts {
			if a.amt != 0 {
				anc.unallocated = anc.unallocated.Add(a.amt.Decimal())
				if len(people) > 0 {
					anc.noBasis = true
				}
			}
		}
		return anc
	}

	denom := alloc.basis
	exact := true
	if alloc.pool.IsPositive() && bill.Subtotal > 0 {
		denom = bill.Subtotal.Decimal()
		exact = !denom.GreaterThan(alloc.basis)
	}

	for _, a := range amounts {
		if a.amt == 0 {
			continue
		}
		spread := anc.spreadProportional(a.amt.Decimal(), a.dst, alloc, people, denom, exact)
		anc.unallocated = anc.unallocated.Add(a.amt.Decimal().Sub(spread))
	}
	return anc
}

// spreadProportional fills dst with amount*subtotal/denom per person and
// returns the total it handed out. When exact is true the first person
// with a positive subtotal absorbs the division residue so the amount is
// conserved to the last fractional cent.
func (anc *ancillary) spreadProportional(amount decimal.Decimal, dst map[string]decimal.Decimal, alloc *allocation, people []models.Person, denom decimal.Decimal, exact bool) decimal.Decimal {
	residue := -1
	if exact {
		for i, p := range people {
			if alloc.subtotals[p.ID].IsPositive() {
				residue = i
				break
			}
		}
	}

	spread := decimal.Zero
	remaining := amount
	for i, p := range people {
		if i == residue {
			continue
		}
		share := amount.Mul(alloc.subtotals[p.ID]).Div(denom)
		dst[p.ID] = share
		remaining = remaining.Sub(share)
		spread = spread.Add(share)
	}
	if residue >= 0 {
		dst[people[residue].ID] = remaining
		spread = spread.Add(remaining)
	}
	return spread
}

func zeroShares(people []models.Person) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(people))
	for _, p := range people {
		m[p.ID] = decimal.Zero
	}
	return m
}
