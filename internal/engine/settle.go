package engine

import "github.com/peytondoyle/tabby/internal/money"

// DebtEdge is a single transfer that settles part of a bill: From pays To.
type DebtEdge struct {
	FromPersonID string
	ToPersonID   string
	Amount       money.Cents
}

// Settle turns reconciled person totals and recorded payments into a small
// set of transfers. payments maps person ID to what they actually fronted
// (for the common case, the payer fronted the whole bill).
//
// Each person's net position is paid minus owed; debtors are greedily
// matched against creditors in input order, so the result is deterministic.
// Because totals are already whole cents, the edges sum exactly to the
// outstanding debt with no epsilon comparisons.
func Settle(totals []PersonTotal, payments map[string]money.Cents) []DebtEdge {
	type position struct {
		personID string
		net      money.Cents
	}

	var creditors, debtors []position
	for _, t := range totals {
		net := payments[t.PersonID] - t.Total
		switch {
		case net > 0:
			creditors = append(creditors, position{t.PersonID, net})
		case net < 0:
			debtors = append(debtors, position{t.PersonID, -net})
		}
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].net
		if creditors[j].net < amount {
			amount = creditors[j].net
		}
		edges = append(edges, DebtEdge{
			FromPersonID: debtors[i].personID,
			ToPersonID:   creditors[j].personID,
			Amount:       amount,
		})
		debtors[i].net -= amount
		creditors[j].net -= amount
		if debtors[i].net == 0 {
			i++
		}
		if creditors[j].net == 0 {
			j++
		}
	}
	return edges
}
