package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/peytondoyle/tabby/internal/money"
)

func TestSettle_SinglePayer(t *testing.T) {
	totals := []PersonTotal{
		{PersonID: "ana", Total: 4738},
		{PersonID: "ben", Total: 3589},
	}
	payments := map[string]money.Cents{"ana": 8327}

	edges := Settle(totals, payments)

	assert.Equal(t, []DebtEdge{
		{FromPersonID: "ben", ToPersonID: "ana", Amount: 3589},
	}, edges)
}

func TestSettle_TwoPayers(t *testing.T) {
	totals := []PersonTotal{
		{PersonID: "a", Total: 1000},
		{PersonID: "b", Total: 1000},
		{PersonID: "c", Total: 1000},
	}
	// a fronted 2000, b fronted 1000: c owes a, b is square.
	payments := map[string]money.Cents{"a": 2000, "b": 1000}

	edges := Settle(totals, payments)

	assert.Equal(t, []DebtEdge{
		{FromPersonID: "c", ToPersonID: "a", Amount: 1000},
	}, edges)
}

func TestSettle_DebtSpansCreditors(t *testing.T) {
	totals := []PersonTotal{
		{PersonID: "a", Total: 0},
		{PersonID: "b", Total: 0},
		{PersonID: "c", Total: 3000},
	}
	payments := map[string]money.Cents{"a": 1000, "b": 2000}

	edges := Settle(totals, payments)

	assert.Equal(t, []DebtEdge{
		{FromPersonID: "c", ToPersonID: "a", Amount: 1000},
		{FromPersonID: "c", ToPersonID: "b", Amount: 2000},
	}, edges)
}

func TestSettle_EveryoneSquare(t *testing.T) {
	totals := []PersonTotal{
		{PersonID: "a", Total: 500},
		{PersonID: "b", Total: 500},
	}
	payments := map[string]money.Cents{"a": 500, "b": 500}

	assert.Empty(t, Settle(totals, payments))
}
