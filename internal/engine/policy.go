package engine

// UnassignedPolicy decides what happens to items that nobody claimed.
type UnassignedPolicy string

const (
	// EvenSplitAll distributes an unclaimed item's value evenly across all
	// people on the bill. This is the default: money is never silently
	// dropped from the totals.
	EvenSplitAll UnassignedPolicy = "even_split_all"

	// ExcludeFromSplit withholds unclaimed items from every subtotal and
	// reports them through diagnostics. Ancillary amounts are then only
	// partially allocated (see Diagnostics.UnallocatedAncillaryCents).
	ExcludeFromSplit UnassignedPolicy = "exclude_from_split"

	// AssignToDefaultPayer gives the whole value of unclaimed items to the
	// policy's designated payer (falling back to the first person).
	AssignToDefaultPayer UnassignedPolicy = "assign_to_default_payer"
)

// Policy configures a single Recompute call. The zero value is valid:
// EvenSplitAll and lenient total handling.
type Policy struct {
	// Unassigned selects the treatment of items with no shares.
	Unassigned UnassignedPolicy

	// DefaultPayerID is the person receiving unclaimed items under
	// AssignToDefaultPayer. When empty, the first person on the bill is
	// used.
	DefaultPayerID string

	// StrictTotal makes Recompute fail with ErrMissingTotal when the bill
	// has no authoritative total. When false (default), the total is
	// derived from the computed shares and Diagnostics.TotalWasDerived is
	// set.
	StrictTotal bool
}

func (p Policy) unassigned() UnassignedPolicy {
	if p.Unassigned == "" {
		return EvenSplitAll
	}
	return p.Unassigned
}
