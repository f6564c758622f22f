package models

import "github.com/peytondoyle/tabby/internal/money"

// Bill represents a parsed receipt to be split among people.
// It is the aggregate root: items, people, and shares are loaded and
// written together with the bill.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// OwnerID is the user account that created the bill.
	OwnerID string

	// Title is the human-readable name for the bill.
	// Auto-generated from the people on the bill when empty.
	Title string

	// Currency is the ISO 4217 code from the receipt (default "USD").
	// Amounts on one bill are always in a single currency; conversion is
	// not supported.
	Currency string

	// Subtotal is the pre-tax sum of all items, in cents.
	Subtotal money.Cents

	// Tax, Tip and ServiceFee are the bill-level ancillary amounts, in
	// cents. All are >= 0.
	Tax        money.Cents
	Tip        money.Cents
	ServiceFee money.Cents

	// Discount is a signed adjustment in cents, conventionally <= 0.
	Discount money.Cents

	// Total is the authoritative receipt total in cents. TotalKnown is
	// false when the parser could not read a total; the split engine then
	// either derives one or refuses, depending on policy.
	Total      money.Cents
	TotalKnown bool

	// PayerID is the Person who fronted the bill, used for the settlement
	// view. Optional.
	PayerID string

	// Items, People and Shares are the full assignment state of the bill.
	Items  []Item
	People []Person
	Shares []ItemShare

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// Item represents a single line item on a bill.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// BillID is the owning bill.
	BillID string

	// Label is the line-item text from the receipt (e.g. "Pad Thai").
	Label string

	// Price is the unit price in cents, >= 0.
	Price money.Cents

	// Quantity is the number of units; the split engine allocates
	// Price * Quantity. Values below 1 are treated as 1.
	Quantity int
}

// Person represents one participant on a bill.
// For now people are bill-scoped names; they may reference User IDs later
// without breaking the schema (see the ADDENDUM in the repo docs).
type Person struct {
	// ID is the unique identifier for the person (UUID format).
	ID string

	// BillID is the owning bill.
	BillID string

	// Name is the display name.
	Name string
}

// ItemShare assigns a fraction of an item to a person.
// Weights are relative to the other shares on the same item and need not
// sum to anything in particular; the engine normalizes per item.
//
// A weight <= 0 is never stored: the storage layer treats an upsert with a
// non-positive weight as a delete, so zero-weight rows cannot reach the
// split engine through normal operation.
type ItemShare struct {
	ItemID   string
	PersonID string
	Weight   float64
}
