// Package models defines the core domain models for Tabby.
//
// # Models
//
//   - Bill: a parsed receipt with bill-level amounts (subtotal, tax, tip,
//     service fee, discount, total) and its items, people, and shares
//   - Item: a single line item on a bill
//   - Person: a participant splitting a bill (not a login account)
//   - ItemShare: a weighted assignment of an item to a person
//   - User: a registered account that owns bills (authentication)
//
// All monetary fields are integer cents (money.Cents). Floating-point
// dollars appear only in the HTTP layer, which converts at the boundary.
//
// # Design Principles
//
//  1. People on a bill are bill-scoped rows, not user accounts: splitting a
//     receipt with someone must not require them to register.
//  2. ItemShare weights are relative, not fractions: two shares of weight 1
//     and weight 2 mean a 1/3–2/3 split. Normalization happens in the
//     split engine, never in storage.
//  3. Computed results (engine.PersonTotal) are views and are never
//     persisted; they are recomputed from these models on every read.
//  4. Avoid circular references: relationships use ID strings, not pointers.
package models
