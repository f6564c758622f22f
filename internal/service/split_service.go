// Package service implements the application services between the HTTP
// handlers and the storage/engine layers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/peytondoyle/tabby/internal/engine"
	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/money"
	"github.com/peytondoyle/tabby/internal/storage"
)

// SplitService owns bill CRUD, share assignment, and total computation.
// Totals are never stored: every read recomputes them from the persisted
// assignment state through the split engine.
type SplitService struct {
	store  storage.Store
	policy engine.Policy
}

// NewSplitService creates a SplitService with the given storage backend
// and default split policy.
func NewSplitService(store storage.Store, policy engine.Policy) *SplitService {
	return &SplitService{store: store, policy: policy}
}

// Preview runs the split engine over an unsaved bill with the service's
// default policy. Used by the stateless preview endpoint; nothing is
// persisted.
func (s *SplitService) Preview(bill models.Bill) (*engine.Result, error) {
	return s.PreviewWithPolicy(bill, s.policy)
}

// PreviewWithPolicy is Preview with a caller-supplied policy override.
func (s *SplitService) PreviewWithPolicy(bill models.Bill, policy engine.Policy) (*engine.Result, error) {
	if err := validateBill(&bill); err != nil {
		return nil, err
	}
	if policy.DefaultPayerID == "" {
		policy.DefaultPayerID = bill.PayerID
	}
	res, err := engine.Recompute(bill, bill.Items, bill.People, bill.Shares, policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return res, nil
}

// CreateBill validates and persists a bill, returning the computed totals.
func (s *SplitService) CreateBill(ctx context.Context, ownerID string, bill *models.Bill) (*engine.Result, error) {
	bill.OwnerID = ownerID
	if err := validateBill(bill); err != nil {
		return nil, err
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "error", err)
		return nil, err
	}
	return s.recompute(bill)
}

// GetBill loads a bill the user owns, with freshly computed totals.
func (s *SplitService) GetBill(ctx context.Context, userID, billID string) (*models.Bill, *engine.Result, error) {
	bill, err := s.authorized(ctx, userID, billID)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.recompute(bill)
	if err != nil {
		return nil, nil, err
	}
	return bill, res, nil
}

// UpdateBill replaces a bill the user owns and returns the new totals.
func (s *SplitService) UpdateBill(ctx context.Context, userID, billID string, bill *models.Bill) (*engine.Result, error) {
	existing, err := s.authorized(ctx, userID, billID)
	if err != nil {
		return nil, err
	}

	bill.ID = existing.ID
	bill.OwnerID = existing.OwnerID
	bill.CreatedAt = existing.CreatedAt
	if err := validateBill(bill); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("UpdateBill failed", "bill_id", billID, "error", err)
		return nil, mapStorageErr(err)
	}
	return s.recompute(bill)
}

// DeleteBill removes a bill the user owns.
func (s *SplitService) DeleteBill(ctx context.Context, userID, billID string) error {
	if _, err := s.authorized(ctx, userID, billID); err != nil {
		return err
	}
	return mapStorageErr(s.store.DeleteBill(ctx, billID))
}

// ListBills returns summaries of the user's bills, newest first.
func (s *SplitService) ListBills(ctx context.Context, userID string) ([]models.Bill, error) {
	return s.store.ListBillsByOwner(ctx, userID)
}

// UpsertShare writes one assignment (weight <= 0 deletes it) and returns
// the recomputed totals, so the UI can refresh on every drag.
func (s *SplitService) UpsertShare(ctx context.Context, userID, billID, itemID, personID string, weight float64) (*engine.Result, error) {
	bill, err := s.authorized(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	if !hasItem(bill, itemID) {
		return nil, fmt.Errorf("%w: item %s is not on this bill", ErrInvalid, itemID)
	}
	if !hasPerson(bill, personID) {
		return nil, fmt.Errorf("%w: person %s is not on this bill", ErrInvalid, personID)
	}

	if err := s.store.UpsertShare(ctx, itemID, personID, weight); err != nil {
		slog.Error("UpsertShare failed", "bill_id", billID, "item_id", itemID, "error", err)
		return nil, err
	}

	bill, err = s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	return s.recompute(bill)
}

// Totals recomputes the person totals for a bill the user owns.
func (s *SplitService) Totals(ctx context.Context, userID, billID string) (*engine.Result, error) {
	_, res, err := s.GetBill(ctx, userID, billID)
	return res, err
}

// Settlement returns the transfers that square the bill against its
// payer. Bills without a payer have nobody to settle toward.
func (s *SplitService) Settlement(ctx context.Context, userID, billID string) ([]engine.DebtEdge, error) {
	bill, res, err := s.GetBill(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	if bill.PayerID == "" {
		return nil, fmt.Errorf("%w: bill has no payer", ErrInvalid)
	}

	var paid money.Cents
	for _, t := range res.PersonTotals {
		paid += t.Total
	}
	payments := map[string]money.Cents{bill.PayerID: paid}
	return engine.Settle(res.PersonTotals, payments), nil
}

func (s *SplitService) recompute(bill *models.Bill) (*engine.Result, error) {
	policy := s.policy
	if policy.DefaultPayerID == "" {
		policy.DefaultPayerID = bill.PayerID
	}
	res, err := engine.Recompute(*bill, bill.Items, bill.People, bill.Shares, policy)
	if err != nil {
		slog.Error("Recompute failed", "bill_id", bill.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return res, nil
}

// authorized loads a bill and checks the caller owns it.
func (s *SplitService) authorized(ctx context.Context, userID, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, mapStorageErr(err)
	}
	if bill.OwnerID != userID {
		return nil, ErrForbidden
	}
	return bill, nil
}

func validateBill(bill *models.Bill) error {
	if bill.Subtotal < 0 || bill.Tax < 0 || bill.Tip < 0 || bill.ServiceFee < 0 {
		return fmt.Errorf("%w: bill amounts must not be negative", ErrInvalid)
	}
	for _, item := range bill.Items {
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q has a negative price", ErrInvalid, item.Label)
		}
	}
	for _, share := range bill.Shares {
		if share.Weight <= 0 {
			return fmt.Errorf("%w: share weights must be positive", ErrInvalid)
		}
		if !hasItem(bill, share.ItemID) || !hasPerson(bill, share.PersonID) {
			return fmt.Errorf("%w: share references an unknown item or person", ErrInvalid)
		}
	}
	if bill.PayerID != "" && !hasPerson(bill, bill.PayerID) {
		return fmt.Errorf("%w: payer %q must be one of the people on the bill", ErrInvalid, bill.PayerID)
	}
	return nil
}

func hasItem(bill *models.Bill, itemID string) bool {
	for _, item := range bill.Items {
		if item.ID == itemID {
			return true
		}
	}
	return false
}

func hasPerson(bill *models.Bill, personID string) bool {
	for _, p := range bill.People {
		if p.ID == personID {
			return true
		}
	}
	return false
}

func mapStorageErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%v: %w", err, ErrNotFound)
	}
	return err
}
