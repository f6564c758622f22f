package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "tabby-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, "Tester", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func testBill(owner string) *models.Bill {
	return &models.Bill{
		OwnerID:    owner,
		Subtotal:   3000,
		Tax:        240,
		Tip:        450,
		Total:      3690,
		TotalKnown: true,
		People: []models.Person{
			{Name: "Alice"},
			{Name: "Bob"},
		},
		Items: []models.Item{
			{Label: "Pizza", Price: 2000, Quantity: 1},
			{Label: "Beer", Price: 500, Quantity: 2},
		},
	}
}

func TestSQLiteStore_Bills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := testUser(t, store, "owner@example.com")

	t.Run("CreateBill generates IDs and title", func(t *testing.T) {
		bill := testBill(owner.ID)
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.Title == "" {
			t.Error("Expected bill title to be generated")
		}
		if bill.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
		for _, p := range bill.People {
			if p.ID == "" {
				t.Error("Expected person ID to be generated")
			}
		}
		for _, item := range bill.Items {
			if item.ID == "" {
				t.Error("Expected item ID to be generated")
			}
		}
	})

	t.Run("GetBill round-trips everything in order", func(t *testing.T) {
		original := testBill(owner.ID)
		if err := store.CreateBill(ctx, original); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if err := store.UpsertShare(ctx, original.Items[0].ID, original.People[0].ID, 2); err != nil {
			t.Fatalf("UpsertShare failed: %v", err)
		}
		if err := store.UpsertShare(ctx, original.Items[0].ID, original.People[1].ID, 1); err != nil {
			t.Fatalf("UpsertShare failed: %v", err)
		}

		got, err := store.GetBill(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Subtotal != 3000 || got.Tax != 240 || got.Tip != 450 {
			t.Errorf("amounts did not round-trip: %+v", got)
		}
		if !got.TotalKnown || got.Total != 3690 {
			t.Errorf("total did not round-trip: known=%v total=%d", got.TotalKnown, got.Total)
		}
		if len(got.People) != 2 || got.People[0].Name != "Alice" || got.People[1].Name != "Bob" {
			t.Errorf("people out of order: %+v", got.People)
		}
		if len(got.Items) != 2 || got.Items[0].Label != "Pizza" || got.Items[1].Quantity != 2 {
			t.Errorf("items did not round-trip: %+v", got.Items)
		}
		if len(got.Shares) != 2 {
			t.Fatalf("expected 2 shares, got %d", len(got.Shares))
		}
		if got.Shares[0].Weight != 2 || got.Shares[1].Weight != 1 {
			t.Errorf("share weights did not round-trip: %+v", got.Shares)
		}
	})

	t.Run("missing total stored as NULL", func(t *testing.T) {
		bill := testBill(owner.ID)
		bill.TotalKnown = false
		bill.Total = 0
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.TotalKnown {
			t.Error("Expected TotalKnown to be false")
		}
	})

	t.Run("UpdateBill replaces children", func(t *testing.T) {
		bill := testBill(owner.ID)
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		bill.Title = "Updated dinner"
		bill.Items = []models.Item{{Label: "Ramen", Price: 1500, Quantity: 1}}
		bill.People = []models.Person{{Name: "Carol"}}
		if err := store.UpdateBill(ctx, bill); err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Title != "Updated dinner" {
			t.Errorf("title = %q", got.Title)
		}
		if len(got.Items) != 1 || got.Items[0].Label != "Ramen" {
			t.Errorf("items not replaced: %+v", got.Items)
		}
		if len(got.People) != 1 || got.People[0].Name != "Carol" {
			t.Errorf("people not replaced: %+v", got.People)
		}
		if len(got.Shares) != 0 {
			t.Errorf("shares should cascade away on replace: %+v", got.Shares)
		}
	})

	t.Run("UpdateBill of unknown bill is ErrNotFound", func(t *testing.T) {
		bill := testBill(owner.ID)
		bill.ID = "nope"
		if err := store.UpdateBill(ctx, bill); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteBill cascades", func(t *testing.T) {
		bill := testBill(owner.ID)
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStore_UpsertShare(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := testUser(t, store, "shares@example.com")

	bill := testBill(owner.ID)
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	itemID, personID := bill.Items[0].ID, bill.People[0].ID

	if err := store.UpsertShare(ctx, itemID, personID, 1); err != nil {
		t.Fatalf("UpsertShare failed: %v", err)
	}
	if err := store.UpsertShare(ctx, itemID, personID, 2.5); err != nil {
		t.Fatalf("UpsertShare (update) failed: %v", err)
	}

	got, err := store.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if len(got.Shares) != 1 || got.Shares[0].Weight != 2.5 {
		t.Fatalf("expected single share with weight 2.5, got %+v", got.Shares)
	}

	// Weight <= 0 is a delete.
	if err := store.UpsertShare(ctx, itemID, personID, 0); err != nil {
		t.Fatalf("UpsertShare (delete) failed: %v", err)
	}
	got, err = store.GetBill(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetBill failed: %v", err)
	}
	if len(got.Shares) != 0 {
		t.Fatalf("expected share to be deleted, got %+v", got.Shares)
	}
}

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("alice@example.com", "Alice", "bcrypt-hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID || byEmail.DisplayName != "Alice" {
		t.Errorf("user did not round-trip: %+v", byEmail)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != "alice@example.com" {
		t.Errorf("email = %q", byID.Email)
	}

	if err := store.CreateUser(ctx, models.NewUser("alice@example.com", "Dup", "h")); err == nil {
		t.Error("expected duplicate email to fail")
	}

	if _, err := store.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
