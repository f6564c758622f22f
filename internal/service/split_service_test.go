package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peytondoyle/tabby/internal/auth"
	"github.com/peytondoyle/tabby/internal/engine"
	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/money"
	"github.com/peytondoyle/tabby/internal/storage/sqlite"
)

func newTestServices(t *testing.T) (*SplitService, *AuthService) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	splits := NewSplitService(store, engine.Policy{})
	auths := NewAuthService(
		auth.NewPasswordAuthenticator(store),
		auth.NewJWTManager("test-secret-test-secret", time.Hour),
	)
	return splits, auths
}

func registerUser(t *testing.T, auths *AuthService, email string) *models.User {
	t.Helper()
	user, token, err := auths.Register(context.Background(), email, "Test User", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	return user
}

func dinnerBill(payer bool) *models.Bill {
	bill := &models.Bill{
		Title:      "Dinner",
		Subtotal:   3000,
		Tax:        300,
		Total:      3300,
		TotalKnown: true,
		People: []models.Person{
			{ID: "p-alice", Name: "Alice"},
			{ID: "p-bob", Name: "Bob"},
		},
		Items: []models.Item{
			{ID: "i-pasta", Label: "Pasta", Price: 2000},
			{ID: "i-salad", Label: "Salad", Price: 1000},
		},
		Shares: []models.ItemShare{
			{ItemID: "i-pasta", PersonID: "p-alice", Weight: 1},
			{ItemID: "i-salad", PersonID: "p-bob", Weight: 1},
		},
	}
	if payer {
		bill.PayerID = "p-alice"
	}
	return bill
}

func TestSplitService_CreateAndGet(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	bill := dinnerBill(false)
	res, err := splits.CreateBill(ctx, owner.ID, bill)
	require.NoError(t, err)
	require.Len(t, res.PersonTotals, 2)
	assert.Equal(t, money.Cents(2200), res.PersonTotals[0].Total)
	assert.Equal(t, money.Cents(1100), res.PersonTotals[1].Total)

	got, gotRes, err := splits.GetBill(ctx, owner.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, res.PersonTotals, gotRes.PersonTotals)
}

func TestSplitService_Preview(t *testing.T) {
	splits, _ := newTestServices(t)

	res, err := splits.Preview(*dinnerBill(false))
	require.NoError(t, err)
	require.Len(t, res.PersonTotals, 2)
	assert.Equal(t, money.Cents(2200), res.PersonTotals[0].Total)
}

func TestSplitService_OwnershipEnforced(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")
	stranger := registerUser(t, auths, "stranger@example.com")

	bill := dinnerBill(false)
	_, err := splits.CreateBill(ctx, owner.ID, bill)
	require.NoError(t, err)

	_, _, err = splits.GetBill(ctx, stranger.ID, bill.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = splits.DeleteBill(ctx, stranger.ID, bill.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = splits.UpsertShare(ctx, stranger.ID, bill.ID, "i-pasta", "p-bob", 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSplitService_NotFound(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	_, _, err := splits.GetBill(ctx, owner.ID, "no-such-bill")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSplitService_Validation(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	t.Run("negative amount", func(t *testing.T) {
		bill := dinnerBill(false)
		bill.Tax = -1
		_, err := splits.CreateBill(ctx, owner.ID, bill)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("unknown payer", func(t *testing.T) {
		bill := dinnerBill(false)
		bill.PayerID = "p-nobody"
		_, err := splits.CreateBill(ctx, owner.ID, bill)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("share references unknown item", func(t *testing.T) {
		bill := dinnerBill(false)
		bill.Shares = append(bill.Shares, models.ItemShare{ItemID: "i-ghost", PersonID: "p-alice", Weight: 1})
		_, err := splits.CreateBill(ctx, owner.ID, bill)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("non-positive weight", func(t *testing.T) {
		bill := dinnerBill(false)
		bill.Shares[0].Weight = 0
		_, err := splits.CreateBill(ctx, owner.ID, bill)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestSplitService_UpdateBill(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	bill := dinnerBill(false)
	_, err := splits.CreateBill(ctx, owner.ID, bill)
	require.NoError(t, err)

	updated := dinnerBill(false)
	updated.Tip = 600
	updated.Total = 3900
	res, err := splits.UpdateBill(ctx, owner.ID, bill.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(2600), res.PersonTotals[0].Total)
	assert.Equal(t, money.Cents(1300), res.PersonTotals[1].Total)

	got, _, err := splits.GetBill(ctx, owner.ID, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(600), got.Tip)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.Equal(t, bill.CreatedAt, got.CreatedAt)
}

func TestSplitService_UpsertShare(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	bill := dinnerBill(false)
	_, err := splits.CreateBill(ctx, owner.ID, bill)
	require.NoError(t, err)

	// Bob joins the pasta at equal weight.
	res, err := splits.UpsertShare(ctx, owner.ID, bill.ID, "i-pasta", "p-bob", 1)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(1100), res.PersonTotals[0].Total)
	assert.Equal(t, money.Cents(2200), res.PersonTotals[1].Total)

	// Weight zero removes the assignment again.
	res, err = splits.UpsertShare(ctx, owner.ID, bill.ID, "i-pasta", "p-bob", 0)
	require.NoError(t, err)
	assert.Equal(t, money.Cents(2200), res.PersonTotals[0].Total)

	_, err = splits.UpsertShare(ctx, owner.ID, bill.ID, "i-ghost", "p-bob", 1)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = splits.UpsertShare(ctx, owner.ID, bill.ID, "i-pasta", "p-ghost", 1)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSplitService_ListBills(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")
	other := registerUser(t, auths, "other@example.com")

	first := dinnerBill(false)
	first.CreatedAt = time.Now().Add(-time.Hour).Unix()
	_, err := splits.CreateBill(ctx, owner.ID, first)
	require.NoError(t, err)

	second := dinnerBill(false)
	second.Title = "Brunch"
	_, err = splits.CreateBill(ctx, owner.ID, second)
	require.NoError(t, err)

	bills, err := splits.ListBills(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "Brunch", bills[0].Title)

	bills, err = splits.ListBills(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestSplitService_Settlement(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	bill := dinnerBill(true)
	_, err := splits.CreateBill(ctx, owner.ID, bill)
	require.NoError(t, err)

	edges, err := splits.Settlement(ctx, owner.ID, bill.ID)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "p-bob", edges[0].FromPersonID)
	assert.Equal(t, "p-alice", edges[0].ToPersonID)
	assert.Equal(t, money.Cents(1100), edges[0].Amount)
}

func TestSplitService_SettlementNeedsPayer(t *testing.T) {
	splits, auths := newTestServices(t)
	ctx := context.Background()
	owner := registerUser(t, auths, "owner@example.com")

	bill := dinnerBill(false)
	_, err := splits.CreateBill(ctx, owner.ID, bill)
	require.NoError(t, err)

	_, err = splits.Settlement(ctx, owner.ID, bill.ID)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	_, auths := newTestServices(t)
	ctx := context.Background()

	user, token, err := auths.Register(ctx, "new@example.com", "New User", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, token)

	logged, token, err := auths.Login(ctx, "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token)

	_, _, err = auths.Login(ctx, "new@example.com", "wrongpassword")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, _, err = auths.Register(ctx, "new@example.com", "Dup", "password123")
	assert.ErrorIs(t, err, auth.ErrEmailExists)
}
