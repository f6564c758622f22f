// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/peytondoyle/tabby/internal/models"
	"github.com/peytondoyle/tabby/internal/money"
	"github.com/peytondoyle/tabby/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a bill with its items, people, and shares.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}
	if bill.Currency == "" {
		bill.Currency = "USD"
	}
	if bill.Title == "" {
		bill.Title = generateTitle(bill.People)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, owner_id, title, currency, subtotal_cents, tax_cents,
		 tip_cents, fee_cents, discount_cents, total_cents, payer_person_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.OwnerID, bill.Title, bill.Currency,
		int64(bill.Subtotal), int64(bill.Tax), int64(bill.Tip),
		int64(bill.ServiceFee), int64(bill.Discount),
		nullableTotal(bill), nullableString(bill.PayerID), bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBill replaces the bill's fields and all of its children.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, currency = ?, subtotal_cents = ?, tax_cents = ?,
		 tip_cents = ?, fee_cents = ?, discount_cents = ?, total_cents = ?, payer_person_id = ?
		 WHERE id = ?`,
		bill.Title, bill.Currency,
		int64(bill.Subtotal), int64(bill.Tax), int64(bill.Tip),
		int64(bill.ServiceFee), int64(bill.Discount),
		nullableTotal(bill), nullableString(bill.PayerID), bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}

	// Shares cascade off items, so dropping items and people clears them.
	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM people WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to clear people: %w", err)
	}

	if err := insertChildren(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertChildren writes the bill's items, people, and shares. Shares with
// non-positive weights are skipped; absent is the canonical form of zero.
func insertChildren(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i := range bill.People {
		p := &bill.People[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.BillID = bill.ID
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO people (id, bill_id, name) VALUES (?, ?, ?)",
			p.ID, bill.ID, p.Name,
		); err != nil {
			return fmt.Errorf("failed to insert person: %w", err)
		}
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.BillID = bill.ID
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, label, price_cents, quantity) VALUES (?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Label, int64(item.Price), qty,
		); err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	for _, share := range bill.Shares {
		if share.Weight <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO item_shares (item_id, person_id, weight) VALUES (?, ?, ?)",
			share.ItemID, share.PersonID, share.Weight,
		); err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}
	return nil
}

// GetBill retrieves a bill by ID with its items, people, and shares.
// Children come back ordered by rowid, i.e. insertion order, which the
// split engine relies on for stable tie-breaks.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{}
	var totalCents sql.NullInt64
	var payerID sql.NullString
	var subtotal, tax, tip, fee, discount int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, title, currency, subtotal_cents, tax_cents, tip_cents,
		 fee_cents, discount_cents, total_cents, payer_person_id, created_at
		 FROM bills WHERE id = ?`, billID,
	).Scan(&bill.ID, &bill.OwnerID, &bill.Title, &bill.Currency,
		&subtotal, &tax, &tip, &fee, &discount, &totalCents, &payerID, &bill.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Subtotal = money.Cents(subtotal)
	bill.Tax = money.Cents(tax)
	bill.Tip = money.Cents(tip)
	bill.ServiceFee = money.Cents(fee)
	bill.Discount = money.Cents(discount)
	if totalCents.Valid {
		bill.Total = money.Cents(totalCents.Int64)
		bill.TotalKnown = true
	}
	if payerID.Valid {
		bill.PayerID = payerID.String
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name FROM people WHERE bill_id = ? ORDER BY rowid", billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p := models.Person{BillID: billID}
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		bill.People = append(bill.People, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, label, price_cents, quantity FROM items WHERE bill_id = ? ORDER BY rowid", billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		item := models.Item{BillID: billID}
		var price int64
		if err := itemRows.Scan(&item.ID, &item.Label, &price, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Price = money.Cents(price)
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	shareRows, err := s.db.QueryContext(ctx,
		`SELECT item_id, person_id, weight FROM item_shares
		 WHERE item_id IN (SELECT id FROM items WHERE bill_id = ?) ORDER BY rowid`, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer shareRows.Close()
	for shareRows.Next() {
		var share models.ItemShare
		if err := shareRows.Scan(&share.ItemID, &share.PersonID, &share.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		bill.Shares = append(bill.Shares, share)
	}
	if err := shareRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return bill, nil
}

// DeleteBill removes a bill; children go with it via cascading deletes.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// ListBillsByOwner returns bill summaries for one user, newest first.
func (s *SQLiteStore) ListBillsByOwner(ctx context.Context, ownerID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, title, currency, subtotal_cents, tax_cents, tip_cents,
		 fee_cents, discount_cents, total_cents, payer_person_id, created_at
		 FROM bills WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []models.Bill
	for rows.Next() {
		var bill models.Bill
		var totalCents sql.NullInt64
		var payerID sql.NullString
		var subtotal, tax, tip, fee, discount int64
		if err := rows.Scan(&bill.ID, &bill.OwnerID, &bill.Title, &bill.Currency,
			&subtotal, &tax, &tip, &fee, &discount, &totalCents, &payerID, &bill.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bill.Subtotal = money.Cents(subtotal)
		bill.Tax = money.Cents(tax)
		bill.Tip = money.Cents(tip)
		bill.ServiceFee = money.Cents(fee)
		bill.Discount = money.Cents(discount)
		if totalCents.Valid {
			bill.Total = money.Cents(totalCents.Int64)
			bill.TotalKnown = true
		}
		if payerID.Valid {
			bill.PayerID = payerID.String
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// UpsertShare writes one assignment row; weight <= 0 deletes it.
func (s *SQLiteStore) UpsertShare(ctx context.Context, itemID, personID string, weight float64) error {
	if weight <= 0 {
		_, err := s.db.ExecContext(ctx,
			"DELETE FROM item_shares WHERE item_id = ? AND person_id = ?", itemID, personID)
		if err != nil {
			return fmt.Errorf("failed to delete share: %w", err)
		}
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO item_shares (item_id, person_id, weight) VALUES (?, ?, ?)
		 ON CONFLICT(item_id, person_id) DO UPDATE SET weight = excluded.weight`,
		itemID, personID, weight)
	if err != nil {
		return fmt.Errorf("failed to upsert share: %w", err)
	}
	return nil
}

func nullableTotal(bill *models.Bill) any {
	if !bill.TotalKnown {
		return nil
	}
	return int64(bill.Total)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// generateTitle creates an auto-generated title from the people on a bill.
func generateTitle(people []models.Person) string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Name)
	}
	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
