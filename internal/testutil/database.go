// Package testutil provides test helpers shared across bizbot packages: an
// isolated in-memory database and a fluent builder for transaction records.
package testutil

import (
	"context"
	"testing"

	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
	"github.com/decipher-hub/BizBot-ke/internal/storage"
)

// TestDB wraps an in-memory database for one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database, migrated and seeded with txns.
// It is closed automatically when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t,
//		testutil.NewTransaction("rec-1").Received("1500", "JOHN DOE").Build(),
//	)
func SetupTestDB(t *testing.T, txns ...model.Transaction) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	if len(txns) > 0 {
		db.Seed(txns...)
	}
	return db
}

// Seed inserts txns or fails the test.
func (db *TestDB) Seed(txns ...model.Transaction) {
	db.t.Helper()

	inserted, err := db.Storage.SaveTransactions(context.Background(), txns)
	if err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
	if inserted != len(txns) {
		db.t.Fatalf("seeded %d of %d transactions", inserted, len(txns))
	}
}

// MustCount returns the number of stored records or fails the test.
func (db *TestDB) MustCount() int {
	db.t.Helper()

	count, err := db.Storage.CountTransactions(context.Background(), service.TransactionFilter{})
	if err != nil {
		db.t.Fatalf("failed to count transactions: %v", err)
	}
	return count
}
