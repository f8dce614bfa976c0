package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

func TestSQLiteStorage_GetCategorySummary(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedMixedTransactions(t, store)

	summary, err := store.GetCategorySummary(ctx, baseDate.Add(-72*time.Hour), baseDate.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("GetCategorySummary() error = %v", err)
	}

	want := []service.CategoryTotal{
		{Category: model.CategoryUtilities, Count: 1, Total: decimal.RequireFromString("1200")},
		{Category: model.CategorySupplies, Count: 1, Total: decimal.RequireFromString("750.25")},
		{Category: model.CategorySales, Count: 3, Total: decimal.RequireFromString("601.5")},
	}
	if len(summary) != len(want) {
		t.Fatalf("GetCategorySummary() returned %d rows, want %d", len(summary), len(want))
	}
	for i, w := range want {
		if summary[i].Category != w.Category || summary[i].Count != w.Count || !summary[i].Total.Equal(w.Total) {
			t.Errorf("row %d = %+v, want %+v", i, summary[i], w)
		}
	}
}

func TestSQLiteStorage_UpdateTransactionCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedMixedTransactions(t, store)

	if err := store.UpdateTransactionCategory(ctx, "rec-1", model.CategoryRent); err != nil {
		t.Fatalf("UpdateTransactionCategory() error = %v", err)
	}

	got, err := store.GetTransactionByID(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if got.Category != model.CategoryRent || got.CategoryConfidence != 1.0 {
		t.Errorf("category = %q/%v, want %q/1", got.Category, got.CategoryConfidence, model.CategoryRent)
	}

	if err := store.UpdateTransactionCategory(ctx, "missing", model.CategoryRent); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("UpdateTransactionCategory() error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateTransactionCategory(ctx, "rec-1", ""); !errors.Is(err, ErrEmptyString) {
		t.Errorf("UpdateTransactionCategory() error = %v, want ErrEmptyString", err)
	}
}

func TestSQLiteStorage_DeleteTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedMixedTransactions(t, store)

	if err := store.DeleteTransaction(ctx, "rec-2"); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if _, err := store.GetTransactionByID(ctx, "rec-2"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetTransactionByID() error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTransaction(ctx, "rec-2"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("second DeleteTransaction() error = %v, want ErrNotFound", err)
	}
}
