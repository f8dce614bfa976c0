package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
)

func TestSQLiteStorage_SaveAndGetVendor(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	vendor := &model.Vendor{Name: "522522", Category: model.CategorySupplies}
	if err := store.SaveVendor(ctx, vendor); err != nil {
		t.Fatalf("SaveVendor() error = %v", err)
	}
	if vendor.Source != model.VendorManual {
		t.Errorf("Source = %q, want default %q", vendor.Source, model.VendorManual)
	}
	if vendor.LastUpdated.IsZero() {
		t.Error("LastUpdated was not set")
	}

	got, err := store.GetVendor(ctx, "522522")
	if err != nil {
		t.Fatalf("GetVendor() error = %v", err)
	}
	if got.Category != model.CategorySupplies || got.Source != model.VendorManual {
		t.Errorf("GetVendor() = %+v", got)
	}

	if _, err := store.GetVendor(ctx, "888880"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetVendor(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_SaveVendorKeepsUseCount(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveVendor(ctx, &model.Vendor{Name: "JOHN DOE", Category: model.CategorySales}); err != nil {
		t.Fatalf("SaveVendor() error = %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.RecordVendorUse(ctx, "JOHN DOE"); err != nil {
			t.Fatalf("RecordVendorUse() error = %v", err)
		}
	}

	// Re-categorizing replaces the category but keeps the history.
	if err := store.SaveVendor(ctx, &model.Vendor{Name: "JOHN DOE", Category: model.CategorySupplies}); err != nil {
		t.Fatalf("SaveVendor() update error = %v", err)
	}

	got, err := store.GetVendor(ctx, "JOHN DOE")
	if err != nil {
		t.Fatalf("GetVendor() error = %v", err)
	}
	if got.Category != model.CategorySupplies {
		t.Errorf("Category = %s, want %s", got.Category, model.CategorySupplies)
	}
	if got.UseCount != 3 {
		t.Errorf("UseCount = %d, want 3", got.UseCount)
	}

	if err := store.RecordVendorUse(ctx, "JANE DOE"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("RecordVendorUse(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_VendorValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		vendor *model.Vendor
		name   string
	}{
		{name: "nil vendor", vendor: nil},
		{name: "missing name", vendor: &model.Vendor{Category: model.CategoryRent}},
		{name: "missing category", vendor: &model.Vendor{Name: "LANDLORD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveVendor(ctx, tt.vendor); !errors.Is(err, ErrInvalidVendor) {
				t.Errorf("SaveVendor() error = %v, want ErrInvalidVendor", err)
			}
		})
	}
}

func TestSQLiteStorage_GetAllVendors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"B VENDOR", "A VENDOR", "C VENDOR"} {
		if err := store.SaveVendor(ctx, &model.Vendor{Name: name, Category: model.CategorySupplies}); err != nil {
			t.Fatalf("SaveVendor(%s) error = %v", name, err)
		}
	}
	if err := store.RecordVendorUse(ctx, "C VENDOR"); err != nil {
		t.Fatalf("RecordVendorUse() error = %v", err)
	}

	vendors, err := store.GetAllVendors(ctx)
	if err != nil {
		t.Fatalf("GetAllVendors() error = %v", err)
	}

	want := []string{"C VENDOR", "A VENDOR", "B VENDOR"}
	if len(vendors) != len(want) {
		t.Fatalf("GetAllVendors() returned %d vendors, want %d", len(vendors), len(want))
	}
	for i, name := range want {
		if vendors[i].Name != name {
			t.Errorf("vendors[%d] = %s, want %s", i, vendors[i].Name, name)
		}
	}
}

func TestSQLiteStorage_VendorCache(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for _, name := range []string{"KPLC", "ZUKU"} {
		if err := store.SaveVendor(ctx, &model.Vendor{Name: name, Category: model.CategoryUtilities}); err != nil {
			t.Fatalf("SaveVendor() error = %v", err)
		}
	}

	if err := store.WarmVendorCache(ctx); err != nil {
		t.Fatalf("WarmVendorCache() error = %v", err)
	}
	for _, name := range []string{"KPLC", "ZUKU"} {
		if cached := store.getCachedVendor(name); cached == nil || cached.Category != model.CategoryUtilities {
			t.Errorf("vendor %s not cached after warming: %+v", name, cached)
		}
	}

	// Writes drop the stale entry.
	if err := store.SaveVendor(ctx, &model.Vendor{Name: "KPLC", Category: model.CategoryRent}); err != nil {
		t.Fatalf("SaveVendor() update error = %v", err)
	}
	if cached := store.getCachedVendor("KPLC"); cached != nil {
		t.Errorf("stale vendor still cached: %+v", cached)
	}
	got, err := store.GetVendor(ctx, "KPLC")
	if err != nil {
		t.Fatalf("GetVendor() error = %v", err)
	}
	if got.Category != model.CategoryRent {
		t.Errorf("Category = %s, want %s", got.Category, model.CategoryRent)
	}

	// Expired entries are not served.
	store.cacheMutex.Lock()
	store.cacheExpiry = time.Now().Add(-time.Second)
	store.cacheMutex.Unlock()
	if cached := store.getCachedVendor("ZUKU"); cached != nil {
		t.Errorf("expired cache served %+v", cached)
	}
}

func TestSQLiteStorage_DeleteVendor(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveVendor(ctx, &model.Vendor{Name: "LANDLORD", Category: model.CategoryRent}); err != nil {
		t.Fatalf("SaveVendor() error = %v", err)
	}
	if _, err := store.GetVendor(ctx, "LANDLORD"); err != nil {
		t.Fatalf("GetVendor() error = %v", err)
	}

	if err := store.DeleteVendor(ctx, "LANDLORD"); err != nil {
		t.Fatalf("DeleteVendor() error = %v", err)
	}
	if _, err := store.GetVendor(ctx, "LANDLORD"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetVendor() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteVendor(ctx, "LANDLORD"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("DeleteVendor() twice error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_VendorConcurrentAccess(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveVendor(ctx, &model.Vendor{Name: "NAIVAS", Category: model.CategorySupplies}); err != nil {
		t.Fatalf("SaveVendor() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.GetVendor(ctx, "NAIVAS"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if err := store.RecordVendorUse(ctx, "NAIVAS"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent vendor access error: %v", err)
	}

	// Read past the cache, which a racing reader may have refilled.
	vendors, err := store.GetAllVendors(ctx)
	if err != nil {
		t.Fatalf("GetAllVendors() error = %v", err)
	}
	if len(vendors) != 1 || vendors[0].UseCount != 10 {
		t.Errorf("GetAllVendors() = %+v, want NAIVAS used 10 times", vendors)
	}
}
