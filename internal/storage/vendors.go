package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
)

const vendorCacheTTL = 5 * time.Minute

// GetVendor retrieves the rule for a vendor key. It returns common.ErrNotFound when
// no rule exists.
func (s *SQLiteStorage) GetVendor(ctx context.Context, name string) (*model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	if vendor := s.getCachedVendor(name); vendor != nil {
		return vendor, nil
	}

	var vendor model.Vendor
	err := s.db.QueryRowContext(ctx, `
		SELECT name, category, source, use_count, last_updated
		FROM vendors
		WHERE name = ?
	`, name).Scan(
		&vendor.Name,
		&vendor.Category,
		&vendor.Source,
		&vendor.UseCount,
		&vendor.LastUpdated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: vendor %s", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}

	s.cacheVendor(&vendor)
	return &vendor, nil
}

// SaveVendor creates or replaces a vendor rule. The use count of an existing rule is kept.
func (s *SQLiteStorage) SaveVendor(ctx context.Context, vendor *model.Vendor) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateVendor(vendor); err != nil {
		return err
	}

	if vendor.LastUpdated.IsZero() {
		vendor.LastUpdated = time.Now()
	}
	if vendor.Source == "" {
		vendor.Source = model.VendorManual
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vendors (name, category, source, use_count, last_updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			category = excluded.category,
			source = excluded.source,
			last_updated = excluded.last_updated
	`, vendor.Name, vendor.Category, string(vendor.Source), vendor.UseCount, vendor.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("failed to save vendor: %w", err)
	}

	s.forgetVendor(vendor.Name)
	return nil
}

// RecordVendorUse counts one more record categorized by the named rule.
func (s *SQLiteStorage) RecordVendorUse(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE vendors SET use_count = use_count + 1 WHERE name = ?
	`, name)
	if err != nil {
		return fmt.Errorf("failed to record vendor use: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: vendor %s", common.ErrNotFound, name)
	}

	s.forgetVendor(name)
	return nil
}

// GetAllVendors retrieves all vendor rules, most used first.
func (s *SQLiteStorage) GetAllVendors(ctx context.Context) ([]model.Vendor, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, category, source, use_count, last_updated
		FROM vendors
		ORDER BY use_count DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var vendors []model.Vendor
	for rows.Next() {
		var vendor model.Vendor
		if err := rows.Scan(
			&vendor.Name,
			&vendor.Category,
			&vendor.Source,
			&vendor.UseCount,
			&vendor.LastUpdated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}

	return vendors, rows.Err()
}

// DeleteVendor deletes a vendor rule.
func (s *SQLiteStorage) DeleteVendor(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM vendors WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: vendor %s", common.ErrNotFound, name)
	}

	s.forgetVendor(name)
	return nil
}

// WarmVendorCache loads all vendors into the cache.
func (s *SQLiteStorage) WarmVendorCache(ctx context.Context) error {
	vendors, err := s.GetAllVendors(ctx)
	if err != nil {
		return err
	}

	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.vendorCache = make(map[string]*model.Vendor, len(vendors))
	for i := range vendors {
		s.vendorCache[vendors[i].Name] = &vendors[i]
	}
	s.cacheExpiry = time.Now().Add(vendorCacheTTL)
	return nil
}

// getCachedVendor returns a copy of the cached rule, or nil on a miss.
func (s *SQLiteStorage) getCachedVendor(name string) *model.Vendor {
	s.cacheMutex.RLock()
	expired := time.Now().After(s.cacheExpiry)
	vendor := s.vendorCache[name]
	s.cacheMutex.RUnlock()

	if expired {
		s.cacheMutex.Lock()
		// Another reader may have reset the cache already.
		if time.Now().After(s.cacheExpiry) {
			s.vendorCache = make(map[string]*model.Vendor)
		}
		s.cacheMutex.Unlock()
		return nil
	}
	if vendor == nil {
		return nil
	}

	cp := *vendor
	return &cp
}

func (s *SQLiteStorage) cacheVendor(vendor *model.Vendor) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.vendorCache) == 0 {
		s.cacheExpiry = time.Now().Add(vendorCacheTTL)
	}
	cp := *vendor
	s.vendorCache[vendor.Name] = &cp
}

func (s *SQLiteStorage) forgetVendor(name string) {
	s.cacheMutex.Lock()
	delete(s.vendorCache, name)
	s.cacheMutex.Unlock()
}

func validateVendor(vendor *model.Vendor) error {
	if vendor == nil {
		return fmt.Errorf("%w: vendor is nil", ErrInvalidVendor)
	}
	if strings.TrimSpace(vendor.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidVendor)
	}
	if strings.TrimSpace(vendor.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidVendor)
	}
	return nil
}
