package classification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

// VendorLookup finds remembered counter-party categories.
type VendorLookup interface {
	GetVendor(ctx context.Context, name string) (*model.Vendor, error)
	RecordVendorUse(ctx context.Context, name string) error
}

// VendorCategorizer prefers a remembered vendor category and otherwise defers
// to a fallback categorizer.
type VendorCategorizer struct {
	vendors  VendorLookup
	fallback service.Categorizer
	logger   *slog.Logger
}

// NewVendorCategorizer creates a categorizer that consults vendors before fallback.
func NewVendorCategorizer(vendors VendorLookup, fallback service.Categorizer) *VendorCategorizer {
	return &VendorCategorizer{
		vendors:  vendors,
		fallback: fallback,
		logger:   slog.Default(),
	}
}

// Categorize returns the vendor rule's category with full confidence when one matches.
func (c *VendorCategorizer) Categorize(ctx context.Context, txn model.Transaction) (string, float64) {
	if key := model.VendorKey(txn); key != "" {
		vendor, err := c.vendors.GetVendor(ctx, key)
		switch {
		case err == nil:
			if useErr := c.vendors.RecordVendorUse(ctx, key); useErr != nil {
				c.logger.Warn("Failed to record vendor use", "vendor", key, "error", useErr)
			}
			return vendor.Category, 1.0
		case !errors.Is(err, common.ErrNotFound):
			c.logger.Warn("Vendor lookup failed, using patterns", "vendor", key, "error", err)
		}
	}
	return c.fallback.Categorize(ctx, txn)
}
