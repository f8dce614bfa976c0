package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

// GetCategorySummary totals amounts per category between start and end inclusive,
// largest total first.
func (s *SQLiteStorage) GetCategorySummary(ctx context.Context, start, end time.Time) ([]service.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, amount
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date <= ?
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string]*service.CategoryTotal)
	for rows.Next() {
		var category string
		var amount decimal.Decimal
		if scanErr := rows.Scan(&category, &amount); scanErr != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", scanErr)
		}
		total, ok := totals[category]
		if !ok {
			total = &service.CategoryTotal{Category: category}
			totals[category] = total
		}
		total.Count++
		total.Total = total.Total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}

	summary := make([]service.CategoryTotal, 0, len(totals))
	for _, total := range totals {
		summary = append(summary, *total)
	}
	sort.Slice(summary, func(i, j int) bool {
		if cmp := summary[i].Total.Cmp(summary[j].Total); cmp != 0 {
			return cmp > 0
		}
		return summary[i].Category < summary[j].Category
	})
	return summary, nil
}

// UpdateTransactionCategory reassigns one record to category with full confidence.
func (s *SQLiteStorage) UpdateTransactionCategory(ctx context.Context, id, category string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions SET category = ?, category_confidence = 1.0
		WHERE id = ?
	`, category, id)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}

	slog.Debug("Updated transaction category", "id", id, "category", category)
	return nil
}

// DeleteTransaction removes one record.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	return nil
}
