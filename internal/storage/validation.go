// Package storage provides the data persistence layer for bizbot.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidFilter      = errors.New("invalid transaction filter")
	ErrInvalidVendor      = errors.New("invalid vendor")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single record before it is written.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction is nil", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("%w: ID is required", ErrInvalidTransaction)
	}
	if !txn.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidTransaction, txn.Amount)
	}
	if !txn.Type.IsKnown() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidTransaction, txn.Type)
	}
	if txn.TransactionDate.IsZero() {
		return fmt.Errorf("%w: transaction date is required", ErrInvalidTransaction)
	}
	return nil
}

// validateFilter validates listing options.
func validateFilter(f service.TransactionFilter) error {
	if f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidFilter)
	}
	if f.Type != "" && !f.Type.IsKnown() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidFilter, f.Type)
	}
	if f.Start != nil && f.End != nil && f.End.Before(*f.Start) {
		return fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, *f.End, *f.Start)
	}
	return nil
}
