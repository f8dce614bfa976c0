// Package service defines the interfaces shared by bizbot's components.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// TransactionFilter narrows transaction listings. Zero values match everything.
type TransactionFilter struct {
	Start    *time.Time
	End      *time.Time
	Type     model.TransactionType
	Category string
	Search   string // substring of a party name, transaction code or account number
	Limit    int
	Offset   int
}

// TypeTotal aggregates the transactions of one type.
type TypeTotal struct {
	Total decimal.Decimal
	Type  model.TransactionType
	Count int
}

// CategoryTotal aggregates the transactions of one category.
type CategoryTotal struct {
	Total    decimal.Decimal
	Category string
	Count    int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactionByMpesaID(ctx context.Context, mpesaID string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	CountTransactions(ctx context.Context, filter TransactionFilter) (int, error)
	GetTypeSummary(ctx context.Context, start, end time.Time) ([]TypeTotal, error)
	GetCategorySummary(ctx context.Context, start, end time.Time) ([]CategoryTotal, error)
	UpdateTransactionCategory(ctx context.Context, id, category string) error
	DeleteTransaction(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}

// VendorStore persists the remembered category of each counter-party.
type VendorStore interface {
	GetVendor(ctx context.Context, name string) (*model.Vendor, error)
	SaveVendor(ctx context.Context, vendor *model.Vendor) error
	RecordVendorUse(ctx context.Context, name string) error
	GetAllVendors(ctx context.Context) ([]model.Vendor, error)
	DeleteVendor(ctx context.Context, name string) error
}

// MessageParser turns notification text into parse outcomes.
type MessageParser interface {
	Parse(text string) model.ParseOutcome
	ParseAll(ctx context.Context, texts []string) ([]model.ParseOutcome, error)
}

// Categorizer assigns a bookkeeping category and a confidence to a record.
type Categorizer interface {
	Categorize(ctx context.Context, txn model.Transaction) (string, float64)
}
