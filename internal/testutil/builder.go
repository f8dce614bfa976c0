package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// DefaultDate is the timestamp given to built records unless overridden.
var DefaultDate = time.Date(2024, 3, 15, 14, 30, 0, 0, time.FixedZone("EAT", 3*60*60))

// TransactionBuilder constructs model.Transaction values for tests.
type TransactionBuilder struct {
	txn model.Transaction
}

// NewTransaction starts a valid received record with the given record ID.
func NewTransaction(id string) *TransactionBuilder {
	return &TransactionBuilder{txn: model.Transaction{
		ID:              id,
		Type:            model.TypeReceived,
		Amount:          decimal.NewFromInt(100),
		TransactionDate: DefaultDate,
		Category:        model.CategoryUncategorized,
		Source:          model.SourceSMS,
	}}
}

// Received makes the record money received from name.
func (b *TransactionBuilder) Received(amount, name string) *TransactionBuilder {
	b.txn.Type = model.TypeReceived
	b.txn.Amount = decimal.RequireFromString(amount)
	b.txn.SenderName = name
	return b
}

// Sent makes the record money sent to name.
func (b *TransactionBuilder) Sent(amount, name string) *TransactionBuilder {
	b.txn.Type = model.TypeSent
	b.txn.Amount = decimal.RequireFromString(amount)
	b.txn.RecipientName = name
	return b
}

// WithMpesaID sets the M-PESA transaction code.
func (b *TransactionBuilder) WithMpesaID(code string) *TransactionBuilder {
	b.txn.MpesaTransactionID = code
	return b
}

// WithCategory sets the category.
func (b *TransactionBuilder) WithCategory(category string) *TransactionBuilder {
	b.txn.Category = category
	return b
}

// On sets the transaction date.
func (b *TransactionBuilder) On(date time.Time) *TransactionBuilder {
	b.txn.TransactionDate = date
	return b
}

// FromSource sets how the record entered the system.
func (b *TransactionBuilder) FromSource(source model.Source) *TransactionBuilder {
	b.txn.Source = source
	return b
}

// Build returns a copy of the record.
func (b *TransactionBuilder) Build() model.Transaction {
	return b.txn
}
