// Package model defines the core data structures for the bizbot application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of money movement a message describes.
type TransactionType string

// Transaction type constants.
const (
	TypeReceived   TransactionType = "received"
	TypeSent       TransactionType = "sent"
	TypePayment    TransactionType = "payment"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeDeposit    TransactionType = "deposit"
	TypeAirtime    TransactionType = "airtime"
	TypePaybill    TransactionType = "paybill"
	TypeUnknown    TransactionType = "unknown"
)

// TransactionTypes lists every known type, unknown last.
var TransactionTypes = []TransactionType{
	TypeReceived,
	TypeSent,
	TypePayment,
	TypeWithdrawal,
	TypeDeposit,
	TypeAirtime,
	TypePaybill,
	TypeUnknown,
}

// IsKnown reports whether t is a concrete type other than unknown.
func (t TransactionType) IsKnown() bool {
	switch t {
	case TypeReceived, TypeSent, TypePayment, TypeWithdrawal, TypeDeposit, TypeAirtime, TypePaybill:
		return true
	}
	return false
}

// Direction reports whether money enters or leaves the wallet.
func (t TransactionType) Direction() Direction {
	switch t {
	case TypeReceived, TypeDeposit:
		return DirectionIncome
	case TypeSent, TypePayment, TypeWithdrawal, TypeAirtime, TypePaybill:
		return DirectionExpense
	}
	return DirectionUnknown
}

// ParseTransactionType converts a user supplied string to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	for _, t := range TransactionTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return TypeUnknown, fmt.Errorf("unknown transaction type %q", s)
}

// Direction is the flow of money relative to the wallet owner.
type Direction string

// Direction constants.
const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
	DirectionUnknown Direction = "unknown"
)

// Source identifies how a stored transaction entered the system.
type Source string

// Source constants.
const (
	SourceSMS Source = "sms"
	SourceOFX Source = "ofx"
)

// Transaction is a stored bookkeeping record.
type Transaction struct {
	TransactionDate    time.Time
	CreatedAt          time.Time
	Amount             decimal.Decimal
	OrgAccountBalance  *decimal.Decimal
	ParseConfidence    *float64
	ID                 string
	MpesaTransactionID string // empty when the source message carried no code
	Type               TransactionType
	SenderName         string
	SenderPhone        string
	RecipientName      string
	RecipientPhone     string
	BusinessShortCode  string
	AccountNumber      string
	Category           string
	SMSContent         string
	PatternUsed        string
	Source             Source
	CategoryConfidence float64
}

// CounterpartyName returns whichever party name is set.
func (t *Transaction) CounterpartyName() string {
	if t.SenderName != "" {
		return t.SenderName
	}
	return t.RecipientName
}

// GenerateHash creates a stable content hash used to drop repeated imports,
// including records that carry no transaction code.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		t.MpesaTransactionID,
		t.TransactionDate.UTC().Format("2006-01-02T15:04"),
		t.Amount.StringFixed(2),
		t.Type,
		t.CounterpartyName(),
		t.BusinessShortCode)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// FromParsed builds a storable record from parser output.
func FromParsed(p ParsedTransaction, sms string) Transaction {
	txn := Transaction{
		Type:              p.Type,
		OrgAccountBalance: p.OrgAccountBalance,
		Source:            SourceSMS,
		SMSContent:        sms,
	}
	if p.Amount != nil {
		txn.Amount = *p.Amount
	}
	if p.TransactionDate != nil {
		txn.TransactionDate = *p.TransactionDate
	}
	txn.MpesaTransactionID = deref(p.TransactionID)
	txn.SenderName = deref(p.SenderName)
	txn.SenderPhone = deref(p.SenderPhone)
	txn.RecipientName = deref(p.RecipientName)
	txn.RecipientPhone = deref(p.RecipientPhone)
	txn.BusinessShortCode = deref(p.BusinessShortCode)
	txn.AccountNumber = deref(p.AccountNumber)
	return txn
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
