package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction holds the fields extracted from one message.
// Every field except Type is optional; nil means the message did not supply it.
type ParsedTransaction struct {
	Amount            *decimal.Decimal `json:"amount,omitempty" yaml:"amount,omitempty"`
	OrgAccountBalance *decimal.Decimal `json:"org_account_balance,omitempty" yaml:"org_account_balance,omitempty"`
	TransactionDate   *time.Time       `json:"transaction_date,omitempty" yaml:"transaction_date,omitempty"`
	SenderName        *string          `json:"sender_name,omitempty" yaml:"sender_name,omitempty"`
	SenderPhone       *string          `json:"sender_phone,omitempty" yaml:"sender_phone,omitempty"`
	RecipientName     *string          `json:"recipient_name,omitempty" yaml:"recipient_name,omitempty"`
	RecipientPhone    *string          `json:"recipient_phone,omitempty" yaml:"recipient_phone,omitempty"`
	BusinessShortCode *string          `json:"business_short_code,omitempty" yaml:"business_short_code,omitempty"`
	AccountNumber     *string          `json:"account_number,omitempty" yaml:"account_number,omitempty"`
	TransactionID     *string          `json:"transaction_id,omitempty" yaml:"transaction_id,omitempty"`
	Type              TransactionType  `json:"type" yaml:"type"`
}

// Tier identifies which stage of the parse cascade produced an outcome.
type Tier string

// Tier constants, in cascade order.
const (
	TierPrimary     Tier = "primary"
	TierAlternative Tier = "alternative"
	TierBasic       Tier = "basic"
	TierFailed      Tier = "failed"
)

// ConfidenceLevel is the qualitative trust bucket of an outcome.
type ConfidenceLevel string

// Confidence levels.
const (
	ConfidenceHigh    ConfidenceLevel = "high"
	ConfidenceLow     ConfidenceLevel = "low"
	ConfidenceVeryLow ConfidenceLevel = "very_low"
)

// Confidence carries a numeric score for catalog matches and a level for every outcome.
type Confidence struct {
	Score *float64        `json:"score,omitempty" yaml:"score,omitempty"`
	Level ConfidenceLevel `json:"level" yaml:"level"`
}

// BasicInfo is what the heuristic fallback could scavenge from unmatched text.
type BasicInfo struct {
	Amount       *decimal.Decimal `json:"amount,omitempty" yaml:"amount,omitempty"`
	TypeGuess    TransactionType  `json:"type_guess" yaml:"type_guess"`
	PhoneNumbers []string         `json:"phone_numbers" yaml:"phone_numbers"`
	Names        []string         `json:"names" yaml:"names"`
	HasAnyInfo   bool             `json:"has_any_info" yaml:"has_any_info"`
}

// ParseOutcome is the complete result of parsing one message.
// When IsValid is true, Fields.Type is known and Fields.Amount is set and positive.
type ParseOutcome struct {
	Basic          *BasicInfo        `json:"basic,omitempty" yaml:"basic,omitempty"`
	Fields         ParsedTransaction `json:"fields" yaml:"fields"`
	Confidence     Confidence        `json:"confidence" yaml:"confidence"`
	PatternUsed    string            `json:"pattern_used,omitempty" yaml:"pattern_used,omitempty"`
	Tier           Tier              `json:"tier" yaml:"tier"`
	OriginalText   string            `json:"original_text" yaml:"original_text"`
	NormalizedText string            `json:"normalized_text" yaml:"normalized_text"`
	Errors         []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	errs           []error
	IsValid        bool `json:"is_valid" yaml:"is_valid"`
}

// AddError records err in both the message list and the typed error chain.
func (o *ParseOutcome) AddError(err error) {
	o.errs = append(o.errs, err)
	o.Errors = append(o.Errors, err.Error())
}

// Err joins every recorded error, or returns nil when there were none.
func (o *ParseOutcome) Err() error {
	return errors.Join(o.errs...)
}
