package mpesa

import "github.com/decipher-hub/BizBot-ke/internal/model"

// Validate returns every minimal-invariant violation in fields, in a fixed order.
// It does not decide whether an outcome is valid.
func Validate(fields model.ParsedTransaction) []error {
	var violations []error

	if fields.Amount == nil || !fields.Amount.IsPositive() {
		violations = append(violations, ErrInvalidAmount)
	}
	if fields.TransactionID == nil {
		violations = append(violations, ErrMissingTransactionID)
	}
	if !fields.Type.IsKnown() {
		violations = append(violations, ErrMissingTransactionType)
	}

	return violations
}
