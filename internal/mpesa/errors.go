package mpesa

import "errors"

// Parse failure kinds.
var (
	ErrNoPatternMatch           = errors.New("no exact M-PESA pattern match found")
	ErrInsufficientFallbackInfo = errors.New("unable to parse M-PESA message format")
	ErrDateParse                = errors.New("unrecognised date format")
	ErrMalformedNumericToken    = errors.New("malformed numeric token")
	ErrInternalParsing          = errors.New("internal parsing error")
)

// Validation violations.
var (
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrMissingTransactionID   = errors.New("missing transaction ID")
	ErrMissingTransactionType = errors.New("missing transaction type")
)
