package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// RejectedError reports a message that did not parse into a valid transaction.
// It matches common.ErrInvalidMessage and every error recorded on the outcome.
type RejectedError struct {
	Outcome model.ParseOutcome
}

func (e *RejectedError) Error() string {
	if len(e.Outcome.Errors) == 0 {
		return common.ErrInvalidMessage.Error()
	}
	return fmt.Sprintf("%s: %s", common.ErrInvalidMessage, strings.Join(e.Outcome.Errors, "; "))
}

func (e *RejectedError) Unwrap() []error {
	errs := []error{common.ErrInvalidMessage}
	if err := e.Outcome.Err(); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// DuplicateError reports a transaction that is already stored.
// Existing is nil when the stored copy was matched by content rather than by code.
type DuplicateError struct {
	Existing      *model.Transaction
	TransactionID string
}

func (e *DuplicateError) Error() string {
	if e.TransactionID == "" {
		return "transaction already exists"
	}
	return fmt.Sprintf("transaction %s already exists", e.TransactionID)
}

func (e *DuplicateError) Unwrap() error {
	return common.ErrDuplicateEntry
}

// IsDuplicate reports whether err is a DuplicateError.
func IsDuplicate(err error) bool {
	var dup *DuplicateError
	return errors.As(err, &dup)
}
