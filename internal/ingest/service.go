// Package ingest turns M-PESA notifications and imported statement records
// into stored, categorized transactions.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

// Service validates, deduplicates, categorizes and stores transactions.
type Service struct {
	parser      service.MessageParser
	store       service.Storage
	categorizer service.Categorizer
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the clock used for messages that carry no timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator sets how record IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates an ingestion service.
func NewService(parser service.MessageParser, store service.Storage, categorizer service.Categorizer, opts ...Option) *Service {
	s := &Service{
		parser:      parser,
		store:       store,
		categorizer: categorizer,
		logger:      slog.Default(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessMessage parses sms and stores the resulting transaction.
// It returns a *RejectedError for messages that do not parse into a valid
// transaction and a *DuplicateError when the transaction is already stored.
func (s *Service) ProcessMessage(ctx context.Context, sms string) (*model.Transaction, error) {
	return s.save(ctx, sms, s.parser.Parse(sms))
}

func (s *Service) save(ctx context.Context, sms string, outcome model.ParseOutcome) (*model.Transaction, error) {
	if !outcome.IsValid {
		s.logger.Warn("Rejected M-PESA message",
			"tier", outcome.Tier,
			"errors", outcome.Errors)
		return nil, &RejectedError{Outcome: outcome}
	}

	txn := model.FromParsed(outcome.Fields, sms)
	txn.PatternUsed = outcome.PatternUsed
	txn.ParseConfidence = outcome.Confidence.Score
	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = s.now()
	}

	if txn.MpesaTransactionID != "" {
		existing, err := s.store.GetTransactionByMpesaID(ctx, txn.MpesaTransactionID)
		switch {
		case err == nil:
			return nil, &DuplicateError{Existing: existing, TransactionID: txn.MpesaTransactionID}
		case !errors.Is(err, common.ErrNotFound):
			return nil, fmt.Errorf("failed to check for duplicate: %w", err)
		}
	}

	txn.Category, txn.CategoryConfidence = s.categorizer.Categorize(ctx, txn)
	txn.ID = s.newID()

	if err := s.store.SaveTransaction(ctx, &txn); err != nil {
		if errors.Is(err, common.ErrDuplicateEntry) {
			return nil, &DuplicateError{TransactionID: txn.MpesaTransactionID}
		}
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	s.logger.Info("Processed M-PESA message",
		"id", txn.ID,
		"mpesa_id", txn.MpesaTransactionID,
		"type", txn.Type,
		"category", txn.Category)

	return &txn, nil
}

// Rejection records one message a batch could not store.
type Rejection struct {
	Err     error
	Message string
	Index   int
}

// BatchResult summarizes ProcessMessages.
type BatchResult struct {
	Accepted   []model.Transaction
	Rejected   []Rejection
	Duplicates []Rejection
}

// Total returns how many messages the batch held.
func (r BatchResult) Total() int {
	return len(r.Accepted) + len(r.Rejected) + len(r.Duplicates)
}

// ProgressFunc is called after each message of a batch is handled.
type ProgressFunc func(done, total int)

// ProcessMessages parses messages concurrently, then stores them in input order.
// Rejected and duplicate messages are reported in the result rather than as errors;
// the returned error is reserved for storage failures and cancellation.
func (s *Service) ProcessMessages(ctx context.Context, messages []string, progress ProgressFunc) (BatchResult, error) {
	var result BatchResult

	outcomes, err := s.parser.ParseAll(ctx, messages)
	if err != nil {
		return result, fmt.Errorf("failed to parse messages: %w", err)
	}

	for i, outcome := range outcomes {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		txn, err := s.save(ctx, messages[i], outcome)
		var rejected *RejectedError
		switch {
		case err == nil:
			result.Accepted = append(result.Accepted, *txn)
		case errors.As(err, &rejected):
			result.Rejected = append(result.Rejected, Rejection{Index: i, Message: messages[i], Err: err})
		case IsDuplicate(err):
			result.Duplicates = append(result.Duplicates, Rejection{Index: i, Message: messages[i], Err: err})
		default:
			return result, err
		}

		if progress != nil {
			progress(i+1, len(messages))
		}
	}

	s.logger.Info("Processed M-PESA messages",
		"total", len(messages),
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected),
		"duplicates", len(result.Duplicates))

	return result, nil
}

// ImportResult summarizes ImportRecords.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// ImportRecords stores structured records such as statement imports without parsing.
// Records that are already stored are skipped.
func (s *Service) ImportRecords(ctx context.Context, records []model.Transaction) (ImportResult, error) {
	if len(records) == 0 {
		return ImportResult{}, nil
	}

	prepared := make([]model.Transaction, len(records))
	for i, record := range records {
		if record.ID == "" {
			record.ID = s.newID()
		}
		if record.Category == "" {
			record.Category, record.CategoryConfidence = s.categorizer.Categorize(ctx, record)
		}
		prepared[i] = record
	}

	inserted, err := s.store.SaveTransactions(ctx, prepared)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to import records: %w", err)
	}

	s.logger.Info("Imported records",
		"inserted", inserted,
		"skipped", len(records)-inserted)

	return ImportResult{Inserted: inserted, Skipped: len(records) - inserted}, nil
}
