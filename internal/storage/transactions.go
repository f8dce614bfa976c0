package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

const transactionColumns = `id, mpesa_transaction_id, transaction_type, amount,
	sender_name, sender_phone, recipient_name, recipient_phone,
	business_short_code, account_number, org_account_balance, transaction_date,
	category, category_confidence, source, sms_content, pattern_used,
	parse_confidence, created_at`

const insertTransaction = `INSERT INTO transactions (hash, ` + transactionColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// SaveTransaction stores a single record. A record whose transaction code or content
// hash is already stored returns common.ErrDuplicateEntry.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(txn); err != nil {
		return err
	}

	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx, insertTransaction, insertArgs(txn)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction %s", common.ErrDuplicateEntry, txn.MpesaTransactionID)
		}
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// SaveTransactions stores records in one database transaction, skipping any that are
// already stored. It returns how many were inserted.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, strings.Replace(insertTransaction, "INSERT INTO", "INSERT OR IGNORE INTO", 1))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	inserted := 0
	for i := range transactions {
		txn := &transactions[i]
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = now
		}

		result, execErr := stmt.ExecContext(ctx, insertArgs(txn)...)
		if execErr != nil {
			return 0, fmt.Errorf("failed to insert transaction %s: %w", txn.ID, execErr)
		}
		if n, _ := result.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transactions: %w", err)
	}
	return inserted, nil
}

// GetTransactionByID retrieves a single transaction by its record ID.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getOne(ctx, s.db, "id = ?", id)
}

// GetTransactionByMpesaID retrieves the record carrying an M-PESA transaction code.
func (s *SQLiteStorage) GetTransactionByMpesaID(ctx context.Context, mpesaID string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(mpesaID, "mpesaID"); err != nil {
		return nil, err
	}
	return s.getOne(ctx, s.db, "mpesa_transaction_id = ?", mpesaID)
}

func (s *SQLiteStorage) getOne(ctx context.Context, q queryable, where string, arg any) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE `+where, arg)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// GetTransactions lists records matching filter, newest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	where, args := filterClause(filter)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where +
		` ORDER BY transaction_date DESC, created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// CountTransactions counts records matching filter. Limit and offset are ignored.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, filter service.TransactionFilter) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	filter.Limit, filter.Offset = 0, 0
	if err := validateFilter(filter); err != nil {
		return 0, err
	}

	where, args := filterClause(filter)
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// GetTypeSummary totals amounts per transaction type between start and end inclusive.
// Types without records are omitted; the rest follow model.TransactionTypes order.
func (s *SQLiteStorage) GetTypeSummary(ctx context.Context, start, end time.Time) ([]service.TypeTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_type, amount
		FROM transactions
		WHERE transaction_date >= ? AND transaction_date <= ?
	`, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query type summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// Amounts are summed here so they stay exact.
	totals := make(map[model.TransactionType]*service.TypeTotal)
	for rows.Next() {
		var txnType model.TransactionType
		var amount decimal.Decimal
		if scanErr := rows.Scan(&txnType, &amount); scanErr != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", scanErr)
		}
		total, ok := totals[txnType]
		if !ok {
			total = &service.TypeTotal{Type: txnType}
			totals[txnType] = total
		}
		total.Count++
		total.Total = total.Total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	summary := make([]service.TypeTotal, 0, len(totals))
	for _, t := range model.TransactionTypes {
		if total, ok := totals[t]; ok {
			summary = append(summary, *total)
		}
	}
	return summary, nil
}

func filterClause(f service.TransactionFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Start != nil {
		conditions = append(conditions, "transaction_date >= ?")
		args = append(args, f.Start.UTC())
	}
	if f.End != nil {
		conditions = append(conditions, "transaction_date <= ?")
		args = append(args, f.End.UTC())
	}
	if f.Type != "" {
		conditions = append(conditions, "transaction_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + search + "%"
		conditions = append(conditions, `(sender_name LIKE ? OR recipient_name LIKE ?
			OR mpesa_transaction_id LIKE ? OR account_number LIKE ?)`)
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func insertArgs(txn *model.Transaction) []any {
	var balance decimal.NullDecimal
	if txn.OrgAccountBalance != nil {
		balance = decimal.NewNullDecimal(*txn.OrgAccountBalance)
	}
	var confidence sql.NullFloat64
	if txn.ParseConfidence != nil {
		confidence = sql.NullFloat64{Float64: *txn.ParseConfidence, Valid: true}
	}
	source := txn.Source
	if source == "" {
		source = model.SourceSMS
	}
	category := txn.Category
	if category == "" {
		category = model.CategoryUncategorized
	}

	return []any{
		txn.GenerateHash(),
		txn.ID,
		nullString(txn.MpesaTransactionID),
		string(txn.Type),
		txn.Amount.String(),
		nullString(txn.SenderName),
		nullString(txn.SenderPhone),
		nullString(txn.RecipientName),
		nullString(txn.RecipientPhone),
		nullString(txn.BusinessShortCode),
		nullString(txn.AccountNumber),
		balance,
		txn.TransactionDate.UTC(),
		category,
		txn.CategoryConfidence,
		string(source),
		nullString(txn.SMSContent),
		nullString(txn.PatternUsed),
		confidence,
		txn.CreatedAt.UTC(),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var txn model.Transaction
	var (
		mpesaID, senderName, senderPhone       sql.NullString
		recipientName, recipientPhone          sql.NullString
		shortCode, account, smsContent, usedBy sql.NullString
		balance                                decimal.NullDecimal
		confidence                             sql.NullFloat64
	)

	err := row.Scan(
		&txn.ID,
		&mpesaID,
		&txn.Type,
		&txn.Amount,
		&senderName,
		&senderPhone,
		&recipientName,
		&recipientPhone,
		&shortCode,
		&account,
		&balance,
		&txn.TransactionDate,
		&txn.Category,
		&txn.CategoryConfidence,
		&txn.Source,
		&smsContent,
		&usedBy,
		&confidence,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.MpesaTransactionID = mpesaID.String
	txn.SenderName = senderName.String
	txn.SenderPhone = senderPhone.String
	txn.RecipientName = recipientName.String
	txn.RecipientPhone = recipientPhone.String
	txn.BusinessShortCode = shortCode.String
	txn.AccountNumber = account.String
	txn.SMSContent = smsContent.String
	txn.PatternUsed = usedBy.String
	if balance.Valid {
		b := balance.Decimal
		txn.OrgAccountBalance = &b
	}
	if confidence.Valid {
		c := confidence.Float64
		txn.ParseConfidence = &c
	}

	return &txn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
