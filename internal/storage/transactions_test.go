package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

func TestSQLiteStorage_SaveTransaction(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := createTestTransactions(1)[0]
	if err := store.SaveTransaction(ctx, &txn); err != nil {
		t.Fatalf("SaveTransaction() error = %v", err)
	}
	if txn.CreatedAt.IsZero() {
		t.Error("SaveTransaction() did not set CreatedAt")
	}

	got, err := store.GetTransactionByMpesaID(ctx, txn.MpesaTransactionID)
	if err != nil {
		t.Fatalf("GetTransactionByMpesaID() error = %v", err)
	}

	if got.ID != txn.ID {
		t.Errorf("ID = %q, want %q", got.ID, txn.ID)
	}
	if got.Type != model.TypeReceived {
		t.Errorf("Type = %q, want %q", got.Type, model.TypeReceived)
	}
	if !got.Amount.Equal(txn.Amount) {
		t.Errorf("Amount = %s, want %s", got.Amount, txn.Amount)
	}
	if got.OrgAccountBalance == nil || !got.OrgAccountBalance.Equal(*txn.OrgAccountBalance) {
		t.Errorf("OrgAccountBalance = %v, want %s", got.OrgAccountBalance, txn.OrgAccountBalance)
	}
	if !got.TransactionDate.Equal(txn.TransactionDate) {
		t.Errorf("TransactionDate = %v, want %v", got.TransactionDate, txn.TransactionDate)
	}
	if got.SenderName != txn.SenderName || got.SenderPhone != txn.SenderPhone {
		t.Errorf("sender = %q/%q, want %q/%q", got.SenderName, got.SenderPhone, txn.SenderName, txn.SenderPhone)
	}
	if got.RecipientName != "" {
		t.Errorf("RecipientName = %q, want empty", got.RecipientName)
	}
	if got.Category != model.CategorySales || got.CategoryConfidence != 0.9 {
		t.Errorf("category = %q/%v", got.Category, got.CategoryConfidence)
	}
	if got.Source != model.SourceSMS {
		t.Errorf("Source = %q, want %q", got.Source, model.SourceSMS)
	}
	if got.ParseConfidence == nil || *got.ParseConfidence != 0.95 {
		t.Errorf("ParseConfidence = %v, want 0.95", got.ParseConfidence)
	}
	if got.PatternUsed != "MONEY_RECEIVED" || got.SMSContent != txn.SMSContent {
		t.Errorf("pattern/sms = %q/%q", got.PatternUsed, got.SMSContent)
	}

	byID, err := store.GetTransactionByID(ctx, txn.ID)
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if byID.MpesaTransactionID != txn.MpesaTransactionID {
		t.Errorf("MpesaTransactionID = %q, want %q", byID.MpesaTransactionID, txn.MpesaTransactionID)
	}
}

func TestSQLiteStorage_SaveTransaction_Duplicate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txn := createTestTransactions(1)[0]
	if err := store.SaveTransaction(ctx, &txn); err != nil {
		t.Fatalf("SaveTransaction() error = %v", err)
	}

	again := txn
	again.ID = "rec-other"
	again.Amount = decimal.NewFromInt(1)
	err := store.SaveTransaction(ctx, &again)
	if !errors.Is(err, common.ErrDuplicateEntry) {
		t.Fatalf("SaveTransaction() error = %v, want ErrDuplicateEntry", err)
	}
}

func TestSQLiteStorage_SaveTransaction_WithoutMpesaID(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(2)
	txns[0].MpesaTransactionID = ""
	txns[1].MpesaTransactionID = ""

	for i := range txns {
		if err := store.SaveTransaction(ctx, &txns[i]); err != nil {
			t.Fatalf("SaveTransaction(%d) error = %v", i, err)
		}
	}

	got, err := store.GetTransactionByID(ctx, txns[0].ID)
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if got.MpesaTransactionID != "" {
		t.Errorf("MpesaTransactionID = %q, want empty", got.MpesaTransactionID)
	}

	// Same content again is caught by the content hash.
	repeat := txns[0]
	repeat.ID = "rec-repeat"
	if err := store.SaveTransaction(ctx, &repeat); !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("SaveTransaction() error = %v, want ErrDuplicateEntry", err)
	}
}

func TestSQLiteStorage_SaveTransaction_Invalid(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		modify func(*model.Transaction)
		name   string
	}{
		{name: "missing ID", modify: func(txn *model.Transaction) { txn.ID = "" }},
		{name: "zero amount", modify: func(txn *model.Transaction) { txn.Amount = decimal.Zero }},
		{name: "negative amount", modify: func(txn *model.Transaction) { txn.Amount = decimal.NewFromInt(-5) }},
		{name: "unknown type", modify: func(txn *model.Transaction) { txn.Type = model.TypeUnknown }},
		{name: "missing date", modify: func(txn *model.Transaction) { txn.TransactionDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := createTestTransactions(1)[0]
			tt.modify(&txn)
			err := store.SaveTransaction(ctx, &txn)
			if !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("SaveTransaction() error = %v, want ErrInvalidTransaction", err)
			}
		})
	}

	if err := store.SaveTransaction(ctx, nil); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("SaveTransaction(nil) error = %v, want ErrInvalidTransaction", err)
	}
}

func TestSQLiteStorage_SaveTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	txns := createTestTransactions(3)
	inserted, err := store.SaveTransactions(ctx, txns)
	if err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if inserted != 3 {
		t.Errorf("inserted = %d, want 3", inserted)
	}

	// Re-importing plus one new record only inserts the new one.
	more := append(createTestTransactions(3), createTestTransactions(4)[3])
	inserted, err = store.SaveTransactions(ctx, more)
	if err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	count, err := store.CountTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		t.Fatalf("CountTransactions() error = %v", err)
	}
	if count != 4 {
		t.Errorf("CountTransactions() = %d, want 4", count)
	}

	if _, err := store.SaveTransactions(ctx, nil); !errors.Is(err, ErrEmptySlice) {
		t.Errorf("SaveTransactions(nil) error = %v, want ErrEmptySlice", err)
	}
}

func TestSQLiteStorage_GetTransaction_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.GetTransactionByMpesaID(ctx, "NOPE"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetTransactionByMpesaID() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetTransactionByID(ctx, "nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("GetTransactionByID() error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetTransactionByID(ctx, ""); !errors.Is(err, ErrEmptyString) {
		t.Errorf("GetTransactionByID(\"\") error = %v, want ErrEmptyString", err)
	}
}

func seedMixedTransactions(t *testing.T, store *SQLiteStorage) {
	t.Helper()

	txns := createTestTransactions(3)
	sent := model.Transaction{
		ID:                 "rec-sent",
		MpesaTransactionID: "QBD0000001",
		Type:               model.TypeSent,
		Amount:             decimal.RequireFromString("750.25"),
		RecipientName:      "Mama Mboga",
		RecipientPhone:     "254722000111",
		TransactionDate:    baseDate.Add(48 * time.Hour),
		Category:           model.CategorySupplies,
		Source:             model.SourceSMS,
	}
	bill := model.Transaction{
		ID:                "rec-bill",
		Type:              model.TypePaybill,
		Amount:            decimal.RequireFromString("1200"),
		BusinessShortCode: "888880",
		AccountNumber:     "ACC-9981",
		TransactionDate:   baseDate.Add(-48 * time.Hour),
		Category:          model.CategoryUtilities,
		Source:            model.SourceOFX,
	}
	txns = append(txns, sent, bill)

	if _, err := store.SaveTransactions(context.Background(), txns); err != nil {
		t.Fatalf("SaveTransactions() error = %v", err)
	}
}

func TestSQLiteStorage_GetTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedMixedTransactions(t, store)

	start := baseDate.Add(-time.Hour)
	end := baseDate.Add(3 * time.Hour)

	tests := []struct {
		name    string
		filter  service.TransactionFilter
		wantIDs []string
	}{
		{
			name:    "all newest first",
			filter:  service.TransactionFilter{},
			wantIDs: []string{"rec-sent", "rec-3", "rec-2", "rec-1", "rec-bill"},
		},
		{
			name:    "by type",
			filter:  service.TransactionFilter{Type: model.TypeSent},
			wantIDs: []string{"rec-sent"},
		},
		{
			name:    "by category",
			filter:  service.TransactionFilter{Category: model.CategoryUtilities},
			wantIDs: []string{"rec-bill"},
		},
		{
			name:    "by date range",
			filter:  service.TransactionFilter{Start: &start, End: &end},
			wantIDs: []string{"rec-3", "rec-2", "rec-1"},
		},
		{
			name:    "search name",
			filter:  service.TransactionFilter{Search: "mboga"},
			wantIDs: []string{"rec-sent"},
		},
		{
			name:    "search transaction code",
			filter:  service.TransactionFilter{Search: "QBC0000002"},
			wantIDs: []string{"rec-2"},
		},
		{
			name:    "search account number",
			filter:  service.TransactionFilter{Search: "ACC-99"},
			wantIDs: []string{"rec-bill"},
		},
		{
			name:    "limit and offset",
			filter:  service.TransactionFilter{Limit: 2, Offset: 1},
			wantIDs: []string{"rec-3", "rec-2"},
		},
		{
			name:    "offset only",
			filter:  service.TransactionFilter{Offset: 3},
			wantIDs: []string{"rec-1", "rec-bill"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetTransactions(ctx, tt.filter)
			if err != nil {
				t.Fatalf("GetTransactions() error = %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("GetTransactions() returned %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("record %d = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}

	bill, err := store.GetTransactionByID(ctx, "rec-bill")
	if err != nil {
		t.Fatalf("GetTransactionByID() error = %v", err)
	}
	if bill.OrgAccountBalance != nil || bill.ParseConfidence != nil {
		t.Error("unset optional columns should scan as nil")
	}
	if bill.Source != model.SourceOFX {
		t.Errorf("Source = %q, want %q", bill.Source, model.SourceOFX)
	}
}

func TestSQLiteStorage_GetTransactions_InvalidFilter(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	start := baseDate
	end := baseDate.Add(-time.Hour)

	tests := []struct {
		wantErr error
		name    string
		filter  service.TransactionFilter
	}{
		{name: "negative limit", filter: service.TransactionFilter{Limit: -1}, wantErr: ErrInvalidFilter},
		{name: "unknown type", filter: service.TransactionFilter{Type: "refund"}, wantErr: ErrInvalidFilter},
		{name: "reversed dates", filter: service.TransactionFilter{Start: &start, End: &end}, wantErr: ErrInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.GetTransactions(ctx, tt.filter); !errors.Is(err, tt.wantErr) {
				t.Errorf("GetTransactions() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSQLiteStorage_CountTransactions(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedMixedTransactions(t, store)

	count, err := store.CountTransactions(ctx, service.TransactionFilter{Type: model.TypeReceived, Limit: 1})
	if err != nil {
		t.Fatalf("CountTransactions() error = %v", err)
	}
	if count != 3 {
		t.Errorf("CountTransactions() = %d, want 3", count)
	}
}

func TestSQLiteStorage_GetTypeSummary(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	seedMixedTransactions(t, store)

	summary, err := store.GetTypeSummary(ctx, baseDate.Add(-24*time.Hour), baseDate.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("GetTypeSummary() error = %v", err)
	}

	want := []struct {
		total string
		typ   model.TransactionType
		count int
	}{
		{typ: model.TypeReceived, count: 3, total: "601.5"},
		{typ: model.TypeSent, count: 1, total: "750.25"},
	}
	if len(summary) != len(want) {
		t.Fatalf("GetTypeSummary() returned %d rows, want %d", len(summary), len(want))
	}
	for i, w := range want {
		if summary[i].Type != w.typ || summary[i].Count != w.count {
			t.Errorf("row %d = %s/%d, want %s/%d", i, summary[i].Type, summary[i].Count, w.typ, w.count)
		}
		if !summary[i].Total.Equal(decimal.RequireFromString(w.total)) {
			t.Errorf("row %d total = %s, want %s", i, summary[i].Total, w.total)
		}
	}

	if _, err := store.GetTypeSummary(ctx, baseDate, baseDate.Add(-time.Hour)); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("GetTypeSummary() error = %v, want ErrInvalidDateRange", err)
	}
}
