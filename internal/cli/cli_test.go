package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decipher-hub/BizBot-ke/internal/model"
	"github.com/decipher-hub/BizBot-ke/internal/service"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "0", want: "Ksh 0.00"},
		{input: "5", want: "Ksh 5.00"},
		{input: "999.9", want: "Ksh 999.90"},
		{input: "1000", want: "Ksh 1,000.00"},
		{input: "1500.5", want: "Ksh 1,500.50"},
		{input: "1234567.891", want: "Ksh 1,234,567.89"},
		{input: "-25000", want: "Ksh -25,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestReadMessages(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "one per line",
			input: "first message\nsecond message\n\n",
			want:  []string{"first message", "second message"},
		},
		{
			name:  "blank line separated blocks",
			input: "MPESA received Ksh100\nfrom JOHN\n\n\nM-PESA Ksh50 sent\nto JANE\n",
			want:  []string{"MPESA received Ksh100 from JOHN", "M-PESA Ksh50 sent to JANE"},
		},
		{
			name:  "leading blank lines",
			input: "\n\n  only message  \n",
			want:  []string{"only message"},
		},
		{
			name:  "crlf line endings",
			input: "one\r\ntwo\r\n",
			want:  []string{"one", "two"},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadMessages(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderOutcome(t *testing.T) {
	amount := decimal.RequireFromString("1500")
	balance := decimal.RequireFromString("5000")
	id := "ABC123XYZ"
	name := "JOHN DOE"
	date := time.Date(2024, 1, 12, 15, 45, 0, 0, time.FixedZone("EAT", 3*60*60))
	score := 1.0

	outcome := model.ParseOutcome{
		Tier:        model.TierPrimary,
		PatternUsed: "MONEY_RECEIVED",
		IsValid:     true,
		Confidence:  model.Confidence{Level: model.ConfidenceHigh, Score: &score},
		Fields: model.ParsedTransaction{
			Type:              model.TypeReceived,
			Amount:            &amount,
			OrgAccountBalance: &balance,
			TransactionID:     &id,
			SenderName:        &name,
			TransactionDate:   &date,
		},
	}

	out := RenderOutcome(outcome)
	for _, want := range []string{"valid", "MONEY_RECEIVED", "high (1.00)", "Ksh 1,500.00", "Ksh 5,000.00", "ABC123XYZ", "JOHN DOE", "2024-01-12 15:45 EAT"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Recipient")

	failed := model.ParseOutcome{
		Tier:       model.TierBasic,
		Confidence: model.Confidence{Level: model.ConfidenceVeryLow},
		Fields:     model.ParsedTransaction{Type: model.TypeUnknown},
		Basic:      &model.BasicInfo{PhoneNumbers: []string{"254712345678"}, Names: []string{"Jane"}},
		Errors:     []string{"no exact M-PESA pattern match found"},
	}
	out = RenderOutcome(failed)
	for _, want := range []string{"invalid", "very_low", "254712345678", "Jane", "no exact M-PESA pattern match found"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderTables(t *testing.T) {
	txns := []model.Transaction{
		{
			ID:                 "rec-1",
			MpesaTransactionID: "ABC123XYZ",
			Type:               model.TypePaybill,
			Amount:             decimal.RequireFromString("2500"),
			BusinessShortCode:  "888880",
			Category:           model.CategoryUtilities,
			TransactionDate:    time.Date(2024, 4, 13, 7, 45, 0, 0, time.UTC),
		},
	}
	txns = append(txns, model.Transaction{
		ID:              "rec-2",
		Type:            model.TypeReceived,
		Amount:          decimal.RequireFromString("1200"),
		SenderName:      "JOHN DOE",
		TransactionDate: time.Date(2024, 4, 14, 7, 45, 0, 0, time.UTC),
	})
	out := RenderTransactions(txns)
	for _, want := range []string{"DATE", "CATEGORY", "ABC123XYZ", "paybill", "Ksh -2,500.00", "888880", "utilities", "rec-1", "Ksh 1,200.00", "JOHN DOE"} {
		assert.Contains(t, out, want)
	}

	out = RenderTypeSummary([]service.TypeTotal{{Type: model.TypeSent, Count: 2, Total: decimal.RequireFromString("750.25")}})
	assert.Contains(t, out, "sent")
	assert.Contains(t, out, "Ksh 750.25")

	out = RenderCategorySummary([]service.CategoryTotal{{Category: model.CategoryRent, Count: 1, Total: decimal.RequireFromString("15000")}})
	assert.Contains(t, out, "rent")
	assert.Contains(t, out, "Ksh 15,000.00")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("boom"), "boom")
	assert.Contains(t, FormatWarning("careful"), "careful")
	assert.Contains(t, FormatInfo("note"), "note")
	assert.Contains(t, FormatTitle("BizBot"), "BizBot")
	box := RenderBox("Summary", "3 accepted")
	assert.Contains(t, box, "Summary")
	assert.Contains(t, box, "3 accepted")
}

func TestInterruptHandler(t *testing.T) {
	var output bytes.Buffer
	handler := NewInterruptHandler(&output)
	assert.False(t, handler.WasInterrupted())

	ctx, stop := handler.HandleInterrupts(context.Background())
	defer stop()

	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled initially")
	default:
	}

	handler.interrupt()
	handler.interrupt()
	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(output.String(), "Interrupted!"))

	stop()
	<-ctx.Done()
}

func TestNewInterruptHandler_DefaultWriter(t *testing.T) {
	handler := NewInterruptHandler(nil)
	assert.NotNil(t, handler.writer)
}

func TestNewProgressBar(t *testing.T) {
	var output bytes.Buffer
	bar := NewProgressBar(&output, 3, "Ingesting")
	for i := 0; i < 3; i++ {
		require.NoError(t, bar.Add(1))
	}
	assert.True(t, bar.IsFinished())
}
