package mpesa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

func TestExtractBasicInfo(t *testing.T) {
	tests := []struct {
		amount  *string
		name    string
		text    string
		txnType model.TransactionType
		phones  []string
		names   []string
		hasInfo bool
	}{
		{
			name:    "amount and phone without template",
			text:    "Ksh500 to 0712345678",
			amount:  ptr("500"),
			phones:  []string{"0712345678"},
			txnType: model.TypeUnknown,
			hasInfo: true,
		},
		{
			name:    "amount with separators",
			text:    "transfer of Ksh12,345.50 completed",
			amount:  ptr("12345.50"),
			txnType: model.TypeUnknown,
			hasInfo: true,
		},
		{
			name:    "several phones of valid lengths only",
			text:    "call 712345678 or 254712345678 not 12345678 or 2547123456789",
			phones:  []string{"712345678", "254712345678"},
			txnType: model.TypeUnknown,
			hasInfo: true,
		},
		{
			name:    "capitalised names",
			text:    "paid by Jane Wambui and Jo at Kilimani Market",
			names:   []string{"Jane Wambui", "Kilimani Market"},
			txnType: model.TypePayment,
			hasInfo: true,
		},
		{
			name:    "nothing useful",
			text:    "just some lowercase words",
			txnType: model.TypeUnknown,
			hasInfo: false,
		},
		{
			name:    "keyword alone is not information",
			text:    "money withdrawn earlier",
			txnType: model.TypeWithdrawal,
			hasInfo: false,
		},
		{
			name:    "malformed amount is ignored",
			text:    "ksh,, pending",
			txnType: model.TypeUnknown,
			hasInfo: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ExtractBasicInfo(tt.text)

			assert.Equal(t, tt.hasInfo, info.HasAnyInfo)
			assert.Equal(t, tt.txnType, info.TypeGuess)
			if tt.amount == nil {
				assert.Nil(t, info.Amount)
			} else {
				require.NotNil(t, info.Amount)
				assert.True(t, dec(*tt.amount).Equal(*info.Amount), "amount %s", info.Amount)
			}
			assert.ElementsMatch(t, tt.phones, info.PhoneNumbers)
			assert.ElementsMatch(t, tt.names, info.Names)
		})
	}
}

func TestExtractBasicInfo_KeywordOrder(t *testing.T) {
	tests := []struct {
		text string
		want model.TransactionType
	}{
		{text: "SENT then RECEIVED", want: model.TypeReceived},
		{text: "deposited and sent", want: model.TypeSent},
		{text: "withdrawn, later paid", want: model.TypePayment},
		{text: "Deposited", want: model.TypeDeposit},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractBasicInfo(tt.text).TypeGuess)
		})
	}
}

func ptr(s string) *string {
	return &s
}
