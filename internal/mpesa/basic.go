package mpesa

import (
	"regexp"
	"strings"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

var (
	// First currency token anywhere in the text.
	basicAmountPattern = regexp.MustCompile(`(?i)Ksh(` + amountToken + `)`)

	// Standalone digit runs that look like phone numbers.
	phoneRunPattern = regexp.MustCompile(`\b\d{9,12}\b`)

	// Runs of capitalised words, each at least three letters long.
	nameRunPattern = regexp.MustCompile(`\b[A-Z][a-z]{2,}(?:\s+[A-Z][a-z]{2,})*\b`)

	// Keywords checked in order; the first one present decides the type.
	typeKeywords = []struct {
		keyword string
		txnType model.TransactionType
	}{
		{"received", model.TypeReceived},
		{"sent", model.TypeSent},
		{"paid", model.TypePayment},
		{"withdrawn", model.TypeWithdrawal},
		{"deposited", model.TypeDeposit},
	}
)

// ExtractBasicInfo scavenges whatever transaction details it can find in text.
func ExtractBasicInfo(text string) model.BasicInfo {
	info := model.BasicInfo{
		TypeGuess: model.TypeUnknown,
	}

	if match := basicAmountPattern.FindStringSubmatch(text); match != nil {
		if amount, err := parseAmount(match[1]); err == nil {
			info.Amount = &amount
		}
	}

	info.PhoneNumbers = phoneRunPattern.FindAllString(text, -1)
	info.Names = nameRunPattern.FindAllString(text, -1)

	lower := strings.ToLower(text)
	for _, kw := range typeKeywords {
		if strings.Contains(lower, kw.keyword) {
			info.TypeGuess = kw.txnType
			break
		}
	}

	info.HasAnyInfo = info.Amount != nil || len(info.PhoneNumbers) > 0 || len(info.Names) > 0

	return info
}
