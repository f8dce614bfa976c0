package classification

import "github.com/decipher-hub/BizBot-ke/internal/model"

var (
	outgoing = []model.TransactionType{model.TypeSent, model.TypePayment, model.TypePaybill}
	business = []model.TransactionType{model.TypePayment, model.TypePaybill}
)

// DefaultPatterns returns the built-in categories for small business M-PESA activity.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// Bills and airtime are recognisable from the biller alone.
		{
			Name:       "Utilities",
			Category:   model.CategoryUtilities,
			Regex:      `\b(KPLC|KENYA\s*POWER|TOKENS?|888880|888888|WATER|ZUKU|DSTV|GOTV|STARTIMES|FAIBA|SAFARICOM\s*HOME|INTERNET)\b`,
			Types:      business,
			Priority:   100,
			Confidence: 0.90,
		},
		{
			Name:       "Airtime",
			Category:   model.CategoryAirtime,
			Regex:      `\bairtime\b`,
			Types:      []model.TransactionType{model.TypeAirtime},
			Priority:   100,
			Confidence: 0.95,
		},
		{
			Name:       "Cash",
			Category:   model.CategoryCash,
			Regex:      `\b(withdrawal|deposit)\b`,
			Types:      []model.TransactionType{model.TypeWithdrawal, model.TypeDeposit},
			Priority:   90,
			Confidence: 0.90,
		},
		// Keyword patterns for business spending.
		{
			Name:       "Rent",
			Category:   model.CategoryRent,
			Regex:      `\b(RENT|LANDLORD|CARETAKER|HOUSE|PROPERTIES|APARTMENTS?)\b`,
			Types:      outgoing,
			Priority:   80,
			Confidence: 0.80,
		},
		{
			Name:       "Supplies",
			Category:   model.CategorySupplies,
			Regex:      `\b(WHOLESALERS?|SUPPLIES|SUPPLIERS?|DISTRIBUTORS?|HARDWARE|MARKET|STORES?|SUPERMARKET|NAIVAS|QUICKMART|CARREFOUR|MAJID)\b`,
			Types:      outgoing,
			Priority:   70,
			Confidence: 0.75,
		},
		{
			Name:       "Transport",
			Category:   model.CategoryTransport,
			Regex:      `\b(FUEL|PETROL|SHELL|TOTALENERGIES|RUBIS|UBER|BOLT|LITTLE\s*CAB|MATATU|SACCO|BODA|TRANSPORT|COURIER|G4S)\b`,
			Types:      outgoing,
			Priority:   70,
			Confidence: 0.75,
		},
		// Fallbacks by direction.
		{
			Name:       "Sales Income",
			Category:   model.CategorySales,
			Regex:      `\breceived\b`,
			Types:      []model.TransactionType{model.TypeReceived},
			Priority:   20,
			Confidence: 0.60,
		},
		{
			Name:       "Transfers",
			Category:   model.CategoryTransfers,
			Regex:      `\bsent\b`,
			Types:      []model.TransactionType{model.TypeSent},
			Priority:   10,
			Confidence: 0.50,
		},
	}
}
