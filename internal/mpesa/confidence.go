package mpesa

import (
	"math"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// Tier base scores and per-field bonuses.
const (
	primaryBase     = 0.7
	alternativeBase = 0.4
	amountBonus     = 0.1
	idBonus         = 0.1
	dateBonus       = 0.05
	balanceBonus    = 0.05
)

// Score rates how complete and trustworthy an outcome is.
// Catalog matches get a numeric score in [0, 1]; every other outcome is very_low.
func Score(outcome model.ParseOutcome) model.Confidence {
	var score float64
	var level model.ConfidenceLevel

	switch outcome.Tier {
	case model.TierPrimary:
		score, level = primaryBase, model.ConfidenceHigh
	case model.TierAlternative:
		score, level = alternativeBase, model.ConfidenceLow
	default:
		return model.Confidence{Level: model.ConfidenceVeryLow}
	}

	fields := outcome.Fields
	if fields.Amount != nil {
		score += amountBonus
	}
	if fields.TransactionID != nil {
		score += idBonus
	}
	if fields.TransactionDate != nil {
		score += dateBonus
	}
	if fields.OrgAccountBalance != nil {
		score += balanceBonus
	}

	score = math.Min(math.Round(score*100)/100, 1.0)

	return model.Confidence{Score: &score, Level: level}
}
