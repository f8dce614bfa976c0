package mpesa

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

func TestDefaultCatalog_Names(t *testing.T) {
	want := []string{
		"MONEY_RECEIVED",
		"MONEY_SENT",
		"PAYMENT_TO_BUSINESS",
		"WITHDRAWAL",
		"DEPOSIT",
		"BUY_AIRTIME",
		"PAY_BILL",
		"SIMPLE_RECEIVED",
		"SIMPLE_SENT",
	}
	assert.Equal(t, want, DefaultCatalog().Names())
}

func TestDefaultCatalog_Tiers(t *testing.T) {
	c := DefaultCatalog()

	primary := c.Definitions(model.TierPrimary)
	alternative := c.Definitions(model.TierAlternative)

	assert.Len(t, primary, 7)
	assert.Len(t, alternative, 2)
	for _, def := range primary {
		assert.Equal(t, model.TierPrimary, def.Tier, def.Name)
		assert.True(t, def.Type.IsKnown(), def.Name)
	}
	for _, def := range alternative {
		assert.Equal(t, model.TierAlternative, def.Tier, def.Name)
	}
	assert.Empty(t, c.Definitions(model.TierBasic))
}

func TestCatalog_DefinitionsAreCopies(t *testing.T) {
	c := DefaultCatalog()

	defs := c.Definitions(model.TierPrimary)
	defs[0].Name = "MUTATED"

	assert.Equal(t, "MONEY_RECEIVED", c.Names()[0])
}

func TestCatalog_MatchFirstWins(t *testing.T) {
	c, err := NewCatalog(
		PatternDefinition{Name: "FIRST", Tier: model.TierPrimary, Type: model.TypeSent, Pattern: regexp.MustCompile(`(?P<amount>\d+)`)},
		PatternDefinition{Name: "SECOND", Tier: model.TierPrimary, Type: model.TypeReceived, Pattern: regexp.MustCompile(`received (?P<amount>\d+)`)},
		PatternDefinition{Name: "LOOSE", Tier: model.TierAlternative, Type: model.TypeReceived, Pattern: regexp.MustCompile(`.`)},
	)
	require.NoError(t, err)

	def, captures, ok := c.Match(model.TierPrimary, "received 42")
	require.True(t, ok)
	assert.Equal(t, "FIRST", def.Name)
	assert.Equal(t, "42", *captures.Value("amount"))

	def, _, ok = c.Match(model.TierAlternative, "anything")
	require.True(t, ok)
	assert.Equal(t, "LOOSE", def.Name)

	_, _, ok = c.Match(model.TierPrimary, "no digits")
	assert.False(t, ok)

	_, _, ok = c.Match(model.TierBasic, "received 42")
	assert.False(t, ok)
}

func TestNewCatalog_Errors(t *testing.T) {
	re := regexp.MustCompile(`x`)

	tests := []struct {
		name   string
		errMsg string
		defs   []PatternDefinition
	}{
		{
			name:   "missing name",
			defs:   []PatternDefinition{{Tier: model.TierPrimary, Pattern: re}},
			errMsg: "without a name",
		},
		{
			name: "duplicate name",
			defs: []PatternDefinition{
				{Name: "A", Tier: model.TierPrimary, Pattern: re},
				{Name: "A", Tier: model.TierAlternative, Pattern: re},
			},
			errMsg: "duplicate pattern definition A",
		},
		{
			name:   "missing pattern",
			defs:   []PatternDefinition{{Name: "A", Tier: model.TierPrimary}},
			errMsg: "has no pattern",
		},
		{
			name:   "basic tier is not a catalog tier",
			defs:   []PatternDefinition{{Name: "A", Tier: model.TierBasic, Pattern: re}},
			errMsg: "invalid tier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCatalog(tt.defs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
			assert.Nil(t, c)
		})
	}
}

func TestCaptures_Value(t *testing.T) {
	c := Captures{"name": "  JOHN DOE ", "blank": "   "}

	assert.Equal(t, "JOHN DOE", *c.Value("name"))
	assert.Nil(t, c.Value("blank"))
	assert.Nil(t, c.Value("missing"))
}
