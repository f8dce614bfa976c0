package mpesa

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// Template fragments shared by the catalog.
const (
	mpesaPrefix = `(?:MPESA|M-PESA)\s+`
	amountToken = `[\d,]+(?:\.\d+)?`
	dateToken   = `\d{1,2}/\d{1,2}/\d{2,4}\s+\d{1,2}:\d{2}(?:\s*[AP]M)?`
	codeToken   = `[A-Z0-9]+`
	// Capitalised words; case sensitive even inside (?i) templates.
	nameToken = `(?-i:[A-Z][\w'&.-]*(?:\s+[A-Z][\w'&.-]*)*)`
	freeToken = `\w+(?:\s+\w+)*`

	amountGroup  = `Ksh(?P<amount>` + amountToken + `)`
	partyGroups  = `(?P<phone>\d+)\s+(?P<name>` + nameToken + `)`
	stampGroups  = `\s+(?P<date>` + dateToken + `)\s+(?P<id>` + codeToken + `)`
	balanceGroup = `\s+New\s+M-?PESA\s+balance\s+is\s+Ksh(?P<balance>` + amountToken + `)`
)

// Captures maps named template groups to the text they matched.
type Captures map[string]string

// Value returns the trimmed capture, or nil when the group is absent or blank.
func (c Captures) Value(group string) *string {
	v, ok := c[group]
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// FieldMapper assigns the counter-party fields a template captured.
// Amount, date, transaction id and balance are extracted uniformly by the parser.
type FieldMapper func(tx *model.ParsedTransaction, c Captures)

// PatternDefinition is one named message template.
type PatternDefinition struct {
	Pattern *regexp.Regexp
	Mapper  FieldMapper
	Name    string
	Tier    model.Tier
	Type    model.TransactionType
}

// Catalog is an ordered, read-only set of templates.
// Order is priority: the first template that matches wins.
type Catalog struct {
	primary     []PatternDefinition
	alternative []PatternDefinition
}

// NewCatalog builds a catalog, keeping each tier in the order given.
func NewCatalog(defs ...PatternDefinition) (*Catalog, error) {
	c := &Catalog{}
	seen := make(map[string]bool, len(defs))

	for _, def := range defs {
		if def.Name == "" {
			return nil, errors.New("pattern definition without a name")
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("duplicate pattern definition %s", def.Name)
		}
		if def.Pattern == nil {
			return nil, fmt.Errorf("pattern definition %s has no pattern", def.Name)
		}
		seen[def.Name] = true

		switch def.Tier {
		case model.TierPrimary:
			c.primary = append(c.primary, def)
		case model.TierAlternative:
			c.alternative = append(c.alternative, def)
		default:
			return nil, fmt.Errorf("pattern definition %s has invalid tier %q", def.Name, def.Tier)
		}
	}

	return c, nil
}

// Definitions returns a copy of the templates in tier, in priority order.
func (c *Catalog) Definitions(tier model.Tier) []PatternDefinition {
	var defs []PatternDefinition
	switch tier {
	case model.TierPrimary:
		defs = c.primary
	case model.TierAlternative:
		defs = c.alternative
	}
	return append([]PatternDefinition(nil), defs...)
}

// Names returns every template name, primary tier first.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.primary)+len(c.alternative))
	for _, def := range c.primary {
		names = append(names, def.Name)
	}
	for _, def := range c.alternative {
		names = append(names, def.Name)
	}
	return names
}

// Match returns the first template in tier that matches text, with its captures.
func (c *Catalog) Match(tier model.Tier, text string) (*PatternDefinition, Captures, bool) {
	var defs []PatternDefinition
	switch tier {
	case model.TierPrimary:
		defs = c.primary
	case model.TierAlternative:
		defs = c.alternative
	default:
		return nil, nil, false
	}

	for i := range defs {
		def := &defs[i]
		match := def.Pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		captures := make(Captures, len(match))
		for j, group := range def.Pattern.SubexpNames() {
			if group != "" {
				captures[group] = match[j]
			}
		}
		return def, captures, true
	}

	return nil, nil, false
}

// DefaultCatalog returns the built-in M-PESA templates.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

var defaultCatalog = mustCatalog(
	PatternDefinition{
		Name:    "MONEY_RECEIVED",
		Tier:    model.TierPrimary,
		Type:    model.TypeReceived,
		Pattern: template(`received\s+` + amountGroup + `\s+from\s+` + partyGroups + stampGroups + balanceGroup),
		Mapper:  senderParty,
	},
	PatternDefinition{
		Name:    "MONEY_SENT",
		Tier:    model.TierPrimary,
		Type:    model.TypeSent,
		Pattern: template(amountGroup + `\s+sent\s+to\s+` + partyGroups + stampGroups + balanceGroup),
		Mapper:  recipientParty,
	},
	PatternDefinition{
		Name: "PAYMENT_TO_BUSINESS",
		Tier: model.TierPrimary,
		Type: model.TypePayment,
		Pattern: template(amountGroup + `\s+paid\s+to\s+(?P<shortcode>` + codeToken + `)\s+(?P<name>` + nameToken + `)` +
			stampGroups + balanceGroup),
		Mapper: businessParty,
	},
	PatternDefinition{
		Name:    "WITHDRAWAL",
		Tier:    model.TierPrimary,
		Type:    model.TypeWithdrawal,
		Pattern: template(amountGroup + `\s+withdrawn\s+from\s+` + partyGroups + stampGroups + balanceGroup),
		Mapper:  senderParty,
	},
	PatternDefinition{
		Name:    "DEPOSIT",
		Tier:    model.TierPrimary,
		Type:    model.TypeDeposit,
		Pattern: template(amountGroup + `\s+deposited\s+to\s+` + partyGroups + stampGroups + balanceGroup),
		Mapper:  recipientParty,
	},
	PatternDefinition{
		Name:    "BUY_AIRTIME",
		Tier:    model.TierPrimary,
		Type:    model.TypeAirtime,
		Pattern: template(amountGroup + `\s+paid\s+for\s+airtime\s+(?P<phone>\d+)` + stampGroups + balanceGroup),
		Mapper:  recipientParty,
	},
	PatternDefinition{
		Name: "PAY_BILL",
		Tier: model.TierPrimary,
		Type: model.TypePaybill,
		Pattern: template(amountGroup + `\s+paid\s+to\s+(?P<shortcode>` + codeToken + `)\s+Account\s+(?P<account>` + freeToken + `)` +
			stampGroups + balanceGroup),
		Mapper: billParty,
	},
	PatternDefinition{
		Name:    "SIMPLE_RECEIVED",
		Tier:    model.TierAlternative,
		Type:    model.TypeReceived,
		Pattern: regexp.MustCompile(`(?i)received\s+` + amountGroup + `\s+from\s+` + partyGroups),
		Mapper:  senderParty,
	},
	PatternDefinition{
		Name:    "SIMPLE_SENT",
		Tier:    model.TierAlternative,
		Type:    model.TypeSent,
		Pattern: regexp.MustCompile(`(?i)sent\s+` + amountGroup + `\s+to\s+` + partyGroups),
		Mapper:  recipientParty,
	},
)

func template(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + mpesaPrefix + body)
}

func mustCatalog(defs ...PatternDefinition) *Catalog {
	c, err := NewCatalog(defs...)
	if err != nil {
		panic(err)
	}
	return c
}

func senderParty(tx *model.ParsedTransaction, c Captures) {
	tx.SenderPhone = c.Value("phone")
	tx.SenderName = c.Value("name")
}

func recipientParty(tx *model.ParsedTransaction, c Captures) {
	tx.RecipientPhone = c.Value("phone")
	tx.RecipientName = c.Value("name")
}

func businessParty(tx *model.ParsedTransaction, c Captures) {
	tx.BusinessShortCode = c.Value("shortcode")
	tx.RecipientName = c.Value("name")
}

func billParty(tx *model.ParsedTransaction, c Captures) {
	tx.BusinessShortCode = c.Value("shortcode")
	tx.AccountNumber = c.Value("account")
}
