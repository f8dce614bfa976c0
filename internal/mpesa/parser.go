package mpesa

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// Parser runs the parse cascade. It is immutable once built and safe for concurrent use.
type Parser struct {
	catalog *Catalog
	dates   *DateNormalizer
	logger  *slog.Logger
	loc     *time.Location
	now     func() time.Time
	workers int
	strict  bool
}

// Option configures a Parser.
type Option func(*Parser)

// WithCatalog replaces the built-in templates.
func WithCatalog(c *Catalog) Option {
	return func(p *Parser) { p.catalog = c }
}

// WithLocation sets the zone message timestamps are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) { p.loc = loc }
}

// WithClock sets the clock used when a message date cannot be parsed.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// WithStrictValidation makes every validation violation invalidate a catalog match,
// including a missing transaction ID.
func WithStrictValidation() Option {
	return func(p *Parser) { p.strict = true }
}

// WithWorkers bounds the concurrency of ParseAll.
func WithWorkers(n int) Option {
	return func(p *Parser) { p.workers = n }
}

// NewParser creates a parser using the default catalog unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		catalog: DefaultCatalog(),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.workers < 1 {
		p.workers = 1
	}
	p.dates = NewDateNormalizer(p.loc, p.now, p.logger)
	return p
}

// Catalog returns the templates this parser uses.
func (p *Parser) Catalog() *Catalog {
	return p.catalog
}

// Parse parses text with a default parser.
func Parse(text string) model.ParseOutcome {
	return NewParser().Parse(text)
}

type state int

const (
	statePrimary state = iota
	stateAlternate
	stateBasic
	stateFail
)

// Parse converts one message into an outcome. It never panics: any internal failure
// becomes a failed outcome carrying the failure message.
func (p *Parser) Parse(text string) (outcome model.ParseOutcome) {
	outcome.OriginalText = text

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Recovered from panic while parsing message", "panic", r)
			failed := model.ParseOutcome{
				OriginalText:   outcome.OriginalText,
				NormalizedText: outcome.NormalizedText,
				Fields:         model.ParsedTransaction{Type: model.TypeUnknown},
				Tier:           model.TierFailed,
				Confidence:     model.Confidence{Level: model.ConfidenceVeryLow},
			}
			failed.AddError(fmt.Errorf("%w: %v", ErrInternalParsing, r))
			outcome = failed
		}
	}()

	outcome.NormalizedText = Normalize(text)

	for st := statePrimary; ; st++ {
		switch st {
		case statePrimary:
			if p.matchTier(&outcome, model.TierPrimary) {
				return outcome
			}
		case stateAlternate:
			if p.matchTier(&outcome, model.TierAlternative) {
				return outcome
			}
		case stateBasic:
			if p.scavenge(&outcome) {
				return outcome
			}
		default:
			p.fail(&outcome)
			return outcome
		}
	}
}

// matchTier tries the templates of one tier and fills outcome on success.
func (p *Parser) matchTier(outcome *model.ParseOutcome, tier model.Tier) bool {
	def, captures, ok := p.catalog.Match(tier, outcome.NormalizedText)
	if !ok {
		return false
	}

	fields, errs := p.extract(def, captures)
	outcome.Tier = tier
	outcome.PatternUsed = def.Name
	outcome.Fields = fields
	for _, err := range errs {
		outcome.AddError(err)
	}

	outcome.IsValid = true
	for _, violation := range Validate(fields) {
		if p.strict || !errors.Is(violation, ErrMissingTransactionID) {
			outcome.IsValid = false
			outcome.AddError(violation)
		}
	}
	outcome.Confidence = Score(*outcome)

	p.logger.Debug("Matched message pattern",
		"pattern", def.Name,
		"tier", tier,
		"valid", outcome.IsValid)

	return true
}

// extract builds the fields of a template match. Malformed amounts are left unset
// and reported without abandoning the match.
func (p *Parser) extract(def *PatternDefinition, captures Captures) (model.ParsedTransaction, []error) {
	fields := model.ParsedTransaction{Type: def.Type}
	var errs []error

	if token := captures.Value("amount"); token != nil {
		if amount, err := parseAmount(*token); err != nil {
			errs = append(errs, fmt.Errorf("amount: %w", err))
		} else {
			fields.Amount = &amount
		}
	}
	if token := captures.Value("balance"); token != nil {
		if balance, err := parseAmount(*token); err != nil {
			errs = append(errs, fmt.Errorf("balance: %w", err))
		} else {
			fields.OrgAccountBalance = &balance
		}
	}
	if token := captures.Value("date"); token != nil {
		date := p.dates.Normalize(*token)
		fields.TransactionDate = &date
	}
	fields.TransactionID = captures.Value("id")

	if def.Mapper != nil {
		def.Mapper(&fields, captures)
	}

	return fields, errs
}

// scavenge runs the heuristic fallback. It never produces a valid outcome.
func (p *Parser) scavenge(outcome *model.ParseOutcome) bool {
	info := ExtractBasicInfo(outcome.NormalizedText)
	outcome.Basic = &info
	outcome.Fields = model.ParsedTransaction{
		Type:   info.TypeGuess,
		Amount: info.Amount,
	}
	outcome.Confidence = model.Confidence{Level: model.ConfidenceVeryLow}

	if !info.HasAnyInfo {
		return false
	}

	outcome.Tier = model.TierBasic
	outcome.AddError(ErrNoPatternMatch)

	p.logger.Warn("No exact pattern match, using basic extraction",
		"type_guess", info.TypeGuess,
		"phones", len(info.PhoneNumbers),
		"names", len(info.Names))

	return true
}

func (p *Parser) fail(outcome *model.ParseOutcome) {
	outcome.Tier = model.TierFailed
	outcome.IsValid = false
	outcome.Confidence = model.Confidence{Level: model.ConfidenceVeryLow}
	outcome.AddError(ErrInsufficientFallbackInfo)

	p.logger.Error("Failed to parse message", "length", len(outcome.OriginalText))
}
