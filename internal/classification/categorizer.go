// Package classification assigns bookkeeping categories to transactions
// using ordered regular expression patterns.
package classification

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/decipher-hub/BizBot-ke/internal/common"
	"github.com/decipher-hub/BizBot-ke/internal/model"
)

// Pattern maps matching transactions to a category.
type Pattern struct {
	Name       string
	Category   string
	Regex      string
	Types      []model.TransactionType // empty means any type
	Priority   int                     // Higher priority patterns are checked first
	Confidence float64                 // Base confidence when pattern matches (0.0-1.0)
}

// appliesTo reports whether the pattern may match a transaction of type t.
func (p Pattern) appliesTo(t model.TransactionType) bool {
	if len(p.Types) == 0 {
		return true
	}
	for _, allowed := range p.Types {
		if allowed == t {
			return true
		}
	}
	return false
}

type compiledPattern struct {
	regex *regexp.Regexp
	Pattern
}

// Categorizer implements pattern-based categorization. It is safe for concurrent use.
type Categorizer struct {
	patterns []compiledPattern
	mu       sync.RWMutex
}

// NewCategorizer creates a categorizer with the given patterns.
func NewCategorizer(patterns []Pattern) (*Categorizer, error) {
	compiled, err := compile(patterns)
	if err != nil {
		return nil, err
	}
	return &Categorizer{patterns: compiled}, nil
}

// NewDefaultCategorizer creates a categorizer with DefaultPatterns.
func NewDefaultCategorizer() *Categorizer {
	c, err := NewCategorizer(DefaultPatterns())
	if err != nil {
		panic(fmt.Sprintf("default category patterns: %v", err))
	}
	return c
}

func compile(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))

	for _, p := range patterns {
		if p.Category == "" {
			return nil, fmt.Errorf("pattern %s has no category", p.Name)
		}
		regex, err := common.CompileCaseInsensitive(p.Regex)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		compiled = append(compiled, compiledPattern{Pattern: p, regex: regex})
	}

	// Highest priority first; equal priorities keep their given order.
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority > compiled[j].Priority
	})

	return compiled, nil
}

// Categorize returns the category of the first matching pattern with its confidence,
// or model.CategoryUncategorized and 0 when nothing matches.
func (c *Categorizer) Categorize(_ context.Context, txn model.Transaction) (string, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	searchText := strings.ToLower(strings.Join([]string{
		txn.SenderName,
		txn.RecipientName,
		txn.BusinessShortCode,
		txn.AccountNumber,
		string(txn.Type),
	}, " "))

	for _, pattern := range c.patterns {
		if !pattern.appliesTo(txn.Type) || !pattern.regex.MatchString(searchText) {
			continue
		}

		confidence := pattern.Confidence
		// A party or account literally named after the category is a stronger signal.
		if strings.Contains(searchText, strings.ToLower(pattern.Name)) {
			confidence = minFloat(confidence+0.1, 1.0)
		}
		return pattern.Category, confidence
	}

	return model.CategoryUncategorized, 0
}

// UpdatePatterns replaces the patterns in use.
func (c *Categorizer) UpdatePatterns(patterns []Pattern) error {
	compiled, err := compile(patterns)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.patterns = compiled
	c.mu.Unlock()

	return nil
}

// Patterns returns the patterns in the order they are checked.
func (c *Categorizer) Patterns() []Pattern {
	c.mu.RLock()
	defer c.mu.RUnlock()

	patterns := make([]Pattern, len(c.patterns))
	for i, p := range c.patterns {
		patterns[i] = p.Pattern
	}
	return patterns
}

// minFloat returns the minimum of two float64 values.
func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
