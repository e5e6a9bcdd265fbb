package imagery

import (
	"fmt"
	"strings"

	"github.com/Veraticus/catalog-imager/internal/model"
)

// Rule maps any of its keywords, found as a substring of a lower-cased
// category label, to a pool.
type Rule struct {
	Pool     model.PoolName
	Keywords []string
}

// Matches returns the first keyword contained in the lower-cased label.
func (r Rule) Matches(label string) (string, bool) {
	for _, kw := range r.Keywords {
		if strings.Contains(label, kw) {
			return kw, true
		}
	}
	return "", false
}

// DefaultRules is the built-in rule table. Order is significant.
func DefaultRules() []Rule {
	return []Rule{
		{Pool: model.PoolCoffee, Keywords: []string{"coffee"}},
		{Pool: model.PoolTea, Keywords: []string{"tea"}},
		{Pool: model.PoolSmoothie, Keywords: []string{"smoothie", "juice", "drink"}},
		{Pool: model.PoolPastry, Keywords: []string{"pastry", "cake", "bread", "dessert"}},
	}
}

// Match explains how a label was classified.
type Match struct {
	Pool     model.PoolName
	Keyword  string
	Rule     int
	Fallback bool
}

// Classifier assigns category labels to pools. First matching rule wins.
type Classifier struct {
	fallback model.PoolName
	rules    []Rule
}

// NewClassifier creates a classifier over the given rules. Every rule pool
// and the fallback must exist in pools.
func NewClassifier(rules []Rule, fallback model.PoolName, pools *PoolSet) (*Classifier, error) {
	if pools == nil {
		return nil, ErrNoPools
	}
	fallback = normalizePool(fallback)
	if !pools.Has(fallback) {
		return nil, fmt.Errorf("%w: fallback %s", ErrUnknownPool, fallback)
	}

	normalized := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		pool := normalizePool(rule.Pool)
		if !pools.Has(pool) {
			return nil, fmt.Errorf("%w: rule %d references %s", ErrUnknownPool, i+1, rule.Pool)
		}
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, Rule{Pool: pool, Keywords: keywords})
	}

	return &Classifier{rules: normalized, fallback: fallback}, nil
}

// NewDefaultClassifier uses DefaultRules with the pool set's fallback.
func NewDefaultClassifier(pools *PoolSet) (*Classifier, error) {
	return NewClassifier(DefaultRules(), pools.Fallback(), pools)
}

// Classify returns the pool for a category label.
func (c *Classifier) Classify(label string) model.PoolName {
	return c.Explain(label).Pool
}

// Explain classifies a label and reports which rule and keyword matched.
// Rule is 1-based; it is 0 when the fallback was used.
func (c *Classifier) Explain(label string) Match {
	lower := strings.ToLower(label)
	for i, rule := range c.rules {
		if kw, ok := rule.Matches(lower); ok {
			return Match{Pool: rule.Pool, Keyword: kw, Rule: i + 1}
		}
	}
	return Match{Pool: c.fallback, Fallback: true}
}
