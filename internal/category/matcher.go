package category

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/overfiltrr/overfiltrr/internal/media"
)

// KeywordMatcher decides whether a configured keyword matches a keyword
// attached to the media.
type KeywordMatcher interface {
	Name() string
	Match(want, have string) bool
}

// Keyword matching strategies.
const (
	StrategyExact     = "exact"
	StrategySubstring = "substring"
	StrategyFuzzy     = "fuzzy"
)

// DefaultFuzzyThreshold mirrors a similarity ratio of 80 out of 100.
const DefaultFuzzyThreshold = 0.8

// fold normalizes s for case-insensitive comparison. Casers keep state, so
// one is created per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFKC.String(strings.TrimSpace(s)))
}

// ExactMatcher matches case-insensitively equal keywords.
type ExactMatcher struct{}

func (ExactMatcher) Name() string { return StrategyExact }

func (ExactMatcher) Match(want, have string) bool {
	return fold(want) == fold(have)
}

// SubstringMatcher matches when the media keyword contains the configured one.
type SubstringMatcher struct{}

func (SubstringMatcher) Name() string { return StrategySubstring }

func (SubstringMatcher) Match(want, have string) bool {
	w := fold(want)
	return w != "" && strings.Contains(fold(have), w)
}

// FuzzyMatcher matches keywords whose edit-distance similarity reaches Threshold.
type FuzzyMatcher struct {
	Threshold float32
}

func (FuzzyMatcher) Name() string { return StrategyFuzzy }

func (m FuzzyMatcher) Match(want, have string) bool {
	w, h := fold(want), fold(have)
	if w == h {
		return w != ""
	}
	score, err := edlib.StringsSimilarity(w, h, edlib.Levenshtein)
	if err != nil {
		return false
	}
	return score >= m.Threshold
}

// NewKeywordMatcher returns the strategy named by strategy. An empty name
// selects substring matching.
func NewKeywordMatcher(strategy string, threshold float64) (KeywordMatcher, error) {
	switch strings.ToLower(strategy) {
	case "", StrategySubstring:
		return SubstringMatcher{}, nil
	case StrategyExact:
		return ExactMatcher{}, nil
	case StrategyFuzzy:
		if threshold <= 0 {
			threshold = DefaultFuzzyThreshold
		}
		if threshold > 1 {
			return nil, fmt.Errorf("fuzzy threshold %v must be between 0 and 1", threshold)
		}
		return FuzzyMatcher{Threshold: float32(threshold)}, nil
	}
	return nil, fmt.Errorf("unknown keyword matching strategy %q", strategy)
}

// Candidate records how one category fared against a request.
type Candidate struct {
	Name           string `json:"name"`
	Weight         int    `json:"weight"`
	Excluded       bool   `json:"excluded"`
	Matched        bool   `json:"matched"`
	MatchedGenre   string `json:"matchedGenre,omitempty"`
	MatchedKeyword string `json:"matchedKeyword,omitempty"`
}

// Result is the outcome of Match.
type Result struct {
	Category   string      `json:"category"`
	Definition *Definition `json:"-"`
	Fallback   bool        `json:"fallback"`
	Candidates []Candidate `json:"candidates"`
}

// Matcher scores categories against request attributes.
type Matcher struct {
	keywords KeywordMatcher
}

// NewMatcher creates a matcher. A nil strategy falls back to substring matching.
func NewMatcher(keywords KeywordMatcher) *Matcher {
	if keywords == nil {
		keywords = SubstringMatcher{}
	}
	return &Matcher{keywords: keywords}
}

// Match picks the highest-weight category whose filters accept attrs. A
// category whose excluded_ratings contains the request's rating never wins.
// Equal weights resolve to the earliest declared category. The default
// category only wins as the fallback.
func (m *Matcher) Match(attrs media.Attributes, set *Set) Result {
	res := Result{Candidates: make([]Candidate, 0, len(set.Definitions))}
	best := -1

	for i := range set.Definitions {
		d := &set.Definitions[i]
		if d.Name == set.Default {
			continue
		}
		c := m.evaluate(attrs, d)
		res.Candidates = append(res.Candidates, c)
		if !c.Matched {
			continue
		}
		if best < 0 || c.Weight > set.Definitions[best].WeightValue() {
			best = i
		}
	}

	if best >= 0 {
		res.Definition = &set.Definitions[best]
		res.Category = res.Definition.Name
		return res
	}

	res.Fallback = true
	res.Category = set.Default
	if d, ok := set.DefaultDefinition(); ok {
		res.Definition = d
	}
	return res
}

func (m *Matcher) evaluate(attrs media.Attributes, d *Definition) Candidate {
	c := Candidate{Name: d.Name, Weight: d.WeightValue()}

	if attrs.Rating != "" && containsFolded(d.Filters.ExcludedRatings, attrs.Rating) {
		c.Excluded = true
		return c
	}
	if d.Filters.Empty() {
		c.Matched = true
		return c
	}

	genreOK, keywordOK := true, true
	if len(d.Filters.Genres) > 0 {
		c.MatchedGenre = firstGenre(d.Filters.Genres, attrs.Genres)
		genreOK = c.MatchedGenre != ""
	}
	if len(d.Filters.Keywords) > 0 {
		c.MatchedKeyword = m.firstKeyword(d.Filters.Keywords, attrs.Keywords)
		keywordOK = c.MatchedKeyword != ""
	}

	if d.Filters.Match == MatchAny {
		c.Matched = c.MatchedGenre != "" || c.MatchedKeyword != ""
	} else {
		c.Matched = genreOK && keywordOK
	}
	return c
}

// firstGenre returns the first wanted genre present in have. Genres come from
// TMDB's fixed vocabulary and are compared exactly.
func firstGenre(want, have []string) string {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return w
			}
		}
	}
	return ""
}

func (m *Matcher) firstKeyword(want, have []string) string {
	for _, w := range want {
		for _, h := range have {
			if m.keywords.Match(w, h) {
				return w
			}
		}
	}
	return ""
}

func containsFolded(list []string, s string) bool {
	f := fold(s)
	for _, v := range list {
		if fold(v) == f {
			return true
		}
	}
	return false
}
