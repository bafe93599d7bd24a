// internal/engine/option-matcher/matcher.go
package optionmatcher

import (
	"strconv"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"dialogue-navigator/internal/common/logger"
	"dialogue-navigator/pkg/dialogue"
)

// Matcher resolves free text to an option key. The strategies run from most
// to least exact and the first one that produces a candidate wins.
type Matcher struct {
	config *Config
	logger logger.Logger
}

func NewMatcher(config *Config, log logger.Logger) *Matcher {
	if config == nil {
		config = LoadConfig()
	}
	return &Matcher{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "option-matcher"}),
	}
}

// Match resolves raw against options. It never mutates options and returns
// the same result for the same arguments.
func (m *Matcher) Match(raw string, options []dialogue.Option) Result {
	res := m.match(raw, options)
	m.logger.Debug("option match", map[string]interface{}{
		"input":    raw,
		"strategy": string(res.Strategy),
		"key":      res.Key,
		"score":    res.Score,
	})
	return res
}

func (m *Matcher) match(raw string, options []dialogue.Option) Result {
	if len(options) == 0 {
		return noMatch()
	}

	if key, ok := matchKey(raw, options); ok {
		return Result{Matched: true, Key: key, Strategy: StrategyExactKey, Score: 1}
	}

	input := Normalize(raw)
	// Blank or punctuation-only input is a substring of every label and
	// would select the first option. It is rejected here on purpose.
	if input == "" {
		return noMatch()
	}

	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = Normalize(opt.Text)
	}

	if i, ok := matchText(input, labels); ok {
		return Result{Matched: true, Key: options[i].Key, Strategy: StrategyText, Score: 1}
	}

	if i, score, ok := m.matchFuzzy(input, labels); ok {
		return Result{Matched: true, Key: options[i].Key, Strategy: StrategyFuzzy, Score: score}
	}

	if i, overlap, ok := m.matchKeywords(input, options); ok {
		return Result{Matched: true, Key: options[i].Key, Strategy: StrategyKeyword, Score: float64(overlap)}
	}

	return noMatch()
}

// matchKey accepts the key verbatim, trimmed, or as a number with leading
// zeros ("02" selects "2").
func matchKey(raw string, options []dialogue.Option) (string, bool) {
	candidates := []string{raw}
	if trimmed := strings.TrimSpace(raw); trimmed != raw {
		candidates = append(candidates, trimmed)
	}
	if n, ok := parseDigits(strings.TrimSpace(raw)); ok {
		candidates = append(candidates, strconv.Itoa(n))
	}

	for _, c := range candidates {
		for _, opt := range options {
			if opt.Key == c {
				return opt.Key, true
			}
		}
	}
	return "", false
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// matchText finds the first label equal to the input or containing it, or
// contained in it.
func matchText(input string, labels []string) (int, bool) {
	for i, label := range labels {
		if label == "" {
			continue
		}
		if input == label || strings.Contains(label, input) || strings.Contains(input, label) {
			return i, true
		}
	}
	return 0, false
}

// matchFuzzy picks the label with the highest sequence similarity ratio at or
// above the cutoff. Equal ratios keep the earlier option.
func (m *Matcher) matchFuzzy(input string, labels []string) (int, float64, bool) {
	in := splitRunes(input)
	best, bestScore := -1, 0.0

	for i, label := range labels {
		if label == "" {
			continue
		}
		sm := difflib.NewMatcher(splitRunes(label), in)
		if sm.RealQuickRatio() < m.config.FuzzyCutoff || sm.QuickRatio() < m.config.FuzzyCutoff {
			continue
		}
		score := sm.Ratio()
		if score >= m.config.FuzzyCutoff && score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return 0, 0, false
	}
	return best, bestScore, true
}

// matchKeywords picks the option whose label keywords share the most words
// with the input. Ties keep the earlier option.
func (m *Matcher) matchKeywords(input string, options []dialogue.Option) (int, int, bool) {
	inputWords := words(input)
	best, bestOverlap := -1, 0

	for i, opt := range options {
		overlap := 0
		for kw := range Keywords(opt.Text, m.config.KeywordMinLength) {
			if _, ok := inputWords[kw]; ok {
				overlap++
			}
		}
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}

	if best < 0 {
		return 0, 0, false
	}
	return best, bestOverlap, true
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
