// internal/engine/option-matcher/models.go
package optionmatcher

// Strategy names the rule that resolved an input.
type Strategy string

const (
	StrategyExactKey Strategy = "exact_key"
	StrategyText     Strategy = "text"
	StrategyFuzzy    Strategy = "fuzzy"
	StrategyKeyword  Strategy = "keyword"
	StrategyNone     Strategy = "none"
)

// Strategies lists the matching strategies in resolution order.
var Strategies = []Strategy{StrategyExactKey, StrategyText, StrategyFuzzy, StrategyKeyword}

type Result struct {
	Matched  bool
	Key      string
	Strategy Strategy
	// Score is the similarity ratio for fuzzy matches and the overlap size
	// for keyword matches; 1 otherwise.
	Score float64
}

func noMatch() Result {
	return Result{Strategy: StrategyNone}
}
