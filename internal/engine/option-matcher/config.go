// internal/engine/option-matcher/config.go
package optionmatcher

type Config struct {
	FuzzyCutoff      float64 // minimum similarity ratio for a fuzzy match
	KeywordMinLength int     // label words shorter than this are not keywords
}

func LoadConfig() *Config {
	return &Config{
		FuzzyCutoff:      0.8,
		KeywordMinLength: 3,
	}
}
