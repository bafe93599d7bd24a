// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Session SessionConfig `mapstructure:"session"`
	Matcher MatcherConfig `mapstructure:"matcher"`
	Console ConsoleConfig `mapstructure:"console"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// Leaf modes decide what happens after a response with nowhere further to go.
const (
	LeafModePrompt = "prompt"
	LeafModeStay   = "stay"
)

// SessionConfig holds settings for the traversal engine.
type SessionConfig struct {
	TreePath string `mapstructure:"tree_path"` // empty selects the embedded tree
	LeafMode string `mapstructure:"leaf_mode"`
}

// MatcherConfig holds the option matcher thresholds.
type MatcherConfig struct {
	FuzzyCutoff      float64 `mapstructure:"fuzzy_cutoff"`
	KeywordMinLength int     `mapstructure:"keyword_min_length"`
}

const (
	ColorAuto  = "auto"
	ColorNever = "never"
)

// ConsoleConfig holds presentation settings.
type ConsoleConfig struct {
	Color   string `mapstructure:"color"`
	Markers bool   `mapstructure:"markers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the textfile export settings.
type MetricsConfig struct {
	TextfilePath string `mapstructure:"textfile_path"`
}
