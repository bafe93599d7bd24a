// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "dialogue-navigator/internal/common/errors"
)

// flag name -> config key
var flagBindings = map[string]string{
	"tree":         "session.tree_path",
	"leaf-mode":    "session.leaf_mode",
	"fuzzy-cutoff": "matcher.fuzzy_cutoff",
	"color":        "console.color",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"log-output":   "logging.output",
	"metrics-file": "metrics.textfile_path",
}

// RegisterFlags declares the command-line overrides understood by Load.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file (default: configs/config.yaml)")
	fs.String("tree", "", "dialogue tree file (YAML or JSON); empty uses the built-in tree")
	fs.String("leaf-mode", "", "what to do after a final answer: prompt or stay")
	fs.Float64("fuzzy-cutoff", 0, "minimum similarity ratio for fuzzy matches")
	fs.String("color", "", "color output: auto or never")
	fs.Bool("no-markers", false, "hide option markers")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "console or json")
	fs.String("log-output", "", "stderr or a file path")
	fs.String("metrics-file", "", "write session metrics to this file on exit")
}

// Load reads .env, config files, environment and flags, in increasing
// precedence. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	explicit := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			explicit = f.Value.String()
		}
	}

	if explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("read config file %s: %v", explicit, err))
		}
	} else {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("read base config: %v", err))
			}
		}

		env := v.GetString("app.environment")
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		_ = v.MergeInConfig() // overlay is optional
	}

	expandEnvVars(v)

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, apperrors.NewConfigInvalidError(err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.NewConfigInvalidError(fmt.Sprintf("unmarshal config: %v", err))
	}

	if fs != nil {
		if f := fs.Lookup("no-markers"); f != nil && f.Changed && f.Value.String() == "true" {
			cfg.Console.Markers = false
		}
	}

	normalize(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "dialogue-navigator")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", envOr("APP_ENVIRONMENT", "development"))

	v.SetDefault("session.tree_path", "")
	v.SetDefault("session.leaf_mode", LeafModePrompt)

	v.SetDefault("matcher.fuzzy_cutoff", 0.8)
	v.SetDefault("matcher.keyword_min_length", 3)

	v.SetDefault("console.color", ColorAuto)
	v.SetDefault("console.markers", true)

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.textfile_path", "")
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagBindings {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// loadEnvFile loads the first .env found from the working directory up to
// the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

func normalize(cfg *Config) {
	cfg.Session.LeafMode = strings.ToLower(strings.TrimSpace(cfg.Session.LeafMode))
	cfg.Console.Color = strings.ToLower(strings.TrimSpace(cfg.Console.Color))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
}

// validateConfig validates every field the session depends on.
func validateConfig(cfg *Config) error {
	switch cfg.Session.LeafMode {
	case LeafModePrompt, LeafModeStay:
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("session.leaf_mode must be %q or %q, got %q", LeafModePrompt, LeafModeStay, cfg.Session.LeafMode))
	}

	if cfg.Matcher.FuzzyCutoff <= 0 || cfg.Matcher.FuzzyCutoff > 1 {
		return apperrors.NewConfigInvalidError(fmt.Sprintf("matcher.fuzzy_cutoff must be in (0,1], got %v", cfg.Matcher.FuzzyCutoff))
	}
	if cfg.Matcher.KeywordMinLength < 1 {
		return apperrors.NewConfigInvalidError(fmt.Sprintf("matcher.keyword_min_length must be >= 1, got %d", cfg.Matcher.KeywordMinLength))
	}

	switch cfg.Console.Color {
	case ColorAuto, ColorNever:
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("console.color must be %q or %q, got %q", ColorAuto, ColorNever, cfg.Console.Color))
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("logging.level %q is not supported", cfg.Logging.Level))
	}
	switch cfg.Logging.Format {
	case "console", "json":
	default:
		return apperrors.NewConfigInvalidError(fmt.Sprintf("logging.format %q is not supported", cfg.Logging.Format))
	}
	if cfg.Logging.Output == "stdout" {
		return apperrors.NewConfigInvalidError("logging.output cannot be stdout: it carries the conversation")
	}

	return nil
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
