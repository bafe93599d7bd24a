// internal/engine/traversal/config.go
package traversal

import "dialogue-navigator/internal/common/config"

type Config struct {
	// LeafMode is config.LeafModePrompt or config.LeafModeStay.
	LeafMode string
}

func LoadConfig() *Config {
	return &Config{
		LeafMode: config.LeafModePrompt,
	}
}
