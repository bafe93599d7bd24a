// Package content ships the built-in dialogue tree.
package content

import (
	_ "embed"

	"dialogue-navigator/pkg/dialogue"
)

//go:embed chatbot.yaml
var chatbotYAML []byte

// Default parses the embedded three-character tree. Each call returns a fresh
// tree.
func Default() (*dialogue.Tree, error) {
	return dialogue.Parse(chatbotYAML)
}

// Raw returns the embedded document as written.
func Raw() []byte {
	out := make([]byte, len(chatbotYAML))
	copy(out, chatbotYAML)
	return out
}
