package console

import (
	"strings"

	"dialogue-navigator/pkg/dialogue"
)

const (
	DefaultMarker  = "👉"
	DefaultSpeaker = "💬 Chatbot"
)

// Marker returns the symbol of the first rule with a keyword occurring in
// label, or DefaultMarker.
func Marker(rules []dialogue.MarkerRule, label string) string {
	text := strings.ToLower(label)
	for _, r := range rules {
		if containsAny(text, r.Keywords) {
			return r.Symbol
		}
	}
	return DefaultMarker
}

// Speaker returns the first rule with a keyword occurring in response. ok is
// false when nothing matched.
func Speaker(rules []dialogue.SpeakerRule, response string) (rule dialogue.SpeakerRule, ok bool) {
	text := strings.ToLower(response)
	for _, r := range rules {
		if containsAny(text, r.Keywords) {
			return r, true
		}
	}
	return dialogue.SpeakerRule{Name: DefaultSpeaker}, false
}

func containsAny(lowered string, keywords []string) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
