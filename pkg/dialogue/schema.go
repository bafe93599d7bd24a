// pkg/dialogue/schema.go
package dialogue

import "strings"

// Kind tells the traversal engine what selecting an option does.
type Kind int

const (
	// KindLeaf shows the response and goes nowhere.
	KindLeaf Kind = iota
	// KindFollowup shows the response and descends into Followup.
	KindFollowup
	// KindReturnToRoot jumps back to the main menu.
	KindReturnToRoot
)

func (k Kind) String() string {
	switch k {
	case KindFollowup:
		return "followup"
	case KindReturnToRoot:
		return "return"
	default:
		return "leaf"
	}
}

// ReturnToRootLabel is the label that marks an option as a main-menu shortcut
// when the source data gives no explicit kind.
const ReturnToRootLabel = "return to main menu"

// IsReturnToRootLabel reports whether text is the main-menu label,
// ignoring case and surrounding whitespace.
func IsReturnToRootLabel(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), ReturnToRootLabel)
}

// Tree is a complete dialogue: the main menu plus presentation hints.
type Tree struct {
	Version  string
	Root     *Node
	Speakers []SpeakerRule
	Markers  []MarkerRule
}

// Node is a prompt with an ordered set of options.
type Node struct {
	Prompt  string
	Options []Option
}

// Option returns the option with the given key.
func (n *Node) Option(key string) (Option, bool) {
	for _, opt := range n.Options {
		if opt.Key == key {
			return opt, true
		}
	}
	return Option{}, false
}

// Keys returns option keys in display order.
func (n *Node) Keys() []string {
	keys := make([]string, len(n.Options))
	for i, opt := range n.Options {
		keys[i] = opt.Key
	}
	return keys
}

// Option is one selectable choice within a node.
type Option struct {
	Key      string
	Text     string
	Response string
	Kind     Kind
	Followup *Node // set only for KindFollowup
}

// SpeakerRule attributes a response to a speaker when any keyword occurs in it.
type SpeakerRule struct {
	Name     string   `yaml:"name"`
	Color    string   `yaml:"color"`
	Keywords []string `yaml:"keywords"`
}

// MarkerRule decorates an option label when any keyword occurs in it.
type MarkerRule struct {
	Symbol   string   `yaml:"symbol"`
	Keywords []string `yaml:"keywords"`
}
