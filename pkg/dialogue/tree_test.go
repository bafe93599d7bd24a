package dialogue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dialogue-navigator/internal/common/errors"
)

const sampleYAML = `
version: "1"
speakers:
  - name: Po
    color: "3"
    keywords: [dumpling]
markers:
  - symbol: "*"
    keywords: [kung fu]
root:
  prompt: Choose a character
  options:
    "2":
      text: Po, the Dragon Warrior
      response: Skadoosh!
      followup:
        prompt: What's next?
        options:
          "1":
            text: Kung fu lessons
            response: Inner peace first.
          "2":
            text: Return to main menu
    "1":
      text: APJ Abdul Kalam
      prompt: What would you like to talk about?
      options:
        "1":
          text: Your achievements
          response: Inspiring young minds.
    10:
      text: Just a leaf
      response: Nothing more to say.
`

func TestParse_PreservesOrderAndKinds(t *testing.T) {
	tree, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "1", tree.Version)
	require.NotNil(t, tree.Root)
	assert.Equal(t, []string{"2", "1", "10"}, tree.Root.Keys())

	po, ok := tree.Root.Option("2")
	require.True(t, ok)
	assert.Equal(t, KindFollowup, po.Kind)
	require.NotNil(t, po.Followup)
	assert.Equal(t, "What's next?", po.Followup.Prompt)

	back, ok := po.Followup.Option("2")
	require.True(t, ok)
	assert.Equal(t, KindReturnToRoot, back.Kind)
	assert.Empty(t, back.Response)

	kalam, _ := tree.Root.Option("1")
	assert.Equal(t, KindFollowup, kalam.Kind, "inline options become a followup node")
	require.NotNil(t, kalam.Followup)
	assert.Equal(t, "What would you like to talk about?", kalam.Followup.Prompt)
	assert.Equal(t, []string{"1"}, kalam.Followup.Keys())

	leaf, _ := tree.Root.Option("10")
	assert.Equal(t, KindLeaf, leaf.Kind)
	assert.Nil(t, leaf.Followup)

	require.Len(t, tree.Speakers, 1)
	assert.Equal(t, []string{"dumpling"}, tree.Speakers[0].Keywords)
	require.Len(t, tree.Markers, 1)
	assert.Equal(t, "*", tree.Markers[0].Symbol)
}

func TestParse_AcceptsJSON(t *testing.T) {
	doc := `{"root": {"prompt": "Pick", "options": {
		"b": {"text": "Second letter"},
		"a": {"text": "RETURN to Main Menu "},
		"c": {"text": "Explicit", "kind": "return", "response": "Back we go"}
	}}}`

	tree, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, tree.Root.Keys())

	a, _ := tree.Root.Option("a")
	assert.Equal(t, KindReturnToRoot, a.Kind)
	c, _ := tree.Root.Option("c")
	assert.Equal(t, KindReturnToRoot, c.Kind)
	assert.Equal(t, "Back we go", c.Response)
}

func TestParse_FollowupWinsOverSentinelLabel(t *testing.T) {
	doc := `
root:
  prompt: Top
  options:
    "1":
      text: Return to main menu
      followup:
        prompt: Are you sure?
        options:
          "1": {text: "Yes"}
`
	tree, err := Parse([]byte(doc))
	require.NoError(t, err)
	opt, _ := tree.Root.Option("1")
	assert.Equal(t, KindFollowup, opt.Kind)
}

func TestParse_RejectsMalformedTrees(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		code     apperrors.ErrorCode
		contains string
	}{
		{
			name: "empty document",
			doc:  "",
			code: apperrors.ErrCodeTreeLoadFailed,
		},
		{
			name: "not yaml",
			doc:  "root: [unclosed",
			code: apperrors.ErrCodeTreeLoadFailed,
		},
		{
			name: "missing root",
			doc:  "version: \"1\"\n",
			code: apperrors.ErrCodeTreeValidationFailed,
		},
		{
			name: "empty option set",
			doc:  "root:\n  prompt: Hi\n  options: {}\n",
			code: apperrors.ErrCodeTreeValidationFailed,
		},
		{
			name: "followup is not a node",
			doc:  "root:\n  prompt: Hi\n  options:\n    \"1\":\n      text: Go\n      followup: nowhere\n",
			code: apperrors.ErrCodeTreeValidationFailed,
		},
		{
			name: "inline prompt without options",
			doc:  "root:\n  prompt: Hi\n  options:\n    \"1\":\n      text: Go\n      prompt: Dangling\n",
			code: apperrors.ErrCodeTreeValidationFailed,
		},
		{
			name:     "duplicate keys",
			doc:      "root:\n  prompt: Hi\n  options:\n    \"1\": {text: One}\n    \"1\": {text: Uno}\n",
			code:     apperrors.ErrCodeTreeValidationFailed,
			contains: "duplicate key",
		},
		{
			name:     "return kind with followup",
			doc:      "root:\n  prompt: Hi\n  options:\n    \"1\":\n      text: Back\n      kind: return\n      followup:\n        prompt: X\n        options:\n          \"1\": {text: Y}\n",
			code:     apperrors.ErrCodeTreeValidationFailed,
			contains: "cannot carry a followup",
		},
		{
			name:     "followup kind without node",
			doc:      "root:\n  prompt: Hi\n  options:\n    \"1\": {text: Deeper, kind: followup}\n",
			code:     apperrors.ErrCodeTreeValidationFailed,
			contains: "requires a followup",
		},
		{
			name:     "both followup and inline",
			doc:      "root:\n  prompt: Hi\n  options:\n    \"1\":\n      text: Both\n      prompt: P\n      options:\n        \"1\": {text: A}\n      followup:\n        prompt: Q\n        options:\n          \"1\": {text: B}\n",
			code:     apperrors.ErrCodeTreeValidationFailed,
			contains: "both a followup and inline options",
		},
		{
			name:     "blank prompt",
			doc:      "root:\n  prompt: \"   \"\n  options:\n    \"1\": {text: A}\n",
			code:     apperrors.ErrCodeTreeValidationFailed,
			contains: "empty prompt",
		},
		{
			name: "self-referencing anchor",
			doc:  "root: &loop\n  prompt: Again\n  options:\n    \"1\":\n      text: Loop\n      followup: *loop\n",
			code: apperrors.ErrCodeTreeLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tree.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

		tree, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, tree.Root.Options, 3)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTreeLoadFailed))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestValidate_ProgrammaticTrees(t *testing.T) {
	t.Run("nil tree", func(t *testing.T) {
		assert.Error(t, Validate(nil))
		assert.Error(t, Validate(&Tree{}))
	})

	t.Run("shared node", func(t *testing.T) {
		shared := &Node{Prompt: "Shared", Options: []Option{{Key: "1", Text: "Leaf"}}}
		tree := &Tree{Root: &Node{
			Prompt: "Top",
			Options: []Option{
				{Key: "1", Text: "A", Kind: KindFollowup, Followup: shared},
				{Key: "2", Text: "B", Kind: KindFollowup, Followup: shared},
			},
		}}
		err := Validate(tree)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already reachable")
	})

	t.Run("cycle terminates", func(t *testing.T) {
		root := &Node{Prompt: "Top"}
		root.Options = []Option{{Key: "1", Text: "Again", Kind: KindFollowup, Followup: root}}
		err := Validate(&Tree{Root: root})
		require.Error(t, err)
	})

	t.Run("leaf with followup", func(t *testing.T) {
		tree := &Tree{Root: &Node{
			Prompt: "Top",
			Options: []Option{{Key: "1", Text: "A", Kind: KindLeaf, Followup: &Node{Prompt: "x", Options: []Option{{Key: "1", Text: "y"}}}}},
		}}
		assert.Error(t, Validate(tree))
	})
}
