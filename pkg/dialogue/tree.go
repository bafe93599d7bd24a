// pkg/dialogue/tree.go
package dialogue

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "dialogue-navigator/internal/common/errors"
	"dialogue-navigator/internal/common/validation"
)

//go:embed tree_schema.json
var treeSchemaJSON string

var (
	schemaOnce sync.Once
	treeSchema *validation.Schema
	schemaErr  error
)

func compiledSchema() (*validation.Schema, error) {
	schemaOnce.Do(func() {
		treeSchema, schemaErr = validation.CompileSchema(treeSchemaJSON)
	})
	return treeSchema, schemaErr
}

// Load reads a dialogue file. YAML and JSON are both accepted.
func Load(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewTreeLoadFailedError(path, err)
	}
	return parse(path, data)
}

// Parse decodes a dialogue document held in memory.
func Parse(data []byte) (*Tree, error) {
	return parse("inline", data)
}

func parse(source string, data []byte) (*Tree, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewTreeLoadFailedError(source, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, apperrors.NewTreeLoadFailedError(source, errors.New("document is empty"))
	}
	top := doc.Content[0]

	generic, err := toGeneric(top, map[*yaml.Node]bool{})
	if err != nil {
		return nil, apperrors.NewTreeLoadFailedError(source, err)
	}

	schema, err := compiledSchema()
	if err != nil {
		return nil, apperrors.NewTreeLoadFailedError(source, err)
	}
	result, err := schema.ValidateDocument(generic)
	if err != nil {
		return nil, apperrors.NewTreeLoadFailedError(source, err)
	}
	if !result.Valid {
		return nil, apperrors.NewTreeValidationFailedError(result.Messages()).WithMetadata("source", source)
	}

	b := &builder{}
	tree := b.tree(top)
	if len(b.violations) > 0 {
		return nil, apperrors.NewTreeValidationFailedError(b.violations).WithMetadata("source", source)
	}

	if err := Validate(tree); err != nil {
		var stdErr *apperrors.StandardError
		if errors.As(err, &stdErr) {
			stdErr.WithMetadata("source", source)
		}
		return nil, err
	}
	return tree, nil
}

// toGeneric converts a YAML node into maps, slices and scalars for schema
// validation. Mapping keys are always kept as strings.
func toGeneric(n *yaml.Node, active map[*yaml.Node]bool) (interface{}, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if active[n] {
		return nil, fmt.Errorf("line %d: node refers to itself", n.Line)
	}

	switch n.Kind {
	case yaml.MappingNode:
		active[n] = true
		defer delete(active, n)

		out := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := toGeneric(n.Content[i+1], active)
			if err != nil {
				return nil, err
			}
			out[n.Content[i].Value] = v
		}
		return out, nil
	case yaml.SequenceNode:
		active[n] = true
		defer delete(active, n)

		out := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := toGeneric(item, active)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	default:
		return nil, nil
	}
}

// builder turns a schema-valid YAML document into a Tree, keeping mapping
// order and deciding each option's Kind.
type builder struct {
	violations []string
}

func (b *builder) fail(path, format string, args ...interface{}) {
	b.violations = append(b.violations, path+": "+fmt.Sprintf(format, args...))
}

func (b *builder) tree(top *yaml.Node) *Tree {
	t := &Tree{}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i].Value, resolve(top.Content[i+1])
		switch key {
		case "version":
			t.Version = val.Value
		case "root":
			t.Root = b.node("root", val)
		case "speakers":
			if err := val.Decode(&t.Speakers); err != nil {
				b.fail("speakers", "%v", err)
			}
		case "markers":
			if err := val.Decode(&t.Markers); err != nil {
				b.fail("markers", "%v", err)
			}
		}
	}
	return t
}

func (b *builder) node(path string, n *yaml.Node) *Node {
	node := &Node{}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i].Value, resolve(n.Content[i+1])
		switch key {
		case "prompt":
			node.Prompt = val.Value
		case "options":
			node.Options = b.options(path, val)
		}
	}
	return node
}

func (b *builder) options(path string, n *yaml.Node) []Option {
	opts := make([]Option, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		opts = append(opts, b.option(fmt.Sprintf("%s.options[%s]", path, key), key, resolve(n.Content[i+1])))
	}
	return opts
}

func (b *builder) option(path, key string, n *yaml.Node) Option {
	opt := Option{Key: key}

	var (
		kind         string
		followup     *yaml.Node
		inlinePrompt *yaml.Node
		inlineOpts   *yaml.Node
	)
	for i := 0; i+1 < len(n.Content); i += 2 {
		field, val := n.Content[i].Value, resolve(n.Content[i+1])
		switch field {
		case "text":
			opt.Text = val.Value
		case "response":
			opt.Response = val.Value
		case "kind":
			kind = val.Value
		case "followup":
			followup = val
		case "prompt":
			inlinePrompt = val
		case "options":
			inlineOpts = val
		}
	}

	inline := inlinePrompt != nil && inlineOpts != nil
	if followup != nil && inline {
		b.fail(path, "has both a followup and inline options")
		return opt
	}

	switch {
	case followup != nil:
		opt.Followup = b.node(path+".followup", followup)
	case inline:
		opt.Followup = &Node{
			Prompt:  inlinePrompt.Value,
			Options: b.options(path+".followup", inlineOpts),
		}
	}

	switch kind {
	case "":
		switch {
		case opt.Followup != nil:
			opt.Kind = KindFollowup
		case IsReturnToRootLabel(opt.Text):
			opt.Kind = KindReturnToRoot
		default:
			opt.Kind = KindLeaf
		}
	case "followup":
		if opt.Followup == nil {
			b.fail(path, "kind followup requires a followup node")
		}
		opt.Kind = KindFollowup
	case "return", "leaf":
		if opt.Followup != nil {
			b.fail(path, "kind %s cannot carry a followup", kind)
		}
		opt.Kind = KindLeaf
		if kind == "return" {
			opt.Kind = KindReturnToRoot
		}
	default:
		b.fail(path, "unknown kind %q", strings.TrimSpace(kind))
	}

	return opt
}

func resolve(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.AliasNode {
		return n.Alias
	}
	return n
}
