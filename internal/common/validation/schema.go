package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one schema failure located by a dotted field path.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// Messages renders every violation as "field: message".
func (r *Result) Messages() []string {
	out := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		out[i] = v.String()
	}
	return out
}

// Schema is a compiled JSON Schema that can be reused across documents.
type Schema struct {
	compiled *gojsonschema.Schema
}

func CompileSchema(schemaJSON string) (*Schema, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{compiled: compiled}, nil
}

// ValidateDocument checks a decoded document (maps, slices, scalars) against
// the schema and reports every violation. Failures on the document itself
// are reported under the field "document".
func (s *Schema) ValidateDocument(doc interface{}) (*Result, error) {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	out := &Result{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "(root)" {
			field = "document"
		}
		out.Violations = append(out.Violations, Violation{
			Field:   field,
			Message: desc.Description(),
			Rule:    desc.Type(),
		})
	}
	return out, nil
}
