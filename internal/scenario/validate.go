package scenario

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// SchemaError reports a scenario file that does not satisfy the schema.
// Message carries the full CUE error detail, one finding per line.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string {
	return "scenario schema violation:\n" + e.Message
}

// validateSchema unifies the raw YAML document with the embedded #Scenario
// definition. This catches shape errors (unknown enum values, negative
// counts, malformed dates) with field paths before the typed decode runs.
func validateSchema(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse scenario: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		// The schema is embedded at build time; failing to compile it is a
		// programming error, not a user error.
		return fmt.Errorf("compile embedded schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Scenario: %w", err)
	}

	unified := def.Unify(ctx.Encode(stringifyKeys(doc)))
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return &SchemaError{Message: cueerrors.Details(err, nil)}
	}
	return nil
}

// stringifyKeys rewrites YAML's any-keyed maps to string keys so the value
// can be encoded into CUE. Scenario maps keyed by weekday or month numbers
// arrive as int keys from the YAML parser.
func stringifyKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = stringifyKeys(elem)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = stringifyKeys(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = stringifyKeys(elem)
		}
		return out
	}
	return v
}
