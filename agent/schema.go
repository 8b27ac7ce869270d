package agent

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/step.schema.json
var stepSchemaJSON string

var stepSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("step.schema.json", stepSchemaJSON)
})

// validateStep checks a raw step payload's structure before it is decoded
// into typed arrays, so a missing field is reported by name instead of
// surfacing later as a zero-length slice.
func validateStep(raw []byte) error {
	s, err := stepSchema()
	if err != nil {
		return fmt.Errorf("compile step schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("decode step: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("invalid step: %w", err)
	}
	return nil
}
