package reference

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var snapshotSchemas = map[Kind]map[string]any{
	KindPrices: {
		"type":          "object",
		"minProperties": 1,
		"additionalProperties": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "pattern": `^-?\d+(\.\d+)?$`},
		},
	},
	KindTranslations: {
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []string{"department", "product", "values"},
			"properties": map[string]any{
				"department": map[string]any{"type": "string", "minLength": 1},
				"product":    map[string]any{"type": "string", "minLength": 1},
				"values": map[string]any{
					"type":                 "object",
					"additionalProperties": map[string]any{"type": "string"},
				},
			},
		},
	},
	KindMaterials: {
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []string{"material", "language", "translation"},
			"properties": map[string]any{
				"material":    map[string]any{"type": "string", "minLength": 1},
				"language":    map[string]any{"enum": []string{"AL", "MK"}},
				"translation": map[string]any{"type": "string"},
			},
		},
	},
}

// ValidateSnapshot checks a stored table payload against its schema.
func ValidateSnapshot(kind Kind, payload []byte) error {
	schemaMap, ok := snapshotSchemas[kind]
	if !ok {
		return fmt.Errorf("no schema for %s", kind)
	}
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	url := string(kind) + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(payload, &v); err != nil {
		return fmt.Errorf("unmarshal %s snapshot: %w", kind, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%s snapshot does not match schema: %w", kind, err)
	}
	return nil
}
