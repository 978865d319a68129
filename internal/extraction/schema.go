package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	pstrings "aptic/pkg/platform/strings"
)

// BuildExtractionJSONSchema returns the wire-contract schema (draft 2020-12
// subset) as a generic map. It is rendered into the model prompt and also used
// locally to reject malformed responses before they reach the session.
func BuildExtractionJSONSchema() map[string]any {
	nullableString := map[string]any{"type": []string{"string", "null"}}
	stringArray := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"entity_type": map[string]any{
				"type": "string",
				"enum": []string{"individual", "company"},
			},
			"documents_processed": stringArray,
			"extracted_data": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"full_name":             nullableString,
					"company_name":          nullableString,
					"kra_pin":               nullableString,
					"registration_number":   nullableString,
					"date_of_incorporation": nullableString,
					"registered_address":    nullableString,
					"directors": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"name":      nullableString,
								"id_number": nullableString,
								"kra_pin":   nullableString,
							},
						},
					},
				},
			},
			"validation": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"conflicts_detected":    stringArray,
					"missing_fields":        stringArray,
					"low_confidence_fields": stringArray,
				},
				"required": []string{"conflicts_detected", "missing_fields", "low_confidence_fields"},
			},
			"confidence_score": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type":    "number",
					"minimum": 0.0,
					"maximum": 1.0,
				},
			},
		},
		"required": []string{"entity_type", "extracted_data", "validation", "confidence_score"},
	}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ParseResult validates raw gateway JSON against the wire contract and decodes
// it. A schema violation is indistinguishable from any other gateway failure
// for the caller: all-or-nothing.
func ParseResult(raw []byte) (*Result, error) {
	if err := ValidateJSONAgainstSchema(extractionSchema, raw); err != nil {
		return nil, err
	}
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode extraction result: %w", err)
	}
	// Models occasionally repeat a field name across validation lists.
	result.Validation.ConflictsDetected = pstrings.DedupeAndTrim(result.Validation.ConflictsDetected)
	result.Validation.MissingFields = pstrings.DedupeAndTrim(result.Validation.MissingFields)
	result.Validation.LowConfidenceFields = pstrings.DedupeAndTrim(result.Validation.LowConfidenceFields)
	return &result, nil
}

var extractionSchema = BuildExtractionJSONSchema()

// renderSchema serializes the wire-contract schema for inclusion in the model
// prompt.
func renderSchema() string {
	b, err := json.Marshal(extractionSchema)
	if err != nil {
		// The schema is a static literal; marshalling cannot fail at runtime.
		panic(err)
	}
	return string(b)
}
