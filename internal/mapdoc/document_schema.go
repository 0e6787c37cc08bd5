package mapdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DocumentPayloadSchema captures the JSON schema a bulk-save payload must
// satisfy before it reaches the reconciler: elements must be a list, and each
// element needs a type plus complete numeric geometry.
var DocumentPayloadSchema = map[string]any{
	"type":     "object",
	"required": []string{"elements"},
	"properties": map[string]any{
		"elements": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"type", "x", "y", "width", "height"},
				"properties": map[string]any{
					"type":   map[string]any{"type": "string", "minLength": 1},
					"x":      map[string]any{"type": "number"},
					"y":      map[string]any{"type": "number"},
					"width":  map[string]any{"type": "number"},
					"height": map[string]any{"type": "number"},
					"zIndex": map[string]any{"type": "integer"},
					"color":  map[string]any{"type": []any{"string", "null"}},
					"metadata": map[string]any{
						"type":                 "object",
						"additionalProperties": true,
						"properties": map[string]any{
							"token": map[string]any{"type": "string"},
						},
					},
				},
				"additionalProperties": true,
			},
		},
	},
}

var (
	documentSchemaOnce     sync.Once
	documentSchemaCompiled *jsonschema.Schema
	documentSchemaErr      error
)

func compiledDocumentSchema() (*jsonschema.Schema, error) {
	documentSchemaOnce.Do(func() {
		encoded, err := json.Marshal(DocumentPayloadSchema)
		if err != nil {
			documentSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("document.json", bytes.NewReader(encoded)); err != nil {
			documentSchemaErr = err
			return
		}
		documentSchemaCompiled, documentSchemaErr = compiler.Compile("document.json")
	})
	return documentSchemaCompiled, documentSchemaErr
}

// ValidateDocumentPayload checks a raw bulk-save payload against the document
// schema and reports every violation as a ValidationError.
func ValidateDocumentPayload(payload []byte) error {
	schema, err := compiledDocumentSchema()
	if err != nil {
		return err
	}

	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return &ValidationError{Issues: []ValidationIssue{{Message: "payload is not valid JSON"}}}
	}

	if err := schema.Validate(decoded); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &ValidationError{Issues: collectValidationIssues(validationErr)}
		}
		return err
	}
	return nil
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
