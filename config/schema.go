package config

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/c360/spscring/errors"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	})
	return schema, schemaErr
}

// Schema returns the JSON schema configuration files are checked against
func Schema() []byte {
	return schemaJSON
}

// validateSchema checks the decoded document against the embedded schema.
// The document may come from JSON or YAML.
func validateSchema(document map[string]any) error {
	s, err := compiledSchema()
	if err != nil {
		return errors.WrapFatal(err, "Loader", "validateSchema", "compile schema")
	}

	if document == nil {
		document = map[string]any{}
	}
	result, err := s.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"Loader", "validateSchema", "validate document")
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrInvalidConfig, strings.Join(msgs, "; ")),
			"Loader", "validateSchema", "schema validation")
	}
	return nil
}
