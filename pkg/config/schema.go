package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schemas/config_schema.json
var configSchemaJSON string

const configSchemaURL = "https://wflint.invalid/config-schema.json"

var (
	compileOnce      sync.Once
	compiledSchema   *jsonschema.Schema
	compileSchemaErr error
)

func getCompiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var schemaDoc any
		if err := json.Unmarshal([]byte(configSchemaJSON), &schemaDoc); err != nil {
			compileSchemaErr = fmt.Errorf("config: parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(configSchemaURL, schemaDoc); err != nil {
			compileSchemaErr = fmt.Errorf("config: add schema resource: %w", err)
			return
		}

		compiledSchema, compileSchemaErr = compiler.Compile(configSchemaURL)
	})
	return compiledSchema, compileSchemaErr
}

// ValidateSchema validates the shape of a wflint.yml document (raw YAML
// bytes) against the compiled config schema, independent of the final typed
// decode, so that misspelled top-level keys or ignore entries of the wrong
// type are reported with a precise schema path rather than a generic
// decode error.
func ValidateSchema(contents []byte) error {
	schema, err := getCompiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := yaml.Unmarshal(contents, &doc); err != nil {
		return fmt.Errorf("failed to parse config as YAML: %w", err)
	}

	// Round-trip through JSON to normalize YAML-decoded types (e.g. map
	// keys, integers) into the plain `any` shapes jsonschema expects.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to normalize config for schema validation: %w", err)
	}
	var normalizedDoc any
	if err := json.Unmarshal(normalized, &normalizedDoc); err != nil {
		return fmt.Errorf("failed to normalize config for schema validation: %w", err)
	}

	if err := schema.Validate(normalizedDoc); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}
