package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema for Config, for `fileswarmd config
// schema` (IDE autocompletion, validation, documentation).
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	schema := reflector.Reflect(&Config{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "FileSwarm Configuration"
	schema.Description = "Configuration schema for the fileswarmd upload scheduler"
	return schema
}

// SchemaJSON marshals Schema to indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
