package nodectx

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// configShapeSchema rejects any YAML document that can't be flattened into
// underscore-joined scalar keys — in particular an array of objects, which
// doesn't flatten sensibly. Leaves may be a string, number, boolean, null,
// or an array of those; objects may nest arbitrarily deep.
const configShapeSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": {"$ref": "#/definitions/leafOrObject"},
	"definitions": {
		"leafOrObject": {
			"oneOf": [
				{"type": ["string", "number", "boolean", "null"]},
				{"type": "array", "items": {"type": ["string", "number", "boolean", "null"]}},
				{"type": "object", "additionalProperties": {"$ref": "#/definitions/leafOrObject"}}
			]
		}
	}
}`

func validateConfigShape(configName string, doc map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(configShapeSchema)
	docLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("nodectx: validating %q.yaml: %w", configName, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return newConfigSchemaError(configName, msgs)
	}
	return nil
}

// flatten joins nested map keys with "_". Arrays of scalars are kept as-is
// (stringified by the caller on read); arrays of objects never reach here
// since validateConfigShape rejects them first.
func flatten(prefix string, in map[string]any, out map[string]any) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := k
		if prefix != "" {
			key = prefix + "_" + k
		}
		switch v := in[k].(type) {
		case map[string]any:
			flatten(key, v, out)
		default:
			out[key] = v
		}
	}
}

// loadYAMLFile reads configName+".yaml" from disk, validates its shape, and
// returns the flattened key/value map. A missing file returns (nil, nil):
// absence of a config file is not an error.
func loadYAMLFile(configName string) (map[string]any, error) {
	path := configName + ".yaml"
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("nodectx: reading %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("nodectx: parsing %s: %w", path, err)
	}
	if doc == nil {
		return map[string]any{}, nil
	}

	if err := validateConfigShape(configName, doc); err != nil {
		return nil, err
	}

	flattened := make(map[string]any)
	flatten("", doc, flattened)
	return flattened, nil
}

// envKey renders key as the DFLOW_<KEY> environment variable name this
// Context's GetEnv consults.
func envKey(key string) string {
	return "DFLOW_" + strings.ToUpper(key)
}
