package nodectx

import "fmt"

// ConfigSchemaError reports that a YAML config file's shape does not match
// the schema nodectx.LoadYAML enforces before flattening it — e.g. an array
// of objects, which has no sensible underscore-joined key.
type ConfigSchemaError struct {
	ConfigName string
	Errs       []string
}

func (e *ConfigSchemaError) Error() string {
	return fmt.Sprintf("nodectx: %q.yaml failed schema validation: %v", e.ConfigName, e.Errs)
}

func newConfigSchemaError(name string, errs []string) error {
	return &ConfigSchemaError{ConfigName: name, Errs: errs}
}
