package nodectx

import (
	"fmt"
	"os"
)

// Context is the per-node configuration-and-logger handle. Nodes read
// configuration through GetEnv and build child loggers through
// CreateLogger; the executor packages never construct or depend on a
// Context directly.
type Context struct {
	config map[string]any
	logger *Logger
}

// New returns a Context with no overlay config, logging through logger (or
// DefaultLogger() if nil).
func New(logger *Logger) *Context {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &Context{config: make(map[string]any), logger: logger}
}

// GetEnv looks up key first in the in-memory config overlay (populated by
// LoadYAML or WithConfig), then in the DFLOW_<KEY> environment variable,
// falling back to def if neither is set.
func (c *Context) GetEnv(key, def string) string {
	if v, ok := c.config[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	if v, ok := os.LookupEnv(envKey(key)); ok {
		return v
	}
	return def
}

// CreateLogger returns a child Logger tagged with name. A Context is fully
// built (config map and logger both non-nil) before it is ever handed to a
// node, so CreateLogger never runs against a half-initialized Context.
func (c *Context) CreateLogger(name string) *Logger {
	return c.logger.WithNode(name)
}

// LoadYAML reads configName+".yaml", validates the parsed document's shape,
// flattens nested keys with "_" joins, and merges the result into the
// Context's config overlay. A missing file is not an error.
func (c *Context) LoadYAML(configName string) error {
	flattened, err := loadYAMLFile(configName)
	if err != nil {
		return err
	}
	for k, v := range flattened {
		c.config[k] = v
	}
	return nil
}

// WithConfig merges kv directly into the config overlay, bypassing YAML —
// useful for tests and for CLI flags that should take precedence.
func (c *Context) WithConfig(kv map[string]any) *Context {
	for k, v := range kv {
		c.config[k] = v
	}
	return c
}
