package registry

import (
	"github.com/rakeshv/dflow/nodectx"
	"github.com/rakeshv/dflow/nodes"
)

// InitDefaults inserts the runtime's built-in nodes into r, skipping any
// name already present. Safe to call more than once: the registered
// instance count per name is always 1.
func InitDefaults(r *Registry, ctx *nodectx.Context) error {
	if !r.HasOperator(nodes.LogOperatorName) {
		if err := r.RegisterOperator(nodes.NewLogOperator(ctx)); err != nil {
			return err
		}
	}
	if !r.HasSink(nodes.NoopSinkName) {
		if err := r.RegisterSink(nodes.NewNoopSink(ctx)); err != nil {
			return err
		}
	}
	return nil
}
