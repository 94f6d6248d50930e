package nodes

import (
	"context"
	"fmt"

	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/nodectx"
)

// LogOperatorName is the registry key LogOperator is conventionally
// registered under.
const LogOperatorName = "log"

// LogOperator logs each item it sees at info level and passes it through
// unchanged.
type LogOperator struct {
	node.Base
	logger *nodectx.Logger
}

// NewLogOperator returns a LogOperator named LogOperatorName, logging
// through ctx's logger.
func NewLogOperator(ctx *nodectx.Context) *LogOperator {
	return &LogOperator{Base: node.NewBase(LogOperatorName), logger: ctx.CreateLogger(LogOperatorName)}
}

// Apply implements node.Operator.
func (o *LogOperator) Apply(ctx context.Context, item any, emit node.Emit) error {
	o.logger.Info(fmt.Sprintf("%v", item))
	emit(item)
	return nil
}
