package nodes

import (
	"context"
	"fmt"

	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/nodectx"
)

// NoopSinkName is the registry key NoopSink is conventionally registered
// under.
const NoopSinkName = "noop"

// NoopSink logs every item it receives and discards it. NewNoopSink takes
// its nodectx.Context argument once, at construction, and builds its logger
// from it directly there — no separate instance field holds the context,
// so there is nothing for the logger and the context to drift apart from.
type NoopSink struct {
	node.Base
	logger *nodectx.Logger
}

// NewNoopSink returns a NoopSink named NoopSinkName, logging through ctx's
// logger.
func NewNoopSink(ctx *nodectx.Context) *NoopSink {
	return &NoopSink{Base: node.NewBase(NoopSinkName), logger: ctx.CreateLogger(NoopSinkName)}
}

// Write implements node.Sink.
func (s *NoopSink) Write(ctx context.Context, item any) error {
	s.logger.Info(fmt.Sprintf("noop received: %v", item))
	return nil
}
