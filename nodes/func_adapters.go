// Package nodes provides a small set of concrete nodes ready to wire into a
// topology: function adapters around plain Go funcs, a logging passthrough
// operator, and a no-op sink.
package nodes

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rakeshv/dflow/node"
)

var anonymousSeq int64

func nextAnonymousName(kind string) string {
	n := atomic.AddInt64(&anonymousSeq, 1)
	return fmt.Sprintf("%s-%d", kind, n)
}

// FuncSource adapts a plain "produce one item" func into a Source. When no
// name is given, one is generated from an atomically-incrementing counter,
// which is race-free and needs no wall-clock read.
type FuncSource struct {
	node.Base
	fn func(ctx context.Context) (any, error)
}

// NewFuncSource wraps fn as a Source. If name is empty, a unique name is
// generated.
func NewFuncSource(name string, fn func(ctx context.Context) (any, error)) *FuncSource {
	if name == "" {
		name = nextAnonymousName("source")
	}
	return &FuncSource{Base: node.NewBase(name), fn: fn}
}

// Read implements node.Source.
func (s *FuncSource) Read(ctx context.Context, emit node.Emit) error {
	item, err := s.fn(ctx)
	if err != nil {
		return err
	}
	emit(item)
	return nil
}

// FuncOperator adapts a plain "transform one item" func into an Operator.
type FuncOperator struct {
	node.Base
	fn func(ctx context.Context, item any) (any, error)
}

// NewFuncOperator wraps fn as an Operator. If name is empty, a unique name
// is generated.
func NewFuncOperator(name string, fn func(ctx context.Context, item any) (any, error)) *FuncOperator {
	if name == "" {
		name = nextAnonymousName("op")
	}
	return &FuncOperator{Base: node.NewBase(name), fn: fn}
}

// Apply implements node.Operator.
func (o *FuncOperator) Apply(ctx context.Context, item any, emit node.Emit) error {
	out, err := o.fn(ctx, item)
	if err != nil {
		return err
	}
	emit(out)
	return nil
}

// FuncSink adapts a plain "consume one item" func into a Sink.
type FuncSink struct {
	node.Base
	fn func(ctx context.Context, item any) error
}

// NewFuncSink wraps fn as a Sink. If name is empty, a unique name is
// generated.
func NewFuncSink(name string, fn func(ctx context.Context, item any) error) *FuncSink {
	if name == "" {
		name = nextAnonymousName("sink")
	}
	return &FuncSink{Base: node.NewBase(name), fn: fn}
}

// Write implements node.Sink.
func (s *FuncSink) Write(ctx context.Context, item any) error {
	return s.fn(ctx, item)
}
