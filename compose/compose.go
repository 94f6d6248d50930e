// Package compose implements the operator-composition algebra: fusing two
// operators into one, and folding a list of operators into a single
// virtual operator.
package compose

import (
	"context"
	"fmt"

	"github.com/rakeshv/dflow/node"
)

// chained is a virtual operator formed from two operators A (In→Mid) and B
// (Mid→Out). Its name is derived textually from its children as
// "(a -> b)".
type chained struct {
	a, b     node.Operator
	name     string
	failFast bool
}

// Options configures Chain.
type Options struct {
	// FailFast, when true (the default via Chain), skips invoking B for any
	// item A emits as node.Absent. When false, Absent is passed through to
	// B like any other value.
	FailFast bool
}

// Chain fuses a (In→Mid) and b (Mid→Out) into a single operator whose Apply
// calls a.Apply(x, func(m) { b.Apply(m, emit) }). Fail-fast is enabled by
// default.
func Chain(a, b node.Operator) node.Operator {
	return ChainWithOptions(a, b, Options{FailFast: true})
}

// ChainWithOptions is Chain with explicit fail-fast control.
func ChainWithOptions(a, b node.Operator, opts Options) node.Operator {
	return &chained{a: a, b: b, name: fmt.Sprintf("(%s -> %s)", a.Name(), b.Name()), failFast: opts.FailFast}
}

func (c *chained) Name() string { return c.name }

func (c *chained) Open(ctx context.Context) error {
	if err := c.a.Open(ctx); err != nil {
		return err
	}
	return c.b.Open(ctx)
}

func (c *chained) Close(ctx context.Context) error {
	// Both children get a chance to close even if the first one fails.
	errA := c.a.Close(ctx)
	errB := c.b.Close(ctx)
	if errA != nil {
		return errA
	}
	return errB
}

func (c *chained) Inputs() *node.Connections  { return c.a.Inputs() }
func (c *chained) Outputs() *node.Connections { return c.b.Outputs() }

func (c *chained) Apply(ctx context.Context, item any, emitOut node.Emit) error {
	var innerErr error
	emitMid := func(mid any) {
		if innerErr != nil {
			return
		}
		if c.failFast && node.IsAbsent(mid) {
			return
		}
		if err := c.b.Apply(ctx, mid, emitOut); err != nil {
			innerErr = err
		}
	}
	if err := c.a.Apply(ctx, item, emitMid); err != nil {
		return err
	}
	return innerErr
}
