// Package node defines the contract every dataflow node implements.
//
// A node is a source, an operator, or a sink. All three share a name, a
// context, and two ordered connection maps (inputs, outputs). The executor
// packages (sequential, parallel) depend only on these interfaces — they
// never know about a node's concrete type.
package node

import "context"

// Node is the part of the contract shared by every source, operator, and
// sink: identity, and lifecycle hooks called exactly once per execution by
// whichever executor runs the topology.
type Node interface {
	// Name returns the node's stable, unique identifier.
	Name() string

	// Open acquires whatever resources the node needs. Called once, before
	// the first Read/Apply/Write. A failure here is an InitializationError.
	Open(ctx context.Context) error

	// Close releases resources. Called once, after the executor has
	// decided to stop routing items through this node. A failure here is a
	// ShutdownError; it does not stop other nodes' Close from running.
	Close(ctx context.Context) error

	// Inputs returns the peer nodes feeding this node, in connection order,
	// keyed by peer name.
	Inputs() *Connections

	// Outputs returns the peer nodes this node feeds, in connection order,
	// keyed by peer name.
	Outputs() *Connections
}

// Emit is the callback a Source or Operator invokes once per produced or
// transformed item. Calling Emit with Absent means "no value this time" —
// see the Absent sentinel.
type Emit func(item any)

// Source produces items by repeatedly invoking Read; Read may call emit
// zero or more times per invocation, and may itself be invoked repeatedly
// by the executor's run loop.
type Source interface {
	Node
	Read(ctx context.Context, emit Emit) error
}

// Operator transforms one item into zero or more items.
type Operator interface {
	Node
	Apply(ctx context.Context, item any, emit Emit) error
}

// Sink consumes a single item and has no output.
type Sink interface {
	Node
	Write(ctx context.Context, item any) error
}
