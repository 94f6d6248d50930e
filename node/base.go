package node

import (
	"context"

	"golang.org/x/text/cases"
)

var foldName = cases.Fold()

// NormalizeName returns a case-folded form of name, used wherever two node
// names need to be compared for an accidental collision (topology
// duplicate-name warnings, registry registration). It is never used for the
// name stored on a node. The registry keys its maps by the folded name, so
// registry lookups are case-insensitive.
func NormalizeName(name string) string {
	return foldName.String(name)
}

// Base is embedded by concrete source/operator/sink implementations. It
// supplies Name, Inputs, Outputs, and the connect operations so node authors
// only have to implement the behavioral method (Read/Apply/Write) and,
// optionally, Open/Close.
type Base struct {
	name    string
	inputs  *Connections
	outputs *Connections
}

// NewBase constructs a Base with the given stable name.
func NewBase(name string) Base {
	return Base{
		name:    name,
		inputs:  NewConnections(),
		outputs: NewConnections(),
	}
}

// Name returns the node's stable identifier.
func (b *Base) Name() string { return b.name }

// Inputs returns the ordered set of peers feeding this node.
func (b *Base) Inputs() *Connections { return b.inputs }

// Outputs returns the ordered set of peers this node feeds.
func (b *Base) Outputs() *Connections { return b.outputs }

// Open is a no-op default; embedders override it when they need resources.
func (b *Base) Open(ctx context.Context) error { return nil }

// Close is a no-op default; embedders override it when they need to release
// resources.
func (b *Base) Close(ctx context.Context) error { return nil }

// ConnectOutput registers self as a producer for other (and, for every
// entry in more, for that node too), in order. Symmetrically records self
// on the consumer's Inputs. Re-adding an already-connected peer is
// idempotent.
func ConnectOutput(self Node, other Node, more ...Node) {
	connect(self, other)
	for _, m := range more {
		connect(self, m)
	}
}

// ConnectInput registers self as a consumer of other (and of every entry in
// more), in order. Symmetric inverse of ConnectOutput.
func ConnectInput(self Node, other Node, more ...Node) {
	connect(other, self)
	for _, m := range more {
		connect(m, self)
	}
}

func connect(producer, consumer Node) {
	producer.Outputs().Add(consumer)
	consumer.Inputs().Add(producer)
}
