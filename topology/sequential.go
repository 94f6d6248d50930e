package topology

import (
	"fmt"

	"github.com/rakeshv/dflow/node"
)

// Sequential is the strict-chain topology variant required by the
// sequential executor: exactly one source, a totally ordered list of
// operators, and exactly one sink, with every non-sink node having exactly
// one output and every non-source node having exactly one input.
type Sequential struct {
	Source    node.Source
	Operators []node.Operator
	Sink      node.Sink
}

// SequentialFromSource walks the chain starting at source, failing with
// InvalidTopologyError the moment a node has more than one output (or, for
// a non-source node, more than one input). Operators are collected in visit
// order, ready for compose.Fold.
func SequentialFromSource(source node.Source) (*Sequential, error) {
	if source == nil {
		return nil, ErrNoSources
	}

	var operators []node.Operator
	var current node.Node = source

	for current.Outputs().Len() > 0 {
		if current.Outputs().Len() != 1 {
			return nil, newInvalidTopologyError(fmt.Sprintf(
				"sequential topologies allow exactly one output per node, %q has %d",
				current.Name(), current.Outputs().Len()))
		}
		next := firstOutput(current)
		if next.Inputs().Len() != 1 {
			return nil, newInvalidTopologyError(fmt.Sprintf(
				"sequential topologies allow exactly one input per node, %q has %d",
				next.Name(), next.Inputs().Len()))
		}

		switch n := next.(type) {
		case node.Operator:
			operators = append(operators, n)
		case node.Sink:
			return &Sequential{Source: source, Operators: operators, Sink: n}, nil
		default:
			return nil, newInvalidTopologyError(fmt.Sprintf("unknown node specialization for %q", next.Name()))
		}

		current = next
	}

	return nil, newInvalidTopologyError(fmt.Sprintf("chain starting at %q never reaches a sink", source.Name()))
}

func firstOutput(n node.Node) node.Node {
	var result node.Node
	n.Outputs().Each(func(name string, peer node.Node) {
		if result == nil {
			result = peer
		}
	})
	return result
}
