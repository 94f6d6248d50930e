// Package topology derives a validated, runnable graph from a set of
// already-connected sources, via breadth-first traversal with dedup by
// name.
package topology

import (
	"fmt"
	"log/slog"

	"github.com/rakeshv/dflow/node"
)

// Edge is a directed producer→consumer pair, identified only by the peers'
// names.
type Edge struct {
	Producer string
	Consumer string
}

// Topology is the validated, acyclic graph ready for execution: sources,
// operators, sinks, and the edges connecting them. Operators are listed in
// breadth-first discovery order from the sources; when an operator is
// reachable along paths of different lengths, this order is not guaranteed
// to be a topological order. It does not own per-edge transports — that's
// the parallel executor's concern.
type Topology struct {
	Sources   []node.Source
	Operators []node.Operator
	Sinks     []node.Sink
	Edges     []Edge

	byName map[string]node.Node
}

// ByName returns the node registered under name, or nil.
func (t *Topology) ByName(name string) node.Node {
	return t.byName[name]
}

// FromSources walks the graph reachable from sources breadth-first,
// classifying and deduplicating every node it finds, and returns the
// resulting Topology. A node is enqueued at most once even if reachable
// via multiple paths; unknown specializations are rejected with
// InvalidTopologyError; a source list containing two distinct node objects
// with the same name produces a logged warning, not a failure.
func FromSources(sources []node.Source, logger *slog.Logger) (*Topology, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	if logger == nil {
		logger = slog.Default()
	}
	warnDuplicateSources(sources, logger)

	operators := make(map[string]node.Operator)
	operatorOrder := []string{}
	sinks := make(map[string]node.Sink)
	sinkOrder := []string{}
	byName := make(map[string]node.Node)
	visited := make(map[string]bool)
	var edges []Edge

	var queue []node.Node
	for _, s := range sources {
		if !visited[s.Name()] {
			visited[s.Name()] = true
			byName[s.Name()] = s
			queue = append(queue, s)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		switch n := current.(type) {
		case node.Source:
			enqueueOutputs(n, &queue, visited, byName, &edges)
		case node.Operator:
			if _, ok := operators[n.Name()]; !ok {
				operators[n.Name()] = n
				operatorOrder = append(operatorOrder, n.Name())
			}
			enqueueOutputs(n, &queue, visited, byName, &edges)
		case node.Sink:
			if _, ok := sinks[n.Name()]; !ok {
				sinks[n.Name()] = n
				sinkOrder = append(sinkOrder, n.Name())
			}
		default:
			return nil, newInvalidTopologyError(fmt.Sprintf("unknown node specialization for %q", current.Name()))
		}
	}

	opsOrdered := make([]node.Operator, 0, len(operatorOrder))
	for _, name := range operatorOrder {
		opsOrdered = append(opsOrdered, operators[name])
	}
	sinksOrdered := make([]node.Sink, 0, len(sinkOrder))
	for _, name := range sinkOrder {
		sinksOrdered = append(sinksOrdered, sinks[name])
	}

	top := &Topology{
		Sources:   sources,
		Operators: opsOrdered,
		Sinks:     sinksOrdered,
		Edges:     edges,
		byName:    byName,
	}

	if err := top.validateShape(); err != nil {
		return nil, err
	}
	return top, nil
}

// enqueueOutputs records an edge to every output peer of n and enqueues any
// peer not yet visited.
func enqueueOutputs(n node.Node, queue *[]node.Node, visited map[string]bool, byName map[string]node.Node, edges *[]Edge) {
	n.Outputs().Each(func(name string, peer node.Node) {
		*edges = append(*edges, Edge{Producer: n.Name(), Consumer: name})
		if !visited[name] {
			visited[name] = true
			byName[name] = peer
			*queue = append(*queue, peer)
		}
	})
}

func warnDuplicateSources(sources []node.Source, logger *slog.Logger) {
	byName := make(map[string]node.Source)
	warned := make(map[string]bool)
	for _, s := range sources {
		key := node.NormalizeName(s.Name())
		if existing, ok := byName[key]; ok {
			if existing != s && !warned[key] {
				warned[key] = true
				logger.Warn("topology initialized twice with the same name; node names must be unique",
					slog.String("name", s.Name()))
			}
			continue
		}
		byName[key] = s
	}
}

// validateShape enforces the general invariants every topology must meet:
// every operator has at least one input and one output; every sink has at
// least one input; every source has at least one output.
func (t *Topology) validateShape() error {
	for _, op := range t.Operators {
		if op.Inputs().Len() == 0 {
			return newInvalidTopologyError(fmt.Sprintf("operator %q has no inputs", op.Name()))
		}
		if op.Outputs().Len() == 0 {
			return newInvalidTopologyError(fmt.Sprintf("operator %q has no outputs", op.Name()))
		}
	}
	for _, sink := range t.Sinks {
		if sink.Inputs().Len() == 0 {
			return newInvalidTopologyError(fmt.Sprintf("sink %q has no inputs", sink.Name()))
		}
	}
	for _, src := range t.Sources {
		if src.Outputs().Len() == 0 {
			return newInvalidTopologyError(fmt.Sprintf("source %q has no outputs", src.Name()))
		}
	}
	return nil
}
