// Package registry implements the process-wide name→node lookup used by
// the CLI/daemon path: name-keyed maps, filled once at startup by the
// calling program, read many times by daemon.Daemon.
package registry

import (
	"sync"

	"github.com/rakeshv/dflow/node"
)

// Registry holds process-wide, name-keyed maps of sources, operators, and
// sinks. It is safe for concurrent use; it is meant to be populated once
// at startup and treated as an immutable snapshot once any executor starts
// running.
type Registry struct {
	mu        sync.RWMutex
	sources   map[string]node.Source
	operators map[string]node.Operator
	sinks     map[string]node.Sink
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		sources:   make(map[string]node.Source),
		operators: make(map[string]node.Operator),
		sinks:     make(map[string]node.Sink),
	}
}

// RegisterSource adds source under its own (normalized) name. It returns a
// DuplicateNameError if any source is already registered under that
// normalized name.
func (r *Registry) RegisterSource(source node.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := node.NormalizeName(source.Name())
	if _, ok := r.sources[key]; ok {
		return newDuplicateNameError("source", source.Name())
	}
	r.sources[key] = source
	return nil
}

// RegisterOperator adds operator under its own (normalized) name.
func (r *Registry) RegisterOperator(operator node.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := node.NormalizeName(operator.Name())
	if _, ok := r.operators[key]; ok {
		return newDuplicateNameError("operator", operator.Name())
	}
	r.operators[key] = operator
	return nil
}

// RegisterSink adds sink under its own (normalized) name.
func (r *Registry) RegisterSink(sink node.Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := node.NormalizeName(sink.Name())
	if _, ok := r.sinks[key]; ok {
		return newDuplicateNameError("sink", sink.Name())
	}
	r.sinks[key] = sink
	return nil
}

// GetSource returns the source registered under name, or nil.
func (r *Registry) GetSource(name string) node.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[node.NormalizeName(name)]
}

// GetOperator returns the operator registered under name, or nil.
func (r *Registry) GetOperator(name string) node.Operator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operators[node.NormalizeName(name)]
}

// GetSink returns the sink registered under name, or nil.
func (r *Registry) GetSink(name string) node.Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sinks[node.NormalizeName(name)]
}

// HasSource reports whether name is already registered, the check
// InitDefaults uses to stay idempotent.
func (r *Registry) HasSource(name string) bool { return r.GetSource(name) != nil }

// HasOperator reports whether name is already registered.
func (r *Registry) HasOperator(name string) bool { return r.GetOperator(name) != nil }

// HasSink reports whether name is already registered.
func (r *Registry) HasSink(name string) bool { return r.GetSink(name) != nil }
