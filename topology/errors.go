package topology

import "errors"

// InvalidTopologyError describes a graph-shape violation discovered while
// deriving a topology from a set of sources: an unknown node specialization,
// a sequential-variant node with the wrong fan-in/out, a sink with no
// inputs, a source with no outputs, or an operator missing an input or
// output.
type InvalidTopologyError struct {
	msg string
}

func (e *InvalidTopologyError) Error() string { return e.msg }

func newInvalidTopologyError(msg string) error {
	return &InvalidTopologyError{msg: msg}
}

// ErrNoSources is returned when FromSources is given an empty source list
// or SequentialFromSource is given a nil source.
var ErrNoSources = errors.New("topology: at least one source is required")
