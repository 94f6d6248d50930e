package node

import "fmt"

// InitializationError wraps a failure from a node's Open.
type InitializationError struct {
	Name string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("open %q: %v", e.Name, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// NewInitializationError wraps cause as an InitializationError for the
// named node.
func NewInitializationError(name string, cause error) error {
	return &InitializationError{Name: name, Err: cause}
}

// ShutdownError wraps a failure from a node's Close.
type ShutdownError struct {
	Name string
	Err  error
}

func (e *ShutdownError) Error() string {
	return fmt.Sprintf("close %q: %v", e.Name, e.Err)
}

func (e *ShutdownError) Unwrap() error { return e.Err }

// NewShutdownError wraps cause as a ShutdownError for the named node.
func NewShutdownError(name string, cause error) error {
	return &ShutdownError{Name: name, Err: cause}
}

// ReadError wraps a failure from a Source's Read.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %q: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// NewReadError wraps cause as a ReadError for the named source.
func NewReadError(name string, cause error) error {
	return &ReadError{Name: name, Err: cause}
}

// OperatorError wraps a failure from an Operator's Apply.
type OperatorError struct {
	Name string
	Err  error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("apply %q: %v", e.Name, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }

// NewOperatorError wraps cause as an OperatorError for the named operator.
func NewOperatorError(name string, cause error) error {
	return &OperatorError{Name: name, Err: cause}
}

// WriteError wraps a failure from a Sink's Write.
type WriteError struct {
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %q: %v", e.Name, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// NewWriteError wraps cause as a WriteError for the named sink.
func NewWriteError(name string, cause error) error {
	return &WriteError{Name: name, Err: cause}
}
