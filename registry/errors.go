package registry

import "fmt"

// DuplicateNameError reports an attempt to register a name whose
// case-folded form is already taken, whether by the same instance or a
// different one. Unlike topology construction, which only
// warns on a name collision, a long-lived registry refuses it outright.
type DuplicateNameError struct {
	Kind string
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("registry: %s %q is already registered", e.Kind, e.Name)
}

func newDuplicateNameError(kind, name string) error {
	return &DuplicateNameError{Kind: kind, Name: name}
}
