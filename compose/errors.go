package compose

import "errors"

// ErrEmptyChain is returned by Fold when given an empty operator list. The
// original Python raised AssertionError("No operator in list"); Go callers
// get an ordinary error to handle instead.
var ErrEmptyChain = errors.New("compose: no operators to fold")
