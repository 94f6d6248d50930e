package compose

import "github.com/rakeshv/dflow/node"

// Fold composes a list of operators, left to right, into a single virtual
// operator. Fold of a single-element list returns that operator unchanged
// (the composition identity law: compose([A]) ≡ A). Fold of an empty list
// returns ErrEmptyChain.
func Fold(operators []node.Operator) (node.Operator, error) {
	if len(operators) == 0 {
		return nil, ErrEmptyChain
	}
	if len(operators) == 1 {
		return operators[0], nil
	}
	composed := Chain(operators[0], operators[1])
	for _, op := range operators[2:] {
		composed = Chain(composed, op)
	}
	return composed, nil
}
