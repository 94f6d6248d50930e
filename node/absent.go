package node

// absentType is a zero-size marker so the "no emission" sentinel can be
// compared by identity (`item == Absent`) rather than by reflecting over
// interface nil — a real nil payload from a user's own type must never be
// mistaken for "nothing was emitted".
type absentType struct{}

// Absent is the designated sentinel an Operator or Source passes to Emit to
// signal "no value this time". Composition's fail-fast policy and the
// sequential executor's none-skip policy both key off this exact value.
var Absent = absentType{}

// IsAbsent reports whether item is the Absent sentinel.
func IsAbsent(item any) bool {
	_, ok := item.(absentType)
	return ok
}
