package compose

import (
	"context"
	"testing"

	"github.com/rakeshv/dflow/node"
)

// funcOp is a minimal operator for testing composition.
type funcOp struct {
	node.Base
	fn     func(any) any
	calls  int
	opens  int
	closes int
}

func newFuncOp(name string, fn func(any) any) *funcOp {
	return &funcOp{Base: node.NewBase(name), fn: fn}
}

func (f *funcOp) Open(ctx context.Context) error  { f.opens++; return nil }
func (f *funcOp) Close(ctx context.Context) error { f.closes++; return nil }

func (f *funcOp) Apply(ctx context.Context, item any, emit node.Emit) error {
	f.calls++
	emit(f.fn(item))
	return nil
}

func run(t *testing.T, op node.Operator, in []any) []any {
	t.Helper()
	var out []any
	for _, item := range in {
		if err := op.Apply(context.Background(), item, func(v any) {
			if !node.IsAbsent(v) {
				out = append(out, v)
			}
		}); err != nil {
			t.Fatalf("Apply: %v", err)
		}
	}
	return out
}

func TestChain_TwoOps(t *testing.T) {
	add1 := newFuncOp("add1", func(v any) any { return v.(int) + 1 })
	sub1 := newFuncOp("sub1", func(v any) any { return v.(int) - 1 })

	composed := Chain(add1, sub1)
	got := run(t, composed, []any{10, 20})

	want := []any{10, 20}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestFold_Identity(t *testing.T) {
	id := newFuncOp("id", func(v any) any { return v })
	composed, err := Fold([]node.Operator{id})
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if composed != node.Operator(id) {
		t.Fatalf("Fold([A]) did not return A unchanged")
	}
}

func TestFold_Empty(t *testing.T) {
	_, err := Fold(nil)
	if err != ErrEmptyChain {
		t.Fatalf("Fold(nil) err = %v, want ErrEmptyChain", err)
	}
}

func TestFold_Associativity(t *testing.T) {
	a := newFuncOp("a", func(v any) any { return v.(int) + 1 })
	b := newFuncOp("b", func(v any) any { return v.(int) * 2 })
	c := newFuncOp("c", func(v any) any { return v.(int) - 3 })

	left := Chain(a, Chain(b, c))
	right := Chain(Chain(a, b), c)

	for _, in := range []any{1, 5, -2, 100} {
		gotLeft := run(t, left, []any{in})
		gotRight := run(t, right, []any{in})
		if len(gotLeft) != 1 || len(gotRight) != 1 || gotLeft[0] != gotRight[0] {
			t.Fatalf("associativity violated for input %v: left=%v right=%v", in, gotLeft, gotRight)
		}
	}
}

func TestChain_FailFast(t *testing.T) {
	evenToAbsent := newFuncOp("evenToAbsent", func(v any) any {
		n := v.(int)
		if n%2 == 0 {
			return node.Absent
		}
		return n
	})
	times10 := newFuncOp("times10", func(v any) any { return v.(int) * 10 })

	composed := Chain(evenToAbsent, times10)
	got := run(t, composed, []any{1, 2, 3, 4})

	want := []any{10, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if times10.calls != 2 {
		t.Fatalf("times10.calls = %d, want 2 (fail-fast must skip B for absent emissions)", times10.calls)
	}
}

func TestChain_NoFailFast_PassesAbsentThrough(t *testing.T) {
	evenToAbsent := newFuncOp("evenToAbsent", func(v any) any {
		n := v.(int)
		if n%2 == 0 {
			return node.Absent
		}
		return n
	})
	countCalls := newFuncOp("countCalls", func(v any) any { return v })

	composed := ChainWithOptions(evenToAbsent, countCalls, Options{FailFast: false})
	_ = run(t, composed, []any{1, 2, 3, 4})

	if countCalls.calls != 4 {
		t.Fatalf("countCalls.calls = %d, want 4 when fail-fast is disabled", countCalls.calls)
	}
}

func TestChain_OpenCloseCallsBoth(t *testing.T) {
	a := newFuncOp("a", func(v any) any { return v })
	b := newFuncOp("b", func(v any) any { return v })
	composed := Chain(a, b)

	if err := composed.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := composed.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if a.opens != 1 || b.opens != 1 || a.closes != 1 || b.closes != 1 {
		t.Fatalf("opens = (%d, %d), closes = (%d, %d), want each child opened and closed once",
			a.opens, b.opens, a.closes, b.closes)
	}
	if composed.Name() != "(a -> b)" {
		t.Fatalf("Name() = %q, want \"(a -> b)\"", composed.Name())
	}
}
