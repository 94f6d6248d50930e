package topology

import (
	"testing"

	"github.com/rakeshv/dflow/node"
)

func TestSequentialFromSource_Chain(t *testing.T) {
	src := newFakeSource("src")
	op1 := newFakeOperator("op1")
	op2 := newFakeOperator("op2")
	sink := newFakeSink("sink")
	node.ConnectOutput(src, op1)
	node.ConnectOutput(op1, op2)
	node.ConnectOutput(op2, sink)

	seq, err := SequentialFromSource(src)
	if err != nil {
		t.Fatalf("SequentialFromSource: %v", err)
	}
	if len(seq.Operators) != 2 || seq.Operators[0].Name() != "op1" || seq.Operators[1].Name() != "op2" {
		t.Fatalf("Operators = %v", seq.Operators)
	}
	if seq.Sink.Name() != "sink" {
		t.Fatalf("Sink = %v", seq.Sink)
	}
}

func TestSequentialFromSource_RejectsFanOut(t *testing.T) {
	src := newFakeSource("src")
	op1 := newFakeOperator("op1")
	op2 := newFakeOperator("op2")
	node.ConnectOutput(src, op1, op2) // two outputs: invalid for sequential

	_, err := SequentialFromSource(src)
	if _, ok := err.(*InvalidTopologyError); !ok {
		t.Fatalf("err = %v, want *InvalidTopologyError", err)
	}
}

func TestSequentialFromSource_RejectsFanIn(t *testing.T) {
	src1 := newFakeSource("src1")
	src2 := newFakeSource("src2")
	sink := newFakeSink("sink")
	node.ConnectOutput(src1, sink)
	node.ConnectOutput(src2, sink) // sink now has two inputs

	_, err := SequentialFromSource(src1)
	if _, ok := err.(*InvalidTopologyError); !ok {
		t.Fatalf("err = %v, want *InvalidTopologyError", err)
	}
}

func TestSequentialFromSource_NilSource(t *testing.T) {
	if _, err := SequentialFromSource(nil); err != ErrNoSources {
		t.Fatalf("err = %v, want ErrNoSources", err)
	}
}
