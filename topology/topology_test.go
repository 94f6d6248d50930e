package topology

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rakeshv/dflow/node"
)

type fakeSource struct {
	node.Base
}

func newFakeSource(name string) *fakeSource {
	return &fakeSource{Base: node.NewBase(name)}
}
func (f *fakeSource) Read(ctx context.Context, emit node.Emit) error { return nil }

type fakeOperator struct {
	node.Base
}

func newFakeOperator(name string) *fakeOperator {
	return &fakeOperator{Base: node.NewBase(name)}
}
func (f *fakeOperator) Apply(ctx context.Context, item any, emit node.Emit) error { return nil }

type fakeSink struct {
	node.Base
}

func newFakeSink(name string) *fakeSink {
	return &fakeSink{Base: node.NewBase(name)}
}
func (f *fakeSink) Write(ctx context.Context, item any) error { return nil }

func TestFromSources_LinearChain(t *testing.T) {
	src := newFakeSource("src")
	op := newFakeOperator("op")
	sink := newFakeSink("sink")
	node.ConnectOutput(src, op)
	node.ConnectOutput(op, sink)

	top, err := FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	if len(top.Operators) != 1 || top.Operators[0].Name() != "op" {
		t.Fatalf("Operators = %v", top.Operators)
	}
	if len(top.Sinks) != 1 || top.Sinks[0].Name() != "sink" {
		t.Fatalf("Sinks = %v", top.Sinks)
	}
	if len(top.Edges) != 2 {
		t.Fatalf("Edges = %v, want 2", top.Edges)
	}
}

func TestFromSources_DiamondVisitsOnce(t *testing.T) {
	src := newFakeSource("src")
	op1 := newFakeOperator("op1")
	op2 := newFakeOperator("op2")
	sink := newFakeSink("sink")
	node.ConnectOutput(src, op1, op2)
	node.ConnectOutput(op1, sink)
	node.ConnectOutput(op2, sink)

	top, err := FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	if len(top.Operators) != 2 {
		t.Fatalf("Operators = %v, want 2", top.Operators)
	}
	if len(top.Sinks) != 1 {
		t.Fatalf("Sinks = %v, want 1 (sink reached via two paths must be visited once)", top.Sinks)
	}
	if len(top.Edges) != 4 {
		t.Fatalf("Edges = %v, want 4", top.Edges)
	}
}

func TestFromSources_NoSources(t *testing.T) {
	if _, err := FromSources(nil, nil); err != ErrNoSources {
		t.Fatalf("err = %v, want ErrNoSources", err)
	}
}

func TestFromSources_OperatorWithNoOutputsRejected(t *testing.T) {
	src := newFakeSource("src")
	op := newFakeOperator("deadend")
	node.ConnectOutput(src, op)

	_, err := FromSources([]node.Source{src}, nil)
	if _, ok := err.(*InvalidTopologyError); !ok {
		t.Fatalf("err = %v, want *InvalidTopologyError (operator with no outputs)", err)
	}
}

func TestFromSources_WarnsOnDuplicateNameAcrossDistinctObjects(t *testing.T) {
	var buf strings.Builder
	handler := slog.NewTextHandler(&buf, nil)
	logger := slog.New(handler)

	a := newFakeSource("dup")
	node.ConnectOutput(a, newFakeSink("sink-a"))
	b := newFakeSource("dup")
	node.ConnectOutput(b, newFakeSink("sink-b"))

	if _, err := FromSources([]node.Source{a, b}, logger); err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	if !strings.Contains(buf.String(), "dup") {
		t.Fatalf("expected a warning mentioning the duplicate name, got: %q", buf.String())
	}
}
