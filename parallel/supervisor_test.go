package parallel

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/stopsignal"
	"github.com/rakeshv/dflow/topology"
)

const testJoinTimeout = 2 * time.Second

// onceSource emits each element of items once (across however many Read
// calls it takes) and then idles, leaving shutdown to the stop flag.
type onceSource struct {
	node.Base
	mu    sync.Mutex
	items []any
	pos   int
}

func newOnceSource(name string, items ...any) *onceSource {
	return &onceSource{Base: node.NewBase(name), items: items}
}

func (s *onceSource) Read(ctx context.Context, emit node.Emit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos < len(s.items) {
		emit(s.items[s.pos])
		s.pos++
		return nil
	}
	time.Sleep(time.Millisecond)
	return nil
}

type funcOp struct {
	node.Base
	fn func(any) any
}

func newFuncOp(name string, fn func(any) any) *funcOp {
	return &funcOp{Base: node.NewBase(name), fn: fn}
}

func (o *funcOp) Apply(ctx context.Context, item any, emit node.Emit) error {
	emit(o.fn(item))
	return nil
}

// captureSink records every item written to it, guarded by a mutex since
// the supervisor writes to it from its own task goroutine.
type captureSink struct {
	node.Base
	mu       sync.Mutex
	recorded []any
	closes   int
	wrote    chan struct{}
}

func (s *captureSink) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closes++
	s.mu.Unlock()
	return nil
}

func (s *captureSink) closeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func newCaptureSink(name string, notify int) *captureSink {
	return &captureSink{Base: node.NewBase(name), wrote: make(chan struct{}, notify)}
}

func (s *captureSink) Write(ctx context.Context, item any) error {
	s.mu.Lock()
	s.recorded = append(s.recorded, item)
	s.mu.Unlock()
	select {
	case s.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (s *captureSink) snapshot() []any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]any, len(s.recorded))
	copy(out, s.recorded)
	return out
}

func waitForN(t *testing.T, sink *captureSink, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("sink only recorded %d items, want at least %d", len(sink.snapshot()), n)
}

func TestSupervisor_FanOutAndZip(t *testing.T) {
	src := newOnceSource("src", 1)
	op1 := newFuncOp("op1", func(v any) any { return v.(int) + 1 })
	op2 := newFuncOp("op2", func(v any) any { return v.(int) - 1 })
	sink := newCaptureSink("sink", 1)

	node.ConnectOutput(src, op1, op2)
	node.ConnectOutput(op1, sink)
	node.ConnectOutput(op2, sink)

	top, err := topology.FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}

	sup := NewSupervisor(top, WithJoinTimeout(testJoinTimeout))
	stop := stopsignal.New()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background(), stop) }()

	waitForN(t, sink, 1, time.Second)
	stop.Set()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := sink.snapshot()
	if len(got) != 1 {
		t.Fatalf("recorded = %v, want exactly 1 zipped item", got)
	}
	zipped, ok := got[0].(map[string]any)
	if !ok {
		t.Fatalf("recorded[0] = %#v, want map[string]any", got[0])
	}
	if zipped["op1"] != 2 || zipped["op2"] != 0 {
		t.Fatalf("zipped = %v, want {op1:2 op2:0}", zipped)
	}
}

func TestSupervisor_MultiSourceZip(t *testing.T) {
	src1 := newOnceSource("src1", 1)
	src2 := newOnceSource("src2", 2)
	op1 := newFuncOp("op1", func(v any) any { return v.(int) + 1 })
	op2 := newFuncOp("op2", func(v any) any { return v.(int) - 1 })
	sink := newCaptureSink("sink", 1)

	node.ConnectOutput(src1, op1)
	node.ConnectOutput(src2, op2)
	node.ConnectOutput(op1, sink)
	node.ConnectOutput(op2, sink)

	top, err := topology.FromSources([]node.Source{src1, src2}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}

	sup := NewSupervisor(top, WithJoinTimeout(testJoinTimeout))
	stop := stopsignal.New()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background(), stop) }()

	waitForN(t, sink, 1, time.Second)
	stop.Set()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := sink.snapshot()[0].(map[string]any)
	if got["op1"] != 2 || got["op2"] != 1 {
		t.Fatalf("zipped = %v, want {op1:2 op2:1}", got)
	}
}

func TestSupervisor_PerEdgeFIFO(t *testing.T) {
	src := newOnceSource("src", 1, 2, 3, 4, 5)
	op := newFuncOp("id", func(v any) any { return v })
	sink := newCaptureSink("sink", 5)

	node.ConnectOutput(src, op)
	node.ConnectOutput(op, sink)

	top, err := topology.FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	sup := NewSupervisor(top, WithJoinTimeout(testJoinTimeout))
	stop := stopsignal.New()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background(), stop) }()

	waitForN(t, sink, 5, time.Second)
	stop.Set()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []any{1, 2, 3, 4, 5}
	got := sink.snapshot()
	if len(got) != len(want) {
		t.Fatalf("recorded = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("recorded = %v, want %v (FIFO order violated)", got, want)
		}
	}
}

// foreverSource never stops emitting on its own; a graceful stop must still
// be able to reap it.
type foreverSource struct {
	node.Base
}

func (s *foreverSource) Read(ctx context.Context, emit node.Emit) error {
	emit(1)
	time.Sleep(time.Millisecond)
	return nil
}

func TestSupervisor_GracefulStop(t *testing.T) {
	src := &foreverSource{Base: node.NewBase("src")}
	sink := newCaptureSink("sink", 1)
	node.ConnectOutput(src, sink)

	top, err := topology.FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	sup := NewSupervisor(top, WithJoinTimeout(testJoinTimeout))
	stop := stopsignal.New()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background(), stop) }()

	waitForN(t, sink, 1, time.Second)
	stop.Set()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(testJoinTimeout + time.Second):
		t.Fatalf("Run did not return within the join deadline")
	}
}

func TestSupervisor_CloseCalledExactlyOnce(t *testing.T) {
	src := newOnceSource("src", 1)
	sink := newCaptureSink("sink", 1)
	node.ConnectOutput(src, sink)

	top, err := topology.FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	sup := NewSupervisor(top, WithJoinTimeout(testJoinTimeout))
	stop := stopsignal.New()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background(), stop) }()

	waitForN(t, sink, 1, time.Second)
	stop.Set()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := sink.closeCount(); got != 1 {
		t.Fatalf("sink Close called %d times, want exactly 1", got)
	}
}

func TestSupervisor_RunTwicePanics(t *testing.T) {
	src := newOnceSource("src", 1)
	sink := newCaptureSink("sink", 1)
	node.ConnectOutput(src, sink)
	top, err := topology.FromSources([]node.Source{src}, nil)
	if err != nil {
		t.Fatalf("FromSources: %v", err)
	}
	sup := NewSupervisor(top, WithJoinTimeout(testJoinTimeout))
	stop := stopsignal.New()

	done := make(chan error, 1)
	go func() { done <- sup.Run(context.Background(), stop) }()
	waitForN(t, sink, 1, time.Second)
	stop.Set()
	<-done

	defer func() {
		if recover() == nil {
			t.Fatalf("expected second Run to panic")
		}
	}()
	_ = sup.Run(context.Background(), stopsignal.New())
}
