// Package parallel implements the per-node-task executor: one task per
// source/operator/sink, one bounded queue per edge, broadcast fan-out,
// zip-join fan-in, and a poison-value shutdown protocol.
package parallel

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/stopsignal"
	"github.com/rakeshv/dflow/topology"
)

const (
	defaultQueueCapacity = 16
	defaultJoinTimeout   = 5 * time.Second
)

type edgeKey struct {
	Producer string
	Consumer string
}

// metricsRecorder is the narrow slice of telemetry.Provider the supervisor
// needs — declared locally so this package only depends on the three
// methods it actually calls rather than the concrete Provider type.
type metricsRecorder interface {
	depthRecorder
	RecordEdgeItem(ctx context.Context, producer, consumer string, dropped bool)
	RecordNodeExecution(ctx context.Context, nodeName string, durationMS float64, outcome string)
}

// Supervisor runs a Topology by giving each node its own task, connected by
// per-edge bounded queues.
type Supervisor struct {
	topology *topology.Topology
	factory  TaskFactory
	logger   *slog.Logger
	metrics  metricsRecorder

	queueCapacity int
	joinTimeout   time.Duration

	queues map[edgeKey]*Queue

	mu      sync.Mutex
	started bool

	errsMu sync.Mutex
	errs   []error
}

// Option configures a Supervisor at construction.
type Option func(*Supervisor)

// WithTaskFactory overrides the default GoroutineFactory.
func WithTaskFactory(f TaskFactory) Option { return func(s *Supervisor) { s.factory = f } }

// WithLogger overrides the default slog.Default().
func WithLogger(l *slog.Logger) Option { return func(s *Supervisor) { s.logger = l } }

// WithQueueCapacity overrides the default per-edge queue capacity.
func WithQueueCapacity(n int) Option {
	return func(s *Supervisor) {
		if n > 0 {
			s.queueCapacity = n
		}
	}
}

// WithJoinTimeout overrides the default 5s per-task join deadline.
func WithJoinTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.joinTimeout = d
		}
	}
}

// WithTelemetry attaches a metrics recorder (typically a *telemetry.Provider)
// that records node executions and per-edge item/queue-depth metrics. Nil
// by default: telemetry is optional.
func WithTelemetry(m metricsRecorder) Option { return func(s *Supervisor) { s.metrics = m } }

// NewSupervisor builds a Supervisor over top, allocating one bounded Queue
// per edge up front. Queues are created once at construction, not on every
// Run.
func NewSupervisor(top *topology.Topology, opts ...Option) *Supervisor {
	s := &Supervisor{
		topology:      top,
		factory:       GoroutineFactory{},
		logger:        slog.Default(),
		queueCapacity: defaultQueueCapacity,
		joinTimeout:   defaultJoinTimeout,
		queues:        make(map[edgeKey]*Queue),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, edge := range top.Edges {
		q := NewQueue(s.queueCapacity)
		if s.metrics != nil {
			q.withTelemetry(edge.Producer, edge.Consumer, s.metrics)
		}
		s.queues[edgeKey{Producer: edge.Producer, Consumer: edge.Consumer}] = q
	}
	return s
}

// Errs returns the node-task errors observed during the most recent Run —
// one per task that exited on a Read/Operator/Write/Shutdown error or was
// abandoned at the join deadline. A task error terminates only that task;
// it does not automatically tear down the rest of the topology.
func (s *Supervisor) Errs() []error {
	s.errsMu.Lock()
	defer s.errsMu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

func (s *Supervisor) recordErr(err error) {
	s.errsMu.Lock()
	s.errs = append(s.errs, err)
	s.errsMu.Unlock()
}

type namedTask struct {
	name string
	task Task
}

// Run starts one task per node, waits for stop to be raised, then drives
// the shutdown protocol: poison every queue, join every task with a
// bounded timeout, and record (as an AbandonedTaskError) any task that
// misses its deadline. Run may only be called once per Supervisor.
func (s *Supervisor) Run(ctx context.Context, stop *stopsignal.Flag) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		panic("parallel: Run called more than once on the same Supervisor")
	}
	s.started = true
	s.mu.Unlock()

	runID := uuid.New().String()
	logger := s.logger.With(slog.String("run_id", runID))

	var tasks []namedTask
	for _, src := range s.topology.Sources {
		tasks = append(tasks, namedTask{src.Name(), s.factory.New(s.sourceRun(ctx, src, stop, logger))})
	}
	for _, op := range s.topology.Operators {
		tasks = append(tasks, namedTask{op.Name(), s.factory.New(s.operatorRun(ctx, op, logger))})
	}
	for _, sink := range s.topology.Sinks {
		tasks = append(tasks, namedTask{sink.Name(), s.factory.New(s.sinkRun(ctx, sink, logger))})
	}

	for _, nt := range tasks {
		nt.task.Start()
	}

	logger.Info("topology started, waiting for stop signal")
	stop.Wait()
	logger.Info("stop signal received, poisoning queues")
	s.poisonAll()

	for _, nt := range tasks {
		if !nt.task.Join(s.joinTimeout) {
			logger.Warn("task missed join deadline, abandoning", slog.String("node", nt.name))
			s.recordErr(newAbandonedTaskError(nt.name))
		}
	}

	if errs := s.Errs(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// recordExecution reports one node execution's outcome and duration, a
// no-op when no telemetry was attached via WithTelemetry.
func (s *Supervisor) recordExecution(ctx context.Context, name string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.RecordNodeExecution(ctx, name, float64(time.Since(start).Microseconds())/1000, outcome)
}

func (s *Supervisor) poisonAll() {
	for _, q := range s.queues {
		q.Put(poisonValue)
	}
}

func (s *Supervisor) outQueuesFor(n node.Node) []*Queue {
	var qs []*Queue
	n.Outputs().Each(func(name string, _ node.Node) {
		qs = append(qs, s.queues[edgeKey{Producer: n.Name(), Consumer: name}])
	})
	return qs
}

type namedQueue struct {
	producer string
	q        *Queue
}

func (s *Supervisor) inQueuesFor(n node.Node) []namedQueue {
	var qs []namedQueue
	n.Inputs().Each(func(name string, _ node.Node) {
		qs = append(qs, namedQueue{producer: name, q: s.queues[edgeKey{Producer: name, Consumer: n.Name()}]})
	})
	return qs
}

// broadcast publishes item to every queue in qs, dropping the absent
// sentinel. producer names the emitting node, used only to tag the
// optional per-edge item metric.
func (s *Supervisor) broadcast(ctx context.Context, producer string, qs []*Queue, item any) {
	dropped := node.IsAbsent(item)
	if s.metrics != nil {
		for _, q := range qs {
			s.metrics.RecordEdgeItem(ctx, producer, q.consumer, dropped)
		}
	}
	if dropped {
		return
	}
	for _, q := range qs {
		q.Put(item)
	}
}

// getItems implements the zip join an operator or sink with multiple
// inputs uses: a single input is delivered raw; multiple inputs are read
// one at a time, in input-map order, into a map keyed by producer name. ok
// is false the instant any input yields the poison value; it returns
// immediately rather than draining the remaining queues.
func getItems(qs []namedQueue) (items any, ok bool) {
	if len(qs) == 1 {
		v := qs[0].q.Get()
		if isPoison(v) {
			return nil, false
		}
		return v, true
	}
	zipped := make(map[string]any, len(qs))
	for _, nq := range qs {
		v := nq.q.Get()
		if isPoison(v) {
			return nil, false
		}
		zipped[nq.producer] = v
	}
	return zipped, true
}

func (s *Supervisor) sourceRun(ctx context.Context, src node.Source, stop *stopsignal.Flag, logger *slog.Logger) func() {
	return func() {
		name := src.Name()
		nodeLogger := logger.With(slog.String("node", name))
		nodeLogger.Debug("source task starting")

		if err := src.Open(ctx); err != nil {
			nodeLogger.Error("open failed, task exiting without running", slog.Any("error", err))
			s.recordErr(node.NewInitializationError(name, err))
			return
		}

		// Close is deferred and guarded by sync.Once, so it runs exactly once
		// per task on every exit path out of the run loop.
		var closeOnce sync.Once
		closeFn := func() {
			closeOnce.Do(func() {
				if err := src.Close(ctx); err != nil {
					nodeLogger.Warn("close failed", slog.Any("error", err))
					s.recordErr(node.NewShutdownError(name, err))
				}
			})
		}
		defer closeFn()

		outQs := s.outQueuesFor(src)
		emit := func(item any) { s.broadcast(ctx, name, outQs, item) }

		for !stop.IsSet() {
			start := time.Now()
			err := src.Read(ctx, emit)
			s.recordExecution(ctx, name, start, err)
			if err != nil {
				nodeLogger.Error("read failed, task exiting", slog.Any("error", err))
				s.recordErr(node.NewReadError(name, err))
				return
			}
		}
	}
}

func (s *Supervisor) operatorRun(ctx context.Context, op node.Operator, logger *slog.Logger) func() {
	return func() {
		name := op.Name()
		nodeLogger := logger.With(slog.String("node", name))
		nodeLogger.Debug("operator task starting")

		if err := op.Open(ctx); err != nil {
			nodeLogger.Error("open failed, task exiting without running", slog.Any("error", err))
			s.recordErr(node.NewInitializationError(name, err))
			return
		}

		var closeOnce sync.Once
		closeFn := func() {
			closeOnce.Do(func() {
				if err := op.Close(ctx); err != nil {
					nodeLogger.Warn("close failed", slog.Any("error", err))
					s.recordErr(node.NewShutdownError(name, err))
				}
			})
		}
		defer closeFn()

		inQs := s.inQueuesFor(op)
		outQs := s.outQueuesFor(op)
		emit := func(item any) { s.broadcast(ctx, name, outQs, item) }

		for {
			item, ok := getItems(inQs)
			if !ok {
				return
			}
			start := time.Now()
			err := op.Apply(ctx, item, emit)
			s.recordExecution(ctx, name, start, err)
			if err != nil {
				nodeLogger.Error("apply failed, task exiting", slog.Any("error", err))
				s.recordErr(node.NewOperatorError(name, err))
				return
			}
		}
	}
}

func (s *Supervisor) sinkRun(ctx context.Context, sink node.Sink, logger *slog.Logger) func() {
	return func() {
		name := sink.Name()
		nodeLogger := logger.With(slog.String("node", name))
		nodeLogger.Debug("sink task starting")

		if err := sink.Open(ctx); err != nil {
			nodeLogger.Error("open failed, task exiting without running", slog.Any("error", err))
			s.recordErr(node.NewInitializationError(name, err))
			return
		}

		var closeOnce sync.Once
		closeFn := func() {
			closeOnce.Do(func() {
				if err := sink.Close(ctx); err != nil {
					nodeLogger.Warn("close failed", slog.Any("error", err))
					s.recordErr(node.NewShutdownError(name, err))
				}
			})
		}
		defer closeFn()

		inQs := s.inQueuesFor(sink)

		for {
			item, ok := getItems(inQs)
			if !ok {
				return
			}
			start := time.Now()
			err := sink.Write(ctx, item)
			s.recordExecution(ctx, name, start, err)
			if err != nil {
				nodeLogger.Error("write failed, task exiting", slog.Any("error", err))
				s.recordErr(node.NewWriteError(name, err))
				return
			}
		}
	}
}
