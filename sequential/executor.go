// Package sequential implements the single-threaded executor: one source,
// one composed operator, one sink, run in strict lock-step. The stop flag
// is passed explicitly into Execute rather than read from ambient state, so
// the run loop's termination condition is always well-defined.
package sequential

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rakeshv/dflow/compose"
	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/stopsignal"
	"github.com/rakeshv/dflow/topology"
)

// State is one point in the executor's one-way lifecycle:
// Idle → Opening → Running → Closing → Idle.
type State int

const (
	Idle State = iota
	Opening
	Running
	Closing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Opening:
		return "opening"
	case Running:
		return "running"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Executor runs a Sequential topology to completion or until Stop is
// signaled. It may be reused across multiple Execute calls once it has
// returned to Idle.
type Executor struct {
	source   node.Source
	operator node.Operator
	sink     node.Sink

	// SkipAbsent controls the none-skip policy: when true, an absent
	// emission short-circuits the chain for that item; when false,
	// node.Absent is passed through to downstream nodes.
	SkipAbsent bool

	state  State
	logger *slog.Logger
}

// Option configures an Executor at construction.
type Option func(*Executor)

// WithLogger overrides the default slog.Default().
func WithLogger(l *slog.Logger) Option { return func(e *Executor) { e.logger = l } }

// New builds an Executor from a Sequential topology, folding its operator
// list into one composed operator via compose.Fold (a topology with no
// operators runs the source directly into the sink).
func New(top *topology.Sequential, opts ...Option) (*Executor, error) {
	var op node.Operator
	if len(top.Operators) > 0 {
		composed, err := compose.Fold(top.Operators)
		if err != nil {
			return nil, err
		}
		op = composed
	} else {
		op = identityOperator{}
	}
	e := &Executor{source: top.Source, operator: op, sink: top.Sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// State reports the executor's current lifecycle state.
func (e *Executor) State() State { return e.state }

// Execute runs Opening → Running → Closing once. stop is the shared flag
// the caller (or an OS signal handler) raises to request an orderly
// teardown; Execute returns once the flag is observed or the source's Read
// call returns an error.
//
// Execute may only be called while the executor is Idle; it panics
// otherwise, since a second concurrent Execute on the same Executor would
// violate the one-way transition model.
func (e *Executor) Execute(ctx context.Context, stop *stopsignal.Flag) error {
	if e.state != Idle {
		panic(fmt.Sprintf("sequential: Execute called while state is %s, want idle", e.state))
	}

	runID := uuid.New().String()
	logger := e.logger.With(slog.String("run_id", runID))

	e.state = Opening
	if err := e.open(ctx); err != nil {
		// Already-opened nodes are not rolled back on a partial Open
		// failure; the caller sees the error and discards the executor.
		e.state = Idle
		logger.Error("open failed, aborting run", slog.Any("error", err))
		return err
	}

	e.state = Running
	logger.Info("run started")
	runErr := e.runLoop(ctx, stop)

	e.state = Closing
	closeErr := e.closeAll(ctx)
	e.state = Idle
	logger.Info("run finished", slog.Any("run_error", runErr), slog.Any("close_error", closeErr))

	if runErr != nil {
		return runErr
	}
	return closeErr
}

func (e *Executor) open(ctx context.Context) error {
	if err := e.source.Open(ctx); err != nil {
		return node.NewInitializationError(e.source.Name(), err)
	}
	if err := e.operator.Open(ctx); err != nil {
		return node.NewInitializationError(e.operator.Name(), err)
	}
	if err := e.sink.Open(ctx); err != nil {
		return node.NewInitializationError(e.sink.Name(), err)
	}
	return nil
}

func (e *Executor) runLoop(ctx context.Context, stop *stopsignal.Flag) error {
	for !stop.IsSet() {
		var readErr error
		err := e.source.Read(ctx, func(item any) {
			if readErr != nil {
				return
			}
			readErr = e.handleEmission(ctx, item)
		})
		if err != nil {
			return node.NewReadError(e.source.Name(), err)
		}
		if readErr != nil {
			return readErr
		}
	}
	return nil
}

// handleEmission applies the composed operator to one item read from the
// source, then writes every resulting item to the sink: one source call,
// zero-or-more operator calls, zero-or-more sink writes, strictly
// synchronous.
func (e *Executor) handleEmission(ctx context.Context, item any) error {
	if e.SkipAbsent && node.IsAbsent(item) {
		return nil
	}
	var applyErr error
	err := e.operator.Apply(ctx, item, func(out any) {
		if applyErr != nil {
			return
		}
		if e.SkipAbsent && node.IsAbsent(out) {
			return
		}
		if werr := e.sink.Write(ctx, out); werr != nil {
			applyErr = node.NewWriteError(e.sink.Name(), werr)
		}
	})
	if err != nil {
		return node.NewOperatorError(e.operator.Name(), err)
	}
	return applyErr
}

func (e *Executor) closeAll(ctx context.Context) error {
	// Every close is attempted even if an earlier one fails; the first
	// error is returned.
	var first error
	if err := e.source.Close(ctx); err != nil {
		first = node.NewShutdownError(e.source.Name(), err)
	}
	if err := e.operator.Close(ctx); err != nil && first == nil {
		first = node.NewShutdownError(e.operator.Name(), err)
	}
	if err := e.sink.Close(ctx); err != nil && first == nil {
		first = node.NewShutdownError(e.sink.Name(), err)
	}
	return first
}

// identityOperator is used when a Sequential topology has no operators: the
// source feeds the sink directly.
type identityOperator struct{}

func (identityOperator) Name() string { return "identity" }
func (identityOperator) Apply(ctx context.Context, item any, emit node.Emit) error {
	emit(item)
	return nil
}
func (identityOperator) Open(ctx context.Context) error  { return nil }
func (identityOperator) Close(ctx context.Context) error { return nil }
func (identityOperator) Inputs() *node.Connections       { return node.NewConnections() }
func (identityOperator) Outputs() *node.Connections      { return node.NewConnections() }
