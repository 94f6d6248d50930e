// Package daemon wires a registry lookup, operator composition, and the
// sequential executor into the single entry point the CLI drives: given a
// source name, a sink name, and an ordered list of operator names, resolve
// them, fold the operators into one, build a Sequential topology, and run
// it until stopped.
package daemon

import (
	"context"
	"log/slog"

	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/registry"
	"github.com/rakeshv/dflow/sequential"
	"github.com/rakeshv/dflow/stopsignal"
	"github.com/rakeshv/dflow/topology"
)

// Daemon resolves a named source/operators/sink triple against a Registry
// and runs them to completion or until Stop is called.
//
// Config is copied in at construction; a Daemon is single-use for one Run,
// since its stop flag, once raised, stays raised.
type Daemon struct {
	registry      *registry.Registry
	logger        *slog.Logger
	sourceName    string
	sinkName      string
	operatorNames []string

	stop *stopsignal.Flag
}

// New builds a Daemon that will look sourceName, operatorNames, and
// sinkName up in reg when Run is called.
func New(reg *registry.Registry, sourceName string, operatorNames []string, sinkName string, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{
		registry:      reg,
		logger:        logger,
		sourceName:    sourceName,
		sinkName:      sinkName,
		operatorNames: operatorNames,
		stop:          stopsignal.New(),
	}
}

// Stop raises the daemon's stop flag, requesting an orderly teardown of the
// in-progress Run. Safe to call before Run, concurrently with Run, or more
// than once.
func (d *Daemon) Stop() { d.stop.Set() }

// Run resolves the configured names against the registry and executes the
// resulting Sequential topology. A missing source or sink is logged and Run
// returns nil without executing anything — a misconfigured daemon is not
// treated as fatal to the process that constructed it.
//
// Operator names that aren't registered are logged and dropped from the
// chain rather than failing the whole run.
func (d *Daemon) Run(ctx context.Context) error {
	src := d.registry.GetSource(d.sourceName)
	sink := d.registry.GetSink(d.sinkName)

	if src == nil || sink == nil {
		d.logger.Error("daemon misconfigured: source and/or sink not found in registry",
			slog.String("source", d.sourceName), slog.Bool("source_found", src != nil),
			slog.String("sink", d.sinkName), slog.Bool("sink_found", sink != nil))
		return nil
	}

	var ops []node.Operator
	for _, name := range d.operatorNames {
		op := d.registry.GetOperator(name)
		if op == nil {
			d.logger.Warn("operator not found in registry, elided from the chain", slog.String("operator", name))
			continue
		}
		ops = append(ops, op)
	}

	wireChain(src, ops, sink)

	seq, err := topology.SequentialFromSource(src)
	if err != nil {
		return err
	}

	exec, err := sequential.New(seq, sequential.WithLogger(d.logger))
	if err != nil {
		return err
	}

	d.logger.Info("daemon starting",
		slog.String("source", src.Name()), slog.String("sink", sink.Name()), slog.Int("operators", len(ops)))
	return exec.Execute(ctx, d.stop)
}

// wireChain connects source -> ops[0] -> ops[1] -> ... -> sink, or
// source -> sink directly when ops is empty. Composition itself (folding
// ops into one virtual operator) is done by sequential.New via
// compose.Fold; wireChain only needs to produce a graph
// SequentialFromSource can walk.
func wireChain(src node.Source, ops []node.Operator, sink node.Sink) {
	var prev node.Node = src
	for _, op := range ops {
		node.ConnectOutput(prev, op)
		prev = op
	}
	node.ConnectOutput(prev, sink)
}
