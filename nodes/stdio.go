package nodes

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/rakeshv/dflow/node"
	"github.com/rakeshv/dflow/nodectx"
)

// StdinSourceName is the registry name cmd/dflowd registers a StdinSource
// under.
const StdinSourceName = "stdin"

// StdoutSinkName is the registry name cmd/dflowd registers a StdoutSink
// under.
const StdoutSinkName = "stdout"

// StdinSource emits one line of text per Read call from an underlying
// reader (os.Stdin in production, any io.Reader in tests). At EOF it emits
// node.Absent forever rather than returning an error, so a topology reading
// from it idles cleanly until the executor's stop flag is raised instead of
// aborting.
type StdinSource struct {
	node.Base
	logger  *nodectx.Logger
	scanner *bufio.Scanner
	eof     bool
}

// NewStdinSource builds a StdinSource reading lines from r.
func NewStdinSource(ctx *nodectx.Context, r io.Reader) *StdinSource {
	return &StdinSource{
		Base:    node.NewBase(StdinSourceName),
		logger:  ctx.CreateLogger(StdinSourceName),
		scanner: bufio.NewScanner(r),
	}
}

// Read emits the next line of input, or node.Absent once the reader is
// exhausted.
func (s *StdinSource) Read(ctx context.Context, emit node.Emit) error {
	if s.eof {
		emit(node.Absent)
		return nil
	}
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return err
		}
		s.eof = true
		s.logger.Debug("input exhausted")
		emit(node.Absent)
		return nil
	}
	emit(s.scanner.Text())
	return nil
}

// StdoutSink writes every non-absent item it receives to an underlying
// writer (os.Stdout in production), one per line.
type StdoutSink struct {
	node.Base
	logger *nodectx.Logger
	w      io.Writer
}

// NewStdoutSink builds a StdoutSink writing to w.
func NewStdoutSink(ctx *nodectx.Context, w io.Writer) *StdoutSink {
	return &StdoutSink{Base: node.NewBase(StdoutSinkName), logger: ctx.CreateLogger(StdoutSinkName), w: w}
}

// Write prints item, ignoring the absent sentinel.
func (s *StdoutSink) Write(ctx context.Context, item any) error {
	if node.IsAbsent(item) {
		return nil
	}
	_, err := fmt.Fprintln(s.w, item)
	if err != nil {
		s.logger.Errorf("write failed: %v", err)
	}
	return err
}
