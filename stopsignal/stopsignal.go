// Package stopsignal provides a one-shot, shared stop flag: a single
// signal, observed cooperatively by the executor and every node task, that
// triggers orderly teardown. It is implemented as a closed channel, the
// idiomatic Go equivalent of a one-shot event.
package stopsignal

import "sync"

// Flag is a shared, one-shot boolean. Set is idempotent and safe to call
// from any goroutine (a CLI's SIGINT handler, a test, the supervisor
// itself). Once set, it never unsets — a Flag is single-use per execution;
// callers construct a fresh Flag for the next run.
type Flag struct {
	once sync.Once
	done chan struct{}
}

// New returns a Flag that is not yet set.
func New() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set raises the flag. Safe to call more than once or concurrently.
func (f *Flag) Set() {
	f.once.Do(func() { close(f.done) })
}

// IsSet reports whether the flag has been raised.
func (f *Flag) IsSet() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed once the flag is set — usable in a
// select alongside queue operations or other blocking suspension points.
func (f *Flag) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the flag is set.
func (f *Flag) Wait() {
	<-f.done
}
