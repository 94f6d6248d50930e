package parallel

import (
	"runtime"
	"time"
)

// Task is what a TaskFactory hands back for one node: something that can be
// started and joined with a deadline. The supervisor depends only on this
// interface, never on which concurrency primitive backs it.
type Task interface {
	// Start begins running the task's work in the background and returns
	// immediately.
	Start()

	// Join waits up to timeout for the task to finish, reporting whether it
	// did.
	Join(timeout time.Duration) (finished bool)
}

// TaskFactory builds a Task that runs run to completion.
type TaskFactory interface {
	New(run func()) Task
}

// GoroutineFactory is the default factory: one goroutine per node.
type GoroutineFactory struct{}

// New implements TaskFactory.
func (GoroutineFactory) New(run func()) Task {
	return &goroutineTask{run: run, done: make(chan struct{})}
}

type goroutineTask struct {
	run  func()
	done chan struct{}
}

func (t *goroutineTask) Start() {
	go func() {
		defer close(t.done)
		t.run()
	}()
}

func (t *goroutineTask) Join(timeout time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// PinnedThreadFactory locks its goroutine to its own OS thread for the
// task's entire lifetime, trading one OS thread per node for scheduling
// isolation from the rest of the runtime.
type PinnedThreadFactory struct{}

// New implements TaskFactory.
func (PinnedThreadFactory) New(run func()) Task {
	return &pinnedTask{run: run, done: make(chan struct{})}
}

type pinnedTask struct {
	run  func()
	done chan struct{}
}

func (t *pinnedTask) Start() {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(t.done)
		t.run()
	}()
}

func (t *pinnedTask) Join(timeout time.Duration) bool {
	select {
	case <-t.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
