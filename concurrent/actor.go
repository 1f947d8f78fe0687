package concurrent

import (
	"sync/atomic"
)

// Actor is a goroutine with an explicit lifecycle: Start, RequestStop, Join.
// The run function is expected to check Finishing() between units of work and
// return once it is set; there is no hard kill.
type Actor struct {
	name      string
	finishing atomic.Bool
	started   atomic.Bool
	done      chan struct{}
	err       error
}

func NewActor(name string) *Actor {
	return &Actor{
		name: name,
		done: make(chan struct{}),
	}
}

func (a *Actor) Name() string { return a.name }

// Start launches run on its own goroutine. Starting twice is a programming
// error.
func (a *Actor) Start(run func() error) {
	if !a.started.CompareAndSwap(false, true) {
		panic("concurrent: actor " + a.name + " started twice")
	}
	go func() {
		a.err = run()
		close(a.done)
	}()
}

// Finishing reports whether a stop has been requested.
func (a *Actor) Finishing() bool { return a.finishing.Load() }

// RequestStop asks the run loop to exit after its current unit of work.
func (a *Actor) RequestStop() { a.finishing.Store(true) }

// Join blocks until the run loop has returned and yields its error.
func (a *Actor) Join() error {
	<-a.done
	return a.err
}

// Done exposes completion for select-based waits.
func (a *Actor) Done() <-chan struct{} { return a.done }
