package engine

import (
	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"
)

// Task is one unit of matching work already bound to a symbol's book.
type Task func()

// WorkerPool is a fixed set of workers, each draining its own bounded task
// queue. Submission never blocks: a full queue is reported to the caller,
// which turns it into a reject instead of stalling the session layer.
type WorkerPool struct {
	t      *tomb.Tomb
	queues []chan Task
	log    zerolog.Logger
}

func NewWorkerPool(workers, depth int, log zerolog.Logger) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	if depth < 1 {
		depth = 1
	}
	p := &WorkerPool{
		t:      new(tomb.Tomb),
		queues: make([]chan Task, workers),
		log:    log,
	}
	for i := range p.queues {
		p.queues[i] = make(chan Task, depth)
	}
	return p
}

func (p *WorkerPool) Size() int { return len(p.queues) }

func (p *WorkerPool) Start() {
	for i := range p.queues {
		i := i
		p.t.Go(func() error { return p.run(i) })
	}
}

func (p *WorkerPool) run(i int) error {
	q := p.queues[i]
	p.log.Debug().Int("worker", i).Msg("worker starting")
	for {
		select {
		case task := <-q:
			task()
		case <-p.t.Dying():
			// Finish everything already accepted so no command is
			// abandoned mid-mutation.
			for {
				select {
				case task := <-q:
					task()
				default:
					p.log.Debug().Int("worker", i).Msg("worker exiting")
					return nil
				}
			}
		}
	}
}

// TrySubmit queues task on worker w. It reports false when the worker's queue
// is full or the pool is shutting down.
func (p *WorkerPool) TrySubmit(w int, task Task) bool {
	if !p.t.Alive() {
		return false
	}
	select {
	case p.queues[w] <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting work and joins all workers after their in-flight
// tasks complete.
func (p *WorkerPool) Shutdown() error {
	p.t.Kill(nil)
	return p.t.Wait()
}
