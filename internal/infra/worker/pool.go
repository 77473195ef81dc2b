// Package worker runs detached background tasks on a fixed set of goroutines
// fed by a bounded queue.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"

	"promo-bot/internal/domain"
)

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("worker pool stopped")

// Task is one unit of background work. Its context is detached from the
// context given to Start, so a task that has begun runs to completion.
type Task func(ctx context.Context) error

type Pool struct {
	queue   chan Task
	closing chan struct{}
	once    sync.Once
	size    int
	active  sync.WaitGroup
	log     *zerolog.Logger
}

// NewPool sizes the pool. workers <= 0 means one per CPU; queueSize <= 0
// means four slots per worker.
func NewPool(workers, queueSize int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 4 * workers
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "WorkerPool").Int("workers", workers).Logger()
	return &Pool{
		queue:   make(chan Task, queueSize),
		closing: make(chan struct{}),
		size:    workers,
		log:     &l,
	}
}

// Start launches the workers. Cancelling ctx stops them from taking new
// tasks; tasks already running keep going.
func (p *Pool) Start(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	p.active.Add(p.size)
	for id := 0; id < p.size; id++ {
		go p.loop(ctx, detached, id)
	}
}

func (p *Pool) loop(ctx, taskCtx context.Context, id int) {
	defer p.active.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.closing:
			return
		case task := <-p.queue:
			if err := p.execute(taskCtx, task); err != nil {
				p.log.Warn().Err(err).Int("worker", id).Msg("task failed")
			}
		}
	}
}

func (p *Pool) execute(ctx context.Context, task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p.log.Error().Bytes("stack", debug.Stack()).Msg("task panicked")
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return task(ctx)
}

// Submit queues task without blocking: a full queue yields domain.ErrQueueFull.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("worker pool: nil task")
	}
	select {
	case <-p.closing:
		return ErrStopped
	default:
	}
	select {
	case p.queue <- task:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Stop refuses further tasks and waits, up to ctx, for running tasks to
// return. Tasks still waiting in the queue are discarded.
func (p *Pool) Stop(ctx context.Context) error {
	p.once.Do(func() { close(p.closing) })

	finished := make(chan struct{})
	go func() {
		p.active.Wait()
		close(finished)
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("worker pool stop: %w", ctx.Err())
	case <-finished:
	}

	dropped := 0
	for {
		select {
		case <-p.queue:
			dropped++
		default:
			if dropped > 0 {
				p.log.Warn().Int("dropped", dropped).Msg("queued tasks discarded on stop")
			}
			return nil
		}
	}
}
