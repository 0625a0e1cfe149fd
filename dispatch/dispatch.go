// Package dispatch runs callbacks off the caller's stack. Callbacks are
// queued and run one at a time, in the order they were scheduled, by a single
// worker goroutine. Each has its own error boundary: a returned error or a
// panic is reported to the observer and then dropped, so one failing
// subscriber never stops the ones queued behind it and never reaches the
// code that triggered it.
//
//	d := dispatch.New(observer)
//	d.Go(ctx, "topic", func(ctx context.Context) error { return listener(ctx, data) })
//	d.Wait() // the queue is empty, including tasks queued by tasks
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tailored-agentic-units/provisionality/observability"
)

// Task is a unit of deferred work.
type Task func(ctx context.Context) error

type job struct {
	ctx    context.Context
	source string
	task   Task
}

// Dispatcher is a FIFO task queue. The zero value is not usable; call New.
type Dispatcher struct {
	observer observability.Observer
	metrics  Metrics

	mu      sync.Mutex
	idle    *sync.Cond
	queue   []job
	pending int
	running bool
}

// New creates a Dispatcher reporting failures to observer. A nil observer
// discards them.
func New(observer observability.Observer) *Dispatcher {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	d := &Dispatcher{observer: observer}
	d.idle = sync.NewCond(&d.mu)
	return d
}

var (
	defaultOnce       sync.Once
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide Dispatcher, logging through slog.Default.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		defaultDispatcher = New(observability.NewSlogObserver(slog.Default()))
	})
	return defaultDispatcher
}

// Go queues task and returns immediately. Tasks run in the order they were
// queued, each after the previous one has returned. The task context keeps
// ctx values but not its cancellation: the caller may return, and cancel,
// long before the task runs. source labels failure events.
func (d *Dispatcher) Go(ctx context.Context, source string, task Task) {
	if task == nil {
		return
	}

	d.mu.Lock()
	d.queue = append(d.queue, job{ctx: context.WithoutCancel(ctx), source: source, task: task})
	d.pending++
	start := !d.running
	d.running = true
	d.metrics.recordScheduled()
	d.mu.Unlock()

	if start {
		go d.drain()
	}
}

// drain is the worker loop. It exits once the queue is empty; the next Go
// starts a new worker.
func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.running = false
			d.mu.Unlock()
			return
		}
		next := d.queue[0]
		d.queue[0] = job{}
		d.queue = d.queue[1:]
		d.mu.Unlock()

		d.run(next.ctx, next.source, next.task)
		d.metrics.recordCompleted()

		d.mu.Lock()
		d.pending--
		if d.pending == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}
}

// Wait blocks until the queue is empty and no task is running. Tasks queued
// by running tasks are waited for too. Calling Wait from inside a task
// deadlocks.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.pending > 0 {
		d.idle.Wait()
	}
}

// Pending reports the number of tasks queued or running.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Metrics returns the dispatcher's task counters.
func (d *Dispatcher) Metrics() MetricsSnapshot {
	return d.metrics.Snapshot()
}

func (d *Dispatcher) run(ctx context.Context, source string, task Task) {
	defer func() {
		if r := recover(); r != nil {
			d.metrics.recordPanicked()
			d.observer.OnEvent(ctx, observability.NewEvent(
				EventTaskPanic,
				observability.LevelError,
				source,
				map[string]any{"panic": fmt.Sprint(r)},
			))
		}
	}()

	if err := task(ctx); err != nil {
		d.metrics.recordFailed()
		d.observer.OnEvent(ctx, observability.NewEvent(
			EventTaskFailed,
			observability.LevelError,
			source,
			map[string]any{"error": err.Error()},
		))
	}
}
