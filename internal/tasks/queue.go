// Package tasks runs best-effort side effects outside the request lifecycle.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"imagestudio/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Task is a unit of background work. Run receives a context bounded by the
// queue's per-task timeout.
type Task struct {
	Name   string
	Fields logrus.Fields
	Run    func(ctx context.Context) error
}

// Config controls worker count, buffer size and per-task timeout.
type Config struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

var DefaultConfig = Config{
	Workers:   4,
	QueueSize: 256,
	Timeout:   10 * time.Second,
}

// Queue is a bounded worker pool. Submit never blocks: a full or closed queue
// drops the task and logs it.
type Queue struct {
	cfg     Config
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	stopped chan struct{}
}

func NewQueue(cfg Config) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig.Timeout
	}

	q := &Queue{
		cfg:     cfg,
		tasks:   make(chan Task, cfg.QueueSize),
		stopped: make(chan struct{}),
	}
	q.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go q.worker(i)
	}
	go func() {
		q.wg.Wait()
		close(q.stopped)
	}()
	return q
}

// Submit enqueues task and reports whether it was accepted.
func (q *Queue) Submit(task Task) bool {
	if task.Run == nil {
		return false
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	entry := logrus.WithField("task", task.Name).WithFields(task.Fields)
	if q.closed {
		metrics.TaskDroppedTotal.WithLabelValues(task.Name).Inc()
		entry.Warn("task_dropped_queue_closed")
		return false
	}

	select {
	case q.tasks <- task:
		return true
	default:
		metrics.TaskDroppedTotal.WithLabelValues(task.Name).Inc()
		entry.WithField("queue_size", q.cfg.QueueSize).Warn("task_dropped_queue_full")
		return false
	}
}

// Close stops accepting tasks and waits for queued ones to finish or ctx to
// expire.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
	}
	q.mu.Unlock()

	select {
	case <-q.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tasks: drain interrupted: %w", ctx.Err())
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for task := range q.tasks {
		q.execute(id, task)
	}
}

func (q *Queue) execute(workerID int, task Task) {
	entry := logrus.WithFields(logrus.Fields{
		"task":   task.Name,
		"worker": workerID,
	}).WithFields(task.Fields)

	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := runSafely(ctx, task)
	if err != nil {
		metrics.TaskFailuresTotal.WithLabelValues(task.Name).Inc()
		entry.WithError(err).WithField("duration", time.Since(start).String()).Warn("task_failed")
		return
	}
	entry.WithField("duration", time.Since(start).String()).Debug("task_completed")
}

var errTaskPanicked = errors.New("task panicked")

func runSafely(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errTaskPanicked, r)
		}
	}()
	return task.Run(ctx)
}
