package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"maintenance-records-backend/internal/logging"
)

const (
	// notifyTimeout bounds a single notification so a hung sender cannot stall a worker.
	notifyTimeout = 30 * time.Second
	// drainTimeout bounds how long workers keep sending queued notifications after shutdown.
	drainTimeout = 10 * time.Second
)

// AssignmentNotifier handles one dispatched record id.
type AssignmentNotifier interface {
	Notify(ctx context.Context, recordID int64)
}

// WorkerPool manages a pool of workers for sending assignment notifications.
type WorkerPool struct {
	size     int
	jobs     chan int64
	notifier AssignmentNotifier
	wg       sync.WaitGroup

	drainTimeout time.Duration
}

// NewWorkerPool creates a pool of size workers reading from a queue of queueSize record ids.
func NewWorkerPool(size, queueSize int, notifier AssignmentNotifier) *WorkerPool {
	if size < 1 {
		size = 1
	}
	if queueSize < 1 {
		queueSize = size
	}
	return &WorkerPool{
		size:     size,
		jobs:     make(chan int64, queueSize),
		notifier: notifier,

		drainTimeout: drainTimeout,
	}
}

// Start launches the worker goroutines. Once ctx is cancelled they drain the queue within
// the drain budget, log whatever is left, and exit.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	logger := logging.From(ctx).With("worker", id)
	logger.Debug("notification worker started")

	for {
		select {
		case recordID := <-wp.jobs:
			if ctx.Err() != nil {
				wp.drain(ctx, logger, recordID)
				return
			}
			logger.Debug("processing assignment", "record_id", recordID)
			jobCtx, cancel := context.WithTimeout(ctx, notifyTimeout)
			wp.notifier.Notify(jobCtx, recordID)
			cancel()
		case <-ctx.Done():
			wp.drain(ctx, logger)
			return
		}
	}
}

// drain handles pending and every job still queued. Jobs reached after the drain budget
// is spent are dropped and logged.
func (wp *WorkerPool) drain(ctx context.Context, logger *slog.Logger, pending ...int64) {
	drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), wp.drainTimeout)
	defer cancel()

	sent, dropped := 0, 0
	handle := func(recordID int64) {
		if drainCtx.Err() != nil {
			logger.Warn("shutting down, dropping queued assignment", "record_id", recordID)
			dropped++
			return
		}
		jobCtx, cancel := context.WithTimeout(drainCtx, notifyTimeout)
		wp.notifier.Notify(jobCtx, recordID)
		cancel()
		sent++
	}

	for _, recordID := range pending {
		handle(recordID)
	}
	for {
		select {
		case recordID := <-wp.jobs:
			handle(recordID)
		default:
			logger.Debug("notification worker shutting down", "drained", sent, "dropped", dropped)
			return
		}
	}
}

// Dispatch queues recordID for notification without blocking. A full queue drops the job.
func (wp *WorkerPool) Dispatch(recordID int64) {
	select {
	case wp.jobs <- recordID:
	default:
		logging.Default().Warn("notification queue full, dropping assignment", "record_id", recordID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan int64 {
	return wp.jobs
}
