package locg

import (
	"context"
	"log/slog"
	"sync"
)

// Task is one crawl submitted to the pool.
type Task func(ctx context.Context) error

// WorkerPool runs crawl tasks on a fixed number of goroutines. The scraper
// is rate limited by the client, so a small pool only overlaps page loads.
type WorkerPool struct {
	workerCount int
	taskQueue   chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *slog.Logger
	closed      bool
	closeMux    sync.Mutex
}

// NewWorkerPool creates a pool bound to ctx; cancelling ctx stops the workers.
func NewWorkerPool(ctx context.Context, workerCount int, logger *slog.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		workerCount: workerCount,
		taskQueue:   make(chan Task, workerCount*2),
		ctx:         poolCtx,
		cancel:      cancel,
		logger:      logger,
	}
}

// Start launches worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	wp.logger.Debug("crawl workers started", "workers", wp.workerCount)
}

// Submit queues a task. It reports false if the pool is shutting down.
func (wp *WorkerPool) Submit(task Task) bool {
	wp.closeMux.Lock()
	defer wp.closeMux.Unlock()
	if wp.closed {
		return false
	}

	select {
	case wp.taskQueue <- task:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Wait closes the queue and blocks until queued tasks finish.
func (wp *WorkerPool) Wait() {
	wp.closeMux.Lock()
	if !wp.closed {
		close(wp.taskQueue)
		wp.closed = true
	}
	wp.closeMux.Unlock()

	wp.wg.Wait()
	wp.cancel()
}

// Shutdown cancels running tasks and waits for the workers to exit.
func (wp *WorkerPool) Shutdown() {
	wp.cancel()
	wp.Wait()
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		select {
		case <-wp.ctx.Done():
			// drain so Wait returns
			continue
		default:
		}

		if err := task(wp.ctx); err != nil {
			wp.logger.Warn("crawl task failed", "worker", id, "error", err)
		}
	}
}
