package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/appdever01/pilox-backend/internal/shared/utils"
)

// Worker polls the queue and dispatches jobs to registered handlers.
type Worker struct {
	queue    *Queue
	config   WorkerConfig
	handlers map[string]Handler
	mu       sync.RWMutex
	stopped  bool
	wg       sync.WaitGroup
}

// NewWorker creates a worker over the queue.
func NewWorker(queue *Queue, config WorkerConfig) *Worker {
	return &Worker{
		queue:    queue,
		config:   config,
		handlers: make(map[string]Handler),
	}
}

// RegisterHandler registers a handler for its job type.
func (w *Worker) RegisterHandler(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[handler.Type()] = handler
	utils.LogInfo("Registered job handler", map[string]interface{}{
		"type": handler.Type(),
	})
}

// Start launches the worker goroutines.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("worker is stopped, cannot restart")
	}
	w.mu.Unlock()

	utils.LogInfo("Starting job worker", map[string]interface{}{
		"concurrency": w.config.Concurrency,
	})

	for i := 0; i < w.config.Concurrency; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}

	return nil
}

// Stop signals the workers to finish and waits for them.
func (w *Worker) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	w.wg.Wait()

	utils.LogInfo("Job worker stopped", nil)
}

// ErrNoJobsAvailable signals an empty queue poll.
var ErrNoJobsAvailable = fmt.Errorf("no jobs available")

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			w.mu.RLock()
			stopped := w.stopped
			w.mu.RUnlock()
			if stopped {
				return
			}

			if err := w.processNext(ctx, workerID); err != nil && err != ErrNoJobsAvailable {
				utils.LogWarn("Worker poll error", map[string]interface{}{
					"worker": workerID,
					"error":  err.Error(),
				})
			}
		}
	}
}

func (w *Worker) processNext(ctx context.Context, workerID int) error {
	job, err := w.queue.Dequeue(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		return ErrNoJobsAvailable
	}

	w.mu.RLock()
	handler, exists := w.handlers[job.Type]
	w.mu.RUnlock()

	if !exists {
		w.queue.MarkFailed(ctx, job.ID, fmt.Errorf("no handler registered for job type: %s", job.Type))
		return nil
	}

	jobCtx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	start := time.Now()
	err = handler.Handle(jobCtx, job)
	duration := time.Since(start)

	if err != nil {
		utils.LogError("Job failed", err, map[string]interface{}{
			"worker":   workerID,
			"job_id":   job.ID.String(),
			"type":     job.Type,
			"attempt":  job.Attempts,
			"duration": duration.String(),
		})
		if markErr := w.queue.MarkFailed(ctx, job.ID, err); markErr != nil {
			utils.LogWarn("Failed to mark job as failed", map[string]interface{}{
				"job_id": job.ID.String(),
				"error":  markErr.Error(),
			})
		}
		return nil
	}

	utils.LogInfo("Job completed", map[string]interface{}{
		"worker":   workerID,
		"job_id":   job.ID.String(),
		"type":     job.Type,
		"duration": duration.String(),
	})
	if err := w.queue.MarkCompleted(ctx, job.ID); err != nil {
		utils.LogWarn("Failed to mark job as completed", map[string]interface{}{
			"job_id": job.ID.String(),
			"error":  err.Error(),
		})
	}

	return nil
}
