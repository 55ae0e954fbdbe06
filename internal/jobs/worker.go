package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sjperalta/fintera-tuition/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan Job
	asyncSem      chan struct{}
	maxConcurrent int
	stats         WorkerStats
	schedules     map[string]*ScheduleStats
	statsMu       sync.RWMutex
	closeOnce     sync.Once
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int                      `json:"active_jobs"`
	CompletedJobs int64                    `json:"completed_jobs"` // finished jobs, failed ones included
	FailedJobs    int64                    `json:"failed_jobs"`
	QueueLength   int                      `json:"queue_length"`
	MaxConcurrent int                      `json:"max_concurrent"`
	Schedules     map[string]ScheduleStats `json:"schedules"`
}

// ScheduleStats describes one named recurring job
type ScheduleStats struct {
	Interval  string     `json:"interval"`
	Runs      int64      `json:"runs"`
	Failures  int64      `json:"failures"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan Job, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		schedules:     make(map[string]*ScheduleStats),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool and reports whether
// it was accepted. Jobs enqueued after Shutdown are dropped.
func (w *Worker) Enqueue(job Job) bool {
	if w.ctx.Err() != nil {
		logger.Warn("worker stopped, dropping job")
		return false
	}
	select {
	case <-w.ctx.Done():
		logger.Warn("worker stopped, dropping job")
		return false
	case w.queue <- job:
		return true
	default:
		logger.Warn("worker queue full, running job synchronously")
		w.run("sync", job)
		return true
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(job Job) {
	if w.ctx.Err() != nil {
		logger.Warn("worker stopped, dropping async job")
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		select {
		case w.asyncSem <- struct{}{}:
		case <-w.ctx.Done():
			return
		}
		defer func() { <-w.asyncSem }()

		w.run("async", job)
	}()
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job := <-w.queue:
			start := time.Now()
			if w.run(fmt.Sprintf("pool-%d", workerID), job) == nil {
				logger.Debug("job completed", "worker", workerID, "elapsed", time.Since(start))
			}
		}
	}
}

// run executes a job with panic recovery and bookkeeping
func (w *Worker) run(source string, job Job) (err error) {
	w.trackJobStart()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panic: %v", r)
		}
		if err != nil {
			logger.Error("job failed", "source", source, "error", err)
			w.trackJobFailure()
		}
		w.trackJobEnd()
	}()
	return job(w.ctx)
}

// ScheduleEvery runs a named job at fixed intervals. The first run happens
// after the interval, not at startup.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a named job once at startup, then at fixed
// intervals, so restarts do not postpone the job by a full interval.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.statsMu.Lock()
	w.schedules[name] = &ScheduleStats{Interval: interval.String()}
	w.statsMu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.runScheduledJob(name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduledJob(name, job)
			}
		}
	}()
}

func (w *Worker) runScheduledJob(name string, job Job) {
	start := time.Now()
	err := w.run(name, job)

	w.statsMu.Lock()
	if s, ok := w.schedules[name]; ok {
		s.Runs++
		s.LastRunAt = &start
		s.LastError = ""
		if err != nil {
			s.Failures++
			s.LastError = err.Error()
		}
	}
	w.statsMu.Unlock()

	if err == nil {
		logger.Info("scheduled job completed", "job", name, "elapsed", time.Since(start))
	}
}

// Shutdown gracefully stops all workers. The queue is never closed, so a
// concurrent Enqueue cannot send on a closed channel; jobs still queued are
// dropped.
func (w *Worker) Shutdown() {
	w.closeOnce.Do(w.cancel)
	w.wg.Wait()
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.Schedules = make(map[string]ScheduleStats, len(w.schedules))
	for name, s := range w.schedules {
		stats.Schedules[name] = *s
	}
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
