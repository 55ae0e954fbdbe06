package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sjperalta/fintera-tuition/internal/jobs"
	"github.com/sjperalta/fintera-tuition/pkg/logger"
)

// JobStatus is the worker snapshot exposed to admins
type JobStatus struct {
	jobs.WorkerStats
	CachedReconciliations int `json:"cached_reconciliations"`
}

type JobService struct {
	worker         *jobs.Worker
	dues           *DuesService
	reconciliation *ReconciliationService
	now            func() time.Time
}

func NewJobService(worker *jobs.Worker, dues *DuesService, reconciliation *ReconciliationService) *JobService {
	return &JobService{
		worker:         worker,
		dues:           dues,
		reconciliation: reconciliation,
		now:            time.Now,
	}
}

func (s *JobService) GetStatus() JobStatus {
	return JobStatus{
		WorkerStats:           s.worker.GetStats(),
		CachedReconciliations: s.reconciliation.CacheSize(),
	}
}

// TriggerReminders puts a dues reminder scan on the worker pool instead of
// waiting for the schedule. The scan outlives the request that started it.
func (s *JobService) TriggerReminders(ctx context.Context) error {
	now := s.now()
	accepted := s.worker.Enqueue(func(jobCtx context.Context) error {
		queued, err := s.dues.SendReminders(jobCtx, now)
		if err != nil {
			return fmt.Errorf("manual dues reminder scan: %w", err)
		}
		logger.Info("manual dues reminder scan finished", "queued", queued)
		return nil
	})
	if !accepted {
		return ErrUnavailable
	}
	logger.Log.InfoContext(ctx, "manual dues reminder scan queued")
	return nil
}
