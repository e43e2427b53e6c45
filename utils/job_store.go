package utils

import (
	"sync"
	"time"

	"restochain-backend/dtos"
	"restochain-backend/inventory"

	"github.com/google/uuid"
)

// JobStore keeps reconciliation jobs in memory. Finished jobs are dropped
// an hour after completion.
type JobStore struct {
	jobs map[string]*dtos.ReconcileJob
	mu   sync.RWMutex
	now  func() time.Time
}

func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*dtos.ReconcileJob),
		now:  time.Now,
	}
}

// CleanupOldJobs removes completed/failed jobs older than 1 hour.
func (js *JobStore) CleanupOldJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	cutoff := js.now().Add(-1 * time.Hour)
	for id, job := range js.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(js.jobs, id)
		}
	}
}

// CreateJob registers a pending job over total branches.
func (js *JobStore) CreateJob(total int) dtos.ReconcileJob {
	js.CleanupOldJobs()

	js.mu.Lock()
	defer js.mu.Unlock()

	job := &dtos.ReconcileJob{
		ID:            uuid.NewString(),
		Status:        dtos.JobStatusPending,
		Total:         total,
		Discrepancies: []inventory.Discrepancy{},
		Errors:        []dtos.JobError{},
		StartedAt:     js.now(),
	}
	js.jobs[job.ID] = job
	return *job
}

// GetJob returns a copy of the job, safe to serialize while the job runs.
func (js *JobStore) GetJob(id string) (dtos.ReconcileJob, bool) {
	js.mu.RLock()
	defer js.mu.RUnlock()

	job, exists := js.jobs[id]
	if !exists {
		return dtos.ReconcileJob{}, false
	}
	out := *job
	out.Discrepancies = append([]inventory.Discrepancy{}, job.Discrepancies...)
	out.Errors = append([]dtos.JobError{}, job.Errors...)
	return out, true
}

func (js *JobStore) SetProcessing(id string) {
	js.update(id, func(job *dtos.ReconcileJob) {
		job.Status = dtos.JobStatusProcessing
	})
}

// RecordBranch stores one branch's outcome and advances progress.
func (js *JobStore) RecordBranch(id, branchID string, found []inventory.Discrepancy, err error) {
	js.update(id, func(job *dtos.ReconcileJob) {
		job.Processed++
		if err != nil {
			job.Failed++
			job.Errors = append(job.Errors, dtos.JobError{BranchID: branchID, Message: err.Error()})
		} else {
			job.Discrepancies = append(job.Discrepancies, found...)
		}
		if job.Total > 0 {
			job.Progress = job.Processed * 100 / job.Total
		}
	})
}

// CompleteJob marks the job completed, or failed when every branch failed.
func (js *JobStore) CompleteJob(id string) {
	js.update(id, func(job *dtos.ReconcileJob) {
		job.Status = dtos.JobStatusCompleted
		if job.Total > 0 && job.Failed == job.Total {
			job.Status = dtos.JobStatusFailed
		}
		job.Progress = 100
		now := js.now()
		job.CompletedAt = &now
	})
}

func (js *JobStore) update(id string, fn func(*dtos.ReconcileJob)) {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[id]; exists {
		fn(job)
	}
}
