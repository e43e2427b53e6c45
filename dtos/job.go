package dtos

import (
	"time"

	"restochain-backend/inventory"
)

// ReconcileJob tracks a chain-wide stock reconciliation running in the background.
type ReconcileJob struct {
	ID            string                  `json:"id"`
	Status        string                  `json:"status"`   // pending, processing, completed, failed
	Progress      int                     `json:"progress"` // 0-100 percentage
	Total         int                     `json:"total"`
	Processed     int                     `json:"processed"`
	Failed        int                     `json:"failed"`
	Discrepancies []inventory.Discrepancy `json:"discrepancies"`
	Errors        []JobError              `json:"errors"`
	StartedAt     time.Time               `json:"startedAt"`
	CompletedAt   *time.Time              `json:"completedAt"`
}

// JobError is a branch the job could not check.
type JobError struct {
	BranchID string `json:"branchId"`
	Message  string `json:"message"`
}

const (
	JobStatusPending    = "pending"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)
