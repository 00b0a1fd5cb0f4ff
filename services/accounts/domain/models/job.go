package models

import "time"

// JobReason is the change that queued a reconcile job.
type JobReason string

const (
	ReasonCreate JobReason = "create"
	ReasonUpdate JobReason = "update"
	ReasonDelete JobReason = "delete"
)

// JobStatus is a reconcile job's state. Queued and running jobs are open; a
// deployment has at most one open job.
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// ReconcileJob asks the worker to bring a deployment to the state recorded at
// Generation.
type ReconcileJob struct {
	ID           int64
	DeploymentID int64
	Reason       JobReason
	Generation   int64
	Status       JobStatus
	LockedBy     *string
	LastError    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobFilter narrows a job listing. Zero fields match everything; Limit
// defaults to 100.
type JobFilter struct {
	Status       JobStatus
	DeploymentID int64
	Limit        int
}

// DefaultJobLimit caps job listings without an explicit limit.
const DefaultJobLimit = 100

// EffectiveLimit returns Limit, or DefaultJobLimit when it is not positive.
func (f JobFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultJobLimit
	}
	return f.Limit
}

// Matches reports whether j passes the filter's status and deployment checks.
func (f JobFilter) Matches(j *ReconcileJob) bool {
	if f.Status != "" && j.Status != f.Status {
		return false
	}
	if f.DeploymentID != 0 && j.DeploymentID != f.DeploymentID {
		return false
	}
	return true
}

// JobOutcome is what running a job did to its deployment. A nil Error means
// the job is done; otherwise it failed and Status is StatusError.
type JobOutcome struct {
	Status            DeploymentStatus
	AppliedTemplateID *int64
	Error             *string
}

// JobStatus returns the terminal job status matching the outcome.
func (o JobOutcome) JobStatus() JobStatus {
	if o.Error != nil {
		return JobFailed
	}
	return JobDone
}

// IsOpen reports whether the job still holds its deployment's single open slot.
func (j *ReconcileJob) IsOpen() bool {
	return j.Status == JobQueued || j.Status == JobRunning
}
