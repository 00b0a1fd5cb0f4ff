// Package events holds the payloads the accounts repositories publish through
// the outbox.
package events

import (
	"time"

	"github.com/google/uuid"
)

// TopicReconcileRequested carries a job the worker should run.
const TopicReconcileRequested = "deployment.reconcile_requested"

// SchemaVersion is the current version of every accounts event payload.
const SchemaVersion = 1

// ReconcileRequestedEvent is published in the transaction that queues a
// reconcile job.
type ReconcileRequestedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	JobID        int64     `json:"job_id"`
	DeploymentID int64     `json:"deployment_id"`
	Reason       string    `json:"reason"`
	Generation   int64     `json:"generation"`
	OccurredAt   time.Time `json:"occurred_at"`
}
