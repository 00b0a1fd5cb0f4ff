package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/caelus-deploy/caelus/pkg/database"
	"github.com/caelus-deploy/caelus/pkg/events"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	domainevents "github.com/caelus-deploy/caelus/services/accounts/domain/events"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

const jobColumns = `id, deployment_id, reason, generation, status, locked_by, last_error, created_at, updated_at`

// JobRepository implements repositories.JobRepository against PostgreSQL.
type JobRepository struct {
	db *database.Database
}

// NewJobRepository returns a JobRepository backed by the given pool.
func NewJobRepository(db *database.Database) *JobRepository {
	return &JobRepository{db: db}
}

// List returns jobs matching f ordered by id.
func (r *JobRepository) List(ctx context.Context, f models.JobFilter) ([]*models.ReconcileJob, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.DeploymentID != 0 {
		args = append(args, f.DeploymentID)
		where = append(where, fmt.Sprintf("deployment_id = $%d", len(args)))
	}
	query := `SELECT ` + jobColumns + ` FROM deployment_reconcile_job`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, f.EffectiveLimit())
	query += fmt.Sprintf(` ORDER BY id LIMIT $%d`, len(args))

	rows, err := r.db.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.ReconcileJob{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// Claim locks a queued job for worker. Concurrent claims of the same job
// race on the status check; the loser sees ErrJobNotFound.
func (r *JobRepository) Claim(ctx context.Context, id int64, worker string) (*models.ReconcileJob, *models.Deployment, error) {
	var (
		job *models.ReconcileJob
		d   *models.Deployment
	)
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		job, err = scanJob(tx.QueryRowContext(ctx,
			`UPDATE deployment_reconcile_job
			 SET status = $2, locked_by = $3, updated_at = now()
			 WHERE id = $1 AND status = $4
			 RETURNING `+jobColumns,
			id, string(models.JobRunning), worker, string(models.JobQueued)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return accountsdomain.ErrJobNotFound
			}
			return fmt.Errorf("claim job: %w", err)
		}

		d, err = scanDeployment(tx.QueryRowContext(ctx,
			`SELECT `+deploymentColumns+` FROM deployment WHERE id = $1`, job.DeploymentID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return accountsdomain.ErrDeploymentNotFound
			}
			return fmt.Errorf("query job deployment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return job, d, nil
}

// Finish closes a running job and records outcome on its deployment when
// the deployment has not moved past the job's generation.
func (r *JobRepository) Finish(ctx context.Context, id int64, outcome models.JobOutcome) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var (
			deploymentID int64
			generation   int64
		)
		err := tx.QueryRowContext(ctx,
			`UPDATE deployment_reconcile_job
			 SET status = $2, last_error = $3, locked_by = NULL, updated_at = now()
			 WHERE id = $1 AND status = $4
			 RETURNING deployment_id, generation`,
			id, string(outcome.JobStatus()), nullString(outcome.Error), string(models.JobRunning),
		).Scan(&deploymentID, &generation)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return accountsdomain.ErrJobNotFound
			}
			return fmt.Errorf("finish job: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE deployment
			 SET status = $3, applied_template_id = $4, last_error = $5, updated_at = now()
			 WHERE id = $1 AND generation = $2`,
			deploymentID, generation, string(outcome.Status), nullInt64(outcome.AppliedTemplateID), nullString(outcome.Error),
		); err != nil {
			return fmt.Errorf("settle deployment: %w", err)
		}
		return nil
	})
}

// enqueueJob inserts a queued job inside tx and announces it through the
// outbox. The partial unique index on open jobs turns a second enqueue into
// ErrDeploymentInProgress.
func enqueueJob(ctx context.Context, tx *sql.Tx, bus *events.EventBus, deploymentID int64, reason models.JobReason, generation int64) error {
	var job models.ReconcileJob
	err := tx.QueryRowContext(ctx,
		`INSERT INTO deployment_reconcile_job (deployment_id, reason, generation, status)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		deploymentID, string(reason), generation, string(models.JobQueued),
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return accountsdomain.ErrDeploymentInProgress
		}
		return fmt.Errorf("insert reconcile job: %w", err)
	}

	if bus == nil {
		return nil
	}
	event := domainevents.ReconcileRequestedEvent{
		EventID:      uuid.New(),
		Version:      domainevents.SchemaVersion,
		JobID:        job.ID,
		DeploymentID: deploymentID,
		Reason:       string(reason),
		Generation:   generation,
		OccurredAt:   job.CreatedAt,
	}
	msg, err := events.NewEventMessage(event.EventID, event.Version, event)
	if err != nil {
		return err
	}
	if err := bus.PublishTx(ctx, tx, domainevents.TopicReconcileRequested, msg); err != nil {
		return fmt.Errorf("publish reconcile requested: %w", err)
	}
	return nil
}

func scanJob(row interface{ Scan(...any) error }) (*models.ReconcileJob, error) {
	var (
		j         models.ReconcileJob
		reason    string
		status    string
		lockedBy  sql.NullString
		lastError sql.NullString
	)
	if err := row.Scan(&j.ID, &j.DeploymentID, &reason, &j.Generation, &status,
		&lockedBy, &lastError, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Reason = models.JobReason(reason)
	j.Status = models.JobStatus(status)
	if lockedBy.Valid {
		j.LockedBy = &lockedBy.String
	}
	if lastError.Valid {
		j.LastError = &lastError.String
	}
	return &j, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
