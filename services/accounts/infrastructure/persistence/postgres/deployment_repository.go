package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/database"
	"github.com/caelus-deploy/caelus/pkg/events"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

const deploymentColumns = `id, deployment_uid, user_id, template_id, applied_template_id, domainname,
	user_values_json, status, generation, last_error, created_at`

// DeploymentRepository implements repositories.DeploymentRepository against PostgreSQL.
type DeploymentRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewDeploymentRepository returns a DeploymentRepository backed by the given pool.
// When bus is non-nil, every queued job is announced through the outbox.
func NewDeploymentRepository(db *database.Database, bus *events.EventBus) *DeploymentRepository {
	return &DeploymentRepository{db: db, bus: bus}
}

// Save inserts a pending deployment for an active user and an active
// template and queues its create job in the same transaction.
func (r *DeploymentRepository) Save(ctx context.Context, d *models.Deployment) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var status string
		err := tx.QueryRowContext(ctx,
			`INSERT INTO deployment (deployment_uid, user_id, template_id, domainname, user_values_json, status, generation)
			 SELECT $1, u.id, t.id, $4, $5, $6, 1
			 FROM app_user u, product_template_version t
			 WHERE u.id = $2 AND u.deleted_at IS NULL
			   AND t.id = $3 AND t.deleted_at IS NULL
			 RETURNING id, status, generation, created_at`,
			d.UID, d.UserID, d.TemplateID, d.Domainname.String(), nullJSON(d.UserValues), string(models.StatusPending),
		).Scan(&d.ID, &status, &d.Generation, &d.CreatedAt)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				// The user or the template vanished since the service checked them.
				return accountsdomain.ErrTemplateNotFound
			case database.IsUniqueViolation(err):
				return accountsdomain.ErrDeploymentAlreadyExists
			case database.IsForeignKeyViolation(err):
				return accountsdomain.ErrTemplateNotFound
			}
			return fmt.Errorf("insert deployment: %w", err)
		}
		d.Status = models.DeploymentStatus(status)
		d.AppliedTemplateID, d.LastError = nil, nil
		return enqueueJob(ctx, tx, r.bus, d.ID, models.ReasonCreate, d.Generation)
	})
}

// GetByID returns an active deployment owned by userID.
func (r *DeploymentRepository) GetByID(ctx context.Context, userID, id int64) (*models.Deployment, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+deploymentColumns+` FROM deployment
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID)
	d, err := scanDeployment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountsdomain.ErrDeploymentNotFound
		}
		return nil, fmt.Errorf("query deployment: %w", err)
	}
	return d, nil
}

// ListByUser returns the user's active deployments ordered by id.
func (r *DeploymentRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Deployment, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+deploymentColumns+` FROM deployment
		 WHERE user_id = $1 AND deleted_at IS NULL ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query deployments: %w", err)
	}
	defer rows.Close()

	deployments := []*models.Deployment{}
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deployment: %w", err)
		}
		deployments = append(deployments, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployments: %w", err)
	}
	return deployments, nil
}

// Upgrade moves an active deployment to templateID and queues an update job.
func (r *DeploymentRepository) Upgrade(ctx context.Context, userID, id, templateID int64) (*models.Deployment, error) {
	var d *models.Deployment
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`UPDATE deployment
			 SET template_id = $3, status = $4, generation = generation + 1, last_error = NULL, updated_at = now()
			 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
			 RETURNING `+deploymentColumns,
			id, userID, templateID, string(models.StatusUpgrading))
		var err error
		if d, err = scanDeployment(row); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				return accountsdomain.ErrDeploymentNotFound
			case database.IsForeignKeyViolation(err):
				return accountsdomain.ErrTemplateNotFound
			}
			return fmt.Errorf("upgrade deployment: %w", err)
		}
		return enqueueJob(ctx, tx, r.bus, d.ID, models.ReasonUpdate, d.Generation)
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Delete marks a deployment owned by userID deleting, soft-deletes it and
// queues a delete job.
func (r *DeploymentRepository) Delete(ctx context.Context, userID, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var generation int64
		err := tx.QueryRowContext(ctx,
			`UPDATE deployment
			 SET status = $3, generation = generation + 1, last_error = NULL, deleted_at = now(), updated_at = now()
			 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
			 RETURNING generation`,
			id, userID, string(models.StatusDeleting),
		).Scan(&generation)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return accountsdomain.ErrDeploymentNotFound
			}
			return fmt.Errorf("delete deployment: %w", err)
		}
		return enqueueJob(ctx, tx, r.bus, id, models.ReasonDelete, generation)
	})
}

func scanDeployment(row interface{ Scan(...any) error }) (*models.Deployment, error) {
	var (
		d          models.Deployment
		uid        sql.NullString
		applied    sql.NullInt64
		domainname string
		userValues []byte
		status     string
		lastError  sql.NullString
	)
	if err := row.Scan(&d.ID, &uid, &d.UserID, &d.TemplateID, &applied, &domainname,
		&userValues, &status, &d.Generation, &lastError, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.UID = uid.String
	if applied.Valid {
		d.AppliedTemplateID = &applied.Int64
	}
	d.Domainname = models.Domainname(domainname)
	if len(userValues) > 0 {
		d.UserValues = userValues
	}
	d.Status = models.DeploymentStatus(status)
	if lastError.Valid {
		d.LastError = &lastError.String
	}
	return &d, nil
}

// nullJSON stores an empty document as SQL NULL.
func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
