package services

import (
	"context"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
	"github.com/caelus-deploy/caelus/services/accounts/domain/repositories"
	domainsvcs "github.com/caelus-deploy/caelus/services/accounts/domain/services"
)

// JobService lists reconcile jobs and runs them.
//
// Running a job renders the deployment's values against its desired template
// and records the result: ready (or deleted) on success, error with the
// message otherwise. Installing the rendered release is not done here.
type JobService struct {
	repo    repositories.JobRepository
	catalog repositories.TemplateCatalog
	log     logger.Logger
}

// NewJobService returns a JobService.
func NewJobService(repo repositories.JobRepository, catalog repositories.TemplateCatalog, log logger.Logger) *JobService {
	return &JobService{repo: repo, catalog: catalog, log: log}
}

// List returns jobs matching f.
func (s *JobService) List(ctx context.Context, f models.JobFilter) ([]*models.ReconcileJob, error) {
	jobs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Run claims a queued job for worker, reconciles its deployment and closes
// the job. A job someone else already claimed yields ErrJobNotFound.
func (s *JobService) Run(ctx context.Context, jobID int64, worker string) (models.JobOutcome, error) {
	job, d, err := s.repo.Claim(ctx, jobID, worker)
	if err != nil {
		return models.JobOutcome{}, fmt.Errorf("claim job %d: %w", jobID, err)
	}
	s.log.InfoContext(ctx, "reconcile started",
		"job_id", job.ID, "deployment_id", d.ID, "reason", job.Reason, "generation", job.Generation, "worker", worker)

	outcome := s.reconcile(ctx, job, d)
	if err := s.repo.Finish(ctx, job.ID, outcome); err != nil {
		return models.JobOutcome{}, fmt.Errorf("finish job %d: %w", jobID, err)
	}

	if outcome.Error != nil {
		s.log.WarnContext(ctx, "reconcile failed",
			"job_id", job.ID, "deployment_id", d.ID, "error", *outcome.Error)
	} else {
		s.log.InfoContext(ctx, "reconcile finished",
			"job_id", job.ID, "deployment_id", d.ID, "status", outcome.Status)
	}
	return outcome, nil
}

func (s *JobService) reconcile(ctx context.Context, job *models.ReconcileJob, d *models.Deployment) models.JobOutcome {
	if err := s.apply(ctx, job, d); err != nil {
		msg := err.Error()
		return models.JobOutcome{Status: models.StatusError, AppliedTemplateID: d.AppliedTemplateID, Error: &msg}
	}
	if job.Reason == models.ReasonDelete {
		return models.JobOutcome{Status: models.StatusDeleted, AppliedTemplateID: d.AppliedTemplateID}
	}
	applied := d.TemplateID
	return models.JobOutcome{Status: domainsvcs.SettledStatus(job.Reason), AppliedTemplateID: &applied}
}

func (s *JobService) apply(ctx context.Context, job *models.ReconcileJob, d *models.Deployment) error {
	if d.UID == "" {
		return fmt.Errorf("deployment %d has no uid", d.ID)
	}
	if job.Reason == models.ReasonDelete {
		return nil
	}
	tmpl, err := s.catalog.Template(ctx, d.TemplateID)
	if err != nil {
		return fmt.Errorf("desired template: %w", err)
	}
	merged, err := domainsvcs.RenderValues(tmpl, d.UserValues)
	if err != nil {
		return err
	}
	s.log.DebugContext(ctx, "release values rendered",
		"deployment_uid", d.UID, "template_id", tmpl.ID, "keys", len(merged))
	return nil
}
