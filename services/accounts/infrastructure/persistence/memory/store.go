// Package memory is an in-process accounts store backing the service, API and
// CLI tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

// Store holds users, deployments and reconcile jobs behind a single mutex.
type Store struct {
	mu sync.Mutex

	nextUserID       int64
	nextDeploymentID int64
	nextJobID        int64

	users       map[int64]*userRow
	deployments map[int64]*deploymentRow
	jobs        map[int64]*models.ReconcileJob
}

type userRow struct {
	user    models.User
	deleted bool
}

type deploymentRow struct {
	deployment models.Deployment
	deleted    bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		users:       make(map[int64]*userRow),
		deployments: make(map[int64]*deploymentRow),
		jobs:        make(map[int64]*models.ReconcileJob),
	}
}

// Users returns a UserRepository view of the store.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Deployments returns a DeploymentRepository view of the store.
func (s *Store) Deployments() *DeploymentRepository { return &DeploymentRepository{s: s} }

// Jobs returns a JobRepository view of the store.
func (s *Store) Jobs() *JobRepository { return &JobRepository{s: s} }

// UserRepository implements repositories.UserRepository in memory.
type UserRepository struct{ s *Store }

func (r *UserRepository) Save(_ context.Context, u *models.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.users {
		if !row.deleted && row.user.Email == u.Email {
			return accountsdomain.ErrUserAlreadyExists
		}
	}
	s.nextUserID++
	u.ID = s.nextUserID
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = &userRow{user: *u}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok || row.deleted {
		return nil, accountsdomain.ErrUserNotFound
	}
	u := row.user
	return &u, nil
}

func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.User{}
	for _, row := range s.users {
		if row.deleted {
			continue
		}
		u := row.user
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.users[id]
	if !ok || row.deleted {
		return accountsdomain.ErrUserNotFound
	}
	row.deleted = true
	for _, d := range s.deployments {
		if d.deployment.UserID == id {
			d.deleted = true
		}
	}
	return nil
}

// DeploymentRepository implements repositories.DeploymentRepository in memory.
// Template liveness is the service's concern here; the store only checks the user.
type DeploymentRepository struct{ s *Store }

func (r *DeploymentRepository) Save(_ context.Context, d *models.Deployment) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[d.UserID]; !ok || u.deleted {
		return accountsdomain.ErrUserNotFound
	}
	for _, row := range s.deployments {
		e := row.deployment
		if !row.deleted && e.UserID == d.UserID && e.TemplateID == d.TemplateID && e.Domainname == d.Domainname {
			return accountsdomain.ErrDeploymentAlreadyExists
		}
	}
	s.nextDeploymentID++
	d.ID = s.nextDeploymentID
	d.CreatedAt = time.Now().UTC()
	d.Status = models.StatusPending
	d.Generation = 1
	d.LastError = nil
	d.AppliedTemplateID = nil
	if _, err := s.enqueue(d.ID, models.ReasonCreate, d.Generation); err != nil {
		s.nextDeploymentID--
		return err
	}
	s.deployments[d.ID] = &deploymentRow{deployment: copyDeployment(d)}
	return nil
}

func (r *DeploymentRepository) GetByID(_ context.Context, userID, id int64) (*models.Deployment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.activeDeployment(userID, id)
	if err != nil {
		return nil, err
	}
	d := copyDeployment(&row.deployment)
	return &d, nil
}

func (r *DeploymentRepository) ListByUser(_ context.Context, userID int64) ([]*models.Deployment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.Deployment{}
	for _, row := range s.deployments {
		if row.deleted || row.deployment.UserID != userID {
			continue
		}
		d := copyDeployment(&row.deployment)
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *DeploymentRepository) Upgrade(_ context.Context, userID, id, templateID int64) (*models.Deployment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.activeDeployment(userID, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.enqueue(id, models.ReasonUpdate, row.deployment.Generation+1); err != nil {
		return nil, err
	}
	row.deployment.TemplateID = templateID
	row.deployment.Status = models.StatusUpgrading
	row.deployment.Generation++
	row.deployment.LastError = nil
	d := copyDeployment(&row.deployment)
	return &d, nil
}

func (r *DeploymentRepository) Delete(_ context.Context, userID, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := s.activeDeployment(userID, id)
	if err != nil {
		return err
	}
	if _, err := s.enqueue(id, models.ReasonDelete, row.deployment.Generation+1); err != nil {
		return err
	}
	row.deployment.Status = models.StatusDeleting
	row.deployment.Generation++
	row.deployment.LastError = nil
	row.deleted = true
	return nil
}

// JobRepository implements repositories.JobRepository in memory.
type JobRepository struct{ s *Store }

func (r *JobRepository) List(_ context.Context, f models.JobFilter) ([]*models.ReconcileJob, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*models.ReconcileJob{}
	for _, j := range s.jobs {
		if f.Matches(j) {
			c := copyJob(j)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > f.EffectiveLimit() {
		out = out[:f.EffectiveLimit()]
	}
	return out, nil
}

func (r *JobRepository) Claim(_ context.Context, id int64, worker string) (*models.ReconcileJob, *models.Deployment, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.Status != models.JobQueued {
		return nil, nil, accountsdomain.ErrJobNotFound
	}
	row, ok := s.deployments[j.DeploymentID]
	if !ok {
		return nil, nil, accountsdomain.ErrDeploymentNotFound
	}
	j.Status = models.JobRunning
	j.LockedBy = &worker
	j.UpdatedAt = time.Now().UTC()

	job, d := copyJob(j), copyDeployment(&row.deployment)
	return &job, &d, nil
}

func (r *JobRepository) Finish(_ context.Context, id int64, outcome models.JobOutcome) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok || j.Status != models.JobRunning {
		return accountsdomain.ErrJobNotFound
	}
	j.Status = outcome.JobStatus()
	j.LastError = outcome.Error
	j.LockedBy = nil
	j.UpdatedAt = time.Now().UTC()

	if row, ok := s.deployments[j.DeploymentID]; ok && row.deployment.Generation == j.Generation {
		row.deployment.Status = outcome.Status
		row.deployment.AppliedTemplateID = outcome.AppliedTemplateID
		row.deployment.LastError = outcome.Error
	}
	return nil
}

// activeDeployment returns the live row of a deployment owned by userID.
// Callers hold s.mu.
func (s *Store) activeDeployment(userID, id int64) (*deploymentRow, error) {
	row, ok := s.deployments[id]
	if !ok || row.deleted || row.deployment.UserID != userID {
		return nil, accountsdomain.ErrDeploymentNotFound
	}
	return row, nil
}

// enqueue adds a queued job unless the deployment already has an open one.
// Callers hold s.mu.
func (s *Store) enqueue(deploymentID int64, reason models.JobReason, generation int64) (*models.ReconcileJob, error) {
	for _, j := range s.jobs {
		if j.DeploymentID == deploymentID && j.IsOpen() {
			return nil, accountsdomain.ErrDeploymentInProgress
		}
	}
	s.nextJobID++
	now := time.Now().UTC()
	j := &models.ReconcileJob{
		ID:           s.nextJobID,
		DeploymentID: deploymentID,
		Reason:       reason,
		Generation:   generation,
		Status:       models.JobQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.jobs[j.ID] = j
	return j, nil
}

func copyDeployment(d *models.Deployment) models.Deployment {
	out := *d
	out.UserValues = slices.Clone(d.UserValues)
	if d.AppliedTemplateID != nil {
		v := *d.AppliedTemplateID
		out.AppliedTemplateID = &v
	}
	if d.LastError != nil {
		v := *d.LastError
		out.LastError = &v
	}
	return out
}

func copyJob(j *models.ReconcileJob) models.ReconcileJob {
	out := *j
	if j.LockedBy != nil {
		v := *j.LockedBy
		out.LockedBy = &v
	}
	if j.LastError != nil {
		v := *j.LastError
		out.LastError = &v
	}
	return out
}
