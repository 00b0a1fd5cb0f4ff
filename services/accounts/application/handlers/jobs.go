package handlers

import (
	"net/http"

	"github.com/caelus-deploy/caelus/pkg/errhttp"
	"github.com/caelus-deploy/caelus/pkg/httpx"
	pkgvalidator "github.com/caelus-deploy/caelus/pkg/validator"
	appsvcs "github.com/caelus-deploy/caelus/services/accounts/application/services"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

// JobHandler serves /jobs.
type JobHandler struct {
	svc *appsvcs.Services
}

// NewJobHandler returns a JobHandler backed by the given services.
func NewJobHandler(svc *appsvcs.Services) *JobHandler {
	return &JobHandler{svc: svc}
}

// List returns reconcile jobs, oldest first.
//
//	@Summary		List reconcile jobs
//	@Tags			jobs
//	@Produce		json
//	@Param			status			query	string	false	"Job status"	Enums(queued, running, done, failed)
//	@Param			deployment_id	query	int		false	"Deployment ID"
//	@Param			limit			query	int		false	"Maximum number of jobs (default 100)"
//	@Success		200				{array}		JobResponse
//	@Failure		400				{object}	ErrorResponse
//	@Failure		422				{object}	ErrorResponse
//	@Router			/jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseJobQuery(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	if err := pkgvalidator.Validate(q); err != nil {
		httpx.ValidationError(w, pkgvalidator.FormatValidationErrors(err))
		return
	}

	jobs, err := h.svc.Job.List(r.Context(), models.JobFilter{
		Status:       models.JobStatus(q.Status),
		DeploymentID: q.DeploymentID,
		Limit:        int(q.Limit),
	})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	out := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		out[i] = toJobResponse(j)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func parseJobQuery(r *http.Request) (*JobListQuery, error) {
	q := &JobListQuery{Status: r.URL.Query().Get("status")}
	var err error
	if q.DeploymentID, err = httpx.QueryInt(r, "deployment_id"); err != nil {
		return nil, err
	}
	if q.Limit, err = httpx.QueryInt(r, "limit"); err != nil {
		return nil, err
	}
	return q, nil
}
