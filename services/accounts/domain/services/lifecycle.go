package services

import (
	"encoding/json"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/values"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

// CheckUpgrade allows moving d to target only forward within the product d
// currently runs.
func CheckUpgrade(d *models.Deployment, current, target *models.TemplateInfo) error {
	if target.ID <= d.TemplateID {
		return fmt.Errorf("%w: can only upgrade to newer versions, not downgrade", accountsdomain.ErrInvalidUpgrade)
	}
	if current != nil && current.ProductID != target.ProductID {
		return fmt.Errorf("%w: upgrade template must belong to the same product", accountsdomain.ErrInvalidUpgrade)
	}
	return nil
}

// RenderValues validates userValues against t's schema and returns the merged
// values a release of t would be installed with.
func RenderValues(t *models.TemplateInfo, userValues json.RawMessage) (map[string]any, error) {
	merged, err := values.Render(t.ValuesSchema, t.DefaultValues, userValues)
	if err != nil {
		return nil, fmt.Errorf("%w: template %d: %w", accountsdomain.ErrInvalidUserValues, t.ID, err)
	}
	return merged, nil
}

// SettledStatus is the status a successful job of reason leaves behind.
func SettledStatus(reason models.JobReason) models.DeploymentStatus {
	if reason == models.ReasonDelete {
		return models.StatusDeleted
	}
	return models.StatusReady
}
