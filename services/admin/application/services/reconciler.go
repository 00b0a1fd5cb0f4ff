package services

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/telemetry"
	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
	domainsvcs "github.com/caelus-deploy/caelus/services/admin/domain/services"
)

// Reconciler keeps each product's canonical pointer consistent as templates
// come and go. Every operation is a sequential chain of gateway calls; state
// is fetched immediately before each decision and nothing is cached. The
// first failure is returned and nothing already written is rolled back.
type Reconciler struct {
	registry  *Registry
	gw        domain.Gateway
	log       logger.Logger
	tracer    trace.Tracer
	decisions metric.Int64Counter
}

// CreateResult is the outcome of Reconciler.CreateTemplate.
type CreateResult struct {
	Template *models.Template `json:"template"`
	Product  *models.Product  `json:"product"`
	Promoted bool             `json:"promoted"`
}

// DeleteResult is the outcome of Reconciler.DeleteTemplate.
type DeleteResult struct {
	Product  *models.Product     `json:"product"`
	Decision domainsvcs.Decision `json:"decision"`
}

// NewReconciler returns a Reconciler writing pointers through gw.
func NewReconciler(registry *Registry, gw domain.Gateway, log logger.Logger) *Reconciler {
	meter := telemetry.Meter("admin")
	decisions, err := meter.Int64Counter("caelus.reconciler.decisions",
		metric.WithDescription("Canonical pointer decisions by trigger and outcome"),
	)
	if err != nil {
		log.Warn("reconciler counter unavailable", "error", err)
		decisions, _ = noop.NewMeterProvider().Meter("admin").Int64Counter("caelus.reconciler.decisions")
	}
	return &Reconciler{
		registry:  registry,
		gw:        gw,
		log:       log,
		tracer:    telemetry.Tracer("admin"),
		decisions: decisions,
	}
}

// CreateTemplate creates a template and promotes it when the product had no
// canonical template.
func (r *Reconciler) CreateTemplate(ctx context.Context, productID int64, imageRef *string) (res *CreateResult, err error) {
	ctx, span := r.tracer.Start(ctx, "reconciler.CreateTemplate",
		trace.WithAttributes(attribute.Int64("product_id", productID)))
	defer func() { endSpan(span, err) }()

	t, err := r.registry.CreateTemplate(ctx, productID, imageRef)
	if err != nil {
		return nil, err
	}
	p, err := r.registry.Product(ctx, productID)
	if err != nil {
		return nil, err
	}

	d := domainsvcs.AfterCreate(domainsvcs.PointerOf(p.TemplateID), *t)
	if id, ok := d.Write(); ok {
		if p, err = r.gw.SetProductTemplate(ctx, productID, id); err != nil {
			return nil, err
		}
	}
	r.record(ctx, "create", d, productID)

	return &CreateResult{Template: t, Product: p, Promoted: d.Changed}, nil
}

// DeleteTemplate deletes a template. When it was canonical the newest
// remaining template is promoted; with none left the product stays unset.
func (r *Reconciler) DeleteTemplate(ctx context.Context, productID, templateID int64) (res *DeleteResult, err error) {
	ctx, span := r.tracer.Start(ctx, "reconciler.DeleteTemplate",
		trace.WithAttributes(attribute.Int64("product_id", productID), attribute.Int64("template_id", templateID)))
	defer func() { endSpan(span, err) }()

	p, err := r.registry.Product(ctx, productID)
	if err != nil {
		return nil, err
	}
	prior := domainsvcs.PointerOf(p.TemplateID)

	if err := r.registry.DeleteTemplate(ctx, productID, templateID); err != nil {
		return nil, err
	}

	if !prior.Is(templateID) {
		d := domainsvcs.AfterDelete(prior, templateID, nil)
		r.record(ctx, "delete", d, productID)
		return &DeleteResult{Product: p, Decision: d}, nil
	}

	// The gateway cleared the pointer together with the delete; read what is
	// left now rather than trusting the list from before the delete.
	remaining, err := r.registry.ListTemplates(ctx, productID)
	if err != nil {
		return nil, err
	}
	d := domainsvcs.AfterDelete(prior, templateID, remaining)
	if id, ok := d.Write(); ok {
		if p, err = r.gw.SetProductTemplate(ctx, productID, id); err != nil {
			return nil, err
		}
	} else {
		p.TemplateID = d.Next.Ptr()
	}
	r.record(ctx, "delete", d, productID)

	return &DeleteResult{Product: p, Decision: d}, nil
}

// SetCanonical points the product at templateID. Concurrent calls are not
// coordinated: the last write wins. A template that does not belong to the
// product is ErrNotFound and leaves the pointer unchanged.
func (r *Reconciler) SetCanonical(ctx context.Context, productID, templateID int64) (p *models.Product, err error) {
	ctx, span := r.tracer.Start(ctx, "reconciler.SetCanonical",
		trace.WithAttributes(attribute.Int64("product_id", productID), attribute.Int64("template_id", templateID)))
	defer func() { endSpan(span, err) }()

	if err := validateIDs(productID, templateID); err != nil {
		return nil, err
	}
	templates, err := r.registry.ListTemplates(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(templates, func(t models.Template) bool { return t.ID == templateID }) {
		return nil, fmt.Errorf("%w: template %d does not belong to product %d", domain.ErrNotFound, templateID, productID)
	}

	p, err = r.gw.SetProductTemplate(ctx, productID, templateID)
	if err != nil {
		return nil, err
	}
	r.record(ctx, "set", domainsvcs.Explicit(templateID), productID)
	return p, nil
}

func (r *Reconciler) record(ctx context.Context, trigger string, d domainsvcs.Decision, productID int64) {
	r.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("outcome", string(d.Reason)),
	))
	r.log.InfoContext(ctx, "canonical decision",
		"trigger", trigger,
		"product_id", productID,
		"reason", d.Reason,
		"changed", d.Changed,
		"next", d.Next.String(),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
