package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/caelus-deploy/caelus/pkg/app"
	"github.com/caelus-deploy/caelus/pkg/cache"
	"github.com/caelus-deploy/caelus/pkg/events"
	"github.com/caelus-deploy/caelus/pkg/logger"
	accountssvcs "github.com/caelus-deploy/caelus/services/accounts/application/services"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	accountsEvents "github.com/caelus-deploy/caelus/services/accounts/domain/events"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
	catalogadapter "github.com/caelus-deploy/caelus/services/accounts/infrastructure/catalog"
	catalogsvcs "github.com/caelus-deploy/caelus/services/catalog/application/services"
	catalogEvents "github.com/caelus-deploy/caelus/services/catalog/domain/events"
)

// productInvalidator drops a product's cached read model.
type productInvalidator interface {
	Delete(ctx context.Context, productID int64) error
}

// jobRunner runs one reconcile job on behalf of worker.
type jobRunner interface {
	Run(ctx context.Context, jobID int64, worker string) (models.JobOutcome, error)
}

// registerSubscribers wires the catalog cache handlers and the reconcile
// job handler. worker identifies this process in claimed jobs.
func registerSubscribers(ctx context.Context, a *app.Application, worker string) error {
	h := &catalogHandlers{cache: cache.NewProductCache(a.Redis), log: a.Logger}
	accounts := accountssvcs.New(a, catalogadapter.NewAdapter(catalogsvcs.New(a)))
	rh := &reconcileHandlers{jobs: accounts.Job, worker: worker, log: a.Logger}

	subs := map[string]events.Handler{
		catalogEvents.TopicTemplateCreated:     h.templateCreated,
		catalogEvents.TopicTemplateDeleted:     h.templateDeleted,
		catalogEvents.TopicCanonicalChanged:    h.canonicalChanged,
		accountsEvents.TopicReconcileRequested: rh.reconcileRequested,
	}

	topics := make([]string, 0, len(subs))
	for topic, handler := range subs {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}

		// Drain subscriber errors in background so the channel never blocks.
		go func(topic string) {
			for err := range errCh {
				a.Logger.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
			}
		}(topic)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// catalogHandlers keeps the product cache in step with the outbox.
// Handlers must be idempotent: EventBus retries up to 3x on failure.
type catalogHandlers struct {
	cache productInvalidator
	log   logger.Logger
}

func (h *catalogHandlers) templateCreated(ctx context.Context, msg *message.Message) error {
	var evt catalogEvents.TemplateCreatedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}
	h.log.InfoContext(ctx, "template created",
		"event_id", evt.EventID,
		"product_id", evt.ProductID,
		"template_id", evt.TemplateID,
	)
	return nil
}

func (h *catalogHandlers) templateDeleted(ctx context.Context, msg *message.Message) error {
	var evt catalogEvents.TemplateDeletedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}
	h.log.InfoContext(ctx, "template deleted",
		"event_id", evt.EventID,
		"product_id", evt.ProductID,
		"template_id", evt.TemplateID,
		"was_canonical", evt.WasCanonical,
	)
	if evt.WasCanonical {
		h.invalidate(ctx, evt.ProductID)
	}
	return nil
}

func (h *catalogHandlers) canonicalChanged(ctx context.Context, msg *message.Message) error {
	var evt catalogEvents.CanonicalChangedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}
	h.log.InfoContext(ctx, "canonical template changed",
		"event_id", evt.EventID,
		"product_id", evt.ProductID,
		"previous_template_id", evt.PreviousTemplateID,
		"template_id", evt.TemplateID,
	)
	h.invalidate(ctx, evt.ProductID)
	return nil
}

// invalidate is best-effort; the cache entry also expires on its own.
func (h *catalogHandlers) invalidate(ctx context.Context, productID int64) {
	if err := h.cache.Delete(ctx, productID); err != nil {
		h.log.WarnContext(ctx, "product cache invalidation failed", "product_id", productID, "error", err)
	}
}

// reconcileHandlers runs the job each reconcile request names.
type reconcileHandlers struct {
	jobs   jobRunner
	worker string
	log    logger.Logger
}

// reconcileRequested runs the announced job. A job that is no longer queued
// was handled by an earlier delivery or another worker and is acknowledged.
func (h *reconcileHandlers) reconcileRequested(ctx context.Context, msg *message.Message) error {
	var evt accountsEvents.ReconcileRequestedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return err
	}
	_, err := h.jobs.Run(ctx, evt.JobID, h.worker)
	if errors.Is(err, accountsdomain.ErrJobNotFound) {
		h.log.InfoContext(ctx, "reconcile job already claimed",
			"event_id", evt.EventID, "job_id", evt.JobID, "deployment_id", evt.DeploymentID)
		return nil
	}
	return err
}
