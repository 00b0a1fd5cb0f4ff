package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/caelus-deploy/caelus/pkg/events"
	"github.com/caelus-deploy/caelus/pkg/logger"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	accountsEvents "github.com/caelus-deploy/caelus/services/accounts/domain/events"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
	catalogEvents "github.com/caelus-deploy/caelus/services/catalog/domain/events"
)

type fakeCache struct {
	deleted []int64
	err     error
}

func (f *fakeCache) Delete(_ context.Context, productID int64) error {
	f.deleted = append(f.deleted, productID)
	return f.err
}

func newMessage(t *testing.T, payload any) *message.Message {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return message.NewMessage(uuid.NewString(), b)
}

func TestCatalogHandlers_Invalidation(t *testing.T) {
	id := int64(7)
	now := time.Now().UTC()

	tests := []struct {
		name    string
		handler func(h *catalogHandlers) events.Handler
		payload any
		want    []int64
	}{
		{
			name:    "created leaves cache",
			handler: func(h *catalogHandlers) events.Handler { return h.templateCreated },
			payload: catalogEvents.TemplateCreatedEvent{EventID: uuid.New(), TemplateID: 3, ProductID: 1, OccurredAt: now},
		},
		{
			name:    "non canonical delete leaves cache",
			handler: func(h *catalogHandlers) events.Handler { return h.templateDeleted },
			payload: catalogEvents.TemplateDeletedEvent{EventID: uuid.New(), TemplateID: 3, ProductID: 1, OccurredAt: now},
		},
		{
			name:    "canonical delete invalidates",
			handler: func(h *catalogHandlers) events.Handler { return h.templateDeleted },
			payload: catalogEvents.TemplateDeletedEvent{EventID: uuid.New(), TemplateID: 3, ProductID: 1, WasCanonical: true, OccurredAt: now},
			want:    []int64{1},
		},
		{
			name:    "canonical change invalidates",
			handler: func(h *catalogHandlers) events.Handler { return h.canonicalChanged },
			payload: catalogEvents.CanonicalChangedEvent{EventID: uuid.New(), ProductID: 2, TemplateID: &id, OccurredAt: now},
			want:    []int64{2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeCache{}
			h := &catalogHandlers{cache: fc, log: logger.Discard()}

			if err := tt.handler(h)(context.Background(), newMessage(t, tt.payload)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, fc.deleted); diff != "" {
				t.Errorf("invalidated products (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalogHandlers_CacheFailureIsNotRetried(t *testing.T) {
	fc := &fakeCache{err: errors.New("redis down")}
	h := &catalogHandlers{cache: fc, log: logger.Discard()}

	msg := newMessage(t, catalogEvents.CanonicalChangedEvent{EventID: uuid.New(), ProductID: 4})
	if err := h.canonicalChanged(context.Background(), msg); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestCatalogHandlers_MalformedPayload(t *testing.T) {
	h := &catalogHandlers{cache: &fakeCache{}, log: logger.Discard()}
	msg := message.NewMessage(uuid.NewString(), []byte("{"))

	for name, fn := range map[string]events.Handler{
		"created":   h.templateCreated,
		"deleted":   h.templateDeleted,
		"canonical": h.canonicalChanged,
	} {
		if err := fn(context.Background(), msg); err == nil {
			t.Errorf("%s: expected decode error", name)
		}
	}
}

type fakeRunner struct {
	ran    []int64
	worker string
	err    error
}

func (f *fakeRunner) Run(_ context.Context, jobID int64, worker string) (models.JobOutcome, error) {
	f.ran = append(f.ran, jobID)
	f.worker = worker
	return models.JobOutcome{Status: models.StatusReady}, f.err
}

func TestReconcileHandlers_ReconcileRequested(t *testing.T) {
	evt := accountsEvents.ReconcileRequestedEvent{
		EventID: uuid.New(), Version: accountsEvents.SchemaVersion,
		JobID: 12, DeploymentID: 3, Reason: "create", Generation: 1, OccurredAt: time.Now().UTC(),
	}

	tests := []struct {
		name    string
		runErr  error
		wantErr bool
	}{
		{"runs the job", nil, false},
		{"already claimed is acknowledged", fmt.Errorf("claim job 12: %w", accountsdomain.ErrJobNotFound), false},
		{"store failure is retried", errors.New("db down"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := &fakeRunner{err: tt.runErr}
			h := &reconcileHandlers{jobs: fr, worker: "worker-1", log: logger.Discard()}

			err := h.reconcileRequested(context.Background(), newMessage(t, evt))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff([]int64{12}, fr.ran); diff != "" {
				t.Errorf("ran jobs (-want +got):\n%s", diff)
			}
			if fr.worker != "worker-1" {
				t.Errorf("job run as %q", fr.worker)
			}
		})
	}
}

func TestReconcileHandlers_MalformedPayload(t *testing.T) {
	fr := &fakeRunner{}
	h := &reconcileHandlers{jobs: fr, worker: "worker-1", log: logger.Discard()}
	if err := h.reconcileRequested(context.Background(), message.NewMessage(uuid.NewString(), []byte("{"))); err == nil {
		t.Fatal("expected decode error")
	}
	if len(fr.ran) != 0 {
		t.Fatalf("ran jobs %v from a malformed payload", fr.ran)
	}
}
