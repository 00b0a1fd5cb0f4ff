package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics published by the catalog repositories through the outbox.
const (
	TopicTemplateCreated  = "template.created"
	TopicTemplateDeleted  = "template.deleted"
	TopicCanonicalChanged = "product.canonical_changed"
)

// SchemaVersion is the current version of every catalog event payload.
const SchemaVersion = 1

// TemplateCreatedEvent is published after a new Template is persisted.
type TemplateCreatedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	TemplateID int64     `json:"template_id"`
	ProductID  int64     `json:"product_id"`
	ImageRef   *string   `json:"docker_image_url"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TemplateDeletedEvent is published after a Template is soft-deleted.
// WasCanonical is true when the deletion also cleared the product's pointer.
type TemplateDeletedEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	Version      int       `json:"version"`
	TemplateID   int64     `json:"template_id"`
	ProductID    int64     `json:"product_id"`
	WasCanonical bool      `json:"was_canonical"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// CanonicalChangedEvent is published whenever a product's canonical pointer is
// written, either explicitly or because its template was deleted.
// A nil TemplateID means the pointer is now unset.
type CanonicalChangedEvent struct {
	EventID            uuid.UUID `json:"event_id"`
	Version            int       `json:"version"`
	ProductID          int64     `json:"product_id"`
	PreviousTemplateID *int64    `json:"previous_template_id"`
	TemplateID         *int64    `json:"template_id"`
	OccurredAt         time.Time `json:"occurred_at"`
}
