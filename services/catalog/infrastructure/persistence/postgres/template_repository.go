package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caelus-deploy/caelus/pkg/database"
	"github.com/caelus-deploy/caelus/pkg/events"
	catalogdomain "github.com/caelus-deploy/caelus/services/catalog/domain"
	domainevents "github.com/caelus-deploy/caelus/services/catalog/domain/events"
	"github.com/caelus-deploy/caelus/services/catalog/domain/models"
)

const templateColumns = `t.id, t.product_id, t.docker_image_url, t.default_values_json, t.values_schema_json, t.created_at`

// TemplateRepository implements repositories.TemplateRepository against PostgreSQL.
type TemplateRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewTemplateRepository returns a TemplateRepository backed by the given pool.
// When bus is non-nil, template events are published through the outbox.
func NewTemplateRepository(db *database.Database, bus *events.EventBus) *TemplateRepository {
	return &TemplateRepository{db: db, bus: bus}
}

// Save inserts a template for an active product and publishes TemplateCreatedEvent
// in the same transaction.
func (r *TemplateRepository) Save(ctx context.Context, t *models.Template) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := lockActiveProduct(ctx, tx, t.ProductID); err != nil {
			return err
		}

		err := tx.QueryRowContext(ctx,
			`INSERT INTO product_template_version (docker_image_url, product_id, default_values_json, values_schema_json)
			 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			nullString(t.ImageRef), t.ProductID, nullJSON(t.Values.Defaults), nullJSON(t.Values.Schema),
		).Scan(&t.ID, &t.CreatedAt)
		if err != nil {
			switch {
			case database.IsUniqueViolation(err):
				return catalogdomain.ErrTemplateAlreadyExists
			case database.IsForeignKeyViolation(err):
				return catalogdomain.ErrProductNotFound
			}
			return fmt.Errorf("insert template: %w", err)
		}

		if r.bus == nil {
			return nil
		}
		event := domainevents.TemplateCreatedEvent{
			EventID:    uuid.New(),
			Version:    domainevents.SchemaVersion,
			TemplateID: t.ID,
			ProductID:  t.ProductID,
			ImageRef:   t.ImageRef,
			OccurredAt: t.CreatedAt,
		}
		msg, err := events.NewEventMessage(event.EventID, event.Version, event)
		if err != nil {
			return err
		}
		if err := r.bus.PublishTx(ctx, tx, domainevents.TopicTemplateCreated, msg); err != nil {
			return fmt.Errorf("publish template created: %w", err)
		}
		return nil
	})
}

// GetByID returns an active template of an active product.
// Returns ErrTemplateNotFound when it is absent or owned by another product.
func (r *TemplateRepository) GetByID(ctx context.Context, productID, id int64) (*models.Template, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+templateColumns+`
		 FROM product_template_version t
		 JOIN product p ON p.id = t.product_id AND p.deleted_at IS NULL
		 WHERE t.id = $1 AND t.product_id = $2 AND t.deleted_at IS NULL`,
		id, productID)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("query template: %w", err)
	}
	return t, nil
}

// Find returns an active template of an active product by id.
func (r *TemplateRepository) Find(ctx context.Context, id int64) (*models.Template, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+templateColumns+`
		 FROM product_template_version t
		 JOIN product p ON p.id = t.product_id AND p.deleted_at IS NULL
		 WHERE t.id = $1 AND t.deleted_at IS NULL`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("query template: %w", err)
	}
	return t, nil
}

// ListByProduct returns the active templates of a product in insertion order.
func (r *TemplateRepository) ListByProduct(ctx context.Context, productID int64) ([]*models.Template, error) {
	var exists bool
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM product WHERE id = $1 AND deleted_at IS NULL)`, productID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, catalogdomain.ErrProductNotFound
	}

	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+templateColumns+`
		 FROM product_template_version t
		 WHERE t.product_id = $1 AND t.deleted_at IS NULL
		 ORDER BY t.id`, productID)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := []*models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// Delete soft-deletes a template. If the product pointed at it, the pointer is
// cleared in the same transaction and both TemplateDeletedEvent and
// CanonicalChangedEvent are published.
func (r *TemplateRepository) Delete(ctx context.Context, productID, id int64) (bool, error) {
	var cleared bool
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := lockActiveProduct(ctx, tx, productID); err != nil {
			if errors.Is(err, catalogdomain.ErrProductNotFound) {
				return catalogdomain.ErrTemplateNotFound
			}
			return err
		}

		res, err := tx.ExecContext(ctx,
			`UPDATE product_template_version SET deleted_at = now()
			 WHERE id = $1 AND product_id = $2 AND deleted_at IS NULL`, id, productID)
		if err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete template: %w", err)
		}
		if n == 0 {
			return catalogdomain.ErrTemplateNotFound
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE product SET template_id = NULL WHERE id = $1 AND template_id = $2`, productID, id)
		if err != nil {
			return fmt.Errorf("clear canonical template: %w", err)
		}
		if n, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("clear canonical template: %w", err)
		}
		cleared = n > 0

		if r.bus == nil {
			return nil
		}
		event := domainevents.TemplateDeletedEvent{
			EventID:      uuid.New(),
			Version:      domainevents.SchemaVersion,
			TemplateID:   id,
			ProductID:    productID,
			WasCanonical: cleared,
			OccurredAt:   time.Now().UTC(),
		}
		msg, err := events.NewEventMessage(event.EventID, event.Version, event)
		if err != nil {
			return err
		}
		if err := r.bus.PublishTx(ctx, tx, domainevents.TopicTemplateDeleted, msg); err != nil {
			return fmt.Errorf("publish template deleted: %w", err)
		}
		if cleared {
			return publishCanonicalChanged(ctx, r.bus, tx, productID, &id, nil)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return cleared, nil
}

// lockActiveProduct takes a row lock on an active product so concurrent
// pointer writes for the same product serialize behind this transaction.
func lockActiveProduct(ctx context.Context, tx *sql.Tx, productID int64) error {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM product WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, productID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalogdomain.ErrProductNotFound
		}
		return fmt.Errorf("lock product: %w", err)
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		t                models.Template
		imageRef         sql.NullString
		defaults, schema []byte
	)
	if err := row.Scan(&t.ID, &t.ProductID, &imageRef, &defaults, &schema, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.ImageRef = stringPtr(imageRef)
	t.Values = models.TemplateValues{Defaults: defaults, Schema: schema}
	return &t, nil
}

// nullJSON stores an empty document as SQL NULL.
func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
