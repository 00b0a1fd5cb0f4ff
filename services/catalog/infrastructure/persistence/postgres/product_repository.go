package postgres

import (
	"context"
	"database/sql"
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

const productColumns = `id, name, description, template_id, created_at`

// ProductRepository implements repositories.ProductRepository against PostgreSQL.
type ProductRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewProductRepository returns a ProductRepository backed by the given pool.
// When bus is non-nil, pointer changes are published through the outbox.
func NewProductRepository(db *database.Database, bus *events.EventBus) *ProductRepository {
	return &ProductRepository{db: db, bus: bus}
}

// Save inserts a new product. Returns ErrProductAlreadyExists on a duplicate active name.
func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	err := r.db.DB().QueryRowContext(ctx,
		`INSERT INTO product (name, description) VALUES ($1, $2) RETURNING id, created_at`,
		p.Name.String(), nullString(p.Description),
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return catalogdomain.ErrProductAlreadyExists
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID returns an active product. Returns ErrProductNotFound if absent.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.db.DB().QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM product WHERE id = $1 AND deleted_at IS NULL`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrProductNotFound
		}
		return nil, fmt.Errorf("query product: %w", err)
	}
	return p, nil
}

// List returns every active product ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT `+productColumns+` FROM product WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

// SetTemplate writes the canonical pointer after checking that templateID is an
// active template of the product. The product row is locked for the duration
// of the check so a concurrent delete cannot slip in between.
func (r *ProductRepository) SetTemplate(ctx context.Context, productID, templateID int64) (*models.Product, error) {
	var updated *models.Product
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		var previous sql.NullInt64
		err := tx.QueryRowContext(ctx,
			`SELECT template_id FROM product WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, productID,
		).Scan(&previous)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return catalogdomain.ErrProductNotFound
			}
			return fmt.Errorf("lock product: %w", err)
		}

		var owned bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM product_template_version
				WHERE id = $1 AND product_id = $2 AND deleted_at IS NULL
			)`, templateID, productID,
		).Scan(&owned); err != nil {
			return fmt.Errorf("check template ownership: %w", err)
		}
		if !owned {
			return catalogdomain.ErrTemplateNotFound
		}

		row := tx.QueryRowContext(ctx,
			`UPDATE product SET template_id = $2 WHERE id = $1 RETURNING `+productColumns,
			productID, templateID)
		if updated, err = scanProduct(row); err != nil {
			return fmt.Errorf("update product template: %w", err)
		}

		if previous.Valid && previous.Int64 == templateID {
			return nil
		}
		return publishCanonicalChanged(ctx, r.bus, tx, productID, int64Ptr(previous), &templateID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete soft-deletes a product. Returns ErrProductNotFound if it is not active.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.DB().ExecContext(ctx,
		`UPDATE product SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return catalogdomain.ErrProductNotFound
	}
	return nil
}

func publishCanonicalChanged(ctx context.Context, bus *events.EventBus, tx *sql.Tx, productID int64, previous, next *int64) error {
	if bus == nil {
		return nil
	}
	event := domainevents.CanonicalChangedEvent{
		EventID:            uuid.New(),
		Version:            domainevents.SchemaVersion,
		ProductID:          productID,
		PreviousTemplateID: previous,
		TemplateID:         next,
		OccurredAt:         time.Now().UTC(),
	}
	msg, err := events.NewEventMessage(event.EventID, event.Version, event)
	if err != nil {
		return err
	}
	if err := bus.PublishTx(ctx, tx, domainevents.TopicCanonicalChanged, msg); err != nil {
		return fmt.Errorf("publish canonical changed: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p           models.Product
		name        string
		description sql.NullString
		templateID  sql.NullInt64
	)
	if err := row.Scan(&p.ID, &name, &description, &templateID, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Name = models.ProductName(name)
	p.Description = stringPtr(description)
	p.TemplateID = int64Ptr(templateID)
	return &p, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func int64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
