package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/database"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
)

// UserRepository implements repositories.UserRepository against PostgreSQL.
type UserRepository struct {
	db *database.Database
}

// NewUserRepository returns a UserRepository backed by the given pool.
func NewUserRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Save inserts a user. Returns ErrUserAlreadyExists when the email is taken.
func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	err := r.db.DB().QueryRowContext(ctx,
		`INSERT INTO app_user (email) VALUES ($1) RETURNING id, created_at`, u.Email.String(),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return accountsdomain.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID returns an active user. Returns ErrUserNotFound if absent.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var (
		u     models.User
		email string
	)
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT id, email, created_at FROM app_user WHERE id = $1 AND deleted_at IS NULL`, id,
	).Scan(&u.ID, &email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accountsdomain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.Email = models.Email(email)
	return &u, nil
}

// List returns every active user ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.DB().QueryContext(ctx,
		`SELECT id, email, created_at FROM app_user WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		var (
			u     models.User
			email string
		)
		if err := rows.Scan(&u.ID, &email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.Email = models.Email(email)
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Delete soft-deletes a user together with the user's active deployments.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := softDelete(ctx, tx,
			`UPDATE app_user SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`,
			accountsdomain.ErrUserNotFound, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE deployment SET deleted_at = now() WHERE user_id = $1 AND deleted_at IS NULL`, id); err != nil {
			return fmt.Errorf("delete user deployments: %w", err)
		}
		return nil
	})
}

// softDelete runs an UPDATE that marks one row deleted and returns notFound
// when no active row matched.
func softDelete(ctx context.Context, db database.DBTX, query string, notFound error, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
