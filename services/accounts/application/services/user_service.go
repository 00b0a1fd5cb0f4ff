package services

import (
	"context"
	"fmt"

	"github.com/caelus-deploy/caelus/pkg/logger"
	accountsdomain "github.com/caelus-deploy/caelus/services/accounts/domain"
	"github.com/caelus-deploy/caelus/services/accounts/domain/models"
	"github.com/caelus-deploy/caelus/services/accounts/domain/repositories"
)

// UserService manages end users.
type UserService struct {
	repo repositories.UserRepository
	log  logger.Logger
}

// NewUserService returns a UserService over repo.
func NewUserService(repo repositories.UserRepository, log logger.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Create normalizes the email and persists a new user.
func (s *UserService) Create(ctx context.Context, email string) (*models.User, error) {
	addr, err := models.NewEmail(email)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", accountsdomain.ErrInvalidUser, err)
	}
	u := &models.User{Email: addr}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	s.log.InfoContext(ctx, "user created", "user_id", u.ID)
	return u, nil
}

// Get returns an active user.
func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// List returns all active users.
func (s *UserService) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete soft-deletes a user and the user's deployments.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
