package services

import (
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/services/admin/domain"
)

// Services is the application-layer service container for the admin context.
type Services struct {
	Registry   *Registry
	Reconciler *Reconciler

	// Accounts is nil unless built by NewWithAccounts.
	Accounts *Accounts
}

// New wires the registry and reconciler over one gateway.
func New(gw domain.Gateway, log logger.Logger) *Services {
	registry := NewRegistry(gw, log)
	return &Services{
		Registry:   registry,
		Reconciler: NewReconciler(registry, gw, log),
	}
}

// NewWithAccounts is New plus the accounts service over acc.
func NewWithAccounts(gw domain.Gateway, acc domain.Accounts, log logger.Logger) *Services {
	s := New(gw, log)
	s.Accounts = NewAccounts(acc, log)
	return s
}
