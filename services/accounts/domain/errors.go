package domain

import "errors"

// Sentinel errors for the accounts domain. Use errors.Is() to check these.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("email already in use")
	ErrInvalidUser       = errors.New("invalid user")

	ErrDeploymentNotFound      = errors.New("deployment not found")
	ErrDeploymentAlreadyExists = errors.New("deployment already exists")
	ErrInvalidDeployment       = errors.New("invalid deployment")

	// ErrTemplateNotFound indicates the deployment references a template that
	// does not exist or does not belong to the requested product.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrDeploymentInProgress indicates the deployment already has a queued
	// or running reconcile job.
	ErrDeploymentInProgress = errors.New("a deployment job is already queued or running")

	// ErrInvalidUpgrade indicates an update to an older template or to a
	// template of another product.
	ErrInvalidUpgrade = errors.New("invalid deployment upgrade")

	// ErrInvalidUserValues indicates user values the template's schema rejects.
	ErrInvalidUserValues = errors.New("invalid user values")

	ErrJobNotFound = errors.New("reconcile job not found")

	// ErrNoCanonicalTemplate indicates a deployment was requested by product
	// while the product has no canonical template.
	ErrNoCanonicalTemplate = errors.New("product has no canonical template")
)
