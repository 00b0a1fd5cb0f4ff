package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Deployment is a user's instance of a template served under a domain name.
// TemplateID is the desired template; AppliedTemplateID is the one the last
// successful reconcile rolled out. Generation grows with every change that
// queues a reconcile job.
type Deployment struct {
	ID                int64
	UID               string
	UserID            int64
	TemplateID        int64
	AppliedTemplateID *int64
	Domainname        Domainname
	UserValues        json.RawMessage
	Status            DeploymentStatus
	Generation        int64
	LastError         *string
	CreatedAt         time.Time
}

// DeploymentStatus is where a deployment is in its reconcile lifecycle.
type DeploymentStatus string

const (
	StatusPending   DeploymentStatus = "pending"
	StatusUpgrading DeploymentStatus = "upgrading"
	StatusDeleting  DeploymentStatus = "deleting"
	StatusReady     DeploymentStatus = "ready"
	StatusDeleted   DeploymentStatus = "deleted"
	StatusError     DeploymentStatus = "error"
)

// Domainname is a value object holding a lower-cased RFC 1123 host name.
type Domainname string

const (
	maxDomainnameLength = 253
	maxLabelLength      = 63
)

// NewDomainname lower-cases s and checks RFC 1123 host name syntax.
func NewDomainname(s string) (Domainname, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", fmt.Errorf("domainname must not be empty")
	}
	if len(s) > maxDomainnameLength {
		return "", fmt.Errorf("domainname must not exceed %d characters", maxDomainnameLength)
	}
	for _, label := range strings.Split(s, ".") {
		if err := checkLabel(label); err != nil {
			return "", fmt.Errorf("domainname %q: %w", s, err)
		}
	}
	return Domainname(s), nil
}

func checkLabel(label string) error {
	if label == "" || len(label) > maxLabelLength {
		return fmt.Errorf("label must hold 1 to %d characters", maxLabelLength)
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return fmt.Errorf("label %q must not start or end with a hyphen", label)
	}
	for _, r := range label {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return fmt.Errorf("label %q contains %q", label, r)
		}
	}
	return nil
}

// String returns the underlying string value.
func (d Domainname) String() string {
	return string(d)
}
