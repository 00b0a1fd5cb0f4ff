package services

import (
	"fmt"
	"regexp"
	"strings"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	maxUIDLength    = 63
	uidSuffixLength = 6
	uidBaseLength   = maxUIDLength - uidSuffixLength - 1
	uidAlphabet     = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	dnsLabel  = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)
	uidSuffix = regexp.MustCompile(`^[0-9a-z]{6}$`)
)

// UIDGenerator builds deployment UIDs: a DNS label made of the product and
// owner slugs plus a random base36 suffix. The UID names the deployment's
// release and namespace, so it never changes once assigned.
type UIDGenerator struct {
	suffix func() string
}

// NewUIDGenerator returns a generator drawing suffixes from a CSPRNG.
func NewUIDGenerator() *UIDGenerator {
	gen, err := nanoid.CustomASCII(uidAlphabet, uidSuffixLength)
	if err != nil {
		// Only reachable if the constant alphabet or length is invalid.
		panic(fmt.Sprintf("uid suffix generator: %v", err))
	}
	return &UIDGenerator{suffix: gen}
}

// New returns a fresh UID for productName deployed by email.
func (g *UIDGenerator) New(productName, email string) (string, error) {
	return DeploymentUID(productName, email, g.suffix())
}

// DeploymentUID joins the slugs of productName and email, trims the result so
// the suffix fits in 63 characters and appends suffix.
func DeploymentUID(productName, email, suffix string) (string, error) {
	if !uidSuffix.MatchString(suffix) {
		return "", fmt.Errorf("uid suffix %q must match [0-9a-z]{6}", suffix)
	}
	var parts []string
	for _, s := range []string{Slugify(productName), Slugify(email)} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	base := strings.Join(parts, "-")
	if len(base) > uidBaseLength {
		base = base[:uidBaseLength]
	}
	base = strings.Trim(base, "-")
	if base == "" {
		base = "dep"
	}

	uid := base + "-" + suffix
	if !dnsLabel.MatchString(uid) {
		return "", fmt.Errorf("deployment uid %q is not a DNS label", uid)
	}
	return uid, nil
}

// Slugify lower-cases s and collapses every run of other characters into a
// single hyphen.
func Slugify(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
