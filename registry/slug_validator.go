package registry

import (
	"fmt"
	"regexp"

	"github.com/tmarek/blockpress-backend/errs"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// SlugConfig carries the format limits and the reserved-word deny-list.
// It is explicit configuration rather than package-level state so tests can
// substitute alternate policies.
type SlugConfig struct {
	MinLength int
	MaxLength int
	Reserved  []string
}

// DefaultSlugConfig returns the production slug rules: 3-50 chars and the
// system routes that can never be claimed as content slugs.
func DefaultSlugConfig() SlugConfig {
	return SlugConfig{
		MinLength: 3,
		MaxLength: 50,
		Reserved: []string{
			"admin", "api", "auth", "login", "logout", "register",
			"index", "tree", "static", "assets", "health", "dashboard",
			"settings", "metrics",
		},
	}
}

// SlugValidator performs format and reserved-word checks. It is pure and
// does no I/O; every write path calls it before touching storage.
type SlugValidator struct {
	cfg      SlugConfig
	reserved map[string]struct{}
}

func NewSlugValidator(cfg SlugConfig) *SlugValidator {
	reserved := make(map[string]struct{}, len(cfg.Reserved))
	for _, word := range cfg.Reserved {
		reserved[word] = struct{}{}
	}
	return &SlugValidator{cfg: cfg, reserved: reserved}
}

// Validate returns nil for a claimable slug, or a typed validation error
// naming the rule that failed.
func (v *SlugValidator) Validate(candidate string) error {
	if len(candidate) < v.cfg.MinLength {
		return errs.NewInvalidSlugError(candidate, fmt.Sprintf("shorter than %d characters", v.cfg.MinLength))
	}
	if len(candidate) > v.cfg.MaxLength {
		return errs.NewInvalidSlugError(candidate, fmt.Sprintf("longer than %d characters", v.cfg.MaxLength))
	}
	if !slugPattern.MatchString(candidate) {
		return errs.NewInvalidSlugError(candidate, "only lowercase letters, digits, hyphen and underscore are allowed")
	}
	if v.IsReserved(candidate) {
		return errs.NewReservedSlugError(candidate)
	}
	return nil
}

// IsReserved reports whether candidate is on the deny-list of system routes.
func (v *SlugValidator) IsReserved(candidate string) bool {
	_, ok := v.reserved[candidate]
	return ok
}

// MaxLength exposes the configured upper bound for generator truncation.
func (v *SlugValidator) MaxLength() int {
	return v.cfg.MaxLength
}

// MinLength exposes the configured lower bound.
func (v *SlugValidator) MinLength() int {
	return v.cfg.MinLength
}
