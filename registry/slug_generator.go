package registry

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxNumericProbes bounds the base-1, base-2, ... search before the
// generator falls back to a timestamp suffix.
const maxNumericProbes = 100

// SlugAvailability answers whether a slug is currently held by a published
// block. Implemented by database.BlockRepo.
type SlugAvailability interface {
	SlugInUse(slug string) (bool, error)
}

// SlugGenerator derives a unique slug candidate from a human title.
type SlugGenerator struct {
	validator *SlugValidator
	index     SlugAvailability
}

func NewSlugGenerator(validator *SlugValidator, index SlugAvailability) *SlugGenerator {
	return &SlugGenerator{validator: validator, index: index}
}

// GenerateUnique normalizes title into a URL-safe base slug and probes for
// availability: the base itself, then base-1 through base-100, then
// base-<unix-timestamp> to guarantee termination. Reserved words and slugs
// held by published blocks are never returned.
func (g *SlugGenerator) GenerateUnique(title, rendererHint string) (string, error) {
	base := Slugify(title)
	if len(base) < g.validator.MinLength() {
		if base == "" {
			base = rendererHint
		} else {
			base = rendererHint + "-" + base
		}
	}
	base = truncateSlug(base, g.validator.MaxLength())

	available, err := g.available(base)
	if err != nil {
		return "", err
	}
	if available {
		return base, nil
	}

	for i := 1; i <= maxNumericProbes; i++ {
		candidate := withSuffix(base, fmt.Sprintf("%d", i), g.validator.MaxLength())
		available, err := g.available(candidate)
		if err != nil {
			return "", err
		}
		if available {
			return candidate, nil
		}
	}

	// Timestamp suffixes are effectively unique, so this terminates the
	// search within bounded time even for pathologically popular titles.
	return withSuffix(base, fmt.Sprintf("%d", time.Now().Unix()), g.validator.MaxLength()), nil
}

func (g *SlugGenerator) available(candidate string) (bool, error) {
	if g.validator.IsReserved(candidate) {
		return false, nil
	}
	inUse, err := g.index.SlugInUse(candidate)
	if err != nil {
		return false, err
	}
	return !inUse, nil
}

// Slugify lowercases title, strips diacritics and punctuation, and joins
// the remaining words with hyphens.
func Slugify(title string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(stripper, title)
	if err != nil {
		stripped = title
	}

	var b strings.Builder
	lastHyphen := true // suppress leading hyphens
	for _, r := range strings.ToLower(stripped) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// withSuffix appends "-suffix", shortening the base if needed so the result
// stays within maxLen.
func withSuffix(base, suffix string, maxLen int) string {
	room := maxLen - len(suffix) - 1
	if len(base) > room {
		base = truncateSlug(base, room)
	}
	return base + "-" + suffix
}

func truncateSlug(s string, maxLen int) string {
	if len(s) > maxLen {
		s = s[:maxLen]
	}
	return strings.TrimRight(s, "-")
}
