package model

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category groups articles and drives notification-pool routing.
type Category struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Kind is the normalized category identity. The original data carries
// free-form category names ("Infraestructura", "Áreas y Montaje", ...);
// the kind is resolved once instead of fuzzy-matching at every call site.
type Kind int

// Category kinds.
const (
	KindOther Kind = iota
	KindInfrastructure
	KindAreasAndSetup
)

func (k Kind) String() string {
	switch k {
	case KindInfrastructure:
		return "infrastructure"
	case KindAreasAndSetup:
		return "areas-and-setup"
	default:
		return "other"
	}
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName lowercases a name and strips diacritics, so that
// "Infraestructura" and "infraestructura" compare equal.
func NormalizeName(name string) string {
	out, _, err := transform.String(stripAccents, name)
	if err != nil {
		out = name
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Normalized names recognized as special categories, in both the
// original Spanish and English.
var (
	infrastructureNames = map[string]bool{
		"infraestructura": true,
		"infrastructure":  true,
	}
	areasAndSetupNames = map[string]bool{
		"areas y montaje": true,
		"areas and setup": true,
		"areas & setup":   true,
	}
)

// KindOf resolves a category name to its kind.
func KindOf(name string) Kind {
	n := NormalizeName(name)
	switch {
	case infrastructureNames[n]:
		return KindInfrastructure
	case areasAndSetupNames[n]:
		return KindAreasAndSetup
	default:
		return KindOther
	}
}

// Kind resolves c's kind, tolerating a nil category.
func (c *Category) Kind() Kind {
	if c == nil {
		return KindOther
	}
	return KindOf(c.Name)
}
