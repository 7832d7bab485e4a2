package anonymizer

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Allocator hands out tags with per-category counters. Counters are scoped
// to one anonymization call: a fresh Allocator is created per call, which
// keeps concurrent calls independent and output deterministic.
//
// A counter slot is consumed as soon as a tag is allocated, even when the
// entity value later produces zero matches. This mirrors the historical
// behavior callers depend on for tag numbering.
type Allocator struct {
	counters map[Category]int
}

// NewAllocator returns an empty allocator; every category starts at 1.
func NewAllocator() *Allocator {
	return &Allocator{counters: make(map[Category]int)}
}

// Next returns the next tag for category, e.g. NOM1, NOM2, ...
func (a *Allocator) Next(category Category) string {
	a.counters[category]++
	return fmt.Sprintf("%s%d", category, a.counters[category])
}

// Count reports how many tags have been allocated for category.
func (a *Allocator) Count(category Category) int {
	return a.counters[category]
}

// SanitizeLabel turns a free-form custom field label into a tag category.
// Accented letters fold to their ASCII base ("Téléphone" → TELEPHONE),
// every remaining non-letter rune is dropped and the rest upper-cased.
// Only ASCII letters survive so that restored tags keep clean regex word
// boundaries. An empty result falls back to CategoryCustom.
func SanitizeLabel(label string) Category {
	// Decompose and strip combining marks; the transformer keeps internal
	// buffers, so build one per call.
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, label)
	if err != nil {
		folded = label
	}

	var b strings.Builder
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return CategoryCustom
	}
	return Category(b.String())
}
