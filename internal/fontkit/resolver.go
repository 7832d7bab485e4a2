// Package fontkit picks a renderable font for a replacement text run and
// sizes the text to the original run's bounding box. The renderer collaborator
// natively understands the standard base fonts (Helvetica, Times, Courier
// families); everything else is degraded through an ordered fallback chain
// that keeps weight and slant when family identity is lost. Color is never
// part of the decision: the rewriter carries the original color through
// untouched.
package fontkit

import (
	"strings"

	"github.com/Loran-38/anonyjud/internal/logger"
	"go.uber.org/zap"
)

// Family is one of the three base families the renderer always has.
type Family int

const (
	FamilySans Family = iota
	FamilySerif
	FamilyMono
)

// State records which rung of the fallback chain produced a resolution.
type State int

const (
	// StateExact reused the original font name verbatim.
	StateExact State = iota
	// StateStyled mapped a known external family onto a base family,
	// keeping the bold/italic flags.
	StateStyled
	// StateFlags lost the family but kept the flags on the sans base.
	StateFlags
	// StatePlain is the terminal default: sans, no style.
	StatePlain
)

func (s State) String() string {
	switch s {
	case StateExact:
		return "exact"
	case StateStyled:
		return "styled-fallback"
	case StateFlags:
		return "flag-fallback"
	default:
		return "plain-fallback"
	}
}

// Resolved is the outcome of font resolution for one replacement run.
type Resolved struct {
	// Name is the font name handed to the renderer.
	Name   string
	Family Family
	Bold   bool
	Italic bool
	State  State
}

// base14 enumerates the renderer's native font names, keyed by family and
// style. These are the standard PostScript names.
var base14 = map[Family][4]string{
	FamilySans:  {"Helvetica", "Helvetica-Bold", "Helvetica-Oblique", "Helvetica-BoldOblique"},
	FamilySerif: {"Times-Roman", "Times-Bold", "Times-Italic", "Times-BoldItalic"},
	FamilyMono:  {"Courier", "Courier-Bold", "Courier-Oblique", "Courier-BoldOblique"},
}

// baseNames indexes every native name back to its family and style.
var baseNames = func() map[string]Resolved {
	m := make(map[string]Resolved)
	for family, names := range base14 {
		for i, name := range names {
			m[name] = Resolved{
				Name:   name,
				Family: family,
				Bold:   i&1 != 0,
				Italic: i&2 != 0,
				State:  StateExact,
			}
		}
	}
	return m
}()

// familyAliases maps common word-processor font families to a base family.
// Matching is substring-based on the lower-cased font name.
var familyAliases = []struct {
	needle string
	family Family
}{
	{"courier", FamilyMono},
	{"consolas", FamilyMono},
	{"menlo", FamilyMono},
	{"monaco", FamilyMono},
	{"mono", FamilyMono},
	{"times", FamilySerif},
	{"georgia", FamilySerif},
	{"cambria", FamilySerif},
	{"garamond", FamilySerif},
	{"palatino", FamilySerif},
	{"book antiqua", FamilySerif},
	{"bookman", FamilySerif},
	{"century", FamilySerif},
	{"arial", FamilySans},
	{"helvetica", FamilySans},
	{"calibri", FamilySans},
	{"verdana", FamilySans},
	{"tahoma", FamilySans},
	{"segoe", FamilySans},
	{"liberation sans", FamilySans},
}

// Resolver selects a renderer font for replacement runs.
type Resolver struct {
	logger *logger.Logger
}

// NewResolver creates a resolver. It never fails and resolution never
// returns an error: the chain always terminates at the plain default.
func NewResolver(log *logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{logger: log.WithPhase("font-resolve")}
}

// Resolve walks the fallback chain for the original run's font name and
// style flags, evaluated once per run requiring replacement.
func (r *Resolver) Resolve(fontName string, bold, italic bool) Resolved {
	// Exact: the name is one the renderer natively understands,
	// bold/italic suffix included.
	if exact, ok := baseNames[fontName]; ok {
		return exact
	}

	// The name may carry style the flags do not.
	lower := strings.ToLower(fontName)
	bold = bold || strings.Contains(lower, "bold")
	italic = italic || strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")

	// Styled fallback: a known external family mapped onto a base family.
	for _, alias := range familyAliases {
		if strings.Contains(lower, alias.needle) {
			res := pick(alias.family, bold, italic, StateStyled)
			r.logger.Debug("font mapped to base family",
				zap.String("font", fontName),
				zap.String("resolved", res.Name),
			)
			return res
		}
	}

	// Flag-only fallback: family unknown, style preserved on sans.
	if bold || italic {
		res := pick(FamilySans, bold, italic, StateFlags)
		r.logger.Debug("font family unresolved, keeping style flags",
			zap.String("font", fontName),
			zap.String("resolved", res.Name),
		)
		return res
	}

	// Plain fallback.
	r.logger.Debug("font unresolved, using default",
		zap.String("font", fontName),
	)
	return pick(FamilySans, false, false, StatePlain)
}

func pick(family Family, bold, italic bool, state State) Resolved {
	idx := 0
	if bold {
		idx |= 1
	}
	if italic {
		idx |= 2
	}
	return Resolved{
		Name:   base14[family][idx],
		Family: family,
		Bold:   bold,
		Italic: italic,
		State:  state,
	}
}
