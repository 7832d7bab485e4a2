package anonymizer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Loran-38/anonyjud/internal/logger"
	"go.uber.org/zap"
)

// Engine is the reversible substitution engine. It turns entity values into
// tags and, with the produced Mapping, turns tags back into values.
type Engine struct {
	logger          *logger.Logger
	patternFallback bool
}

// NewEngine creates a substitution engine. When patternFallback is set and a
// call carries no entities, phone- and email-shaped tokens are tagged
// generically instead.
func NewEngine(patternFallback bool, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		logger:          log,
		patternFallback: patternFallback,
	}
}

// Anonymize replaces every occurrence of the entities' values in text with
// freshly allocated tags and returns the anonymized text plus the mapping
// needed to reverse it. Counters reset per call, so the same input always
// produces the same mapping.
func (e *Engine) Anonymize(text string, entities []Entity) (string, *Mapping) {
	rep := e.NewReplacer(entities)
	out := rep.Apply(text)
	if len(entities) == 0 && e.patternFallback {
		out = rep.ApplyPatterns(out)
	}
	rep.LogUnmatched()
	return out, rep.Mapping()
}

// NewReplacer builds a Replacer for one anonymization call. Callers that
// process a document in pieces (paragraph blocks, page runs) apply the same
// Replacer to every piece so that all pieces share one mapping and one set
// of counters.
func (e *Engine) NewReplacer(entities []Entity) *Replacer {
	rep := &Replacer{
		alloc:   NewAllocator(),
		mapping: NewMapping(),
		matches: make(map[string]int),
		logger:  e.logger.WithPhase("match"),
	}
	for _, entity := range entities {
		for _, attr := range entity.attributes() {
			if attr.value == "" || utf8.RuneCountInString(attr.value) <= attr.minLen {
				continue
			}
			// The tag is allocated and registered before any match is
			// attempted; an entity with zero occurrences still owns its
			// counter slot and its mapping row.
			tag := rep.alloc.Next(attr.category)
			if err := rep.mapping.Add(tag, attr.value); err != nil {
				// Unreachable with a fresh allocator.
				rep.logger.Warn("duplicate tag skipped", zap.String("tag", tag))
				continue
			}
			rep.rules = append(rep.rules, rule{
				tag:     tag,
				value:   attr.value,
				mode:    attr.mode,
				matcher: compileRule(attr),
			})
		}
	}
	return rep
}

// rule is one (value, tag) replacement with its compiled matcher.
type rule struct {
	tag     string
	value   string
	mode    matchMode
	matcher *regexp.Regexp // nil for matchExact
}

// Replacer applies one call's replacement set to any number of text buffers.
// It is not safe for concurrent use; one document is processed sequentially.
type Replacer struct {
	alloc   *Allocator
	mapping *Mapping
	rules   []rule
	matches map[string]int
	logger  *logger.Logger
}

// Mapping returns the tag→value table built so far.
func (r *Replacer) Mapping() *Mapping {
	return r.mapping
}

// Apply substitutes every rule into text, in entity order, and returns the
// anonymized buffer.
func (r *Replacer) Apply(text string) string {
	for _, rl := range r.rules {
		var count int
		switch rl.mode {
		case matchExact:
			// Exact replace: mixed-case street and company text must not
			// go through a case-folding pass.
			count = strings.Count(text, rl.value)
			if count > 0 {
				text = strings.ReplaceAll(text, rl.value, rl.tag)
			}
		default:
			count = len(rl.matcher.FindAllStringIndex(text, -1))
			if count > 0 {
				text = rl.matcher.ReplaceAllLiteralString(text, rl.tag)
			}
			if rl.mode == matchCaseVariants {
				// The case-insensitive pass should have removed these,
				// but the upper and lower variants are cleared explicitly
				// so a per-match normalizing engine cannot leave one behind.
				for _, variant := range []string{strings.ToUpper(rl.value), strings.ToLower(rl.value)} {
					if c := strings.Count(text, variant); c > 0 {
						text = strings.ReplaceAll(text, variant, rl.tag)
						count += c
					}
				}
			}
		}
		r.matches[rl.tag] += count
		if count > 0 {
			r.logger.Debug("value replaced",
				zap.String("tag", rl.tag),
				zap.Int("count", count),
			)
		}
	}
	return text
}

// MatchCount reports how many occurrences were replaced for tag across all
// buffers this Replacer has processed.
func (r *Replacer) MatchCount(tag string) int {
	return r.matches[tag]
}

// UnmatchedTags returns the tags whose value never occurred in any processed
// buffer. The tags stay in the mapping; this is diagnostic only.
func (r *Replacer) UnmatchedTags() []string {
	var out []string
	for _, tag := range r.mapping.Tags() {
		if r.matches[tag] == 0 {
			out = append(out, tag)
		}
	}
	return out
}

// LogUnmatched emits a warning per tag that produced zero matches.
func (r *Replacer) LogUnmatched() {
	for _, tag := range r.UnmatchedTags() {
		r.logger.Warn("entity value not found in text",
			zap.String("tag", tag),
		)
	}
}

// compileRule builds the matcher for an attribute, or nil when plain string
// replacement is used.
func compileRule(attr attribute) *regexp.Regexp {
	switch attr.mode {
	case matchCaseVariants:
		return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(attr.value))
	case matchPhone:
		return phonePattern(attr.value)
	default:
		return nil
	}
}

// phonePattern matches the value's digit sequence with any mix of spaces,
// dots and dashes between digits, so "06 12 34 56 78" and "0612345678"
// both hit the same stored number.
func phonePattern(value string) *regexp.Regexp {
	digits := stripPhoneSeparators(value)
	if digits == "" {
		return regexp.MustCompile(regexp.QuoteMeta(value))
	}
	parts := make([]string, 0, len(digits))
	for _, r := range digits {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return regexp.MustCompile(strings.Join(parts, `[\s.\-]*`))
}

// stripPhoneSeparators removes the separators accepted inside phone values.
func stripPhoneSeparators(value string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '-':
			return -1
		}
		return r
	}, value)
}
