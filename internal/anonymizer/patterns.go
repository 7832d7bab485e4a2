package anonymizer

import (
	"regexp"

	"go.uber.org/zap"
)

// Fixed shapes for the pattern-only fallback mode. French phone numbers
// (ten digits starting with 0, pairs optionally separated) and ordinary
// email addresses.
var (
	phoneShape = regexp.MustCompile(`\b0[1-9](?:[\s.\-]?\d{2}){4}\b`)
	emailShape = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
)

// ApplyPatterns runs the pattern-only fallback over text: phone-shaped then
// email-shaped tokens are tagged TEL{n} / EMAIL{n} in first-seen order. A
// token whose value is already in the mapping reuses its existing tag
// instead of consuming a new counter slot.
func (r *Replacer) ApplyPatterns(text string) string {
	text = r.tagMatches(text, phoneShape, CategoryPhone)
	text = r.tagMatches(text, emailShape, CategoryEmail)
	return text
}

func (r *Replacer) tagMatches(text string, shape *regexp.Regexp, category Category) string {
	for {
		loc := shape.FindStringIndex(text)
		if loc == nil {
			return text
		}
		value := text[loc[0]:loc[1]]
		tag, known := r.mapping.TagFor(value)
		if !known {
			tag = r.alloc.Next(category)
			if err := r.mapping.Add(tag, value); err != nil {
				// The tag collides with one loaded from elsewhere; leave
				// the token alone rather than corrupt the mapping.
				r.logger.Warn("pattern tag collision",
					zap.String("tag", tag),
				)
				return text
			}
			r.logger.Debug("pattern token tagged",
				zap.String("tag", tag),
				zap.String("category", string(category)),
			)
		}
		// Replace every occurrence of this exact token, then rescan for
		// the next distinct one.
		count := 0
		for {
			next := shape.FindStringIndex(text)
			if next == nil || text[next[0]:next[1]] != value {
				break
			}
			text = text[:next[0]] + tag + text[next[1]:]
			count++
		}
		r.matches[tag] += count
	}
}
