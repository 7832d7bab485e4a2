package anonymizer

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Restore replaces every tag in text with its original value. Tags are
// processed longest first so NOM10 is never clipped by NOM1. Each tag is
// first replaced on word boundaries; when that pass leaves the occurrence
// count unchanged, an unconditioned substring replace is used as a last
// resort. That fallback can corrupt a partial match and is a documented
// trade-off, not a safe path.
//
// Tags absent from the text are skipped silently; a leftover tag is never
// an error. For text produced by Anonymize with entities whose values do
// not contain other entities' tags, Restore(Anonymize(t)) == t.
func (e *Engine) Restore(text string, m *Mapping) string {
	log := e.logger.WithPhase("restore")
	for _, tag := range m.TagsByLength() {
		value, ok := m.Value(tag)
		if !ok {
			continue
		}
		before := strings.Count(text, tag)
		if before == 0 {
			continue
		}
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(tag) + `\b`)
		replaced := re.ReplaceAllLiteralString(text, value)
		if after := strings.Count(replaced, tag); after >= before {
			// Word boundaries did not bite (the tag abuts a word
			// character); fall back to a plain substring replace.
			log.Debug("boundary restore missed, using substring fallback",
				zap.String("tag", tag),
			)
			text = strings.ReplaceAll(text, tag, value)
			continue
		}
		text = replaced
		log.Debug("tag restored",
			zap.String("tag", tag),
			zap.Int("count", before),
		)
	}
	return text
}
