// Package document applies the substitution and restoration engines to
// flat, paragraph-shaped documents: the sequence of text blocks a
// word-processor or open-document container reader hands over (body
// paragraphs and table cells alike). Container parsing and serialization
// stay with the caller; this package only transforms the text.
package document

import (
	"errors"

	"github.com/Loran-38/anonyjud/internal/anonymizer"
	"github.com/Loran-38/anonyjud/internal/logger"
	"go.uber.org/zap"
)

// ErrNoBlocks is returned when a document exposes zero text blocks.
var ErrNoBlocks = errors.New("document contains no text blocks")

// Block is one paragraph-like unit of the document, in reading order.
// Index is the caller's handle to put the text back where it came from.
type Block struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Processor runs whole-document anonymization and restoration over blocks.
type Processor struct {
	engine *anonymizer.Engine
	logger *logger.Logger
}

// NewProcessor creates a block processor backed by the given engine.
func NewProcessor(engine *anonymizer.Engine, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{engine: engine, logger: log.WithComponent("document")}
}

// Anonymize replaces entity values in every block and returns the rewritten
// blocks plus the mapping. All blocks share one replacement pass: tags and
// counters are allocated once for the whole document, not per block.
func (p *Processor) Anonymize(blocks []Block, entities []anonymizer.Entity) ([]Block, *anonymizer.Mapping, error) {
	if len(blocks) == 0 {
		return nil, nil, ErrNoBlocks
	}

	rep := p.engine.NewReplacer(entities)
	out := make([]Block, len(blocks))
	for i, block := range blocks {
		out[i] = Block{Index: block.Index, Text: rep.Apply(block.Text)}
	}
	rep.LogUnmatched()

	p.logger.Info("document anonymized",
		zap.Int("blocks", len(blocks)),
		zap.Int("tags", rep.Mapping().Len()),
	)
	return out, rep.Mapping(), nil
}

// Restore puts original values back into every block using mapping.
func (p *Processor) Restore(blocks []Block, mapping *anonymizer.Mapping) ([]Block, error) {
	if len(blocks) == 0 {
		return nil, ErrNoBlocks
	}

	out := make([]Block, len(blocks))
	for i, block := range blocks {
		out[i] = Block{Index: block.Index, Text: p.engine.Restore(block.Text, mapping)}
	}

	p.logger.Info("document restored",
		zap.Int("blocks", len(blocks)),
		zap.Int("tags", mapping.Len()),
	)
	return out, nil
}
