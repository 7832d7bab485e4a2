package pagedoc

import (
	"fmt"
	"sort"
	"strings"
)

// Locator is a read-only index of one page's runs with their style and
// position metadata, in reading order. It is the only way the rewriter
// learns where and how text is painted.
type Locator struct {
	page Page
	runs []TextRun
}

// NewLocator indexes the page's runs. The index is built once per page and
// never refreshed: replacements drawn afterwards are not re-read.
func NewLocator(page Page) (*Locator, error) {
	runs, err := page.Runs()
	if err != nil {
		return nil, fmt.Errorf("index page %d: %w", page.Index(), err)
	}
	indexed := make([]TextRun, len(runs))
	copy(indexed, runs)
	// Reading order even if the reader hands runs back unsorted.
	sort.SliceStable(indexed, func(i, j int) bool {
		a, b := indexed[i], indexed[j]
		if a.Block != b.Block {
			return a.Block < b.Block
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Run < b.Run
	})
	return &Locator{page: page, runs: indexed}, nil
}

// Runs returns the indexed runs in reading order.
func (l *Locator) Runs() []TextRun {
	return l.runs
}

// FindContaining returns the runs whose text contains substr.
func (l *Locator) FindContaining(substr string) []TextRun {
	var out []TextRun
	for _, run := range l.runs {
		if strings.Contains(run.Text, substr) {
			out = append(out, run)
		}
	}
	return out
}
