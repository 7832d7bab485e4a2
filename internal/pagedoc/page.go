package pagedoc

import "errors"

// Validation errors raised before any rewriting work starts.
var (
	// ErrNoPages is returned for a document exposing zero pages.
	ErrNoPages = errors.New("document contains no pages")
)

// Page is the collaborator contract with the page-document container layer.
// The container reader owns parsing and serialization; the rewriter only
// needs the indexed runs and two drawing operations.
type Page interface {
	// Index is the zero-based page number.
	Index() int
	// Runs returns the page's text runs in reading order
	// (block, then line, then run).
	Runs() ([]TextRun, error)
	// Erase covers the rectangle opaquely with the page background, so no
	// fragment of the original glyphs survives under the replacement.
	Erase(r Rect) error
	// DrawText paints a replacement run. The baseline y coordinate is
	// precomputed from the resolved font's ascent; the renderer places the
	// text at run.BBox.X0 on that baseline.
	DrawText(run TextRun, baseline float64) error
}

// Document is an ordered sequence of pages.
type Document interface {
	Pages() []Page
}

// ValidateDocument fails fast on documents the rewriter must not touch.
func ValidateDocument(doc Document) error {
	if doc == nil || len(doc.Pages()) == 0 {
		return ErrNoPages
	}
	return nil
}
