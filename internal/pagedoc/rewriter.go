package pagedoc

import (
	"fmt"

	"github.com/Loran-38/anonyjud/internal/anonymizer"
	"github.com/Loran-38/anonyjud/internal/fontkit"
	"github.com/Loran-38/anonyjud/internal/logger"
	"go.uber.org/zap"
)

// RunFailure records one run that could not be rewritten. The run is left
// unmodified; the page keeps its original text there.
type RunFailure struct {
	Page  int
	Block int
	Line  int
	Run   int
	Err   error
}

func (f RunFailure) Error() string {
	return fmt.Sprintf("page %d block %d line %d run %d: %v", f.Page, f.Block, f.Line, f.Run, f.Err)
}

// Result summarizes one rewriting pass over a document.
type Result struct {
	PagesProcessed int
	RunsRewritten  int
	RunsFloored    int
	Failures       []RunFailure
}

// Rewriter orchestrates locator, font resolver and text fitter to erase a
// matched run's visual area and redraw replacement text with matching style.
type Rewriter struct {
	resolver *fontkit.Resolver
	fitter   *fontkit.Fitter
	logger   *logger.Logger
}

// NewRewriter builds a rewriter over the given resolver and fitter.
func NewRewriter(resolver *fontkit.Resolver, fitter *fontkit.Fitter, log *logger.Logger) *Rewriter {
	if log == nil {
		log = logger.Nop()
	}
	return &Rewriter{
		resolver: resolver,
		fitter:   fitter,
		logger:   log.WithPhase("rewrite"),
	}
}

// Anonymize rewrites every run whose text contains entity values and
// returns the mapping for the whole document. Pages are processed
// sequentially: each page object is mutated in place, so there is no
// parallel fan-out.
func (rw *Rewriter) Anonymize(doc Document, entities []anonymizer.Entity, engine *anonymizer.Engine) (*anonymizer.Mapping, Result, error) {
	if err := ValidateDocument(doc); err != nil {
		return nil, Result{}, err
	}
	rep := engine.NewReplacer(entities)
	result, err := rw.rewrite(doc, rep.Apply)
	rep.LogUnmatched()
	return rep.Mapping(), result, err
}

// Restore rewrites every run containing tags back to the original values.
func (rw *Rewriter) Restore(doc Document, mapping *anonymizer.Mapping, engine *anonymizer.Engine) (Result, error) {
	if err := ValidateDocument(doc); err != nil {
		return Result{}, err
	}
	return rw.rewrite(doc, func(text string) string {
		return engine.Restore(text, mapping)
	})
}

// rewrite walks the document and applies transform to every run, redrawing
// the runs whose text changed. Per-run failures are recorded and skipped;
// only validation stops the pass.
func (rw *Rewriter) rewrite(doc Document, transform func(string) string) (Result, error) {
	var result Result
	for _, page := range doc.Pages() {
		locator, err := NewLocator(page)
		if err != nil {
			result.Failures = append(result.Failures, RunFailure{Page: page.Index(), Err: err})
			continue
		}
		for _, run := range locator.Runs() {
			replacement := transform(run.Text)
			if replacement == run.Text {
				continue
			}
			if err := rw.rewriteRun(page, run, replacement, &result); err != nil {
				result.Failures = append(result.Failures, RunFailure{
					Page:  page.Index(),
					Block: run.Block,
					Line:  run.Line,
					Run:   run.Run,
					Err:   err,
				})
				rw.logger.Warn("run not rewritten",
					zap.Int("page", page.Index()),
					zap.Int("block", run.Block),
					zap.Int("line", run.Line),
					zap.Int("run", run.Run),
					zap.Error(err),
				)
			}
		}
		result.PagesProcessed++
	}
	return result, nil
}

// rewriteRun erases one run's box and paints the replacement text into it.
func (rw *Rewriter) rewriteRun(page Page, run TextRun, replacement string, result *Result) error {
	resolved := rw.resolver.Resolve(run.Font, run.Flags.Bold(), run.Flags.Italic())
	fit := rw.fitter.Fit(replacement, resolved, run.Size, run.BBox.Width())
	if fit.Floored {
		result.RunsFloored++
		rw.logger.Warn("replacement wider than box at floor size",
			zap.Int("page", page.Index()),
			zap.String("font", resolved.Name),
			zap.Float64("size", fit.Size),
		)
	}

	if err := page.Erase(run.BBox); err != nil {
		return fmt.Errorf("erase: %w", err)
	}

	// Horizontal placement starts at the original left edge so a
	// rewrite/restore round trip does not drift the text. The box is
	// clipped to the original's extent.
	width := fit.Width
	if width > run.BBox.Width() {
		width = run.BBox.Width()
	}
	out := TextRun{
		Text:  replacement,
		Font:  resolved.Name,
		Flags: run.Flags,
		Color: run.Color, // color never participates in font fallback
		Size:  fit.Size,
		BBox: Rect{
			X0: run.BBox.X0,
			Y0: run.BBox.Y0,
			X1: run.BBox.X0 + width,
			Y1: run.BBox.Y1,
		},
		Page:  run.Page,
		Block: run.Block,
		Line:  run.Line,
		Run:   run.Run,
	}
	baseline := rw.fitter.Baseline(resolved, fit.Size, run.BBox.Y0)
	if err := page.DrawText(out, baseline); err != nil {
		// The box is already erased; paint the original glyphs back so a
		// failed run keeps its text instead of a blank hole. Best effort:
		// when the repaint fails too there is nothing left to try.
		origBaseline := rw.fitter.Baseline(resolved, run.Size, run.BBox.Y0)
		if repaintErr := page.DrawText(run, origBaseline); repaintErr != nil {
			rw.logger.Error("erased run could not be repainted",
				zap.Int("page", page.Index()),
				zap.Int("block", run.Block),
				zap.Int("line", run.Line),
				zap.Int("run", run.Run),
				zap.Error(repaintErr),
			)
		}
		return fmt.Errorf("draw: %w", err)
	}

	result.RunsRewritten++
	rw.logger.Debug("run rewritten",
		zap.Int("page", page.Index()),
		zap.Int("block", run.Block),
		zap.Int("line", run.Line),
		zap.Int("run", run.Run),
		zap.String("font", resolved.Name),
		zap.String("resolution", resolved.State.String()),
		zap.Float64("size", fit.Size),
	)
	return nil
}
