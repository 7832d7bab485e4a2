package pagedoc

import (
	"errors"
	"strings"
	"testing"

	"github.com/Loran-38/anonyjud/internal/anonymizer"
	"github.com/Loran-38/anonyjud/internal/fontkit"
)

// fakePage records erase and draw operations instead of painting.
type fakePage struct {
	index    int
	runs     []TextRun
	erased   []Rect
	drawn    []TextRun
	ops      []string // "erase" / "draw" interleaving
	failRun  int      // block index whose erase fails, -1 for none
	failDraw string   // drawing text containing this substring fails
	runsErr  error
}

func newFakePage(index int, runs ...TextRun) *fakePage {
	return &fakePage{index: index, runs: runs, failRun: -1}
}

func (p *fakePage) Index() int { return p.index }

func (p *fakePage) Runs() ([]TextRun, error) {
	if p.runsErr != nil {
		return nil, p.runsErr
	}
	return p.runs, nil
}

func (p *fakePage) Erase(r Rect) error {
	for _, run := range p.runs {
		if run.BBox == r && run.Block == p.failRun {
			return errors.New("unreadable metrics")
		}
	}
	p.erased = append(p.erased, r)
	p.ops = append(p.ops, "erase")
	return nil
}

func (p *fakePage) DrawText(run TextRun, baseline float64) error {
	if baseline <= run.BBox.Y0 {
		return errors.New("baseline above box top")
	}
	if p.failDraw != "" && strings.Contains(run.Text, p.failDraw) {
		return errors.New("glyph stream rejected")
	}
	p.drawn = append(p.drawn, run)
	p.ops = append(p.ops, "draw")
	return nil
}

type fakeDoc struct{ pages []Page }

func (d *fakeDoc) Pages() []Page { return d.pages }

func newTestRewriter(t *testing.T) (*Rewriter, *anonymizer.Engine) {
	t.Helper()
	catalog, err := fontkit.NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	rw := NewRewriter(
		fontkit.NewResolver(nil),
		fontkit.NewFitter(catalog, 4, 0.5, 11),
		nil,
	)
	return rw, anonymizer.NewEngine(false, nil)
}

func sampleRun(block int, text string) TextRun {
	top := 700 + float64(block)*20
	return TextRun{
		Text:  text,
		Font:  "Arial",
		Flags: FlagBold,
		Color: 0x112233,
		Size:  11,
		BBox:  Rect{X0: 50, Y0: top, X1: 350, Y1: top + 13},
		Block: block,
	}
}

func TestRewriterAnonymize(t *testing.T) {
	rw, engine := newTestRewriter(t)
	entities := []anonymizer.Entity{{Name: "HUISSOUD", FirstName: "Louis"}}

	t.Run("MatchedRunsRedrawn", func(t *testing.T) {
		page := newFakePage(0,
			sampleRun(0, "Monsieur HUISSOUD Louis"),
			sampleRun(1, "texte sans entité"),
		)
		mapping, result, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine)
		if err != nil {
			t.Fatal(err)
		}
		if result.RunsRewritten != 1 {
			t.Fatalf("rewrote %d runs, want 1", result.RunsRewritten)
		}
		if len(page.drawn) != 1 {
			t.Fatalf("drew %d runs, want 1", len(page.drawn))
		}
		got := page.drawn[0]
		if !strings.Contains(got.Text, "NOM1") || !strings.Contains(got.Text, "PRENOM1") {
			t.Errorf("replacement text = %q", got.Text)
		}
		if got.Color != 0x112233 {
			t.Errorf("color changed: %06x", got.Color)
		}
		if got.Font != "Helvetica-Bold" {
			t.Errorf("Arial bold should resolve to Helvetica-Bold, got %s", got.Font)
		}
		if v, _ := mapping.Value("NOM1"); v != "HUISSOUD" {
			t.Errorf("mapping NOM1 = %q", v)
		}
	})

	t.Run("EraseBeforeDraw", func(t *testing.T) {
		page := newFakePage(0, sampleRun(0, "HUISSOUD"))
		if _, _, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine); err != nil {
			t.Fatal(err)
		}
		if len(page.ops) != 2 || page.ops[0] != "erase" || page.ops[1] != "draw" {
			t.Errorf("operation order = %v, want [erase draw]", page.ops)
		}
		if page.erased[0] != page.runs[0].BBox {
			t.Errorf("erased %v, want the original bbox %v", page.erased[0], page.runs[0].BBox)
		}
	})

	t.Run("BoundingBoxContainment", func(t *testing.T) {
		// A narrow box forces the fitter to shrink.
		narrow := sampleRun(0, "HUISSOUD")
		narrow.BBox = Rect{X0: 50, Y0: 700, X1: 72, Y1: 713}
		page := newFakePage(0, narrow)
		if _, _, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine); err != nil {
			t.Fatal(err)
		}
		got := page.drawn[0]
		if got.BBox.Width() > narrow.BBox.Width()+1e-9 {
			t.Errorf("replacement box %g wider than original %g", got.BBox.Width(), narrow.BBox.Width())
		}
		if got.Size > narrow.Size {
			t.Errorf("size grew: %g", got.Size)
		}
	})

	t.Run("UntouchedRunsNotRedrawn", func(t *testing.T) {
		page := newFakePage(0, sampleRun(0, "rien ici"))
		_, result, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine)
		if err != nil {
			t.Fatal(err)
		}
		if result.RunsRewritten != 0 || len(page.drawn) != 0 || len(page.erased) != 0 {
			t.Errorf("page was touched: %+v", result)
		}
	})

	t.Run("PerRunFailureContinues", func(t *testing.T) {
		page := newFakePage(0,
			sampleRun(0, "HUISSOUD ici"),
			sampleRun(1, "HUISSOUD là"),
		)
		page.failRun = 0
		_, result, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine)
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Failures) != 1 {
			t.Fatalf("failures = %d, want 1", len(result.Failures))
		}
		if result.Failures[0].Block != 0 {
			t.Errorf("failed block = %d, want 0", result.Failures[0].Block)
		}
		if result.RunsRewritten != 1 {
			t.Errorf("rewrote %d runs, want the second one despite the first failing", result.RunsRewritten)
		}
	})

	t.Run("DrawFailureRepaintsOriginal", func(t *testing.T) {
		page := newFakePage(0, sampleRun(0, "HUISSOUD ici"))
		page.failDraw = "NOM" // replacement text fails, original text draws fine
		_, result, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine)
		if err != nil {
			t.Fatal(err)
		}
		if len(result.Failures) != 1 || result.RunsRewritten != 0 {
			t.Fatalf("result = %+v, want one failure and zero rewrites", result)
		}
		if len(page.erased) != 1 {
			t.Fatalf("erased %d boxes, want 1", len(page.erased))
		}
		// The erased box must not stay blank: the original run is painted back.
		if len(page.drawn) != 1 {
			t.Fatalf("drew %d runs, want the original repainted", len(page.drawn))
		}
		got := page.drawn[0]
		if got.Text != "HUISSOUD ici" || got.Font != "Arial" || got.Size != 11 {
			t.Errorf("repainted run = %+v, want the original text, font and size", got)
		}
	})

	t.Run("EmptyDocument", func(t *testing.T) {
		if _, _, err := rw.Anonymize(&fakeDoc{}, entities, engine); !errors.Is(err, ErrNoPages) {
			t.Errorf("error = %v, want ErrNoPages", err)
		}
	})
}

func TestRewriterRestore(t *testing.T) {
	rw, engine := newTestRewriter(t)
	entities := []anonymizer.Entity{{Name: "HUISSOUD"}}

	page := newFakePage(0, sampleRun(0, "Monsieur HUISSOUD comparaît"))
	mapping, _, err := rw.Anonymize(&fakeDoc{pages: []Page{page}}, entities, engine)
	if err != nil {
		t.Fatal(err)
	}

	// Feed the anonymized run into a fresh page and restore it.
	anonymized := page.drawn[0]
	back := newFakePage(0, anonymized)
	result, err := rw.Restore(&fakeDoc{pages: []Page{back}}, mapping, engine)
	if err != nil {
		t.Fatal(err)
	}
	if result.RunsRewritten != 1 {
		t.Fatalf("restored %d runs, want 1", result.RunsRewritten)
	}
	if got := back.drawn[0].Text; got != "Monsieur HUISSOUD comparaît" {
		t.Errorf("restored text = %q", got)
	}
	// The restored run stays anchored at the original left edge.
	if back.drawn[0].BBox.X0 != anonymized.BBox.X0 {
		t.Errorf("left edge drifted: %g vs %g", back.drawn[0].BBox.X0, anonymized.BBox.X0)
	}
}

func TestLocator(t *testing.T) {
	t.Run("ReadingOrder", func(t *testing.T) {
		a := sampleRun(1, "second")
		b := sampleRun(0, "first")
		c := sampleRun(1, "third")
		c.Line = 1
		page := newFakePage(0, a, c, b)

		locator, err := NewLocator(page)
		if err != nil {
			t.Fatal(err)
		}
		runs := locator.Runs()
		order := []string{runs[0].Text, runs[1].Text, runs[2].Text}
		want := []string{"first", "second", "third"}
		for i := range want {
			if order[i] != want[i] {
				t.Errorf("runs[%d] = %q, want %q", i, order[i], want[i])
			}
		}
	})

	t.Run("FindContaining", func(t *testing.T) {
		page := newFakePage(0,
			sampleRun(0, "Monsieur HUISSOUD"),
			sampleRun(1, "autre texte"),
		)
		locator, err := NewLocator(page)
		if err != nil {
			t.Fatal(err)
		}
		hits := locator.FindContaining("HUISSOUD")
		if len(hits) != 1 || hits[0].Block != 0 {
			t.Errorf("hits = %+v", hits)
		}
	})

	t.Run("RunsError", func(t *testing.T) {
		page := newFakePage(0)
		page.runsErr = errors.New("torn page")
		if _, err := NewLocator(page); err == nil {
			t.Error("expected error")
		}
	})
}
