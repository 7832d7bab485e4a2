package fontkit

import (
	"fmt"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Catalog measures text in the base families using real font metrics parsed
// from the bundled Go faces. Widths for the serif family are measured with
// the sans face: the bundled set has no serif, and the sans face runs wider
// than Times, so a fitted width never overflows the target box.
//
// All measurements are returned in points for the given nominal size.
type Catalog struct {
	faces map[faceKey]*face
}

type faceKey struct {
	family Family
	bold   bool
	italic bool
}

type face struct {
	font       *sfnt.Font
	buf        sfnt.Buffer
	unitsPerEm sfnt.Units
	ppem       fixed.Int26_6
}

// NewCatalog parses the bundled faces. Parsing only fails if the embedded
// font data is corrupt, so an error here is always a build problem.
func NewCatalog() (*Catalog, error) {
	sources := map[faceKey][]byte{
		{FamilySans, false, false}: goregular.TTF,
		{FamilySans, true, false}:  gobold.TTF,
		{FamilySans, false, true}:  goitalic.TTF,
		{FamilySans, true, true}:   gobolditalic.TTF,
		{FamilyMono, false, false}: gomono.TTF,
		{FamilyMono, true, false}:  gomonobold.TTF,
		{FamilyMono, false, true}:  gomonoitalic.TTF,
		{FamilyMono, true, true}:   gomonobolditalic.TTF,
	}

	c := &Catalog{faces: make(map[faceKey]*face, len(sources))}
	for key, data := range sources {
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse bundled face %v: %w", key, err)
		}
		unitsPerEm := f.UnitsPerEm()
		if unitsPerEm == 0 {
			return nil, fmt.Errorf("bundled face %v has invalid unitsPerEm", key)
		}
		c.faces[key] = &face{
			font:       f,
			unitsPerEm: unitsPerEm,
			ppem:       fixed.Int26_6(int32(unitsPerEm) << 6),
		}
	}
	return c, nil
}

// faceFor returns the measuring face for a resolution. Serif measures with
// the sans face, see the Catalog doc comment.
func (c *Catalog) faceFor(res Resolved) *face {
	family := res.Family
	if family == FamilySerif {
		family = FamilySans
	}
	if f, ok := c.faces[faceKey{family, res.Bold, res.Italic}]; ok {
		return f
	}
	return c.faces[faceKey{FamilySans, false, false}]
}

// Width returns the rendered width of text in points at the given size.
func (c *Catalog) Width(text string, res Resolved, size float64) float64 {
	f := c.faceFor(res)
	var total float64
	for _, r := range text {
		gi, err := f.font.GlyphIndex(&f.buf, r)
		if err != nil || gi == 0 {
			// Unknown glyph: the renderer will draw notdef or a
			// substitute; measure with '?' rather than skip the rune.
			gi, err = f.font.GlyphIndex(&f.buf, '?')
			if err != nil {
				continue
			}
		}
		adv, err := f.font.GlyphAdvance(&f.buf, gi, f.ppem, xfont.HintingNone)
		if err != nil {
			continue
		}
		total += f.scale(adv)
	}
	return total * size / 1000.0
}

// Ascent returns the typographic ascent in points at the given size. The
// rewriter places the baseline ascent points below the top of the original
// box so different fonts at the same nominal size stay visually aligned.
func (c *Catalog) Ascent(res Resolved, size float64) float64 {
	f := c.faceFor(res)
	metrics, err := f.font.Metrics(&f.buf, f.ppem, xfont.HintingNone)
	if err != nil {
		// Typical latin ascent as a last resort.
		return 0.8 * size
	}
	return f.scale(metrics.Ascent) * size / 1000.0
}

// scale converts a fixed-point value in font units to thousandths of an em.
func (f *face) scale(val fixed.Int26_6) float64 {
	return float64(val) * 1000.0 / (64.0 * float64(f.unitsPerEm))
}
