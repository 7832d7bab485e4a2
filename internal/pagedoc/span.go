// Package pagedoc rewrites positioned text runs on fixed-layout pages
// in place. It consumes the page model a container reader exposes (ordered,
// styled text runs with bounding boxes) and replaces matched text while
// preserving font, weight, slant, color and horizontal fit. Parsing and
// serializing the container is the caller's concern.
package pagedoc

// Color is a packed 0xRRGGBB value; 0 is black.
type Color uint32

// StyleFlags carries the run's style bits. The bit layout matches the page
// readers this package consumes runs from.
type StyleFlags uint32

const (
	FlagSuperscript StyleFlags = 1 << 0
	FlagItalic      StyleFlags = 1 << 1
	FlagSerifed     StyleFlags = 1 << 2
	FlagMonospaced  StyleFlags = 1 << 3
	FlagBold        StyleFlags = 1 << 4
)

// Bold reports the bold bit.
func (f StyleFlags) Bold() bool { return f&FlagBold != 0 }

// Italic reports the italic bit.
func (f StyleFlags) Italic() bool { return f&FlagItalic != 0 }

// Rect is an axis-aligned box in page coordinates. Y grows downward; Y0 is
// the top edge.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// TextRun is one positioned, styled piece of text on a page. Runs read from
// a page are immutable; a replacement is a new TextRun drawn after the
// original's area is erased.
type TextRun struct {
	Text  string
	Font  string
	Flags StyleFlags
	Color Color
	Size  float64
	BBox  Rect

	// Structural path in reading order.
	Page  int
	Block int
	Line  int
	Run   int
}
