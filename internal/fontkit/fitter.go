package fontkit

// FitResult describes how a replacement text was sized into the original
// run's bounding box.
type FitResult struct {
	// Size is the chosen font size in points.
	Size float64
	// Width is the rendered width at Size.
	Width float64
	// Floored is set when the legibility floor was reached with the text
	// still wider than the box.
	Floored bool
}

// Fitter chooses a font size so replacement text occupies the original
// run's horizontal slot.
type Fitter struct {
	catalog *Catalog
	// MinSize is the legibility floor; the fitter never shrinks below it.
	MinSize float64
	// Step is the size decrement per shrink iteration.
	Step float64
	// DefaultSize replaces a missing or non-positive run size.
	DefaultSize float64
}

// NewFitter creates a fitter over the given metrics catalog. Zero minSize,
// step or defaultSize fall back to 4pt, 0.5pt and 11pt.
func NewFitter(catalog *Catalog, minSize, step, defaultSize float64) *Fitter {
	if minSize <= 0 {
		minSize = 4
	}
	if step <= 0 {
		step = 0.5
	}
	if defaultSize <= 0 {
		defaultSize = 11
	}
	return &Fitter{catalog: catalog, MinSize: minSize, Step: step, DefaultSize: defaultSize}
}

// Fit shrinks from the original size until text fits boxWidth or the floor
// is reached. The last decrement clamps to the floor, so the floor size
// itself is always tried before the fit is reported as floored. Placement
// starts at the original run's left edge; only the size is negotiated here.
func (f *Fitter) Fit(text string, res Resolved, origSize, boxWidth float64) FitResult {
	size := origSize
	if size <= 0 {
		size = f.DefaultSize
	}
	width := f.catalog.Width(text, res, size)
	for width > boxWidth && size > f.MinSize {
		size -= f.Step
		if size < f.MinSize {
			size = f.MinSize
		}
		width = f.catalog.Width(text, res, size)
	}
	return FitResult{
		Size:    size,
		Width:   width,
		Floored: width > boxWidth,
	}
}

// Baseline returns the y coordinate of the replacement baseline for a box
// whose top edge is at boxTop, in a page space where y grows downward.
func (f *Fitter) Baseline(res Resolved, size, boxTop float64) float64 {
	return boxTop + f.catalog.Ascent(res, size)
}
