package extract

import "fmt"

// Rect is an absolute rectangle in PDF points with a top-left origin.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Contains reports whether r fully contains o.
func (r Rect) Contains(o Rect) bool {
	return r.X0 <= o.X0 && o.X1 <= r.X1 && r.Y0 <= o.Y0 && o.Y1 <= r.Y1
}

// Intersects reports whether r and o share any area or edge.
func (r Rect) Intersects(o Rect) bool {
	return o.X0 <= r.X1 && r.X0 <= o.X1 && o.Y0 <= r.Y1 && r.Y0 <= o.Y1
}

// Scale multiplies the horizontal coordinates by sx and the vertical ones by sy.
func (r Rect) Scale(sx, sy float64) Rect {
	return Rect{X0: r.X0 * sx, Y0: r.Y0 * sy, X1: r.X1 * sx, Y1: r.Y1 * sy}
}

// Region is a rectangle expressed as fractions of the page width and height.
type Region struct {
	Left, Top, Right, Bottom float64
}

// Validate checks that the region is a proper rectangle inside the unit square.
func (r Region) Validate() error {
	for _, v := range []float64{r.Left, r.Top, r.Right, r.Bottom} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %v has a coordinate outside [0,1]", ErrInvalidRegion, r)
		}
	}
	if r.Left >= r.Right || r.Top >= r.Bottom {
		return fmt.Errorf("%w: %v is empty or inverted", ErrInvalidRegion, r)
	}
	return nil
}

// Abs converts the region to absolute points for a page of the given size.
func (r Region) Abs(width, height float64) Rect {
	return Rect{
		X0: r.Left * width,
		Y0: r.Top * height,
		X1: r.Right * width,
		Y1: r.Bottom * height,
	}
}

var (
	// FirstPageRegion skips the title block that only appears on the first page.
	FirstPageRegion = Region{Left: 0.15966, Top: 0.20485, Right: 0.95000, Bottom: 0.91950}

	// FollowingPageRegion applies to every page after the first.
	FollowingPageRegion = Region{Left: 0.15966, Top: 0.04899, Right: 0.95000, Bottom: 0.91950}
)

// Layout holds the geometric parameters tuned to the gazette column format.
type Layout struct {
	// FirstPage is the region of interest of page 0.
	FirstPage Region

	// OtherPages is the region of interest of every page after page 0.
	OtherPages Region

	// SameLineTolerance is the relative vertical jitter two OCR lines may show
	// and still count as one visual row.
	SameLineTolerance float64

	// LineHeightFactor bounds the combined height of two merged lines as a
	// multiple of the page's line height estimate.
	LineHeightFactor float64

	// HeightBucket is the precision, in points, line heights are rounded to
	// before taking their mode.
	HeightBucket float64
}

// DefaultLayout returns the layout of the gazette publications.
func DefaultLayout() Layout {
	return Layout{
		FirstPage:         FirstPageRegion,
		OtherPages:        FollowingPageRegion,
		SameLineTolerance: 0.05,
		LineHeightFactor:  1.25,
		HeightBucket:      0.5,
	}
}

// Validate checks both regions and the numeric tolerances.
func (l Layout) Validate() error {
	if err := l.FirstPage.Validate(); err != nil {
		return fmt.Errorf("first page: %w", err)
	}
	if err := l.OtherPages.Validate(); err != nil {
		return fmt.Errorf("other pages: %w", err)
	}
	if l.SameLineTolerance < 0 {
		return fmt.Errorf("same line tolerance must not be negative, got %v", l.SameLineTolerance)
	}
	if l.LineHeightFactor <= 0 {
		return fmt.Errorf("line height factor must be positive, got %v", l.LineHeightFactor)
	}
	if l.HeightBucket < 0 {
		return fmt.Errorf("height bucket must not be negative, got %v", l.HeightBucket)
	}
	return nil
}

// RegionFor returns the region of interest for the 0-based page index.
func (l Layout) RegionFor(index int) Region {
	if index == 0 {
		return l.FirstPage
	}
	return l.OtherPages
}

// ClipFor returns the absolute region of interest for a page.
func (l Layout) ClipFor(index int, width, height float64) Rect {
	return l.RegionFor(index).Abs(width, height)
}
