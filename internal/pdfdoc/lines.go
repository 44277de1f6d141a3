package pdfdoc

import (
	"math"
	"sort"
	"strings"

	"gazette/internal/extract"
)

const (
	// rowTolerance is the fraction of the font size two baselines may differ
	// by and still belong to one row.
	rowTolerance = 0.3

	// wordGap is the fraction of the font size a horizontal gap must exceed
	// to be rendered as a space.
	wordGap = 0.25

	// ascent and descent approximate the glyph extent around the baseline.
	ascent  = 0.8
	descent = 0.2
)

// Glyph is a positioned run of text with a top-left origin, in points.
type Glyph struct {
	X0, X1   float64
	Baseline float64
	Size     float64
	Text     string
}

type glyph Glyph

func (g glyph) box() extract.Rect {
	size := g.Size
	if size <= 0 {
		size = 1
	}
	return extract.Rect{
		X0: g.X0,
		Y0: g.Baseline - ascent*size,
		X1: g.X1,
		Y1: g.Baseline + descent*size,
	}
}

type row struct {
	baseline float64
	size     float64
	glyphs   []glyph
}

// assemble orders glyphs into rows top to bottom and left to right and joins
// the rows with newlines.
func assemble(glyphs []glyph) string {
	if len(glyphs) == 0 {
		return ""
	}

	sorted := make([]glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Baseline < sorted[j].Baseline
	})

	var rows []*row
	for _, g := range sorted {
		if n := len(rows); n > 0 && sameRow(rows[n-1], g) {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			continue
		}
		rows = append(rows, &row{baseline: g.Baseline, size: g.Size, glyphs: []glyph{g}})
	}

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if line := r.text(); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func sameRow(r *row, g glyph) bool {
	size := math.Max(r.size, g.Size)
	if size <= 0 {
		size = 1
	}
	return math.Abs(g.Baseline-r.baseline) <= rowTolerance*size
}

func (r *row) text() string {
	sort.SliceStable(r.glyphs, func(i, j int) bool {
		return r.glyphs[i].X0 < r.glyphs[j].X0
	})

	var b strings.Builder
	var prev *glyph
	for i := range r.glyphs {
		g := r.glyphs[i]
		s := strings.ReplaceAll(g.Text, "\n", " ")
		if prev != nil && needsSpace(*prev, g) && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(s, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(s)
		prev = &r.glyphs[i]
	}
	return strings.TrimSpace(collapseSpaces(b.String()))
}

func needsSpace(prev, cur glyph) bool {
	size := math.Max(prev.Size, cur.Size)
	if size <= 0 {
		size = 1
	}
	return cur.X0-prev.X1 > wordGap*size
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool { return r == ' ' }), " ")
}
