package extract

import (
	"math"
	"strings"

	"gazette/internal/ocr"
)

// appendFragment appends a fragment that starts a new line. A newline is
// inserted unless text is empty, already ends with one, or the fragment
// starts with one.
func appendFragment(text, fragment string) string {
	if text == "" || strings.HasSuffix(text, "\n") || strings.HasPrefix(fragment, "\n") {
		return text + fragment
	}
	return text + "\n" + fragment
}

// appendLine appends recognized line content, joined by a tab when it sits
// on the same visual row as the previous accepted line.
func appendLine(text, content string, sameLine bool) string {
	if sameLine {
		return text + "\t" + content
	}
	return appendFragment(text, content)
}

// prevBox tracks the vertical extent of the previous accepted line.
type prevBox struct {
	y0, y1 float64
	set    bool
}

// sameLine reports whether a line spanning [y0, y1] continues the row of
// prev. Both lines must start and end within the relative tolerance of each
// other, and together may not be taller than factor line heights.
func (l Layout) sameLine(prev prevBox, y0, y1, lineHeight float64) bool {
	if !prev.set || y0 <= 0 || y1 <= 0 {
		return false
	}
	if math.Abs(prev.y0-y0)/y0 > l.SameLineTolerance {
		return false
	}
	if math.Abs(prev.y1-y1)/y1 > l.SameLineTolerance {
		return false
	}
	return math.Max(y1, prev.y1)-math.Min(y0, prev.y0) <= lineHeight*l.LineHeightFactor
}

// lineHeight estimates the typical line height of a page in PDF points: the
// mode of the scaled polygon heights, rounded to HeightBucket. Ties resolve
// to the height seen first in engine order.
func (l Layout) lineHeight(lines []ocr.Line, sy float64) (float64, bool) {
	if len(lines) == 0 {
		return 0, false
	}

	counts := make(map[float64]int, len(lines))
	order := make([]float64, 0, len(lines))
	for _, line := range lines {
		h := bucket(line.Height()*sy, l.HeightBucket)
		if counts[h] == 0 {
			order = append(order, h)
		}
		counts[h]++
	}

	best, bestCount := order[0], 0
	for _, h := range order {
		if counts[h] > bestCount {
			best, bestCount = h, counts[h]
		}
	}
	return best, true
}

func bucket(v, precision float64) float64 {
	if precision <= 0 {
		return v
	}
	return math.Round(v/precision) * precision
}
