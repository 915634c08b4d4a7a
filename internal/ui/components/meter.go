package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/iosdiag/internal/ui/theme"
)

// thresholdMark is drawn in the bar cell where the acceptance threshold falls.
const thresholdMark = "│"

// SimilarityMeter shows how close a mistyped word is to the keyword
// suggested for it. The bar is filled up to Score and marked at Threshold;
// scores below the threshold are drawn in the warning color.
type SimilarityMeter struct {
	Typo       string
	Suggestion string
	Score      float64
	Threshold  float64
	Width      int
}

// NewSimilarityMeter creates a meter of the given total width.
func NewSimilarityMeter(typo, suggestion string, score, threshold float64, width int) SimilarityMeter {
	return SimilarityMeter{
		Typo:       typo,
		Suggestion: suggestion,
		Score:      score,
		Threshold:  threshold,
		Width:      width,
	}
}

// Label is "typo → suggestion", or whichever of the two is set.
func (m SimilarityMeter) Label() string {
	switch {
	case m.Typo != "" && m.Suggestion != "":
		return m.Typo + " → " + m.Suggestion
	case m.Suggestion != "":
		return m.Suggestion
	default:
		return m.Typo
	}
}

// Accepted reports whether Score reaches Threshold.
func (m SimilarityMeter) Accepted() bool {
	return m.Score >= m.Threshold
}

// Percent is Score as a whole percentage, clamped to [0, 100].
func (m SimilarityMeter) Percent() int {
	return toPercent(m.Score)
}

// View renders the label, the bar and the percentage in exactly Width
// cells, unless Width is too small for a four-cell bar.
func (m SimilarityMeter) View() string {
	var b strings.Builder

	if label := m.Label(); label != "" {
		b.WriteString(theme.Body.Render(label))
		b.WriteString("  ")
	}

	const percentWidth = 6 // " 100%" plus a leading gap
	barWidth := max(m.Width-lipgloss.Width(b.String())-percentWidth, 4)
	filled := cells(m.Score, barWidth)

	fill := theme.MeterFilled
	if !m.Accepted() {
		fill = theme.MeterBelow
	}

	mark := -1
	if m.Threshold > 0 {
		mark = min(cells(m.Threshold, barWidth), barWidth-1)
	}
	for i := range barWidth {
		style := theme.MeterEmpty
		if i < filled {
			style = fill
		}
		if i == mark {
			b.WriteString(style.Inherit(theme.MeterMark).Render(thresholdMark))
			continue
		}
		b.WriteString(style.Render(" "))
	}

	b.WriteString(theme.Hint.Render(fmt.Sprintf(" %4d%%", m.Percent())))
	return b.String()
}

func cells(v float64, width int) int {
	return min(max(int(float64(width)*v), 0), width)
}

func toPercent(v float64) int {
	return min(max(int(v*100+0.5), 0), 100)
}
