// Package textlayout lays text shapes out into lines. The same layout feeds bounds
// computation and painting, so both must be given the same Measurer.
package textlayout

import (
	"strings"
)

// LineHeightFactor multiplies the font size to give the distance between baselines.
const LineHeightFactor = 1.2

// Measurer reports the advance width of text rendered at fontSize.
type Measurer interface {
	MeasureText(text string, fontSize float64) float64
}

// LineHeight is the vertical space one line consumes.
func LineHeight(fontSize float64) float64 {
	return fontSize * LineHeightFactor
}

// Lines breaks text on explicit newlines and, when wrapWidth > 0, greedily wraps
// each of those lines by words. A blank explicit line is kept as "" and still
// takes up one line. Wrapped lines have trailing spaces removed.
func Lines(text string, wrapWidth, fontSize float64, m Measurer) []string {
	paragraphs := strings.Split(text, "\n")
	if wrapWidth <= 0 {
		return paragraphs
	}

	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if strings.TrimSpace(p) == "" {
			out = append(out, "")
			continue
		}
		out = append(out, wrapParagraph(p, wrapWidth, fontSize, m)...)
	}
	return out
}

// wrapParagraph breaks before the word that would push the candidate line past
// width, unless no word has been placed yet, so a line is never empty.
func wrapParagraph(p string, width, fontSize float64, m Measurer) []string {
	words := strings.Split(p, " ")
	var lines []string
	current := ""
	for _, w := range words {
		candidate := current + w + " "
		if strings.TrimSpace(current) != "" && m.MeasureText(candidate, fontSize) > width {
			lines = append(lines, strings.TrimRight(current, " "))
			current = w + " "
			continue
		}
		current = candidate
	}
	if strings.TrimSpace(current) != "" {
		lines = append(lines, strings.TrimRight(current, " "))
	}
	return lines
}

// Extent is the measured size of a laid-out text block.
type Extent struct {
	Width  float64
	Height float64
	Lines  int
}

// Measure returns the block size: the fixed wrap width when wrapping, otherwise
// the widest line. At least one line is always counted.
func Measure(text string, wrapWidth, fontSize float64, m Measurer) Extent {
	lines := Lines(text, wrapWidth, fontSize, m)
	n := len(lines)
	if n < 1 {
		n = 1
	}
	ext := Extent{Lines: n, Height: float64(n) * LineHeight(fontSize)}
	if wrapWidth > 0 {
		ext.Width = wrapWidth
		return ext
	}
	for _, l := range lines {
		if w := m.MeasureText(l, fontSize); w > ext.Width {
			ext.Width = w
		}
	}
	return ext
}
