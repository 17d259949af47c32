package textlayout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10 units per rune at font size 20
var fixed = FixedMeasurer{Ratio: 0.5}

func TestLines_NoWrapKeepsExplicitBreaks(t *testing.T) {
	got := Lines("one\n\nthree", 0, 20, fixed)
	assert.Equal(t, []string{"one", "", "three"}, got)
}

func TestLines_GreedyWrap(t *testing.T) {
	// "aaa " = 40, "aaa bbb " = 80, "aaa bbb ccc " = 120
	got := Lines("aaa bbb ccc", 85, 20, fixed)
	assert.Equal(t, []string{"aaa bbb", "ccc"}, got)
}

func TestLines_LongFirstWordIsNotBrokenToEmpty(t *testing.T) {
	got := Lines("abcdefghij k", 30, 20, fixed)
	assert.Equal(t, []string{"abcdefghij", "k"}, got)
	for _, l := range got {
		assert.NotEmpty(t, l)
	}
}

func TestLines_BlankLineStillCounts(t *testing.T) {
	got := Lines("aa\n   \nbb", 100, 20, fixed)
	assert.Equal(t, []string{"aa", "", "bb"}, got)
}

func TestLines_WrapIsIdempotent(t *testing.T) {
	inputs := []string{
		"the quick brown fox jumps over the lazy dog",
		"a  b   c d\n\nsecond paragraph with words",
		"supercalifragilistic is long",
		" leading space and trailing ",
	}
	for _, width := range []float64{35, 60, 95, 150} {
		for _, in := range inputs {
			first := Lines(in, width, 20, fixed)
			second := Lines(strings.Join(first, "\n"), width, 20, fixed)
			assert.Equal(t, first, second, "width=%v input=%q", width, in)
		}
	}
}

func TestMeasure(t *testing.T) {
	ext := Measure("ab\nabcd", 0, 20, fixed)
	assert.Equal(t, 40.0, ext.Width)
	assert.Equal(t, 2, ext.Lines)
	assert.InDelta(t, 48.0, ext.Height, 1e-9)

	wrapped := Measure("aaa bbb ccc", 85, 20, fixed)
	assert.Equal(t, 85.0, wrapped.Width)
	assert.Equal(t, 2, wrapped.Lines)
}

func TestMeasure_EmptyTextHasOneLine(t *testing.T) {
	ext := Measure("", 300, 10, fixed)
	assert.Equal(t, 1, ext.Lines)
	assert.InDelta(t, 12.0, ext.Height, 1e-9)
}

func TestFontMeasurer(t *testing.T) {
	m, err := NewFontMeasurer(nil)
	require.NoError(t, err)

	short := m.MeasureText("ab", 20)
	long := m.MeasureText("abab", 20)
	assert.Greater(t, short, 0.0)
	assert.Greater(t, long, short)
	assert.Greater(t, m.MeasureText("ab", 40), short)
	assert.Equal(t, 0.0, m.MeasureText("", 20))
}

func TestNewFontMeasurer_BadFont(t *testing.T) {
	_, err := NewFontMeasurer([]byte("not a font"))
	assert.Error(t, err)
}
