package ui

import (
	"testing"

	"LiveBoard/internal/editor"
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T) (*BoardWidget, *editor.Editor) {
	t.Helper()
	test.NewTempApp(t)

	fonts, err := textlayout.NewFontMeasurer(nil)
	require.NoError(t, err)
	b := NewBoardWidget(fonts)
	ed := editor.New(editor.Options{BoardID: "b", Measurer: fonts, OnChange: b.Changed})
	b.Attach(ed)
	b.Resize(fyne.NewSize(400, 300))
	return b, ed
}

func press(b *BoardWidget, x, y float32) {
	b.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func drag(b *BoardWidget, x, y float32) {
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}})
}

func releaseAt(b *BoardWidget, x, y float32) {
	b.MouseUp(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	})
}

func TestBoardWidget_DrawsWithPointer(t *testing.T) {
	b, ed := newTestBoard(t)

	press(b, 10, 10)
	drag(b, 30, 20)
	drag(b, 50, 50)
	releaseAt(b, 50, 50)

	shapes := ed.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, state.ToolFreehand, shapes[0].Tool)
	assert.Equal(t, state.Point{X: 10, Y: 10}, shapes[0].Points[0])
	assert.True(t, ed.CanUndo())
}

func TestBoardWidget_SecondaryButtonIsIgnored(t *testing.T) {
	b, ed := newTestBoard(t)

	b.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)},
		Button:     desktop.MouseButtonSecondary,
	})
	assert.Equal(t, editor.Idle, ed.Mode())
}

func TestBoardWidget_TypesIntoTextBox(t *testing.T) {
	b, ed := newTestBoard(t)
	ed.SetTool(state.ToolText)

	press(b, 20, 20)
	releaseAt(b, 20, 20)
	require.Equal(t, editor.TextEditing, ed.Mode())

	b.TypedRune('h')
	b.TypedRune('i')
	b.TypedKey(&fyne.KeyEvent{Name: fyne.KeyBackspace})
	b.TypedKey(&fyne.KeyEvent{Name: fyne.KeyReturn})
	b.TypedRune('!')
	b.FocusLost()

	assert.Equal(t, editor.Idle, ed.Mode())
	shapes := ed.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, "h\n!", shapes[0].Text)
	assert.False(t, shapes[0].IsEditing)
}

func TestBoardWidget_ResizesTextBoxByHandle(t *testing.T) {
	b, ed := newTestBoard(t)
	ed.SetTool(state.ToolText)

	press(b, 20, 20)
	releaseAt(b, 20, 20)
	w, h := ed.TextBox()

	press(b, float32(20+w), float32(20+h))
	assert.True(t, b.resizingBox)
	drag(b, 420, 260)
	releaseAt(b, 420, 260)

	assert.False(t, b.resizingBox)
	assert.Equal(t, editor.TextEditing, ed.Mode())
	w, h = ed.TextBox()
	assert.InDelta(t, 400.0, w, 0.001)
	assert.InDelta(t, 240.0, h, 0.001)
}

func TestBoardWidget_EscapeEndsTextEditing(t *testing.T) {
	b, ed := newTestBoard(t)
	ed.SetTool(state.ToolText)

	press(b, 20, 20)
	b.TypedRune('x')
	b.TypedKey(&fyne.KeyEvent{Name: fyne.KeyEscape})

	assert.Equal(t, editor.Idle, ed.Mode())
	require.Len(t, ed.Shapes(), 1)
}

func TestBoardWidget_CursorFollowsTool(t *testing.T) {
	b, ed := newTestBoard(t)

	assert.Equal(t, desktop.CrosshairCursor, b.Cursor())
	ed.SetTool(state.ToolText)
	assert.Equal(t, desktop.TextCursor, b.Cursor())
	ed.SetTool(state.ToolHand)
	assert.Equal(t, desktop.PointerCursor, b.Cursor())
}

func TestBoardWidget_DrawMatchesRasterSize(t *testing.T) {
	b, _ := newTestBoard(t)

	img := b.draw(200, 150)
	assert.Equal(t, 200, img.Bounds().Dx())
	assert.Equal(t, 150, img.Bounds().Dy())
}
