package ui

import (
	"image"
	"math"
	"sync"
	"unicode/utf8"

	"LiveBoard/internal/editor"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"
	"LiveBoard/internal/textlayout"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// textEdit is the snapshot of the text shape being typed into.
type textEdit struct {
	shape state.Shape
	w, h  float64
}

// BoardWidget shows the board and feeds pointer and keyboard input to the
// editor. All editor calls happen on the fyne main goroutine.
type BoardWidget struct {
	widget.BaseWidget

	ed       *editor.Editor
	fonts    *textlayout.FontMeasurer
	renderer *render.Renderer
	raster   *canvas.Raster

	mu    sync.Mutex
	scene render.Scene
	edit  *textEdit

	resizingBox bool
	// OnChange runs after the board was repainted for an editor change.
	OnChange func()
}

var (
	_ fyne.Widget         = (*BoardWidget)(nil)
	_ fyne.Draggable      = (*BoardWidget)(nil)
	_ fyne.DoubleTappable = (*BoardWidget)(nil)
	_ fyne.Focusable      = (*BoardWidget)(nil)
	_ desktop.Mouseable   = (*BoardWidget)(nil)
	_ desktop.Hoverable   = (*BoardWidget)(nil)
	_ desktop.Cursorable  = (*BoardWidget)(nil)
)

func NewBoardWidget(fonts *textlayout.FontMeasurer) *BoardWidget {
	b := &BoardWidget{
		fonts:    fonts,
		renderer: render.NewRenderer(),
	}
	b.raster = canvas.NewRaster(b.draw)
	b.raster.SetMinSize(fyne.NewSize(300, 300))
	b.ExtendBaseWidget(b)
	return b
}

// Attach binds the editor the widget drives. Pass Changed as the editor's
// OnChange.
func (b *BoardWidget) Attach(ed *editor.Editor) {
	b.ed = ed
	b.Changed()
}

func (b *BoardWidget) Editor() *editor.Editor { return b.ed }

// Changed snapshots the editor for the next paint.
func (b *BoardWidget) Changed() {
	if b.ed == nil {
		return
	}
	sc := b.ed.Scene()
	var edit *textEdit
	if s, ok := b.ed.EditingShape(); ok {
		w, h := b.ed.TextBox()
		edit = &textEdit{shape: s, w: w, h: h}
	}

	b.mu.Lock()
	b.scene, b.edit = sc, edit
	b.mu.Unlock()

	b.raster.Refresh()
	if b.OnChange != nil {
		b.OnChange()
	}
}

// draw paints at the raster's pixel size; the scene is in widget units.
func (b *BoardWidget) draw(w, h int) image.Image {
	b.mu.Lock()
	sc, edit := b.scene, b.edit
	b.mu.Unlock()

	surf := render.NewRasterSurface(w, h, b.fonts)
	if size := b.Size(); size.Width > 0 {
		scale := float64(w) / float64(size.Width)
		surf.Context().Scale(scale, scale)
	}
	b.renderer.Paint(surf, sc)
	if edit != nil {
		b.renderer.PaintTextBox(surf, edit.shape, edit.w, edit.h, sc)
	}
	return surf.Image()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.raster)
}

// overBoxHandle reports whether pos is on the resize handle of the text box
// being edited.
func (b *BoardWidget) overBoxHandle(pos fyne.Position) bool {
	b.mu.Lock()
	edit, sc := b.edit, b.scene
	b.mu.Unlock()
	if edit == nil {
		return false
	}
	o, ok := render.TextBoxOrigin(edit.shape, sc)
	if !ok {
		return false
	}
	reach := render.TextBoxHandleSize
	return math.Abs(float64(pos.X)-(o.X+edit.w)) <= reach &&
		math.Abs(float64(pos.Y)-(o.Y+edit.h)) <= reach
}

func (b *BoardWidget) resizeBox(pos fyne.Position) {
	b.mu.Lock()
	edit, sc := b.edit, b.scene
	b.mu.Unlock()
	if edit == nil {
		return
	}
	if o, ok := render.TextBoxOrigin(edit.shape, sc); ok {
		b.ed.ResizeTextBox(float64(pos.X)-o.X, float64(pos.Y)-o.Y)
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if b.ed == nil || e.Button != desktop.MouseButtonPrimary {
		return
	}
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
	if b.overBoxHandle(e.Position) {
		b.resizingBox = true
		b.ed.BeginTextBoxResize()
		return
	}
	b.ed.PointerDown(float64(e.Position.X), float64(e.Position.Y))
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.release()
	}
}

// release ends the pointer gesture. Both MouseUp and DragEnd call it.
func (b *BoardWidget) release() {
	if b.ed == nil {
		return
	}
	if b.resizingBox {
		b.resizingBox = false
		b.ed.EndTextBoxResize()
		return
	}
	b.ed.PointerUp()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.ed == nil {
		return
	}
	if b.resizingBox {
		b.resizeBox(e.Position)
		return
	}
	b.ed.PointerMove(float64(e.Position.X), float64(e.Position.Y))
}

func (b *BoardWidget) DragEnd() {
	b.release()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent) {}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	if b.ed != nil {
		b.ed.PointerMove(float64(e.Position.X), float64(e.Position.Y))
	}
}

func (b *BoardWidget) MouseOut() {
	if b.ed != nil && !b.resizingBox {
		b.ed.PointerLeave()
	}
}

func (b *BoardWidget) DoubleTapped(e *fyne.PointEvent) {
	if b.ed != nil {
		b.ed.DoubleClick(float64(e.Position.X), float64(e.Position.Y))
	}
}

func (b *BoardWidget) Cursor() desktop.Cursor {
	if b.ed == nil {
		return desktop.DefaultCursor
	}
	switch b.ed.Tool() {
	case state.ToolText:
		return desktop.TextCursor
	case state.ToolSelect, state.ToolHand:
		return desktop.PointerCursor
	}
	return desktop.CrosshairCursor
}

func (b *BoardWidget) FocusGained() {}

// FocusLost ends text editing, like a textarea losing focus.
func (b *BoardWidget) FocusLost() {
	if b.ed != nil {
		b.ed.Blur()
	}
}

func (b *BoardWidget) TypedRune(r rune) {
	if s, ok := b.editing(); ok {
		b.ed.SetText(s.Text + string(r))
	}
}

func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	if b.ed == nil {
		return
	}
	s, editing := b.editing()
	switch e.Name {
	case fyne.KeyBackspace:
		if editing && s.Text != "" {
			_, n := utf8.DecodeLastRuneInString(s.Text)
			b.ed.SetText(s.Text[:len(s.Text)-n])
		}
	case fyne.KeyReturn, fyne.KeyEnter:
		if editing {
			b.ed.SetText(s.Text + "\n")
		}
	case fyne.KeyEscape:
		if editing {
			b.ed.Blur()
		} else {
			b.ed.Deselect()
		}
	case fyne.KeyDelete:
		if !editing {
			b.ed.DeleteSelected()
		}
	}
}

func (b *BoardWidget) editing() (state.Shape, bool) {
	if b.ed == nil {
		return state.Shape{}, false
	}
	return b.ed.EditingShape()
}
