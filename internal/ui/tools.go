package ui

import (
	"fmt"
	"image/color"
	"io"

	"LiveBoard/internal/editor"
	"LiveBoard/internal/export"
	"LiveBoard/internal/render"
	"LiveBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

var tools = []struct {
	label string
	tool  state.Tool
}{
	{"Pen", state.ToolFreehand},
	{"Arrow", state.ToolArrow},
	{"Rect", state.ToolRectangle},
	{"Circle", state.ToolCircle},
	{"Text", state.ToolText},
	{"Eraser", state.ToolEraser},
	{"Select", state.ToolSelect},
	{"Hand", state.ToolHand},
}

var palette = []string{editor.DefaultColor, "#ef4444", "#22c55e", "#3b82f6", "#eab308", "#a855f7"}

type colorSwatch struct {
	widget.BaseWidget
	hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ParseColor(s.hex, color.NRGBA{A: 255}))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.hex)
	}
}

func (w *Window) buildToolbar(shareLink string) fyne.CanvasObject {
	ed := w.editor()

	labels := make([]string, len(tools))
	byLabel := make(map[string]state.Tool, len(tools))
	for i, t := range tools {
		labels[i] = t.label
		byLabel[t.label] = t.tool
	}
	toolPicker := widget.NewRadioGroup(labels, func(label string) {
		if t, ok := byLabel[label]; ok {
			ed.SetTool(t)
		}
	})
	toolPicker.Horizontal = true
	toolPicker.Required = true
	toolPicker.SetSelected(labels[0])

	// A swatch sets the drawing colour and recolours the selected shape.
	swatches := container.NewHBox()
	for _, hex := range palette {
		swatches.Add(newColorSwatch(hex, func(hex string) {
			ed.SetColor(hex)
			ed.RecolorSelected(hex)
		}))
	}

	strokeSlider := widget.NewSlider(1, 20)
	strokeSlider.SetValue(editor.DefaultStrokeWidth)
	strokeSlider.OnChanged = ed.SetStrokeWidth
	strokeSlider.OnChangeEnded = func(v float64) { ed.RestrokeSelected(v) }
	sliderBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 36)), strokeSlider)

	// Only shown while a text shape is selected; see syncControls.
	w.fontSlider = widget.NewSlider(editor.MinFontSize, editor.MaxFontSize)
	w.fontSlider.OnChangeEnded = func(v float64) { ed.ResizeSelectedFont(v) }
	w.fontBox = container.NewHBox(
		widget.NewLabel("Font:"),
		container.New(layout.NewGridWrapLayout(fyne.NewSize(140, 36)), w.fontSlider),
	)
	w.fontBox.Hide()

	w.undoButton = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { ed.Undo() })
	w.redoButton = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { ed.Redo() })

	actions := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			if !ed.EditSelectedText() {
				w.status.SetText("Select a text shape to edit it")
			}
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { ed.DeleteSelected() }),
		widget.NewToolbarAction(theme.ContentClearIcon(), w.confirmClear),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), w.saveBoard),
		widget.NewToolbarAction(theme.FolderOpenIcon(), w.loadBoard),
		widget.NewToolbarAction(theme.DownloadIcon(), w.exportBoard),
	)

	row := container.NewHBox(
		toolPicker,
		widget.NewSeparator(),
		swatches,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderBox,
		w.fontBox,
		widget.NewSeparator(),
		w.undoButton,
		w.redoButton,
		actions,
		layout.NewSpacer(),
	)
	if shareLink != "" {
		row.Add(w.shareBox(shareLink))
	}
	return container.NewHScroll(row)
}

func (w *Window) shareBox(link string) fyne.CanvasObject {
	label := widget.NewLabel(link)
	label.TextStyle = fyne.TextStyle{Monospace: true}
	copyButton := widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
		w.win.Clipboard().SetContent(link)
		w.status.SetText("Share link copied")
	})
	return container.NewHBox(label, copyButton)
}

func (w *Window) confirmClear() {
	dialog.ShowConfirm("Clear board", "Remove every shape for everyone on this board?", func(ok bool) {
		if ok {
			w.editor().Clear()
		}
	}, w.win)
}

// saveBoard writes the board in its stored JSON form.
func (w *Window) saveBoard() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			w.fail("Save failed", err)
			return
		}
		if wc == nil {
			return
		}
		defer wc.Close()

		text, err := w.editor().Serialize()
		if err == nil {
			_, err = io.WriteString(wc, text)
		}
		if err != nil {
			w.fail("Save failed", err)
			return
		}
		w.status.SetText(fmt.Sprintf("Saved %d shapes to %s", len(w.editor().Shapes()), wc.URI().Name()))
	}, w.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.SetFileName(w.editor().BoardID() + ".json")
	d.Show()
}

// loadBoard replaces the board with a saved file, for everyone.
func (w *Window) loadBoard() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			w.fail("Load failed", err)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err == nil {
			err = w.editor().Load(string(data))
		}
		if err != nil {
			w.fail("Load failed", err)
			return
		}
		w.status.SetText(fmt.Sprintf("Loaded %d shapes from %s", len(w.editor().Shapes()), rc.URI().Name()))
	}, w.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

// exportBoard writes a PDF or PNG, chosen by the file name's extension.
func (w *Window) exportBoard() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			w.fail("Export failed", err)
			return
		}
		if wc == nil {
			return
		}
		defer wc.Close()

		if err := export.Write(wc, wc.URI().Extension(), w.editor().Shapes()); err != nil {
			w.fail("Export failed", err)
			return
		}
		w.status.SetText("Exported " + wc.URI().Name())
	}, w.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".png"}))
	d.SetFileName(w.editor().BoardID() + ".pdf")
	d.Show()
}

func (w *Window) fail(what string, err error) {
	w.logger.Warn(what, zap.Error(err))
	w.status.SetText(what + ": " + err.Error())
}
