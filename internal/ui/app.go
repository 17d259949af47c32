package ui

import (
	"fmt"

	"LiveBoard/internal/broadcast"
	"LiveBoard/internal/editor"
	"LiveBoard/internal/persist"
	"LiveBoard/internal/textlayout"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

type Options struct {
	Title      string
	BoardID    string
	InstanceID string
	User       string
	// Initial is the board's stored content.
	Initial      string
	Channel      broadcast.Channel
	Gateway      persist.Gateway
	HistoryLimit int
	// ShareLink is shown in the toolbar so others can join. Empty hides it.
	ShareLink string
	Logger    *zap.Logger
	// OnClose runs after the session has said goodbye, before the window closes.
	OnClose func()
}

// Window is one board's desktop window.
type Window struct {
	win     fyne.Window
	board   *BoardWidget
	session *editor.Session
	logger  *zap.Logger

	status     *widget.Label
	undoButton *widget.Button
	redoButton *widget.Button
	fontSlider *widget.Slider
	fontBox    *fyne.Container
	onClose    func()
}

func NewWindow(a fyne.App, opts Options) (*Window, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fonts, err := textlayout.NewFontMeasurer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load board font: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = "LiveBoard: " + opts.BoardID
	}
	w := &Window{
		win:     a.NewWindow(title),
		board:   NewBoardWidget(fonts),
		logger:  logger.Named("ui"),
		status:  widget.NewLabel("Ready"),
		onClose: opts.OnClose,
	}

	ed := editor.New(editor.Options{
		BoardID:      opts.BoardID,
		InstanceID:   opts.InstanceID,
		User:         opts.User,
		Initial:      opts.Initial,
		Channel:      opts.Channel,
		Gateway:      opts.Gateway,
		Measurer:     fonts,
		HistoryLimit: opts.HistoryLimit,
		Logger:       logger,
		OnChange:     w.board.Changed,
	})
	w.board.Attach(ed)
	w.board.OnChange = w.syncControls
	w.session = editor.NewSession(ed, fyne.Do)

	toolbar := w.buildToolbar(opts.ShareLink)
	w.win.SetContent(container.NewBorder(toolbar, w.status, nil, nil, w.board))
	w.win.Resize(fyne.NewSize(1024, 768))
	w.addShortcuts()
	w.win.SetCloseIntercept(w.close)
	w.syncControls()

	a.Lifecycle().SetOnStarted(w.session.Start)
	return w, nil
}

// Deliver passes a frame from the relay to the board. Safe from any goroutine.
func (w *Window) Deliver(frame []byte) {
	w.session.Deliver(frame)
}

// SetStatus shows text in the status bar. Safe from any goroutine.
func (w *Window) SetStatus(text string) {
	fyne.Do(func() { w.status.SetText(text) })
}

func (w *Window) ShowAndRun() {
	w.win.ShowAndRun()
}

func (w *Window) close() {
	w.session.Stop()
	if w.onClose != nil {
		w.onClose()
	}
	w.win.Close()
}

func (w *Window) editor() *editor.Editor {
	return w.session.Editor()
}

func (w *Window) syncControls() {
	ed := w.editor()
	if ed == nil {
		return
	}
	setEnabled(w.undoButton, ed.CanUndo())
	setEnabled(w.redoButton, ed.CanRedo())

	if w.fontBox == nil {
		return
	}
	if s, ok := ed.SelectedText(); ok {
		if w.fontSlider.Value != s.FontSize {
			w.fontSlider.SetValue(s.FontSize)
		}
		w.fontBox.Show()
	} else {
		w.fontBox.Hide()
	}
}

func setEnabled(b *widget.Button, on bool) {
	if b == nil {
		return
	}
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (w *Window) addShortcuts() {
	c := w.win.Canvas()
	add := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault, func() { w.editor().Undo() })
	add(fyne.KeyY, fyne.KeyModifierShortcutDefault, func() { w.editor().Redo() })
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, func() { w.editor().Redo() })
	add(fyne.KeyS, fyne.KeyModifierShortcutDefault, w.saveBoard)
	add(fyne.KeyO, fyne.KeyModifierShortcutDefault, w.loadBoard)
	add(fyne.KeyE, fyne.KeyModifierShortcutDefault, w.exportBoard)
}
