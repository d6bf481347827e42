// Package tui renders the content board in the terminal with gocui.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"studio/internal/board"
	"studio/internal/models"
	"studio/internal/notify"
)

const (
	viewHeader = "header"
	viewFooter = "footer"
	viewPrompt = "prompt"
)

type promptKind int

const (
	promptAdd promptKind = iota
	promptEdit
	promptSearch
)

type promptState struct {
	kind    promptKind
	card    board.Card
	initial string
}

// UI is the interactive board. All fields except the reconciler are owned
// by the gocui main loop.
type UI struct {
	board  *board.Reconciler
	gui    *gocui.Gui
	logger *slog.Logger
	ctx    context.Context

	focus    int
	selected []int
	search   string
	prompt   *promptState
	status   string
}

// New builds a UI around its own reconciler. Notifications go to notifier
// and to the status line.
func New(remote board.Collaborator, notifier notify.Notifier, logger *slog.Logger) *UI {
	if logger == nil {
		logger = slog.Default()
	}
	u := &UI{
		logger:   logger,
		ctx:      context.Background(),
		selected: make([]int, len(models.Stages)),
	}
	u.board = board.New(remote,
		notify.Multi{notifier, notify.Func(u.notify)},
		board.WithLogger(logger),
		board.WithChangeHook(u.redraw),
	)
	return u
}

// Run opens the terminal, loads the board and blocks until the user quits
// or ctx is cancelled.
func (u *UI) Run(ctx context.Context) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return setupError(err, "open terminal")
	}
	defer gui.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	u.ctx = ctx
	u.gui = gui

	gui.SetManagerFunc(u.layout)
	if err := u.bindKeys(gui); err != nil {
		return setupError(err, "bind keys")
	}

	go func() {
		<-ctx.Done()
		gui.Update(func(*gocui.Gui) error { return gocui.ErrQuit })
	}()
	u.status = "loading..."
	u.run(func(ctx context.Context) error { return u.board.Load(ctx) })

	if err := gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) {
		return setupError(err, "main loop")
	}
	return nil
}

// setupError attaches the caller's stack to a terminal failure. nil stays nil.
func setupError(err error, op string) error {
	if err == nil {
		return nil
	}
	return goerrors.WrapPrefix(err, op, 1)
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	bindings := []struct {
		key     any
		handler func(*gocui.Gui, *gocui.View) error
	}{
		{gocui.KeyCtrlC, u.forceQuit},
		{'q', u.quit},
		{'h', u.focusLeft},
		{gocui.KeyArrowLeft, u.focusLeft},
		{'l', u.focusRight},
		{gocui.KeyArrowRight, u.focusRight},
		{'j', u.selectDown},
		{gocui.KeyArrowDown, u.selectDown},
		{'k', u.selectUp},
		{gocui.KeyArrowUp, u.selectUp},
		{'H', u.moveCardBack},
		{'<', u.moveCardBack},
		{'L', u.moveCardForward},
		{'>', u.moveCardForward},
		{'a', u.addCard},
		{'e', u.editCard},
		{'d', u.deleteCard},
		{'/', u.startSearch},
		{'g', u.clearSearch},
		{'r', u.reload},
	}
	for _, b := range bindings {
		if err := gui.SetKeybinding("", b.key, gocui.ModNone, b.handler); err != nil {
			return fmt.Errorf("key %v: %w", b.key, err)
		}
	}
	if err := gui.SetKeybinding(viewPrompt, gocui.KeyEnter, gocui.ModNone, u.submitPrompt); err != nil {
		return err
	}
	return gui.SetKeybinding(viewPrompt, gocui.KeyEsc, gocui.ModNone, u.cancelPrompt)
}

func columnView(stage models.Stage) string {
	return "col-" + stage.Key()
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	u.renderHeader(headerView)

	footerY0 := max(3, maxY-4)
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, maxY-1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	visible := u.visibleBoard()
	u.clampSelection(visible)
	bodyBottom := max(4, footerY0-1)
	for i, column := range visible.Columns {
		x0 := i * maxX / len(visible.Columns)
		x1 := (i+1)*maxX/len(visible.Columns) - 1
		view, err := gui.SetView(columnView(models.Stage(column.Title)), x0, 2, x1, bodyBottom, 0)
		if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
			return err
		}
		view.Title = fmt.Sprintf("%s (%d)", column.Title, len(column.Cards))
		applyViewStyle(view, i == u.focus)
		u.renderColumn(view, column, i)
	}

	if u.prompt != nil {
		return u.showPrompt(gui)
	}
	if _, err := gui.View(viewPrompt); err == nil {
		_ = gui.DeleteView(viewPrompt)
	}
	_, _ = gui.SetCurrentView(columnView(models.Stages[u.focus]))
	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	query := u.search
	if query == "" {
		query = "type / to search"
	}
	visible := u.visibleBoard()
	fmt.Fprintf(view, "Content board | Search: %s | Cards: %d", query, visible.Len())
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	fmt.Fprintln(view, "h/l column | j/k card | H/L move stage | a add | e edit | d delete (local)")
	fmt.Fprintln(view, "/ search | g clear | r reload | q quit")
	if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderColumn(view *gocui.View, column board.Column, index int) {
	view.Clear()
	for i, card := range column.Cards {
		prefix := " "
		if i == u.selected[index] && index == u.focus {
			prefix = ">"
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatCard(card))
	}
}

func formatCard(card board.Card) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %d%%", card.ID, card.Title, card.Progress())
	if card.DueDate != "" {
		fmt.Fprintf(&b, " due %s", card.DueDate)
	}
	if len(card.Tags) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(card.Tags, ","))
	}
	return b.String()
}

func (u *UI) showPrompt(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	x0 := (maxX - width) / 2
	y0 := (maxY - 3) / 2

	view, err := gui.SetView(viewPrompt, x0, y0, x0+width, y0+2, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = u.prompt.title()
		view.Clear()
		fmt.Fprint(view, u.prompt.initial)
		view.SetCursor(len([]rune(u.prompt.initial)), 0)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewPrompt)
	return nil
}

func (p *promptState) title() string {
	switch p.kind {
	case promptEdit:
		return fmt.Sprintf("Edit #%d", p.card.ID)
	case promptSearch:
		return "Search"
	default:
		return "New card"
	}
}

func (u *UI) visibleBoard() board.Board {
	return u.board.Search(u.search)
}

func (u *UI) clampSelection(visible board.Board) {
	for i, column := range visible.Columns {
		if u.selected[i] >= len(column.Cards) {
			u.selected[i] = len(column.Cards) - 1
		}
		if u.selected[i] < 0 {
			u.selected[i] = 0
		}
	}
}

func (u *UI) selectedCard() (board.Card, string, bool) {
	visible := u.visibleBoard()
	u.clampSelection(visible)
	column := visible.Columns[u.focus]
	if len(column.Cards) == 0 {
		return board.Card{}, column.ID, false
	}
	return column.Cards[u.selected[u.focus]], column.ID, true
}

func applyViewStyle(view *gocui.View, focused bool) {
	view.Frame = true
	view.Wrap = false
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
		view.TitleColor = gocui.ColorDefault
	}
}
