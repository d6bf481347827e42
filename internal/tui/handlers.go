package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jesseduffield/gocui"

	"studio/internal/board"
	"studio/internal/models"
	"studio/internal/notify"
)

// run executes a reconciler call. Without a terminal it runs inline;
// otherwise it runs off the main loop and the change hook redraws.
func (u *UI) run(fn func(ctx context.Context) error) {
	if u.gui == nil {
		u.report(fn(u.ctx))
		return
	}
	ctx := u.ctx
	go func() {
		err := fn(ctx)
		u.gui.Update(func(*gocui.Gui) error {
			u.report(err)
			return nil
		})
	}()
}

// report surfaces validation errors, which the reconciler does not notify.
func (u *UI) report(err error) {
	var validation *board.ValidationError
	if errors.As(err, &validation) {
		u.status = "! " + validation.Error()
	}
}

func (u *UI) notify(_ context.Context, message string, severity notify.Severity) {
	line := message
	if severity == notify.SeverityError || severity == notify.SeverityWarning {
		line = "! " + message
	}
	if u.gui == nil {
		u.status = line
		return
	}
	u.gui.Update(func(*gocui.Gui) error {
		u.status = line
		return nil
	})
}

func (u *UI) redraw() {
	if u.gui == nil {
		return
	}
	u.gui.Update(func(*gocui.Gui) error { return nil })
}

func (u *UI) inputActive() bool {
	return u.prompt != nil
}

func (u *UI) focusLeft(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus == 0 {
		return nil
	}
	u.focus--
	return nil
}

func (u *UI) focusRight(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.focus == len(models.Stages)-1 {
		return nil
	}
	u.focus++
	return nil
}

func (u *UI) selectDown(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.selected[u.focus]++
	u.clampSelection(u.visibleBoard())
	return nil
}

func (u *UI) selectUp(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if u.selected[u.focus] > 0 {
		u.selected[u.focus]--
	}
	return nil
}

func (u *UI) moveCardBack(_ *gocui.Gui, _ *gocui.View) error {
	return u.moveSelected(-1)
}

func (u *UI) moveCardForward(_ *gocui.Gui, _ *gocui.View) error {
	return u.moveSelected(1)
}

func (u *UI) moveSelected(delta int) error {
	if u.inputActive() {
		return nil
	}
	card, source, ok := u.selectedCard()
	if !ok {
		u.status = "no card selected"
		return nil
	}
	target := u.focus + delta
	if target < 0 || target >= len(models.Stages) {
		u.status = fmt.Sprintf("#%d is already in the %s stage", card.ID, card.Stage)
		return nil
	}

	destination := models.Stages[target].Key()
	u.focus = target
	u.selected[target] = math.MaxInt32
	u.run(func(ctx context.Context) error {
		return u.board.MoveCard(ctx, card.ID, source, destination)
	})
	return nil
}

func (u *UI) addCard(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.prompt = &promptState{kind: promptAdd}
	return nil
}

func (u *UI) editCard(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	card, _, ok := u.selectedCard()
	if !ok {
		u.status = "no card selected"
		return nil
	}
	u.prompt = &promptState{kind: promptEdit, card: card, initial: card.Title}
	return nil
}

func (u *UI) deleteCard(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	card, column, ok := u.selectedCard()
	if !ok {
		u.status = "no card selected"
		return nil
	}
	if err := u.board.DeleteCard(card.ID, column); err != nil {
		u.report(err)
		return nil
	}
	u.status = fmt.Sprintf("removed #%d from the board (reload restores it)", card.ID)
	u.clampSelection(u.visibleBoard())
	return nil
}

func (u *UI) startSearch(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.prompt = &promptState{kind: promptSearch, initial: u.search}
	return nil
}

func (u *UI) clearSearch(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.search = ""
	u.status = ""
	return nil
}

func (u *UI) reload(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	u.status = "reloading..."
	u.run(func(ctx context.Context) error {
		if err := u.board.Load(ctx); err != nil {
			return err
		}
		u.notify(ctx, "board reloaded", notify.SeverityInfo)
		return nil
	})
	return nil
}

func (u *UI) submitPrompt(gui *gocui.Gui, view *gocui.View) error {
	value := ""
	if view != nil {
		value = view.Buffer()
	}
	if gui != nil {
		_ = gui.DeleteView(viewPrompt)
	}
	return u.submitValue(strings.TrimSpace(value))
}

func (u *UI) cancelPrompt(gui *gocui.Gui, _ *gocui.View) error {
	u.prompt = nil
	if gui != nil {
		_ = gui.DeleteView(viewPrompt)
	}
	return nil
}

func (u *UI) submitValue(value string) error {
	prompt := u.prompt
	u.prompt = nil
	if prompt == nil {
		return nil
	}

	switch prompt.kind {
	case promptSearch:
		u.search = value
		u.selected = make([]int, len(models.Stages))
	case promptAdd:
		u.focus = 0
		u.selected[0] = math.MaxInt32
		u.run(func(ctx context.Context) error {
			_, err := u.board.AddCard(ctx, value)
			return err
		})
	case promptEdit:
		edited := prompt.card
		edited.Title = value
		u.run(func(ctx context.Context) error {
			return u.board.UpdateCard(ctx, edited)
		})
	}
	return nil
}

func (u *UI) quit(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return u.forceQuit(gui, view)
}

func (u *UI) forceQuit(_ *gocui.Gui, _ *gocui.View) error {
	u.logger.Debug("board closed", slog.Int("cards", u.board.Board().Len()))
	return gocui.ErrQuit
}
