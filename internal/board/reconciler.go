package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"studio/internal/models"
	"studio/internal/notify"
)

// Collaborator is the remote service of record for content items.
type Collaborator interface {
	ListContentItems(ctx context.Context) ([]models.ContentItem, error)
	CreateContentItem(ctx context.Context, input models.ContentInput) (models.ContentItem, error)
	UpdateContentStage(ctx context.Context, id int64, stage models.Stage) error
	UpdateContentItem(ctx context.Context, id int64, input models.ContentInput) error
}

// Reconciler owns the board and keeps it in step with the Collaborator.
//
// The mutex is never held across a remote call, so readers observe the
// optimistic state while a call is in flight. Concurrent writes to the same
// card are not ordered.
type Reconciler struct {
	remote   Collaborator
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	onChange func()

	mu    sync.Mutex
	board Board
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides time.Now, used for the default target date.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithChangeHook registers fn to run after every local mutation.
func WithChangeHook(fn func()) Option {
	return func(r *Reconciler) {
		r.onChange = fn
	}
}

// New builds a Reconciler holding an empty board.
func New(remote Collaborator, notifier notify.Notifier, opts ...Option) *Reconciler {
	r := &Reconciler{
		remote:   remote,
		notifier: notifier,
		logger:   slog.Default(),
		now:      time.Now,
		board:    NewBoard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.notifier == nil {
		r.notifier = notify.Log{Logger: r.logger}
	}
	return r
}

// Board returns a snapshot of the current board.
func (r *Reconciler) Board() Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.Clone()
}

// Search filters the current board by term.
func (r *Reconciler) Search(term string) Board {
	return Filter(r.Board(), term)
}

// Load replaces the board with the collaborator's content items. Items with
// an unknown stage are dropped. On failure the board is left as it was.
func (r *Reconciler) Load(ctx context.Context) error {
	items, err := r.remote.ListContentItems(ctx)
	if err != nil {
		loadErr := &LoadError{Err: err}
		r.logger.Error("board load failed", slog.String("error", err.Error()))
		r.notifier.Notify(ctx, "Failed to load content items: "+err.Error(), notify.SeverityError)
		return loadErr
	}

	next := NewBoard()
	dropped := 0
	for _, item := range items {
		stage, ok := models.ParseStage(string(item.Stage))
		if !ok {
			dropped++
			r.logger.Debug("dropping item with unknown stage", slog.Int64("id", item.ID), slog.String("stage", string(item.Stage)))
			continue
		}
		idx := next.columnIndex(stage.Key())
		next.Columns[idx].Cards = append(next.Columns[idx].Cards, cardFromItem(item, stage))
	}

	r.mu.Lock()
	r.board = next
	r.mu.Unlock()
	r.changed()

	r.logger.Info("board loaded", slog.Int("cards", next.Len()), slog.Int("dropped", dropped))
	return nil
}

// MoveCard moves a card between columns, then persists the new stage. The
// move is kept even when persisting fails.
func (r *Reconciler) MoveCard(ctx context.Context, cardID int64, sourceColumnID, targetColumnID string) error {
	r.mu.Lock()
	src := r.board.columnIndex(sourceColumnID)
	dst := r.board.columnIndex(targetColumnID)
	switch {
	case src < 0:
		r.mu.Unlock()
		return invalid("move", "unknown column %q", sourceColumnID)
	case dst < 0:
		r.mu.Unlock()
		return invalid("move", "unknown column %q", targetColumnID)
	case src == dst:
		r.mu.Unlock()
		return invalid("move", "card %d is already in %s", cardID, r.board.Columns[src].Title)
	}
	idx := indexOfCard(r.board.Columns[src].Cards, cardID)
	if idx < 0 {
		r.mu.Unlock()
		return invalid("move", "card %d is not in %s", cardID, r.board.Columns[src].Title)
	}

	card := r.board.Columns[src].Cards[idx]
	r.board.Columns[src].Cards = removeCard(r.board.Columns[src].Cards, idx)
	card.Stage = models.Stage(r.board.Columns[dst].Title)
	r.board.Columns[dst].Cards = append(r.board.Columns[dst].Cards, card)
	r.mu.Unlock()
	r.changed()

	if err := r.remote.UpdateContentStage(ctx, cardID, card.Stage); err != nil {
		return r.persistFailed(ctx, "move", cardID, err, fmt.Sprintf("Failed to move %q to %s", card.Title, card.Stage))
	}
	r.logger.Info("card moved", slog.Int64("id", cardID), slog.String("stage", string(card.Stage)))
	return nil
}

// AddCard creates a content item in the Idea stage and appends it to the
// Idea column once the collaborator has assigned an identifier.
func (r *Reconciler) AddCard(ctx context.Context, title string) (Card, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Card{}, invalid("add", "title must not be blank")
	}

	item, err := r.remote.CreateContentItem(ctx, models.ContentInput{
		Title:             title,
		Description:       "",
		Stage:             models.StageIdea,
		Platform:          "",
		TargetReleaseDate: r.now().Format(models.DateLayout),
		Tags:              []string{},
	})
	if err != nil {
		return Card{}, r.persistFailed(ctx, "create", 0, err, fmt.Sprintf("Failed to create %q", title))
	}

	card := cardFromItem(item, models.StageIdea)
	r.mu.Lock()
	idx := r.board.columnIndex(models.StageIdea.Key())
	r.board.Columns[idx].Cards = append(r.board.Columns[idx].Cards, card)
	r.mu.Unlock()
	r.changed()

	r.logger.Info("card created", slog.Int64("id", card.ID))
	r.notifier.Notify(ctx, fmt.Sprintf("Created %q", card.Title), notify.SeveritySuccess)
	return card.clone(), nil
}

// UpdateCard replaces a card's fields, moving it to the column for its new
// stage, then persists the new values. The edit is kept when persisting fails.
func (r *Reconciler) UpdateCard(ctx context.Context, edited Card) error {
	edited.Title = strings.TrimSpace(edited.Title)
	if edited.Title == "" {
		return invalid("update", "title must not be blank")
	}
	stage, ok := models.ParseStage(string(edited.Stage))
	if !ok {
		return invalid("update", "unknown stage %q", edited.Stage)
	}
	edited.Stage = stage
	edited.Tags = models.NormalizeTags(edited.Tags)

	r.mu.Lock()
	if _, _, found := r.board.Find(edited.ID); !found {
		r.mu.Unlock()
		return invalid("update", "card %d does not exist", edited.ID)
	}
	// Stale membership in more than one column is cleared as well.
	for i := range r.board.Columns {
		for {
			idx := indexOfCard(r.board.Columns[i].Cards, edited.ID)
			if idx < 0 {
				break
			}
			r.board.Columns[i].Cards = removeCard(r.board.Columns[i].Cards, idx)
		}
	}
	dst := r.board.columnIndex(stage.Key())
	r.board.Columns[dst].Cards = append(r.board.Columns[dst].Cards, edited.clone())
	r.mu.Unlock()
	r.changed()

	if err := r.remote.UpdateContentItem(ctx, edited.ID, edited.input()); err != nil {
		return r.persistFailed(ctx, "update", edited.ID, err, fmt.Sprintf("Failed to save %q", edited.Title))
	}
	r.logger.Info("card updated", slog.Int64("id", edited.ID), slog.String("stage", string(stage)))
	return nil
}

// DeleteCard removes a card from a column. Deletion is local only; the task
// API is not called.
func (r *Reconciler) DeleteCard(cardID int64, columnID string) error {
	r.mu.Lock()
	col := r.board.columnIndex(columnID)
	if col < 0 {
		r.mu.Unlock()
		return invalid("delete", "unknown column %q", columnID)
	}
	idx := indexOfCard(r.board.Columns[col].Cards, cardID)
	if idx < 0 {
		r.mu.Unlock()
		return invalid("delete", "card %d is not in %s", cardID, r.board.Columns[col].Title)
	}
	r.board.Columns[col].Cards = removeCard(r.board.Columns[col].Cards, idx)
	r.mu.Unlock()
	r.changed()

	r.logger.Debug("card deleted locally", slog.Int64("id", cardID))
	return nil
}

func (r *Reconciler) persistFailed(ctx context.Context, op string, cardID int64, err error, message string) error {
	r.logger.Error("persist failed",
		slog.String("op", op),
		slog.Int64("id", cardID),
		slog.String("error", err.Error()),
	)
	r.notifier.Notify(ctx, message+": "+err.Error(), notify.SeverityError)
	return &PersistError{Op: op, CardID: cardID, Err: err}
}

func (r *Reconciler) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
