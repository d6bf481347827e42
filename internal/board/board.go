// Package board keeps the in-memory Kanban board of content items and
// reconciles local edits with the task API.
//
// Mutations are optimistic: the board changes first and the remote call
// follows. A failed remote call raises a notification but the local change
// is kept until the next Load.
package board

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"studio/internal/models"
)

// Card is a content item placed on the board. ReleasedOn is not shown but
// is carried so that a full update keeps the stored release date.
type Card struct {
	ID          int64
	Title       string
	Description string
	Stage       models.Stage
	Platform    string
	DueDate     string
	ReleasedOn  string
	Tags        []string
}

// Progress is derived from the card's stage.
func (c Card) Progress() int {
	return c.Stage.Progress()
}

// Status is derived from the card's stage.
func (c Card) Status() models.Status {
	return c.Stage.Status()
}

// SameTags compares tag sets case-insensitively, ignoring order.
func (c Card) SameTags(other Card) bool {
	a := models.NormalizeTags(c.Tags)
	b := models.NormalizeTags(other.Tags)
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[strings.ToLower(tag)] = struct{}{}
	}
	for _, tag := range b {
		if _, ok := set[strings.ToLower(tag)]; !ok {
			return false
		}
	}
	return true
}

func (c Card) clone() Card {
	if c.Tags != nil {
		c.Tags = append(make([]string, 0, len(c.Tags)), c.Tags...)
	}
	return c
}

func cardFromItem(item models.ContentItem, stage models.Stage) Card {
	return Card{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Stage:       stage,
		Platform:    item.Platform,
		DueDate:     item.TargetReleaseDate,
		ReleasedOn:  item.ActualReleaseDate,
		Tags:        models.NormalizeTags(item.Tags),
	}
}

func (c Card) input() models.ContentInput {
	return models.ContentInput{
		Title:             c.Title,
		Description:       c.Description,
		Stage:             c.Stage,
		Platform:          c.Platform,
		TargetReleaseDate: c.DueDate,
		ActualReleaseDate: c.ReleasedOn,
		Tags:              append([]string(nil), c.Tags...),
	}
}

// Column holds the cards currently in one stage.
type Column struct {
	ID    string
	Title string
	Cards []Card
}

// Board is the fixed sequence of one column per stage.
type Board struct {
	Columns []Column
}

// NewBoard returns the six empty stage columns in pipeline order.
func NewBoard() Board {
	columns := make([]Column, 0, len(models.Stages))
	for _, stage := range models.Stages {
		columns = append(columns, Column{ID: stage.Key(), Title: string(stage), Cards: []Card{}})
	}
	return Board{Columns: columns}
}

// Column returns the column with the given identifier.
func (b Board) Column(id string) (Column, bool) {
	idx := b.columnIndex(id)
	if idx < 0 {
		return Column{}, false
	}
	return b.Columns[idx], true
}

func (b Board) columnIndex(id string) int {
	key := strings.ToLower(strings.TrimSpace(id))
	for i, column := range b.Columns {
		if column.ID == key {
			return i
		}
	}
	return -1
}

// Find locates a card anywhere on the board.
func (b Board) Find(cardID int64) (Card, string, bool) {
	for _, column := range b.Columns {
		if idx := indexOfCard(column.Cards, cardID); idx >= 0 {
			return column.Cards[idx], column.ID, true
		}
	}
	return Card{}, "", false
}

// Len counts the cards on the board.
func (b Board) Len() int {
	total := 0
	for _, column := range b.Columns {
		total += len(column.Cards)
	}
	return total
}

// Clone deep-copies the board.
func (b Board) Clone() Board {
	columns := make([]Column, len(b.Columns))
	for i, column := range b.Columns {
		cards := make([]Card, len(column.Cards))
		for j, card := range column.Cards {
			cards[j] = card.clone()
		}
		columns[i] = Column{ID: column.ID, Title: column.Title, Cards: cards}
	}
	return Board{Columns: columns}
}

func indexOfCard(cards []Card, cardID int64) int {
	for i, card := range cards {
		if card.ID == cardID {
			return i
		}
	}
	return -1
}

func removeCard(cards []Card, idx int) []Card {
	return append(cards[:idx:idx], cards[idx+1:]...)
}

// Filter returns a copy of b keeping only cards whose title, description or
// a tag contains term, compared with Unicode case folding. Every column is
// kept even when it ends up empty. An empty term returns the whole board.
func Filter(b Board, term string) Board {
	out := b.Clone()
	if term == "" {
		return out
	}
	fold := cases.Fold()
	needle := fold.String(term)
	for i, column := range out.Columns {
		kept := make([]Card, 0, len(column.Cards))
		for _, card := range column.Cards {
			if matches(fold, card, needle) {
				kept = append(kept, card)
			}
		}
		out.Columns[i].Cards = kept
	}
	return out
}

// FilterDue keeps the cards whose due date falls in the filter's window
// relative to now. Columns are kept as in Filter.
func FilterDue(b Board, filter models.DueFilter, now time.Time) Board {
	out := b.Clone()
	if filter == models.DueAny {
		return out
	}
	for i, column := range out.Columns {
		kept := make([]Card, 0, len(column.Cards))
		for _, card := range column.Cards {
			if filter.Match(card.DueDate, now) {
				kept = append(kept, card)
			}
		}
		out.Columns[i].Cards = kept
	}
	return out
}

func matches(fold cases.Caser, card Card, needle string) bool {
	if strings.Contains(fold.String(card.Title), needle) {
		return true
	}
	if strings.Contains(fold.String(card.Description), needle) {
		return true
	}
	for _, tag := range card.Tags {
		if strings.Contains(fold.String(tag), needle) {
			return true
		}
	}
	return false
}
