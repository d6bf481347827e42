package board

import (
	"reflect"
	"testing"
	"time"

	"studio/internal/models"
)

func sampleBoard() Board {
	b := NewBoard()
	b.Columns[0].Cards = []Card{
		{ID: 1, Title: "Draft intro", Stage: models.StageIdea, Tags: []string{"shorts"}},
		{ID: 2, Title: "Channel trailer", Stage: models.StageIdea, Description: "Explain the INTRO format"},
	}
	b.Columns[3].Cards = []Card{
		{ID: 3, Title: "Vlog", Stage: models.StageEdit, Tags: []string{"Travel", "Straße"}},
	}
	b.Columns[5].Cards = []Card{
		{ID: 4, Title: "Retrospective", Stage: models.StageAnalyze},
	}
	return b
}

func TestNewBoardHasSixOrderedColumns(t *testing.T) {
	b := NewBoard()
	want := []string{"idea", "script", "record", "edit", "upload", "analyze"}
	if len(b.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(b.Columns))
	}
	for i, column := range b.Columns {
		if column.ID != want[i] || column.Title != string(models.Stages[i]) || len(column.Cards) != 0 {
			t.Fatalf("unexpected column %d: %+v", i, column)
		}
	}
}

func TestFilterEmptyTermIsIdentity(t *testing.T) {
	b := sampleBoard()
	if got := Filter(b, ""); !reflect.DeepEqual(got, b) {
		t.Fatalf("expected identity projection, got %+v", got)
	}
}

func TestFilterMatchesTitleDescriptionAndTags(t *testing.T) {
	b := sampleBoard()

	got := Filter(b, "intro")
	if len(got.Columns) != 6 {
		t.Fatalf("expected every column to be kept, got %d", len(got.Columns))
	}
	if ids := columnIDs(t, got, "idea"); !reflect.DeepEqual(ids, []int64{1, 2}) {
		t.Fatalf("expected title and description matches, got %v", ids)
	}
	if got.Len() != 2 {
		t.Fatalf("expected 2 matches, got %d", got.Len())
	}

	tagged := Filter(b, "TRAV")
	if ids := columnIDs(t, tagged, "edit"); !reflect.DeepEqual(ids, []int64{3}) {
		t.Fatalf("expected tag match, got %v", ids)
	}
	if ids := columnIDs(t, tagged, "idea"); len(ids) != 0 {
		t.Fatalf("expected idea column to be empty, got %v", ids)
	}
}

func TestFilterFoldsUnicodeCase(t *testing.T) {
	got := Filter(sampleBoard(), "STRASSE")
	if ids := columnIDs(t, got, "edit"); !reflect.DeepEqual(ids, []int64{3}) {
		t.Fatalf("expected folded match on Straße, got %v", ids)
	}
}

func TestFilterIsIdempotentAndPure(t *testing.T) {
	b := sampleBoard()
	before := b.Clone()

	once := Filter(b, "o")
	twice := Filter(once, "o")
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("expected idempotent filter")
	}
	if !reflect.DeepEqual(b, before) {
		t.Fatalf("expected source board to be untouched")
	}
}

func TestFilterNoMatchesKeepsEmptyColumns(t *testing.T) {
	got := Filter(sampleBoard(), "nothing matches this")
	if len(got.Columns) != 6 || got.Len() != 0 {
		t.Fatalf("expected six empty columns, got %+v", got)
	}
}

func TestSameTagsIgnoresOrderAndCase(t *testing.T) {
	a := Card{Tags: []string{"Travel", "vlog"}}
	b := Card{Tags: []string{"VLOG", "travel"}}
	if !a.SameTags(b) {
		t.Fatalf("expected equal tag sets")
	}
	if a.SameTags(Card{Tags: []string{"travel"}}) {
		t.Fatalf("expected different tag sets")
	}
}

func TestFilterDueKeepsWindow(t *testing.T) {
	b := sampleBoard()
	b.Columns[0].Cards[0].DueDate = "2026-03-14"
	b.Columns[3].Cards[0].DueDate = "2026-03-20"
	b.Columns[5].Cards[0].DueDate = "2026-02-01"
	now := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)

	today := FilterDue(b, models.DueToday, now)
	if today.Len() != 1 || today.Columns[0].Cards[0].ID != 1 || len(today.Columns) != len(models.Stages) {
		t.Fatalf("unexpected today board %+v", today)
	}
	week := FilterDue(b, models.DueWeek, now)
	if week.Len() != 2 {
		t.Fatalf("expected two cards due this week, got %d", week.Len())
	}
	if all := FilterDue(b, models.DueAny, now); all.Len() != b.Len() {
		t.Fatalf("expected DueAny to keep every card")
	}
}
