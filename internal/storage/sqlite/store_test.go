package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"studio/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(DriverPure, filepath.Join(t.TempDir(), "nested", "studio.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return store
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("postgres", filepath.Join(t.TempDir(), "x.db"), nil); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	if _, err := Open(DriverPure, "", nil); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, err := store.CreateContentItem(ctx, models.ContentInput{
		Title:             "  Launch video ",
		TargetReleaseDate: "2026-04-01",
		Tags:              []string{"YouTube", "youtube", " launch "},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ID == 0 || item.Title != "Launch video" || item.Stage != models.StageIdea {
		t.Fatalf("unexpected item: %+v", item)
	}
	if !reflect.DeepEqual(item.Tags, []string{"YouTube", "launch"}) {
		t.Fatalf("unexpected tags: %v", item.Tags)
	}
	if item.TargetReleaseDate != "2026-04-01" || item.ActualReleaseDate != "" {
		t.Fatalf("unexpected dates: %+v", item)
	}
	if item.CreatedAt.IsZero() || !item.CreatedAt.Equal(item.UpdatedAt) {
		t.Fatalf("unexpected timestamps: %v %v", item.CreatedAt, item.UpdatedAt)
	}

	cases := []models.ContentInput{
		{Title: "   "},
		{Title: "x", Stage: "Publish"},
		{Title: "x", TargetReleaseDate: "04/01/2026"},
	}
	for _, input := range cases {
		if _, err := store.CreateContentItem(ctx, input); !errors.Is(err, ErrInvalid) {
			t.Fatalf("expected ErrInvalid for %+v, got %v", input, err)
		}
	}
}

func TestListOrdersByStagePosition(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, _ := store.CreateContentItem(ctx, models.ContentInput{Title: "first"})
	second, _ := store.CreateContentItem(ctx, models.ContentInput{Title: "second"})
	third, _ := store.CreateContentItem(ctx, models.ContentInput{Title: "third", Stage: models.StageScript})

	if _, err := store.UpdateContentStage(ctx, first.ID, models.StageScript); err != nil {
		t.Fatalf("update stage: %v", err)
	}

	items, err := store.ListContentItems(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	byStage := map[models.Stage][]int64{}
	for _, item := range items {
		byStage[item.Stage] = append(byStage[item.Stage], item.ID)
	}
	if !reflect.DeepEqual(byStage[models.StageScript], []int64{third.ID, first.ID}) {
		t.Fatalf("expected moved item at end of Script, got %v", byStage[models.StageScript])
	}
	if !reflect.DeepEqual(byStage[models.StageIdea], []int64{second.ID}) {
		t.Fatalf("unexpected Idea items: %v", byStage[models.StageIdea])
	}
}

func TestListEmptyReturnsEmptySlice(t *testing.T) {
	store := openTestStore(t)
	items, err := store.ListContentItems(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestUpdateStageRecordsHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, _ := store.CreateContentItem(ctx, models.ContentInput{Title: "Vlog"})
	updated, err := store.UpdateContentStage(ctx, item.ID, models.StageEdit)
	if err != nil {
		t.Fatalf("update stage: %v", err)
	}
	if updated.Stage != models.StageEdit || !updated.UpdatedAt.After(item.UpdatedAt) {
		t.Fatalf("unexpected updated item: %+v", updated)
	}

	// Same stage is a no-op.
	if _, err := store.UpdateContentStage(ctx, item.ID, models.StageEdit); err != nil {
		t.Fatalf("repeat stage: %v", err)
	}

	history, err := store.ListHistory(ctx, item.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %+v", history)
	}
	if history[0].EventType != "created" || history[1].EventType != "stage" || history[1].Details != "Idea -> Edit" {
		t.Fatalf("unexpected history: %+v", history)
	}

	if _, err := store.UpdateContentStage(ctx, item.ID, "edit"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for non canonical stage, got %v", err)
	}
	if _, err := store.UpdateContentStage(ctx, 999, models.StageEdit); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateContentItemReplacesFields(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	item, _ := store.CreateContentItem(ctx, models.ContentInput{Title: "Draft", Tags: []string{"a"}})
	updated, err := store.UpdateContentItem(ctx, item.ID, models.ContentInput{
		Title:             "Final",
		Description:       "long form",
		Platform:          "YouTube",
		TargetReleaseDate: "2026-05-01",
		Tags:              []string{"b"},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Stage != models.StageIdea {
		t.Fatalf("expected empty stage to keep Idea, got %s", updated.Stage)
	}
	if updated.Title != "Final" || updated.Platform != "YouTube" || !reflect.DeepEqual(updated.Tags, []string{"b"}) {
		t.Fatalf("unexpected item: %+v", updated)
	}

	history, _ := store.ListHistory(ctx, item.ID)
	last := history[len(history)-1]
	if last.EventType != "updated" {
		t.Fatalf("unexpected event: %+v", last)
	}
	for _, fragment := range []string{"title: 'Draft' -> 'Final'", "platform: 'none' -> 'YouTube'", "tags: 'a' -> 'b'"} {
		if !strings.Contains(last.Details, fragment) {
			t.Fatalf("expected %q in %q", fragment, last.Details)
		}
	}

	moved, err := store.UpdateContentItem(ctx, item.ID, models.ContentInput{Title: "Final", Stage: models.StageAnalyze})
	if err != nil {
		t.Fatalf("update stage via item: %v", err)
	}
	if moved.Stage != models.StageAnalyze || moved.Stage.Status() != models.StatusCompleted {
		t.Fatalf("unexpected stage: %+v", moved)
	}

	if _, err := store.UpdateContentItem(ctx, 999, models.ContentInput{Title: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.UpdateContentItem(ctx, item.ID, models.ContentInput{Title: ""}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestHistoryForMissingItem(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.ListHistory(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFormatItemDiffNoChanges(t *testing.T) {
	before := models.ContentItem{Title: "x", Stage: models.StageIdea, Tags: []string{"B", "a"}}
	after := models.ContentInput{Title: "x", Stage: models.StageIdea, Tags: []string{"a", "b"}}
	if got := formatItemDiff(before, after); got != "updated: no changes" {
		t.Fatalf("unexpected diff: %q", got)
	}
}

func TestCommaTagsRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateContentItem(ctx, models.ContentInput{Title: "Live", Tags: []string{"q&a, live", "stream"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := []string{"q&a", "live", "stream"}
	if !reflect.DeepEqual(created.Tags, want) {
		t.Fatalf("unexpected tags on create: %v", created.Tags)
	}

	updated, err := store.UpdateContentItem(ctx, created.ID, models.ContentInput{Title: "Live", Tags: []string{"stream", "after, party"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	listed, err := store.ListContentItems(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(updated.Tags, []string{"stream", "after", "party"}) || !reflect.DeepEqual(listed[0].Tags, updated.Tags) {
		t.Fatalf("tags changed between write and read: %v vs %v", updated.Tags, listed[0].Tags)
	}
}
