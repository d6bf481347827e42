package models

import (
	"reflect"
	"testing"
)

func TestStageProgressAndStatus(t *testing.T) {
	tests := []struct {
		stage    Stage
		progress int
		status   Status
	}{
		{StageIdea, 17, StatusInProgress},
		{StageScript, 33, StatusInProgress},
		{StageRecord, 50, StatusInProgress},
		{StageEdit, 67, StatusInProgress},
		{StageUpload, 83, StatusInProgress},
		{StageAnalyze, 100, StatusCompleted},
	}
	for _, tt := range tests {
		if got := tt.stage.Progress(); got != tt.progress {
			t.Fatalf("%s: expected progress %d, got %d", tt.stage, tt.progress, got)
		}
		if got := tt.stage.Status(); got != tt.status {
			t.Fatalf("%s: expected status %q, got %q", tt.stage, tt.status, got)
		}
	}
}

func TestParseStageIsCaseInsensitive(t *testing.T) {
	for _, input := range []string{"edit", "EDIT", " Edit "} {
		stage, ok := ParseStage(input)
		if !ok || stage != StageEdit {
			t.Fatalf("ParseStage(%q) = %q, %v", input, stage, ok)
		}
	}
	if _, ok := ParseStage("publish"); ok {
		t.Fatalf("expected unknown stage to be rejected")
	}
}

func TestStageValidIsCaseSensitive(t *testing.T) {
	if !StageUpload.Valid() {
		t.Fatalf("expected Upload to be valid")
	}
	if Stage("upload").Valid() {
		t.Fatalf("expected lower-case wire value to be invalid")
	}
	if Stage("upload").Progress() != 0 {
		t.Fatalf("expected unknown stage progress to be 0")
	}
}

func TestStageKey(t *testing.T) {
	if StageAnalyze.Key() != "analyze" {
		t.Fatalf("unexpected key %q", StageAnalyze.Key())
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Work", "home", "work", "", "Home ", "travel"})
	want := []string{"Work", "home", "travel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if tags := SplitTags("  "); len(tags) != 0 {
		t.Fatalf("expected no tags, got %v", tags)
	}
	if tags := SplitTags("a, b,,a"); !reflect.DeepEqual(tags, []string{"a", "b"}) {
		t.Fatalf("unexpected split %v", tags)
	}
	if tags := NormalizeTags([]string{"q&a, live", "Live"}); !reflect.DeepEqual(tags, []string{"q&a", "live"}) {
		t.Fatalf("expected comma tags to be split, got %v", tags)
	}
}
