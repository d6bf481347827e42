package models

import (
	"math"
	"strings"
	"time"
)

// Stage is a step of the content production pipeline.
type Stage string

const (
	StageIdea    Stage = "Idea"
	StageScript  Stage = "Script"
	StageRecord  Stage = "Record"
	StageEdit    Stage = "Edit"
	StageUpload  Stage = "Upload"
	StageAnalyze Stage = "Analyze"
)

// Stages lists the pipeline in order. The last entry is terminal.
var Stages = []Stage{StageIdea, StageScript, StageRecord, StageEdit, StageUpload, StageAnalyze}

// Status is derived from a stage and never stored.
type Status string

const (
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ParseStage matches a stage name case-insensitively.
func ParseStage(value string) (Stage, bool) {
	trimmed := strings.TrimSpace(value)
	for _, stage := range Stages {
		if strings.EqualFold(string(stage), trimmed) {
			return stage, true
		}
	}
	return "", false
}

// Valid reports whether s is one of the exact wire values.
func (s Stage) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in Stages, or -1.
func (s Stage) Index() int {
	for i, stage := range Stages {
		if stage == s {
			return i
		}
	}
	return -1
}

// Key is the lower-cased column identifier for the stage.
func (s Stage) Key() string {
	return strings.ToLower(string(s))
}

// Progress is the completion percentage of the stage, 0 for unknown stages.
func (s Stage) Progress() int {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return int(math.Round(100 * float64(idx+1) / float64(len(Stages))))
}

// Status reports completed for the terminal stage.
func (s Stage) Status() Status {
	if s == Stages[len(Stages)-1] {
		return StatusCompleted
	}
	return StatusInProgress
}

// StageNames joins the wire values for error messages.
func StageNames() string {
	names := make([]string, 0, len(Stages))
	for _, stage := range Stages {
		names = append(names, string(stage))
	}
	return strings.Join(names, ", ")
}

// ContentItem is a piece of content tracked through the pipeline.
type ContentItem struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Stage             Stage     `json:"stage"`
	Platform          string    `json:"platform"`
	TargetReleaseDate string    `json:"target_release_date,omitempty"`
	ActualReleaseDate string    `json:"actual_release_date,omitempty"`
	AssociatedFiles   string    `json:"associated_files,omitempty"`
	Tags              []string  `json:"tags"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ContentInput carries the writable fields of a content item.
type ContentInput struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Stage             Stage    `json:"stage"`
	Platform          string   `json:"platform"`
	TargetReleaseDate string   `json:"target_release_date"`
	ActualReleaseDate string   `json:"actual_release_date,omitempty"`
	Tags              []string `json:"tags"`
}

// HistoryEntry records a change applied to a content item.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	ContentID int64     `json:"content_id"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// FileInfo describes a file held in the vault.
type FileInfo struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	Modified  time.Time `json:"modified"`
	Directory string    `json:"directory"`
}

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// NormalizeTags trims tags and drops blanks and case-insensitive duplicates,
// keeping the first spelling and the original order. Tags are stored comma
// separated, so a tag containing commas is split into several tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, raw := range tags {
		for _, tag := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(tag)
			if trimmed == "" {
				continue
			}
			lower := strings.ToLower(trimmed)
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}

// SplitTags parses a comma separated tag list.
func SplitTags(value string) []string {
	return NormalizeTags([]string{value})
}
