package sqlite

import (
	"fmt"
	"sort"
	"strings"

	"studio/internal/models"
)

func formatCreatedDetails(input models.ContentInput) string {
	return fmt.Sprintf("created: title='%s' stage=%s platform=%s target=%s tags=%s",
		input.Title, input.Stage, valueOrNone(input.Platform), valueOrNone(input.TargetReleaseDate), formatTags(input.Tags))
}

func formatItemDiff(before models.ContentItem, after models.ContentInput) string {
	changes := []string{}
	if before.Title != after.Title {
		changes = append(changes, formatChange("title", before.Title, after.Title))
	}
	if before.Description != after.Description {
		changes = append(changes, formatChange("description", before.Description, after.Description))
	}
	if before.Stage != after.Stage {
		changes = append(changes, formatChange("stage", string(before.Stage), string(after.Stage)))
	}
	if before.Platform != after.Platform {
		changes = append(changes, formatChange("platform", before.Platform, after.Platform))
	}
	if before.TargetReleaseDate != after.TargetReleaseDate {
		changes = append(changes, formatChange("target", before.TargetReleaseDate, after.TargetReleaseDate))
	}
	if before.ActualReleaseDate != after.ActualReleaseDate {
		changes = append(changes, formatChange("released", before.ActualReleaseDate, after.ActualReleaseDate))
	}
	beforeTags := formatTags(before.Tags)
	afterTags := formatTags(after.Tags)
	if beforeTags != afterTags {
		changes = append(changes, formatChange("tags", beforeTags, afterTags))
	}

	if len(changes) == 0 {
		return "updated: no changes"
	}
	return "updated: " + strings.Join(changes, "; ")
}

func formatChange(field, before, after string) string {
	return fmt.Sprintf("%s: '%s' -> '%s'", field, valueOrNone(before), valueOrNone(after))
}

func valueOrNone(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "none"
	}
	return trimmed
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "none"
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, strings.ToLower(tag))
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
