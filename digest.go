package main

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// --- Digest ---

// UserTaskDigest aggregates one person's tasks into the three report buckets.
// Each slice preserves task-source order. Built fresh per query, discarded
// after rendering.
type UserTaskDigest struct {
	Overdue     []Task
	DueTomorrow []Task
	DueThisWeek []Task
}

// Empty reports whether every bucket is empty.
func (d *UserTaskDigest) Empty() bool {
	return len(d.Overdue) == 0 && len(d.DueTomorrow) == 0 && len(d.DueThisWeek) == 0
}

func (d *UserTaskDigest) add(t Task, b Bucket) {
	switch b {
	case BucketOverdue:
		d.Overdue = append(d.Overdue, t)
	case BucketDueTomorrow:
		d.DueTomorrow = append(d.DueTomorrow, t)
	case BucketDueThisWeek:
		d.DueThisWeek = append(d.DueThisWeek, t)
	}
}

// buildDigest extracts and classifies every record assigned to the given
// person. The name match is case-insensitive.
func buildDigest(records []RawTaskRecord, person string, today time.Time) *UserTaskDigest {
	digest := &UserTaskDigest{}
	for _, props := range records {
		task := extractTask(props)
		if !taskAssignedTo(task, person) {
			continue
		}
		digest.add(task, classifyTask(task, today))
	}
	return digest
}

func taskAssignedTo(t Task, person string) bool {
	for _, a := range t.Assignees {
		if strings.EqualFold(a, person) {
			return true
		}
	}
	return false
}

// getUserTasks fetches all records and builds the per-person digest.
// Returns nil when the fetch fails; the renderer turns that into the
// failure notice, so no partial digest is ever shown.
func getUserTasks(ctx context.Context, source taskSource, person string, today time.Time) *UserTaskDigest {
	records, err := source.QueryTasks(ctx)
	if err != nil {
		logErrorCtx(ctx, "task fetch failed", "person", person, "error", err)
		return nil
	}
	return buildDigest(records, person, today)
}

// --- Summary Renderer ---

const (
	maxTasksPerSection = 5
	maxMessageLen      = 2000
)

// formatTaskSummary renders a person's digest as plain text. personLabel is
// whatever the caller wants the person called in the report, typically a
// mention tag or a display name.
func formatTaskSummary(personLabel string, digest *UserTaskDigest) string {
	if digest == nil {
		return fmt.Sprintf("❌ Could not retrieve tasks for %s", personLabel)
	}
	if digest.Empty() {
		return fmt.Sprintf("✅ %s has no upcoming or overdue tasks!", personLabel)
	}

	parts := []string{fmt.Sprintf("📋 **Task Summary for %s**\n", personLabel)}

	if n := len(digest.Overdue); n > 0 {
		parts = append(parts, fmt.Sprintf("🚨 **OVERDUE (%d)**", n))
		parts = appendTaskLines(parts, digest.Overdue, true, "more overdue tasks")
		parts = append(parts, "")
	}
	if n := len(digest.DueTomorrow); n > 0 {
		parts = append(parts, fmt.Sprintf("⏰ **DUE TOMORROW (%d)**", n))
		parts = appendTaskLines(parts, digest.DueTomorrow, false, "more due tomorrow")
		parts = append(parts, "")
	}
	if n := len(digest.DueThisWeek); n > 0 {
		parts = append(parts, fmt.Sprintf("📅 **DUE THIS WEEK (%d)**", n))
		parts = appendTaskLines(parts, digest.DueThisWeek, true, "more tasks this week")
	}

	return strings.TrimRight(strings.Join(parts, "\n"), "\n")
}

// appendTaskLines lists up to maxTasksPerSection tasks in source order,
// then one trailer line for whatever remains.
func appendTaskLines(parts []string, tasks []Task, withDate bool, moreLabel string) []string {
	shown := tasks
	if len(shown) > maxTasksPerSection {
		shown = shown[:maxTasksPerSection]
	}
	for _, t := range shown {
		parts = append(parts, formatTaskLine(t, withDate))
	}
	if rest := len(tasks) - maxTasksPerSection; rest > 0 {
		parts = append(parts, fmt.Sprintf("• ... and %d %s", rest, moreLabel))
	}
	return parts
}

func formatTaskLine(t Task, withDate bool) string {
	line := "• **" + t.Name + "**"
	if withDate && !t.Due.IsZero() {
		line += " (due " + t.Due.Format("2006-01-02") + ")"
	}
	if t.Status != "" {
		line += " - *" + t.Status + "*"
	}
	return line
}

// chunkMessage splits text into chunks of at most limit characters, on pure
// character count. Concatenating the chunks reproduces the text exactly.
func chunkMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}
	var chunks []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
