package main

import "time"

// Bucket is the temporal classification of a task relative to "today".
// Exactly one bucket applies to any (due date, status) pair.
type Bucket int

const (
	BucketNone Bucket = iota
	BucketOverdue
	BucketDueTomorrow
	BucketDueThisWeek
)

// String returns the human-readable name of the bucket.
func (b Bucket) String() string {
	switch b {
	case BucketOverdue:
		return "overdue"
	case BucketDueTomorrow:
		return "due_tomorrow"
	case BucketDueThisWeek:
		return "due_this_week"
	default:
		return "none"
	}
}

// Statuses that keep a past-due task actionable. Matched case-sensitively;
// an absent status never qualifies.
var actionableStatuses = map[string]bool{
	"To do":       true,
	"In progress": true,
}

// classifyTask buckets a task against the caller-supplied "today".
// Pure and deterministic; a task without a due date is never bucketed.
//
// The windows are mutually exclusive by construction: overdue requires
// due < today, tomorrow requires due == today+1, and the weekly window
// (today <= due <= today+7) is only reached once tomorrow has been ruled out.
func classifyTask(t Task, today time.Time) Bucket {
	if t.Due.IsZero() {
		return BucketNone
	}
	due := dateOnly(t.Due)
	today = dateOnly(today)

	if due.Before(today) {
		if actionableStatuses[t.Status] {
			return BucketOverdue
		}
		return BucketNone
	}
	if due.Equal(today.AddDate(0, 0, 1)) {
		return BucketDueTomorrow
	}
	if !due.After(today.AddDate(0, 0, 7)) {
		return BucketDueThisWeek
	}
	return BucketNone
}

// dateOnly truncates a time to its calendar date at UTC midnight.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
