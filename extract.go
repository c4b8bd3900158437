package main

import (
	"encoding/json"
	"strings"
	"time"
)

// --- Property Shapes ---

// RawTaskRecord is one task record's property map as returned by the task
// source. Property encodings vary per database schema; taskProperty models
// the closed set of shapes a property can take, with the populated field
// acting as the variant tag.
type RawTaskRecord map[string]taskProperty

type taskProperty struct {
	Title       []richTextBlock `json:"title,omitempty"`
	People      []namedEntry    `json:"people,omitempty"`
	MultiSelect []namedEntry    `json:"multi_select,omitempty"`
	Status      *namedEntry     `json:"status,omitempty"`
	Select      *namedEntry     `json:"select,omitempty"`
	Date        *dateRange      `json:"date,omitempty"`
}

// UnmarshalJSON decodes each known shape independently so one malformed
// field never discards the rest of the property.
func (p *taskProperty) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object at all: treat as an empty property.
		return nil
	}
	if v, ok := raw["title"]; ok {
		json.Unmarshal(v, &p.Title)
	}
	if v, ok := raw["people"]; ok {
		json.Unmarshal(v, &p.People)
	}
	if v, ok := raw["multi_select"]; ok {
		json.Unmarshal(v, &p.MultiSelect)
	}
	if v, ok := raw["status"]; ok {
		json.Unmarshal(v, &p.Status)
	}
	if v, ok := raw["select"]; ok {
		json.Unmarshal(v, &p.Select)
	}
	if v, ok := raw["date"]; ok {
		json.Unmarshal(v, &p.Date)
	}
	return nil
}

type richTextBlock struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

type namedEntry struct {
	Name string `json:"name"`
}

type dateRange struct {
	Start string `json:"start"`
}

// Property names used by the task database.
const (
	propTask    = "Task"
	propAssign  = "Assign"
	propStatus  = "Status"
	propDueDate = "Due Date"
)

// --- Task ---

// unnamedTask is the sentinel name for records whose title cannot be read.
const unnamedTask = "Unnamed Task"

// Task is the normalized, immutable view of one task record.
type Task struct {
	Name      string
	Assignees []string  // display names, source order
	Status    string    // "" = absent
	Due       time.Time // zero = absent; date-only, UTC midnight
}

// --- Record Extractor ---

// extractTask normalizes a raw record. It is total: any per-field shape
// mismatch degrades to the default for that field, never failing the record.
func extractTask(props RawTaskRecord) Task {
	return Task{
		Name:      extractName(props),
		Assignees: extractAssignees(props),
		Status:    extractStatus(props),
		Due:       extractDue(props),
	}
}

// extractName reads the title property's first text block, trimmed.
func extractName(props RawTaskRecord) string {
	title := props[propTask].Title
	if len(title) == 0 {
		return unnamedTask
	}
	name := strings.TrimSpace(title[0].Text.Content)
	if name == "" {
		return unnamedTask
	}
	return name
}

// extractAssignees reads the assignment property: people-shape first, then
// multi-select-shape. Unnamed entries are skipped.
func extractAssignees(props RawTaskRecord) []string {
	prop := props[propAssign]
	entries := prop.People
	if len(entries) == 0 {
		entries = prop.MultiSelect
	}
	var names []string
	for _, e := range entries {
		if e.Name != "" {
			names = append(names, e.Name)
		}
	}
	return names
}

// extractStatus reads the status property, trying the shapes in priority
// order: dedicated status, single select, then multi-select (first entry).
func extractStatus(props RawTaskRecord) string {
	prop := props[propStatus]
	if prop.Status != nil && prop.Status.Name != "" {
		return prop.Status.Name
	}
	if prop.Select != nil && prop.Select.Name != "" {
		return prop.Select.Name
	}
	if len(prop.MultiSelect) > 0 {
		return prop.MultiSelect[0].Name
	}
	return ""
}

// extractDue reads the date property's start field, truncated to a calendar
// date. Absent or unparsable dates yield the zero time.
func extractDue(props RawTaskRecord) time.Time {
	prop := props[propDueDate]
	if prop.Date == nil {
		return time.Time{}
	}
	due, ok := parseDueDate(prop.Date.Start)
	if !ok {
		return time.Time{}
	}
	return due
}

// parseDueDate accepts an ISO-8601 date or datetime and truncates it to a
// calendar date at UTC midnight.
func parseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return dateOnly(t), true
	}
	// Datetime without a zone, e.g. "2024-01-01T09:00:00".
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return dateOnly(t), true
	}
	return time.Time{}, false
}
