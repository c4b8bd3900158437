package main

import (
	"strings"
	"testing"
)

func TestMentionKey(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Kyle", "KYLE"},
		{"kyle", "KYLE"},
		{"Mary Jane", "MARY_JANE"},
		{"mary jane watson", "MARY_JANE_WATSON"},
		{"ALLCAPS", "ALLCAPS"},
	}
	for _, c := range cases {
		if got := mentionKey(c.name); got != c.want {
			t.Errorf("mentionKey(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestDisplayNameFromKey(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"KYLE", "Kyle"},
		{"MARY_JANE", "Mary Jane"},
		{"MARY_JANE_WATSON", "Mary Jane Watson"},
	}
	for _, c := range cases {
		if got := displayNameFromKey(c.key); got != c.want {
			t.Errorf("displayNameFromKey(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestTitleCaseWords(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"kyle", "Kyle"},
		{"MARY JANE", "Mary Jane"},
		{"mIxEd cAsE", "Mixed Case"},
		{"", ""},
	}
	for _, c := range cases {
		if got := titleCaseWords(c.in); got != c.want {
			t.Errorf("titleCaseWords(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestIdentityMapLookups(t *testing.T) {
	ids, err := newIdentityMap(map[string]string{
		"KYLE":      "111",
		"MARY_JANE": "222",
	})
	if err != nil {
		t.Fatalf("newIdentityMap: %v", err)
	}

	if got := ids.MentionID("Kyle"); got != "111" {
		t.Errorf("MentionID(Kyle) = %q, want 111", got)
	}
	if got := ids.MentionID("mary jane"); got != "222" {
		t.Errorf("MentionID(mary jane) = %q, want 222", got)
	}
	if got := ids.MentionID("Gabriel"); got != "" {
		t.Errorf("MentionID(Gabriel) = %q, want empty", got)
	}

	if got := ids.DisplayName("222"); got != "Mary Jane" {
		t.Errorf("DisplayName(222) = %q, want Mary Jane", got)
	}
	if got := ids.DisplayName("999"); got != "" {
		t.Errorf("DisplayName(999) = %q, want empty", got)
	}

	if got := ids.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestIdentityMapDuplicateID(t *testing.T) {
	_, err := newIdentityMap(map[string]string{
		"KYLE": "111",
		"KILE": "111",
	})
	if err == nil {
		t.Fatal("expected error for duplicate discord ID")
	}
	if !strings.Contains(err.Error(), "111") {
		t.Errorf("error should name the duplicated ID: %v", err)
	}
}

func TestIdentityMapEmpty(t *testing.T) {
	ids, err := newIdentityMap(nil)
	if err != nil {
		t.Fatalf("newIdentityMap(nil): %v", err)
	}
	if got := ids.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
	if got := ids.MentionID("Kyle"); got != "" {
		t.Errorf("MentionID on empty map = %q, want empty", got)
	}
}
