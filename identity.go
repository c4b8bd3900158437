package main

import (
	"fmt"
	"strings"
	"unicode"
)

// IdentityMap is the read-only display name ↔ Discord user ID mapping, built
// once at startup. Lookups never fail; absence is the designed not-found
// signal, consumed by callers to decide fallback behavior.
type IdentityMap struct {
	byKey map[string]string // mention key suffix ("KYLE", "MARY_JANE") → user ID
	byID  map[string]string // user ID → display name
}

// newIdentityMap builds both lookup directions from the configured mention
// entries. A Discord ID appearing under two names would make the inverse
// lookup ambiguous, so duplicates are rejected.
func newIdentityMap(mentions map[string]string) (*IdentityMap, error) {
	m := &IdentityMap{
		byKey: make(map[string]string, len(mentions)),
		byID:  make(map[string]string, len(mentions)),
	}
	for suffix, id := range mentions {
		name := displayNameFromKey(suffix)
		if prev, ok := m.byID[id]; ok {
			return nil, fmt.Errorf("discord ID %s is mapped to both %q and %q", id, prev, name)
		}
		m.byKey[suffix] = id
		m.byID[id] = name
	}
	return m, nil
}

// mentionKey derives the configured key suffix for a display name:
// uppercased, spaces replaced with underscores. "Mary Jane" → "MARY_JANE".
func mentionKey(displayName string) string {
	return strings.ToUpper(strings.ReplaceAll(displayName, " ", "_"))
}

// displayNameFromKey is the inverse derivation: "MARY_JANE" → "Mary Jane".
func displayNameFromKey(key string) string {
	return titleCaseWords(strings.ReplaceAll(key, "_", " "))
}

// titleCaseWords lowercases the input and capitalizes the first letter of
// each space-separated word.
func titleCaseWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// MentionID resolves a display name to a Discord user ID, or "" when the
// person has no configured mention. The lookup key is derived from the name,
// so the match is case-insensitive on the name but exact on the key.
func (m *IdentityMap) MentionID(displayName string) string {
	return m.byKey[mentionKey(displayName)]
}

// DisplayName resolves a Discord user ID to a display name, or "" for an
// unregistered user.
func (m *IdentityMap) DisplayName(userID string) string {
	return m.byID[userID]
}

// Size returns the number of registered users.
func (m *IdentityMap) Size() int {
	return len(m.byID)
}
