package models

import "strings"

// Participants cross the core boundary as a []string but are persisted as a
// single ", "-delimited column. The codec must round-trip losslessly for
// usernames without commas.

func EncodeParticipants(participants []string) string {
	return strings.Join(participants, ", ")
}

func DecodeParticipants(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeParticipants trims entries, drops empties and duplicates while
// preserving insertion order, and forces the owner to the front if absent.
func NormalizeParticipants(owner string, participants []string) []string {
	seen := make(map[string]bool, len(participants)+1)
	out := make([]string, 0, len(participants)+1)
	for _, p := range participants {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	if !seen[owner] {
		out = append([]string{owner}, out...)
	}
	return out
}
