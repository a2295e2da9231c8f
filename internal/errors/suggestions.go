// Package errors provides enhanced error messages with suggestions.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// SuggestiveError is an error that includes suggestions for fixing the problem.
type SuggestiveError struct {
	Message     string
	Suggestions []string
	HelpCommand string
}

func (e *SuggestiveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, s := range e.Suggestions {
			b.WriteString("  ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	if e.HelpCommand != "" {
		b.WriteString("\nRun '")
		b.WriteString(e.HelpCommand)
		b.WriteString("' for more information.")
	}

	return b.String()
}

// ConnectionNotFoundError creates an error for an unknown connection name.
func ConnectionNotFoundError(name string, available []string) error {
	similar := findSimilar(name, available, 3)
	return &SuggestiveError{
		Message:     fmt.Sprintf("connection %q not found", name),
		Suggestions: similar,
		HelpCommand: "sumoknife connections",
	}
}

// NoConnectionError creates an error for when no connection is selected.
func NoConnectionError() error {
	return &SuggestiveError{
		Message: "no connection selected",
		Suggestions: []string{
			"sumoknife connections add NAME --access-id ID --access-key KEY --endpoint HOST",
			"sumoknife connect NAME        - Activate a saved connection",
			"default_connection: NAME      - Set a default in the config file",
		},
	}
}

// UnknownFormatError creates an error for an unsupported results format.
func UnknownFormatError(format string, available []string) error {
	return &SuggestiveError{
		Message:     fmt.Sprintf("unknown results format %q", format),
		Suggestions: findSimilar(format, available, 3),
		HelpCommand: "sumoknife formats",
	}
}

// UnknownKindError creates an error for an unknown metadata kind.
func UnknownKindError(kind string, available []string) error {
	return &SuggestiveError{
		Message:     fmt.Sprintf("unknown metadata kind %q", kind),
		Suggestions: findSimilar(kind, available, 3),
	}
}

// InvalidTimeError creates an error for invalid time format.
func InvalidTimeError(input string) error {
	return &SuggestiveError{
		Message: fmt.Sprintf("invalid time format %q", input),
		Suggestions: []string{
			"Relative: 1h, 30m, 2d, 1w (hours, minutes, days, weeks ago)",
			"Absolute: 2024-01-15T10:30:00Z (RFC3339)",
			"Window: \"Last 15 Minutes\", \"Today\", \"Previous Month\"",
		},
	}
}

// MissingFlagError creates an error for a missing required flag.
func MissingFlagError(flag, description string, examples []string) error {
	return &SuggestiveError{
		Message:     fmt.Sprintf("%s is required", flag),
		Suggestions: examples,
	}
}

// findSimilar finds strings similar to target using Levenshtein distance.
func findSimilar(target string, candidates []string, maxDistance int) []string {
	type match struct {
		value    string
		distance int
	}

	var matches []match
	targetLower := strings.ToLower(target)

	for _, c := range candidates {
		cLower := strings.ToLower(c)
		d := levenshtein(targetLower, cLower)
		if d <= maxDistance {
			matches = append(matches, match{value: c, distance: d})
		}
	}

	// Sort by distance (closest first)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	var result []string
	for i := 0; i < len(matches) && i < 3; i++ {
		result = append(result, matches[i].value)
	}

	return result
}

// levenshtein calculates the Levenshtein distance between two strings.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Create matrix
	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}

	// Initialize first column
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}

	// Initialize first row
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	// Fill matrix
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}

func min(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
