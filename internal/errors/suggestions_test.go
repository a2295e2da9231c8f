package errors

import (
	"strings"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "a", 1},
		{"abc", "abc", 0},
		{"abc", "ab", 1},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"prod-api", "prod-apis", 1},
		{"prod", "prod-api", 4},
	}

	for _, tc := range tests {
		got := levenshtein(tc.a, tc.b)
		if got != tc.expected {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.expected)
		}
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"prod-api", "prod-web", "staging-api", "dev-api"}

	tests := []struct {
		target      string
		maxDistance int
		wantAny     []string
	}{
		{"prod-apis", 2, []string{"prod-api"}},
		{"prod", 5, []string{"prod-api", "prod-web"}},
		{"api", 5, []string{"prod-api", "dev-api"}}, // staging-api has distance 8, too far
	}

	for _, tc := range tests {
		got := findSimilar(tc.target, candidates, tc.maxDistance)
		for _, want := range tc.wantAny {
			found := false
			for _, g := range got {
				if g == want {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("findSimilar(%q, maxDist=%d) = %v, expected to contain %q",
					tc.target, tc.maxDistance, got, want)
			}
		}
	}
}

func TestConnectionNotFoundError(t *testing.T) {
	available := []string{"prod-us2", "prod-eu", "staging"}
	err := ConnectionNotFoundError("prod-us1", available)

	errStr := err.Error()
	if !strings.Contains(errStr, "prod-us1") {
		t.Errorf("error should contain the bad name: %s", errStr)
	}
	if !strings.Contains(errStr, "prod-us2") {
		t.Errorf("error should suggest similar name: %s", errStr)
	}
	if !strings.Contains(errStr, "sumoknife connections") {
		t.Errorf("error should suggest help command: %s", errStr)
	}
}

func TestNoConnectionError(t *testing.T) {
	err := NoConnectionError()
	errStr := err.Error()

	if !strings.HasPrefix(errStr, "no connection selected") {
		t.Errorf("error should start with 'no connection selected': %s", errStr)
	}
	if !strings.Contains(errStr, "sumoknife connect NAME") {
		t.Errorf("error should suggest connecting: %s", errStr)
	}
}

func TestUnknownFormatError(t *testing.T) {
	err := UnknownFormatError("gird", []string{"grid", "fancy_grid", "json"})
	errStr := err.Error()

	if !strings.Contains(errStr, `"gird"`) {
		t.Errorf("error should contain the bad format: %s", errStr)
	}
	if !strings.Contains(errStr, "  grid\n") {
		t.Errorf("error should suggest grid: %s", errStr)
	}
}

func TestInvalidTimeError(t *testing.T) {
	err := InvalidTimeError("last tuesday")
	errStr := err.Error()

	if !strings.Contains(errStr, "last tuesday") {
		t.Errorf("error should contain the bad input: %s", errStr)
	}
	if !strings.Contains(errStr, "RFC3339") {
		t.Errorf("error should mention RFC3339 format: %s", errStr)
	}
}

func TestConfigurationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing field", MissingSetting("endpoint"), "configuration: endpoint: is not set"},
		{"no field", &ConfigurationError{Message: "bad"}, "configuration: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
