package matcher

import (
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{name: "valid glob pattern", pattern: "https://example.com/*", patternType: Glob, wantType: Glob},
		{name: "valid regex pattern", pattern: "^https://.*/badges/", patternType: Regex, wantType: Regex},
		{name: "invalid regex pattern", pattern: "[unclosed", patternType: Regex, wantErr: true},
		{name: "auto detect glob", pattern: "*weld*", patternType: Auto, wantType: Glob},
		{name: "auto detect regex", pattern: `badges/\d+$`, patternType: Auto, wantType: Regex},
		{name: "unsupported type", pattern: "x", patternType: PatternType(9), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if m.Type() != tt.wantType {
				t.Errorf("Type() = %v, want %v", m.Type(), tt.wantType)
			}
			if m.Pattern() != tt.pattern {
				t.Errorf("Pattern() = %q, want %q", m.Pattern(), tt.pattern)
			}
		})
	}
}

func TestMatcher_Match(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    bool
	}{
		{"https://example.com/badges/*", "https://example.com/badges/welding", true},
		{"https://example.com/badges/*", "https://example.com/badges/metal/welding", true},
		{"https://example.com/badges/*", "https://example.org/badges/welding", false},
		{"*WELD*", "Advanced Welding", true},
		{"welding?", "welding1", true},
		{"welding?", "welding", false},
		{"badge[0-9]", "badge7", true},
		{"badge[!0-9]", "badge7", false},
		{`badges/\d+$`, "https://example.com/badges/42", true},
		{`badges/\d+$`, "https://example.com/badges/welding", false},
		{"Welding", "welding", true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.input, func(t *testing.T) {
			m, err := New(Auto, tt.pattern)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if got := m.Match(tt.input); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	empty, err := NewSet()
	if err != nil {
		t.Fatal(err)
	}
	if !empty.MatchAny("anything") {
		t.Error("empty set should match everything")
	}

	set, err := NewSet("*welding", "^Brazing$")
	if err != nil {
		t.Fatal(err)
	}
	if !set.MatchAny("https://example.com/badges/welding", "Welding") {
		t.Error("expected id to match")
	}
	if !set.MatchAny("https://example.com/badges/2", "Brazing") {
		t.Error("expected name to match")
	}
	if set.MatchAny("https://example.com/badges/3", "Soldering") {
		t.Error("unexpected match")
	}

	if _, err := NewSet("(unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func TestDetectPatternType(t *testing.T) {
	tests := map[string]PatternType{
		"*.json":          Glob,
		"welding":         Glob,
		"badge[0-9]":      Glob,
		"^welding":        Regex,
		"weld(ing)?":      Regex,
		"a|b":             Regex,
		"https://x/.*":    Regex,
		`\d+`:             Regex,
		"credential{1,2}": Regex,
	}
	for pattern, want := range tests {
		if got := detectPatternType(pattern); got != want {
			t.Errorf("detectPatternType(%q) = %v, want %v", pattern, got, want)
		}
	}
}

func TestGlobToRegex(t *testing.T) {
	tests := map[string]string{
		"*.json": `^.*\.json$`,
		"a?c":    `^a.c$`,
		"[!x]y":  `^[^x]y$`,
		`a\*b`:   `^a\*b$`,
		"plain":  `^plain$`,
	}
	for glob, want := range tests {
		if got := GlobToRegex(glob); got != want {
			t.Errorf("GlobToRegex(%q) = %q, want %q", glob, got, want)
		}
	}
}
