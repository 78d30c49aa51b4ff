// Package matcher selects credentials by glob or regular expression
// patterns over their ids and names.
package matcher

import (
	"regexp"
	"strings"

	"github.com/credentialengine/obpublisher/pkg/errors"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style patterns. Unlike path globs, * also matches
	// "/", so a pattern can span a whole credential URL.
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher tests strings against one pattern.
type Matcher struct {
	pattern     string
	patternType PatternType
	compiled    *regexp.Regexp
}

// New compiles pattern. Glob patterns match case-insensitively.
func New(patternType PatternType, pattern string) (*Matcher, error) {
	if patternType == Auto {
		patternType = detectPatternType(pattern)
	}

	var expr string
	switch patternType {
	case Glob:
		expr = "(?i)" + GlobToRegex(pattern)
	case Regex:
		expr = pattern
	default:
		return nil, errors.NewValidationError("pattern_type", patternType.String(), "unsupported pattern type")
	}

	compiled, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.WrapValidation("pattern", err)
	}
	return &Matcher{pattern: pattern, patternType: patternType, compiled: compiled}, nil
}

// Match reports whether input matches the pattern.
func (m *Matcher) Match(input string) bool {
	return m.compiled.MatchString(input)
}

// MatchAny reports whether any of inputs matches.
func (m *Matcher) MatchAny(inputs ...string) bool {
	for _, input := range inputs {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// Pattern returns the original pattern string.
func (m *Matcher) Pattern() string { return m.pattern }

// Type returns the pattern type being used.
func (m *Matcher) Type() PatternType { return m.patternType }

// Set matches when any of its patterns does. An empty set matches
// everything.
type Set []*Matcher

// NewSet compiles every pattern with automatic type detection.
func NewSet(patterns ...string) (Set, error) {
	set := make(Set, 0, len(patterns))
	for _, p := range patterns {
		m, err := New(Auto, p)
		if err != nil {
			return nil, err
		}
		set = append(set, m)
	}
	return set, nil
}

// MatchAny reports whether any pattern matches any of inputs.
func (s Set) MatchAny(inputs ...string) bool {
	if len(s) == 0 {
		return true
	}
	for _, m := range s {
		if m.MatchAny(inputs...) {
			return true
		}
	}
	return false
}

// detectPatternType treats a pattern as a regex when it uses syntax globs
// never do.
func detectPatternType(pattern string) PatternType {
	for _, indicator := range []string{
		"^", "$", `\d`, `\w`, `\s`, "(?", "{", "}", "+", "|", "(", ")", ".*",
	} {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// GlobToRegex converts a glob pattern to an anchored regex pattern.
func GlobToRegex(glob string) string {
	var regex strings.Builder
	regex.WriteString("^")

	for i := 0; i < len(glob); i++ {
		switch glob[i] {
		case '*':
			regex.WriteString(".*")
		case '?':
			regex.WriteString(".")
		case '[':
			j := i + 1
			if j < len(glob) && (glob[j] == '!' || glob[j] == '^') {
				regex.WriteString("[^")
				j++
			} else {
				regex.WriteString("[")
			}
			for ; j < len(glob) && glob[j] != ']'; j++ {
				if glob[j] == '\\' {
					regex.WriteByte(glob[j])
					j++
					if j < len(glob) {
						regex.WriteByte(glob[j])
					}
				} else {
					regex.WriteByte(glob[j])
				}
			}
			if j < len(glob) {
				regex.WriteString("]")
				i = j
			}
		case '\\':
			if i+1 < len(glob) {
				i++
				regex.WriteString(regexp.QuoteMeta(string(glob[i])))
			}
		default:
			regex.WriteString(regexp.QuoteMeta(string(glob[i])))
		}
	}

	regex.WriteString("$")
	return regex.String()
}
