package profile

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gobwas/glob"
)

// NormalizePatterns splits a ';'-separated pattern list, drops empty entries and
// duplicates, and anchors relative patterns with a leading "*/".
func NormalizePatterns(patterns string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range strings.Split(patterns, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = makePatternAbsolute(p)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func makePatternAbsolute(pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return "*" + string(filepath.Separator) + pattern
}

// Pattern is a compiled wildcard pattern.
type Pattern struct {
	glob glob.Glob
}

// CompilePattern compiles pattern so that '*' matches any run of characters
// (separators included) and '?' exactly one. Every other character is
// literal. Matching is case-insensitive on Windows.
func CompilePattern(pattern string) Pattern {
	g, err := glob.Compile(escapeGlob(foldCase(pattern)))
	if err != nil {
		// Unreachable with escaped input; fall back to a literal match.
		g = glob.MustCompile(glob.QuoteMeta(foldCase(pattern)))
	}
	return Pattern{glob: g}
}

// Match reports whether name matches the pattern.
func (p Pattern) Match(name string) bool {
	return p.glob.Match(foldCase(name))
}

// WildcardMatch compiles pattern and matches name against it.
func WildcardMatch(name, pattern string) bool {
	return CompilePattern(pattern).Match(name)
}

func compilePatterns(patterns string) []Pattern {
	normalized := NormalizePatterns(patterns)
	out := make([]Pattern, 0, len(normalized))
	for _, p := range normalized {
		out = append(out, CompilePattern(p))
	}
	return out
}

// escapeGlob quotes every glob metacharacter except '*' and '?'.
func escapeGlob(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))
	for _, r := range pattern {
		switch r {
		case '[', ']', '{', '}', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func foldCase(s string) string {
	if runtime.GOOS == "windows" {
		return strings.ToLower(s)
	}
	return s
}
