package compile

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Engine transforms stylesheet source text into output text. location is the
// canonical path of the source and anchors relative imports.
type Engine interface {
	Compile(ctx context.Context, source, location string, compress bool) (string, error)
}

// TransformError is a structured engine failure. Line and Column are zero
// when the engine could not attribute the error.
type TransformError struct {
	Kind     string
	Message  string
	Filename string
	Line     int
	Column   int
	Extract  []string
}

func (e *TransformError) Error() string {
	var b strings.Builder
	if e.Kind != "" {
		b.WriteString(e.Kind)
		b.WriteString(" Error: ")
	}
	b.WriteString(e.Message)
	if e.Filename != "" {
		fmt.Fprintf(&b, " in %s", e.Filename)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " on line %d, column %d", e.Line, e.Column)
	}
	return b.String()
}

var locationPattern = regexp.MustCompile(`(?i)line ([0-9]+), column ([0-9]+)`)

// ParseLocation extracts "line N, column M" from an engine message.
func ParseLocation(message string) (line, column int, ok bool) {
	m := locationPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, 0, false
	}
	line, _ = strconv.Atoi(m[1])
	column, _ = strconv.Atoi(m[2])
	return line, column, true
}

// NormalizeExtract expands tabs so extract lines keep their alignment in
// terminal output.
func NormalizeExtract(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, strings.ReplaceAll(l, "\t", "    "))
	}
	return out
}

const (
	directiveMinify   = "//simpless:minify"
	directiveNoMinify = "//simpless:!minify"
)

// ShouldCompress applies the per-file directives to the profile default.
// //simpless:minify always compresses; //simpless:!minify disables
// compression the profile would otherwise apply.
func ShouldCompress(text string, profileCompress bool) bool {
	if strings.Contains(text, directiveMinify) {
		return true
	}
	return profileCompress && !strings.Contains(text, directiveNoMinify)
}
