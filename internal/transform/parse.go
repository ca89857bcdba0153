package transform

import (
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/lesswatch/internal/compile"
)

// headerPattern matches the first line lessc prints on failure, e.g.
//
//	ParseError: Unrecognised input in /src/a.less on line 3, column 1:
var headerPattern = regexp.MustCompile(`^(?:(\w+)Error: )?(.*?)(?: in (\S+))?(?: on line (\d+), column (\d+))?:?$`)

// ParseCompilerOutput turns compiler diagnostics into a TransformError. The
// first non-empty line is the header; the lines after it form the extract.
func ParseCompilerOutput(output string) *compile.TransformError {
	lines := strings.Split(strings.ReplaceAll(output, "\r\n", "\n"), "\n")
	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return &compile.TransformError{Message: "stylesheet compiler failed without output"}
	}

	te := &compile.TransformError{}
	header := strings.TrimSpace(lines[i])
	if m := headerPattern.FindStringSubmatch(header); m != nil {
		te.Kind = m[1]
		te.Message = m[2]
		te.Filename = m[3]
		te.Line, _ = strconv.Atoi(m[4])
		te.Column, _ = strconv.Atoi(m[5])
	} else {
		te.Message = header
	}
	if te.Line == 0 {
		te.Line, te.Column, _ = compile.ParseLocation(header)
	}

	for _, l := range lines[i+1:] {
		if strings.TrimSpace(l) == "" {
			continue
		}
		te.Extract = append(te.Extract, strings.TrimRight(l, " "))
	}
	te.Extract = compile.NormalizeExtract(te.Extract)
	return te
}
