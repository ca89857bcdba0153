package source

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
)

const (
	// Extension is the source language file extension.
	Extension = ".less"
	// OutputExtension replaces Extension for mirrored output files.
	OutputExtension = ".css"
)

var importPattern = regexp.MustCompile(`@import "([^"]+)";`)

// File is a stylesheet source identified by canonical path.
type File struct {
	path string
}

// New returns the File for path, canonicalizing it.
func New(path string) File {
	return File{path: Canonical(path)}
}

// Join returns the File for name relative to dir.
func Join(dir, name string) File {
	if filepath.IsAbs(name) {
		return New(name)
	}
	return New(filepath.Join(dir, name))
}

// Canonical resolves path to an absolute, symlink-free, NFC-normalized form.
// Paths that do not exist keep their resolved parent directory, falling back
// to the cleaned absolute path.
func Canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return norm.NFC.String(resolved)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return norm.NFC.String(filepath.Join(dir, filepath.Base(abs)))
	}
	return norm.NFC.String(abs)
}

// Path returns the canonical path.
func (f File) Path() string { return f.path }

// Dir returns the canonical parent directory.
func (f File) Dir() string { return filepath.Dir(f.path) }

// Name returns the base name.
func (f File) Name() string { return filepath.Base(f.path) }

// String implements fmt.Stringer.
func (f File) String() string { return f.path }

// IsZero reports whether f was never constructed.
func (f File) IsZero() bool { return f.path == "" }

// Equal reports whether both values name the same canonical file.
func (f File) Equal(other File) bool { return f.path != "" && f.path == other.path }

// Exists reports whether the file is present on disk.
func (f File) Exists() bool {
	st, err := os.Stat(f.path)
	return err == nil && !st.IsDir()
}

// Read loads the file's text.
func (f File) Read() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", ferrors.FileSystemError("read source file").
			WithCause(err).
			WithContext("file", f.path).
			Build()
	}
	return string(data), nil
}

// Imports reads the file and returns the files it imports, in declaration order
// and without duplicates.
func (f File) Imports() ([]File, error) {
	text, err := f.Read()
	if err != nil {
		return nil, err
	}
	return ParseImports(f.Dir(), text), nil
}

// ImportsFile reports whether f contains an import resolving to target.
func (f File) ImportsFile(target File) (bool, error) {
	imports, err := f.Imports()
	if err != nil {
		return false, err
	}
	for _, imp := range imports {
		if imp.Equal(target) {
			return true, nil
		}
	}
	return false, nil
}

// ParseImports extracts import declarations from text, resolving each name
// against dir.
func ParseImports(dir, text string) []File {
	matches := importPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]File, 0, len(matches))
	for _, m := range matches {
		imp := Join(dir, ResolveImportName(m[1]))
		if _, dup := seen[imp.path]; dup {
			continue
		}
		seen[imp.path] = struct{}{}
		out = append(out, imp)
	}
	return out
}

// ResolveImportName appends Extension to extensionless import names.
//
//	ResolveImportName("main")      == "main.less"
//	ResolveImportName("main.less") == "main.less"
func ResolveImportName(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// IsSourceFile reports whether name has the source extension.
func IsSourceFile(name string) bool {
	return strings.HasSuffix(name, Extension)
}

// OutputName maps a source-relative path to its output-relative path.
// Names without the source extension are returned unchanged.
func OutputName(rel string) string {
	if !strings.HasSuffix(rel, Extension) {
		return rel
	}
	return strings.TrimSuffix(rel, Extension) + OutputExtension
}

// IsAncestor reports whether dir contains path. Both must be canonical.
func IsAncestor(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
