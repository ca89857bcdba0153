package watch

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreMatcher applies the .gitignore files found below a root.
type IgnoreMatcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewIgnoreMatcher reads every .gitignore under root.
func NewIgnoreMatcher(root string) (*IgnoreMatcher, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, err
	}
	return &IgnoreMatcher{root: root, matcher: gitignore.NewMatcher(patterns)}, nil
}

// Match reports whether path is ignored. Paths outside the root never are.
func (m *IgnoreMatcher) Match(path string, isDir bool) bool {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return false
	}
	return m.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}

// shouldIgnoreName filters editor swap files, hidden files and OS litter.
func shouldIgnoreName(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}
