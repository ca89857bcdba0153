// Package mirror keeps generated stylesheets in every output root of a
// profile in step with the source tree.
package mirror

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// OutputPath returns where f is mirrored inside root.
func OutputPath(root string, p *profile.Profile, f source.File) (string, error) {
	rel, err := p.Rel(f)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, source.OutputName(rel)), nil
}

// Write stores output for f in every output root whose current content
// differs, and returns the paths actually written. Empty output writes nothing.
func Write(p *profile.Profile, f source.File, output string) ([]string, error) {
	if output == "" {
		return nil, nil
	}
	data := []byte(output)
	var written []string
	for _, root := range p.OutputRoots {
		target, err := OutputPath(root, p, f)
		if err != nil {
			return written, err
		}
		if current, err := os.ReadFile(target); err == nil && bytes.Equal(current, data) { //nolint:gosec // target is derived from configured output root
			continue
		}
		if err := writeFile(target, data); err != nil {
			return written, ferrors.FileSystemError("cannot write output").
				WithCause(err).
				WithContext("file", f.Path()).
				WithContext("output_root", root).
				WithContext("path", target).
				Build()
		}
		written = append(written, target)
	}
	return written, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	return os.WriteFile(path, data, filePerm) //nolint:gosec // public stylesheet output, non-sensitive
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !errors.Is(err, fs.ErrNotExist)
}
