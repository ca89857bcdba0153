package mirror

import (
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/lesswatch/internal/foundation/errors"
	"git.home.luguber.info/inful/lesswatch/internal/profile"
	"git.home.luguber.info/inful/lesswatch/internal/source"
	"git.home.luguber.info/inful/lesswatch/internal/util/sets"
)

// Kind classifies a relocation.
type Kind string

const (
	KindMove   Kind = "move"
	KindCopy   Kind = "copy"
	KindDelete Kind = "delete"
)

// Relocation is one pending change to a mirrored output file. NewPath is
// empty for deletions.
type Relocation struct {
	Kind    Kind
	Root    string
	OldPath string
	NewPath string
}

func (r Relocation) String() string {
	if r.Kind == KindDelete {
		return fmt.Sprintf("delete %s", r.OldPath)
	}
	return fmt.Sprintf("%s %s -> %s", r.Kind, r.OldPath, r.NewPath)
}

// PlanMove proposes moving mirrored outputs after the source now at newPath
// was moved out of oldParent. Only roots holding output at the old location
// are included.
func PlanMove(p *profile.Profile, newPath, oldParent string) ([]Relocation, error) {
	return plan(KindMove, p, newPath, oldParent)
}

// PlanCopy proposes duplicating mirrored outputs after the source in
// originalParent was copied to newPath.
func PlanCopy(p *profile.Profile, newPath, originalParent string) ([]Relocation, error) {
	return plan(KindCopy, p, newPath, originalParent)
}

// PlanDelete proposes removing the mirrored outputs of the deleted source at path.
func PlanDelete(p *profile.Profile, path string) ([]Relocation, error) {
	if !p.Active() {
		return nil, nil
	}
	old := source.New(path)
	if !p.Contains(old) {
		return nil, nil
	}
	out := sets.NewOrdered[Relocation]()
	for _, root := range p.OutputRoots {
		oldOut, err := OutputPath(root, p, old)
		if err != nil {
			return nil, err
		}
		if !exists(oldOut) {
			continue
		}
		out.Add(Relocation{Kind: KindDelete, Root: root, OldPath: oldOut})
	}
	return out.Values(), nil
}

func plan(kind Kind, p *profile.Profile, newPath, oldParent string) ([]Relocation, error) {
	if !p.Active() {
		return nil, nil
	}
	newFile := source.New(newPath)
	oldFile := source.Join(oldParent, newFile.Name())
	if !p.Contains(newFile) || !p.Contains(oldFile) || newFile.Equal(oldFile) {
		return nil, nil
	}
	out := sets.NewOrdered[Relocation]()
	for _, root := range p.OutputRoots {
		oldOut, err := OutputPath(root, p, oldFile)
		if err != nil {
			return nil, err
		}
		if !exists(oldOut) {
			continue
		}
		newOut, err := OutputPath(root, p, newFile)
		if err != nil {
			return nil, err
		}
		out.Add(Relocation{Kind: kind, Root: root, OldPath: oldOut, NewPath: newOut})
	}
	return out.Values(), nil
}

// Apply carries out relocations in order and stops at the first failure.
// Moves and copies replace whatever already sits at the target.
func Apply(relocations []Relocation) error {
	for _, r := range relocations {
		if err := apply(r); err != nil {
			return ferrors.FileSystemError("cannot apply output relocation").
				WithCause(err).
				WithContext("kind", string(r.Kind)).
				WithContext("output_root", r.Root).
				WithContext("path", r.OldPath).
				Build()
		}
	}
	return nil
}

func apply(r Relocation) error {
	switch r.Kind {
	case KindDelete:
		if err := os.Remove(r.OldPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	case KindMove:
		if err := replaceTarget(r.NewPath); err != nil {
			return err
		}
		return os.Rename(r.OldPath, r.NewPath)
	case KindCopy:
		data, err := os.ReadFile(r.OldPath)
		if err != nil {
			return err
		}
		if err := replaceTarget(r.NewPath); err != nil {
			return err
		}
		return os.WriteFile(r.NewPath, data, filePerm) //nolint:gosec // public stylesheet output, non-sensitive
	default:
		return fmt.Errorf("unknown relocation kind %q", r.Kind)
	}
}

func replaceTarget(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
