package transform

import "context"

// CopyEngine returns its input unchanged.
type CopyEngine struct{}

func (CopyEngine) Compile(_ context.Context, src, _ string, _ bool) (string, error) {
	return src, nil
}
