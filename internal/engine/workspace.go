package engine

import (
	"os"
	"sync"
)

// Workspace is the scratch directory of one run. Close removes it exactly once.
type Workspace struct {
	Dir string

	once sync.Once
	err  error
}

// NewWorkspace creates a fresh directory under root.
func NewWorkspace(root string) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0755); err != nil {
			return nil, err
		}
	}
	dir, err := os.MkdirTemp(root, "scene2video_")
	if err != nil {
		return nil, err
	}
	return &Workspace{Dir: dir}, nil
}

func (w *Workspace) Close() error {
	w.once.Do(func() {
		w.err = os.RemoveAll(w.Dir)
	})
	return w.err
}
