// Package workspace manages the scratch directory of a mix-and-cut job.
//
// A Workspace is locked for the lifetime of a job so two jobs can never clear
// each other's intermediate files.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

const lockName = ".mixcut.lock"

// ErrBusy is returned by Acquire when another job holds the workspace.
var ErrBusy = errors.New("workspace is in use by another job")

type Workspace struct {
	root string
	lock *flock.Flock
}

func New(root string) (*Workspace, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("workspace root is empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Workspace{root: abs}, nil
}

func (w *Workspace) Root() string { return w.root }

// Path joins elements onto the workspace root.
func (w *Workspace) Path(elem ...string) string {
	return filepath.Join(append([]string{w.root}, elem...)...)
}

// Acquire creates the root and takes the exclusive job lock.
func (w *Workspace) Acquire() error {
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	lk := flock.New(filepath.Join(w.root, lockName))
	ok, err := lk.TryLock()
	if err != nil {
		return fmt.Errorf("lock workspace: %w", err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", w.root, ErrBusy)
	}
	w.lock = lk
	return nil
}

func (w *Workspace) Release() error {
	if w.lock == nil {
		return nil
	}
	err := w.lock.Unlock()
	w.lock = nil
	return err
}

// Clear removes everything under the root except the lock file. The
// workspace must be acquired.
func (w *Workspace) Clear() error {
	if w.lock == nil {
		return errors.New("clear workspace: not acquired")
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("clear workspace: %w", err)
	}
	for _, e := range entries {
		if e.Name() == lockName {
			continue
		}
		if err := os.RemoveAll(filepath.Join(w.root, e.Name())); err != nil {
			return fmt.Errorf("clear workspace: %w", err)
		}
	}
	return nil
}

// Dir creates and returns a subdirectory of the workspace.
func (w *Workspace) Dir(name string) (string, error) {
	p := w.Path(name)
	if err := os.MkdirAll(p, 0o755); err != nil {
		return "", err
	}
	return p, nil
}

// Destroy releases the lock and removes the whole workspace.
func (w *Workspace) Destroy() error {
	if err := w.Release(); err != nil {
		return err
	}
	return os.RemoveAll(w.root)
}
