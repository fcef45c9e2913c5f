package gate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/user/pane-scraper/internal/repository"
	"go.uber.org/zap"
)

// FileFlag resumes when a flag file appears, e.g. `touch resume.flag`.
// The flag is consumed (removed) on resume.
type FileFlag struct {
	path   string
	logger *zap.Logger
}

var _ repository.OperatorGate = (*FileFlag)(nil)

func NewFileFlag(path string, logger *zap.Logger) *FileFlag {
	return &FileFlag{path: path, logger: logger}
}

// Await removes any stale flag, then watches the flag's directory until the
// flag is created.
func (f *FileFlag) Await(ctx context.Context, prompt string) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear stale flag: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	f.logger.Info("waiting for resume flag", zap.String("path", f.path), zap.String("prompt", prompt))

	want := filepath.Clean(f.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("flag watcher closed")
			}
			return err
		case ev, ok := <-watcher.Events:
			if !ok {
				return errors.New("flag watcher closed")
			}
			if filepath.Clean(ev.Name) != want || !(ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write)) {
				continue
			}
			f.logger.Info("resume flag found", zap.String("path", f.path))
			if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
				f.logger.Warn("could not remove resume flag", zap.Error(err))
			}
			return nil
		}
	}
}
