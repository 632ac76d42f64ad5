package resource

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a catalog file when it changes on disk. A reload that
// fails validation is logged and the previous catalog stays active.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	onChange func(*Catalog)
	onReject func(error)

	stopOnce sync.Once
	done     chan struct{}
}

// NewWatcher starts watching path. onChange receives every catalog that
// loads and validates successfully; onReject, if not nil, every error.
func NewWatcher(path string, onChange func(*Catalog), onReject func(error), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors replace files by rename, so watch the directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fw,
		logger:   logger,
		onChange: onChange,
		onReject: onReject,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("catalog watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	cat, err := Load(w.path)
	if err != nil {
		w.logger.Warn("catalog reload rejected", zap.String("path", w.path), zap.Error(err))
		if w.onReject != nil {
			w.onReject(err)
		}
		return
	}
	w.logger.Info("catalog reloaded", zap.String("path", w.path),
		zap.Int("items", len(cat.Items)), zap.Int("skills", len(cat.Skills)))
	w.onChange(cat)
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.watcher.Close()
		<-w.done
	})
}
