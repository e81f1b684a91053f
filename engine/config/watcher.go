package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/retina/engine/core"
)

/**
 * @brief Reloads a config file whenever it is written or recreated and
 * hands the parsed result to a callback. Invalid edits are logged and
 * skipped.
 */
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	onChange func(*HostConfig)
	logger   core.LogSink

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func Watch(path string, logger core.LogSink, onChange func(*HostConfig)) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("config watcher: nil callback")
	}
	if logger == nil {
		logger = core.NopSink{}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors often replace the file, so the directory is watched
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()
	return w, nil
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload()
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher", "err", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload skipped", "path", w.path, "err", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)
	w.onChange(cfg)
}

// Close stops watching. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
	})
	return err
}
