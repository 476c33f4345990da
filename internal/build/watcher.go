package build

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changed paths under an extension root.
type Watcher interface {
	Events() <-chan string
	Errors() <-chan error
	Close() error
}

// ignoredDirs are never watched: they hold build output or dependencies.
var ignoredDirs = map[string]bool{
	"dist":         true,
	"node_modules": true,
	".git":         true,
}

// fsWatcher watches a directory tree with fsnotify. New subdirectories are
// added as they appear.
type fsWatcher struct {
	root   string
	w      *fsnotify.Watcher
	events chan string
	errors chan error
	done   chan struct{}
	once   sync.Once
}

// NewFSWatcher starts watching root recursively.
func NewFSWatcher(root string) (Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	fw := &fsWatcher{
		root:   root,
		w:      w,
		events: make(chan string),
		errors: make(chan error),
		done:   make(chan struct{}),
	}
	if err := fw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}

	go fw.loop()
	return fw, nil
}

func (fw *fsWatcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && ignoredDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := fw.w.Add(p); err != nil {
			return fmt.Errorf("watching %s: %w", p, err)
		}
		return nil
	})
}

func (fw *fsWatcher) loop() {
	defer close(fw.events)
	defer close(fw.errors)
	for {
		select {
		case <-fw.done:
			return
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}
			if ignoredPath(fw.root, ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = fw.addTree(ev.Name)
				}
			}
			select {
			case fw.events <- ev.Name:
			case <-fw.done:
				return
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}
			select {
			case fw.errors <- err:
			case <-fw.done:
				return
			}
		}
	}
}

func (fw *fsWatcher) Events() <-chan string { return fw.events }
func (fw *fsWatcher) Errors() <-chan error  { return fw.errors }

func (fw *fsWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.w.Close()
	})
	return err
}

// ignoredPath filters build output and the archive this tool writes.
func ignoredPath(root, p string) bool {
	base := filepath.Base(p)
	if base == "dist.zip" || strings.HasPrefix(base, ".dist.zip-") {
		return true
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if ignoredDirs[part] {
			return true
		}
	}
	return false
}
