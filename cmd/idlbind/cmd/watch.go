package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/idlbind/errors"
	"github.com/teranos/idlbind/gen"
	"github.com/teranos/idlbind/logger"
	"github.com/teranos/idlbind/registry"
	"github.com/teranos/idlbind/source"
)

// debouncePeriod coalesces editor save bursts into one rebuild.
const debouncePeriod = 500 * time.Millisecond

// watchAndRebuild blocks until ctx is cancelled, rerunning the build whenever
// a watched IDL source or module descriptor changes. Build failures are
// logged, not fatal: the next save gets another chance.
func watchAndRebuild(ctx context.Context, spec buildSpec) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	for _, path := range watchPaths(spec) {
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %q", path)
		}
		logger.Logger.Debugw("watching for changes", logger.FieldPath, path)
	}

	logger.Logger.Infow("watch mode active", logger.FieldCount, len(watchPaths(spec)))

	var debounce *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !relevantChange(event.Name, spec) {
				continue
			}
			logger.Logger.Debugw("change detected",
				logger.FieldPath, event.Name,
				"op", event.Op.String())
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debouncePeriod, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Logger.Warnw("file watcher error", logger.FieldError, err)

		case <-rebuild:
			start := time.Now()
			if err := runBuild(ctx, spec); err != nil {
				logger.Logger.Errorw("rebuild failed", logger.FieldError, err)
				continue
			}
			logger.Logger.Infow("rebuild complete",
				logger.FieldDurationMS, time.Since(start).Milliseconds())
		}
	}
}

// watchPaths lists the directories to register with fsnotify. Directories are
// watched rather than individual files so renames and newly-created *.idl
// files are picked up.
func watchPaths(spec buildSpec) []string {
	seen := make(map[string]bool)
	var paths []string
	add := func(dir string) {
		if dir == "" || seen[dir] {
			return
		}
		seen[dir] = true
		paths = append(paths, dir)
	}

	for _, decl := range spec.Sources {
		if info, err := os.Stat(decl.IDLPath); err == nil && info.IsDir() {
			add(decl.IDLPath)
		} else {
			add(filepath.Dir(decl.IDLPath))
		}
	}
	for _, mod := range spec.Modules {
		add(filepath.Dir(mod.DescriptorPath))
	}
	return paths
}

// relevantChange filters watcher events down to IDL sources and descriptors;
// editor temp files and unrelated siblings in watched directories are noise.
func relevantChange(name string, spec buildSpec) bool {
	if strings.HasSuffix(name, source.Extension) {
		return true
	}
	clean := filepath.Clean(name)
	for _, decl := range spec.Sources {
		if filepath.Clean(decl.IDLPath) == clean {
			return true
		}
	}
	for _, mod := range spec.Modules {
		if filepath.Clean(mod.DescriptorPath) == clean {
			return true
		}
	}
	return false
}

// implDirFor derives the default implementation directory for an IDL input:
// the directory itself for directory inputs, the containing directory for
// file inputs.
func implDirFor(path string) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return path
	}
	return filepath.Dir(path)
}

// countOwned counts the registry entries this build emits, excluding types
// contributed by other modules.
func countOwned(reg *registry.Registry) int {
	n := 0
	for _, e := range gen.Entries(reg) {
		if !e.Imported() {
			n++
		}
	}
	return n
}
