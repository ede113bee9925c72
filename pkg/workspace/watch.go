package workspace

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotisserie/eris"

	"github.com/coffee-is-power/c-project-manager/pkg/builder"
	"github.com/coffee-is-power/c-project-manager/pkg/buildlog"
	"github.com/coffee-is-power/c-project-manager/pkg/manifest"
)

// DefaultDebounce is the quiet period Watch waits for before rebuilding
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc receives the outcome of every build triggered by Watch
type BuildFunc func(report *Report, err error)

// Watch builds the workspace rooted at root and rebuilds it whenever a
// manifest, source or header file below root changes. It blocks until ctx
// is cancelled.
func Watch(ctx context.Context, root string, debounce time.Duration, onBuild BuildFunc, opts ...builder.Option) error {
	root, err := filepath.Abs(root)
	if err != nil {
		return eris.Wrapf(err, "failed to resolve %s", root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	logger := buildlog.Log(ctx)
	err = watchTree(watcher, root)
	if err != nil {
		return err
	}

	onBuild(Build(ctx, root, opts...))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if ignored(root, event.Name) {
				continue
			}

			if event.Op&fsnotify.Create == fsnotify.Create {
				// new folders have to be watched as well
				if err := watchTree(watcher, event.Name); err != nil {
					logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new folder")
				}
			}

			if !relevant(event.Name) {
				continue
			}

			logger.Debug().Str("path", event.Name).Msgf("%s changed", event.Name)
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("file watcher error")

		case <-fire:
			fire = nil
			logger.Info().Str("path", root).Msgf("rebuilding %s", root)
			onBuild(Build(ctx, root, opts...))
		}
	}
}

// watchTree registers dir and all its sub folders except build outputs and hidden folders
func watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// the folder might have vanished in the meantime
			return nil
		}

		if !d.IsDir() {
			return nil
		}

		if path != dir && (d.Name() == builder.TargetFolder || strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}

		err = watcher.Add(path)
		if err != nil {
			return eris.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

func ignored(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return true
	}

	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return first == builder.TargetFolder
}

func relevant(path string) bool {
	if filepath.Base(path) == manifest.FileName {
		return true
	}

	switch filepath.Ext(path) {
	case builder.SourceExtension, ".h":
		return true
	}
	return false
}
