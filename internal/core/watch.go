package core

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	defaultInterval      = 1 * time.Hour
	defaultSettlingDelay = 5 * time.Second
)

// WatchOptions configures WatchConfigs.
type WatchOptions struct {
	Interval        string // time between full passes
	SettlingDelay   string // quiet period after a config file changes
	DisableFsnotify bool   // rely on the interval only
	Run             RunOptions
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// WatchConfigs runs every configuration once, then again on each interval
// and whenever one of the files changes on disk. Passes never overlap.
// It returns when ctx is done.
func WatchConfigs(ctx context.Context, paths []string, opts WatchOptions, logger Logger) {
	interval := parseDurationOr(opts.Interval, defaultInterval)
	settling := parseDurationOr(opts.SettlingDelay, defaultSettlingDelay)

	paths = append([]string(nil), paths...)
	watched := make(map[string]bool, len(paths))
	for i, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			paths[i] = abs
		}
		watched[paths[i]] = true
	}

	if logger != nil {
		logger.Infof("Watching %d config files, full pass every %s", len(paths), interval)
	}

	runOne := func(path string) {
		// each pass measures row age against its own start time
		o := opts.Run
		o.Now = time.Time{}
		if err := RunConfigFile(ctx, path, o, logger); err != nil && logger != nil {
			logger.Errorf("[%s] Cleanup failed: %v", filepath.Base(path), err)
		}
	}
	runAll := func() {
		for _, p := range paths {
			if ctx.Err() != nil {
				return
			}
			runOne(p)
		}
	}

	changed := make(chan string, 100)
	settled := make(chan string, 100)

	if !opts.DisableFsnotify {
		go watchFiles(ctx, watched, changed, logger)
	} else if logger != nil {
		logger.Info("FSNOTIFY disabled. Running on the interval only.")
	}

	runAll()

	pending := make(map[string]*time.Timer)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case p := <-changed:
			if t, ok := pending[p]; ok {
				t.Stop()
			}
			debugLog(logger, "Config changed: %s. Waiting %s before the next pass.", filepath.Base(p), settling)
			path := p
			pending[p] = time.AfterFunc(settling, func() {
				select {
				case settled <- path:
				case <-ctx.Done():
				}
			})

		case p := <-settled:
			delete(pending, p)
			runOne(p)

		case <-ticker.C:
			debugLog(logger, "Starting scheduled pass...")
			runAll()

		case <-ctx.Done():
			for _, t := range pending {
				t.Stop()
			}
			return
		}
	}
}

// watchFiles watches the directories holding the config files, since
// editors often replace a file instead of writing it in place.
func watchFiles(ctx context.Context, watched map[string]bool, changed chan<- string, logger Logger) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		if logger != nil {
			logger.Warningf("Error creating watcher: %v", err)
		}
		return
	}
	defer watcher.Close()

	dirs := make(map[string]bool)
	for p := range watched {
		dirs[filepath.Dir(p)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil && logger != nil {
			logger.Warningf("Failed to watch %s: %v", d, err)
		}
	}

	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !watched[e.Name] || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			debugLog(logger, "FSNOTIFY event (%v) for %s", e.Op, filepath.Base(e.Name))
			select {
			case changed <- e.Name:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if logger != nil {
				logger.Warningf("Watcher error: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
