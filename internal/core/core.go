package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cleverdata/notion-cleaner/internal/cleaner"
	"github.com/cleverdata/notion-cleaner/internal/config"
	"github.com/cleverdata/notion-cleaner/internal/history"
	"github.com/cleverdata/notion-cleaner/internal/notion"
)

var DebugMode bool

// Logger is satisfied by service.Logger, so the same code logs to the
// console or to the system log when running as a service.
type Logger interface {
	Info(v ...interface{}) error
	Infof(format string, v ...interface{}) error
	Error(v ...interface{}) error
	Errorf(format string, v ...interface{}) error
	Warning(v ...interface{}) error
	Warningf(format string, v ...interface{}) error
}

func debugLog(logger Logger, format string, v ...interface{}) {
	if DebugMode && logger != nil {
		logger.Infof("[DEBUG] "+format, v...)
	}
}

// RunOptions controls a single pass over one configuration file.
type RunOptions struct {
	Now     time.Time // zero means time.Now() when the pass starts
	DryRun  bool
	Connect func(token string) cleaner.Workspace
	Report  func(line string)
}

// Connect is the default RunOptions.Connect.
func Connect(token string) cleaner.Workspace {
	return notion.NewClient(token)
}

// RunConfigFile loads one configuration file and runs its jobs. A missing
// file is reported and skipped; anything else that goes wrong is returned.
func RunConfigFile(ctx context.Context, path string, opts RunOptions, logger Logger) error {
	report := opts.Report
	if report == nil {
		report = func(line string) { fmt.Println(line) }
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		report(fmt.Sprintf("not found `%s`", path))
		return nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	connect := opts.Connect
	if connect == nil {
		connect = Connect
	}

	debugLog(logger, "[%s] %d database jobs", filepath.Base(path), len(cfg.Databases))

	r := &cleaner.Runner{
		Connect: connect,
		Now:     now,
		DryRun:  opts.DryRun,
		Report:  report,
		OnRemove: func(databaseURL string, row notion.Row) {
			history.RecordRemoval(history.Removal{
				RowID:       row.ID,
				DatabaseURL: databaseURL,
				Title:       row.Title,
				CreatedAt:   row.Created(),
			})
		},
		Logf: func(format string, v ...any) {
			debugLog(logger, format, v...)
		},
		Warnf: func(format string, v ...any) {
			if logger != nil {
				logger.Warningf(format, v...)
			}
		},
	}
	return r.Run(ctx, cfg)
}
