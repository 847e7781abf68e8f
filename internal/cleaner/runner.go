package cleaner

import (
	"context"
	"fmt"
	"time"

	"github.com/cleverdata/notion-cleaner/internal/config"
	"github.com/cleverdata/notion-cleaner/internal/notion"
)

// Runner executes every database job of a configuration, one after another.
type Runner struct {
	// Connect builds the workspace client for a configuration's token.
	Connect func(token string) Workspace
	Now     time.Time
	DryRun  bool

	Report   func(result string)
	OnRemove func(databaseURL string, row notion.Row)
	Logf     func(format string, v ...any)
	Warnf    func(format string, v ...any)
}

// Run processes the jobs of cfg in order and reports one result per job
// that has a url. The first error aborts the remaining jobs.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) error {
	c := &Cleaner{
		Client:   r.Connect(cfg.Token),
		Now:      r.Now,
		DryRun:   r.DryRun,
		OnRemove: r.OnRemove,
		Logf:     r.Logf,
	}

	if err := Validate(cfg.Options); err != nil {
		r.warnf("%s: %v", cfg.Path(), err)
	}
	global := Merge(DefaultOptions(), cfg.Options)

	for i, job := range cfg.Databases {
		url, ok := config.URL(job)
		if !ok {
			continue
		}
		if err := Validate(job); err != nil {
			r.warnf("%s: databases[%d]: %v", cfg.Path(), i, err)
		}

		result, err := c.Cleanup(ctx, url, Merge(global, job))
		if err != nil {
			return fmt.Errorf("cleanup %s: %w", url, err)
		}
		if r.Report != nil {
			r.Report(result)
		}
	}
	return nil
}

func (r *Runner) warnf(format string, v ...any) {
	if r.Warnf != nil {
		r.Warnf(format, v...)
	}
}
