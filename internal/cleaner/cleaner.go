package cleaner

import (
	"context"
	"fmt"
	"time"

	"github.com/cleverdata/notion-cleaner/internal/notion"
)

const RequiredRole = "editor"

// Workspace is the part of the remote API a cleanup needs.
type Workspace interface {
	GetBlock(ctx context.Context, urlOrID string) (*notion.Block, error)
	GetRows(ctx context.Context, b *notion.Block) ([]notion.Row, error)
	RemoveRow(ctx context.Context, row notion.Row) error
}

// Cleaner removes matching rows from databases of a single workspace.
type Cleaner struct {
	Client Workspace
	Now    time.Time // fixed for the whole run
	DryRun bool

	// OnRemove is called after each successful removal.
	OnRemove func(databaseURL string, row notion.Row)
	Logf     func(format string, v ...any)
}

// Cleanup removes the rows of one database that match opts and returns a
// one-line result. A target that is not a database, or that the token may
// not edit, is reported in the result rather than as an error.
func (c *Cleaner) Cleanup(ctx context.Context, databaseURL string, opts Options) (string, error) {
	db, err := c.Client.GetBlock(ctx, databaseURL)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", databaseURL, err)
	}
	if !db.IsCollection() {
		return "fail: is not db", nil
	}
	if db.Role != RequiredRole {
		return fmt.Sprintf("fail: page access is %s, require: %s", db.Role, RequiredRole), nil
	}

	rows, err := c.Client.GetRows(ctx, db)
	if err != nil {
		return "", fmt.Errorf("listing rows of %s: %w", databaseURL, err)
	}
	c.logf("%s: %d rows", databaseURL, len(rows))

	count := 0
	for _, row := range rows {
		if !IsDeletionTarget(row, opts, c.Now) {
			continue
		}
		if c.DryRun {
			c.logf("would remove %s %q", row.ID, row.Title)
			count++
			continue
		}
		if err := c.Client.RemoveRow(ctx, row); err != nil {
			return "", fmt.Errorf("removing row %s: %w", row.ID, err)
		}
		c.logf("removed %s %q", row.ID, row.Title)
		if c.OnRemove != nil {
			c.OnRemove(databaseURL, row)
		}
		count++
	}

	if c.DryRun {
		return fmt.Sprintf("dry-run: would remove %d rows", count), nil
	}
	return fmt.Sprintf("done: remove %d rows", count), nil
}

func (c *Cleaner) logf(format string, v ...any) {
	if c.Logf != nil {
		c.Logf(format, v...)
	}
}
