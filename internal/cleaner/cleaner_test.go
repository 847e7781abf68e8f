package cleaner

import (
	"context"
	"errors"
	"testing"

	"github.com/cleverdata/notion-cleaner/internal/notion"
)

type fakeWorkspace struct {
	blocks    map[string]*notion.Block
	rows      map[string][]notion.Row
	removed   []string
	removeErr error
	token     string
}

func (f *fakeWorkspace) GetBlock(ctx context.Context, urlOrID string) (*notion.Block, error) {
	b, ok := f.blocks[urlOrID]
	if !ok {
		return nil, errors.New("block not found")
	}
	return b, nil
}

func (f *fakeWorkspace) GetRows(ctx context.Context, b *notion.Block) ([]notion.Row, error) {
	return f.rows[b.ID], nil
}

func (f *fakeWorkspace) RemoveRow(ctx context.Context, row notion.Row) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, row.ID)
	return nil
}

func newFakeWorkspace() *fakeWorkspace {
	titled := emptyRow()
	titled.ID = "titled"
	titled.Title = "Keep me"

	blank := emptyRow()
	blank.ID = "blank"

	spaces := emptyRow()
	spaces.ID = "spaces"
	spaces.Title = "\t \n"

	return &fakeWorkspace{
		blocks: map[string]*notion.Block{
			"db":       {ID: "db", Type: "collection_view_page", Role: "editor"},
			"inline":   {ID: "inline", Type: "collection_view", Role: "editor"},
			"page":     {ID: "page", Type: "page", Role: "editor"},
			"readonly": {ID: "readonly", Type: "collection_view_page", Role: "reader"},
		},
		rows: map[string][]notion.Row{
			"db":     {titled, blank, spaces},
			"inline": {titled},
		},
	}
}

func TestCleanup_RemovesMatchingRows(t *testing.T) {
	ws := newFakeWorkspace()
	var recorded []string
	c := &Cleaner{
		Client: ws,
		Now:    testNow,
		OnRemove: func(databaseURL string, row notion.Row) {
			recorded = append(recorded, databaseURL+"/"+row.ID)
		},
	}

	result, err := c.Cleanup(context.Background(), "db", DefaultOptions())
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if result != "done: remove 2 rows" {
		t.Errorf("result = %q, want %q", result, "done: remove 2 rows")
	}
	if len(ws.removed) != 2 || ws.removed[0] != "blank" || ws.removed[1] != "spaces" {
		t.Errorf("removed = %v, want [blank spaces]", ws.removed)
	}
	if len(recorded) != 2 || recorded[0] != "db/blank" {
		t.Errorf("OnRemove calls = %v", recorded)
	}
}

func TestCleanup_NotDatabase(t *testing.T) {
	ws := newFakeWorkspace()
	c := &Cleaner{Client: ws, Now: testNow}
	result, err := c.Cleanup(context.Background(), "page", DefaultOptions())
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if result != "fail: is not db" {
		t.Errorf("result = %q, want %q", result, "fail: is not db")
	}
	if len(ws.removed) != 0 {
		t.Errorf("removed = %v, want none", ws.removed)
	}
}

func TestCleanup_RequiresEditor(t *testing.T) {
	ws := newFakeWorkspace()
	c := &Cleaner{Client: ws, Now: testNow}
	result, err := c.Cleanup(context.Background(), "readonly", DefaultOptions())
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if want := "fail: page access is reader, require: editor"; result != want {
		t.Errorf("result = %q, want %q", result, want)
	}
}

func TestCleanup_DryRun(t *testing.T) {
	ws := newFakeWorkspace()
	var recorded int
	c := &Cleaner{Client: ws, Now: testNow, DryRun: true, OnRemove: func(string, notion.Row) { recorded++ }}
	result, err := c.Cleanup(context.Background(), "db", DefaultOptions())
	if err != nil {
		t.Fatalf("Cleanup returned error: %v", err)
	}
	if result != "dry-run: would remove 2 rows" {
		t.Errorf("result = %q", result)
	}
	if len(ws.removed) != 0 || recorded != 0 {
		t.Errorf("dry run removed %v, recorded %d", ws.removed, recorded)
	}
}

func TestCleanup_ResolveError(t *testing.T) {
	c := &Cleaner{Client: newFakeWorkspace(), Now: testNow}
	if _, err := c.Cleanup(context.Background(), "missing", DefaultOptions()); err == nil {
		t.Fatal("Cleanup should return error when the block cannot be resolved")
	}
}

func TestCleanup_RemoveError(t *testing.T) {
	ws := newFakeWorkspace()
	ws.removeErr = errors.New("boom")
	c := &Cleaner{Client: ws, Now: testNow}
	if _, err := c.Cleanup(context.Background(), "db", DefaultOptions()); err == nil {
		t.Fatal("Cleanup should return error when a delete fails")
	}
}
