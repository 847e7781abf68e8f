package cleaner

import (
	"slices"
	"strings"
	"time"

	"github.com/cleverdata/notion-cleaner/internal/notion"
)

// IsDeletionTarget reports whether row should be removed under opts. Every
// enabled condition must hold; disabled conditions always pass.
func IsDeletionTarget(row notion.Row, opts Options, now time.Time) bool {
	if !row.Alive {
		return false
	}
	if !IsCheckTarget(row, opts, now) {
		return false
	}

	if opts.Title && strings.TrimSpace(row.Title) != "" {
		return false
	}
	if opts.Content && len(row.Children) > 0 {
		return false
	}

	for _, prop := range selectedProps(row.Schema, opts.Props) {
		if !row.Property(prop.ID).IsEmpty() {
			return false
		}
	}
	return true
}

// IsCheckTarget applies the age thresholds: a row younger than
// opts.Created, or edited more recently than opts.Edited, is left alone.
func IsCheckTarget(row notion.Row, opts Options, now time.Time) bool {
	if opts.Created != nil && elapsed(now, row.Created()) < float64(*opts.Created) {
		return false
	}
	if opts.Edited != nil && elapsed(now, row.LastEdited()) < float64(*opts.Edited) {
		return false
	}
	return true
}

func elapsed(now, t time.Time) float64 {
	return now.Sub(t).Seconds()
}

func selectedProps(schema []notion.SchemaProperty, names []string) []notion.SchemaProperty {
	if len(names) == 0 {
		return nil
	}
	var out []notion.SchemaProperty
	for _, p := range schema {
		if slices.Contains(names, p.Name) {
			out = append(out, p)
		}
	}
	return out
}
