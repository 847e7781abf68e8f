package cleaner

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// Option keys recognised in configuration files, globally and per database.
const (
	KeyTitle   = "title"
	KeyContent = "content"
	KeyProps   = "props"
	KeyCreated = "created"
	KeyEdited  = "edited"
)

var optionKeys = []string{KeyTitle, KeyContent, KeyProps, KeyCreated, KeyEdited}

// Options decides which rows of a database are removed.
type Options struct {
	Title   bool     // require an empty title
	Content bool     // require no child blocks
	Props   []string // require these properties to be empty
	Created *int64   // minimum seconds since creation
	Edited  *int64   // minimum seconds since last edit
}

func DefaultOptions() Options {
	return Options{Title: true, Content: false, Props: []string{}}
}

// Merge applies the recognised keys of override on top of base. A value of
// the wrong type does not fall back to base but to the default for its key.
// Unrecognised keys are ignored.
func Merge(base Options, override map[string]any) Options {
	def := DefaultOptions()
	out := base
	out.Props = slices.Clone(base.Props)
	if out.Props == nil {
		out.Props = []string{}
	}

	for _, key := range optionKeys {
		raw, ok := override[key]
		if !ok {
			continue
		}
		switch key {
		case KeyTitle:
			out.Title = boolOr(raw, def.Title)
		case KeyContent:
			out.Content = boolOr(raw, def.Content)
		case KeyProps:
			if props, ok := toProps(raw); ok {
				out.Props = props
			} else {
				out.Props = []string{}
			}
		case KeyCreated:
			out.Created, _ = toSeconds(raw)
		case KeyEdited:
			out.Edited, _ = toSeconds(raw)
		}
	}
	return out
}

// ValidationError names an option whose value has the wrong type.
type ValidationError struct {
	Key   string
	Value any
	Want  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("option %q: %v (%T) is not %s, using default", e.Key, e.Value, e.Value, e.Want)
}

// Validate reports every recognised key in raw whose value Merge would
// replace with a default.
func Validate(raw map[string]any) error {
	var errs []error
	for _, key := range optionKeys {
		v, ok := raw[key]
		if !ok {
			continue
		}
		switch key {
		case KeyTitle, KeyContent:
			if _, ok := v.(bool); !ok {
				errs = append(errs, &ValidationError{Key: key, Value: v, Want: "a boolean"})
			}
		case KeyProps:
			if _, ok := toProps(v); !ok {
				errs = append(errs, &ValidationError{Key: key, Value: v, Want: "a list"})
			}
		case KeyCreated, KeyEdited:
			if _, ok := toSeconds(v); !ok {
				errs = append(errs, &ValidationError{Key: key, Value: v, Want: "an integer"})
			}
		}
	}
	return errors.Join(errs...)
}

func boolOr(raw any, def bool) bool {
	if b, ok := raw.(bool); ok {
		return b
	}
	return def
}

// toProps accepts any list. Non-string entries can never match a
// property name and are dropped.
func toProps(raw any) ([]string, bool) {
	switch l := raw.(type) {
	case []string:
		return slices.Clone(l), true
	case []any:
		props := make([]string, 0, len(l))
		for _, item := range l {
			if s, ok := item.(string); ok {
				props = append(props, s)
			}
		}
		return props, true
	default:
		return nil, false
	}
}

// toSeconds accepts nil and integer values that fit in an int64. The bool reports whether raw
// was valid; nil is valid and yields no threshold.
func toSeconds(raw any) (*int64, bool) {
	var n int64
	switch v := raw.(type) {
	case nil:
		return nil, true
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, false
		}
		n = int64(v)
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint64:
		if v > math.MaxInt64 {
			return nil, false
		}
		n = int64(v)
	default:
		return nil, false
	}
	return &n, true
}
