package notion

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

type pointer struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

type spacePointer struct {
	ID      string `json:"id"`
	SpaceID string `json:"spaceId,omitempty"`
}

type syncRequest struct {
	Pointer pointer `json:"pointer"`
	Version int     `json:"version"`
}

type syncRecordValuesRequest struct {
	Requests []syncRequest `json:"requests"`
}

type syncRecordValuesResponse struct {
	RecordMap recordMap `json:"recordMap"`
}

type recordMap struct {
	Block      map[string]record `json:"block"`
	Collection map[string]record `json:"collection"`
}

// record is one entry of a record map. Newer API versions wrap the pair in
// a second {"value": {"role", "value"}} envelope; both shapes are accepted.
type record struct {
	Role  string
	Value json.RawMessage
}

func (r *record) UnmarshalJSON(data []byte) error {
	type pair struct {
		Role  string          `json:"role"`
		Value json.RawMessage `json:"value"`
	}
	var outer pair
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}
	var inner pair
	if len(outer.Value) > 0 && outer.Value[0] == '{' && json.Unmarshal(outer.Value, &inner) == nil &&
		inner.Role != "" && len(inner.Value) > 0 && inner.Value[0] == '{' {
		outer = inner
	}
	r.Role = outer.Role
	r.Value = outer.Value
	if string(r.Value) == "null" {
		r.Value = nil
	}
	return nil
}

type blockValue struct {
	ID             string                     `json:"id"`
	Type           string                     `json:"type"`
	Alive          bool                       `json:"alive"`
	SpaceID        string                     `json:"space_id"`
	CollectionID   string                     `json:"collection_id"`
	ViewIDs        []string                   `json:"view_ids"`
	Content        []string                   `json:"content"`
	Properties     map[string]json.RawMessage `json:"properties"`
	CreatedTime    int64                      `json:"created_time"`
	LastEditedTime int64                      `json:"last_edited_time"`
	Format         struct {
		CollectionPointer struct {
			ID string `json:"id"`
		} `json:"collection_pointer"`
	} `json:"format"`
}

type schemaEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type collectionValue struct {
	ID     string                 `json:"id"`
	Schema map[string]schemaEntry `json:"schema"`
}

func (c collectionValue) properties() []SchemaProperty {
	props := make([]SchemaProperty, 0, len(c.Schema))
	for id, e := range c.Schema {
		props = append(props, SchemaProperty{ID: id, Name: e.Name, Type: e.Type})
	}
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	return props
}

type queryReducer struct {
	Type  string `json:"type"`
	Limit int    `json:"limit"`
}

type queryLoader struct {
	Type         string                  `json:"type"`
	Reducers     map[string]queryReducer `json:"reducers"`
	SearchQuery  string                  `json:"searchQuery"`
	UserTimeZone string                  `json:"userTimeZone"`
}

type queryCollectionRequest struct {
	Collection     spacePointer `json:"collection"`
	CollectionView spacePointer `json:"collectionView"`
	Loader         queryLoader  `json:"loader"`
}

type queryCollectionResponse struct {
	Result struct {
		BlockIDs       []string `json:"blockIds"`
		ReducerResults struct {
			CollectionGroupResults struct {
				BlockIDs []string `json:"blockIds"`
				HasMore  bool     `json:"hasMore"`
			} `json:"collection_group_results"`
		} `json:"reducerResults"`
	} `json:"result"`
	RecordMap recordMap `json:"recordMap"`
}

type operation struct {
	ID      string         `json:"id"`
	Table   string         `json:"table"`
	Path    []string       `json:"path"`
	Command string         `json:"command"`
	Args    map[string]any `json:"args"`
}

type transactionRequest struct {
	Operations []operation `json:"operations"`
}

func decodeRow(id string, v blockValue, schema []SchemaProperty) Row {
	row := Row{
		ID:             id,
		Alive:          v.Alive,
		Title:          plainText(segments(v.Properties["title"])),
		Children:       v.Content,
		Schema:         schema,
		Properties:     make(map[string]Value, len(schema)),
		CreatedTime:    v.CreatedTime,
		LastEditedTime: v.LastEditedTime,
	}
	for _, p := range schema {
		row.Properties[p.ID] = decodeProperty(p.Type, v.Properties[p.ID])
	}
	return row
}

// decodeProperty maps a raw rich-text property onto the value shape its
// schema type produces.
func decodeProperty(typ string, raw json.RawMessage) Value {
	segs := segments(raw)
	switch typ {
	case "title", "text":
		return TextValue(plainText(segs))
	case "url", "email", "phone_number":
		return TextValue(firstText(segs))
	case "select", "status":
		if len(segs) == 0 {
			return NullValue()
		}
		return TextValue(firstText(segs))
	case "multi_select":
		if len(segs) == 0 {
			return ListValue()
		}
		var items []string
		for _, s := range strings.Split(firstText(segs), ",") {
			items = append(items, strings.TrimSpace(s))
		}
		return ListValue(items...)
	case "person", "relation", "file":
		return ListValue(listItems(segs)...)
	case "number":
		if len(segs) == 0 {
			return NullValue()
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(firstText(segs)), 64)
		if err != nil {
			return OtherValue(firstText(segs))
		}
		return NumberValue(n)
	case "checkbox":
		return BoolValue(firstText(segs) == "Yes")
	case "created_time", "last_edited_time", "created_by", "last_edited_by":
		return OtherValue(typ)
	default:
		if len(segs) == 0 {
			return NullValue()
		}
		return OtherValue(segs)
	}
}

// segments decodes the [[text, annotations?], ...] rich text format.
func segments(raw json.RawMessage) [][]any {
	if len(raw) == 0 {
		return nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	segs := make([][]any, 0, len(list))
	for _, item := range list {
		if seg, ok := item.([]any); ok && len(seg) > 0 {
			segs = append(segs, seg)
		}
	}
	return segs
}

func segmentText(seg []any) string {
	s, _ := seg[0].(string)
	return s
}

func plainText(segs [][]any) string {
	var b strings.Builder
	for _, seg := range segs {
		b.WriteString(segmentText(seg))
	}
	return b.String()
}

func firstText(segs [][]any) string {
	if len(segs) == 0 {
		return ""
	}
	return segmentText(segs[0])
}

// listItems returns the referenced ids (users, pages) or file names of a
// list-shaped property, skipping the "," separators.
func listItems(segs [][]any) []string {
	var items []string
	for _, seg := range segs {
		text := segmentText(seg)
		if text == "," {
			continue
		}
		if ref := annotationRef(seg); ref != "" {
			items = append(items, ref)
			continue
		}
		items = append(items, text)
	}
	return items
}

func annotationRef(seg []any) string {
	if len(seg) < 2 {
		return ""
	}
	anns, ok := seg[1].([]any)
	if !ok {
		return ""
	}
	for _, a := range anns {
		ann, ok := a.([]any)
		if !ok || len(ann) < 2 {
			continue
		}
		kind, _ := ann[0].(string)
		if kind == "u" || kind == "p" {
			if id, ok := ann[1].(string); ok {
				return id
			}
		}
	}
	return ""
}
