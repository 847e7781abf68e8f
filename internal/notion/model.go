package notion

import (
	"strings"
	"time"
)

// Block is a resolved page or block record together with the caller's role.
type Block struct {
	ID           string
	Type         string
	Role         string
	SpaceID      string
	CollectionID string
	ViewIDs      []string
}

// IsCollection reports whether the block is backed by a collection
// ("collection_view" or "collection_view_page").
func (b *Block) IsCollection() bool {
	return strings.Contains(b.Type, "collection")
}

// SchemaProperty is one column of a collection schema.
type SchemaProperty struct {
	ID   string
	Name string
	Type string
}

// Row is a single collection row as loaded from the record map.
type Row struct {
	ID             string
	Alive          bool
	Title          string
	Children       []string
	Schema         []SchemaProperty
	Properties     map[string]Value // keyed by SchemaProperty.ID
	CreatedTime    int64            // ms since epoch
	LastEditedTime int64            // ms since epoch
}

// Property returns the decoded value of a schema property. Properties the
// record does not carry decode as Null.
func (r Row) Property(id string) Value {
	if v, ok := r.Properties[id]; ok {
		return v
	}
	return Value{}
}

func (r Row) Created() time.Time    { return time.UnixMilli(r.CreatedTime) }
func (r Row) LastEdited() time.Time { return time.UnixMilli(r.LastEditedTime) }

// ValueKind enumerates the property value shapes the record model produces.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindText
	KindList
	KindNumber
	KindBool
	KindOther
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "other"
	}
}

// Value is a decoded property value.
type Value struct {
	Kind   ValueKind
	Text   string
	List   []string
	Number float64
	Bool   bool
	Raw    any
}

func NullValue() Value            { return Value{Kind: KindNull} }
func TextValue(s string) Value    { return Value{Kind: KindText, Text: s} }
func ListValue(l ...string) Value { return Value{Kind: KindList, List: l} }
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Number: n} }
func BoolValue(b bool) Value      { return Value{Kind: KindBool, Bool: b} }
func OtherValue(raw any) Value    { return Value{Kind: KindOther, Raw: raw} }

// IsEmpty reports whether the value counts as empty for cleanup purposes.
// Numbers, booleans and structured values are never empty, so an unchecked
// checkbox or a zero number keeps a row alive.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindText:
		return strings.TrimSpace(v.Text) == ""
	case KindList:
		return len(v.List) == 0
	default:
		return false
	}
}
