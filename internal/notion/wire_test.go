package notion

import (
	"encoding/json"
	"testing"
)

func TestDecodeProperty(t *testing.T) {
	cases := []struct {
		name      string
		typ       string
		raw       string
		wantKind  ValueKind
		wantEmpty bool
	}{
		{"title", "title", `[["Hello "],["world",[["b"]]]]`, KindText, false},
		{"blank text", "text", `[["   "]]`, KindText, true},
		{"missing text", "text", ``, KindText, true},
		{"select", "select", `[["Done"]]`, KindText, false},
		{"missing select", "select", ``, KindNull, true},
		{"multi select", "multi_select", `[["a,b"]]`, KindList, false},
		{"missing multi select", "multi_select", ``, KindList, true},
		{"person", "person", `[["‣",[["u","6f0c0b1e-0000-0000-0000-000000000000"]]]]`, KindList, false},
		{"number zero", "number", `[["0"]]`, KindNumber, false},
		{"missing number", "number", ``, KindNull, true},
		{"unchecked", "checkbox", ``, KindBool, false},
		{"checked", "checkbox", `[["Yes"]]`, KindBool, false},
		{"date", "date", `[["‣",[["d",{"type":"date","start_date":"2024-01-01"}]]]]`, KindOther, false},
		{"missing date", "date", ``, KindNull, true},
		{"created time", "created_time", ``, KindOther, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := decodeProperty(tc.typ, json.RawMessage(tc.raw))
			if v.Kind != tc.wantKind {
				t.Errorf("Kind = %v, want %v", v.Kind, tc.wantKind)
			}
			if v.IsEmpty() != tc.wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", v.IsEmpty(), tc.wantEmpty)
			}
		})
	}
}

func TestDecodeProperty_Values(t *testing.T) {
	if v := decodeProperty("title", json.RawMessage(`[["Hello "],["world",[["b"]]]]`)); v.Text != "Hello world" {
		t.Errorf("title Text = %q, want %q", v.Text, "Hello world")
	}
	v := decodeProperty("multi_select", json.RawMessage(`[["a, b"]]`))
	if len(v.List) != 2 || v.List[0] != "a" || v.List[1] != "b" {
		t.Errorf("multi_select List = %v, want [a b]", v.List)
	}
	v = decodeProperty("file", json.RawMessage(`[["a.pdf",[["a","https://x/a.pdf"]]],[","],["b.png",[["a","https://x/b.png"]]]]`))
	if len(v.List) != 2 || v.List[0] != "a.pdf" || v.List[1] != "b.png" {
		t.Errorf("file List = %v, want [a.pdf b.png]", v.List)
	}
	if v := decodeProperty("number", json.RawMessage(`[["12.5"]]`)); v.Number != 12.5 {
		t.Errorf("number = %v, want 12.5", v.Number)
	}
	if v := decodeProperty("checkbox", json.RawMessage(`[["Yes"]]`)); !v.Bool {
		t.Error("checkbox Yes should decode to true")
	}
}

func TestRecord_UnmarshalEnvelopes(t *testing.T) {
	var flat, nested record
	if err := json.Unmarshal([]byte(`{"role":"editor","value":{"id":"x","type":"page"}}`), &flat); err != nil {
		t.Fatalf("flat record: %v", err)
	}
	if err := json.Unmarshal([]byte(`{"spaceId":"s","value":{"role":"reader","value":{"id":"x","type":"page"}}}`), &nested); err != nil {
		t.Fatalf("nested record: %v", err)
	}
	if flat.Role != "editor" {
		t.Errorf("flat Role = %q, want editor", flat.Role)
	}
	if nested.Role != "reader" {
		t.Errorf("nested Role = %q, want reader", nested.Role)
	}

	var v blockValue
	if err := json.Unmarshal(nested.Value, &v); err != nil || v.Type != "page" {
		t.Errorf("nested Value type = %q (err %v), want page", v.Type, err)
	}

	var missing record
	if err := json.Unmarshal([]byte(`{"role":"none","value":null}`), &missing); err != nil {
		t.Fatalf("null record: %v", err)
	}
	if missing.Value != nil {
		t.Errorf("null Value = %s, want nil", missing.Value)
	}
}

func TestValue_IsEmpty(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NullValue(), true},
		{TextValue(""), true},
		{TextValue(" \t\n"), true},
		{TextValue("x"), false},
		{ListValue(), true},
		{ListValue("a"), false},
		{NumberValue(0), false},
		{BoolValue(false), false},
		{OtherValue(map[string]any{}), false},
	}
	for _, tc := range cases {
		if got := tc.v.IsEmpty(); got != tc.want {
			t.Errorf("%v value IsEmpty() = %v, want %v", tc.v.Kind, got, tc.want)
		}
	}
}

// Unset text-like properties decode to "" and count as empty, so a props
// filter on a blank url, email or text column matches.
func TestEmptyTextIsEmpty(t *testing.T) {
	if !TextValue("").IsEmpty() {
		t.Error(`TextValue("").IsEmpty() = false, want true`)
	}
	for _, typ := range []string{"text", "url", "email", "phone_number"} {
		v := decodeProperty(typ, nil)
		if v.Kind != KindText || v.Text != "" {
			t.Errorf("%s: unset value = %+v, want empty text", typ, v)
		}
		if !v.IsEmpty() {
			t.Errorf("%s: unset value should be empty", typ)
		}
	}
}
