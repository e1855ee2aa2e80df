package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the concrete type of a decoded JSON value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is one decoded JSON value. Objects keep their key order, so the
// renderer can emit mapping sections in exactly the order the backend
// produced them.
type Value struct {
	kind Kind
	str  string
	num  json.Number
	b    bool
	arr  []Value
	obj  *orderedmap.OrderedMap[string, Value]
}

// Decode parses raw JSON into a Value tree.
func Decode(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("decode analysis json: %w", err)
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			om := orderedmap.New[string, Value]()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("unexpected object key token %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				om.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return Value{kind: KindObject, obj: om}, nil
		case '[':
			var arr []Value
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return Value{kind: KindArray, arr: arr}, nil
		}
		return Value{}, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return Value{kind: KindString, str: t}, nil
	case json.Number:
		return Value{kind: KindNumber, num: t}, nil
	case bool:
		return Value{kind: KindBool, b: t}, nil
	case nil:
		return Value{kind: KindNull}, nil
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value counts as "not found" for the resolver:
// null, empty string, empty array or empty object.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindArray:
		return len(v.arr) == 0
	case KindObject:
		return v.obj == nil || v.obj.Len() == 0
	}
	return false
}

// Get returns the member of an object value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject || v.obj == nil {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Items returns the elements of an array value.
func (v Value) Items() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Keys returns object keys in their original order.
func (v Value) Keys() []string {
	if v.kind != KindObject || v.obj == nil {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Text coerces any value to a display string. Scalars convert directly,
// arrays join their items with ", ", objects join "key: value" pairs.
// Mismatched types never fail, they degrade to this conversion.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindArray:
		parts := make([]string, 0, len(v.arr))
		for _, item := range v.arr {
			if s := item.Text(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case KindObject:
		var parts []string
		for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
			parts = append(parts, pair.Key+": "+pair.Value.Text())
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

// Strings coerces an array (or a single scalar) to a string slice,
// dropping entries that stringify to nothing.
func (v Value) Strings() []string {
	var out []string
	switch v.kind {
	case KindArray:
		for _, item := range v.arr {
			if s := strings.TrimSpace(item.Text()); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(v.Text()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
