package example

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a JSON-shaped example: Leaf, Array, *Object or Null.
type Value interface {
	isValue()
}

// Leaf is a placeholder string such as {{STRING}} or A|B|C.
type Leaf string

// Array is an example list; the engine always emits one element.
type Array []Value

// Null stands for "no value", e.g. a union without variants.
type Null struct{}

// Field is a single key of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object keeps its keys in insertion order.
type Object struct {
	fields []Field
	index  map[string]int
}

func (Leaf) isValue()    {}
func (Array) isValue()   {}
func (Null) isValue()    {}
func (*Object) isValue() {}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{index: map[string]int{}}
}

// Set adds key or replaces its value in place.
func (o *Object) Set(key string, v Value) *Object {
	if i, ok := o.index[key]; ok {
		o.fields[i].Value = v
		return o
	}
	o.index[key] = len(o.fields)
	o.fields = append(o.fields, Field{Key: key, Value: v})
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.fields[i].Value, true
}

// Fields returns the fields in insertion order.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

func (o *Object) Len() int { return len(o.fields) }

// MarshalJSON writes the object compactly, keeping field order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		b, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (Null) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// Marshal pretty prints v: one object field per line indented by two
// spaces with `"key" : value`, arrays inline as `[ a, b ]`, and `{ }` / `[ ]`
// for empty containers. Only objects add an indent level.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v Value, level int) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Leaf:
		return writeString(buf, string(val))
	case Array:
		if len(val) == 0 {
			buf.WriteString("[ ]")
			return nil
		}
		buf.WriteString("[ ")
		for i, item := range val {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeValue(buf, item, level); err != nil {
				return err
			}
		}
		buf.WriteString(" ]")
	case *Object:
		if val == nil {
			buf.WriteString("null")
			return nil
		}
		if len(val.fields) == 0 {
			buf.WriteString("{ }")
			return nil
		}
		buf.WriteByte('{')
		for i, f := range val.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
			indent(buf, level+1)
			if err := writeString(buf, f.Key); err != nil {
				return err
			}
			buf.WriteString(" : ")
			if err := writeValue(buf, f.Value, level+1); err != nil {
				return err
			}
		}
		buf.WriteByte('\n')
		indent(buf, level)
		buf.WriteByte('}')
	default:
		return fmt.Errorf("example: unsupported value %T", v)
	}
	return nil
}

func indent(buf *bytes.Buffer, level int) {
	for i := 0; i < level; i++ {
		buf.WriteString("  ")
	}
}

// writeString quotes s without HTML escaping so placeholders like
// Optional<STRING> stay readable.
func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
