package crmkv

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind is the type tag of a Value.
type Kind string

const (
	KindUnset     Kind = ""
	KindString    Kind = "string"
	KindBool      Kind = "boolean"
	KindTime      Kind = "datetime"
	KindOption    Kind = "optionset"
	KindReference Kind = "reference"
)

// timeLayout is fixed width, so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Reference points at another record.
type Reference struct {
	Entity string    `json:"entity"`
	ID     uuid.UUID `json:"id"`
}

// Value is a typed field value. The zero Value is unset.
type Value struct {
	kind Kind
	s    string
	b    bool
	t    time.Time
	o    int
	ref  Reference
}

func Unset() Value {
	return Value{}
}

func String(s string) Value {
	return Value{kind: KindString, s: s}
}

func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

func Time(t time.Time) Value {
	return Value{kind: KindTime, t: t.UTC()}
}

// Option is a numeric option set code.
func Option(code int) Value {
	return Value{kind: KindOption, o: code}
}

func Ref(entity string, id uuid.UUID) Value {
	return Value{kind: KindReference, ref: Reference{Entity: entity, ID: id}}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsUnset() bool {
	return v.kind == KindUnset
}

// AsString returns the string, or ok=false if the value is not a string.
func (v Value) AsString() (s string, ok bool) {
	return v.s, v.kind == KindString
}

func (v Value) AsBool() (b bool, ok bool) {
	return v.b, v.kind == KindBool
}

func (v Value) AsTime() (t time.Time, ok bool) {
	return v.t, v.kind == KindTime
}

func (v Value) AsOption() (code int, ok bool) {
	return v.o, v.kind == KindOption
}

func (v Value) AsReference() (ref Reference, ok bool) {
	return v.ref, v.kind == KindReference
}

func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == other.s
	case KindBool:
		return v.b == other.b
	case KindTime:
		return v.t.Equal(other.t)
	case KindOption:
		return v.o == other.o
	case KindReference:
		return v.ref == other.ref
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindTime:
		return v.t.Format(timeLayout)
	case KindOption:
		return fmt.Sprintf("%d", v.o)
	case KindReference:
		return fmt.Sprintf("%s(%s)", v.ref.Entity, v.ref.ID)
	}
	return "<unset>"
}

func (v Value) payload() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindTime:
		return v.t.Format(timeLayout)
	case KindOption:
		return v.o
	case KindReference:
		return v.ref
	}
	return nil
}

type jsonValue struct {
	Type  Kind            `json:"type"`
	Value json.RawMessage `json:"value"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindUnset {
		return []byte("null"), nil
	}
	payload, err := json.Marshal(v.payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonValue{Type: v.kind, Value: payload})
}

func (v *Value) UnmarshalJSON(data []byte) (err error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Value{}
		return nil
	}
	var jv jsonValue
	if err = json.Unmarshal(data, &jv); err != nil {
		return err
	}
	if len(jv.Value) == 0 || bytes.Equal(jv.Value, []byte("null")) {
		*v = Value{}
		return nil
	}
	switch jv.Type {
	case KindString:
		var s string
		err = json.Unmarshal(jv.Value, &s)
		*v = String(s)
	case KindBool:
		var b bool
		err = json.Unmarshal(jv.Value, &b)
		*v = Bool(b)
	case KindTime:
		var s string
		if err = json.Unmarshal(jv.Value, &s); err != nil {
			break
		}
		var t time.Time
		t, err = time.Parse(time.RFC3339Nano, s)
		*v = Time(t)
	case KindOption:
		var o int
		err = json.Unmarshal(jv.Value, &o)
		*v = Option(o)
	case KindReference:
		var ref Reference
		err = json.Unmarshal(jv.Value, &ref)
		*v = Ref(ref.Entity, ref.ID)
	default:
		return fmt.Errorf("value: unknown type %q", jv.Type)
	}
	if err != nil {
		return fmt.Errorf("value: %s: %w", jv.Type, err)
	}
	return nil
}

// ParseValue parses the text form of a value of the given kind. References are
// written as entity:id, and times as RFC 3339.
func ParseValue(kind Kind, s string) (v Value, err error) {
	switch kind {
	case KindString:
		return String(s), nil
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return v, fmt.Errorf("value: boolean: %w", err)
		}
		return Bool(b), nil
	case KindTime:
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return v, fmt.Errorf("value: datetime: %w", err)
		}
		return Time(t), nil
	case KindOption:
		code, err := strconv.Atoi(s)
		if err != nil {
			return v, fmt.Errorf("value: optionset: %w", err)
		}
		return Option(code), nil
	case KindReference:
		entity, idText, ok := strings.Cut(s, ":")
		if !ok {
			return v, fmt.Errorf("value: reference: expected entity:id, got %q", s)
		}
		id, err := uuid.Parse(idText)
		if err != nil {
			return v, fmt.Errorf("value: reference: %w", err)
		}
		return Ref(entity, id), nil
	}
	return v, fmt.Errorf("value: unknown type %q", kind)
}
