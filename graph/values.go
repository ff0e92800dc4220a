// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graph

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Kind is the tag of a property Value.
type Kind uint8

const (
	KindRaw Kind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindDateTime
	KindArray
)

var kindNames = [...]string{
	KindRaw:      "raw",
	KindString:   "string",
	KindInteger:  "integer",
	KindFloat:    "float",
	KindBoolean:  "boolean",
	KindDateTime: "datetime",
	KindArray:    "array",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

func kindByName(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Value is a property value of a node or a relationship.
//
// It is either a scalar (string, integer, float, boolean, date-time or a raw
// lexical form with its datatype) or an array of scalars.
type Value struct {
	kind Kind
	s    string // string value, or the lexical form of a raw value
	dt   string // datatype IRI of a raw value
	i    int64
	f    float64
	b    bool
	t    time.Time
	arr  []Value
}

func String(s string) Value    { return Value{kind: KindString, s: s} }
func Int(i int64) Value        { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value    { return Value{kind: KindFloat, f: f} }
func Bool(b bool) Value        { return Value{kind: KindBoolean, b: b} }
func Time(t time.Time) Value   { return Value{kind: KindDateTime, t: t} }
func Raw(lex, dt string) Value { return Value{kind: KindRaw, s: lex, dt: dt} }

// Array builds an array value. Nested arrays are flattened.
func Array(vals ...Value) Value {
	arr := make([]Value, 0, len(vals))
	for _, v := range vals {
		if v.kind == KindArray {
			arr = append(arr, v.arr...)
		} else {
			arr = append(arr, v)
		}
	}
	return Value{kind: KindArray, arr: arr}
}

// Kind returns the value tag.
func (v Value) Kind() Kind { return v.kind }

// IsArray reports whether v holds multiple values.
func (v Value) IsArray() bool { return v.kind == KindArray }

// Datatype returns the datatype IRI of a raw value.
func (v Value) Datatype() string { return v.dt }

// Values returns array elements, or v itself for a scalar.
func (v Value) Values() []Value {
	if v.kind == KindArray {
		out := make([]Value, len(v.arr))
		copy(out, v.arr)
		return out
	}
	return []Value{v}
}

// Native returns the Go representation of the value.
func (v Value) Native() interface{} {
	switch v.kind {
	case KindString, KindRaw:
		return v.s
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	case KindDateTime:
		return v.t
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}
		return out
	}
	return nil
}

// String returns the lexical form of the value.
func (v Value) String() string {
	switch v.kind {
	case KindString, KindRaw:
		return v.s
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindDateTime:
		return v.t.Format(time.RFC3339Nano)
	case KindArray:
		return fmt.Sprint(v.Native())
	}
	return ""
}

// Equal reports whether two values have the same kind and content.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindRaw:
		return v.s == o.s && v.dt == o.dt
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBoolean:
		return v.b == o.b
	case KindDateTime:
		return v.t.Equal(o.t)
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Contains reports whether v equals e or, for arrays, holds an element equal to e.
func (v Value) Contains(e Value) bool {
	if v.kind != KindArray {
		return v.Equal(e)
	}
	for _, x := range v.arr {
		if x.Equal(e) {
			return true
		}
	}
	return false
}

// Append adds e to v, turning v into an array. Values already present are skipped.
func (v Value) Append(e Value) Value {
	if v.Contains(e) {
		return v
	}
	return Array(v, e)
}

type jsonValue struct {
	Type     string          `json:"type"`
	Value    json.RawMessage `json:"value"`
	Datatype string          `json:"datatype,omitempty"`
}

// MarshalJSON encodes the value together with its kind, so it can be decoded losslessly.
func (v Value) MarshalJSON() ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch v.kind {
	case KindArray:
		raw, err = json.Marshal(v.arr)
	case KindDateTime:
		raw, err = json.Marshal(v.t.Format(time.RFC3339Nano))
	default:
		raw, err = json.Marshal(v.Native())
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(jsonValue{Type: v.kind.String(), Value: raw, Datatype: v.dt})
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var jv jsonValue
	if err := json.Unmarshal(data, &jv); err != nil {
		return err
	}
	k, ok := kindByName(jv.Type)
	if !ok {
		return fmt.Errorf("unknown value type %q", jv.Type)
	}
	out := Value{kind: k, dt: jv.Datatype}
	var err error
	switch k {
	case KindString, KindRaw:
		err = json.Unmarshal(jv.Value, &out.s)
	case KindInteger:
		err = json.Unmarshal(jv.Value, &out.i)
	case KindFloat:
		err = json.Unmarshal(jv.Value, &out.f)
	case KindBoolean:
		err = json.Unmarshal(jv.Value, &out.b)
	case KindDateTime:
		var s string
		if err = json.Unmarshal(jv.Value, &s); err == nil {
			out.t, err = time.Parse(time.RFC3339Nano, s)
		}
	case KindArray:
		err = json.Unmarshal(jv.Value, &out.arr)
	}
	if err != nil {
		return fmt.Errorf("cannot decode %s value: %v", k, err)
	}
	*v = out
	return nil
}
