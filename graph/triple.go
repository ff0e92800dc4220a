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

// Package graph defines the data model shared by the RDF and property graph sides:
// triples over interned resources, literals and tagged property values.
package graph

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/voc"
)

// Literal is an RDF literal: a lexical value with an optional datatype or language tag.
type Literal struct {
	Lexical  string
	Datatype string
	Lang     string
}

func (l Literal) String() string {
	s := strconv.Quote(l.Lexical)
	if l.Lang != "" {
		return s + "@" + l.Lang
	} else if l.Datatype != "" {
		return s + "^^<" + l.Datatype + ">"
	}
	return s
}

// Value converts the literal to a tagged property value.
//
// Known XML Schema datatypes are parsed to their native representation.
// Literals with an unknown datatype, or with a lexical form that does not
// parse, become Raw values that keep the datatype.
func (l Literal) Value() Value {
	if l.Lang != "" || l.Datatype == "" || l.Datatype == voc.XSDString {
		return String(l.Lexical)
	}
	ts := quad.TypedString{Value: quad.String(l.Lexical), Type: quad.IRI(l.Datatype)}
	v, err := ts.ParseValue()
	if err != nil {
		return Raw(l.Lexical, l.Datatype)
	}
	switch v := v.(type) {
	case quad.Int:
		return Int(int64(v))
	case quad.Float:
		return Float(float64(v))
	case quad.Bool:
		return Bool(bool(v))
	case quad.Time:
		return Time(time.Time(v))
	case quad.String:
		return String(string(v))
	}
	return Raw(l.Lexical, l.Datatype)
}

// LiteralOf converts a property value back to an RDF literal.
func LiteralOf(v Value) Literal {
	switch v.Kind() {
	case KindString:
		return Literal{Lexical: v.String()}
	case KindInteger:
		return Literal{Lexical: v.String(), Datatype: voc.XSDInteger}
	case KindFloat:
		return Literal{Lexical: v.String(), Datatype: voc.XSDDouble}
	case KindBoolean:
		return Literal{Lexical: v.String(), Datatype: voc.XSDBoolean}
	case KindDateTime:
		return Literal{Lexical: v.String(), Datatype: voc.XSDDateTime}
	case KindRaw:
		return Literal{Lexical: v.String(), Datatype: v.Datatype()}
	}
	return Literal{Lexical: v.String()}
}

// Term is the object of a triple: either a resource or a literal.
type Term struct {
	ref     refs.Handle
	lit     Literal
	literal bool
}

// Resource makes a resource term.
func Resource(h refs.Handle) Term { return Term{ref: h} }

// LiteralTerm makes a literal term.
func LiteralTerm(l Literal) Term { return Term{lit: l, literal: true} }

// IsLiteral reports whether the term holds a literal.
func (t Term) IsLiteral() bool { return t.literal }

// Handle returns the resource handle of a resource term.
func (t Term) Handle() (refs.Handle, bool) { return t.ref, !t.literal }

// Literal returns the literal of a literal term.
func (t Term) Literal() (Literal, bool) { return t.lit, t.literal }

func (t Term) String() string {
	if t.literal {
		return t.lit.String()
	}
	return t.ref.String()
}

// Triple is an RDF statement. Triples are comparable and immutable.
type Triple struct {
	Subject   refs.Handle
	Predicate refs.Handle
	Object    Term
}

// Get returns the resource in a given direction. The object direction
// yields no handle for literal objects; the label direction is never set.
func (t Triple) Get(d quad.Direction) (refs.Handle, bool) {
	switch d {
	case quad.Subject:
		return t.Subject, true
	case quad.Predicate:
		return t.Predicate, true
	case quad.Object:
		return t.Object.Handle()
	}
	return 0, false
}

func (t Triple) String() string {
	return fmt.Sprintf("%v -- %v -> %v", t.Subject, t.Predicate, t.Object)
}

// Make interns the identifiers of a triple with a resource object.
func Make(tb *refs.Table, s, p, o string) Triple {
	return Triple{Subject: tb.Intern(s), Predicate: tb.Intern(p), Object: Resource(tb.Intern(o))}
}

// MakeLiteral interns the identifiers of a triple with a literal object.
func MakeLiteral(tb *refs.Table, s, p string, o Literal) Triple {
	return Triple{Subject: tb.Intern(s), Predicate: tb.Intern(p), Object: LiteralTerm(o)}
}
