package graph

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/lpgrdf/graph/refs"
)

func resourceID(v quad.Value) (string, bool) {
	switch v := v.(type) {
	case quad.IRI:
		return string(v), true
	case quad.BNode:
		return refs.BlankPrefix + string(v), true
	}
	return "", false
}

func literalOf(v quad.Value) (Literal, bool) {
	switch v := v.(type) {
	case quad.String:
		return Literal{Lexical: string(v)}, true
	case quad.LangString:
		return Literal{Lexical: string(v.Value), Lang: v.Lang}, true
	case quad.TypedString:
		return Literal{Lexical: string(v.Value), Datatype: string(v.Type)}, true
	case quad.TypedStringer:
		ts := v.TypedString()
		return Literal{Lexical: string(ts.Value), Datatype: string(ts.Type)}, true
	}
	return Literal{}, false
}

// FromQuad interns the terms of a quad and returns it as a triple.
// The graph label is ignored.
func FromQuad(tb *refs.Table, q quad.Quad) (Triple, error) {
	s, ok := resourceID(q.Subject)
	if !ok {
		return Triple{}, fmt.Errorf("invalid subject %v in %v", q.Subject, q)
	}
	p, ok := q.Predicate.(quad.IRI)
	if !ok {
		return Triple{}, fmt.Errorf("invalid predicate %v in %v", q.Predicate, q)
	}
	if o, ok := resourceID(q.Object); ok {
		return Make(tb, s, string(p), o), nil
	}
	if l, ok := literalOf(q.Object); ok {
		return MakeLiteral(tb, s, string(p), l), nil
	}
	return Triple{}, fmt.Errorf("invalid object %v in %v", q.Object, q)
}

// ResourceValue converts an identifier to an IRI or a blank node.
func ResourceValue(id string) quad.Value {
	if refs.IsBlank(id) {
		return quad.BNode(strings.TrimPrefix(id, refs.BlankPrefix))
	}
	return quad.IRI(id)
}

// Quad converts the literal to a quad value.
func (l Literal) Quad() quad.Value {
	switch {
	case l.Lang != "":
		return quad.LangString{Value: quad.String(l.Lexical), Lang: l.Lang}
	case l.Datatype != "":
		return quad.TypedString{Value: quad.String(l.Lexical), Type: quad.IRI(l.Datatype)}
	}
	return quad.String(l.Lexical)
}

// ToQuad resolves the handles of a triple and returns it as a quad.
func ToQuad(n refs.Namer, t Triple) (quad.Quad, error) {
	s, err := n.Resolve(t.Subject)
	if err != nil {
		return quad.Quad{}, err
	}
	p, err := n.Resolve(t.Predicate)
	if err != nil {
		return quad.Quad{}, err
	}
	q := quad.Quad{Subject: ResourceValue(s), Predicate: quad.IRI(p)}
	if h, ok := t.Object.Handle(); ok {
		o, err := n.Resolve(h)
		if err != nil {
			return quad.Quad{}, err
		}
		q.Object = ResourceValue(o)
	} else {
		l, _ := t.Object.Literal()
		q.Object = l.Quad()
	}
	return q, nil
}
