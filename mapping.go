package lpgrdf

import (
	"strings"

	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/inference"
	"github.com/cayleygraph/lpgrdf/schema"
	"github.com/cayleygraph/lpgrdf/voc"
)

type predicates struct {
	inference.Predicates
	rdfType refs.Handle
}

func internPredicates(tb *refs.Table) predicates {
	return predicates{
		Predicates: inference.InternPredicates(tb),
		rdfType:    tb.Intern(voc.RDFType),
	}
}

// mapper applies triples to a property graph.
type mapper struct {
	namer
	opts  Options
	store *lpg.Store
	vocab *vocabulary // nil for previews
	preds predicates
}

func (m *mapper) record(h refs.Handle, kind inference.Relation, name string) {
	if m.vocab != nil {
		m.vocab.record(h, kind, name)
	}
}

func (m *mapper) resourceNode(h refs.Handle, labels ...string) (lpg.NodeID, error) {
	iri, err := m.ids.Resolve(h)
	if err != nil {
		return 0, err
	}
	if m.opts.ResourceLabel != "" {
		labels = append([]string{m.opts.ResourceLabel}, labels...)
	}
	var props lpg.Properties
	if m.opts.URIProperty != "" {
		props = lpg.Properties{m.opts.URIProperty: graph.String(iri)}
	}
	return m.store.UpsertNode(h, labels, props), nil
}

// value converts a literal to a property value. It returns false for
// literals dropped by the language filter.
func (m *mapper) value(l graph.Literal) (graph.Value, bool) {
	if l.Lang != "" {
		if m.opts.LanguageFilter != "" && !strings.EqualFold(l.Lang, m.opts.LanguageFilter) {
			return graph.Value{}, false
		}
		if m.opts.KeepLangTag {
			return graph.String(l.Lexical + "@" + l.Lang), true
		}
		return graph.String(l.Lexical), true
	}
	v := l.Value()
	if v.Kind() == graph.KindRaw && !m.opts.KeepCustomDataTypes {
		return graph.String(l.Lexical), true
	}
	return v, true
}

func (m *mapper) nameEdge(e inference.Edge) error {
	kind := relationKind(e.Kind)
	for _, h := range []refs.Handle{e.Child, e.Parent} {
		name, err := m.name(h, kind)
		if err != nil {
			return err
		}
		m.record(h, e.Kind, name)
	}
	return nil
}

func (m *mapper) applyType(s, class refs.Handle) error {
	label, err := m.name(class, schema.Label)
	if err != nil {
		return err
	}
	m.record(class, inference.SubClassOf, label)
	if m.opts.RDFTypes != TypesAsNodes {
		if _, err = m.resourceNode(s, label); err != nil {
			return err
		}
	}
	if m.opts.RDFTypes == TypesAsLabels {
		return nil
	}
	if _, err = m.resourceNode(s); err != nil {
		return err
	}
	if _, err = m.resourceNode(class); err != nil {
		return err
	}
	m.store.UpsertRelationship(m.opts.TypeRelationship, m.preds.rdfType, s, class, nil)
	return nil
}

// apply maps one triple. It returns false if the triple carried a literal
// that was filtered out.
func (m *mapper) apply(t graph.Triple) (bool, error) {
	o, isRes := t.Object.Handle()
	if e, ok := m.preds.EdgeOf(t); ok {
		if err := m.nameEdge(e); err != nil {
			return true, err
		}
		if !m.opts.HierarchyRelationships {
			return true, nil
		}
	} else if isRes && t.Predicate == m.preds.rdfType {
		return true, m.applyType(t.Subject, o)
	}
	if isRes {
		typ, err := m.name(t.Predicate, schema.RelationshipType)
		if err != nil {
			return true, err
		}
		m.record(t.Predicate, inference.SubPropertyOf, typ)
		if _, err = m.resourceNode(t.Subject); err != nil {
			return true, err
		}
		if _, err = m.resourceNode(o); err != nil {
			return true, err
		}
		m.store.UpsertRelationship(typ, t.Predicate, t.Subject, o, nil)
		return true, nil
	}
	l, _ := t.Object.Literal()
	v, ok := m.value(l)
	if !ok {
		return false, nil
	}
	key, err := m.name(t.Predicate, schema.PropertyKey)
	if err != nil {
		return true, err
	}
	id, err := m.resourceNode(t.Subject)
	if err != nil {
		return true, err
	}
	if m.opts.multival(key) {
		return true, m.store.AppendProperty(id, key, v)
	}
	return true, m.store.SetProperty(id, key, v)
}
