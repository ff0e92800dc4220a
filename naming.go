package lpgrdf

import (
	"sync"

	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/inference"
	"github.com/cayleygraph/lpgrdf/schema"
	"github.com/cayleygraph/lpgrdf/voc"
)

// namer derives property graph names for resources: through the schema
// first, then by the VocabURIs policy.
type namer struct {
	policy  VocabURIs
	ids     refs.Namer
	schemas *schema.Registry
	schema  schema.ID
	ns      *voc.Namespaces
}

func (n namer) name(h refs.Handle, kind schema.Kind) (string, error) {
	if n.schema != 0 {
		m, ok, err := n.schemas.Resolve(n.schema, h)
		if err != nil {
			return "", err
		}
		if ok && m.Kind == kind {
			return m.Target, nil
		}
	}
	iri, err := n.ids.Resolve(h)
	if err != nil {
		return "", err
	}
	return fallbackName(n.policy, n.ns, iri), nil
}

// fallbackName names an unmapped term.
func fallbackName(policy VocabURIs, ns *voc.Namespaces, iri string) string {
	switch policy {
	case KeepVocabURIs:
		return iri
	case ShortenVocabURIs:
		base, local := voc.Split(iri)
		if base == "" {
			return local
		}
		return ns.Ensure(base) + "__" + local
	}
	_, local := voc.Split(iri)
	return local
}

func relationKind(k inference.Relation) schema.Kind {
	if k == inference.SubPropertyOf {
		return schema.RelationshipType
	}
	return schema.Label
}

// vocabulary records the labels and relationship types resources were
// imported as. It serves name lookups of inferred queries, so a resource
// keeps the names it got at import time even if mappings change later.
type vocabulary struct {
	ids     *refs.Table
	schemas *schema.Registry
	active  func() schema.ID

	mu      sync.RWMutex
	names   [2]map[refs.Handle][]string
	handles [2]map[string][]refs.Handle
}

var _ inference.Vocabulary = (*vocabulary)(nil)

func newVocabulary(ids *refs.Table, schemas *schema.Registry, active func() schema.ID) *vocabulary {
	v := &vocabulary{ids: ids, schemas: schemas, active: active}
	v.reset()
	return v
}

func (v *vocabulary) reset() {
	v.mu.Lock()
	for i := range v.names {
		v.names[i] = make(map[refs.Handle][]string)
		v.handles[i] = make(map[string][]refs.Handle)
	}
	v.mu.Unlock()
}

// VocabName is a recorded resource name.
type VocabName struct {
	Resource refs.Handle        `json:"resource"`
	Kind     inference.Relation `json:"kind"`
	Name     string             `json:"name"`
}

func (v *vocabulary) record(h refs.Handle, kind inference.Relation, name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.names[kind][h] {
		if n == name {
			return
		}
	}
	v.names[kind][h] = append(v.names[kind][h], name)
	v.handles[kind][name] = append(v.handles[kind][name], h)
}

func (v *vocabulary) list() []VocabName {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []VocabName
	for k := range v.names {
		for h, names := range v.names[k] {
			for _, n := range names {
				out = append(out, VocabName{Resource: h, Kind: inference.Relation(k), Name: n})
			}
		}
	}
	return out
}

// Resources implements inference.Vocabulary. The active schema's reverse
// mapping is consulted before the recorded names.
func (v *vocabulary) Resources(name string, kind inference.Relation) []refs.Handle {
	var out []refs.Handle
	if id := v.active(); id != 0 {
		if iri, ok, err := v.schemas.Reverse(id, name, relationKind(kind)); err == nil && ok {
			if h, ok := v.ids.Lookup(iri); ok {
				out = append(out, h)
			}
		}
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, h := range v.handles[kind][name] {
		if len(out) != 0 && out[0] == h {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Names implements inference.Vocabulary.
func (v *vocabulary) Names(h refs.Handle, kind inference.Relation) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := v.names[kind][h]
	out := make([]string, len(names))
	copy(out, names)
	return out
}
