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

// Package lpgrdf maps RDF triples to a labeled property graph and answers
// label and relationship type queries inclusive of RDFS inferred membership.
//
// An Engine owns a resource identity table, a triple store, a schema mapping
// registry, an ontology hierarchy index and a property graph. Imports are
// serialized by a single writer lock; queries run concurrently with each
// other and wait for imports in progress.
package lpgrdf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/graph/memstore"
	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/inference"
	"github.com/cayleygraph/lpgrdf/schema"
	"github.com/cayleygraph/lpgrdf/voc"
)

// ErrBusy is returned by TryIngest when another import is in progress.
var ErrBusy = errors.New("import in progress")

// ImportStats summarizes an import.
type ImportStats struct {
	Triples       int `json:"triples"`
	Duplicates    int `json:"duplicates"`
	Filtered      int `json:"filtered"`
	Edges         int `json:"hierarchyEdges"`
	Nodes         int `json:"nodesCreated"`
	Relationships int `json:"relationshipsCreated"`
}

// Add accumulates the counters of another import.
func (s *ImportStats) Add(o ImportStats) {
	s.Triples += o.Triples
	s.Duplicates += o.Duplicates
	s.Filtered += o.Filtered
	s.Edges += o.Edges
	s.Nodes += o.Nodes
	s.Relationships += o.Relationships
}

// Stats describes the content of an engine.
type Stats struct {
	Resources        int       `json:"resources"`
	Triples          int       `json:"triples"`
	Nodes            int       `json:"nodes"`
	Relationships    int       `json:"relationships"`
	SubClassEdges    int       `json:"subClassEdges"`
	SubPropertyEdges int       `json:"subPropertyEdges"`
	Labels           []string  `json:"labels"`
	Types            []string  `json:"types"`
	ActiveSchema     schema.ID `json:"activeSchema,omitempty"`
}

// Engine maps RDF to a property graph. It is safe for concurrent use.
type Engine struct {
	opts Options
	ns   *voc.Namespaces

	mu       sync.RWMutex
	ids      *refs.Table
	triples  *memstore.TripleStore
	schemas  *schema.Registry
	index    *inference.Index
	graph    *lpg.Store
	vocab    *vocabulary
	resolver *inference.Resolver
	preds    predicates
	active   schema.ID
}

// New creates an empty engine. A nil namespace registry is replaced with one
// holding the common vocabularies.
func New(opts Options, ns *voc.Namespaces) *Engine {
	if ns == nil {
		ns = voc.New()
		ns.RegisterCommon()
	}
	e := &Engine{
		opts:    opts,
		ns:      ns,
		ids:     refs.NewTable(),
		triples: memstore.NewTripleStore(),
		index:   inference.NewIndex(),
		graph:   lpg.NewStore(),
	}
	e.schemas = schema.NewRegistry(e.ids)
	e.vocab = newVocabulary(e.ids, e.schemas, func() schema.ID { return e.active })
	e.resolver = inference.NewResolver(e.index, e.graph, e.vocab)
	e.graph.SetExpander(e.resolver)
	e.preds = internPredicates(e.ids)
	return e
}

// Options returns the import options.
func (e *Engine) Options() Options { return e.opts }

// Namespaces returns the prefix registry used to shorten vocabulary IRIs.
func (e *Engine) Namespaces() *voc.Namespaces { return e.ns }

// Schemas returns the schema mapping registry.
func (e *Engine) Schemas() *schema.Registry { return e.schemas }

// Refs returns the resource identity table. Triples passed to Ingest must
// be built with it.
func (e *Engine) Refs() *refs.Table { return e.ids }

// SetActiveSchema sets the schema used to resolve labels to resources in
// queries. Zero unsets it.
func (e *Engine) SetActiveSchema(id schema.ID) error {
	if id != 0 {
		if _, err := e.schemas.Schema(id); err != nil {
			return err
		}
	}
	e.mu.Lock()
	e.active = id
	e.mu.Unlock()
	return nil
}

// ActiveSchema returns the active schema, or zero.
func (e *Engine) ActiveSchema() schema.ID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.active
}

func (e *Engine) mapper(store *lpg.Store, vocab *vocabulary, id schema.ID, ns *voc.Namespaces) *mapper {
	return &mapper{
		namer: namer{policy: e.opts.VocabURIs, ids: e.ids, schemas: e.schemas, schema: id, ns: ns},
		opts:  e.opts,
		store: store,
		vocab: vocab,
		preds: e.preds,
	}
}

func (e *Engine) check(t graph.Triple) error {
	if _, err := e.ids.Resolve(t.Subject); err != nil {
		return err
	}
	if _, err := e.ids.Resolve(t.Predicate); err != nil {
		return err
	}
	if h, ok := t.Object.Handle(); ok {
		if _, err := e.ids.Resolve(h); err != nil {
			return err
		}
	}
	return nil
}

// Ingest stores triples and maps them to the property graph using a schema.
// A zero schema ID maps every term by the VocabURIs policy. The schema becomes
// the active schema.
//
// Triples already stored are skipped, so ingesting the same triples again
// changes nothing. Subclass and subproperty statements also feed the
// hierarchy index. Ingest is not transactional: on error, triples before the
// failing one stay imported.
func (e *Engine) Ingest(triples []graph.Triple, id schema.ID) (ImportStats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ingest(triples, id)
}

// TryIngest is like Ingest but fails with ErrBusy instead of waiting for an
// import in progress.
func (e *Engine) TryIngest(triples []graph.Triple, id schema.ID) (ImportStats, error) {
	if !e.mu.TryLock() {
		mIngestBusy.Inc()
		return ImportStats{}, ErrBusy
	}
	defer e.mu.Unlock()
	return e.ingest(triples, id)
}

func (e *Engine) ingest(triples []graph.Triple, id schema.ID) (st ImportStats, _ error) {
	if id != 0 {
		if _, err := e.schemas.Schema(id); err != nil {
			return st, err
		}
	}
	defer prometheus.NewTimer(mIngestSeconds).ObserveDuration()
	e.active = id
	nodes, rels := e.graph.NodeCount(), e.graph.RelationshipCount()
	defer func() {
		st.Nodes = e.graph.NodeCount() - nodes
		st.Relationships = e.graph.RelationshipCount() - rels
		mIngestTriples.Add(float64(st.Triples))
		mIngestDuplicates.Add(float64(st.Duplicates))
	}()

	m := e.mapper(e.graph, e.vocab, id, e.ns)
	for i, t := range triples {
		if err := e.check(t); err != nil {
			return st, fmt.Errorf("triple %d: %w", i, err)
		}
		if !e.triples.Add(t) {
			st.Duplicates++
			continue
		}
		st.Triples++
		if edge, ok := e.preds.EdgeOf(t); ok && e.index.Add(edge) {
			st.Edges++
		}
		ok, err := m.apply(t)
		if err != nil {
			return st, fmt.Errorf("triple %d: %w", i, err)
		}
		if !ok {
			st.Filtered++
		}
		if clog.V(2) && (i+1)%10000 == 0 {
			clog.Infof("ingest: %d triples processed", i+1)
		}
	}
	if clog.V(1) {
		clog.Infof("ingest: %d new triples, %d duplicates, %d hierarchy edges", st.Triples, st.Duplicates, st.Edges)
	}
	return st, nil
}

// IngestHierarchy feeds subclass and subproperty statements to the hierarchy
// index. Other triples are ignored. Resources are named with the active
// schema. It returns the number of new edges.
func (e *Engine) IngestHierarchy(triples []graph.Triple) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := e.mapper(e.graph, e.vocab, e.active, e.ns)
	n := 0
	for i, t := range triples {
		edge, ok := e.preds.EdgeOf(t)
		if !ok {
			continue
		}
		if err := e.check(t); err != nil {
			return n, fmt.Errorf("triple %d: %w", i, err)
		}
		if err := m.nameEdge(edge); err != nil {
			return n, fmt.Errorf("triple %d: %w", i, err)
		}
		if e.index.Add(edge) {
			n++
		}
	}
	if clog.V(1) {
		clog.Infof("hierarchy: %d new edges", n)
	}
	return n, nil
}

// Preview holds the nodes and relationships triples would map to.
type Preview struct {
	Nodes         []lpg.Node         `json:"nodes"`
	Relationships []lpg.Relationship `json:"relationships"`
}

// Preview maps triples into a scratch property graph, leaving the stores
// of the engine untouched.
func (e *Engine) Preview(triples []graph.Triple, id schema.ID) (Preview, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if id != 0 {
		if _, err := e.schemas.Schema(id); err != nil {
			return Preview{}, err
		}
	}
	store := lpg.NewStore()
	m := e.mapper(store, nil, id, e.ns.Clone())
	seen := make(map[graph.Triple]struct{}, len(triples))
	for i, t := range triples {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if err := e.check(t); err != nil {
			return Preview{}, fmt.Errorf("triple %d: %w", i, err)
		}
		if _, err := m.apply(t); err != nil {
			return Preview{}, fmt.Errorf("triple %d: %w", i, err)
		}
	}
	return Preview{Nodes: store.Nodes().Collect(), Relationships: store.Relationships().Collect()}, nil
}

// CreateNode adds a node that no resource maps to.
func (e *Engine) CreateNode(labels []string, props lpg.Properties) lpg.NodeID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.CreateNode(labels, props)
}

// CreateRelationship links two existing nodes.
func (e *Engine) CreateRelationship(typ string, start, end lpg.NodeID, props lpg.Properties) (lpg.RelID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.CreateRelationship(typ, start, end, props)
}

// NodesWithLabel returns nodes carrying a label. With inferred set, nodes
// labeled with any inferred subclass are included, and a label that names
// no known resource and no node fails with inference.ErrUnresolvableLabel.
// Result order is unspecified.
func (e *Engine) NodesWithLabel(label string, inferred bool) ([]lpg.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	it, err := e.graph.NodesWithLabel(label, inferred)
	if err != nil {
		return nil, err
	}
	return it.Collect(), nil
}

// NodesWithLabelDepth is NodesWithLabel with inference limited to depth
// subclass levels. A negative depth means no limit.
func (e *Engine) NodesWithLabelDepth(label string, depth int) ([]lpg.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	it, err := e.resolver.NodesWithLabel(label, depth)
	if err != nil {
		return nil, err
	}
	return it.Collect(), nil
}

// RelationshipsOfType returns relationships of a type, and with inferred set
// relationships of its inferred subproperties.
func (e *Engine) RelationshipsOfType(typ string, inferred bool) ([]lpg.Relationship, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	it, err := e.graph.RelationshipsOfType(typ, inferred)
	if err != nil {
		return nil, err
	}
	return it.Collect(), nil
}

// LinkedNodes returns the nodes one hop away from a node.
func (e *Engine) LinkedNodes(id lpg.NodeID, typ string, dir lpg.Direction, inferred bool) ([]lpg.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resolver.LinkedNodes(id, typ, dir, inferred)
}

// NodeByURI returns the node built from a resource.
func (e *Engine) NodeByURI(iri string) (lpg.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.ids.Lookup(iri)
	if !ok {
		return lpg.Node{}, false
	}
	return e.graph.NodeByResource(h)
}

// NodeByID returns a node.
func (e *Engine) NodeByID(id lpg.NodeID) (lpg.Node, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Node(id)
}

// URI returns the identifier of the resource a node or relationship was
// built from.
func (e *Engine) URI(h refs.Handle) (string, bool) {
	if !h.Valid() {
		return "", false
	}
	iri, err := e.ids.Resolve(h)
	return iri, err == nil
}

// Nodes returns all nodes.
func (e *Engine) Nodes() []lpg.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Nodes().Collect()
}

// Relationships returns all relationships.
func (e *Engine) Relationships() []lpg.Relationship {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.Relationships().Collect()
}

// RelationshipsOf returns relationships attached to a node.
func (e *Engine) RelationshipsOf(id lpg.NodeID, dir lpg.Direction, types ...string) ([]lpg.Relationship, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph.RelationshipsOf(id, dir, types...)
}

func (e *Engine) lookup(it func(refs.Handle) *memstore.Iterator, id string) []graph.Triple {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.ids.Lookup(id)
	if !ok {
		return nil
	}
	return it(h).Collect()
}

// TriplesBySubject returns stored triples with a subject, in insertion order.
func (e *Engine) TriplesBySubject(id string) []graph.Triple {
	return e.lookup(e.triples.BySubject, id)
}

// TriplesByPredicate returns stored triples with a predicate.
func (e *Engine) TriplesByPredicate(id string) []graph.Triple {
	return e.lookup(e.triples.ByPredicate, id)
}

// TriplesByObject returns stored triples with a resource object.
func (e *Engine) TriplesByObject(id string) []graph.Triple {
	return e.lookup(e.triples.ByObject, id)
}

// Triples returns all stored triples in insertion order.
func (e *Engine) Triples() []graph.Triple {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.triples.All().Collect()
}

func (e *Engine) closure(id string, kind inference.Relation, up bool) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.ids.Lookup(id)
	if !ok {
		return []string{id}
	}
	var set inference.Set
	if up {
		set = e.index.AncestorsOf(h, kind)
	} else {
		set = e.index.DescendantsOf(h, kind)
	}
	out := make([]string, 0, set.Len())
	for _, x := range set.Slice() {
		if s, err := e.ids.Resolve(x); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// AncestorsOf returns the identifiers of a resource and of all resources it
// is transitively a subclass or subproperty of.
func (e *Engine) AncestorsOf(id string, kind inference.Relation) []string {
	return e.closure(id, kind, true)
}

// DescendantsOf returns the identifiers of a resource and of all its
// transitive subclasses or subproperties.
func (e *Engine) DescendantsOf(id string, kind inference.Relation) []string {
	return e.closure(id, kind, false)
}

// Stats describes the content of the engine.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Resources:        e.ids.Len(),
		Triples:          e.triples.Size(),
		Nodes:            e.graph.NodeCount(),
		Relationships:    e.graph.RelationshipCount(),
		SubClassEdges:    e.index.Len(inference.SubClassOf),
		SubPropertyEdges: e.index.Len(inference.SubPropertyOf),
		Labels:           e.graph.Labels(),
		Types:            e.graph.Types(),
		ActiveSchema:     e.active,
	}
}

func (e *Engine) reset() {
	e.triples.Clear()
	e.index.Clear()
	e.graph.Clear()
	e.vocab.reset()
	e.ids.Reset()
	e.schemas.InvalidateCache()
}

// Clear removes all triples, hierarchy edges, nodes and relationships and
// resets the resource identity table. Handles issued before Clear are
// invalid afterwards. Schemas and namespaces are kept.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
	e.preds = internPredicates(e.ids)
	if clog.V(1) {
		clog.Infof("engine cleared")
	}
}
