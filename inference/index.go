// Package inference computes RDFS subclass and subproperty closure and
// answers label and relationship type queries inclusive of inferred members.
//
// Only two entailment rules are implemented:
//
//	(c rdfs:subClassOf d), (d rdfs:subClassOf e) -> (c rdfs:subClassOf e)
//	(p rdfs:subPropertyOf q), (q rdfs:subPropertyOf r) -> (p rdfs:subPropertyOf r)
//
// together with reflexivity for every resource.
package inference

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/voc"
)

// Relation is the kind of a hierarchy edge.
type Relation int

const (
	SubClassOf = Relation(iota)
	SubPropertyOf
)

func (r Relation) String() string {
	switch r {
	case SubClassOf:
		return "subClassOf"
	case SubPropertyOf:
		return "subPropertyOf"
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

// IRI returns the RDFS predicate of the relation.
func (r Relation) IRI() string {
	if r == SubPropertyOf {
		return voc.RDFSSubPropertyOf
	}
	return voc.RDFSSubClassOf
}

// Edge states that Child is a subclass or subproperty of Parent.
type Edge struct {
	Child  refs.Handle `json:"child"`
	Parent refs.Handle `json:"parent"`
	Kind   Relation    `json:"kind"`
}

// Predicates holds the handles of the hierarchy predicates.
type Predicates struct {
	SubClassOf    refs.Handle
	SubPropertyOf refs.Handle
}

// InternPredicates interns the RDFS hierarchy predicates.
func InternPredicates(tb *refs.Table) Predicates {
	return Predicates{
		SubClassOf:    tb.Intern(voc.RDFSSubClassOf),
		SubPropertyOf: tb.Intern(voc.RDFSSubPropertyOf),
	}
}

// EdgeOf returns the hierarchy edge a triple states, if any.
func (p Predicates) EdgeOf(t graph.Triple) (Edge, bool) {
	o, ok := t.Object.Handle()
	if !ok {
		return Edge{}, false
	}
	switch t.Predicate {
	case p.SubClassOf:
		return Edge{Child: t.Subject, Parent: o, Kind: SubClassOf}, true
	case p.SubPropertyOf:
		return Edge{Child: t.Subject, Parent: o, Kind: SubPropertyOf}, true
	}
	return Edge{}, false
}

// Set is an immutable set of resources.
type Set struct {
	m map[refs.Handle]struct{}
}

func newSet(m map[refs.Handle]struct{}) Set { return Set{m: m} }

// Has reports whether h is in the set.
func (s Set) Has(h refs.Handle) bool {
	_, ok := s.m[h]
	return ok
}

// Len returns the size of the set.
func (s Set) Len() int { return len(s.m) }

// Slice returns the members in ascending handle order.
func (s Set) Slice() []refs.Handle {
	out := make([]refs.Handle, 0, len(s.m))
	for h := range s.m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type adjacency map[refs.Handle]map[refs.Handle]struct{}

func (a adjacency) add(from, to refs.Handle) bool {
	m, ok := a[from]
	if !ok {
		m = make(map[refs.Handle]struct{})
		a[from] = m
	}
	if _, ok = m[to]; ok {
		return false
	}
	m[to] = struct{}{}
	return true
}

// hierarchy is a directed graph of one relation with memoized closures.
type hierarchy struct {
	super adjacency
	sub   adjacency
	edges int

	cacheMu     sync.Mutex
	ancestors   map[refs.Handle]Set
	descendants map[refs.Handle]Set
}

func newHierarchy() *hierarchy {
	return &hierarchy{
		super:       make(adjacency),
		sub:         make(adjacency),
		ancestors:   make(map[refs.Handle]Set),
		descendants: make(map[refs.Handle]Set),
	}
}

// walk visits every resource reachable from h through adj, h included.
// Reachable resources with a memoized closure are expanded from the cache.
func walk(adj adjacency, cache map[refs.Handle]Set, h refs.Handle, visit func(refs.Handle)) map[refs.Handle]struct{} {
	seen := map[refs.Handle]struct{}{h: {}}
	stack := []refs.Handle{h}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visit != nil {
			visit(cur)
		}
		if cur != h && cache != nil {
			if c, ok := cache[cur]; ok {
				for x := range c.m {
					seen[x] = struct{}{}
				}
				continue
			}
		}
		for next := range adj[cur] {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return seen
}

func (h *hierarchy) closure(adj adjacency, cache map[refs.Handle]Set, r refs.Handle) Set {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	if s, ok := cache[r]; ok {
		mClosureHit.Inc()
		return s
	}
	mClosureMiss.Inc()
	s := newSet(walk(adj, cache, r, nil))
	cache[r] = s
	return s
}

func (h *hierarchy) add(child, parent refs.Handle) bool {
	if !h.super.add(child, parent) {
		return false
	}
	h.sub.add(parent, child)
	h.edges++

	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	n := 0
	// ancestors change for the child and everything below it
	walk(h.sub, nil, child, func(x refs.Handle) {
		if _, ok := h.ancestors[x]; ok {
			delete(h.ancestors, x)
			n++
		}
	})
	// descendants change for the parent and everything above it
	walk(h.super, nil, parent, func(x refs.Handle) {
		if _, ok := h.descendants[x]; ok {
			delete(h.descendants, x)
			n++
		}
	})
	mClosureInvalidated.Add(float64(n))
	return true
}

// limited collects resources reachable from r in at most depth steps.
func limited(adj adjacency, r refs.Handle, depth int) Set {
	seen := map[refs.Handle]struct{}{r: {}}
	front := []refs.Handle{r}
	for d := 0; d < depth && len(front) > 0; d++ {
		var next []refs.Handle
		for _, cur := range front {
			for x := range adj[cur] {
				if _, ok := seen[x]; !ok {
					seen[x] = struct{}{}
					next = append(next, x)
				}
			}
		}
		front = next
	}
	return newSet(seen)
}

// Index holds subclass and subproperty edges among resources.
//
// Closures are computed lazily on query and memoized. Adding an edge drops
// only the memoized closures it can affect. Cycles are valid input; the
// members of a cycle end up in each other's closure.
//
// Index is safe for concurrent use.
type Index struct {
	mu    sync.RWMutex
	kinds [2]*hierarchy
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{kinds: [2]*hierarchy{newHierarchy(), newHierarchy()}}
}

func (ix *Index) kind(k Relation) *hierarchy {
	if k != SubClassOf && k != SubPropertyOf {
		panic(fmt.Errorf("unknown relation: %v", k))
	}
	return ix.kinds[k]
}

// AddEdge records that child is a subclass or subproperty of parent.
// It returns false if the edge was already known.
func (ix *Index) AddEdge(child, parent refs.Handle, kind Relation) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if !ix.kind(kind).add(child, parent) {
		return false
	}
	mEdges.WithLabelValues(kind.String()).Inc()
	return true
}

// Add is AddEdge for an Edge value.
func (ix *Index) Add(e Edge) bool {
	return ix.AddEdge(e.Child, e.Parent, e.Kind)
}

// AncestorsOf returns r and every resource r is transitively a subclass or
// subproperty of.
func (ix *Index) AncestorsOf(r refs.Handle, kind Relation) Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	h := ix.kind(kind)
	return h.closure(h.super, h.ancestors, r)
}

// DescendantsOf returns r and every resource that is transitively a
// subclass or subproperty of r.
func (ix *Index) DescendantsOf(r refs.Handle, kind Relation) Set {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	h := ix.kind(kind)
	return h.closure(h.sub, h.descendants, r)
}

// DescendantsWithin is DescendantsOf limited to depth levels below r.
// A negative depth means no limit.
func (ix *Index) DescendantsWithin(r refs.Handle, kind Relation, depth int) Set {
	if depth < 0 {
		return ix.DescendantsOf(r, kind)
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return limited(ix.kind(kind).sub, r, depth)
}

// Parents returns the direct parents of r.
func (ix *Index) Parents(r refs.Handle, kind Relation) []refs.Handle {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return newSet(ix.kind(kind).super[r]).Slice()
}

// Children returns the direct children of r.
func (ix *Index) Children(r refs.Handle, kind Relation) []refs.Handle {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return newSet(ix.kind(kind).sub[r]).Slice()
}

// Edges lists all edges, ordered by kind, child and parent.
func (ix *Index) Edges() []Edge {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []Edge
	for k, h := range ix.kinds {
		for c, ps := range h.super {
			for p := range ps {
				out = append(out, Edge{Child: c, Parent: p, Kind: Relation(k)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Child != b.Child {
			return a.Child < b.Child
		}
		return a.Parent < b.Parent
	})
	return out
}

// Len returns the number of edges of a kind.
func (ix *Index) Len(kind Relation) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.kind(kind).edges
}

// Clear removes all edges and memoized closures.
func (ix *Index) Clear() {
	ix.mu.Lock()
	ix.kinds = [2]*hierarchy{newHierarchy(), newHierarchy()}
	ix.mu.Unlock()
}
