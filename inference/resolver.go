package inference

import (
	"errors"
	"fmt"

	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/graph/refs"
)

// ErrUnresolvableLabel is returned when a label or relationship type names no
// known resource and no node or relationship carries it literally.
var ErrUnresolvableLabel = errors.New("unresolvable label")

// LabelError records a label or type that could not be resolved.
type LabelError struct {
	Label string
	Kind  Relation
	Err   error
}

func (e *LabelError) Error() string {
	what := "label"
	if e.Kind == SubPropertyOf {
		what = "relationship type"
	}
	return fmt.Sprintf("%s %q: %v", what, e.Label, e.Err)
}

func (e *LabelError) Unwrap() error { return e.Err }

// Vocabulary relates hierarchy resources to the names they carry in the
// property graph. Classes are named by labels (SubClassOf) and properties by
// relationship types (SubPropertyOf).
type Vocabulary interface {
	// Resources returns the resources a name stands for.
	Resources(name string, kind Relation) []refs.Handle
	// Names returns the names a resource is known by.
	Names(h refs.Handle, kind Relation) []string
}

var _ lpg.Expander = (*Resolver)(nil)

// Resolver answers label and relationship type queries inclusive of
// inferred membership.
type Resolver struct {
	index *Index
	store *lpg.Store
	vocab Vocabulary
}

// NewResolver creates a resolver over a hierarchy index and a property graph.
func NewResolver(ix *Index, store *lpg.Store, vocab Vocabulary) *Resolver {
	return &Resolver{index: ix, store: store, vocab: vocab}
}

func (r *Resolver) literal(name string, kind Relation) bool {
	if kind == SubPropertyOf {
		return r.store.HasType(name)
	}
	return r.store.HasLabel(name)
}

// Expand returns name followed by the names of every resource inferred to be
// a subclass or subproperty of what name stands for, at most depth levels
// down. A negative depth means no limit.
func (r *Resolver) Expand(name string, kind Relation, depth int) ([]string, error) {
	hs := r.vocab.Resources(name, kind)
	if len(hs) == 0 {
		if r.literal(name, kind) {
			return []string{name}, nil
		}
		mUnresolvable.Inc()
		return nil, &LabelError{Label: name, Kind: kind, Err: ErrUnresolvableLabel}
	}
	out := []string{name}
	seen := map[string]struct{}{name: {}}
	// Other names of the queried resources come from earlier mappings and
	// must not relabel their nodes.
	queried := make(map[refs.Handle]struct{}, len(hs))
	for _, h := range hs {
		queried[h] = struct{}{}
	}
	for _, h := range hs {
		for _, d := range r.index.DescendantsWithin(h, kind, depth).Slice() {
			if _, ok := queried[d]; ok {
				continue
			}
			for _, n := range r.vocab.Names(d, kind) {
				if _, dup := seen[n]; !dup {
					seen[n] = struct{}{}
					out = append(out, n)
				}
			}
		}
	}
	return out, nil
}

// ExpandLabel implements lpg.Expander.
func (r *Resolver) ExpandLabel(label string) ([]string, error) {
	return r.Expand(label, SubClassOf, -1)
}

// ExpandType implements lpg.Expander.
func (r *Resolver) ExpandType(typ string) ([]string, error) {
	return r.Expand(typ, SubPropertyOf, -1)
}

// NodesWithLabel returns nodes carrying label or any label of its subclasses
// up to depth levels down. A negative depth means no limit.
func (r *Resolver) NodesWithLabel(label string, depth int) (*lpg.NodeIterator, error) {
	labels, err := r.Expand(label, SubClassOf, depth)
	if err != nil {
		return nil, err
	}
	return r.store.NodesWithLabels(labels...), nil
}

// RelationshipsOfType returns relationships of typ or any of its subproperties.
func (r *Resolver) RelationshipsOfType(typ string, depth int) (*lpg.RelIterator, error) {
	types, err := r.Expand(typ, SubPropertyOf, depth)
	if err != nil {
		return nil, err
	}
	return r.store.RelationshipsOfTypes(types...), nil
}

// LinkedNodes returns nodes one hop away from a node. An empty typ follows
// relationships of any type. With inferred set, relationships of subproperty
// types are followed too. Each node is listed once.
func (r *Resolver) LinkedNodes(id lpg.NodeID, typ string, dir lpg.Direction, inferred bool) ([]lpg.Node, error) {
	var types []string
	if typ != "" {
		types = []string{typ}
		if inferred {
			var err error
			if types, err = r.ExpandType(typ); err != nil {
				return nil, err
			}
		}
	}
	rels, err := r.store.RelationshipsOf(id, dir, types...)
	if err != nil {
		return nil, err
	}
	seen := make(map[lpg.NodeID]struct{})
	var out []lpg.Node
	for _, rel := range rels {
		other := rel.End
		if other == id {
			other = rel.Start
		}
		if _, ok := seen[other]; ok {
			continue
		}
		seen[other] = struct{}{}
		n, err := r.store.Node(other)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
