package lpgrdf

import (
	"fmt"

	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/inference"
)

// Snapshot is the full content of an engine, apart from schemas and
// namespaces. Handles in it refer to positions in Resources.
type Snapshot struct {
	Resources     []string
	Triples       []graph.Triple
	Edges         []inference.Edge
	Names         []VocabName
	Nodes         []lpg.Node
	Relationships []lpg.Relationship
	ActiveSchema  string
}

// Snapshot copies the content of the engine.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s := Snapshot{
		Resources:     e.ids.Names(),
		Triples:       e.triples.All().Collect(),
		Edges:         e.index.Edges(),
		Names:         e.vocab.list(),
		Nodes:         e.graph.Nodes().Collect(),
		Relationships: e.graph.Relationships().Collect(),
	}
	if e.active != 0 {
		if sch, err := e.schemas.Schema(e.active); err == nil {
			s.ActiveSchema = sch.Name
		}
	}
	return s
}

// Restore replaces the content of the engine with a snapshot. Nodes keep
// their labels and IDs; nothing is mapped again.
func (e *Engine) Restore(s Snapshot) error {
	seen := make(map[string]struct{}, len(s.Resources))
	for _, id := range s.Resources {
		if _, ok := seen[id]; ok {
			return fmt.Errorf("restore: duplicate resource %q", id)
		}
		seen[id] = struct{}{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
	for _, id := range s.Resources {
		e.ids.Intern(id)
	}
	e.preds = internPredicates(e.ids)
	for _, t := range s.Triples {
		if err := e.check(t); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		e.triples.Add(t)
	}
	for _, edge := range s.Edges {
		e.index.Add(edge)
	}
	for _, n := range s.Names {
		e.vocab.record(n.Resource, n.Kind, n.Name)
	}
	for _, n := range s.Nodes {
		if err := e.graph.RestoreNode(n); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	for _, r := range s.Relationships {
		if err := e.graph.RestoreRelationship(r); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
	}
	e.active = 0
	if s.ActiveSchema != "" {
		if id, ok := e.schemas.SchemaByName(s.ActiveSchema); ok {
			e.active = id
		}
	}
	return nil
}
