package lpg

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
)

type staticExpander map[string][]string

func (e staticExpander) ExpandLabel(l string) ([]string, error) {
	if out, ok := e[l]; ok {
		return out, nil
	}
	return nil, errors.New("unknown label")
}

func (e staticExpander) ExpandType(t string) ([]string, error) { return e.ExpandLabel(t) }

func TestUpsertNodeMerges(t *testing.T) {
	s := NewStore()
	tb := refs.NewTable()
	alice := tb.Intern("ex:alice")

	id := s.UpsertNode(alice, []string{"Person"}, Properties{"name": graph.String("Alice"), "age": graph.Int(30)})
	require.Equal(t, NodeID(1), id)
	id2 := s.UpsertNode(alice, []string{"Student", "Person"}, Properties{"age": graph.Int(31)})
	require.Equal(t, id, id2)
	require.Equal(t, 1, s.NodeCount())

	n, err := s.Node(id)
	require.NoError(t, err)
	require.Equal(t, []string{"Person", "Student"}, n.Labels)
	require.True(t, n.Properties["age"].Equal(graph.Int(31)))
	require.True(t, n.Properties["name"].Equal(graph.String("Alice")))
	require.Equal(t, alice, n.Resource)

	// snapshots are copies
	n.Properties["name"] = graph.String("Mallory")
	n.Labels[0] = "Nope"
	n, _ = s.Node(id)
	require.True(t, n.Properties["name"].Equal(graph.String("Alice")))
	require.True(t, n.HasLabel("Person"))

	got, ok := s.NodeByResource(alice)
	require.True(t, ok)
	require.Equal(t, id, got.ID)
	_, ok = s.NodeByResource(tb.Intern("ex:bob"))
	require.False(t, ok)
}

func TestNativeNodes(t *testing.T) {
	s := NewStore()
	a := s.CreateNode([]string{"Thing"}, Properties{"k": graph.Bool(true)})
	b := s.CreateNode([]string{"Thing"}, nil)
	require.NotEqual(t, a, b)
	require.NoError(t, s.AddLabels(b, "Other"))
	require.NoError(t, s.AppendProperty(b, "tag", graph.String("x")))
	require.NoError(t, s.AppendProperty(b, "tag", graph.String("y")))
	require.NoError(t, s.AppendProperty(b, "tag", graph.String("x")))
	n, _ := s.Node(b)
	require.True(t, n.Properties["tag"].Equal(graph.Array(graph.String("x"), graph.String("y"))))
	require.False(t, n.Resource.Valid())

	_, err := s.Node(42)
	require.True(t, errors.Is(err, ErrNodeNotFound))
	require.True(t, errors.Is(s.SetProperty(42, "k", graph.Int(1)), ErrNodeNotFound))
}

func TestRelationships(t *testing.T) {
	s := NewStore()
	tb := refs.NewTable()
	alice, bob, knows := tb.Intern("ex:alice"), tb.Intern("ex:bob"), tb.Intern("ex:knows")

	r1 := s.UpsertRelationship("knows", knows, alice, bob, Properties{"since": graph.Int(2001)})
	r2 := s.UpsertRelationship("knows", knows, alice, bob, Properties{"since": graph.Int(2002)})
	require.Equal(t, r1, r2)
	require.Equal(t, 1, s.RelationshipCount())
	require.Equal(t, 2, s.NodeCount())

	r, err := s.Relationship(r1)
	require.NoError(t, err)
	require.Equal(t, "knows", r.Type)
	require.True(t, r.Properties["since"].Equal(graph.Int(2002)))
	require.Equal(t, knows, r.Resource)

	an, _ := s.NodeByResource(alice)
	bn, _ := s.NodeByResource(bob)
	require.Empty(t, an.Labels)

	native, err := s.CreateRelationship("knows", bn.ID, an.ID, nil)
	require.NoError(t, err)
	_, err = s.CreateRelationship("knows", bn.ID, 99, nil)
	require.True(t, errors.Is(err, ErrNodeNotFound))

	out, err := s.RelationshipsOf(an.ID, Outgoing)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, bn.ID, out[0].End)

	in, err := s.RelationshipsOf(an.ID, Incoming, "knows")
	require.NoError(t, err)
	require.Len(t, in, 1)
	require.Equal(t, native, in[0].ID)

	both, err := s.RelationshipsOf(an.ID, Both, "likes")
	require.NoError(t, err)
	require.Empty(t, both)

	_, err = s.Relationship(7)
	require.True(t, errors.Is(err, ErrRelationshipNotFound))
}

func TestNodesWithLabel(t *testing.T) {
	s := NewStore()
	tb := refs.NewTable()
	s.UpsertNode(tb.Intern("ex:alice"), []string{"Student"}, nil)
	s.UpsertNode(tb.Intern("ex:bob"), []string{"Person"}, nil)
	s.UpsertNode(tb.Intern("ex:carol"), []string{"Student", "Person"}, nil)

	it, err := s.NodesWithLabel("Person", false)
	require.NoError(t, err)
	require.Equal(t, 2, it.Len())

	// without an expander inference degrades to exact matching
	it, err = s.NodesWithLabel("Person", true)
	require.NoError(t, err)
	require.Equal(t, 2, it.Len())

	s.SetExpander(staticExpander{"Person": {"Person", "Student"}})
	it, err = s.NodesWithLabel("Person", true)
	require.NoError(t, err)
	var names []refs.Handle
	for _, n := range it.Collect() {
		names = append(names, n.Resource)
	}
	require.ElementsMatch(t, []refs.Handle{tb.Intern("ex:alice"), tb.Intern("ex:bob"), tb.Intern("ex:carol")}, names)

	// restartable
	it.Reset()
	require.Len(t, it.Collect(), 3)

	_, err = s.NodesWithLabel("Unknown", true)
	require.Error(t, err)

	require.Equal(t, []string{"Person", "Student"}, s.Labels())
	require.True(t, s.HasLabel("Student"))
	require.False(t, s.HasLabel("Teacher"))
}

func TestRelationshipsOfType(t *testing.T) {
	s := NewStore()
	tb := refs.NewTable()
	a, b, c := tb.Intern("ex:a"), tb.Intern("ex:b"), tb.Intern("ex:c")
	s.UpsertRelationship("advisor", 0, a, b, nil)
	s.UpsertRelationship("knows", 0, b, c, nil)

	it, err := s.RelationshipsOfType("knows", false)
	require.NoError(t, err)
	require.Equal(t, 1, it.Len())

	s.SetExpander(staticExpander{"knows": {"knows", "advisor"}})
	it, err = s.RelationshipsOfType("knows", true)
	require.NoError(t, err)
	require.Len(t, it.Collect(), 2)
	require.Equal(t, []string{"advisor", "knows"}, s.Types())
}

func TestRestoreAndClear(t *testing.T) {
	s := NewStore()
	tb := refs.NewTable()
	s.UpsertNode(tb.Intern("ex:a"), []string{"A"}, Properties{"p": graph.Float(1.5)})
	s.CreateNode([]string{"B"}, nil)
	s.UpsertRelationship("rel", 0, tb.Intern("ex:a"), tb.Intern("ex:c"), nil)

	nodes := s.Nodes().Collect()
	rels := s.Relationships().Collect()
	require.Len(t, nodes, 3)
	require.Len(t, rels, 1)

	s.Clear()
	require.Equal(t, 0, s.NodeCount())
	require.Empty(t, s.Labels())

	require.Error(t, s.RestoreNode(nodes[1]))
	for _, n := range nodes {
		require.NoError(t, s.RestoreNode(n))
	}
	for _, r := range rels {
		require.NoError(t, s.RestoreRelationship(r))
	}
	require.Equal(t, nodes, s.Nodes().Collect())
	require.Equal(t, rels, s.Relationships().Collect())

	// upserts keep merging into restored nodes
	id := s.UpsertNode(tb.Intern("ex:a"), []string{"A2"}, nil)
	require.Equal(t, NodeID(1), id)
}
