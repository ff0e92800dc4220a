package memstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
)

func makeStore(t testing.TB) (*TripleStore, *refs.Table) {
	tb := refs.NewTable()
	ts := NewTripleStore()
	for _, tr := range []graph.Triple{
		graph.Make(tb, "ex:alice", "rdf:type", "ex:Student"),
		graph.Make(tb, "ex:alice", "ex:knows", "ex:bob"),
		graph.MakeLiteral(tb, "ex:alice", "ex:name", graph.Literal{Lexical: "Alice"}),
		graph.Make(tb, "ex:bob", "ex:knows", "ex:carol"),
		graph.MakeLiteral(tb, "ex:bob", "ex:age", graph.Literal{Lexical: "30", Datatype: "xsd:integer"}),
	} {
		require.True(t, ts.Add(tr))
	}
	return ts, tb
}

func TestAddSetSemantics(t *testing.T) {
	ts, tb := makeStore(t)
	require.Equal(t, 5, ts.Size())

	require.False(t, ts.Add(graph.Make(tb, "ex:alice", "ex:knows", "ex:bob")))
	require.False(t, ts.Add(graph.MakeLiteral(tb, "ex:alice", "ex:name", graph.Literal{Lexical: "Alice"})))
	require.Equal(t, 5, ts.Size())

	// same lexical form with a language tag is a different literal
	require.True(t, ts.Add(graph.MakeLiteral(tb, "ex:alice", "ex:name", graph.Literal{Lexical: "Alice", Lang: "en"})))
	require.Equal(t, 6, ts.Size())
}

func TestIndexes(t *testing.T) {
	ts, tb := makeStore(t)
	alice, _ := tb.Lookup("ex:alice")
	knows, _ := tb.Lookup("ex:knows")
	bob, _ := tb.Lookup("ex:bob")

	got := ts.BySubject(alice).Collect()
	require.Len(t, got, 3)
	for _, tr := range got {
		require.Equal(t, alice, tr.Subject)
	}

	got = ts.ByPredicate(knows).Collect()
	require.Equal(t, []graph.Triple{
		graph.Make(tb, "ex:alice", "ex:knows", "ex:bob"),
		graph.Make(tb, "ex:bob", "ex:knows", "ex:carol"),
	}, got)

	got = ts.ByObject(bob).Collect()
	require.Equal(t, []graph.Triple{graph.Make(tb, "ex:alice", "ex:knows", "ex:bob")}, got)

	require.Equal(t, 0, ts.BySubject(tb.Intern("ex:nobody")).Len())
}

func TestIteratorRestartable(t *testing.T) {
	ts, tb := makeStore(t)
	alice, _ := tb.Lookup("ex:alice")

	it := ts.BySubject(alice)
	first := it.Collect()
	require.False(t, it.Next())
	it.Reset()
	require.Equal(t, first, it.Collect())

	// triples added after creation are not observed
	it.Reset()
	ts.Add(graph.Make(tb, "ex:alice", "ex:knows", "ex:dave"))
	require.Len(t, it.Collect(), 3)
	require.Equal(t, 4, ts.BySubject(alice).Len())

	all := ts.All()
	require.Equal(t, ts.Size(), all.Len())
	require.Len(t, all.Collect(), ts.Size())
}

func TestClear(t *testing.T) {
	ts, tb := makeStore(t)
	alice, _ := tb.Lookup("ex:alice")
	it := ts.BySubject(alice)

	ts.Clear()
	require.Equal(t, 0, ts.Size())
	require.False(t, it.Next())
	require.Equal(t, 0, ts.All().Len())

	tr := graph.Make(tb, "ex:alice", "ex:knows", "ex:bob")
	require.False(t, ts.Has(tr))
	require.True(t, ts.Add(tr))
	require.True(t, ts.Has(tr))
}
