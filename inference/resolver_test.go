package inference

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/graph/refs"
)

type mapVocab struct {
	tb    *refs.Table
	names [2]map[refs.Handle][]string
}

func newMapVocab(tb *refs.Table) *mapVocab {
	return &mapVocab{tb: tb, names: [2]map[refs.Handle][]string{{}, {}}}
}

func (v *mapVocab) add(iri, name string, kind Relation) refs.Handle {
	h := v.tb.Intern(iri)
	v.names[kind][h] = append(v.names[kind][h], name)
	return h
}

func (v *mapVocab) Resources(name string, kind Relation) []refs.Handle {
	var out []refs.Handle
	for h, names := range v.names[kind] {
		for _, n := range names {
			if n == name {
				out = append(out, h)
				break
			}
		}
	}
	return out
}

func (v *mapVocab) Names(h refs.Handle, kind Relation) []string {
	return v.names[kind][h]
}

type fixture struct {
	tb    *refs.Table
	ix    *Index
	store *lpg.Store
	vocab *mapVocab
	res   *Resolver
}

func newFixture() *fixture {
	f := &fixture{tb: refs.NewTable(), ix: NewIndex(), store: lpg.NewStore()}
	f.vocab = newMapVocab(f.tb)
	f.res = NewResolver(f.ix, f.store, f.vocab)
	f.store.SetExpander(f.res)
	return f
}

func resources(nodes []lpg.Node) []refs.Handle {
	var out []refs.Handle
	for _, n := range nodes {
		out = append(out, n.Resource)
	}
	return out
}

func TestNodesWithInferredLabel(t *testing.T) {
	f := newFixture()
	student := f.vocab.add("ex:Student", "Student", SubClassOf)
	person := f.vocab.add("ex:Person", "Person", SubClassOf)
	alice := f.tb.Intern("ex:alice")
	f.store.UpsertNode(alice, []string{"Student"}, nil)

	it, err := f.store.NodesWithLabel("Person", false)
	require.NoError(t, err)
	require.Equal(t, 0, it.Len())

	// edge added after the node exists
	f.ix.AddEdge(student, person, SubClassOf)
	it, err = f.store.NodesWithLabel("Person", true)
	require.NoError(t, err)
	require.Equal(t, []refs.Handle{alice}, resources(it.Collect()))

	it, err = f.res.NodesWithLabel("Person", 0)
	require.NoError(t, err)
	require.Equal(t, 0, it.Len())
	it, err = f.res.NodesWithLabel("Person", 1)
	require.NoError(t, err)
	require.Equal(t, 1, it.Len())
}

func TestUnresolvableLabel(t *testing.T) {
	f := newFixture()
	_, err := f.res.NodesWithLabel("Ghost", -1)
	require.True(t, errors.Is(err, ErrUnresolvableLabel))
	var lerr *LabelError
	require.True(t, errors.As(err, &lerr))
	require.Equal(t, "Ghost", lerr.Label)

	// literal fallback: a label no resource stands for but nodes carry
	f.store.CreateNode([]string{"Native"}, nil)
	it, err := f.res.NodesWithLabel("Native", -1)
	require.NoError(t, err)
	require.Equal(t, 1, it.Len())

	_, err = f.res.RelationshipsOfType("GHOST", -1)
	require.True(t, errors.Is(err, ErrUnresolvableLabel))
	require.Contains(t, err.Error(), "relationship type")
}

func TestRelationshipsOfInferredType(t *testing.T) {
	f := newFixture()
	knows := f.vocab.add("ex:knows", "knows", SubPropertyOf)
	advisor := f.vocab.add("ex:advisor", "advisor", SubPropertyOf)
	a, b, c := f.tb.Intern("ex:a"), f.tb.Intern("ex:b"), f.tb.Intern("ex:c")
	f.store.UpsertRelationship("knows", knows, a, b, nil)
	f.store.UpsertRelationship("advisor", advisor, a, c, nil)
	f.ix.AddEdge(advisor, knows, SubPropertyOf)

	it, err := f.res.RelationshipsOfType("knows", -1)
	require.NoError(t, err)
	require.Equal(t, 2, it.Len())

	it, err = f.store.RelationshipsOfType("knows", false)
	require.NoError(t, err)
	require.Equal(t, 1, it.Len())

	an, _ := f.store.NodeByResource(a)
	linked, err := f.res.LinkedNodes(an.ID, "knows", lpg.Outgoing, false)
	require.NoError(t, err)
	require.Equal(t, []refs.Handle{b}, resources(linked))

	linked, err = f.res.LinkedNodes(an.ID, "knows", lpg.Outgoing, true)
	require.NoError(t, err)
	require.ElementsMatch(t, []refs.Handle{b, c}, resources(linked))

	cn, _ := f.store.NodeByResource(c)
	linked, err = f.res.LinkedNodes(cn.ID, "", lpg.Incoming, false)
	require.NoError(t, err)
	require.Equal(t, []refs.Handle{a}, resources(linked))

	linked, err = f.res.LinkedNodes(cn.ID, "", lpg.Outgoing, false)
	require.NoError(t, err)
	require.Empty(t, linked)

	_, err = f.res.LinkedNodes(99, "", lpg.Both, false)
	require.True(t, errors.Is(err, lpg.ErrNodeNotFound))
}

func TestExpandCycle(t *testing.T) {
	f := newFixture()
	a := f.vocab.add("ex:A", "A", SubClassOf)
	b := f.vocab.add("ex:B", "B", SubClassOf)
	f.ix.AddEdge(a, b, SubClassOf)
	f.ix.AddEdge(b, a, SubClassOf)
	got, err := f.res.ExpandLabel("A")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"A", "B"}, got)
	require.Equal(t, "A", got[0])
}

func TestExpandSkipsFormerNames(t *testing.T) {
	f := newFixture()
	f.vocab.add("ex:Student", "Student", SubClassOf)
	student := f.vocab.add("ex:Student", "Pupil", SubClassOf)
	senior := f.vocab.add("ex:Senior", "Senior", SubClassOf)
	f.ix.AddEdge(senior, student, SubClassOf)

	got, err := f.res.ExpandLabel("Pupil")
	require.NoError(t, err)
	require.Equal(t, []string{"Pupil", "Senior"}, got)

	old, pupil, sen := f.tb.Intern("ex:alice"), f.tb.Intern("ex:bob"), f.tb.Intern("ex:carol")
	f.store.UpsertNode(old, []string{"Student"}, nil)
	f.store.UpsertNode(pupil, []string{"Pupil"}, nil)
	f.store.UpsertNode(sen, []string{"Senior"}, nil)
	it, err := f.res.NodesWithLabel("Pupil", -1)
	require.NoError(t, err)
	require.ElementsMatch(t, []refs.Handle{pupil, sen}, resources(it.Collect()))
}
