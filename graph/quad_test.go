package graph

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/voc"
)

func TestQuadConversion(t *testing.T) {
	tb := refs.NewTable()
	for _, q := range []quad.Quad{
		{Subject: quad.IRI("http://ex.org/a"), Predicate: quad.IRI("http://ex.org/p"), Object: quad.IRI("http://ex.org/b")},
		{Subject: quad.BNode("n1"), Predicate: quad.IRI("http://ex.org/p"), Object: quad.BNode("n2")},
		{Subject: quad.IRI("http://ex.org/a"), Predicate: quad.IRI("http://ex.org/name"), Object: quad.String("Ada")},
		{Subject: quad.IRI("http://ex.org/a"), Predicate: quad.IRI("http://ex.org/name"), Object: quad.LangString{Value: "Ada", Lang: "en"}},
		{Subject: quad.IRI("http://ex.org/a"), Predicate: quad.IRI("http://ex.org/age"), Object: quad.TypedString{Value: "36", Type: voc.XSDInteger}},
	} {
		tr, err := FromQuad(tb, q)
		require.NoError(t, err)
		got, err := ToQuad(tb, tr)
		require.NoError(t, err)
		require.Equal(t, q, got)
	}

	tr, err := FromQuad(tb, quad.Quad{Subject: quad.IRI("http://ex.org/a"), Predicate: quad.IRI("http://ex.org/age"), Object: quad.Int(36)})
	require.NoError(t, err)
	l, ok := tr.Object.Literal()
	require.True(t, ok)
	require.True(t, l.Value().Equal(Int(36)))

	_, err = FromQuad(tb, quad.Quad{Subject: quad.String("x"), Predicate: quad.IRI("p"), Object: quad.IRI("o")})
	require.Error(t, err)
	_, err = FromQuad(tb, quad.Quad{Subject: quad.IRI("s"), Predicate: quad.BNode("p"), Object: quad.IRI("o")})
	require.Error(t, err)

	_, err = ToQuad(tb, Triple{Subject: 999, Predicate: 1, Object: Resource(1)})
	require.ErrorIs(t, err, refs.ErrUnknownHandle)
}
