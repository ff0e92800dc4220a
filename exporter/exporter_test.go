package exporter_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/exporter"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/loader"
	"github.com/cayleygraph/lpgrdf/schema"
	"github.com/cayleygraph/lpgrdf/voc"
)

const ex = "http://example.org/"

const data = `<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .
<http://example.org/alice> <http://example.org/name> "Alice" .
<http://example.org/bob> <http://example.org/knows> <http://example.org/alice> .
`

func newEngine(t testing.TB) *lpgrdf.Engine {
	e := lpgrdf.New(lpgrdf.DefaultOptions(), nil)
	_, err := loader.Load(context.Background(), e, strings.NewReader(data), loader.Options{})
	require.NoError(t, err)
	return e
}

func TestResourceQuads(t *testing.T) {
	x := exporter.New(newEngine(t))
	quads, err := x.ResourceQuads(ex + "alice")
	require.NoError(t, err)
	require.Equal(t, []quad.Quad{
		quad.Make(quad.IRI(ex+"alice"), quad.IRI(voc.RDFType), quad.IRI(ex+"Person"), nil),
		quad.Make(quad.IRI(ex+"alice"), quad.IRI(ex+"name"), quad.String("Alice"), nil),
	}, quads)

	quads, err = x.ResourceQuads(ex + "nobody")
	require.NoError(t, err)
	require.Empty(t, quads)
}

func TestNodeQuads(t *testing.T) {
	e := newEngine(t)
	id, err := e.Schemas().AddSchema("ex", ex)
	require.NoError(t, err)
	require.NoError(t, e.Schemas().AddMapping(id, "", "Human", "Human", schema.Label))
	require.NoError(t, e.Schemas().AddMapping(id, "", "fullName", "name", schema.PropertyKey))
	require.NoError(t, e.SetActiveSchema(id))

	alice, ok := e.NodeByURI(ex + "alice")
	require.True(t, ok)
	n := e.CreateNode([]string{"Human"}, lpg.Properties{
		"name": graph.String("Ada"),
		"tag":  graph.Array(graph.String("x"), graph.Int(2)),
	})
	_, err = e.CreateRelationship("knows", n, alice.ID, nil)
	require.NoError(t, err)

	x := exporter.New(e)
	quads, err := x.NodeQuads(n)
	require.NoError(t, err)
	// alice and bob are the only imported nodes, Person is a label
	require.Equal(t, lpg.NodeID(3), n)
	s := quad.BNode("n" + strconv.FormatUint(uint64(n), 10))
	require.Equal(t, []quad.Quad{
		quad.Make(s, quad.IRI(voc.RDFType), quad.IRI(ex+"Human"), nil),
		quad.Make(s, quad.IRI(ex+"fullName"), quad.String("Ada"), nil),
		quad.Make(s, quad.IRI(exporter.DefaultBase+"tag"), quad.String("x"), nil),
		quad.Make(s, quad.IRI(exporter.DefaultBase+"tag"), graph.LiteralOf(graph.Int(2)).Quad(), nil),
		quad.Make(s, quad.IRI(exporter.DefaultBase+"knows"), quad.IRI(ex+"alice"), nil),
	}, quads)

	// imported nodes are described by their triples
	quads, err = x.NodeQuads(alice.ID)
	require.NoError(t, err)
	require.Len(t, quads, 2)

	_, err = x.NodeQuads(100)
	require.ErrorIs(t, err, lpg.ErrNodeNotFound)
}

func TestWrite(t *testing.T) {
	x := exporter.New(newEngine(t))
	quads, err := x.Quads()
	require.NoError(t, err)
	var buf bytes.Buffer
	n, err := exporter.Write(&buf, "nquads", quads)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, data, buf.String())

	_, err = exporter.Write(&buf, "nope", quads)
	require.Error(t, err)
}

func TestDumpRoundTrip(t *testing.T) {
	x := exporter.New(newEngine(t))
	path := filepath.Join(t.TempDir(), "dump.nq.gz")
	n, err := x.Dump(path, "")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	e := lpgrdf.New(lpgrdf.DefaultOptions(), nil)
	st, err := loader.LoadPath(context.Background(), e, path, loader.Options{})
	require.NoError(t, err)
	require.Equal(t, 3, st.Triples)
	node, ok := e.NodeByURI(ex + "alice")
	require.True(t, ok)
	require.True(t, node.HasLabel("Person"))
}

func TestDocument(t *testing.T) {
	x := exporter.New(newEngine(t))
	doc, err := x.ResourceDocument(ex + "alice")
	require.NoError(t, err)
	require.Equal(t, ex+"alice", doc["@id"])
	require.Contains(t, doc, "@context")
	require.Equal(t, "Alice", doc[ex+"name"])

	doc, err = x.ResourceDocument(ex + "bob")
	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"@id": ex + "alice"}, doc[ex+"knows"])
}
