package loader_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/refs"
	"github.com/cayleygraph/lpgrdf/loader"
)

const data = `<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Student> .
<http://example.org/Student> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Person> .
<http://example.org/alice> <http://example.org/name> "Alice"@en .
<http://example.org/alice> <http://example.org/age> "30"^^<http://www.w3.org/2001/XMLSchema#integer> .
_:b0 <http://example.org/knows> <http://example.org/alice> .
`

func TestFormat(t *testing.T) {
	f, err := loader.Format("", "data/file.nq.gz")
	require.NoError(t, err)
	require.Equal(t, "nquads", f.Name)

	f, err = loader.Format("", "doc.jsonld")
	require.NoError(t, err)
	require.Equal(t, "jsonld", f.Name)

	f, err = loader.Format("", "noext")
	require.NoError(t, err)
	require.Equal(t, loader.DefaultFormat, f.Name)

	_, err = loader.Format("turtle-ish", "")
	require.Error(t, err)
}

func TestReadAll(t *testing.T) {
	tb := refs.NewTable()
	f, err := loader.Format("nquads", "")
	require.NoError(t, err)
	triples, err := loader.ReadAll(strings.NewReader(data), f, tb)
	require.NoError(t, err)
	require.Len(t, triples, 5)

	l, ok := triples[2].Object.Literal()
	require.True(t, ok)
	require.Equal(t, graph.Literal{Lexical: "Alice", Lang: "en"}, l)
	l, _ = triples[3].Object.Literal()
	require.True(t, l.Value().Equal(graph.Int(30)))

	s, err := tb.Resolve(triples[4].Subject)
	require.NoError(t, err)
	require.True(t, refs.IsBlank(s))
}

func TestReadAllError(t *testing.T) {
	f, _ := loader.Format("nquads", "")
	_, err := loader.ReadAll(strings.NewReader("<a> <b> .\n"), f, refs.NewTable())
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	e := lpgrdf.New(lpgrdf.DefaultOptions(), nil)
	st, err := loader.Load(context.Background(), e, strings.NewReader(data), loader.Options{Batch: 2})
	require.NoError(t, err)
	require.Equal(t, 5, st.Triples)
	require.Equal(t, 1, st.Edges)

	nodes, err := e.NodesWithLabel("Person", true)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	// rdf:type becomes a label, not a relationship
	alice, ok := e.NodeByURI("http://example.org/alice")
	require.True(t, ok)
	require.True(t, alice.HasLabel("Student"))
	require.NotContains(t, e.Stats().Types, "type")

	st, err = loader.Load(context.Background(), e, strings.NewReader(data), loader.Options{})
	require.NoError(t, err)
	require.Equal(t, 5, st.Duplicates)
	require.Equal(t, 0, st.Triples)
}

func TestLoadHierarchy(t *testing.T) {
	e := lpgrdf.New(lpgrdf.DefaultOptions(), nil)
	st, err := loader.Load(context.Background(), e, strings.NewReader(data), loader.Options{Hierarchy: true})
	require.NoError(t, err)
	require.Equal(t, 1, st.Edges)
	require.Equal(t, 0, e.Stats().Triples)
	require.Equal(t, 1, e.Stats().SubClassEdges)
}

func TestLoadCanceled(t *testing.T) {
	e := lpgrdf.New(lpgrdf.DefaultOptions(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := loader.Load(ctx, e, strings.NewReader(data), loader.Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadPathGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "data.nq.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	e := lpgrdf.New(lpgrdf.DefaultOptions(), nil)
	st, err := loader.LoadPath(context.Background(), e, path, loader.Options{})
	require.NoError(t, err)
	require.Equal(t, 5, st.Triples)

	_, err = loader.LoadPath(context.Background(), e, filepath.Join(t.TempDir(), "missing.nq"), loader.Options{})
	require.Error(t, err)
}
