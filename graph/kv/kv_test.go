package kv_test

import (
	"context"
	"testing"

	hkv "github.com/hidal-go/hidalgo/kv"
	"github.com/hidal-go/hidalgo/kv/kvdebug"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/graph"
	"github.com/cayleygraph/lpgrdf/graph/kv"
	"github.com/cayleygraph/lpgrdf/graph/kv/btree"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
	"github.com/cayleygraph/lpgrdf/schema"
	"github.com/cayleygraph/lpgrdf/voc"
)

const debug = false

const ex = "http://example.org/"

func newDB(t testing.TB) hkv.KV {
	db := btree.New()
	if !debug {
		return db
	}
	d := kvdebug.New(db)
	d.Log(true)
	t.Cleanup(func() {
		t.Logf("kv stats: %+v", d.Stats())
	})
	return d
}

func newEngine(t testing.TB) *lpgrdf.Engine {
	opts := lpgrdf.DefaultOptions()
	opts.VocabURIs = lpgrdf.ShortenVocabURIs
	e := lpgrdf.New(opts, nil)
	id, err := e.Schemas().AddSchema("ex", ex)
	require.NoError(t, err)
	require.NoError(t, e.Schemas().AddMapping(id, "", "Student", "Student", schema.Label))
	require.NoError(t, e.Schemas().AddMapping(id, "", "Person", "Person", schema.Label))

	tb := e.Refs()
	_, err = e.Ingest([]graph.Triple{
		graph.Make(tb, ex+"alice", voc.RDFType, ex+"Student"),
		graph.Make(tb, ex+"Student", voc.RDFSSubClassOf, ex+"Person"),
		graph.Make(tb, "_:b1", ex+"knows", ex+"alice"),
		graph.MakeLiteral(tb, ex+"alice", ex+"age", graph.Literal{Lexical: "30", Datatype: "http://www.w3.org/2001/XMLSchema#integer"}),
		graph.MakeLiteral(tb, ex+"alice", ex+"name", graph.Literal{Lexical: "Alice", Lang: "en"}),
	}, id)
	require.NoError(t, err)
	e.CreateNode([]string{"Note"}, lpg.Properties{"text": graph.String("native")})
	return e
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	e := newEngine(t)
	require.NoError(t, kv.Save(ctx, db, e))

	e2 := lpgrdf.New(e.Options(), nil)
	require.NoError(t, kv.Load(ctx, db, e2))

	// handles are reassigned in saved order, bucket markers are not records
	require.Equal(t, e.Refs().Names(), e2.Refs().Names())
	require.Equal(t, e.Triples(), e2.Triples())
	require.Equal(t, e.Nodes(), e2.Nodes())
	require.Equal(t, e.Relationships(), e2.Relationships())
	st, st2 := e.Stats(), e2.Stats()
	require.Equal(t, st.Resources, st2.Resources)
	require.Equal(t, st.Labels, st2.Labels)
	require.Equal(t, st.Types, st2.Types)
	require.Equal(t, st.SubClassEdges, st2.SubClassEdges)

	sch, ok := e2.Schemas().SchemaByName("ex")
	require.True(t, ok)
	require.Equal(t, sch, e2.ActiveSchema())
	full, ok := e2.Namespaces().Lookup("ns0")
	require.True(t, ok)
	require.Equal(t, ex, full)

	nodes, err := e2.NodesWithLabel("Person", true)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	alice, ok := e2.NodeByURI(ex + "alice")
	require.True(t, ok)
	require.True(t, alice.Properties["ns0__age"].Equal(graph.Int(30)))
}

func TestSaveReplaces(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	require.NoError(t, kv.Save(ctx, db, newEngine(t)))
	require.NoError(t, kv.Save(ctx, db, lpgrdf.New(lpgrdf.DefaultOptions(), nil)))

	e := newEngine(t)
	require.NoError(t, kv.Load(ctx, db, e))
	st := e.Stats()
	require.Equal(t, 0, st.Triples)
	require.Equal(t, 0, st.Nodes)
	require.Equal(t, 0, st.SubClassEdges)
}

func TestSaveTwice(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)
	defer db.Close()

	e := newEngine(t)
	require.NoError(t, kv.Save(ctx, db, e))
	require.NoError(t, kv.Save(ctx, db, e))

	e2 := lpgrdf.New(e.Options(), nil)
	require.NoError(t, kv.Load(ctx, db, e2))
	require.Equal(t, e.Refs().Names(), e2.Refs().Names())
	require.Equal(t, e.Stats().Triples, e2.Stats().Triples)
	require.Equal(t, e.Relationships(), e2.Relationships())
}

func TestLoadEmpty(t *testing.T) {
	db := newDB(t)
	defer db.Close()
	err := kv.Load(context.Background(), db, lpgrdf.New(lpgrdf.DefaultOptions(), nil))
	require.ErrorIs(t, err, kv.ErrNotInitialized)
}

func TestOpen(t *testing.T) {
	require.Contains(t, kv.Backends(), btree.Type)
	require.False(t, kv.IsPersistent(btree.Type))
	require.False(t, kv.IsPersistent("nope"))
	db, err := kv.Open(btree.Type, "")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = kv.Open("nope", "")
	require.Error(t, err)
}
