package command

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/cayleygraph/quad/nquads"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/lpgrdf/config"
	"github.com/cayleygraph/lpgrdf/graph/kv/btree"
)

const testQuads = `<http://example.org/Student> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/Person> .
<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Student> .
<http://example.org/bob> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Person> .
<http://example.org/r2> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Robot> .
`

const testMappings = `schemas:
  - name: ex
    namespace: http://example.org/
    mappings:
      - local: Robot
        target: Machine
        kind: label
`

func writeFile(t testing.TB, name, data string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func setupConfig(t testing.TB) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	require.NoError(t, config.Setup(viper.GetViper(), ""))
	viper.Set(config.KeyBackend, btree.Type)
}

func queryCmd(t testing.TB, load string) *cobra.Command {
	cmd := &cobra.Command{}
	registerLoadFlags(cmd)
	if load != "" {
		require.NoError(t, cmd.Flags().Set(flagLoad, load))
	}
	return cmd
}

func TestOpenForQueries(t *testing.T) {
	setupConfig(t)
	viper.Set(config.KeyMappings, []string{writeFile(t, "mappings.yaml", testMappings)})
	viper.Set(config.KeySchema, "ex")

	ctx := context.Background()
	h, err := openForQueries(ctx, queryCmd(t, writeFile(t, "data.nq", testQuads)))
	require.NoError(t, err)
	defer h.Close()
	require.False(t, h.persistent)
	require.NotZero(t, h.schema)
	require.Equal(t, h.schema, h.e.ActiveSchema())

	nodes, err := h.e.NodesWithLabel("Person", true)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	nodes, err = h.e.NodesWithLabel("Machine", false)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	n, err := nodeArg(h, "http://example.org/alice")
	require.NoError(t, err)
	n2, err := nodeArg(h, n.ID.String())
	require.NoError(t, err)
	require.Equal(t, n, n2)
	_, err = nodeArg(h, "http://example.org/nobody")
	require.Error(t, err)

	// volatile stores are not saved
	require.NoError(t, h.Save(ctx))
}

func TestOpenUnknownSchema(t *testing.T) {
	setupConfig(t)
	viper.Set(config.KeySchema, "nope")
	_, err := openDatabase(context.Background())
	require.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	setupConfig(t)
	viper.Set(config.KeyBackend, "nope")
	_, err := openDatabase(context.Background())
	require.Error(t, err)
}

func TestLoadFormatFlag(t *testing.T) {
	setupConfig(t)
	ctx := context.Background()
	cmd := queryCmd(t, writeFile(t, "data.txt", testQuads))
	require.NoError(t, cmd.Flags().Set(flagLoadFormat, "nope"))
	_, err := openForQueries(ctx, cmd)
	require.Error(t, err)

	require.NoError(t, cmd.Flags().Set(flagLoadFormat, "nquads"))
	h, err := openForQueries(ctx, cmd)
	require.NoError(t, err)
	defer h.Close()
	require.Equal(t, 4, h.e.Stats().Triples)
}

func TestDumpDatabase(t *testing.T) {
	setupConfig(t)
	ctx := context.Background()
	h, err := openForQueries(ctx, queryCmd(t, writeFile(t, "data.nq", testQuads)))
	require.NoError(t, err)
	defer h.Close()

	out := filepath.Join(t.TempDir(), "out.nq")
	require.NoError(t, dumpDatabase(h, out, ""))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, 4, strings.Count(string(data), "\n"))
	require.Contains(t, string(data), "<http://example.org/alice> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Student> .")

	h2, err := openForQueries(ctx, queryCmd(t, out))
	require.NoError(t, err)
	defer h2.Close()
	st, st2 := h.e.Stats(), h2.e.Stats()
	require.Equal(t, st.Triples, st2.Triples)
	require.Equal(t, st.Nodes, st2.Nodes)
	require.Equal(t, st.SubClassEdges, st2.SubClassEdges)
}
