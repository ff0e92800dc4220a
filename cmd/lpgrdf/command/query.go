package command

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/lpgrdf/graph/lpg"
)

func registerQueryFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("inferred", true, "include members of sub-labels and sub-types")
	cmd.Flags().IntP("limit", "n", 100, "limit a number of results")
	registerLoadFlags(cmd)
}

// printResults writes one JSON object per line.
func printResults(cmd *cobra.Command, n int, get func(i int) interface{}) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	for i := 0; i < n && (limit <= 0 || i < limit); i++ {
		if err := enc.Encode(get(i)); err != nil {
			return err
		}
	}
	return nil
}

func printNodes(cmd *cobra.Command, nodes []lpg.Node) error {
	return printResults(cmd, len(nodes), func(i int) interface{} { return nodes[i] })
}

func newQuerySubCmd(use, short string, args cobra.PositionalArgs, run func(cmd *cobra.Command, h *handle, args []string) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			ctx, cancel := getContext()
			defer cancel()
			h, err := openForQueries(ctx, cmd)
			if err != nil {
				return err
			}
			defer h.Close()
			return run(cmd, h, args)
		},
	}
	registerQueryFlags(cmd)
	return cmd
}

func nodeArg(h *handle, arg string) (lpg.Node, error) {
	if id, err := strconv.ParseUint(arg, 10, 64); err == nil {
		return h.e.NodeByID(lpg.NodeID(id))
	}
	if n, ok := h.e.NodeByURI(arg); ok {
		return n, nil
	}
	return lpg.Node{}, lpg.ErrNodeNotFound
}

func NewQueryCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "query",
		Aliases: []string{"qu"},
		Short:   "Query the property graph and print results.",
	}
	nodes := newQuerySubCmd("nodes <label>", "Print nodes with a label.", cobra.ExactArgs(1),
		func(cmd *cobra.Command, h *handle, args []string) error {
			inferred, _ := cmd.Flags().GetBool("inferred")
			var (
				out []lpg.Node
				err error
			)
			if cmd.Flags().Changed("depth") {
				depth, _ := cmd.Flags().GetInt("depth")
				out, err = h.e.NodesWithLabelDepth(args[0], depth)
			} else {
				out, err = h.e.NodesWithLabel(args[0], inferred)
			}
			if err != nil {
				return err
			}
			return printNodes(cmd, out)
		})
	nodes.Flags().Int("depth", -1, "number of subclass levels to follow")

	rels := newQuerySubCmd("rels <type>", "Print relationships of a type.", cobra.ExactArgs(1),
		func(cmd *cobra.Command, h *handle, args []string) error {
			inferred, _ := cmd.Flags().GetBool("inferred")
			out, err := h.e.RelationshipsOfType(args[0], inferred)
			if err != nil {
				return err
			}
			return printResults(cmd, len(out), func(i int) interface{} { return out[i] })
		})

	linked := newQuerySubCmd("linked <node>", "Print nodes linked to a node given by ID or URI.", cobra.ExactArgs(1),
		func(cmd *cobra.Command, h *handle, args []string) error {
			n, err := nodeArg(h, args[0])
			if err != nil {
				return err
			}
			inferred, _ := cmd.Flags().GetBool("inferred")
			typ, _ := cmd.Flags().GetString("type")
			s, _ := cmd.Flags().GetString("dir")
			dir, err := lpg.ParseDirection(s)
			if err != nil {
				return err
			}
			out, err := h.e.LinkedNodes(n.ID, typ, dir, inferred)
			if err != nil {
				return err
			}
			return printNodes(cmd, out)
		})
	linked.Flags().String("type", "", "relationship type to follow; all types if empty")
	linked.Flags().String("dir", "out", `direction of relationships ("out", "in", "both")`)

	node := newQuerySubCmd("node <node>", "Print a node given by ID or URI.", cobra.ExactArgs(1),
		func(cmd *cobra.Command, h *handle, args []string) error {
			n, err := nodeArg(h, args[0])
			if err != nil {
				return err
			}
			return printNodes(cmd, []lpg.Node{n})
		})

	stats := newQuerySubCmd("stats", "Print statistics about the database.", cobra.NoArgs,
		func(cmd *cobra.Command, h *handle, args []string) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "\t")
			return enc.Encode(h.e.Stats())
		})

	root.AddCommand(nodes, rels, linked, node, stats)
	return root
}
