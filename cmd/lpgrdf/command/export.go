package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/exporter"
	"github.com/cayleygraph/lpgrdf/graph/lpg"
)

func dumpDatabase(h *handle, path string, typ string) error {
	if path == "-" {
		clog.Infof("writing quads to stdout")
	}
	n, err := exporter.New(h.e).Dump(path, typ)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("%d entries were written to %q\n", n, path)
	}
	return nil
}

func printDocument(doc map[string]interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "\t")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write stored triples to a quad file, or describe a resource or node as JSON-LD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			ctx, cancel := getContext()
			defer cancel()
			h, err := openForQueries(ctx, cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			x := exporter.New(h.e)
			if uri, _ := cmd.Flags().GetString("uri"); uri != "" {
				doc, err := x.ResourceDocument(uri)
				if err != nil {
					return err
				}
				return printDocument(doc)
			}
			if node, _ := cmd.Flags().GetString("node"); node != "" {
				id, err := strconv.ParseUint(node, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid node id: %q", node)
				}
				doc, err := x.NodeDocument(lpg.NodeID(id))
				if err != nil {
					return err
				}
				return printDocument(doc)
			}
			dump, _ := cmd.Flags().GetString(flagDump)
			if dump == "" && len(args) == 1 {
				dump = args[0]
			} else if len(args) > 1 {
				return errors.New("too many arguments provided, expected at most 1")
			}
			if dump == "" {
				dump = "-"
			}
			typ, _ := cmd.Flags().GetString(flagDumpFormat)
			return dumpDatabase(h, dump, typ)
		},
	}
	cmd.Flags().String("uri", "", "describe a resource as JSON-LD")
	cmd.Flags().String("node", "", "describe a node by ID as JSON-LD")
	registerLoadFlags(cmd)
	registerDumpFlags(cmd)
	return cmd
}
