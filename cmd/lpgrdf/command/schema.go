package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/lpgrdf/schema"
)

func NewSchemaCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "schema",
		Short: "Commands related to schemas renaming RDF terms",
	}
	root.AddCommand(
		newSchemaListCmd(),
		newSchemaMappingsCmd(),
		newSchemaLoadCmd(),
		newSchemaDumpCmd(),
	)
	return root
}

func withDatabase(run func(h *handle, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()
		h, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer h.Close()
		return run(h, args)
	}
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List schemas with a name or namespace containing the filter.",
		Args:  cobra.MaximumNArgs(1),
		RunE: withDatabase(func(h *handle, args []string) error {
			var filter string
			if len(args) == 1 {
				filter = args[0]
			}
			for _, s := range h.e.Schemas().ListSchemas(filter) {
				fmt.Printf("%s\t<%s>\t%d mappings\n", s.Name, s.Namespace, s.Mappings)
			}
			return nil
		}),
	}
}

func newSchemaMappingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mappings <schema> [filter]",
		Short: "List mappings of a schema.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: withDatabase(func(h *handle, args []string) error {
			id, ok := h.e.Schemas().SchemaByName(args[0])
			if !ok {
				return fmt.Errorf("%w: %q", schema.ErrUnknownSchema, args[0])
			}
			var filter string
			if len(args) == 2 {
				filter = args[1]
			}
			ms, err := h.e.Schemas().ListMappings(id, filter)
			if err != nil {
				return err
			}
			for _, m := range ms {
				fmt.Printf("<%s>\t%s\t%s\n", m.IRI(), m.Kind, m.Target)
			}
			return nil
		}),
	}
}

func newSchemaLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Add schemas and mappings from a YAML file and save them.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx, cancel := getContext()
		defer cancel()
		h, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer h.Close()
		if !h.persistent {
			return errors.New("schemas are not kept by a volatile backend; use the mappings option instead")
		}
		if err = loadMappings(h.e, args[0]); err != nil {
			return err
		}
		return h.Save(ctx)
	}
	return cmd
}

func newSchemaDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Write all schemas to stdout as YAML.",
		Args:  cobra.NoArgs,
		RunE: withDatabase(func(h *handle, args []string) error {
			return h.e.Schemas().WriteYAML(os.Stdout)
		}),
	}
}
