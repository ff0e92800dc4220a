package command

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/lpgrdf/config"
	"github.com/cayleygraph/lpgrdf/internal/repl"
)

func NewReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drop into a REPL to import triples and query the property graph.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)

			ctx, cancel := getContext()
			defer cancel()

			h, err := openForQueries(ctx, cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			timeout := viper.GetDuration(config.KeyTimeout)
			if err = repl.Repl(ctx, h.e, timeout); err != nil {
				return err
			}
			return h.Save(ctx)
		},
	}
	registerLoadFlags(cmd)
	return cmd
}
