package command

import (
	"context"
	"net"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/lpgrdf"
	"github.com/cayleygraph/lpgrdf/clog"
	"github.com/cayleygraph/lpgrdf/config"
	lpgrdfhttp "github.com/cayleygraph/lpgrdf/server/http"
)

func NewHttpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve an HTTP endpoint on the given host and port.",
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

			cfg := h.cfg.HTTP
			api := lpgrdfhttp.NewAPI(h.e, lpgrdfhttp.CORS, lpgrdfhttp.LogRequest)
			api.SetReadOnly(cfg.ReadOnly)
			api.SetQueryTimeout(cfg.Timeout)
			api.SetBatchSize(h.cfg.Import.Batch)
			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
				api.SetQueryLimit(limit)
			}
			if h.persistent {
				api.SetCommit(func(ctx context.Context, _ *lpgrdf.Engine) error {
					return h.Save(ctx)
				})
			}

			host := cfg.Host
			phost := host
			if host, port, err := net.SplitHostPort(host); err == nil && host == "" {
				phost = net.JoinHostPort("localhost", port)
			}
			clog.Infof("listening on %s, API at http://%s/api/v1/", host, phost)
			return lpgrdfhttp.ListenAndServe(ctx, host, api)
		},
	}
	cmd.Flags().String("host", "127.0.0.1:64210", "host:port to listen on")
	cmd.Flags().Bool("read_only", false, "disable imports and clearing via HTTP")
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "elapsed time until an individual query times out")
	cmd.Flags().IntP("limit", "n", 0, "maximal number of results returned by list endpoints")
	registerLoadFlags(cmd)
	viper.BindPFlag(config.KeyHost, cmd.Flags().Lookup("host"))
	viper.BindPFlag(config.KeyReadOnly, cmd.Flags().Lookup("read_only"))
	viper.BindPFlag(config.KeyTimeout, cmd.Flags().Lookup("timeout"))
	return cmd
}
