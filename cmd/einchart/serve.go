package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/server"
	"github.com/tchandrakar/ein-chart-widget-public/pkg/einchart/source"
)

func newServeCmd() *cobra.Command {
	var (
		flags  sourceFlags
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			flags.apply(cmd.Flags(), cfg)
			if cmd.Flags().Changed("listen") {
				cfg.Server.Listen = listen
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			metrics := server.NewMetrics()
			fetcher := newFetcher(cfg, source.WithObserver(metrics.ObserveFetch))
			srv := server.New(fetcher, server.Config{
				Build:   cfg.BuildOptions(),
				Render:  cfg.RenderOptions(),
				Refresh: cfg.Server.Refresh,
			}, server.WithLogger(slog.Default()), server.WithMetrics(metrics))

			// A failed first build is retried on the next request.
			srv.Refresh(cmd.Context())
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Listen)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "Listen address (default :8080)")
	return cmd
}
