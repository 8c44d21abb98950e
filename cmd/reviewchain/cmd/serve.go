/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ssargent/reviewchain/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reviewchain HTTP API",
	Long: `Start an HTTP server that exposes the review operations as a REST API.

Write endpoints require the X-API-Key header when an API key is configured.
Prometheus metrics are served from /metrics.

Examples:
  reviewchain serve
  reviewchain serve --port 9000 --bind 0.0.0.0`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configFrom(cmd)
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("bind") {
			cfg.Server.Bind, _ = cmd.Flags().GetString("bind")
		}
		if cmd.Flags().Changed("api-key") {
			cfg.Server.APIKey, _ = cmd.Flags().GetString("api-key")
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		svc, cleanup, err := buildService(cmd, reg)
		if err != nil {
			return err
		}
		defer cleanup()

		logger := loggerFrom(cmd)
		if cfg.Server.APIKey == "" {
			logger.Warn().Msg("no API key configured, write endpoints are open")
		}

		server := api.NewServer(svc, api.ServerConfig{
			Bind:   cfg.Server.Bind,
			Port:   cfg.Server.Port,
			APIKey: cfg.Server.APIKey,
		}, api.NewMetrics(reg), logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx, reg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringP("bind", "b", "127.0.0.1", "Address to bind to")
	serveCmd.Flags().String("api-key", "", "API key for the write endpoints (overrides config)")
}
