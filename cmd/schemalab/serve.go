package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/schemalab/insight"
	"github.com/c360studio/schemalab/service"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the workbench as a NATS service",
		Long: `Run the schema workbench as a NATS request/reply service. By
default an embedded NATS server is started on a random port; set
nats.url in the config to join an existing cluster instead.

Subjects:
  schemalab.schema.compile   compile schema text, make it active
  schemalab.schema.analyze   graph stats for the active schema
  schemalab.query.execute    parse and execute a query
  schemalab.insight.generate LLM commentary on the last result
  schemalab.service.health   liveness and counters`,
		RunE: func(cmd *cobra.Command, args []string) error {
			printBanner()

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			opts := []service.Option{service.WithLogger(slog.Default())}
			if len(cfg.Insight.Endpoints) > 0 {
				client := insight.NewClient(cfg.Insight.Endpoints,
					insight.WithTemperature(cfg.Insight.Temperature))
				opts = append(opts, service.WithInsighter(client))
			}

			svc, err := service.New(cfg, opts...)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := svc.Start(ctx); err != nil {
				return err
			}

			fmt.Printf("Serving on %s\n", svc.ClientURL())

			<-ctx.Done()
			slog.Info("Received shutdown signal")

			return svc.Stop(10 * time.Second)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")

	return cmd
}
