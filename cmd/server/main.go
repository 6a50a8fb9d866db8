// Command server runs the secretkey authentication service.
//
// Configuration is layered (see pkg/config): built-in defaults, a YAML
// file (--config, SECRETKEY_CONFIG, ./config.yaml, /etc/secretkey/config.yaml),
// then SECRETKEY_* environment overrides.
//
// Secrets are read from the sources named in auth.secret_key.sources.
// With the default "env" source and configuration key:
//
//	AUTH_SECRET_KEY=<secret>          - a single secret with an empty identifier
//	AUTH_SECRET_KEY_<id>=<secret>     - one secret per caller identifier
//
// SIGHUP rebuilds the credential store. SIGINT and SIGTERM shut down
// gracefully.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rhuss/secretkey/pkg/config"
	"github.com/rhuss/secretkey/pkg/debug"
	"github.com/rhuss/secretkey/pkg/service"
	transporthttp "github.com/rhuss/secretkey/pkg/transport/http"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve bearer secret authentication over HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := service.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting secrets watcher: %w", err)
	}
	go reloadOnHangup(ctx, svc)

	srv := transporthttp.NewServer(svc.Handler(),
		transporthttp.WithAddr(":"+strconv.Itoa(cfg.Server.Port)),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithLogger(logger),
	)
	return srv.Run(ctx)
}

// reloadOnHangup rebuilds the credential store on each SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, svc *service.Service) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			slog.Info("SIGHUP received, reloading credential store")
			if err := svc.Reload(ctx); err != nil {
				slog.Warn("keeping previous credential store", "error", err)
			}
		}
	}
}
