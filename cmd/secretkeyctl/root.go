package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rhuss/secretkey/pkg/auth/secretkey"
	"github.com/rhuss/secretkey/pkg/config"
	"github.com/rhuss/secretkey/pkg/debug"
	"github.com/rhuss/secretkey/pkg/service"
)

var rootCmd = &cobra.Command{
	Use:           "secretkeyctl",
	Short:         "Inspect pre-shared bearer secret configuration",
	Long:          `Inspect and check the pre-shared bearer secrets a secretkey server would load.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the YAML config file")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads the configuration named by the --config flag and sets
// up logging on stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	debug.Init(debug.Options{
		Categories: cfg.Logging.Debug,
		Level:      "WARN",
		Output:     cmd.ErrOrStderr(),
	})
	return cfg, nil
}

// buildStore resolves the configured sources into a credential store.
func buildStore(cmd *cobra.Command, cfg *config.Config) (*secretkey.Store, error) {
	src, err := service.Source(cfg.Auth.SecretKey, nil)
	if err != nil {
		return nil, err
	}
	return secretkey.Build(cmd.Context(), src, cfg.Auth.SecretKey.ConfigurationKey)
}
