package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// keysCheckCmd represents the keys check command
var keysCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the secret configuration",
	Long: `Resolve the configured sources exactly as the server does at startup.
Exits non-zero when the configuration is invalid, for example when two
identifiers share the same secret.

Example:
  secretkeyctl keys check
  secretkeyctl --config /etc/secretkey/config.yaml keys check`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := buildStore(cmd, cfg)
		if err != nil {
			return err
		}

		if store.Len() == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: no secrets found under %s; the secret key scheme will abstain\n",
				cfg.Auth.SecretKey.ConfigurationKey)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d secrets for %d identifiers\n", store.Len(), len(store.Identifiers()))
		return nil
	},
}

func init() {
	keysCmd.AddCommand(keysCheckCmd)
}
