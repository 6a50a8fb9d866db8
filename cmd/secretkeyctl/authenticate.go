package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/rhuss/secretkey/pkg/auth/secretkey"
	"github.com/rhuss/secretkey/pkg/service"
)

// errNotAuthenticated makes the command exit non-zero after printing the outcome.
var errNotAuthenticated = errors.New("not authenticated")

// authenticateCmd represents the authenticate command
var authenticateCmd = &cobra.Command{
	Use:   "authenticate",
	Short: "Evaluate an Authorization header offline",
	Long: `Evaluate one Authorization header against the configured secrets and
print the outcome. On success the resulting identity is printed as JSON.
Exits non-zero for any outcome other than authenticated.

Example:
  secretkeyctl authenticate --header "Bearer s3cr3t"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		header, _ := cmd.Flags().GetString("header")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		authn, _, err := service.NewSecretKey(cmd.Context(), cfg.Auth, nil)
		if err != nil {
			return err
		}

		h := http.Header{}
		if header != "" {
			h.Set("Authorization", header)
		}
		res := authn.Evaluate(h)

		fmt.Fprintf(cmd.OutOrStdout(), "outcome: %s\n", res.Outcome)
		if res.Outcome != secretkey.Authenticated {
			return errNotAuthenticated
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Identity)
	},
}

func init() {
	rootCmd.AddCommand(authenticateCmd)
	authenticateCmd.Flags().String("header", "", "Authorization header value, e.g. \"Bearer <secret>\"")
}
