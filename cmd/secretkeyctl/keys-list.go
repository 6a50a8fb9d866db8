package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rhuss/secretkey/pkg/auth/secretkey"
)

// keysListCmd represents the keys list command
var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List identifiers and secret fingerprints",
	Long: `List every caller identifier with a short SHA-256 fingerprint of its
secret. The fingerprint lets operators compare deployments without
revealing the secret itself.

The fingerprint is the first 48 bits of an unsalted SHA-256. It does not
protect a short or guessable secret: anyone holding the output can test
candidate secrets offline. Treat the output as sensitive unless every
secret is long and random.

The single-secret configuration maps its secret to the empty identifier,
shown as (default).

Example:
  secretkeyctl keys list
  secretkeyctl keys list --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, err := buildStore(cmd, cfg)
		if err != nil {
			return err
		}

		entries := listEntries(store)
		if output == "json" {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "IDENTIFIER\tFINGERPRINT")
		for _, e := range entries {
			id := e.Identifier
			if id == "" {
				id = "(default)"
			}
			fmt.Fprintf(w, "%s\t%s\n", id, e.Fingerprint)
		}
		return w.Flush()
	},
}

func init() {
	keysCmd.AddCommand(keysListCmd)
	keysListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

type keyEntry struct {
	Identifier  string `json:"identifier"`
	Fingerprint string `json:"fingerprint"`
}

// listEntries returns one entry per secret, sorted by identifier then
// fingerprint.
func listEntries(store *secretkey.Store) []keyEntry {
	entries := make([]keyEntry, 0, store.Len())
	store.Range(func(digest secretkey.Digest, identifier string) bool {
		entries = append(entries, keyEntry{Identifier: identifier, Fingerprint: digest.Fingerprint()})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Identifier != entries[j].Identifier {
			return entries[i].Identifier < entries[j].Identifier
		}
		return entries[i].Fingerprint < entries[j].Fingerprint
	})
	return entries
}
