/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every review stored by the program",
	Long: `List the reviews stored in accounts owned by the review program.
Accounts that are empty or fail to decode are skipped.

Examples:
  reviewchain list
  reviewchain list --format json
  reviewchain list --cached`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cached, _ := cmd.Flags().GetBool("cached")
		format, _ := cmd.Flags().GetString("format")

		svc, cleanup, err := buildService(cmd, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		list := svc.List
		if cached {
			list = svc.ListCached
		}
		listing, err := list(cmd.Context())
		if err != nil {
			return err
		}
		return printListing(cmd.OutOrStdout(), listing, format)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("cached", false, "Decode the accounts from the last listing pass instead of the cluster")
	listCmd.Flags().String("format", "table", "Output format: table or json")
}
