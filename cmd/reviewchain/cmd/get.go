/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <author> <title>",
	Short: "Get the review an author wrote for a title",
	Long: `Fetch a single review by its author's public key and title.

Example:
  reviewchain get 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU "Pizza Place"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		author, err := solana.PublicKeyFromBase58(args[0])
		if err != nil {
			return fmt.Errorf("invalid author public key: %w", err)
		}

		svc, cleanup, err := buildService(cmd, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		entry, found, err := svc.Get(cmd.Context(), author, args[1])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no review found for %q by %s", args[1], author)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Address: %s\n", entry.Address)
		printReview(out, entry.Review, entry.Initialized)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
