/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new review",
	Long: `Submit a new review signed by the configured wallet. The review is
stored at the address derived from the wallet and the title.

Example:
  reviewchain submit --title "Pizza Place" --description "Great crust" --rating 5 --location "Main St"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := reviewFromFlags(cmd)
		if err != nil {
			return err
		}

		svc, cleanup, err := buildService(cmd, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		receipt, err := svc.Submit(cmd.Context(), r)
		if err != nil {
			return err
		}
		printReceipt(cmd.OutOrStdout(), receipt)
		return nil
	},
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update a review you submitted",
	Long: `Replace the description and rating of a review the configured wallet
submitted earlier. The title selects the review.

Example:
  reviewchain update --title "Pizza Place" --description "Even better now" --rating 8 --location "Main St"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := reviewFromFlags(cmd)
		if err != nil {
			return err
		}

		svc, cleanup, err := buildService(cmd, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		receipt, err := svc.Update(cmd.Context(), r)
		if err != nil {
			return err
		}
		printReceipt(cmd.OutOrStdout(), receipt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(updateCmd)

	addReviewFlags(submitCmd)
	addReviewFlags(updateCmd)
}
