/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/reviewchain/pkg/codec"
)

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a review without sending it",
	Long: `Encode a review as instruction data or as an account record and print
the encoded bytes.

Examples:
  reviewchain encode --title "Pizza Place" --description "Great crust" --rating 5 --location "Main St"
  reviewchain encode --title "Pizza Place" --rating 5 --variant update --format base64
  reviewchain encode --title "Pizza Place" --rating 5 --account`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := reviewFromFlags(cmd)
		if err != nil {
			return err
		}
		variant, _ := cmd.Flags().GetString("variant")
		account, _ := cmd.Flags().GetBool("account")
		format, _ := cmd.Flags().GetString("format")

		return runEncode(cmd.OutOrStdout(), codec.NewReviewCodec(loggerFrom(cmd)), r, variant, account, format)
	},
}

func runEncode(w io.Writer, c *codec.ReviewCodec, r codec.Review, variant string, account bool, format string) error {
	var (
		data []byte
		err  error
	)
	if account {
		data, err = c.EncodeAccount(r, true)
	} else {
		v, perr := parseVariant(variant)
		if perr != nil {
			return perr
		}
		data, err = c.EncodeInstruction(v, r)
	}
	if err != nil {
		return err
	}

	out, err := formatBytes(data, format)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

func parseVariant(s string) (codec.Variant, error) {
	switch s {
	case "", "add":
		return codec.VariantAddReview, nil
	case "update":
		return codec.VariantUpdateReview, nil
	default:
		return 0, fmt.Errorf("unknown variant %q (want add or update)", s)
	}
}

func formatBytes(data []byte, format string) (string, error) {
	switch format {
	case "", "hex":
		return hex.EncodeToString(data), nil
	case "base64":
		return base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unknown format %q (want hex or base64)", format)
	}
}

func reviewFromFlags(cmd *cobra.Command) (codec.Review, error) {
	title, _ := cmd.Flags().GetString("title")
	description, _ := cmd.Flags().GetString("description")
	rating, _ := cmd.Flags().GetUint8("rating")
	location, _ := cmd.Flags().GetString("location")

	if title == "" {
		return codec.Review{}, fmt.Errorf("--title is required")
	}
	return codec.Review{
		Title:       title,
		Description: description,
		Rating:      rating,
		Location:    location,
	}, nil
}

func addReviewFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Restaurant name (seeds the review address)")
	cmd.Flags().String("description", "", "Review text")
	cmd.Flags().Uint8("rating", 0, "Rating from 1 to 10")
	cmd.Flags().String("location", "", "Restaurant location")
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	addReviewFlags(encodeCmd)
	encodeCmd.Flags().String("variant", "add", "Instruction variant: add or update")
	encodeCmd.Flags().Bool("account", false, "Encode as an account record instead of instruction data")
	encodeCmd.Flags().String("format", "hex", "Output format: hex or base64")
}
