/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/reviewchain/pkg/codec"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <data>",
	Short: "Decode raw review account data",
	Long: `Decode the raw bytes of a review account, given as hex or base64.

Example:
  reviewchain decode 010b00000050697a7a6120506c616365...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		data, err := parseBytes(args[0], format)
		if err != nil {
			return err
		}
		return runDecode(cmd.OutOrStdout(), codec.NewReviewCodec(loggerFrom(cmd)), data)
	},
}

func runDecode(w io.Writer, c *codec.ReviewCodec, data []byte) error {
	result := c.DecodeAccount(data)
	switch {
	case result.Absent():
		fmt.Fprintln(w, "absent: account holds no data")
		return nil
	case result.Malformed():
		return result.Err()
	}

	r, _ := result.Review()
	printReview(w, r, result.Initialized())
	return nil
}

func parseBytes(s, format string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch format {
	case "", "hex":
		data, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex data: %w", err)
		}
		return data, nil
	case "base64":
		data, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want hex or base64)", format)
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().String("format", "hex", "Input format: hex or base64")
}
