/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/reviewchain/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file for local use",
	Long: `Write a reviewchain configuration file with devnet defaults.

This command will:
- Point the RPC client at devnet and the review program
- Record the wallet keypair used for submissions
- Generate an API key for the write endpoints of the server

Examples:
  reviewchain init --keypair ~/.config/solana/id.json
  reviewchain init --data-dir ./data --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		dataDir, _ := cmd.Flags().GetString("data-dir")
		keypair, _ := cmd.Flags().GetString("keypair")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := initializeConfig(configPath, dataDir, keypair, force)
		if err != nil {
			return err
		}

		cmd.Printf("Configuration written to %s\n", configPath)
		cmd.Printf("Data directory: %s\n", cfg.DataDir)
		cmd.Printf("RPC endpoint: %s\n", cfg.RPC.Endpoint)
		if cfg.Wallet.KeypairPath == "" {
			cmd.Printf("Wallet: not configured (read-only)\n")
		} else {
			cmd.Printf("Wallet: %s\n", cfg.Wallet.KeypairPath)
		}
		cmd.Printf("API key: %s...\n", cfg.Server.APIKey[:8])
		return nil
	},
}

func initializeConfig(configPath, dataDir, keypair string, force bool) (*config.Config, error) {
	if config.ConfigExists(configPath) && !force {
		return nil, fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}
	if dataDir == "" {
		dataDir = config.DefaultConfig().DataDir
	}
	return config.BootstrapConfig(configPath, dataDir, keypair)
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("data-dir", "./data", "Data directory for the account cache")
	initCmd.Flags().Bool("force", false, "Overwrite an existing configuration")
}
