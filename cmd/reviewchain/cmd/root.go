/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ssargent/reviewchain/pkg/config"
	"github.com/ssargent/reviewchain/pkg/di"
	"github.com/ssargent/reviewchain/pkg/logging"
	"github.com/ssargent/reviewchain/pkg/review"
	"github.com/ssargent/reviewchain/pkg/storage"
)

type contextKey string

const (
	configKey contextKey = "config"
	loggerKey contextKey = "logger"
)

var container *di.Container

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reviewchain",
	Short: "reviewchain - restaurant reviews on Solana",
	Long: `reviewchain submits restaurant reviews to the on-chain review program
and lists the reviews stored in the program's accounts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		cfg := config.DefaultConfig()
		if config.ConfigExists(configPath) {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		}

		if endpoint, _ := cmd.Flags().GetString("rpc"); endpoint != "" {
			cfg.RPC.Endpoint = endpoint
		}
		if programID, _ := cmd.Flags().GetString("program-id"); programID != "" {
			cfg.ProgramID = programID
		}
		if keypair, _ := cmd.Flags().GetString("keypair"); keypair != "" {
			cfg.Wallet.KeypairPath = keypair
		}
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}

		logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx = context.WithValue(ctx, configKey, cfg)
		ctx = context.WithValue(ctx, loggerKey, logger)
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", config.GetDefaultConfigPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().String("rpc", "", "RPC endpoint (overrides config)")
	rootCmd.PersistentFlags().String("program-id", "", "Review program id (overrides config)")
	rootCmd.PersistentFlags().String("keypair", "", "Wallet keypair file (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides config)")
}

func configFrom(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey).(*config.Config); ok {
		return cfg
	}
	return config.DefaultConfig()
}

func loggerFrom(cmd *cobra.Command) zerolog.Logger {
	if logger, ok := cmd.Context().Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// buildService wires the review service from the command's configuration.
// The returned cleanup closes the account cache.
func buildService(cmd *cobra.Command, reg prometheus.Registerer) (*review.Service, func(), error) {
	cfg := configFrom(cmd)
	logger := loggerFrom(cmd)
	noop := func() {}

	if err := cfg.Validate(); err != nil {
		return nil, noop, fmt.Errorf("invalid configuration: %w", err)
	}
	if container == nil {
		return nil, noop, fmt.Errorf("dependency container not initialized")
	}

	programID, err := cfg.ProgramKey()
	if err != nil {
		return nil, noop, err
	}

	factory := container.GetLedgerFactory()
	wallet, err := factory.NewWallet(cfg)
	if err != nil {
		return nil, noop, err
	}
	client := factory.NewClient(cfg, reg)

	opts := []review.Option{review.WithWorkers(cfg.ListWorkers)}
	cleanup := noop
	if cfg.Cache.Enabled {
		if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
			return nil, noop, fmt.Errorf("failed to create data dir: %w", err)
		}
		cache, err := storage.NewAccountCache(filepath.Join(cfg.DataDir, "accounts"))
		if err != nil {
			return nil, noop, err
		}
		opts = append(opts, review.WithCache(cache))
		cleanup = func() {
			if err := cache.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close account cache")
			}
		}
	}

	return review.NewService(programID, client, wallet, logger, opts...), cleanup, nil
}
