// Package di provides dependency injection container
package di

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssargent/reviewchain/pkg/config"
	"github.com/ssargent/reviewchain/pkg/ledger"
)

// LedgerFactory builds the ledger collaborators from configuration
type LedgerFactory interface {
	NewClient(cfg *config.Config, reg prometheus.Registerer) ledger.Client
	NewWallet(cfg *config.Config) (ledger.Wallet, error)
}

// DefaultLedgerFactory connects to the configured RPC endpoint and loads the
// configured keypair
type DefaultLedgerFactory struct{}

// NewClient creates an RPC client for cfg.RPC
func (DefaultLedgerFactory) NewClient(cfg *config.Config, reg prometheus.Registerer) ledger.Client {
	return ledger.NewRPCClient(ledger.RPCConfig{
		Endpoint:          cfg.RPC.Endpoint,
		RequestsPerSecond: cfg.RPC.RequestsPerSecond,
		Registerer:        reg,
	})
}

// NewWallet loads cfg.Wallet.KeypairPath, or returns a disconnected wallet
func (DefaultLedgerFactory) NewWallet(cfg *config.Config) (ledger.Wallet, error) {
	return ledger.NewKeypairWallet(cfg.Wallet.KeypairPath)
}

// Container holds all the dependencies for the application
type Container struct {
	ledgerFactory LedgerFactory
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		ledgerFactory: DefaultLedgerFactory{},
	}
}

// GetLedgerFactory returns the ledger factory
func (c *Container) GetLedgerFactory() LedgerFactory {
	return c.ledgerFactory
}

// SetLedgerFactory allows overriding the ledger factory (for testing)
func (c *Container) SetLedgerFactory(factory LedgerFactory) {
	c.ledgerFactory = factory
}
