package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

// RPCConfig configures an RPCClient.
type RPCConfig struct {
	Endpoint          string
	RequestsPerSecond int
	// Registerer receives the client metrics. Nil leaves them unregistered.
	Registerer prometheus.Registerer
}

// RPCClient implements Client on top of the cluster JSON-RPC API.
type RPCClient struct {
	rpc     *rpc.Client
	limiter *rate.Limiter

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewRPCClient creates a rate-limited RPC client.
func NewRPCClient(cfg RPCConfig) *RPCClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	factory := promauto.With(cfg.Registerer)
	return &RPCClient{
		rpc:     rpc.New(cfg.Endpoint),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reviewchain_rpc_requests_total",
				Help: "Total number of ledger RPC requests",
			},
			[]string{"method", "status"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reviewchain_rpc_request_duration_seconds",
				Help:    "Ledger RPC request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
}

// LatestBlockhash returns a finalized recent blockhash.
func (c *RPCClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	var hash solana.Hash
	err := c.call(ctx, "getLatestBlockhash", func() error {
		out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		hash = out.Value.Blockhash
		return nil
	})
	return hash, err
}

// SendTransaction submits a signed transaction.
func (c *RPCClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	var sig solana.Signature
	err := c.call(ctx, "sendTransaction", func() error {
		var err error
		sig, err = c.rpc.SendTransaction(ctx, tx)
		return err
	})
	return sig, err
}

// ProgramAccounts lists all accounts owned by program.
func (c *RPCClient) ProgramAccounts(ctx context.Context, program solana.PublicKey) ([]Account, error) {
	var accounts []Account
	err := c.call(ctx, "getProgramAccounts", func() error {
		out, err := c.rpc.GetProgramAccounts(ctx, program)
		if err != nil {
			return err
		}
		accounts = make([]Account, 0, len(out))
		for _, keyed := range out {
			if keyed == nil {
				continue
			}
			acct := Account{Address: keyed.Pubkey}
			if keyed.Account != nil && keyed.Account.Data != nil {
				acct.Data = keyed.Account.Data.GetBinary()
			}
			accounts = append(accounts, acct)
		}
		return nil
	})
	return accounts, err
}

// AccountData fetches a single account.
func (c *RPCClient) AccountData(ctx context.Context, address solana.PublicKey) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)
	err := c.call(ctx, "getAccountInfo", func() error {
		out, err := c.rpc.GetAccountInfo(ctx, address)
		if errors.Is(err, rpc.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		if out.Value != nil && out.Value.Data != nil {
			data = out.Value.Data.GetBinary()
		}
		return nil
	})
	return data, found, err
}

func (c *RPCClient) call(ctx context.Context, method string, fn func() error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}

	start := time.Now()
	err := fn()
	c.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())

	status := "success"
	if err != nil {
		status = "error"
	}
	c.requests.WithLabelValues(method, status).Inc()

	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// Close releases the underlying HTTP transport.
func (c *RPCClient) Close() error {
	return c.rpc.Close()
}
