package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrNotConnected is returned when signing with a wallet that has no key.
var ErrNotConnected = errors.New("wallet not connected")

// KeypairWallet signs with a key loaded from a solana-keygen file.
type KeypairWallet struct {
	key       solana.PrivateKey
	connected bool
}

// NewKeypairWallet loads the keypair at path. An empty path returns a
// wallet that is not connected.
func NewKeypairWallet(path string) (*KeypairWallet, error) {
	if path == "" {
		return &KeypairWallet{}, nil
	}

	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keypair: %w", err)
	}
	return NewWalletFromKey(key), nil
}

// NewWalletFromKey wraps an in-memory private key.
func NewWalletFromKey(key solana.PrivateKey) *KeypairWallet {
	return &KeypairWallet{key: key, connected: true}
}

// PublicKey returns the wallet address.
func (w *KeypairWallet) PublicKey() (solana.PublicKey, bool) {
	if !w.connected {
		return solana.PublicKey{}, false
	}
	return w.key.PublicKey(), true
}

// SignTransaction signs tx with the wallet key.
func (w *KeypairWallet) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	if !w.connected {
		return ErrNotConnected
	}

	pub := w.key.PublicKey()
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(pub) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
