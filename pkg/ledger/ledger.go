// Package ledger defines the collaborators the review flows depend on: a
// wallet that signs, an RPC client that talks to the cluster, and the
// program-derived address scheme used to locate review accounts.
package ledger

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID is the review program deployed on devnet.
const DefaultProgramID = "4bxHsLuaDvpdwXyoiG2stu913TLxLNpANFCWXBCtQpvC"

// Account is the raw data of one program-owned account.
type Account struct {
	Address solana.PublicKey
	Data    []byte
}

// Wallet supplies the signer for submissions.
type Wallet interface {
	// PublicKey returns the wallet address, or false when no signer is connected.
	PublicKey() (solana.PublicKey, bool)
	// SignTransaction adds the wallet signature to tx.
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// Client is the subset of the cluster RPC API the review flows use.
type Client interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// ProgramAccounts lists every account owned by program.
	ProgramAccounts(ctx context.Context, program solana.PublicKey) ([]Account, error)
	// AccountData fetches one account. found is false when the account does not exist.
	AccountData(ctx context.Context, address solana.PublicKey) (data []byte, found bool, err error)
}

// AddressDeriver computes where a review is stored.
type AddressDeriver interface {
	Derive(author solana.PublicKey, title string) (solana.PublicKey, error)
}
