package ledger

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// ErrSeedTooLong is returned for titles longer than a PDA seed allows.
var ErrSeedTooLong = errors.New("title exceeds PDA seed length")

// ProgramDeriver derives review addresses from [author, title] seeds.
type ProgramDeriver struct {
	ProgramID solana.PublicKey
}

// NewProgramDeriver creates a deriver for the given program.
func NewProgramDeriver(programID solana.PublicKey) *ProgramDeriver {
	return &ProgramDeriver{ProgramID: programID}
}

// Derive returns the review address for author and title.
func (d *ProgramDeriver) Derive(author solana.PublicKey, title string) (solana.PublicKey, error) {
	if len(title) > solana.MaxSeedLength {
		return solana.PublicKey{}, fmt.Errorf("%w: %d > %d bytes", ErrSeedTooLong, len(title), solana.MaxSeedLength)
	}

	addr, _, err := solana.FindProgramAddress([][]byte{author.Bytes(), []byte(title)}, d.ProgramID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive review address: %w", err)
	}
	return addr, nil
}
