// Package storage keeps the raw account bytes of the last listing pass in a
// local Pebble database so reviews can be shown without a cluster round trip.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/gagliardetto/solana-go"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/reviewchain/pkg/ledger"
)

var (
	accountPrefix = []byte("acct/")
	passKey       = []byte("meta/pass")
)

// ErrNoPass is returned when no listing pass has been stored yet.
var ErrNoPass = errors.New("no listing pass stored")

// AccountCache is a Pebble-backed store of account bytes.
type AccountCache struct {
	db *pebble.DB
}

// NewAccountCache opens or creates the cache at path.
func NewAccountCache(path string) (*AccountCache, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open account cache: %w", err)
	}
	return &AccountCache{db: db}, nil
}

func accountKey(address solana.PublicKey) []byte {
	return append(append([]byte{}, accountPrefix...), address.String()...)
}

// PutPass replaces the cached accounts with the accounts of one pass.
func (s *AccountCache) PutPass(passID string, at time.Time, accounts []ledger.Account) error {
	id, err := ksuid.Parse(passID)
	if err != nil {
		return fmt.Errorf("invalid pass id: %w", err)
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.DeleteRange(accountPrefix, prefixEnd(accountPrefix), nil); err != nil {
		return err
	}
	for _, acct := range accounts {
		if err := b.Set(accountKey(acct.Address), acct.Data, nil); err != nil {
			return err
		}
	}

	meta := make([]byte, len(id.Bytes())+8)
	copy(meta, id.Bytes())
	binary.BigEndian.PutUint64(meta[len(id.Bytes()):], uint64(at.UnixNano()))
	if err := b.Set(passKey, meta, nil); err != nil {
		return err
	}

	return b.Commit(pebble.Sync)
}

// Accounts returns every cached account in address order.
func (s *AccountCache) Accounts() ([]ledger.Account, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: accountPrefix,
		UpperBound: prefixEnd(accountPrefix),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var accounts []ledger.Account
	for iter.First(); iter.Valid(); iter.Next() {
		addr, err := solana.PublicKeyFromBase58(string(iter.Key()[len(accountPrefix):]))
		if err != nil {
			return nil, fmt.Errorf("corrupt cache key %q: %w", iter.Key(), err)
		}
		accounts = append(accounts, ledger.Account{
			Address: addr,
			Data:    append([]byte(nil), iter.Value()...),
		})
	}
	return accounts, iter.Error()
}

// LastPass returns the id and fetch time of the stored pass.
func (s *AccountCache) LastPass() (string, time.Time, error) {
	data, closer, err := s.db.Get(passKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return "", time.Time{}, ErrNoPass
	}
	if err != nil {
		return "", time.Time{}, err
	}
	defer closer.Close()

	if len(data) != len(ksuid.Nil)+8 {
		return "", time.Time{}, fmt.Errorf("corrupt pass metadata: %d bytes", len(data))
	}
	id, err := ksuid.FromBytes(data[:len(data)-8])
	if err != nil {
		return "", time.Time{}, err
	}
	at := time.Unix(0, int64(binary.BigEndian.Uint64(data[len(data)-8:])))
	return id.String(), at, nil
}

// Close closes the database.
func (s *AccountCache) Close() error {
	return s.db.Close()
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}
