// Package review implements the submission and listing flows on top of the
// record codec and the ledger collaborators.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/reviewchain/pkg/codec"
	"github.com/ssargent/reviewchain/pkg/ledger"
	"github.com/ssargent/reviewchain/pkg/storage"
)

const (
	minRating = 1
	maxRating = 10

	defaultWorkers = 8
)

var (
	// ErrPreconditionFailed is returned when no wallet is connected.
	ErrPreconditionFailed = errors.New("wallet not connected")
	// ErrTransportFailure wraps any failed ledger RPC call.
	ErrTransportFailure = errors.New("ledger request failed")
	// ErrInvalidReview is returned for reviews the program would reject.
	ErrInvalidReview = errors.New("invalid review")
	// ErrNoCache is returned by ListCached when no cache is configured.
	ErrNoCache = errors.New("account cache not configured")
)

// Cache stores raw account bytes from the last listing pass.
type Cache interface {
	PutPass(passID string, at time.Time, accounts []ledger.Account) error
	Accounts() ([]ledger.Account, error)
	// LastPass returns the id and fetch time of the stored pass, or
	// storage.ErrNoPass when nothing was stored.
	LastPass() (string, time.Time, error)
}

// Receipt identifies a submitted review transaction.
type Receipt struct {
	Signature solana.Signature `json:"signature"`
	Address   solana.PublicKey `json:"address"`
}

// Entry is one decoded review account.
type Entry struct {
	Address     solana.PublicKey `json:"address"`
	Review      codec.Review     `json:"review"`
	Initialized bool             `json:"initialized"`
}

// Listing is the result of one listing pass.
type Listing struct {
	PassID    string    `json:"pass_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
	Entries   []Entry   `json:"entries"`
	// Skipped counts accounts that were empty or did not decode.
	Skipped int `json:"skipped"`
}

// Service submits and lists reviews for one program.
type Service struct {
	programID solana.PublicKey
	codec     *codec.ReviewCodec
	client    ledger.Client
	wallet    ledger.Wallet
	deriver   ledger.AddressDeriver
	cache     Cache
	workers   int
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache stores every listing pass in c.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithWorkers bounds the number of accounts decoded concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithDeriver overrides the program-derived address scheme.
func WithDeriver(d ledger.AddressDeriver) Option {
	return func(s *Service) { s.deriver = d }
}

// NewService creates a review service for programID.
func NewService(
	programID solana.PublicKey,
	client ledger.Client,
	wallet ledger.Wallet,
	logger zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		programID: programID,
		codec:     codec.NewReviewCodec(logger),
		client:    client,
		wallet:    wallet,
		deriver:   ledger.NewProgramDeriver(programID),
		workers:   defaultWorkers,
		logger:    logger.With().Str("component", "review").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends an add-review transaction signed by the wallet.
func (s *Service) Submit(ctx context.Context, r codec.Review) (Receipt, error) {
	return s.send(ctx, codec.VariantAddReview, r)
}

// Update sends an update-review transaction for a review the wallet created.
func (s *Service) Update(ctx context.Context, r codec.Review) (Receipt, error) {
	return s.send(ctx, codec.VariantUpdateReview, r)
}

func (s *Service) send(ctx context.Context, variant codec.Variant, r codec.Review) (Receipt, error) {
	author, ok := s.wallet.PublicKey()
	if !ok {
		return Receipt{}, ErrPreconditionFailed
	}

	if r.Rating < minRating || r.Rating > maxRating {
		return Receipt{}, fmt.Errorf("%w: rating must be between %d and %d, got %d",
			ErrInvalidReview, minRating, maxRating, r.Rating)
	}

	data, err := s.codec.EncodeInstruction(variant, r)
	if err != nil {
		return Receipt{}, err
	}

	pda, err := s.deriver.Derive(author, r.Title)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}

	blockhash, err := s.client.LatestBlockhash(ctx)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			solana.NewInstruction(s.programID, solana.AccountMetaSlice{
				solana.NewAccountMeta(author, true, true),
				solana.NewAccountMeta(pda, true, false),
				solana.NewAccountMeta(solana.SystemProgramID, false, false),
			}, data),
		},
		blockhash,
		solana.TransactionPayer(author),
	)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	if err := s.wallet.SignTransaction(ctx, tx); err != nil {
		if errors.Is(err, ledger.ErrNotConnected) {
			return Receipt{}, ErrPreconditionFailed
		}
		return Receipt{}, err
	}

	sig, err := s.client.SendTransaction(ctx, tx)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	s.logger.Info().
		Str("variant", variant.String()).
		Str("signature", sig.String()).
		Str("address", pda.String()).
		Str("title", r.Title).
		Msg("review transaction sent")

	return Receipt{Signature: sig, Address: pda}, nil
}

// Get fetches the review author stored under title. It returns false when
// the account does not exist or does not decode.
func (s *Service) Get(ctx context.Context, author solana.PublicKey, title string) (Entry, bool, error) {
	pda, err := s.deriver.Derive(author, title)
	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: %w", ErrInvalidReview, err)
	}

	data, found, err := s.client.AccountData(ctx, pda)
	if err != nil {
		return Entry{}, false, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	if !found {
		return Entry{}, false, nil
	}

	res := s.codec.DecodeAccount(data)
	r, ok := res.Review()
	if !ok {
		return Entry{}, false, nil
	}
	return Entry{Address: pda, Review: r, Initialized: res.Initialized()}, true, nil
}

// List fetches and decodes every account owned by the program. Accounts that
// are empty or malformed are skipped and counted; they never fail the pass.
func (s *Service) List(ctx context.Context) (Listing, error) {
	passID := ksuid.New().String()
	logger := s.logger.With().Str("pass", passID).Logger()

	accounts, err := s.client.ProgramAccounts(ctx, s.programID)
	if err != nil {
		return Listing{}, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}
	fetchedAt := s.now()

	if s.cache != nil {
		if err := s.cache.PutPass(passID, fetchedAt, accounts); err != nil {
			logger.Warn().Err(err).Msg("failed to cache listing pass")
		}
	}

	listing, err := s.decodeAll(ctx, logger, accounts)
	if err != nil {
		return Listing{}, err
	}
	listing.PassID = passID
	listing.FetchedAt = fetchedAt
	return listing, nil
}

// ListCached decodes the accounts stored by the last List pass.
func (s *Service) ListCached(ctx context.Context) (Listing, error) {
	if s.cache == nil {
		return Listing{}, ErrNoCache
	}

	passID, fetchedAt, err := s.cache.LastPass()
	if err != nil && !errors.Is(err, storage.ErrNoPass) {
		return Listing{}, fmt.Errorf("failed to read account cache: %w", err)
	}

	accounts, err := s.cache.Accounts()
	if err != nil {
		return Listing{}, fmt.Errorf("failed to read account cache: %w", err)
	}

	listing, err := s.decodeAll(ctx, s.logger, accounts)
	if err != nil {
		return Listing{}, err
	}
	listing.Cached = true
	listing.PassID = passID
	listing.FetchedAt = fetchedAt
	return listing, nil
}

func (s *Service) decodeAll(ctx context.Context, logger zerolog.Logger, accounts []ledger.Account) (Listing, error) {
	results := make([]codec.DecodeResult, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, acct := range accounts {
		i, acct := i, acct
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.codec.DecodeAccount(acct.Data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Listing{}, err
	}

	listing := Listing{Entries: make([]Entry, 0, len(accounts))}
	for i, res := range results {
		r, ok := res.Review()
		if !ok {
			logger.Debug().
				Err(res.Err()).
				Str("address", accounts[i].Address.String()).
				Msg("skipping review account")
			listing.Skipped++
			continue
		}
		listing.Entries = append(listing.Entries, Entry{
			Address:     accounts[i].Address,
			Review:      r,
			Initialized: res.Initialized(),
		})
	}

	logger.Info().
		Int("accounts", len(accounts)).
		Int("reviews", len(listing.Entries)).
		Int("skipped", listing.Skipped).
		Msg("listed reviews")

	return listing, nil
}
