package cmd

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/reviewchain/pkg/codec"
	"github.com/ssargent/reviewchain/pkg/config"
	"github.com/ssargent/reviewchain/pkg/di"
	"github.com/ssargent/reviewchain/pkg/ledger"
	"github.com/ssargent/reviewchain/pkg/review"
)

// pizzaInstruction is the add-review instruction for Pizza Place.
const pizzaInstruction = "000b00000050697a7a6120506c6163650b000000477265617420637275737405070000004d61696e205374"

type fakeCluster struct {
	mu       sync.Mutex
	sent     int
	accounts []ledger.Account
}

func (f *fakeCluster) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{7}, nil
}

func (f *fakeCluster) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return tx.Signatures[0], nil
}

func (f *fakeCluster) ProgramAccounts(context.Context, solana.PublicKey) ([]ledger.Account, error) {
	return f.accounts, nil
}

func (f *fakeCluster) AccountData(_ context.Context, address solana.PublicKey) ([]byte, bool, error) {
	for _, acct := range f.accounts {
		if acct.Address.Equals(address) {
			return acct.Data, true, nil
		}
	}
	return nil, false, nil
}

type fakeFactory struct {
	cluster *fakeCluster
	wallet  ledger.Wallet
}

func (f *fakeFactory) NewClient(*config.Config, prometheus.Registerer) ledger.Client {
	return f.cluster
}

func (f *fakeFactory) NewWallet(*config.Config) (ledger.Wallet, error) {
	return f.wallet, nil
}

func setupCommand(t *testing.T, factory *fakeFactory) string {
	t.Helper()

	c := di.NewContainer()
	c.SetLedgerFactory(factory)
	SetContainer(c)

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))
	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func storedAccount(t *testing.T, r codec.Review) []byte {
	t.Helper()
	data, err := codec.NewReviewCodec(zerolog.Nop()).EncodeAccount(r, true)
	require.NoError(t, err)
	padded := make([]byte, codec.AccountSize)
	copy(padded, data)
	return padded
}

func TestEncodeCommand(t *testing.T) {
	configPath := setupCommand(t, &fakeFactory{cluster: &fakeCluster{}})

	out, err := execute(t, "encode", "--config", configPath,
		"--title", "Pizza Place", "--description", "Great crust", "--rating", "5", "--location", "Main St",
		"--variant", "add", "--format", "hex", "--account=false")
	require.NoError(t, err)
	assert.Equal(t, pizzaInstruction+"\n", out)
}

func TestRunEncode(t *testing.T) {
	c := codec.NewReviewCodec(zerolog.Nop())
	r := codec.Review{Title: "Pizza Place", Description: "Great crust", Rating: 5, Location: "Main St"}

	t.Run("update variant", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runEncode(&buf, c, r, "update", false, "hex"))
		assert.Equal(t, "01"+pizzaInstruction[2:]+"\n", buf.String())
	})

	t.Run("account record", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runEncode(&buf, c, r, "add", true, "hex"))
		assert.Equal(t, "01"+pizzaInstruction[2:]+"\n", buf.String())
	})

	t.Run("base64", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runEncode(&buf, c, codec.Review{}, "add", false, "base64"))
		assert.Equal(t, "AAAAAAAAAAAAAAAAAAA=\n", buf.String())
	})

	t.Run("bad variant", func(t *testing.T) {
		assert.Error(t, runEncode(&bytes.Buffer{}, c, r, "delete", false, "hex"))
	})

	t.Run("capacity exceeded", func(t *testing.T) {
		big := r
		big.Description = string(make([]byte, codec.AccountSize))
		err := runEncode(&bytes.Buffer{}, c, big, "add", false, "hex")
		assert.ErrorIs(t, err, codec.ErrCapacityExceeded)
	})
}

func TestRunDecode(t *testing.T) {
	c := codec.NewReviewCodec(zerolog.Nop())

	t.Run("valid account", func(t *testing.T) {
		data, err := parseBytes("01"+pizzaInstruction[2:], "hex")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, runDecode(&buf, c, append(data, make([]byte, 16)...)))
		assert.Contains(t, buf.String(), "Pizza Place")
		assert.Contains(t, buf.String(), "Main St")
		assert.Contains(t, buf.String(), "true")
	})

	t.Run("absent", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, runDecode(&buf, c, nil))
		assert.Contains(t, buf.String(), "absent")
	})

	t.Run("malformed", func(t *testing.T) {
		err := runDecode(&bytes.Buffer{}, c, []byte{1, 0xFF, 0xFF, 0xFF, 0xFF})
		assert.ErrorIs(t, err, codec.ErrMalformedAccountData)
	})

	t.Run("bad input", func(t *testing.T) {
		_, err := parseBytes("zz", "hex")
		assert.Error(t, err)
		_, err = parseBytes("!!", "base64")
		assert.Error(t, err)
	})
}

func TestSubmitCommand(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	cluster := &fakeCluster{}
	configPath := setupCommand(t, &fakeFactory{cluster: cluster, wallet: ledger.NewWalletFromKey(key)})

	out, err := execute(t, "submit", "--config", configPath,
		"--title", "Pizza Place", "--description", "Great crust", "--rating", "5", "--location", "Main St")
	require.NoError(t, err)

	pda, err := ledger.NewProgramDeriver(solana.MustPublicKeyFromBase58(ledger.DefaultProgramID)).
		Derive(key.PublicKey(), "Pizza Place")
	require.NoError(t, err)
	assert.Contains(t, out, pda.String())
	assert.Equal(t, 1, cluster.sent)
}

func TestSubmitCommand_NoWallet(t *testing.T) {
	disconnected, err := ledger.NewKeypairWallet("")
	require.NoError(t, err)
	cluster := &fakeCluster{}
	configPath := setupCommand(t, &fakeFactory{cluster: cluster, wallet: disconnected})

	_, err = execute(t, "update", "--config", configPath,
		"--title", "Pizza Place", "--description", "Great crust", "--rating", "5", "--location", "Main St")
	assert.ErrorIs(t, err, review.ErrPreconditionFailed)
	assert.Zero(t, cluster.sent)
}

func TestListCommand(t *testing.T) {
	first := solana.NewWallet().PublicKey()
	cluster := &fakeCluster{accounts: []ledger.Account{
		{Address: first, Data: storedAccount(t, codec.Review{Title: "Pizza Place", Rating: 5, Location: "Main St"})},
		{Address: solana.NewWallet().PublicKey(), Data: []byte{2}},
	}}
	configPath := setupCommand(t, &fakeFactory{cluster: cluster, wallet: ledger.NewWalletFromKey(solana.NewWallet().PrivateKey)})

	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "list", "--config", configPath, "--cached=false", "--format", "table")
		require.NoError(t, err)
		assert.Contains(t, out, first.String())
		assert.Contains(t, out, "Pizza Place")
		assert.Contains(t, out, "1 reviews, 1 skipped (live")
	})

	t.Run("cached json", func(t *testing.T) {
		out, err := execute(t, "list", "--config", configPath, "--cached=true", "--format", "json")
		require.NoError(t, err)

		var listing review.Listing
		require.NoError(t, json.Unmarshal([]byte(out), &listing))
		assert.True(t, listing.Cached)
		assert.NotEmpty(t, listing.PassID)
		assert.False(t, listing.FetchedAt.IsZero())
		require.Len(t, listing.Entries, 1)
		assert.Equal(t, "Pizza Place", listing.Entries[0].Review.Title)
		assert.Equal(t, 1, listing.Skipped)
	})
}

func TestGetCommand(t *testing.T) {
	author := solana.NewWallet().PublicKey()
	pda, err := ledger.NewProgramDeriver(solana.MustPublicKeyFromBase58(ledger.DefaultProgramID)).
		Derive(author, "Pizza Place")
	require.NoError(t, err)

	cluster := &fakeCluster{accounts: []ledger.Account{
		{Address: pda, Data: storedAccount(t, codec.Review{Title: "Pizza Place", Description: "Great crust", Rating: 5})},
	}}
	configPath := setupCommand(t, &fakeFactory{cluster: cluster, wallet: ledger.NewWalletFromKey(solana.NewWallet().PrivateKey)})

	out, err := execute(t, "get", "--config", configPath, author.String(), "Pizza Place")
	require.NoError(t, err)
	assert.Contains(t, out, pda.String())
	assert.Contains(t, out, "Great crust")

	_, err = execute(t, "get", "--config", configPath, author.String(), "Nowhere")
	assert.Error(t, err)

	_, err = execute(t, "get", "--config", configPath, "not-a-key", "Pizza Place")
	assert.Error(t, err)
}

func TestInitializeConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := initializeConfig(configPath, "", "/keys/id.json", false)
	require.NoError(t, err)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "/keys/id.json", cfg.Wallet.KeypairPath)
	assert.True(t, config.ConfigExists(configPath))

	_, err = initializeConfig(configPath, "", "", false)
	assert.ErrorContains(t, err, "already exists")

	cfg, err = initializeConfig(configPath, "/other", "", true)
	require.NoError(t, err)
	assert.Equal(t, "/other", cfg.DataDir)
}

func TestFormatBytes(t *testing.T) {
	data := []byte{0xde, 0xad}
	out, err := formatBytes(data, "hex")
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString(data), out)

	_, err = formatBytes(data, "binary")
	assert.Error(t, err)
}
