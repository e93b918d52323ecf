// Package node holds the configuration of a marketplace ledger node.
package node

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/molalign8468/full-stack-nft-marketplace/common"
	"github.com/molalign8468/full-stack-nft-marketplace/node/collection"
)

// hardhatDeployer is the first account of the default hardhat mnemonic.
const hardhatDeployer = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

type Config struct {
	Network            common.Network
	DatabasePath       string
	ListenAddr         string
	GatewayAddr        string
	IdentityPrivateKey []byte
	AuthnSecret        []byte
	SessionDuration    time.Duration
	ChallengeTimeout   time.Duration
	Deployer           ethcommon.Address
	BaseURI            string
	MaxSupply          uint64
	AuditInterval      time.Duration
	CheckpointInterval time.Duration
	Genesis            []*GenesisAccount
	CORSOrigins        []string
}

// GenesisAccount is an account funded when the ledger is created.
type GenesisAccount struct {
	Address ethcommon.Address
	Balance *big.Int
}

// DefaultConfig returns the configuration of a local hardhat style node.
func DefaultConfig() *Config {
	return &Config{
		Network:            common.Hardhat,
		DatabasePath:       "marketplace.sqlite",
		ListenAddr:         ":8535",
		GatewayAddr:        ":8545",
		SessionDuration:    24 * time.Hour,
		ChallengeTimeout:   time.Minute,
		Deployer:           ethcommon.HexToAddress(hardhatDeployer),
		MaxSupply:          collection.DefaultParams().MaxSupply,
		AuditInterval:      time.Minute,
		CheckpointInterval: 10 * time.Minute,
		Genesis: []*GenesisAccount{
			{Address: ethcommon.HexToAddress(hardhatDeployer), Balance: common.Ether(10_000)},
		},
		CORSOrigins: []string{"http://localhost:5173"},
	}
}

func (c *Config) DatabaseDriver() string {
	if strings.HasSuffix(c.DatabasePath, ".sqlite") {
		return "sqlite3"
	} else {
		return "postgres"
	}
}

// DatabaseSource returns the data source name for the configured driver.
func (c *Config) DatabaseSource() string {
	if c.DatabaseDriver() == "sqlite3" {
		return fmt.Sprintf("file:%s?_fk=1&_journal_mode=WAL&_busy_timeout=5000", c.DatabasePath)
	}
	return c.DatabasePath
}

// CollectionParams returns the deploy parameters of the collection.
func (c *Config) CollectionParams() collection.Params {
	params := collection.DefaultParams()
	params.BaseURI = c.BaseURI
	if c.MaxSupply > 0 {
		params.MaxSupply = c.MaxSupply
	}
	return params
}

// Allocation returns the genesis balances keyed by address. Repeated addresses add up.
func (c *Config) Allocation() map[ethcommon.Address]*big.Int {
	alloc := make(map[ethcommon.Address]*big.Int, len(c.Genesis))
	for _, account := range c.Genesis {
		if existing, ok := alloc[account.Address]; ok {
			alloc[account.Address] = new(big.Int).Add(existing, account.Balance)
			continue
		}
		alloc[account.Address] = new(big.Int).Set(account.Balance)
	}
	return alloc
}

// IdentityPublicKey returns the compressed public key of the node identity.
func (c *Config) IdentityPublicKey() []byte {
	return secp256k1.PrivKeyFromBytes(c.IdentityPrivateKey).PubKey().SerializeCompressed()
}

// Validate checks the configuration is usable by a node.
func (c *Config) Validate() error {
	if c.Network == common.Unspecified {
		return fmt.Errorf("network is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is required")
	}
	if len(c.IdentityPrivateKey) != 32 {
		return fmt.Errorf("identity private key must be 32 bytes")
	}
	if len(c.AuthnSecret) == 0 {
		return fmt.Errorf("authn secret is required")
	}
	if c.Deployer == (ethcommon.Address{}) {
		return fmt.Errorf("deployer address is required")
	}
	if c.SessionDuration <= 0 || c.ChallengeTimeout <= 0 {
		return fmt.Errorf("session duration and challenge timeout must be positive")
	}
	return nil
}

type fileConfig struct {
	Network            string            `toml:"network"`
	DatabasePath       string            `toml:"database_path"`
	ListenAddr         string            `toml:"listen_addr"`
	GatewayAddr        string            `toml:"gateway_addr"`
	IdentityPrivateKey string            `toml:"identity_private_key"`
	AuthnSecret        string            `toml:"authn_secret"`
	SessionDuration    string            `toml:"session_duration"`
	ChallengeTimeout   string            `toml:"challenge_timeout"`
	Deployer           string            `toml:"deployer"`
	BaseURI            string            `toml:"base_uri"`
	MaxSupply          uint64            `toml:"max_supply"`
	AuditInterval      string            `toml:"audit_interval"`
	CheckpointInterval string            `toml:"checkpoint_interval"`
	Genesis            map[string]string `toml:"genesis"`
	CORSOrigins        []string          `toml:"cors_origins"`
}

// LoadConfig overlays the TOML file at path on the defaults. Keys missing from the file keep
// their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load node config: %w", err)
	}

	if meta.IsDefined("network") {
		network, err := common.NetworkFromString(strings.TrimSpace(raw.Network))
		if err != nil {
			return nil, err
		}
		cfg.Network = network
	}
	if meta.IsDefined("database_path") {
		cfg.DatabasePath = strings.TrimSpace(raw.DatabasePath)
	}
	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("gateway_addr") {
		cfg.GatewayAddr = strings.TrimSpace(raw.GatewayAddr)
	}
	if meta.IsDefined("identity_private_key") {
		key, err := common.PrivateKeyFromHex(raw.IdentityPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("parse identity_private_key: %w", err)
		}
		cfg.IdentityPrivateKey = key.Serialize()
	}
	if meta.IsDefined("authn_secret") {
		secret, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(raw.AuthnSecret), "0x"))
		if err != nil {
			return nil, fmt.Errorf("parse authn_secret: %w", err)
		}
		cfg.AuthnSecret = secret
	}
	if meta.IsDefined("session_duration") {
		if cfg.SessionDuration, err = parseDuration("session_duration", raw.SessionDuration); err != nil {
			return nil, err
		}
	}
	if meta.IsDefined("challenge_timeout") {
		if cfg.ChallengeTimeout, err = parseDuration("challenge_timeout", raw.ChallengeTimeout); err != nil {
			return nil, err
		}
	}
	if meta.IsDefined("deployer") {
		deployer, err := common.ParseAddress(strings.TrimSpace(raw.Deployer))
		if err != nil {
			return nil, fmt.Errorf("parse deployer: %w", err)
		}
		cfg.Deployer = deployer
	}
	if meta.IsDefined("base_uri") {
		cfg.BaseURI = strings.TrimSpace(raw.BaseURI)
	}
	if meta.IsDefined("max_supply") {
		cfg.MaxSupply = raw.MaxSupply
	}
	if meta.IsDefined("audit_interval") {
		if cfg.AuditInterval, err = parseDuration("audit_interval", raw.AuditInterval); err != nil {
			return nil, err
		}
	}
	if meta.IsDefined("checkpoint_interval") {
		if cfg.CheckpointInterval, err = parseDuration("checkpoint_interval", raw.CheckpointInterval); err != nil {
			return nil, err
		}
	}
	if meta.IsDefined("genesis") {
		genesis, err := parseGenesis(raw.Genesis)
		if err != nil {
			return nil, err
		}
		cfg.Genesis = genesis
	}
	if meta.IsDefined("cors_origins") {
		cfg.CORSOrigins = raw.CORSOrigins
	}

	return cfg, nil
}

func parseDuration(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

// parseGenesis reads an address → ether amount table.
func parseGenesis(entries map[string]string) ([]*GenesisAccount, error) {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	accounts := make([]*GenesisAccount, 0, len(entries))
	for _, key := range keys {
		address, err := common.ParseAddress(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parse genesis: %w", err)
		}
		balance, err := common.ParseEther(strings.TrimSpace(entries[key]))
		if err != nil {
			return nil, fmt.Errorf("parse genesis balance of %s: %w", key, err)
		}
		if balance.Sign() == 0 {
			continue
		}
		accounts = append(accounts, &GenesisAccount{Address: address, Balance: balance})
	}
	return accounts, nil
}
