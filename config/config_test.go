package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dbconfig "github.com/JWebSmart/Nft-marketplace/orm/config"
	"github.com/JWebSmart/Nft-marketplace/types"
)

func validConfig() *Config {
	c := &Config{
		listenPort:            "8080",
		logLevel:              "info",
		logFormat:             "plain",
		queryTimeout:          5 * time.Second,
		maxConcurrentRequests: 4,
		cacheSize:             100,
		cacheTTL:              time.Minute,
	}
	c.SetDBConfig(&dbconfig.Config{DSN: "postgres://localhost/storefront", IdleConns: 1, BatchSize: 100})
	c.SetChainConfig(&ChainConfig{
		ChainId:           1337,
		JsonRpcUrls:       []string{"http://localhost:8545"},
		CollectionAddress: "0x00000000000000000000000000000000000000c1",
		ContractType:      types.ContractTypeSignatureDrop,
		ContractName:      "Storefront",
	})
	c.SetSignerConfig(&SignerConfig{VoucherValidity: time.Hour})
	c.SetStorageConfig(&StorageConfig{
		ApiUrl:         "http://localhost:5001",
		GatewayUrl:     "https://ipfs.io/ipfs/",
		MaxUploadBytes: 1 << 20,
	})
	return c
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]struct {
		mutate func(c *Config)
		field  string
	}{
		"bad port": {
			mutate: func(c *Config) { c.listenPort = "99999" },
			field:  "PORT",
		},
		"bad log level": {
			mutate: func(c *Config) { c.logLevel = "trace" },
			field:  "LOG_LEVEL",
		},
		"negative ttl": {
			mutate: func(c *Config) { c.SetCacheTTL(-time.Second) },
			field:  "CACHE_TTL",
		},
		"short private key": {
			mutate: func(c *Config) { c.SetSignerConfig(&SignerConfig{PrivateKey: "0xabc", VoucherValidity: time.Hour}) },
			field:  "PRIVATE_KEY",
		},
		"mint quantity above cap": {
			mutate: func(c *Config) { c.GetSignerConfig().MaxMintQuantity = types.MaxMintQuantity + 1 },
			field:  "MAX_MINT_QUANTITY",
		},
		"short jwt secret": {
			mutate: func(c *Config) {
				c.SetAuthConfig(&AuthConfig{Enabled: true, JwtSecret: "short", TokenTTL: time.Hour, NonceTTL: time.Minute})
			},
			field: "AUTH_JWT_SECRET",
		},
		"missing database": {
			mutate: func(c *Config) { c.SetDBConfig(nil) },
			field:  "DB_DSN",
		},
		"bad collection": {
			mutate: func(c *Config) { c.GetChainConfig().CollectionAddress = "not-an-address" },
			field:  "NEXT_PUBLIC_NFT_COLLECTION_ADDRESS",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestValidateInvalidDatabaseConfig(t *testing.T) {
	c := validConfig()
	c.SetDBConfig(&dbconfig.Config{DSN: "postgres://localhost/storefront", IdleConns: 1})
	err := c.Validate()
	require.Error(t, err)
	require.True(t, types.IsErrorType(err, types.ErrTypeConfig))
}

func TestValidateClientSkipsDatabase(t *testing.T) {
	c := validConfig()
	c.SetDBConfig(nil)
	c.SetStorageConfig(nil)
	require.NoError(t, c.ValidateClient())

	c.SetChainConfig(nil)
	require.Error(t, c.ValidateClient())
}

func TestGetAuthConfigDefaultsToDisabled(t *testing.T) {
	c := &Config{}
	require.False(t, c.GetAuthConfig().Enabled)

	c.SetAuthConfig(&AuthConfig{Enabled: true})
	require.True(t, c.GetAuthConfig().Enabled)
}
