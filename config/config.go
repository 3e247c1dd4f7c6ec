package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	dbconfig "github.com/JWebSmart/Nft-marketplace/orm/config"
	"github.com/JWebSmart/Nft-marketplace/types"
)

var (
	Version    = "dev"
	CommitHash = "unknown"

	// Singleton instance
	configInstance *Config
	configOnce     sync.Once
)

// Default configuration constants
const (
	// Port settings
	DefaultAPIPort     = "8080"
	DefaultMetricsPort = "9090"
	MinPortNumber      = 1
	MaxPortNumber      = 65535

	// Database settings
	DefaultDBMaxConns  = 0 // 0 means unlimited (GORM default)
	DefaultDBIdleConns = 2 // GORM default
	DefaultDBBatchSize = 100

	// Chain settings, Polygon Mumbai
	DefaultChainId      = 80001
	DefaultChainName    = "mumbai"
	DefaultNativeSymbol = "MATIC"
	DefaultContractName = "TokenERC721"
	DefaultDropName     = "SignatureMintERC721"

	// Voucher settings
	DefaultVoucherValidity = 10 * 365 * 24 * time.Hour
	MaxRoyaltyBps          = 10_000
	DefaultMaxMintQuantity = types.MaxMintQuantity

	// Storage settings
	DefaultIPFSApiURL     = "http://127.0.0.1:5001"
	DefaultIPFSGatewayURL = "https://ipfs.io/ipfs/"
	DefaultUploadMaxBytes = 10 << 20

	// Cache settings
	DefaultCacheSize = 1000
	DefaultCacheTTL  = 10 * time.Minute

	// Timeout and interval settings
	DefaultQueryTimeout    = 30 * time.Second
	DefaultPollingInterval = 3 * time.Second

	// Concurrent request settings
	DefaultMaxConcurrentRequests = 50
	MaxAllowedConcurrentRequests = 1000

	// Indexer settings
	DefaultConfirmations     = 5
	DefaultIndexerBlockRange = 2000
	DefaultFetchWorkers      = 8

	// Auth settings
	DefaultAuthTokenTTL = 24 * time.Hour
	DefaultAuthNonceTTL = 5 * time.Minute
	MinJwtSecretLength  = 32

	// Rate limit settings
	DefaultRateLimitMax    = 120
	DefaultRateLimitWindow = time.Minute

	// Metrics settings
	DefaultMetricsPath = "/metrics"

	// RabbitMQ settings
	DefaultRabbitMQPort       = 5552
	DefaultRabbitMQStream     = "storefront"
	DefaultRabbitMQPartitions = 1

	// Default environment
	DefaultEnvironment = "local"
)

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
	Port    string `json:"port"`
}

// SentryConfig contains configuration for Sentry integration
type SentryConfig struct {
	DSN                string  `json:"dsn"`
	SampleRate         float64 `json:"sample_rate"`          // General sample rate (fallback)
	TracesSampleRate   float64 `json:"traces_sample_rate"`   // Traces sample rate
	ProfilesSampleRate float64 `json:"profiles_sample_rate"` // Profiles sample rate
	Environment        string  `json:"environment"`
}

// SignerConfig holds the voucher signing key and the fixed mint request fields.
type SignerConfig struct {
	PrivateKey           string
	RoyaltyRecipient     string
	RoyaltyBps           int64
	PrimarySaleRecipient string
	VoucherValidity      time.Duration
	// MaxMintQuantity caps the quantity of one voucher; 0 means types.MaxMintQuantity.
	MaxMintQuantity int64
}

func (sc SignerConfig) GetMaxMintQuantity() int64 {
	if sc.MaxMintQuantity <= 0 {
		return types.MaxMintQuantity
	}
	return sc.MaxMintQuantity
}

type StorageConfig struct {
	ApiUrl         string
	ApiToken       string
	GatewayUrl     string
	MaxUploadBytes int
}

type AuthConfig struct {
	Enabled   bool
	JwtSecret string
	TokenTTL  time.Duration
	NonceTTL  time.Duration
}

type ServerConfig struct {
	CorsEnabled      bool
	CorsAllowOrigins string
	RateLimitMax     int
	RateLimitWindow  time.Duration
}

type RabbitMQConfig struct {
	Enabled    bool
	Host       string
	Port       int
	VHost      string
	User       string
	Password   string
	Stream     string
	Partitions int
}

func SetBuildInfo(v, commit string) {
	Version = v
	CommitHash = commit
}

type Config struct {
	listenPort            string
	dbConfig              *dbconfig.Config
	chainConfig           *ChainConfig
	signerConfig          *SignerConfig
	storageConfig         *StorageConfig
	indexerConfig         *IndexerConfig
	authConfig            *AuthConfig
	serverConfig          *ServerConfig
	rabbitMQConfig        *RabbitMQConfig
	logLevel              string
	logFormat             string
	queryTimeout          time.Duration
	maxConcurrentRequests int
	cacheSize             int
	cacheTTL              time.Duration
	metricsConfig         *MetricsConfig
	sentryConfig          *SentryConfig
}

func setDefaults() {
	viper.SetDefault("PORT", DefaultAPIPort)
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("DB_BATCH_SIZE", DefaultDBBatchSize)
	viper.SetDefault("DB_MAX_CONNS", DefaultDBMaxConns)
	viper.SetDefault("DB_IDLE_CONNS", DefaultDBIdleConns)
	viper.SetDefault("DB_MIGRATION_DIR", "orm/migrations")
	viper.SetDefault("CHAIN_ID", DefaultChainId)
	viper.SetDefault("CHAIN_NAME", DefaultChainName)
	viper.SetDefault("CONTRACT_TYPE", string(types.ContractTypeNftCollection))
	viper.SetDefault("NATIVE_CURRENCY_SYMBOL", DefaultNativeSymbol)
	viper.SetDefault("ROYALTY_BPS", 0)
	viper.SetDefault("VOUCHER_VALIDITY", DefaultVoucherValidity)
	viper.SetDefault("MAX_MINT_QUANTITY", DefaultMaxMintQuantity)
	viper.SetDefault("IPFS_API_URL", DefaultIPFSApiURL)
	viper.SetDefault("IPFS_GATEWAY_URL", DefaultIPFSGatewayURL)
	viper.SetDefault("UPLOAD_MAX_BYTES", DefaultUploadMaxBytes)
	viper.SetDefault("QUERY_TIMEOUT", DefaultQueryTimeout)
	viper.SetDefault("MAX_CONCURRENT_REQUESTS", DefaultMaxConcurrentRequests)
	viper.SetDefault("LOG_LEVEL", "warn")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("CACHE_SIZE", DefaultCacheSize)
	viper.SetDefault("CACHE_TTL", DefaultCacheTTL)
	viper.SetDefault("POLLING_INTERVAL", DefaultPollingInterval)
	viper.SetDefault("START_BLOCK", 0)
	viper.SetDefault("CONFIRMATIONS", DefaultConfirmations)
	viper.SetDefault("INDEXER_BLOCK_RANGE", DefaultIndexerBlockRange)
	viper.SetDefault("INDEXER_FETCH_WORKERS", DefaultFetchWorkers)
	viper.SetDefault("AUTH_ENABLED", false)
	viper.SetDefault("AUTH_TOKEN_TTL", DefaultAuthTokenTTL)
	viper.SetDefault("AUTH_NONCE_TTL", DefaultAuthNonceTTL)
	viper.SetDefault("CORS_ENABLED", true)
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("RATE_LIMIT_MAX", DefaultRateLimitMax)
	viper.SetDefault("RATE_LIMIT_WINDOW", DefaultRateLimitWindow)
	viper.SetDefault("METRICS_ENABLED", false)
	viper.SetDefault("METRICS_PATH", DefaultMetricsPath)
	viper.SetDefault("METRICS_PORT", DefaultMetricsPort)
	viper.SetDefault("ENVIRONMENT", DefaultEnvironment)

	// Sentry defaults
	viper.SetDefault("SENTRY_DSN", "")
	viper.SetDefault("SENTRY_SAMPLE_RATE", 0.01)
	viper.SetDefault("SENTRY_TRACES_SAMPLE_RATE", 0.01)
	viper.SetDefault("SENTRY_PROFILES_SAMPLE_RATE", 0.01)

	// RabbitMQ defaults
	viper.SetDefault("RABBITMQ_ENABLED", false)
	viper.SetDefault("RABBITMQ_HOST", "localhost")
	viper.SetDefault("RABBITMQ_PORT", DefaultRabbitMQPort)
	viper.SetDefault("RABBITMQ_VHOST", "/")
	viper.SetDefault("RABBITMQ_USER", "guest")
	viper.SetDefault("RABBITMQ_PASSWORD", "guest")
	viper.SetDefault("RABBITMQ_STREAM", DefaultRabbitMQStream)
	viper.SetDefault("RABBITMQ_PARTITIONS", DefaultRabbitMQPartitions)

	// PRIVATE_KEY, NEXT_PUBLIC_NFT_COLLECTION_ADDRESS and JSON_RPC_URL have no defaults
}

func GetConfig() (*Config, error) {
	var err error

	configOnce.Do(func() {
		configInstance, err = loadConfig(Config.Validate)
	})

	return configInstance, err
}

// GetClientConfig loads the settings the mint command needs. The database and
// server settings are not validated.
func GetClientConfig() (*Config, error) {
	return loadConfig(Config.ValidateClient)
}

func loadConfig(validate func(Config) error) (*Config, error) {
	// .env.local wins over .env; godotenv never overrides a set variable.
	_ = godotenv.Load(".env.local")
	if err := godotenv.Load(); err != nil {
		// just log without panic, local testing purpose only
		fmt.Fprintln(os.Stderr, "No .env file found")
	}
	viper.AutomaticEnv()
	setDefaults()

	dc := &dbconfig.Config{
		DSN:          viper.GetString("DB_DSN"),
		AutoMigrate:  viper.GetBool("DB_AUTO_MIGRATE"),
		MaxConns:     viper.GetInt("DB_MAX_CONNS"),
		IdleConns:    viper.GetInt("DB_IDLE_CONNS"),
		BatchSize:    viper.GetInt("DB_BATCH_SIZE"),
		MigrationDir: viper.GetString("DB_MIGRATION_DIR"),
	}

	// the storefront frontend exposes the collection under a public name
	collection := viper.GetString("NEXT_PUBLIC_NFT_COLLECTION_ADDRESS")
	if collection == "" {
		collection = viper.GetString("NFT_COLLECTION_ADDRESS")
	}

	cc := &ChainConfig{
		ChainId:           viper.GetInt64("CHAIN_ID"),
		ChainName:         viper.GetString("CHAIN_NAME"),
		JsonRpcUrls:       splitList(viper.GetString("JSON_RPC_URL")),
		CollectionAddress: collection,
		ContractType:      types.ContractType(viper.GetString("CONTRACT_TYPE")),
		ContractName:      viper.GetString("CONTRACT_NAME"),
		NativeSymbol:      viper.GetString("NATIVE_CURRENCY_SYMBOL"),
	}

	if cc.ContractName == "" {
		cc.ContractName = DefaultContractName
		if cc.ContractType == types.ContractTypeSignatureDrop {
			cc.ContractName = DefaultDropName
		}
	}

	config := &Config{
		listenPort:  viper.GetString("PORT"),
		dbConfig:    dc,
		chainConfig: cc,
		signerConfig: &SignerConfig{
			PrivateKey:           viper.GetString("PRIVATE_KEY"),
			RoyaltyRecipient:     viper.GetString("ROYALTY_RECIPIENT"),
			RoyaltyBps:           viper.GetInt64("ROYALTY_BPS"),
			PrimarySaleRecipient: viper.GetString("PRIMARY_SALE_RECIPIENT"),
			VoucherValidity:      viper.GetDuration("VOUCHER_VALIDITY"),
			MaxMintQuantity:      viper.GetInt64("MAX_MINT_QUANTITY"),
		},
		storageConfig: &StorageConfig{
			ApiUrl:         viper.GetString("IPFS_API_URL"),
			ApiToken:       viper.GetString("IPFS_API_TOKEN"),
			GatewayUrl:     viper.GetString("IPFS_GATEWAY_URL"),
			MaxUploadBytes: viper.GetInt("UPLOAD_MAX_BYTES"),
		},
		indexerConfig: &IndexerConfig{
			Confirmations:   viper.GetUint64("CONFIRMATIONS"),
			BlockRange:      viper.GetUint64("INDEXER_BLOCK_RANGE"),
			PollingInterval: viper.GetDuration("POLLING_INTERVAL"),
			FetchWorkers:    viper.GetInt("INDEXER_FETCH_WORKERS"),
		},
		authConfig: &AuthConfig{
			Enabled:   viper.GetBool("AUTH_ENABLED"),
			JwtSecret: viper.GetString("AUTH_JWT_SECRET"),
			TokenTTL:  viper.GetDuration("AUTH_TOKEN_TTL"),
			NonceTTL:  viper.GetDuration("AUTH_NONCE_TTL"),
		},
		serverConfig: &ServerConfig{
			CorsEnabled:      viper.GetBool("CORS_ENABLED"),
			CorsAllowOrigins: viper.GetString("CORS_ALLOW_ORIGINS"),
			RateLimitMax:     viper.GetInt("RATE_LIMIT_MAX"),
			RateLimitWindow:  viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
		rabbitMQConfig: &RabbitMQConfig{
			Enabled:    viper.GetBool("RABBITMQ_ENABLED"),
			Host:       viper.GetString("RABBITMQ_HOST"),
			Port:       viper.GetInt("RABBITMQ_PORT"),
			VHost:      viper.GetString("RABBITMQ_VHOST"),
			User:       viper.GetString("RABBITMQ_USER"),
			Password:   viper.GetString("RABBITMQ_PASSWORD"),
			Stream:     viper.GetString("RABBITMQ_STREAM"),
			Partitions: viper.GetInt("RABBITMQ_PARTITIONS"),
		},
		logLevel:              viper.GetString("LOG_LEVEL"),
		logFormat:             viper.GetString("LOG_FORMAT"),
		queryTimeout:          viper.GetDuration("QUERY_TIMEOUT"),
		maxConcurrentRequests: viper.GetInt("MAX_CONCURRENT_REQUESTS"),
		cacheSize:             viper.GetInt("CACHE_SIZE"),
		cacheTTL:              viper.GetDuration("CACHE_TTL"),
		metricsConfig: &MetricsConfig{
			Enabled: viper.GetBool("METRICS_ENABLED"),
			Path:    viper.GetString("METRICS_PATH"),
			Port:    viper.GetString("METRICS_PORT"),
		},
		sentryConfig: &SentryConfig{
			DSN:                viper.GetString("SENTRY_DSN"),
			SampleRate:         viper.GetFloat64("SENTRY_SAMPLE_RATE"),
			TracesSampleRate:   viper.GetFloat64("SENTRY_TRACES_SAMPLE_RATE"),
			ProfilesSampleRate: viper.GetFloat64("SENTRY_PROFILES_SAMPLE_RATE"),
			Environment:        viper.GetString("ENVIRONMENT"),
		},
	}

	// START_BLOCK accepts a non-negative integer
	raw := strings.TrimSpace(viper.GetString("START_BLOCK"))
	if raw != "" {
		val, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, types.NewInvalidValueError("START_BLOCK", raw, "must be a non-negative integer")
		}
		config.indexerConfig.StartBlock = val
	}

	if err := validate(*config); err != nil {
		return nil, err
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (c Config) GetListenPort() string {
	return c.listenPort
}

// SetDBConfig assigns the DB config for testing purposes.
func (c *Config) SetDBConfig(dbCfg *dbconfig.Config) {
	c.dbConfig = dbCfg
}

func (c Config) GetDBConfig() *dbconfig.Config {
	return c.dbConfig
}

// SetChainConfig assigns the chain config for testing purposes.
func (c *Config) SetChainConfig(chainCfg *ChainConfig) {
	c.chainConfig = chainCfg
}

func (c Config) GetChainConfig() *ChainConfig {
	return c.chainConfig
}

// SetSignerConfig assigns the signer config for testing purposes.
func (c *Config) SetSignerConfig(signerCfg *SignerConfig) {
	c.signerConfig = signerCfg
}

func (c Config) GetSignerConfig() *SignerConfig {
	return c.signerConfig
}

// SetStorageConfig assigns the storage config for testing purposes.
func (c *Config) SetStorageConfig(storageCfg *StorageConfig) {
	c.storageConfig = storageCfg
}

func (c Config) GetStorageConfig() *StorageConfig {
	if c.storageConfig == nil {
		return &StorageConfig{}
	}
	return c.storageConfig
}

// SetIndexerConfig assigns the indexer config for testing purposes.
func (c *Config) SetIndexerConfig(indexerCfg *IndexerConfig) {
	c.indexerConfig = indexerCfg
}

func (c Config) GetIndexerConfig() *IndexerConfig {
	return c.indexerConfig
}

// SetAuthConfig assigns the auth config for testing purposes.
func (c *Config) SetAuthConfig(authCfg *AuthConfig) {
	c.authConfig = authCfg
}

func (c Config) GetAuthConfig() *AuthConfig {
	if c.authConfig == nil {
		return &AuthConfig{}
	}
	return c.authConfig
}

// SetServerConfig assigns the server config for testing purposes.
func (c *Config) SetServerConfig(serverCfg *ServerConfig) {
	c.serverConfig = serverCfg
}

func (c Config) GetServerConfig() *ServerConfig {
	if c.serverConfig == nil {
		return &ServerConfig{}
	}
	return c.serverConfig
}

func (c Config) GetRabbitMQConfig() *RabbitMQConfig {
	if c.rabbitMQConfig == nil || !c.rabbitMQConfig.Enabled {
		return nil
	}
	return c.rabbitMQConfig
}

func (c Config) GetCacheSize() int {
	return c.cacheSize
}

func (c Config) GetCacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) GetChainId() int64 {
	if c.chainConfig == nil {
		return 0
	}
	return c.chainConfig.ChainId
}

func (c Config) GetSentryConfig() *SentryConfig {
	if c.sentryConfig == nil || c.sentryConfig.DSN == "" {
		return nil
	}
	return c.sentryConfig
}

func (c Config) GetLogLevel() slog.Level {
	switch c.logLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func (c Config) GetQueryTimeout() time.Duration {
	return c.queryTimeout
}

func (c Config) GetMaxConcurrentRequests() int {
	return c.maxConcurrentRequests
}

// SetMaxConcurrentRequests assigns the outbound request limit for testing purposes.
func (c *Config) SetMaxConcurrentRequests(n int) {
	c.maxConcurrentRequests = n
}

func (c *Config) SetCacheTTL(ttl time.Duration) {
	c.cacheTTL = ttl
}

func (c *Config) SetMetricsConfig(metricsCfg *MetricsConfig) {
	c.metricsConfig = metricsCfg
}

func (c Config) GetMetricsConfig() *MetricsConfig {
	return c.metricsConfig
}

func (c Config) GetLogFormat() string {
	if c.logFormat == "json" {
		return "json"
	}
	return "plain"
}

func (c Config) Validate() error {
	if err := c.validatePort(); err != nil {
		return err
	}
	if err := c.validateLogSettings(); err != nil {
		return err
	}
	if err := c.validateNumericSettings(); err != nil {
		return err
	}
	if err := c.validateSignerConfig(); err != nil {
		return err
	}
	if err := c.validateStorageConfig(); err != nil {
		return err
	}
	if err := c.validateAuthConfig(); err != nil {
		return err
	}
	if err := c.validateMetricsConfig(); err != nil {
		return err
	}
	if err := c.validateSubConfigs(); err != nil {
		return err
	}
	return nil
}

// ValidateClient checks the chain and logging settings only.
func (c Config) ValidateClient() error {
	if err := c.validateLogSettings(); err != nil {
		return err
	}
	if c.queryTimeout <= 0 {
		return types.NewValidationError("QUERY_TIMEOUT", "must be positive")
	}
	if c.maxConcurrentRequests < 1 {
		return types.NewValidationError("MAX_CONCURRENT_REQUESTS", "must be at least 1")
	}
	if c.chainConfig == nil {
		return types.NewValidationError("CHAIN_ID", "required field is missing")
	}
	return c.chainConfig.Validate()
}

// validatePort validates the listen port configuration
func (c Config) validatePort() error {
	if len(c.listenPort) == 0 {
		return types.NewValidationError("PORT", "required field is missing")
	}
	if port, err := strconv.Atoi(c.listenPort); err != nil || port < MinPortNumber || port > MaxPortNumber {
		return types.NewValidationError("PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
	}
	return nil
}

// validateLogSettings validates log format and level configuration
func (c Config) validateLogSettings() error {
	switch c.logFormat {
	case "json", "plain":
		break
	default:
		return types.NewValidationError("LOG_FORMAT", fmt.Sprintf("invalid value '%s', must be 'json' or 'plain'", c.logFormat))
	}

	switch c.logLevel {
	case "debug", "info", "warn", "error":
		break
	default:
		return types.NewValidationError("LOG_LEVEL", fmt.Sprintf("invalid value '%s', must be one of: debug, info, warn, error", c.logLevel))
	}
	return nil
}

// validateNumericSettings validates all numeric configuration values
func (c Config) validateNumericSettings() error {
	if c.cacheSize < 0 {
		return types.NewValidationError("CACHE_SIZE", "must be non-negative")
	}
	if c.cacheTTL < 0 {
		return types.NewValidationError("CACHE_TTL", "must be non-negative")
	}
	if c.queryTimeout <= 0 {
		return types.NewValidationError("QUERY_TIMEOUT", "must be positive")
	}
	if c.maxConcurrentRequests < 1 {
		return types.NewValidationError("MAX_CONCURRENT_REQUESTS", "must be at least 1")
	}
	if c.maxConcurrentRequests > MaxAllowedConcurrentRequests {
		return types.NewInvalidValueError("MAX_CONCURRENT_REQUESTS", fmt.Sprintf("%d", c.maxConcurrentRequests), fmt.Sprintf("must not exceed %d", MaxAllowedConcurrentRequests))
	}
	if ic := c.indexerConfig; ic != nil {
		if ic.PollingInterval <= 0 {
			return types.NewValidationError("POLLING_INTERVAL", "must be positive")
		}
		if ic.BlockRange < 1 {
			return types.NewValidationError("INDEXER_BLOCK_RANGE", "must be at least 1")
		}
		if ic.FetchWorkers < 1 {
			return types.NewValidationError("INDEXER_FETCH_WORKERS", "must be at least 1")
		}
	}
	if sc := c.serverConfig; sc != nil {
		if sc.RateLimitMax < 0 {
			return types.NewValidationError("RATE_LIMIT_MAX", "must be non-negative")
		}
		if sc.RateLimitMax > 0 && sc.RateLimitWindow <= 0 {
			return types.NewValidationError("RATE_LIMIT_WINDOW", "must be positive when RATE_LIMIT_MAX is set")
		}
	}
	return nil
}

// validateSignerConfig checks the optional signer fields. A missing
// PRIVATE_KEY is reported per request, not at startup.
func (c Config) validateSignerConfig() error {
	sc := c.signerConfig
	if sc == nil {
		return nil
	}
	if sc.PrivateKey != "" {
		key := strings.TrimPrefix(sc.PrivateKey, "0x")
		if len(key) != 64 {
			return types.NewValidationError("PRIVATE_KEY", "must be a 32-byte hex string")
		}
	}
	if sc.RoyaltyRecipient != "" && !common.IsHexAddress(sc.RoyaltyRecipient) {
		return types.NewInvalidValueError("ROYALTY_RECIPIENT", sc.RoyaltyRecipient, "must be a hex address")
	}
	if sc.PrimarySaleRecipient != "" && !common.IsHexAddress(sc.PrimarySaleRecipient) {
		return types.NewInvalidValueError("PRIMARY_SALE_RECIPIENT", sc.PrimarySaleRecipient, "must be a hex address")
	}
	if sc.RoyaltyBps < 0 || sc.RoyaltyBps > MaxRoyaltyBps {
		return types.NewValidationError("ROYALTY_BPS", fmt.Sprintf("must be between 0 and %d", MaxRoyaltyBps))
	}
	if sc.VoucherValidity <= 0 {
		return types.NewValidationError("VOUCHER_VALIDITY", "must be positive")
	}
	if sc.MaxMintQuantity < 0 || sc.MaxMintQuantity > types.MaxMintQuantity {
		return types.NewValidationError("MAX_MINT_QUANTITY", fmt.Sprintf("must be between 1 and %d", types.MaxMintQuantity))
	}
	return nil
}

func (c Config) validateStorageConfig() error {
	sc := c.storageConfig
	if sc == nil {
		return nil
	}
	if !strings.HasPrefix(sc.ApiUrl, "http://") && !strings.HasPrefix(sc.ApiUrl, "https://") {
		return types.NewInvalidValueError("IPFS_API_URL", sc.ApiUrl, "must use http or https scheme")
	}
	if !strings.HasPrefix(sc.GatewayUrl, "http://") && !strings.HasPrefix(sc.GatewayUrl, "https://") {
		return types.NewInvalidValueError("IPFS_GATEWAY_URL", sc.GatewayUrl, "must use http or https scheme")
	}
	if sc.MaxUploadBytes < 1 {
		return types.NewValidationError("UPLOAD_MAX_BYTES", "must be positive")
	}
	return nil
}

func (c Config) validateAuthConfig() error {
	ac := c.authConfig
	if ac == nil || !ac.Enabled {
		return nil
	}
	if len(ac.JwtSecret) < MinJwtSecretLength {
		return types.NewValidationError("AUTH_JWT_SECRET", fmt.Sprintf("must be at least %d characters when AUTH_ENABLED is set", MinJwtSecretLength))
	}
	if ac.TokenTTL <= 0 {
		return types.NewValidationError("AUTH_TOKEN_TTL", "must be positive")
	}
	if ac.NonceTTL <= 0 {
		return types.NewValidationError("AUTH_NONCE_TTL", "must be positive")
	}
	return nil
}

// validateMetricsConfig validates metrics configuration
func (c Config) validateMetricsConfig() error {
	if c.metricsConfig != nil && c.metricsConfig.Enabled {
		if port, err := strconv.Atoi(c.metricsConfig.Port); err != nil || port < MinPortNumber || port > MaxPortNumber {
			return types.NewValidationError("METRICS_PORT", fmt.Sprintf("must be a valid port number (%d-%d)", MinPortNumber, MaxPortNumber))
		}
		if c.metricsConfig.Port == c.listenPort {
			return types.NewValidationError("METRICS_PORT", fmt.Sprintf("metrics port %s conflicts with API port", c.metricsConfig.Port))
		}
		if c.metricsConfig.Path == "" || c.metricsConfig.Path[0] != '/' {
			return types.NewValidationError("METRICS_PATH", "must start with '/'")
		}
	}
	return nil
}

// validateSubConfigs validates nested configuration objects
func (c Config) validateSubConfigs() error {
	if c.dbConfig == nil {
		return types.NewValidationError("DB_DSN", "required field is missing")
	}
	if err := c.dbConfig.Validate(); err != nil {
		return types.NewConfigError("invalid database config", err)
	}
	if c.chainConfig == nil {
		return types.NewValidationError("CHAIN_ID", "required field is missing")
	}
	return c.chainConfig.Validate()
}
