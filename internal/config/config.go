// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/fd1az/dex-arbitrage-bot/internal/apperror"
)

// Config holds all application configuration. It is loaded once at startup
// and treated as immutable afterwards.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Chain      ChainConfig      `mapstructure:"chain"`
	Tokens     []TokenConfig    `mapstructure:"tokens"`
	Pairs      []PairConfig     `mapstructure:"pairs"`
	Venues     []VenueConfig    `mapstructure:"venues"`
	FeeTierPin []FeeTierPin     `mapstructure:"fee_tier_pins"`
	Routes     []RouteConfig    `mapstructure:"routes"`
	Arbitrage  ArbitrageConfig  `mapstructure:"arbitrage"`
	Retry      RetryConfig      `mapstructure:"retry"`
	Execution  ExecutionConfig  `mapstructure:"execution"`
	State      StateConfig      `mapstructure:"state"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Health     HealthConfig     `mapstructure:"health"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Runtime    RuntimeOverrides `mapstructure:"-"`
}

// RuntimeOverrides are set from CLI flags, never from files.
type RuntimeOverrides struct {
	MonitorOnly bool
	Once        bool
	TUIMode     bool
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ChainConfig holds RPC and signing configuration.
type ChainConfig struct {
	RPCURL           string        `mapstructure:"rpc_url"`
	ChainID          uint64        `mapstructure:"chain_id"`
	PrivateKey       string        `mapstructure:"private_key"`
	KeyFile          string        `mapstructure:"key_file"`
	KeyPassword      string        `mapstructure:"key_password"`
	CallTimeout      time.Duration `mapstructure:"call_timeout"`
	RateLimitPerMin  int           `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst   int           `mapstructure:"rate_limit_burst"`
	ReceiptTimeout   time.Duration `mapstructure:"receipt_timeout"`
	ReceiptPollEvery time.Duration `mapstructure:"receipt_poll_interval"`
}

// SigningKeyConfigured reports whether any signing key source is set.
func (c *ChainConfig) SigningKeyConfigured() bool {
	return c.PrivateKey != "" || c.KeyFile != ""
}

// TokenConfig describes a token the bot trades.
// Decimals of 0 are resolved from the chain at startup.
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Address  string `mapstructure:"address"`
	Decimals uint8  `mapstructure:"decimals"`
	// FallbackAmount overrides execution.liquidity_fallback_amount for this token.
	FallbackAmount string `mapstructure:"fallback_amount"`
	// DirectMaxAmount overrides execution.direct_default_amount for this token.
	DirectMaxAmount string `mapstructure:"direct_max_amount"`
}

// AddressHex returns the token address.
func (t TokenConfig) AddressHex() common.Address {
	return common.HexToAddress(t.Address)
}

// PairConfig is a directed pair quoted with a fixed test amount.
type PairConfig struct {
	TokenIn      string `mapstructure:"token_in"`
	TokenOut     string `mapstructure:"token_out"`
	TestAmountIn string `mapstructure:"test_amount_in"`
}

// Venue kinds.
const (
	VenueKindV2      = "v2"
	VenueKindV3      = "v3"
	VenueKindAlgebra = "algebra"
)

// VenueConfig describes one DEX router or quoter.
type VenueConfig struct {
	ID       string `mapstructure:"id"`
	Kind     string `mapstructure:"kind"`
	Router   string `mapstructure:"router"`
	Quoter   string `mapstructure:"quoter"`
	FeeTiers []int  `mapstructure:"fee_tiers"`
	Disabled bool   `mapstructure:"disabled"`
}

// FeeTierPin fixes the fee tier used for a pair on a concentrated-liquidity venue.
type FeeTierPin struct {
	Venue    string `mapstructure:"venue"`
	TokenIn  string `mapstructure:"token_in"`
	TokenOut string `mapstructure:"token_out"`
	Fee      int    `mapstructure:"fee"`
}

// RouteConfig is a closed three-token route A -> B -> C -> A.
type RouteConfig struct {
	Name   string   `mapstructure:"name"`
	Tokens []string `mapstructure:"tokens"`
}

// ArbitrageConfig holds detection and polling settings.
type ArbitrageConfig struct {
	MinProfitPercent  float64       `mapstructure:"min_profit_percent"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	BatchSize         int           `mapstructure:"batch_size"`
	BatchDelay        time.Duration `mapstructure:"batch_delay"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	TriangularVenues  []string      `mapstructure:"triangular_venues"`
	TriangularEnabled bool          `mapstructure:"triangular_enabled"`
}

// MinProfitPercentDecimal returns the threshold as decimal.Decimal.
func (c *ArbitrageConfig) MinProfitPercentDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.MinProfitPercent)
}

// RetryConfig bounds retried network reads.
type RetryConfig struct {
	MaxRetries uint          `mapstructure:"max_retries"`
	BaseDelay  time.Duration `mapstructure:"base_delay"`
}

// Execution modes.
const (
	ExecutionModeAuto = "auto"
	ExecutionModeOn   = "on"
	ExecutionModeOff  = "off"
)

// ExecutionConfig holds trade execution settings.
type ExecutionConfig struct {
	// Mode is auto (execute when a key is configured), on (key required) or off.
	Mode                    string        `mapstructure:"mode"`
	FlashContract           string        `mapstructure:"flash_contract"`
	ArbitrageContract       string        `mapstructure:"arbitrage_contract"`
	LendingPool             string        `mapstructure:"lending_pool"`
	LendingDataProvider     string        `mapstructure:"lending_data_provider"`
	Borrowable              []string      `mapstructure:"borrowable"`
	FlashAllowlist          []string      `mapstructure:"flash_allowlist"`
	MaxConsecutiveFailures  int           `mapstructure:"max_consecutive_failures"`
	LiquidityFallbackAmount string        `mapstructure:"liquidity_fallback_amount"`
	DirectDefaultAmount     string        `mapstructure:"direct_default_amount"`
	GasSpeed                string        `mapstructure:"gas_speed"`
	GasLimit                uint64        `mapstructure:"gas_limit"`
	GasCacheTTL             time.Duration `mapstructure:"gas_cache_ttl"`
}

// StateConfig selects where pair performance records live.
type StateConfig struct {
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	RedisAddr  string `mapstructure:"redis_addr"`
	RedisPass  string `mapstructure:"redis_password"`
	RedisDB    int    `mapstructure:"redis_db"`
	RedisKey   string `mapstructure:"redis_key"`
	FlushEvery int    `mapstructure:"flush_every"`
}

// JournalConfig enables the SQLite execution journal when Path is set.
type JournalConfig struct {
	Path string `mapstructure:"path"`
}

// NotifyConfig holds alert destinations. Empty values disable a sender.
type NotifyConfig struct {
	DiscordWebhookURL string `mapstructure:"discord_webhook_url"`
	WebhookURL        string `mapstructure:"webhook_url"`
}

// HealthConfig holds the health/operator HTTP server settings.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Exporter       string `mapstructure:"exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperror.New(apperror.CodeConfigurationError,
				apperror.WithContext("read config"), apperror.WithCause(err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("unmarshal config"), apperror.WithCause(err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Chain
	v.BindEnv("chain.rpc_url", "ARB_RPC_URL", "RPC_URL")
	v.BindEnv("chain.chain_id", "ARB_CHAIN_ID", "CHAIN_ID")
	v.BindEnv("chain.private_key", "ARB_PRIVATE_KEY", "PRIVATE_KEY")
	v.BindEnv("chain.key_file", "ARB_KEY_FILE")
	v.BindEnv("chain.key_password", "ARB_KEY_PASSWORD")

	// Execution
	v.BindEnv("execution.mode", "ARB_EXECUTION_MODE")
	v.BindEnv("execution.flash_contract", "ARB_FLASH_CONTRACT", "FLASH_CONTRACT_ADDRESS")
	v.BindEnv("execution.arbitrage_contract", "ARB_ARBITRAGE_CONTRACT", "ARBITRAGE_CONTRACT_ADDRESS")

	// State / persistence
	v.BindEnv("state.redis_addr", "ARB_REDIS_ADDR", "REDIS_ADDR")
	v.BindEnv("state.redis_password", "ARB_REDIS_PASSWORD", "REDIS_PASSWORD")

	// Notify
	v.BindEnv("notify.discord_webhook_url", "ARB_DISCORD_WEBHOOK_URL", "DISCORD_WEBHOOK_URL")
	v.BindEnv("notify.webhook_url", "ARB_WEBHOOK_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "dex-arbitrage-bot")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Chain defaults (Polygon PoS)
	v.SetDefault("chain.chain_id", 137)
	v.SetDefault("chain.call_timeout", "10s")
	v.SetDefault("chain.rate_limit_per_minute", 600)
	v.SetDefault("chain.rate_limit_burst", 20)
	v.SetDefault("chain.receipt_timeout", "2m")
	v.SetDefault("chain.receipt_poll_interval", "2s")

	v.SetDefault("tokens", []map[string]any{
		{"symbol": "USDC", "address": "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359", "decimals": 6},
		{"symbol": "USDT", "address": "0xc2132D05D31c914a87C6611C10748AEb04B58e8F", "decimals": 6},
		{"symbol": "DAI", "address": "0x8f3Cf7ad23Cd3CaDbD9735AFf958023239c6A063", "decimals": 18},
		{"symbol": "WETH", "address": "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619", "decimals": 18},
		{"symbol": "WMATIC", "address": "0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270", "decimals": 18},
	})
	v.SetDefault("pairs", []map[string]any{
		{"token_in": "USDC", "token_out": "WETH", "test_amount_in": "1000"},
		{"token_in": "WETH", "token_out": "USDC", "test_amount_in": "0.5"},
		{"token_in": "USDC", "token_out": "WMATIC", "test_amount_in": "1000"},
		{"token_in": "WMATIC", "token_out": "USDC", "test_amount_in": "2000"},
		{"token_in": "USDC", "token_out": "USDT", "test_amount_in": "1000"},
		{"token_in": "USDT", "token_out": "USDC", "test_amount_in": "1000"},
		{"token_in": "WETH", "token_out": "WMATIC", "test_amount_in": "0.5"},
		{"token_in": "WMATIC", "token_out": "WETH", "test_amount_in": "2000"},
	})
	v.SetDefault("venues", []map[string]any{
		{"id": "quickswap", "kind": VenueKindV2, "router": "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff"},
		{"id": "sushiswap", "kind": VenueKindV2, "router": "0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"},
		{"id": "uniswap_v3", "kind": VenueKindV3, "quoter": "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
			"fee_tiers": []int{100, 500, 3000, 10000}},
		{"id": "quickswap_v3", "kind": VenueKindAlgebra, "quoter": "0xa15F0D7377B2A0C0c10db057f641beD21028FC89"},
	})
	v.SetDefault("routes", []map[string]any{
		{"name": "USDC-WETH-WMATIC", "tokens": []string{"USDC", "WETH", "WMATIC"}},
		{"name": "USDC-WMATIC-WETH", "tokens": []string{"USDC", "WMATIC", "WETH"}},
	})

	// Arbitrage defaults
	v.SetDefault("arbitrage.min_profit_percent", 0.5)
	v.SetDefault("arbitrage.poll_interval", "15s")
	v.SetDefault("arbitrage.batch_size", 15)
	v.SetDefault("arbitrage.batch_delay", "250ms")
	v.SetDefault("arbitrage.max_concurrency", 8)
	v.SetDefault("arbitrage.triangular_enabled", true)
	v.SetDefault("arbitrage.triangular_venues", []string{"quickswap", "sushiswap", "uniswap_v3"})

	// Retry defaults
	v.SetDefault("retry.max_retries", 3)
	v.SetDefault("retry.base_delay", "500ms")

	// Execution defaults (Aave v3 on Polygon)
	v.SetDefault("execution.mode", ExecutionModeAuto)
	v.SetDefault("execution.lending_pool", "0x794a61358D6845594F94dc1DB02A252b5b4814aD")
	v.SetDefault("execution.lending_data_provider", "0x69FA688f1Dc47d4B5d8029D5a35FB7a548310654")
	v.SetDefault("execution.borrowable", []string{"USDC", "USDT", "DAI", "WETH", "WMATIC"})
	v.SetDefault("execution.flash_allowlist", []string{"USDC", "USDT", "DAI", "WETH", "WMATIC"})
	v.SetDefault("execution.max_consecutive_failures", 5)
	v.SetDefault("execution.liquidity_fallback_amount", "100")
	v.SetDefault("execution.direct_default_amount", "100")
	v.SetDefault("execution.gas_speed", "fast")
	v.SetDefault("execution.gas_limit", 1_500_000)
	v.SetDefault("execution.gas_cache_ttl", "5s")

	// State defaults
	v.SetDefault("state.backend", "file")
	v.SetDefault("state.redis_key", "dex-arb:performance")
	v.SetDefault("state.flush_every", 10)

	// Health defaults
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "dex-arbitrage-bot")
	v.SetDefault("telemetry.exporter", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Missing required values are
// reported as CONFIGURATION_MISSING, malformed ones as CONFIGURATION_ERROR.
func (c *Config) Validate() error {
	if c.Chain.RPCURL == "" {
		return missing("chain.rpc_url")
	}

	symbols := make(map[string]bool, len(c.Tokens))
	for i, t := range c.Tokens {
		if t.Symbol == "" {
			return missing(fmt.Sprintf("tokens[%d].symbol", i))
		}
		if !common.IsHexAddress(t.Address) {
			return invalid(fmt.Sprintf("tokens[%d].address %q", i, t.Address))
		}
		key := strings.ToUpper(t.Symbol)
		if symbols[key] {
			return invalid("duplicate token symbol " + t.Symbol)
		}
		symbols[key] = true
		for _, amt := range []string{t.FallbackAmount, t.DirectMaxAmount} {
			if err := checkAmount(amt, "tokens."+t.Symbol); err != nil {
				return err
			}
		}
	}

	if len(c.Pairs) == 0 {
		return missing("pairs")
	}
	for i, p := range c.Pairs {
		if !symbols[strings.ToUpper(p.TokenIn)] || !symbols[strings.ToUpper(p.TokenOut)] {
			return invalid(fmt.Sprintf("pairs[%d] references unknown token", i))
		}
		if strings.EqualFold(p.TokenIn, p.TokenOut) {
			return invalid(fmt.Sprintf("pairs[%d] has identical tokens", i))
		}
		d, err := decimal.NewFromString(p.TestAmountIn)
		if err != nil || !d.IsPositive() {
			return invalid(fmt.Sprintf("pairs[%d].test_amount_in %q", i, p.TestAmountIn))
		}
	}

	venueIDs := make(map[string]bool, len(c.Venues))
	for i, v := range c.Venues {
		if v.ID == "" {
			return missing(fmt.Sprintf("venues[%d].id", i))
		}
		if venueIDs[v.ID] {
			return invalid("duplicate venue id " + v.ID)
		}
		venueIDs[v.ID] = true

		switch v.Kind {
		case VenueKindV2:
			if !common.IsHexAddress(v.Router) {
				return invalid(fmt.Sprintf("venues.%s.router %q", v.ID, v.Router))
			}
		case VenueKindV3, VenueKindAlgebra:
			if !common.IsHexAddress(v.Quoter) {
				return invalid(fmt.Sprintf("venues.%s.quoter %q", v.ID, v.Quoter))
			}
		default:
			return invalid(fmt.Sprintf("venues.%s.kind %q", v.ID, v.Kind))
		}
	}

	for i, pin := range c.FeeTierPin {
		if !venueIDs[pin.Venue] {
			return invalid(fmt.Sprintf("fee_tier_pins[%d] references unknown venue %q", i, pin.Venue))
		}
		if pin.Fee <= 0 {
			return invalid(fmt.Sprintf("fee_tier_pins[%d].fee", i))
		}
	}

	for _, r := range c.Routes {
		if len(r.Tokens) != 3 {
			return invalid(fmt.Sprintf("routes.%s must have exactly 3 tokens", r.Name))
		}
		for _, s := range r.Tokens {
			if !symbols[strings.ToUpper(s)] {
				return invalid(fmt.Sprintf("routes.%s references unknown token %s", r.Name, s))
			}
		}
	}
	for _, id := range c.Arbitrage.TriangularVenues {
		if !venueIDs[id] {
			return invalid("arbitrage.triangular_venues references unknown venue " + id)
		}
	}

	if c.Arbitrage.MinProfitPercent < 0 {
		return invalid("arbitrage.min_profit_percent must be >= 0")
	}
	if c.Arbitrage.BatchSize <= 0 {
		return invalid("arbitrage.batch_size must be > 0")
	}
	if c.Retry.MaxRetries == 0 {
		return invalid("retry.max_retries must be > 0")
	}

	switch c.Execution.Mode {
	case ExecutionModeAuto, ExecutionModeOff:
	case ExecutionModeOn:
		if !c.Chain.SigningKeyConfigured() {
			return missing("chain.private_key or chain.key_file (execution.mode=on)")
		}
	default:
		return invalid(fmt.Sprintf("execution.mode %q", c.Execution.Mode))
	}
	if c.Chain.KeyFile != "" && c.Chain.KeyPassword == "" {
		return missing("chain.key_password")
	}

	if c.Execution.MaxConsecutiveFailures <= 0 {
		return invalid("execution.max_consecutive_failures must be > 0")
	}
	for _, amt := range []string{c.Execution.LiquidityFallbackAmount, c.Execution.DirectDefaultAmount} {
		if err := checkAmount(amt, "execution"); err != nil {
			return err
		}
	}
	for _, addr := range []string{c.Execution.FlashContract, c.Execution.ArbitrageContract,
		c.Execution.LendingPool, c.Execution.LendingDataProvider} {
		if addr != "" && !common.IsHexAddress(addr) {
			return invalid("execution address " + addr)
		}
	}

	switch c.State.Backend {
	case "file", "redis", "none":
	default:
		return invalid(fmt.Sprintf("state.backend %q", c.State.Backend))
	}
	if c.State.Backend == "redis" && c.State.RedisAddr == "" {
		return missing("state.redis_addr")
	}

	return nil
}

// ExecutionEnabled reports whether the bot may submit transactions at all.
// Monitor-only is forced by the flag, by mode=off, and by a missing key.
func (c *Config) ExecutionEnabled() bool {
	if c.Runtime.MonitorOnly || c.Execution.Mode == ExecutionModeOff {
		return false
	}
	return c.Chain.SigningKeyConfigured()
}

// ValidateExecution checks settings that matter only once execution is enabled.
func (c *Config) ValidateExecution() error {
	if !c.ExecutionEnabled() {
		return nil
	}
	if c.Execution.ArbitrageContract == "" {
		return missing("execution.arbitrage_contract")
	}
	return nil
}

// StatePath returns the performance file for this environment.
func (c *Config) StatePath() string {
	if c.State.Path != "" {
		return c.State.Path
	}
	return fmt.Sprintf("data/%s-performance.json", c.App.Environment)
}

func checkAmount(s, field string) error {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return invalid(fmt.Sprintf("%s amount %q", field, s))
	}
	return nil
}

func missing(field string) error {
	return apperror.New(apperror.CodeConfigurationMissing, apperror.WithContext(field))
}

func invalid(field string) error {
	return apperror.New(apperror.CodeConfigurationError, apperror.WithContext(field))
}
