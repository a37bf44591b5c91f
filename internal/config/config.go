package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Chain keys used in the rpc-url and fee-tier maps.
const (
	KeyEthereum = "ethereum"
	KeyPolygon  = "polygon"
	KeyHedera   = "hedera"
)

// Public endpoints matching the upstream defaults. Fine for development;
// production deployments should supply their own.
var defaultRPCURLs = map[string]string{
	KeyEthereum: "https://eth.llamarpc.com",
	KeyPolygon:  "https://polygon-rpc.com",
	KeyHedera:   "https://mainnet.hashio.io/api",
}

const uniswapV3Factory = "0x1F98431c8aD98523631AE4a59f267346ea31F984"

var defaultFactories = map[string]string{
	KeyEthereum: uniswapV3Factory,
	KeyPolygon:  uniswapV3Factory,
	// The SaucerSwap factory ships unset upstream; a zero factory makes
	// Hedera probes report a configuration error instead of failing the
	// whole request.
	KeyHedera: "0x0000000000000000000000000000000000000000",
}

var defaultFeeTiers = map[string][]int{
	KeyEthereum: {500, 3000, 10000},
	KeyPolygon:  {500, 3000, 10000},
	KeyHedera:   {500, 1500, 3000, 10000},
}

// Config holds configuration values loaded from flags, env, or config
// file. It is constructed once at startup and passed down; no component
// reads ambient state mid-request.
type Config struct {
	RPCURLs          map[string]string
	Factories        map[string]string
	FeeTiers         map[string][]int
	HederaNetwork    string
	ProbeTimeout     time.Duration
	DiscoveryURL     string
	DiscoveryTimeout time.Duration
	CachePath        string
	CacheTTL         time.Duration
	Out              string
	PGDSN            string
	LogLevel         string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("hedera-network", "mainnet")
	v.SetDefault("probe-timeout", 10*time.Second)
	v.SetDefault("discovery-timeout", 15*time.Second)
	v.SetDefault("cache", "./data/token_cache.json")
	v.SetDefault("cache-ttl", 24*time.Hour)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURLs:          mergeStringMap(defaultRPCURLs, getStringMap(v, "rpc-url")),
		Factories:        mergeStringMap(defaultFactories, getStringMap(v, "factory")),
		FeeTiers:         defaultFeeTiers,
		HederaNetwork:    v.GetString("hedera-network"),
		ProbeTimeout:     v.GetDuration("probe-timeout"),
		DiscoveryURL:     v.GetString("discovery-url"),
		DiscoveryTimeout: v.GetDuration("discovery-timeout"),
		CachePath:        v.GetString("cache"),
		CacheTTL:         v.GetDuration("cache-ttl"),
		Out:              v.GetString("out"),
		PGDSN:            v.GetString("pg-dsn"),
		LogLevel:         v.GetString("log-level"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.HederaNetwork {
	case "mainnet", "testnet":
	default:
		return fmt.Errorf("unsupported hedera network: %s", c.HederaNetwork)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	for chain, tiers := range c.FeeTiers {
		if len(tiers) == 0 {
			return fmt.Errorf("%s: fee tier list is empty", chain)
		}
		for i, tier := range tiers {
			if tier <= 0 {
				return fmt.Errorf("%s: fee tier must be positive, got %d", chain, tier)
			}
			if i > 0 && tier <= tiers[i-1] {
				return fmt.Errorf("%s: fee tiers must be strictly ascending", chain)
			}
		}
	}
	return nil
}

func mergeStringMap(defaults, overrides map[string]string) map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		if v != "" {
			out[strings.ToLower(k)] = v
		}
	}
	return out
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
