package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL           string
	AnalyticsURL     string
	ExecutorURL      string
	PostgresDSN      string
	PoolAddress      string
	PositionManager  string
	PositionIDs      []string
	WalletAddress    string
	ChainID          uint64
	RiskProfile      string
	Interval         time.Duration
	GeminiAPIKey     string
	GeminiModel      string
	WebhookURL       string
	Out              string
	Incidents        string
	IncidentsEnabled bool
	MetricsAddr      string
	LogLevel         string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REBALANCER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("risk-profile", "medium")
	v.SetDefault("interval", time.Hour)
	v.SetDefault("gemini-model", "gemini-2.0-flash")
	v.SetDefault("out", "./data/results.jsonl")
	v.SetDefault("incidents", "./data/incidents.json")
	v.SetDefault("incidents-enabled", true)
	v.SetDefault("metrics-addr", ":9090")
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
		RPCURL:           v.GetString("rpc"),
		AnalyticsURL:     v.GetString("analytics-url"),
		ExecutorURL:      v.GetString("executor-url"),
		PostgresDSN:      v.GetString("pg-dsn"),
		PoolAddress:      v.GetString("pool"),
		PositionManager:  v.GetString("position-manager"),
		PositionIDs:      getStringSlice(v, "position"),
		WalletAddress:    v.GetString("wallet"),
		ChainID:          v.GetUint64("chain-id"),
		RiskProfile:      v.GetString("risk-profile"),
		Interval:         v.GetDuration("interval"),
		GeminiAPIKey:     v.GetString("gemini-api-key"),
		GeminiModel:      v.GetString("gemini-model"),
		WebhookURL:       v.GetString("webhook-url"),
		Out:              v.GetString("out"),
		Incidents:        v.GetString("incidents"),
		IncidentsEnabled: v.GetBool("incidents-enabled"),
		MetricsAddr:      v.GetString("metrics-addr"),
		LogLevel:         v.GetString("log-level"),
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
