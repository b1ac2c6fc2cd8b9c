// Package config loads kaynstats settings from defaults, a dotenv file,
// environment variables and command-line flags, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pable/kaynstats/internal/classifier"
	"github.com/pable/kaynstats/internal/riot"
)

// EnvPrefix prefixes every environment variable except the credentials.
const EnvPrefix = "KAYNSTATS"

// Config holds everything a stats run needs. It is passed explicitly to each
// component; nothing reads process-wide state after Load.
type Config struct {
	APIKey   string `mapstructure:"riot_api_key" validate:"required"`
	GameName string `mapstructure:"summoner_name" validate:"required"`
	TagLine  string `mapstructure:"tagline" validate:"required"`

	// Platform is the gameplay region, e.g. EUW1.
	Platform string `mapstructure:"region" validate:"required"`
	// Routing overrides the routing region derived from Platform.
	Routing  string `mapstructure:"routing" validate:"omitempty,routing"`
	Champion string `mapstructure:"champion" validate:"required"`
	Queue    int    `mapstructure:"queue" validate:"gte=0"`

	MaxMatches int `mapstructure:"max_matches" validate:"gte=1"`
	// Target is the number of champion games to stop at; 0 scans everything.
	Target int `mapstructure:"count" validate:"gte=0"`

	RateLimitCooldown   time.Duration `mapstructure:"rate_limit_cooldown" validate:"gt=0"`
	MaxRateLimitRetries int           `mapstructure:"max_rate_limit_retries" validate:"gte=0"`
	MatchDelay          time.Duration `mapstructure:"match_delay" validate:"gte=0"`
	PageDelay           time.Duration `mapstructure:"page_delay" validate:"gte=0"`
	RequestsPerSecond   float64       `mapstructure:"requests_per_second" validate:"gte=0"`

	CachePath    string `mapstructure:"cache" validate:"required"`
	RecordAbsent bool   `mapstructure:"record_absent"`

	CSV     bool   `mapstructure:"csv"`
	CSVPath string `mapstructure:"csv_path" validate:"required_if=CSV true"`
	Verbose bool   `mapstructure:"verbose"`
}

// RoutingRegion returns the routing region for API calls.
func (c *Config) RoutingRegion() string {
	if c.Routing != "" {
		return c.Routing
	}
	r, _ := riot.RoutingFor(c.Platform)
	return r
}

// setDefaults registers the defaults of every key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("region", "EUW1")
	v.SetDefault("routing", "")
	v.SetDefault("champion", classifier.DefaultChampion)
	v.SetDefault("queue", riot.QueueRankedSolo)
	v.SetDefault("max_matches", 500)
	v.SetDefault("count", 0)
	v.SetDefault("rate_limit_cooldown", riot.DefaultCooldown)
	v.SetDefault("max_rate_limit_retries", 0)
	v.SetDefault("match_delay", classifier.DefaultMatchDelay)
	v.SetDefault("page_delay", riot.DefaultPageDelay)
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("cache", DefaultCachePath())
	v.SetDefault("record_absent", false)
	v.SetDefault("csv", true)
	v.SetDefault("csv_path", "kayn_stats.csv")
	v.SetDefault("verbose", true)
}

// DefaultCachePath is ~/.kaynstats/cache.json, or ./kayn_cache.json when the
// home directory is unknown.
func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kayn_cache.json"
	}
	return filepath.Join(home, ".kaynstats", "cache.json")
}

// flagKeys maps config keys to the flag names that may override them.
var flagKeys = map[string]string{
	"region":        "region",
	"champion":      "champion",
	"max_matches":   "max-matches",
	"count":         "count",
	"cache":         "cache",
	"record_absent": "record-absent",
	"csv":           "csv",
	"csv_path":      "csv-path",
	"verbose":       "verbose",
}

// Load builds a Config. envFile is an optional dotenv file; a missing file is
// not an error. Flags in fs that were set on the command line win over
// everything else. The result is validated before it is returned.
func Load(envFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// Credentials keep the plain names used in .env files.
	for _, key := range []string{"riot_api_key", "summoner_name", "tagline"} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", envFile, err)
		}
	}

	if fs != nil {
		for key, name := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Platform = strings.ToUpper(strings.TrimSpace(cfg.Platform))
	cfg.Routing = strings.ToLower(strings.TrimSpace(cfg.Routing))

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
